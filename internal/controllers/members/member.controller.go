package memberController

import (
	"context"
	"errors"
	"slices"
	"time"

	"dutydesk/config"
	"dutydesk/internal/database"
	"dutydesk/internal/logger"
	. "dutydesk/internal/models"
	"dutydesk/internal/repositories"
	"dutydesk/internal/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

type MemberController struct {
	memberRepo         repositories.MemberRepository
	transactionService *services.TransactionService
	db                 database.DB
	Config             config.Config
}

type CreateMemberRequest struct {
	MemberID string `json:"memberId"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address,omitempty"`
	Notes    string `json:"notes,omitempty"`
	JoinDate string `json:"joinDate,omitempty"`
	Branch   string `json:"branch,omitempty"`
	Status   string `json:"status,omitempty"`
	Group    string `json:"group,omitempty"`
}

type MemberControllerInterface interface {
	Create(ctx context.Context, request *CreateMemberRequest) (*Member, error)
	Get(ctx context.Context, memberID uuid.UUID) (*Member, error)
	List(ctx context.Context) ([]*Member, error)
	Search(ctx context.Context, query string) ([]*Member, error)
	Update(ctx context.Context, member *Member) (*Member, error)
	Delete(ctx context.Context, memberID uuid.UUID) error
	Associate(ctx context.Context, memberID, otherID uuid.UUID) error
	Dissociate(ctx context.Context, memberID, otherID uuid.UUID) error
	ReplaceAll(ctx context.Context, members []*Member) error
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) MemberControllerInterface {
	return &MemberController{
		memberRepo:         repos.Member,
		transactionService: services.Transaction,
		db:                 db,
		Config:             config,
	}
}

func (c *MemberController) Create(
	ctx context.Context,
	request *CreateMemberRequest,
) (*Member, error) {
	log := logger.NewWithContext(ctx, "memberController").Function("Create")

	if request.MemberID == "" {
		return nil, log.ErrorWithType(ErrValidation, "memberId is required")
	}

	if request.Name == "" {
		return nil, log.ErrorWithType(ErrValidation, "name is required")
	}

	// The human-chosen identifier must stay unique across the registry.
	existing, err := c.memberRepo.GetMemberByMemberID(ctx, c.db.SQL, request.MemberID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, log.Error("failed to check member id uniqueness", "error", err)
	}
	if existing != nil {
		return nil, log.ErrorWithType(
			ErrConflict,
			"member id already in use",
			"memberID", request.MemberID,
		)
	}

	joinDate := time.Now()
	if request.JoinDate != "" {
		parsed, err := time.Parse(time.RFC3339, request.JoinDate)
		if err != nil {
			return nil, log.ErrorWithType(ErrValidation, "invalid joinDate, expected RFC3339")
		}
		joinDate = parsed
	}

	member := &Member{
		MemberID: request.MemberID,
		Name:     request.Name,
		Phone:    request.Phone,
		Email:    request.Email,
		Address:  request.Address,
		Notes:    request.Notes,
		JoinDate: joinDate,
		Branch:   request.Branch,
		Status:   NormalizeMemberStatus(request.Status),
		Group:    NormalizeMemberGroup(request.Group),
	}

	if err := c.memberRepo.CreateMember(ctx, c.db.SQL, member); err != nil {
		return nil, log.Error("failed to create member", "error", err, "memberID", request.MemberID)
	}

	log.Info("Member created", "id", member.ID, "memberID", member.MemberID)

	return member, nil
}

func (c *MemberController) Get(ctx context.Context, memberID uuid.UUID) (*Member, error) {
	log := logger.NewWithContext(ctx, "memberController").Function("Get")

	member, err := c.memberRepo.GetMember(ctx, c.db.SQL, memberID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, log.ErrorWithType(ErrNotFound, "member not found", "memberID", memberID)
		}
		return nil, log.Error("failed to get member", "error", err, "memberID", memberID)
	}

	return member, nil
}

func (c *MemberController) List(ctx context.Context) ([]*Member, error) {
	log := logger.NewWithContext(ctx, "memberController").Function("List")

	members, err := c.memberRepo.ListMembers(ctx, c.db.SQL)
	if err != nil {
		return nil, log.Error("failed to list members", "error", err)
	}

	return members, nil
}

func (c *MemberController) Search(ctx context.Context, query string) ([]*Member, error) {
	log := logger.NewWithContext(ctx, "memberController").Function("Search")

	members, err := c.memberRepo.SearchMembers(ctx, c.db.SQL, query)
	if err != nil {
		return nil, log.Error("failed to search members", "error", err, "query", query)
	}

	return members, nil
}

func (c *MemberController) Update(ctx context.Context, member *Member) (*Member, error) {
	log := logger.NewWithContext(ctx, "memberController").Function("Update")

	if member.ID == uuid.Nil {
		return nil, log.ErrorWithType(ErrValidation, "member id is required")
	}

	if member.MemberID == "" || member.Name == "" {
		return nil, log.ErrorWithType(ErrValidation, "memberId and name are required")
	}

	existing, err := c.memberRepo.GetMemberByMemberID(ctx, c.db.SQL, member.MemberID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, log.Error("failed to check member id uniqueness", "error", err)
	}
	if existing != nil && existing.ID != member.ID {
		return nil, log.ErrorWithType(
			ErrConflict,
			"member id already in use",
			"memberID", member.MemberID,
		)
	}

	rowsAffected, err := c.memberRepo.UpdateMember(ctx, c.db.SQL, member)
	if err != nil {
		return nil, log.Error("failed to update member", "error", err, "memberID", member.ID)
	}

	if rowsAffected == 0 {
		return nil, log.ErrorWithType(ErrNotFound, "member not found", "memberID", member.ID)
	}

	updated, err := c.memberRepo.GetMember(ctx, c.db.SQL, member.ID)
	if err != nil {
		return nil, log.Error("failed to reload updated member", "error", err)
	}

	return updated, nil
}

func (c *MemberController) Delete(ctx context.Context, memberID uuid.UUID) error {
	log := logger.NewWithContext(ctx, "memberController").Function("Delete")

	return c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		member, err := c.memberRepo.GetMember(ctx, tx, memberID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return log.ErrorWithType(ErrNotFound, "member not found", "memberID", memberID)
			}
			return log.Error("failed to load member", "error", err)
		}

		// Drop the back-links held by associated members first.
		for _, assocID := range member.Associations {
			other, err := uuid.Parse(assocID)
			if err != nil {
				continue
			}
			if err := c.removeLink(ctx, tx, other, memberID); err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
		}

		rowsAffected, err := c.memberRepo.DeleteMember(ctx, tx, memberID)
		if err != nil {
			return log.Error("failed to delete member", "error", err, "memberID", memberID)
		}

		if rowsAffected == 0 {
			return log.ErrorWithType(ErrNotFound, "member not found", "memberID", memberID)
		}

		log.Info("Member deleted", "memberID", memberID)
		return nil
	})
}

// Associate links two members symmetrically; both rows change in one
// transaction.
func (c *MemberController) Associate(ctx context.Context, memberID, otherID uuid.UUID) error {
	log := logger.NewWithContext(ctx, "memberController").Function("Associate")

	if memberID == otherID {
		return log.ErrorWithType(ErrValidation, "cannot associate a member with itself")
	}

	return c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := c.addLink(ctx, tx, memberID, otherID); err != nil {
			return err
		}
		return c.addLink(ctx, tx, otherID, memberID)
	})
}

// Dissociate removes the link from both members.
func (c *MemberController) Dissociate(ctx context.Context, memberID, otherID uuid.UUID) error {
	return c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := c.removeLink(ctx, tx, memberID, otherID); err != nil {
			return err
		}
		return c.removeLink(ctx, tx, otherID, memberID)
	})
}

func (c *MemberController) ReplaceAll(ctx context.Context, members []*Member) error {
	log := logger.NewWithContext(ctx, "memberController").Function("ReplaceAll")

	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return c.memberRepo.ReplaceAll(ctx, tx, members)
	})
	if err != nil {
		return log.Error("failed to replace member store", "error", err)
	}

	return nil
}

func (c *MemberController) addLink(
	ctx context.Context,
	tx *gorm.DB,
	memberID, otherID uuid.UUID,
) error {
	log := logger.NewWithContext(ctx, "memberController").Function("addLink")

	member, err := c.memberRepo.GetMember(ctx, tx, memberID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return log.ErrorWithType(ErrNotFound, "member not found", "memberID", memberID)
		}
		return log.Error("failed to load member", "error", err)
	}

	link := otherID.String()
	if slices.Contains(member.Associations, link) {
		return nil
	}

	member.Associations = append(member.Associations, link)
	return c.memberRepo.SaveAssociations(ctx, tx, member)
}

func (c *MemberController) removeLink(
	ctx context.Context,
	tx *gorm.DB,
	memberID, otherID uuid.UUID,
) error {
	log := logger.NewWithContext(ctx, "memberController").Function("removeLink")

	member, err := c.memberRepo.GetMember(ctx, tx, memberID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return log.ErrorWithType(ErrNotFound, "member not found", "memberID", memberID)
		}
		return log.Error("failed to load member", "error", err)
	}

	link := otherID.String()
	index := slices.Index(member.Associations, link)
	if index < 0 {
		return nil
	}

	member.Associations = slices.Delete(member.Associations, index, index+1)
	return c.memberRepo.SaveAssociations(ctx, tx, member)
}

