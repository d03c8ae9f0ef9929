package repositories

import (
	"context"
	"strings"

	"dutydesk/internal/constants"
	"dutydesk/internal/database"
	"dutydesk/internal/logger"
	. "dutydesk/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemberRepository interface {
	CreateMember(ctx context.Context, tx *gorm.DB, member *Member) error
	GetMember(ctx context.Context, tx *gorm.DB, memberID uuid.UUID) (*Member, error)
	GetMemberByMemberID(ctx context.Context, tx *gorm.DB, memberID string) (*Member, error)
	ListMembers(ctx context.Context, tx *gorm.DB) ([]*Member, error)
	SearchMembers(ctx context.Context, tx *gorm.DB, query string) ([]*Member, error)
	UpdateMember(ctx context.Context, tx *gorm.DB, member *Member) (int64, error)
	DeleteMember(ctx context.Context, tx *gorm.DB, memberID uuid.UUID) (int64, error)
	SaveAssociations(ctx context.Context, tx *gorm.DB, member *Member) error
	ReplaceAll(ctx context.Context, tx *gorm.DB, members []*Member) error
}

type memberRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewMemberRepository(db database.DB) MemberRepository {
	return &memberRepository{
		cache: db.Cache.General,
		log:   logger.New("memberRepository"),
	}
}

func (r *memberRepository) CreateMember(ctx context.Context, tx *gorm.DB, member *Member) error {
	log := r.log.Function("CreateMember")

	err := gorm.G[Member](tx).Create(ctx, member)
	if err != nil {
		return log.Err("failed to create member", err, "memberID", member.MemberID)
	}

	r.clearSearchCache(ctx)

	return nil
}

func (r *memberRepository) GetMember(
	ctx context.Context,
	tx *gorm.DB,
	memberID uuid.UUID,
) (*Member, error) {
	log := r.log.Function("GetMember")

	member, err := gorm.G[*Member](tx).
		Where(Member{BaseUUIDModel: BaseUUIDModel{ID: memberID}}).
		First(ctx)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get member", err, "memberID", memberID)
	}

	return member, nil
}

func (r *memberRepository) GetMemberByMemberID(
	ctx context.Context,
	tx *gorm.DB,
	memberID string,
) (*Member, error) {
	log := r.log.Function("GetMemberByMemberID")

	member, err := gorm.G[*Member](tx).
		Where("member_id = ?", memberID).
		First(ctx)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get member by member id", err, "memberID", memberID)
	}

	return member, nil
}

func (r *memberRepository) ListMembers(ctx context.Context, tx *gorm.DB) ([]*Member, error) {
	log := r.log.Function("ListMembers")

	members, err := gorm.G[*Member](tx).
		Order("name ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list members", err)
	}

	return members, nil
}

func (r *memberRepository) SearchMembers(
	ctx context.Context,
	tx *gorm.DB,
	query string,
) ([]*Member, error) {
	log := r.log.Function("SearchMembers")

	normalized := strings.TrimSpace(strings.ToLower(query))
	if normalized == "" {
		return r.ListMembers(ctx, tx)
	}

	var cached []*Member
	found, err := database.NewCacheBuilder(r.cache, normalized).
		WithContext(ctx).
		WithHash(constants.MemberSearchCachePrefix).
		Get(&cached)
	if err != nil {
		log.Warn("failed to get member search from cache", "query", normalized, "error", err)
	}

	if found {
		return cached, nil
	}

	pattern := "%" + normalized + "%"
	members, err := gorm.G[*Member](tx).
		Where(
			"LOWER(member_id) LIKE ? OR LOWER(name) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(email) LIKE ?",
			pattern, pattern, pattern, pattern,
		).
		Order("name ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to search members", err, "query", normalized)
	}

	err = database.NewCacheBuilder(r.cache, normalized).
		WithContext(ctx).
		WithHash(constants.MemberSearchCachePrefix).
		WithStruct(members).
		WithTTL(constants.RegistryCacheExpiry).
		Set()
	if err != nil {
		log.Warn("failed to cache member search", "query", normalized, "error", err)
	}

	return members, nil
}

func (r *memberRepository) UpdateMember(
	ctx context.Context,
	tx *gorm.DB,
	member *Member,
) (int64, error) {
	log := r.log.Function("UpdateMember")

	result := tx.WithContext(ctx).
		Model(&Member{}).
		Where("id = ?", member.ID).
		Select("MemberID", "Name", "Phone", "Email", "Address", "Notes", "JoinDate", "Branch", "Status", "Group").
		Updates(member)
	if result.Error != nil {
		return 0, log.Err("failed to update member", result.Error, "memberID", member.ID)
	}

	r.clearSearchCache(ctx)

	return result.RowsAffected, nil
}

func (r *memberRepository) DeleteMember(
	ctx context.Context,
	tx *gorm.DB,
	memberID uuid.UUID,
) (int64, error) {
	log := r.log.Function("DeleteMember")

	// Checkout and package records keep their bare member-id strings; member
	// deletion never cascades into them.
	rowsAffected, err := gorm.G[*Member](tx).
		Where("id = ?", memberID).
		Delete(ctx)
	if err != nil {
		return 0, log.Err("failed to delete member", err, "memberID", memberID)
	}

	r.clearSearchCache(ctx)

	return int64(rowsAffected), nil
}

// SaveAssociations persists only the association list for the given member.
func (r *memberRepository) SaveAssociations(
	ctx context.Context,
	tx *gorm.DB,
	member *Member,
) error {
	log := r.log.Function("SaveAssociations")

	result := tx.WithContext(ctx).
		Model(&Member{}).
		Where("id = ?", member.ID).
		Update("associations", member.Associations)
	if result.Error != nil {
		return log.Err("failed to save associations", result.Error, "memberID", member.ID)
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *memberRepository) ReplaceAll(ctx context.Context, tx *gorm.DB, members []*Member) error {
	log := r.log.Function("ReplaceAll")

	if err := tx.WithContext(ctx).Unscoped().Where("1 = 1").Delete(&Member{}).Error; err != nil {
		return log.Err("failed to clear members", err)
	}

	if len(members) > 0 {
		if err := tx.WithContext(ctx).Create(&members).Error; err != nil {
			return log.Err("failed to insert imported members", err, "count", len(members))
		}
	}

	r.clearSearchCache(ctx)

	log.Info("replaced member store", "members", len(members))
	return nil
}

func (r *memberRepository) clearSearchCache(ctx context.Context) {
	// Search entries are keyed by query; rely on their short TTL instead of
	// pattern deletes.
	err := database.NewCacheBuilder(r.cache, constants.MemberSearchCachePrefix).
		WithContext(ctx).
		Delete()
	if err != nil {
		r.log.Warn("failed to clear member search cache", "error", err)
	}
}
