package equipmentController

import (
	"context"
	"errors"
	"time"

	"dutydesk/config"
	"dutydesk/internal/database"
	"dutydesk/internal/logger"
	. "dutydesk/internal/models"
	"dutydesk/internal/repositories"
	"dutydesk/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

type EquipmentController struct {
	equipmentRepo      repositories.EquipmentRepository
	transactionService *services.TransactionService
	db                 database.DB
	Config             config.Config
}

type AddEquipmentRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	ImageURI      string          `json:"imageUri,omitempty"`
	Category      string          `json:"category,omitempty"`
	SerialNumber  *string         `json:"serialNumber,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	DepositAmount decimal.Decimal `json:"depositAmount"`
}

type CheckoutRequest struct {
	EquipmentID        uuid.UUID       `json:"equipmentId"`
	MemberID           string          `json:"memberId"`
	ExpectedReturnDate string          `json:"expectedReturnDate"`
	CheckoutNotes      string          `json:"checkoutNotes,omitempty"`
	DutyOfficer        string          `json:"dutyOfficer"`
	DepositCollected   decimal.Decimal `json:"depositCollected"`
}

type ReturnRequest struct {
	EquipmentID     uuid.UUID `json:"equipmentId"`
	ReturnNotes     string    `json:"returnNotes,omitempty"`
	DepositReturned *bool     `json:"depositReturned,omitempty"`
	CollectedBy     *string   `json:"collectedBy,omitempty"`
}

type ReturnResponse struct {
	Record          *CheckoutRecord `json:"record"`
	SuggestedRefund decimal.Decimal `json:"suggestedRefund"`
}

type RenewRequest struct {
	EquipmentID  uuid.UUID `json:"equipmentId"`
	RenewalNotes string    `json:"renewalNotes,omitempty"`
}

type OverdueItem struct {
	Equipment   *Equipment      `json:"equipment"`
	Checkout    *CheckoutRecord `json:"checkout"`
	DaysOverdue int             `json:"daysOverdue"`
}

type DueSoonItem struct {
	Equipment *Equipment      `json:"equipment"`
	Checkout  *CheckoutRecord `json:"checkout"`
	DaysLeft  int             `json:"daysLeft"`
}

type EquipmentControllerInterface interface {
	Add(ctx context.Context, request *AddEquipmentRequest) (*Equipment, error)
	Get(ctx context.Context, equipmentID uuid.UUID) (*Equipment, error)
	List(ctx context.Context) ([]*Equipment, error)
	Update(ctx context.Context, equipment *Equipment) (*Equipment, error)
	Remove(ctx context.Context, equipmentID uuid.UUID) error
	Checkout(ctx context.Context, request *CheckoutRequest) (*CheckoutRecord, error)
	Return(ctx context.Context, request *ReturnRequest) (*ReturnResponse, error)
	Renew(ctx context.Context, request *RenewRequest) (*CheckoutRecord, error)
	Overdue(ctx context.Context) ([]*OverdueItem, error)
	DueSoon(ctx context.Context) ([]*DueSoonItem, error)
	ActiveCheckout(ctx context.Context, equipmentID uuid.UUID) (*CheckoutRecord, error)
	History(ctx context.Context, equipmentID uuid.UUID) ([]*CheckoutRecord, error)
	ReplaceAll(ctx context.Context, equipment []*Equipment, records []*CheckoutRecord) error
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) EquipmentControllerInterface {
	return &EquipmentController{
		equipmentRepo:      repos.Equipment,
		transactionService: services.Transaction,
		db:                 db,
		Config:             config,
	}
}

func parseDateTime(dateStr string) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, errors.New("datetime is required")
	}

	t, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return time.Time{}, errors.New("invalid datetime format, expected RFC3339")
	}

	return t, nil
}

func (c *EquipmentController) Add(
	ctx context.Context,
	request *AddEquipmentRequest,
) (*Equipment, error) {
	log := logger.NewWithContext(ctx, "equipmentController").Function("Add")

	if request.Name == "" {
		return nil, log.ErrorWithType(ErrValidation, "name is required")
	}

	if request.DepositAmount.IsNegative() {
		return nil, log.ErrorWithType(
			ErrValidation,
			"deposit amount cannot be negative",
			"depositAmount", request.DepositAmount,
		)
	}

	equipment := &Equipment{
		Name:          request.Name,
		Description:   request.Description,
		ImageURI:      request.ImageURI,
		Category:      request.Category,
		SerialNumber:  request.SerialNumber,
		Notes:         request.Notes,
		DepositAmount: request.DepositAmount,
	}

	if err := c.equipmentRepo.CreateEquipment(ctx, c.db.SQL, equipment); err != nil {
		return nil, log.Error("failed to add equipment", "error", err, "name", request.Name)
	}

	log.Info("Equipment added", "equipmentID", equipment.ID, "name", equipment.Name)

	return equipment, nil
}

func (c *EquipmentController) Get(
	ctx context.Context,
	equipmentID uuid.UUID,
) (*Equipment, error) {
	log := logger.NewWithContext(ctx, "equipmentController").Function("Get")

	equipment, err := c.equipmentRepo.GetEquipment(ctx, c.db.SQL, equipmentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, log.ErrorWithType(ErrNotFound, "equipment not found", "equipmentID", equipmentID)
		}
		return nil, log.Error("failed to get equipment", "error", err, "equipmentID", equipmentID)
	}

	return equipment, nil
}

func (c *EquipmentController) List(ctx context.Context) ([]*Equipment, error) {
	log := logger.NewWithContext(ctx, "equipmentController").Function("List")

	equipment, err := c.equipmentRepo.ListEquipment(ctx, c.db.SQL)
	if err != nil {
		return nil, log.Error("failed to list equipment", "error", err)
	}

	return equipment, nil
}

func (c *EquipmentController) Update(
	ctx context.Context,
	equipment *Equipment,
) (*Equipment, error) {
	log := logger.NewWithContext(ctx, "equipmentController").Function("Update")

	if equipment.ID == uuid.Nil {
		return nil, log.ErrorWithType(ErrValidation, "equipment id is required")
	}

	if equipment.Name == "" {
		return nil, log.ErrorWithType(ErrValidation, "name is required")
	}

	if equipment.DepositAmount.IsNegative() {
		return nil, log.ErrorWithType(ErrValidation, "deposit amount cannot be negative")
	}

	rowsAffected, err := c.equipmentRepo.UpdateEquipment(ctx, c.db.SQL, equipment)
	if err != nil {
		return nil, log.Error("failed to update equipment", "error", err, "equipmentID", equipment.ID)
	}

	if rowsAffected == 0 {
		return nil, log.ErrorWithType(ErrNotFound, "equipment not found", "equipmentID", equipment.ID)
	}

	updated, err := c.equipmentRepo.GetEquipment(ctx, c.db.SQL, equipment.ID)
	if err != nil {
		return nil, log.Error("failed to reload updated equipment", "error", err, "equipmentID", equipment.ID)
	}

	return updated, nil
}

// Remove deletes the equipment and every checkout record referencing it, the
// open one included. The desk client owns the confirmation dialog; no
// business-rule guard lives here.
func (c *EquipmentController) Remove(ctx context.Context, equipmentID uuid.UUID) error {
	log := logger.NewWithContext(ctx, "equipmentController").Function("Remove")

	return c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		rowsAffected, err := c.equipmentRepo.DeleteEquipment(ctx, tx, equipmentID)
		if err != nil {
			return log.Error("failed to remove equipment", "error", err, "equipmentID", equipmentID)
		}

		if rowsAffected == 0 {
			return log.ErrorWithType(ErrNotFound, "equipment not found", "equipmentID", equipmentID)
		}

		log.Info("Equipment removed", "equipmentID", equipmentID)
		return nil
	})
}

func (c *EquipmentController) Checkout(
	ctx context.Context,
	request *CheckoutRequest,
) (*CheckoutRecord, error) {
	log := logger.NewWithContext(ctx, "equipmentController").Function("Checkout")

	if request.EquipmentID == uuid.Nil {
		return nil, log.ErrorWithType(ErrValidation, "equipmentId is required")
	}

	if request.MemberID == "" {
		return nil, log.ErrorWithType(ErrValidation, "memberId is required")
	}

	if len(request.CheckoutNotes) > MaxNotesLength {
		return nil, log.ErrorWithType(
			ErrValidation,
			"checkout notes exceed maximum length",
			"length", len(request.CheckoutNotes),
			"max", MaxNotesLength,
		)
	}

	expectedReturn, err := parseDateTime(request.ExpectedReturnDate)
	if err != nil {
		return nil, log.ErrorWithType(ErrValidation, "invalid expectedReturnDate", "error", err)
	}

	now := time.Now()
	if err := validateCheckoutWindow(expectedReturn, now); err != nil {
		return nil, log.ErrorWithType(ErrValidation, err.Error(), "expectedReturnDate", expectedReturn)
	}

	if request.DepositCollected.IsNegative() {
		return nil, log.ErrorWithType(ErrValidation, "deposit collected cannot be negative")
	}

	record := &CheckoutRecord{
		EquipmentID:        request.EquipmentID,
		MemberID:           request.MemberID,
		CheckoutDate:       now,
		ExpectedReturnDate: expectedReturn,
		CheckoutNotes:      request.CheckoutNotes,
		DutyOfficer:        request.DutyOfficer,
		DepositCollected:   request.DepositCollected,
	}

	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if _, err := c.equipmentRepo.GetEquipment(ctx, tx, request.EquipmentID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return log.ErrorWithType(ErrNotFound, "equipment not found", "equipmentID", request.EquipmentID)
			}
			return log.Error("failed to verify equipment", "error", err)
		}

		// The at-most-one-open-checkout invariant is enforced here rather
		// than trusted to the caller.
		_, err := c.equipmentRepo.GetOpenCheckout(ctx, tx, request.EquipmentID)
		if err == nil {
			return log.ErrorWithType(
				ErrConflict,
				"equipment is already checked out",
				"equipmentID", request.EquipmentID,
			)
		}
		if err != gorm.ErrRecordNotFound {
			return log.Error("failed to check for open checkout", "error", err)
		}

		return c.equipmentRepo.CreateCheckoutRecord(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}

	log.Info(
		"Equipment checked out",
		"equipmentID", request.EquipmentID,
		"memberID", request.MemberID,
		"expectedReturnDate", expectedReturn,
	)

	return record, nil
}

func (c *EquipmentController) Return(
	ctx context.Context,
	request *ReturnRequest,
) (*ReturnResponse, error) {
	log := logger.NewWithContext(ctx, "equipmentController").Function("Return")

	if request.EquipmentID == uuid.Nil {
		return nil, log.ErrorWithType(ErrValidation, "equipmentId is required")
	}

	if len(request.ReturnNotes) > MaxNotesLength {
		return nil, log.ErrorWithType(ErrValidation, "return notes exceed maximum length")
	}

	// Deposit is considered returned unless the duty officer says otherwise.
	depositReturned := true
	if request.DepositReturned != nil {
		depositReturned = *request.DepositReturned
	}

	var record *CheckoutRecord
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		open, err := c.equipmentRepo.GetOpenCheckout(ctx, tx, request.EquipmentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return log.ErrorWithType(
					ErrNotFound,
					"no open checkout for equipment",
					"equipmentID", request.EquipmentID,
				)
			}
			return log.Error("failed to locate open checkout", "error", err)
		}

		now := time.Now()
		open.ReturnDate = &now
		open.ReturnNotes = request.ReturnNotes
		open.DepositReturned = &depositReturned
		open.CollectedBy = request.CollectedBy

		if err := c.equipmentRepo.UpdateCheckoutRecord(ctx, tx, open); err != nil {
			return log.Error("failed to close checkout record", "error", err, "recordID", open.ID)
		}

		record = open
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info(
		"Equipment returned",
		"equipmentID", request.EquipmentID,
		"recordID", record.ID,
		"depositReturned", depositReturned,
	)

	return &ReturnResponse{
		Record:          record,
		SuggestedRefund: suggestedRefund(record.DepositCollected),
	}, nil
}

func (c *EquipmentController) Renew(
	ctx context.Context,
	request *RenewRequest,
) (*CheckoutRecord, error) {
	log := logger.NewWithContext(ctx, "equipmentController").Function("Renew")

	if request.EquipmentID == uuid.Nil {
		return nil, log.ErrorWithType(ErrValidation, "equipmentId is required")
	}

	var record *CheckoutRecord
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		open, err := c.equipmentRepo.GetOpenCheckout(ctx, tx, request.EquipmentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return log.ErrorWithType(
					ErrNotFound,
					"no open checkout for equipment",
					"equipmentID", request.EquipmentID,
				)
			}
			return log.Error("failed to locate open checkout", "error", err)
		}

		now := time.Now()
		newExpectedReturn := computeRenewalDate(open.ExpectedReturnDate, now)
		open.CheckoutNotes = appendRenewalAudit(open.CheckoutNotes, newExpectedReturn, now, request.RenewalNotes)
		open.ExpectedReturnDate = newExpectedReturn

		if err := c.equipmentRepo.UpdateCheckoutRecord(ctx, tx, open); err != nil {
			return log.Error("failed to renew checkout record", "error", err, "recordID", open.ID)
		}

		record = open
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info(
		"Checkout renewed",
		"equipmentID", request.EquipmentID,
		"newExpectedReturnDate", record.ExpectedReturnDate,
	)

	return record, nil
}

// Overdue recomputes the overdue set from the current wall clock on every
// call; nothing is cached or stored.
func (c *EquipmentController) Overdue(ctx context.Context) ([]*OverdueItem, error) {
	log := logger.NewWithContext(ctx, "equipmentController").Function("Overdue")

	openRecords, err := c.equipmentRepo.ListOpenCheckouts(ctx, c.db.SQL)
	if err != nil {
		return nil, log.Error("failed to list open checkouts", "error", err)
	}

	now := time.Now()
	items := make([]*OverdueItem, 0)
	for _, record := range openRecords {
		if !isOverdue(record.ExpectedReturnDate, now) {
			continue
		}

		equipment, err := c.equipmentRepo.GetEquipment(ctx, c.db.SQL, record.EquipmentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				continue
			}
			return nil, log.Error("failed to load overdue equipment", "error", err)
		}

		items = append(items, &OverdueItem{
			Equipment:   equipment,
			Checkout:    record,
			DaysOverdue: int(now.Sub(record.ExpectedReturnDate).Hours() / 24),
		})
	}

	return items, nil
}

// DueSoon returns open checkouts due within the horizon, overdue excluded,
// ascending by due date.
func (c *EquipmentController) DueSoon(ctx context.Context) ([]*DueSoonItem, error) {
	log := logger.NewWithContext(ctx, "equipmentController").Function("DueSoon")

	openRecords, err := c.equipmentRepo.ListOpenCheckouts(ctx, c.db.SQL)
	if err != nil {
		return nil, log.Error("failed to list open checkouts", "error", err)
	}

	now := time.Now()
	items := make([]*DueSoonItem, 0)
	for _, record := range openRecords {
		if !isDueSoon(record.ExpectedReturnDate, now) {
			continue
		}

		equipment, err := c.equipmentRepo.GetEquipment(ctx, c.db.SQL, record.EquipmentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				continue
			}
			return nil, log.Error("failed to load due-soon equipment", "error", err)
		}

		items = append(items, &DueSoonItem{
			Equipment: equipment,
			Checkout:  record,
			DaysLeft:  int(record.ExpectedReturnDate.Sub(now).Hours() / 24),
		})
	}

	return items, nil
}

func (c *EquipmentController) ActiveCheckout(
	ctx context.Context,
	equipmentID uuid.UUID,
) (*CheckoutRecord, error) {
	log := logger.NewWithContext(ctx, "equipmentController").Function("ActiveCheckout")

	record, err := c.equipmentRepo.GetOpenCheckout(ctx, c.db.SQL, equipmentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, log.ErrorWithType(
				ErrNotFound,
				"no open checkout for equipment",
				"equipmentID", equipmentID,
			)
		}
		return nil, log.Error("failed to get active checkout", "error", err)
	}

	return record, nil
}

func (c *EquipmentController) History(
	ctx context.Context,
	equipmentID uuid.UUID,
) ([]*CheckoutRecord, error) {
	log := logger.NewWithContext(ctx, "equipmentController").Function("History")

	records, err := c.equipmentRepo.ListCheckoutHistory(ctx, c.db.SQL, equipmentID)
	if err != nil {
		return nil, log.Error("failed to list checkout history", "error", err, "equipmentID", equipmentID)
	}

	return records, nil
}

// ReplaceAll swaps both collections for import/restore. The transfer service
// is responsible for referential sanity of what it passes in.
func (c *EquipmentController) ReplaceAll(
	ctx context.Context,
	equipment []*Equipment,
	records []*CheckoutRecord,
) error {
	log := logger.NewWithContext(ctx, "equipmentController").Function("ReplaceAll")

	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return c.equipmentRepo.ReplaceAll(ctx, tx, equipment, records)
	})
	if err != nil {
		return log.Error("failed to replace equipment store", "error", err)
	}

	return nil
}
