package shiftController

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

	"gorm.io/gorm"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

type ShiftController struct {
	shiftRepo          repositories.ShiftRepository
	transactionService *services.TransactionService
	db                 database.DB
	Config             config.Config
}

type StartShiftRequest struct {
	DutyOfficer string `json:"dutyOfficer"`
}

type EndShiftRequest struct {
	HandoverNotes string `json:"handoverNotes,omitempty"`
}

// ShiftStatus describes the active shift for the desk status banner.
type ShiftStatus struct {
	Shift         *Shift        `json:"shift,omitempty"`
	Elapsed       time.Duration `json:"elapsed"`
	ChangeoverDue bool          `json:"changeoverDue"`
}

type ShiftControllerInterface interface {
	Start(ctx context.Context, request *StartShiftRequest) (*Shift, error)
	End(ctx context.Context, request *EndShiftRequest) (*Shift, error)
	Status(ctx context.Context) (*ShiftStatus, error)
	History(ctx context.Context, limit int) ([]*Shift, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) ShiftControllerInterface {
	return &ShiftController{
		shiftRepo:          repos.Shift,
		transactionService: services.Transaction,
		db:                 db,
		Config:             config,
	}
}

func (c *ShiftController) Start(
	ctx context.Context,
	request *StartShiftRequest,
) (*Shift, error) {
	log := logger.NewWithContext(ctx, "shiftController").Function("Start")

	if request.DutyOfficer == "" {
		return nil, log.ErrorWithType(ErrValidation, "dutyOfficer is required")
	}

	var shift *Shift
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		active, err := c.shiftRepo.GetActiveShift(ctx, tx)
		if err != nil && err != gorm.ErrRecordNotFound {
			return log.Error("failed to check for active shift", "error", err)
		}
		if active != nil {
			return log.ErrorWithType(
				ErrConflict,
				"a shift is already active",
				"dutyOfficer", active.DutyOfficer,
			)
		}

		shift = &Shift{
			DutyOfficer: request.DutyOfficer,
			StartTime:   time.Now(),
		}

		if err := c.shiftRepo.CreateShift(ctx, tx, shift); err != nil {
			return log.Error("failed to start shift", "error", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Shift started", "shiftID", shift.ID, "dutyOfficer", shift.DutyOfficer)

	return shift, nil
}

func (c *ShiftController) End(
	ctx context.Context,
	request *EndShiftRequest,
) (*Shift, error) {
	log := logger.NewWithContext(ctx, "shiftController").Function("End")

	var shift *Shift
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		active, err := c.shiftRepo.GetActiveShift(ctx, tx)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return log.ErrorWithType(ErrNotFound, "no active shift to end")
			}
			return log.Error("failed to load active shift", "error", err)
		}

		now := time.Now()
		active.EndTime = &now
		active.HandoverNotes = request.HandoverNotes

		if err := c.shiftRepo.CloseShift(ctx, tx, active); err != nil {
			if err == gorm.ErrRecordNotFound {
				return log.ErrorWithType(ErrNotFound, "no active shift to end")
			}
			return log.Error("failed to end shift", "error", err)
		}

		shift = active
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Shift ended", "shiftID", shift.ID, "dutyOfficer", shift.DutyOfficer)

	return shift, nil
}

func (c *ShiftController) Status(ctx context.Context) (*ShiftStatus, error) {
	log := logger.NewWithContext(ctx, "shiftController").Function("Status")

	active, err := c.shiftRepo.GetActiveShift(ctx, c.db.SQL)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &ShiftStatus{}, nil
		}
		return nil, log.Error("failed to load active shift", "error", err)
	}

	elapsed := active.Elapsed(time.Now())
	shiftLength := time.Duration(c.Config.ShiftLengthHours) * time.Hour

	return &ShiftStatus{
		Shift:         active,
		Elapsed:       elapsed,
		ChangeoverDue: elapsed >= shiftLength,
	}, nil
}

func (c *ShiftController) History(ctx context.Context, limit int) ([]*Shift, error) {
	log := logger.NewWithContext(ctx, "shiftController").Function("History")

	shifts, err := c.shiftRepo.ListShiftHistory(ctx, c.db.SQL, limit)
	if err != nil {
		return nil, log.Error("failed to list shift history", "error", err)
	}

	return shifts, nil
}
