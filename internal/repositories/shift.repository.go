package repositories

import (
	"context"

	"dutydesk/internal/database"
	"dutydesk/internal/logger"
	. "dutydesk/internal/models"

	"gorm.io/gorm"
)

type ShiftRepository interface {
	CreateShift(ctx context.Context, tx *gorm.DB, shift *Shift) error
	GetActiveShift(ctx context.Context, tx *gorm.DB) (*Shift, error)
	CloseShift(ctx context.Context, tx *gorm.DB, shift *Shift) error
	ListShiftHistory(ctx context.Context, tx *gorm.DB, limit int) ([]*Shift, error)
	ListAllShifts(ctx context.Context, tx *gorm.DB) ([]*Shift, error)
	ReplaceAll(ctx context.Context, tx *gorm.DB, shifts []*Shift) error
}

type shiftRepository struct {
	log logger.Logger
}

func NewShiftRepository(db database.DB) ShiftRepository {
	return &shiftRepository{
		log: logger.New("shiftRepository"),
	}
}

func (r *shiftRepository) CreateShift(ctx context.Context, tx *gorm.DB, shift *Shift) error {
	log := r.log.Function("CreateShift")

	err := gorm.G[Shift](tx).Create(ctx, shift)
	if err != nil {
		return log.Err("failed to create shift", err, "dutyOfficer", shift.DutyOfficer)
	}

	return nil
}

func (r *shiftRepository) GetActiveShift(ctx context.Context, tx *gorm.DB) (*Shift, error) {
	log := r.log.Function("GetActiveShift")

	shift, err := gorm.G[*Shift](tx).
		Where("end_time IS NULL").
		First(ctx)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get active shift", err)
	}

	return shift, nil
}

func (r *shiftRepository) CloseShift(ctx context.Context, tx *gorm.DB, shift *Shift) error {
	log := r.log.Function("CloseShift")

	result := tx.WithContext(ctx).
		Model(&Shift{}).
		Where("id = ? AND end_time IS NULL", shift.ID).
		Select("EndTime", "HandoverNotes").
		Updates(shift)
	if result.Error != nil {
		return log.Err("failed to close shift", result.Error, "shiftID", shift.ID)
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *shiftRepository) ListShiftHistory(
	ctx context.Context,
	tx *gorm.DB,
	limit int,
) ([]*Shift, error) {
	log := r.log.Function("ListShiftHistory")

	var shifts []*Shift
	var err error
	if limit > 0 {
		shifts, err = gorm.G[*Shift](tx).
			Where("end_time IS NOT NULL").
			Order("start_time DESC").
			Limit(limit).
			Find(ctx)
	} else {
		shifts, err = gorm.G[*Shift](tx).
			Where("end_time IS NOT NULL").
			Order("start_time DESC").
			Find(ctx)
	}
	if err != nil {
		return nil, log.Err("failed to list shift history", err)
	}

	return shifts, nil
}

// ListAllShifts returns every shift including the active one. Snapshots need
// the full log, not just closed shifts.
func (r *shiftRepository) ListAllShifts(ctx context.Context, tx *gorm.DB) ([]*Shift, error) {
	log := r.log.Function("ListAllShifts")

	shifts, err := gorm.G[*Shift](tx).
		Order("start_time DESC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list shifts", err)
	}

	return shifts, nil
}

// ReplaceAll swaps the whole shift log for snapshot restore.
func (r *shiftRepository) ReplaceAll(ctx context.Context, tx *gorm.DB, shifts []*Shift) error {
	log := r.log.Function("ReplaceAll")

	if err := tx.WithContext(ctx).Unscoped().Where("1 = 1").Delete(&Shift{}).Error; err != nil {
		return log.Err("failed to clear shifts", err)
	}

	if len(shifts) > 0 {
		if err := tx.WithContext(ctx).Create(&shifts).Error; err != nil {
			return log.Err("failed to insert restored shifts", err, "count", len(shifts))
		}
	}

	log.Info("replaced shift log", "shifts", len(shifts))
	return nil
}
