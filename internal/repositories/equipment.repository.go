package repositories

import (
	"context"

	"dutydesk/internal/constants"
	"dutydesk/internal/database"
	"dutydesk/internal/logger"
	. "dutydesk/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EquipmentRepository interface {
	CreateEquipment(ctx context.Context, tx *gorm.DB, equipment *Equipment) error
	GetEquipment(ctx context.Context, tx *gorm.DB, equipmentID uuid.UUID) (*Equipment, error)
	ListEquipment(ctx context.Context, tx *gorm.DB) ([]*Equipment, error)
	UpdateEquipment(ctx context.Context, tx *gorm.DB, equipment *Equipment) (int64, error)
	DeleteEquipment(ctx context.Context, tx *gorm.DB, equipmentID uuid.UUID) (int64, error)

	CreateCheckoutRecord(ctx context.Context, tx *gorm.DB, record *CheckoutRecord) error
	UpdateCheckoutRecord(ctx context.Context, tx *gorm.DB, record *CheckoutRecord) error
	GetOpenCheckout(ctx context.Context, tx *gorm.DB, equipmentID uuid.UUID) (*CheckoutRecord, error)
	ListOpenCheckouts(ctx context.Context, tx *gorm.DB) ([]*CheckoutRecord, error)
	ListCheckoutHistory(ctx context.Context, tx *gorm.DB, equipmentID uuid.UUID) ([]*CheckoutRecord, error)
	ListAllCheckoutRecords(ctx context.Context, tx *gorm.DB) ([]*CheckoutRecord, error)

	ReplaceAll(ctx context.Context, tx *gorm.DB, equipment []*Equipment, records []*CheckoutRecord) error

	ClearEquipmentCache(ctx context.Context)
}

type equipmentRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewEquipmentRepository(db database.DB) EquipmentRepository {
	return &equipmentRepository{
		cache: db.Cache.General,
		log:   logger.New("equipmentRepository"),
	}
}

func (r *equipmentRepository) CreateEquipment(
	ctx context.Context,
	tx *gorm.DB,
	equipment *Equipment,
) error {
	log := r.log.Function("CreateEquipment")

	err := gorm.G[Equipment](tx).Create(ctx, equipment)
	if err != nil {
		return log.Err("failed to create equipment", err, "name", equipment.Name)
	}

	equipment.Status = EquipmentStatusAvailable
	r.ClearEquipmentCache(ctx)

	return nil
}

func (r *equipmentRepository) GetEquipment(
	ctx context.Context,
	tx *gorm.DB,
	equipmentID uuid.UUID,
) (*Equipment, error) {
	log := r.log.Function("GetEquipment")

	equipment, err := gorm.G[*Equipment](tx).
		Where(Equipment{BaseUUIDModel: BaseUUIDModel{ID: equipmentID}}).
		First(ctx)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get equipment", err, "equipmentID", equipmentID)
	}

	open, err := r.GetOpenCheckout(ctx, tx, equipmentID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	equipment.Status = deriveStatus(open != nil)

	return equipment, nil
}

func (r *equipmentRepository) ListEquipment(
	ctx context.Context,
	tx *gorm.DB,
) ([]*Equipment, error) {
	log := r.log.Function("ListEquipment")

	var cached []*Equipment
	found, err := database.NewCacheBuilder(r.cache, constants.EquipmentListCachePrefix).
		WithContext(ctx).
		Get(&cached)
	if err != nil {
		log.Warn("failed to get equipment list from cache", "error", err)
	}

	if found {
		return cached, nil
	}

	equipment, err := gorm.G[*Equipment](tx).
		Order("created_at ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list equipment", err)
	}

	openRecords, err := r.ListOpenCheckouts(ctx, tx)
	if err != nil {
		return nil, err
	}

	openByEquipment := make(map[uuid.UUID]bool, len(openRecords))
	for _, record := range openRecords {
		openByEquipment[record.EquipmentID] = true
	}

	for _, item := range equipment {
		item.Status = deriveStatus(openByEquipment[item.ID])
	}

	err = database.NewCacheBuilder(r.cache, constants.EquipmentListCachePrefix).
		WithContext(ctx).
		WithStruct(equipment).
		WithTTL(constants.RegistryCacheExpiry).
		Set()
	if err != nil {
		log.Warn("failed to set equipment list in cache", "error", err)
	}

	return equipment, nil
}

func (r *equipmentRepository) UpdateEquipment(
	ctx context.Context,
	tx *gorm.DB,
	equipment *Equipment,
) (int64, error) {
	log := r.log.Function("UpdateEquipment")

	// Full-record replace; the caller supplies every field.
	result := tx.WithContext(ctx).
		Model(&Equipment{}).
		Where("id = ?", equipment.ID).
		Select("Name", "Description", "ImageURI", "Category", "SerialNumber", "Notes", "DepositAmount").
		Updates(equipment)
	if result.Error != nil {
		return 0, log.Err("failed to update equipment", result.Error, "equipmentID", equipment.ID)
	}

	r.ClearEquipmentCache(ctx)

	return result.RowsAffected, nil
}

func (r *equipmentRepository) DeleteEquipment(
	ctx context.Context,
	tx *gorm.DB,
	equipmentID uuid.UUID,
) (int64, error) {
	log := r.log.Function("DeleteEquipment")

	// Cascade: every checkout record referencing the equipment goes with it,
	// the open one included.
	if _, err := gorm.G[*CheckoutRecord](tx).
		Where("equipment_id = ?", equipmentID).
		Delete(ctx); err != nil {
		return 0, log.Err("failed to delete checkout records", err, "equipmentID", equipmentID)
	}

	rowsAffected, err := gorm.G[*Equipment](tx).
		Where("id = ?", equipmentID).
		Delete(ctx)
	if err != nil {
		return 0, log.Err("failed to delete equipment", err, "equipmentID", equipmentID)
	}

	r.ClearEquipmentCache(ctx)

	return int64(rowsAffected), nil
}

func (r *equipmentRepository) CreateCheckoutRecord(
	ctx context.Context,
	tx *gorm.DB,
	record *CheckoutRecord,
) error {
	log := r.log.Function("CreateCheckoutRecord")

	err := gorm.G[CheckoutRecord](tx).Create(ctx, record)
	if err != nil {
		return log.Err(
			"failed to create checkout record",
			err,
			"equipmentID", record.EquipmentID,
			"memberID", record.MemberID,
		)
	}

	r.ClearEquipmentCache(ctx)

	return nil
}

func (r *equipmentRepository) UpdateCheckoutRecord(
	ctx context.Context,
	tx *gorm.DB,
	record *CheckoutRecord,
) error {
	log := r.log.Function("UpdateCheckoutRecord")

	result := tx.WithContext(ctx).
		Model(&CheckoutRecord{}).
		Where("id = ?", record.ID).
		Select("ExpectedReturnDate", "ReturnDate", "CheckoutNotes", "ReturnNotes", "DepositReturned", "CollectedBy").
		Updates(record)
	if result.Error != nil {
		return log.Err("failed to update checkout record", result.Error, "recordID", record.ID)
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.ClearEquipmentCache(ctx)

	return nil
}

func (r *equipmentRepository) GetOpenCheckout(
	ctx context.Context,
	tx *gorm.DB,
	equipmentID uuid.UUID,
) (*CheckoutRecord, error) {
	log := r.log.Function("GetOpenCheckout")

	record, err := gorm.G[*CheckoutRecord](tx).
		Where("equipment_id = ? AND return_date IS NULL", equipmentID).
		First(ctx)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get open checkout", err, "equipmentID", equipmentID)
	}

	return record, nil
}

func (r *equipmentRepository) ListOpenCheckouts(
	ctx context.Context,
	tx *gorm.DB,
) ([]*CheckoutRecord, error) {
	log := r.log.Function("ListOpenCheckouts")

	records, err := gorm.G[*CheckoutRecord](tx).
		Where("return_date IS NULL").
		Order("expected_return_date ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list open checkouts", err)
	}

	return records, nil
}

func (r *equipmentRepository) ListCheckoutHistory(
	ctx context.Context,
	tx *gorm.DB,
	equipmentID uuid.UUID,
) ([]*CheckoutRecord, error) {
	log := r.log.Function("ListCheckoutHistory")

	records, err := gorm.G[*CheckoutRecord](tx).
		Where("equipment_id = ?", equipmentID).
		Order("checkout_date DESC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list checkout history", err, "equipmentID", equipmentID)
	}

	return records, nil
}

func (r *equipmentRepository) ListAllCheckoutRecords(
	ctx context.Context,
	tx *gorm.DB,
) ([]*CheckoutRecord, error) {
	log := r.log.Function("ListAllCheckoutRecords")

	records, err := gorm.G[*CheckoutRecord](tx).
		Order("checkout_date ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list checkout records", err)
	}

	return records, nil
}

// ReplaceAll swaps both collections in one shot for import/restore flows.
// No referential validation happens here; the transfer service owns that.
func (r *equipmentRepository) ReplaceAll(
	ctx context.Context,
	tx *gorm.DB,
	equipment []*Equipment,
	records []*CheckoutRecord,
) error {
	log := r.log.Function("ReplaceAll")

	if err := tx.WithContext(ctx).Unscoped().Where("1 = 1").Delete(&CheckoutRecord{}).Error; err != nil {
		return log.Err("failed to clear checkout records", err)
	}
	if err := tx.WithContext(ctx).Unscoped().Where("1 = 1").Delete(&Equipment{}).Error; err != nil {
		return log.Err("failed to clear equipment", err)
	}

	if len(equipment) > 0 {
		if err := tx.WithContext(ctx).Create(&equipment).Error; err != nil {
			return log.Err("failed to insert imported equipment", err, "count", len(equipment))
		}
	}

	if len(records) > 0 {
		if err := tx.WithContext(ctx).Create(&records).Error; err != nil {
			return log.Err("failed to insert imported checkout records", err, "count", len(records))
		}
	}

	r.ClearEquipmentCache(ctx)

	log.Info("replaced equipment store", "equipment", len(equipment), "checkoutRecords", len(records))
	return nil
}

func (r *equipmentRepository) ClearEquipmentCache(ctx context.Context) {
	err := database.NewCacheBuilder(r.cache, constants.EquipmentListCachePrefix).
		WithContext(ctx).
		Delete()
	if err != nil {
		r.log.Warn("failed to clear equipment list cache", "error", err)
	}
}

func deriveStatus(hasOpenCheckout bool) EquipmentStatus {
	if hasOpenCheckout {
		return EquipmentStatusCheckedOut
	}
	return EquipmentStatusAvailable
}
