package repositories

import (
	"context"

	"dutydesk/internal/logger"
	. "dutydesk/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PackageRepository interface {
	CreatePackage(ctx context.Context, tx *gorm.DB, pkg *Package) error
	GetPackage(ctx context.Context, tx *gorm.DB, packageID uuid.UUID) (*Package, error)
	ListPackages(ctx context.Context, tx *gorm.DB, pendingOnly bool) ([]*Package, error)
	ListPackagesForMember(ctx context.Context, tx *gorm.DB, memberID string) ([]*Package, error)
	UpdatePackage(ctx context.Context, tx *gorm.DB, pkg *Package) (int64, error)
	DeletePackage(ctx context.Context, tx *gorm.DB, packageID uuid.UUID) (int64, error)
	ReassignLocation(ctx context.Context, tx *gorm.DB, fromLocation, toLocation string) (int64, error)
	ReplaceAll(ctx context.Context, tx *gorm.DB, packages []*Package) error
}

type packageRepository struct {
	log logger.Logger
}

func NewPackageRepository() PackageRepository {
	return &packageRepository{
		log: logger.New("packageRepository"),
	}
}

func (r *packageRepository) CreatePackage(ctx context.Context, tx *gorm.DB, pkg *Package) error {
	log := r.log.Function("CreatePackage")

	err := gorm.G[Package](tx).Create(ctx, pkg)
	if err != nil {
		return log.Err("failed to create package", err, "memberID", pkg.MemberID)
	}

	return nil
}

func (r *packageRepository) GetPackage(
	ctx context.Context,
	tx *gorm.DB,
	packageID uuid.UUID,
) (*Package, error) {
	log := r.log.Function("GetPackage")

	pkg, err := gorm.G[*Package](tx).
		Where(Package{BaseUUIDModel: BaseUUIDModel{ID: packageID}}).
		First(ctx)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get package", err, "packageID", packageID)
	}

	return pkg, nil
}

func (r *packageRepository) ListPackages(
	ctx context.Context,
	tx *gorm.DB,
	pendingOnly bool,
) ([]*Package, error) {
	log := r.log.Function("ListPackages")

	var packages []*Package
	var err error
	if pendingOnly {
		packages, err = gorm.G[*Package](tx).
			Where("picked_up_date IS NULL").
			Order("received_date DESC").
			Find(ctx)
	} else {
		packages, err = gorm.G[*Package](tx).
			Order("received_date DESC").
			Find(ctx)
	}
	if err != nil {
		return nil, log.Err("failed to list packages", err)
	}

	return packages, nil
}

func (r *packageRepository) ListPackagesForMember(
	ctx context.Context,
	tx *gorm.DB,
	memberID string,
) ([]*Package, error) {
	log := r.log.Function("ListPackagesForMember")

	packages, err := gorm.G[*Package](tx).
		Where("member_id = ?", memberID).
		Order("received_date DESC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list packages for member", err, "memberID", memberID)
	}

	return packages, nil
}

func (r *packageRepository) UpdatePackage(
	ctx context.Context,
	tx *gorm.DB,
	pkg *Package,
) (int64, error) {
	log := r.log.Function("UpdatePackage")

	result := tx.WithContext(ctx).
		Model(&Package{}).
		Where("id = ?", pkg.ID).
		Select("MemberID", "Description", "Carrier", "TrackingNumber", "StorageLocation", "PickedUpDate", "PickedUpBy", "Notes").
		Updates(pkg)
	if result.Error != nil {
		return 0, log.Err("failed to update package", result.Error, "packageID", pkg.ID)
	}

	return result.RowsAffected, nil
}

func (r *packageRepository) DeletePackage(
	ctx context.Context,
	tx *gorm.DB,
	packageID uuid.UUID,
) (int64, error) {
	log := r.log.Function("DeletePackage")

	rowsAffected, err := gorm.G[*Package](tx).
		Where("id = ?", packageID).
		Delete(ctx)
	if err != nil {
		return 0, log.Err("failed to delete package", err, "packageID", packageID)
	}

	return int64(rowsAffected), nil
}

// ReassignLocation moves every pending package from one storage location to
// another in a single statement.
func (r *packageRepository) ReassignLocation(
	ctx context.Context,
	tx *gorm.DB,
	fromLocation, toLocation string,
) (int64, error) {
	log := r.log.Function("ReassignLocation")

	result := tx.WithContext(ctx).
		Model(&Package{}).
		Where("storage_location = ? AND picked_up_date IS NULL", fromLocation).
		Update("storage_location", toLocation)
	if result.Error != nil {
		return 0, log.Err(
			"failed to reassign storage location",
			result.Error,
			"from", fromLocation,
			"to", toLocation,
		)
	}

	log.Info("reassigned storage location",
		"from", fromLocation,
		"to", toLocation,
		"count", result.RowsAffected,
	)

	return result.RowsAffected, nil
}

// ReplaceAll swaps the whole package store for snapshot restore.
func (r *packageRepository) ReplaceAll(ctx context.Context, tx *gorm.DB, packages []*Package) error {
	log := r.log.Function("ReplaceAll")

	if err := tx.WithContext(ctx).Unscoped().Where("1 = 1").Delete(&Package{}).Error; err != nil {
		return log.Err("failed to clear packages", err)
	}

	if len(packages) > 0 {
		if err := tx.WithContext(ctx).Create(&packages).Error; err != nil {
			return log.Err("failed to insert restored packages", err, "count", len(packages))
		}
	}

	log.Info("replaced package store", "packages", len(packages))
	return nil
}
