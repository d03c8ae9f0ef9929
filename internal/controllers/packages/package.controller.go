package packageController

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
	"gorm.io/gorm"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

type PackageController struct {
	packageRepo        repositories.PackageRepository
	transactionService *services.TransactionService
	db                 database.DB
	Config             config.Config
}

type IntakeRequest struct {
	MemberID        string `json:"memberId"`
	Description     string `json:"description,omitempty"`
	Carrier         string `json:"carrier,omitempty"`
	TrackingNumber  string `json:"trackingNumber,omitempty"`
	StorageLocation string `json:"storageLocation"`
	Notes           string `json:"notes,omitempty"`
}

type PickupRequest struct {
	PackageID  uuid.UUID `json:"packageId"`
	PickedUpBy string    `json:"pickedUpBy"`
}

type ReassignLocationRequest struct {
	FromLocation string `json:"fromLocation"`
	ToLocation   string `json:"toLocation"`
}

type PackageControllerInterface interface {
	Intake(ctx context.Context, request *IntakeRequest) (*Package, error)
	Get(ctx context.Context, packageID uuid.UUID) (*Package, error)
	List(ctx context.Context, pendingOnly bool) ([]*Package, error)
	ListForMember(ctx context.Context, memberID string) ([]*Package, error)
	Update(ctx context.Context, pkg *Package) (*Package, error)
	Delete(ctx context.Context, packageID uuid.UUID) error
	Pickup(ctx context.Context, request *PickupRequest) (*Package, error)
	ReassignLocation(ctx context.Context, request *ReassignLocationRequest) (int64, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) PackageControllerInterface {
	return &PackageController{
		packageRepo:        repos.Package,
		transactionService: services.Transaction,
		db:                 db,
		Config:             config,
	}
}

func (c *PackageController) Intake(
	ctx context.Context,
	request *IntakeRequest,
) (*Package, error) {
	log := logger.NewWithContext(ctx, "packageController").Function("Intake")

	if request.MemberID == "" {
		return nil, log.ErrorWithType(ErrValidation, "memberId is required")
	}

	pkg := &Package{
		MemberID:        request.MemberID,
		Description:     request.Description,
		Carrier:         request.Carrier,
		TrackingNumber:  request.TrackingNumber,
		StorageLocation: request.StorageLocation,
		ReceivedDate:    time.Now(),
		Notes:           request.Notes,
	}

	if err := c.packageRepo.CreatePackage(ctx, c.db.SQL, pkg); err != nil {
		return nil, log.Error("failed to intake package", "error", err, "memberID", request.MemberID)
	}

	log.Info("Package received", "packageID", pkg.ID, "memberID", pkg.MemberID)

	return pkg, nil
}

func (c *PackageController) Get(ctx context.Context, packageID uuid.UUID) (*Package, error) {
	log := logger.NewWithContext(ctx, "packageController").Function("Get")

	pkg, err := c.packageRepo.GetPackage(ctx, c.db.SQL, packageID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, log.ErrorWithType(ErrNotFound, "package not found", "packageID", packageID)
		}
		return nil, log.Error("failed to get package", "error", err, "packageID", packageID)
	}

	return pkg, nil
}

func (c *PackageController) List(ctx context.Context, pendingOnly bool) ([]*Package, error) {
	log := logger.NewWithContext(ctx, "packageController").Function("List")

	packages, err := c.packageRepo.ListPackages(ctx, c.db.SQL, pendingOnly)
	if err != nil {
		return nil, log.Error("failed to list packages", "error", err)
	}

	return packages, nil
}

func (c *PackageController) ListForMember(
	ctx context.Context,
	memberID string,
) ([]*Package, error) {
	log := logger.NewWithContext(ctx, "packageController").Function("ListForMember")

	packages, err := c.packageRepo.ListPackagesForMember(ctx, c.db.SQL, memberID)
	if err != nil {
		return nil, log.Error("failed to list packages for member", "error", err)
	}

	return packages, nil
}

func (c *PackageController) Update(ctx context.Context, pkg *Package) (*Package, error) {
	log := logger.NewWithContext(ctx, "packageController").Function("Update")

	if pkg.ID == uuid.Nil {
		return nil, log.ErrorWithType(ErrValidation, "package id is required")
	}

	if pkg.MemberID == "" {
		return nil, log.ErrorWithType(ErrValidation, "memberId is required")
	}

	rowsAffected, err := c.packageRepo.UpdatePackage(ctx, c.db.SQL, pkg)
	if err != nil {
		return nil, log.Error("failed to update package", "error", err, "packageID", pkg.ID)
	}

	if rowsAffected == 0 {
		return nil, log.ErrorWithType(ErrNotFound, "package not found", "packageID", pkg.ID)
	}

	updated, err := c.packageRepo.GetPackage(ctx, c.db.SQL, pkg.ID)
	if err != nil {
		return nil, log.Error("failed to reload updated package", "error", err)
	}

	return updated, nil
}

func (c *PackageController) Delete(ctx context.Context, packageID uuid.UUID) error {
	log := logger.NewWithContext(ctx, "packageController").Function("Delete")

	rowsAffected, err := c.packageRepo.DeletePackage(ctx, c.db.SQL, packageID)
	if err != nil {
		return log.Error("failed to delete package", "error", err, "packageID", packageID)
	}

	if rowsAffected == 0 {
		return log.ErrorWithType(ErrNotFound, "package not found", "packageID", packageID)
	}

	log.Info("Package deleted", "packageID", packageID)

	return nil
}

// Pickup closes the package record; a picked-up package is terminal.
func (c *PackageController) Pickup(
	ctx context.Context,
	request *PickupRequest,
) (*Package, error) {
	log := logger.NewWithContext(ctx, "packageController").Function("Pickup")

	if request.PackageID == uuid.Nil {
		return nil, log.ErrorWithType(ErrValidation, "packageId is required")
	}

	var pkg *Package
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		stored, err := c.packageRepo.GetPackage(ctx, tx, request.PackageID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return log.ErrorWithType(ErrNotFound, "package not found", "packageID", request.PackageID)
			}
			return log.Error("failed to load package", "error", err)
		}

		if !stored.IsPending() {
			return log.ErrorWithType(
				ErrConflict,
				"package already picked up",
				"packageID", request.PackageID,
			)
		}

		now := time.Now()
		stored.PickedUpDate = &now
		if request.PickedUpBy != "" {
			stored.PickedUpBy = &request.PickedUpBy
		}

		if _, err := c.packageRepo.UpdatePackage(ctx, tx, stored); err != nil {
			return log.Error("failed to record pickup", "error", err, "packageID", stored.ID)
		}

		pkg = stored
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Package picked up", "packageID", pkg.ID, "pickedUpBy", request.PickedUpBy)

	return pkg, nil
}

func (c *PackageController) ReassignLocation(
	ctx context.Context,
	request *ReassignLocationRequest,
) (int64, error) {
	log := logger.NewWithContext(ctx, "packageController").Function("ReassignLocation")

	if request.FromLocation == "" || request.ToLocation == "" {
		return 0, log.ErrorWithType(ErrValidation, "fromLocation and toLocation are required")
	}

	if request.FromLocation == request.ToLocation {
		return 0, log.ErrorWithType(ErrValidation, "locations must differ")
	}

	count, err := c.packageRepo.ReassignLocation(ctx, c.db.SQL, request.FromLocation, request.ToLocation)
	if err != nil {
		return 0, log.Error("failed to reassign storage location", "error", err)
	}

	return count, nil
}
