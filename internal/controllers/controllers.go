package controllers

import (
	"dutydesk/config"
	"dutydesk/internal/database"
	"dutydesk/internal/repositories"
	"dutydesk/internal/services"

	authController "dutydesk/internal/controllers/auth"
	equipmentController "dutydesk/internal/controllers/equipment"
	memberController "dutydesk/internal/controllers/members"
	packageController "dutydesk/internal/controllers/packages"
	shiftController "dutydesk/internal/controllers/shifts"
)

type Controllers struct {
	Equipment equipmentController.EquipmentControllerInterface
	Member    memberController.MemberControllerInterface
	Package   packageController.PackageControllerInterface
	Shift     shiftController.ShiftControllerInterface
	Auth      authController.AuthControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	config config.Config,
	db database.DB,
) Controllers {
	return Controllers{
		Equipment: equipmentController.New(repos, services, config, db),
		Member:    memberController.New(repos, services, config, db),
		Package:   packageController.New(repos, services, config, db),
		Shift:     shiftController.New(repos, services, config, db),
		Auth:      authController.New(config, db),
	}
}
