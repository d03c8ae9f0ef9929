package repositories

import (
	"dutydesk/internal/database"
)

type Repository struct {
	Equipment EquipmentRepository
	Member    MemberRepository
	Package   PackageRepository
	Shift     ShiftRepository
	Settings  SettingsRepository
}

func New(db database.DB) Repository {
	return Repository{
		Equipment: NewEquipmentRepository(db),
		Member:    NewMemberRepository(db),
		Package:   NewPackageRepository(),
		Shift:     NewShiftRepository(db),
		Settings:  NewSettingsRepository(db),
	}
}
