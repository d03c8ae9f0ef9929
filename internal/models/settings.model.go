package models

import (
	"gorm.io/datatypes"
)

// DeskSettings is a single-row table holding front-desk configuration that
// duty officers can change at runtime, most importantly the officer roster
// offered on checkout forms. Officer names on checkout records stay free text
// and are never validated against this roster.
type DeskSettings struct {
	BaseModel
	DutyOfficers     datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"dutyOfficers"`
	StorageLocations datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"storageLocations"`
}
