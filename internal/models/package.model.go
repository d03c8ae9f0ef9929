package models

import (
	"time"

	"gorm.io/gorm"
)

type Package struct {
	BaseUUIDModel
	MemberID        string     `gorm:"type:text;not null;index:idx_packages_member"    json:"memberId"`
	Description     string     `gorm:"type:text"                                       json:"description"`
	Carrier         string     `gorm:"type:text"                                       json:"carrier,omitempty"`
	TrackingNumber  string     `gorm:"type:text"                                       json:"trackingNumber,omitempty"`
	StorageLocation string     `gorm:"type:text;index:idx_packages_storage_location"   json:"storageLocation"`
	ReceivedDate    time.Time  `gorm:"type:timestamp;not null"                         json:"receivedDate"`
	PickedUpDate    *time.Time `gorm:"type:timestamp"                                  json:"pickedUpDate,omitempty"`
	PickedUpBy      *string    `gorm:"type:text"                                       json:"pickedUpBy,omitempty"`
	Notes           string     `gorm:"type:text"                                       json:"notes,omitempty"`
}

// IsPending reports whether the package is still waiting for pickup.
func (p *Package) IsPending() bool {
	return p.PickedUpDate == nil
}

func (p *Package) BeforeCreate(tx *gorm.DB) (err error) {
	if p.MemberID == "" {
		return gorm.ErrInvalidValue
	}
	if p.ReceivedDate.IsZero() {
		p.ReceivedDate = time.Now()
	}
	return nil
}
