package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EquipmentStatus string

const (
	EquipmentStatusAvailable  EquipmentStatus = "available"
	EquipmentStatusCheckedOut EquipmentStatus = "checked-out"
)

type Equipment struct {
	BaseUUIDModel
	Name          string          `gorm:"type:text;not null"                      json:"name"`
	Description   string          `gorm:"type:text"                               json:"description"`
	ImageURI      string          `gorm:"type:text"                               json:"imageUri"`
	Category      string          `gorm:"type:text;index:idx_equipment_category"  json:"category"`
	SerialNumber  *string         `gorm:"type:text"                               json:"serialNumber,omitempty"`
	Notes         *string         `gorm:"type:text"                               json:"notes,omitempty"`
	DepositAmount decimal.Decimal `gorm:"type:decimal(10,2);not null"             json:"depositAmount"`

	// Status is a projection of whether an open checkout record exists for
	// this equipment. It is never stored; repositories populate it on read.
	Status EquipmentStatus `gorm:"-" json:"status"`

	CheckoutRecords []CheckoutRecord `gorm:"foreignKey:EquipmentID;constraint:OnDelete:CASCADE" json:"checkoutRecords,omitempty"`
}

func (e *Equipment) BeforeCreate(tx *gorm.DB) (err error) {
	if e.Name == "" {
		return gorm.ErrInvalidValue
	}
	if e.DepositAmount.IsNegative() {
		return gorm.ErrInvalidValue
	}
	return nil
}

func (e *Equipment) BeforeUpdate(tx *gorm.DB) (err error) {
	if e.Name == "" {
		return gorm.ErrInvalidValue
	}
	if e.DepositAmount.IsNegative() {
		return gorm.ErrInvalidValue
	}
	return nil
}

type CheckoutRecord struct {
	BaseUUIDModel
	EquipmentID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_checkout_records_equipment" json:"equipmentId"`
	MemberID           string     `gorm:"type:text;not null;index:idx_checkout_records_member"    json:"memberId"`
	CheckoutDate       time.Time  `gorm:"type:timestamp;not null"                                 json:"checkoutDate"`
	ExpectedReturnDate time.Time  `gorm:"type:timestamp;not null"                                 json:"expectedReturnDate"`
	ReturnDate         *time.Time `gorm:"type:timestamp;index:idx_checkout_records_return_date"   json:"returnDate,omitempty"`
	CheckoutNotes      string     `gorm:"type:text"                                               json:"checkoutNotes,omitempty"`
	ReturnNotes        string     `gorm:"type:text"                                               json:"returnNotes,omitempty"`
	DutyOfficer        string     `gorm:"type:text"                                               json:"dutyOfficer"`
	DepositCollected   decimal.Decimal `gorm:"type:decimal(10,2);not null"                        json:"depositCollected"`
	DepositReturned    *bool      `gorm:"type:bool"                                               json:"depositReturned,omitempty"`
	CollectedBy        *string    `gorm:"type:text"                                               json:"collectedBy,omitempty"`

	Equipment *Equipment `gorm:"foreignKey:EquipmentID" json:"equipment,omitempty"`
}

// IsOpen reports whether the record still represents an active checkout. Once
// the return date is set the record is terminal.
func (cr *CheckoutRecord) IsOpen() bool {
	return cr.ReturnDate == nil
}

func (cr *CheckoutRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if cr.EquipmentID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	if cr.MemberID == "" {
		return gorm.ErrInvalidValue
	}
	if cr.CheckoutDate.IsZero() {
		cr.CheckoutDate = time.Now()
	}
	if cr.ExpectedReturnDate.Before(cr.CheckoutDate) {
		return gorm.ErrInvalidValue
	}
	return nil
}
