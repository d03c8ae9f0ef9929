package models

import (
	"time"

	"gorm.io/gorm"
)

type Shift struct {
	BaseUUIDModel
	DutyOfficer   string     `gorm:"type:text;not null"                       json:"dutyOfficer"`
	StartTime     time.Time  `gorm:"type:timestamp;not null"                  json:"startTime"`
	EndTime       *time.Time `gorm:"type:timestamp;index:idx_shifts_end_time" json:"endTime,omitempty"`
	HandoverNotes string     `gorm:"type:text"                                json:"handoverNotes,omitempty"`
}

// IsActive reports whether the shift is still open. At most one shift may be
// active at a time.
func (s *Shift) IsActive() bool {
	return s.EndTime == nil
}

// Elapsed returns the wall-clock duration of the shift so far, or its final
// duration once closed.
func (s *Shift) Elapsed(now time.Time) time.Duration {
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return now.Sub(s.StartTime)
}

func (s *Shift) BeforeCreate(tx *gorm.DB) (err error) {
	if s.DutyOfficer == "" {
		return gorm.ErrInvalidValue
	}
	if s.StartTime.IsZero() {
		s.StartTime = time.Now()
	}
	return nil
}
