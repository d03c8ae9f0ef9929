package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShiftElapsed(t *testing.T) {
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	t.Run("open shift measures against now", func(t *testing.T) {
		shift := Shift{DutyOfficer: "Walt", StartTime: start}
		now := start.Add(3 * time.Hour)

		assert.Equal(t, 3*time.Hour, shift.Elapsed(now))
		assert.True(t, shift.IsActive())
	})

	t.Run("closed shift measures against end time", func(t *testing.T) {
		end := start.Add(9 * time.Hour)
		shift := Shift{DutyOfficer: "Walt", StartTime: start, EndTime: &end}

		// Wall clock after close does not change the duration.
		assert.Equal(t, 9*time.Hour, shift.Elapsed(end.Add(48*time.Hour)))
		assert.False(t, shift.IsActive())
	})
}

func TestShiftBeforeCreate(t *testing.T) {
	t.Run("missing duty officer", func(t *testing.T) {
		shift := Shift{}
		assert.Error(t, shift.BeforeCreate(nil))
	})

	t.Run("zero start time defaults to now", func(t *testing.T) {
		shift := Shift{DutyOfficer: "Walt"}
		require.NoError(t, shift.BeforeCreate(nil))
		assert.False(t, shift.StartTime.IsZero())
	})
}

func TestCheckoutRecordIsOpen(t *testing.T) {
	record := CheckoutRecord{}
	assert.True(t, record.IsOpen())

	now := time.Now()
	record.ReturnDate = &now
	assert.False(t, record.IsOpen())
}

func TestCheckoutRecordBeforeCreate(t *testing.T) {
	equipmentID := uuid.New()
	checkout := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("valid record", func(t *testing.T) {
		record := CheckoutRecord{
			EquipmentID:        equipmentID,
			MemberID:           "1001",
			CheckoutDate:       checkout,
			ExpectedReturnDate: checkout.AddDate(0, 0, 60),
		}
		assert.NoError(t, record.BeforeCreate(nil))
	})

	t.Run("expected return before checkout", func(t *testing.T) {
		record := CheckoutRecord{
			EquipmentID:        equipmentID,
			MemberID:           "1001",
			CheckoutDate:       checkout,
			ExpectedReturnDate: checkout.AddDate(0, 0, -1),
		}
		assert.Error(t, record.BeforeCreate(nil))
	})

	t.Run("missing member", func(t *testing.T) {
		record := CheckoutRecord{EquipmentID: equipmentID}
		assert.Error(t, record.BeforeCreate(nil))
	})
}

func TestPackageIsPending(t *testing.T) {
	pkg := Package{MemberID: "1001"}
	assert.True(t, pkg.IsPending())

	now := time.Now()
	pkg.PickedUpDate = &now
	assert.False(t, pkg.IsPending())
}

func TestMemberBeforeCreateDefaults(t *testing.T) {
	t.Run("fills placeholder email and defaults", func(t *testing.T) {
		member := Member{MemberID: "1001", Name: "Walter Kowalski"}
		require.NoError(t, member.BeforeCreate(nil))

		assert.Equal(t, MemberEmailPlaceholder, member.Email)
		assert.Equal(t, MemberStatusActive, member.Status)
		assert.Equal(t, MemberGroupLegion, member.Group)
	})

	t.Run("keeps provided values", func(t *testing.T) {
		member := Member{
			MemberID: "1002",
			Name:     "Doris Chen",
			Email:    "doris@example.com",
			Status:   MemberStatusInactive,
			Group:    MemberGroupAuxiliary,
		}
		require.NoError(t, member.BeforeCreate(nil))

		assert.Equal(t, "doris@example.com", member.Email)
		assert.Equal(t, MemberStatusInactive, member.Status)
		assert.Equal(t, MemberGroupAuxiliary, member.Group)
	})

	t.Run("missing member id", func(t *testing.T) {
		member := Member{Name: "No Badge"}
		assert.Error(t, member.BeforeCreate(nil))
	})
}
