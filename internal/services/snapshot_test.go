package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"dutydesk/internal/database"
	. "dutydesk/internal/models"
	"dutydesk/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMigrateEnvelope(t *testing.T) {
	payload := json.RawMessage(`{"equipment":[],"checkoutRecords":[]}`)

	t.Run("current version passes through unchanged", func(t *testing.T) {
		envelope := &SnapshotEnvelope{
			Version:  SnapshotVersion,
			StoreKey: SnapshotStoreEquipment,
			TakenAt:  time.Now().UTC(),
			Payload:  payload,
		}

		migrated, err := migrateEnvelope(envelope)
		require.NoError(t, err)
		assert.Same(t, envelope, migrated)
	})

	t.Run("newer version is rejected", func(t *testing.T) {
		envelope := &SnapshotEnvelope{
			Version: SnapshotVersion + 1,
			Payload: payload,
		}

		_, err := migrateEnvelope(envelope)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "newer than supported")
	})

	t.Run("version without a migration path is rejected", func(t *testing.T) {
		envelope := &SnapshotEnvelope{
			Version: 0,
			Payload: payload,
		}

		_, err := migrateEnvelope(envelope)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no migration path")
	})
}

type stubShiftRepository struct {
	repositories.ShiftRepository
	shifts []*Shift
}

func (s *stubShiftRepository) ListAllShifts(ctx context.Context, tx *gorm.DB) ([]*Shift, error) {
	return s.shifts, nil
}

func TestShiftSnapshotIncludesActiveShift(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	previousEnd := now.Add(-8 * time.Hour)
	active := &Shift{DutyOfficer: "Walt", StartTime: now}
	closed := &Shift{DutyOfficer: "Doris", StartTime: now.Add(-16 * time.Hour), EndTime: &previousEnd}

	repos := repositories.Repository{
		Shift: &stubShiftRepository{shifts: []*Shift{active, closed}},
	}
	service := NewSnapshotService(database.DB{}, repos, nil)

	payload, err := service.buildPayload(context.Background(), SnapshotStoreShifts)
	require.NoError(t, err)

	shifts, ok := payload.([]*Shift)
	require.True(t, ok)
	require.Len(t, shifts, 2)
	assert.True(t, shifts[0].IsActive())
	assert.False(t, shifts[1].IsActive())
}

func TestSnapshotEnvelopeRoundTrip(t *testing.T) {
	envelope := SnapshotEnvelope{
		Version:  SnapshotVersion,
		StoreKey: SnapshotStoreMembers,
		TakenAt:  time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC),
		Payload:  json.RawMessage(`[{"memberId":"1001"}]`),
	}

	raw, err := json.Marshal(envelope)
	require.NoError(t, err)

	var decoded SnapshotEnvelope
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, envelope.Version, decoded.Version)
	assert.Equal(t, envelope.StoreKey, decoded.StoreKey)
	assert.True(t, envelope.TakenAt.Equal(decoded.TakenAt))
	assert.JSONEq(t, string(envelope.Payload), string(decoded.Payload))
}
