package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dutydesk/internal/database"
	"dutydesk/internal/logger"
	. "dutydesk/internal/models"
	"dutydesk/internal/repositories"

	"gorm.io/gorm"
)

// SnapshotVersion is the current envelope version. Bump it when a payload
// shape changes and add a migration step to migrateEnvelope.
const SnapshotVersion = 1

const (
	SnapshotStoreEquipment = "equipment"
	SnapshotStoreMembers   = "members"
	SnapshotStorePackages  = "packages"
	SnapshotStoreShifts    = "shifts"
)

const snapshotKeyPrefix = "snapshot:"

// SnapshotEnvelope wraps a store payload with enough metadata to migrate it
// forward when the payload shape changes between releases.
type SnapshotEnvelope struct {
	Version  int             `json:"version"`
	StoreKey string          `json:"storeKey"`
	TakenAt  time.Time       `json:"takenAt"`
	Payload  json.RawMessage `json:"payload"`
}

type equipmentSnapshotPayload struct {
	Equipment       []*Equipment      `json:"equipment"`
	CheckoutRecords []*CheckoutRecord `json:"checkoutRecords"`
}

// SnapshotService writes versioned point-in-time copies of every registry to
// the snapshot cache database. Snapshots have no TTL and survive until the
// next run replaces them.
type SnapshotService struct {
	db          database.DB
	repos       repositories.Repository
	transaction *TransactionService
	log         logger.Logger
}

func NewSnapshotService(
	db database.DB,
	repos repositories.Repository,
	transaction *TransactionService,
) *SnapshotService {
	return &SnapshotService{
		db:          db,
		repos:       repos,
		transaction: transaction,
		log:         logger.New("snapshotService"),
	}
}

// TakeAll snapshots every registry. A failure on one store does not stop the
// others; the first error is returned after all stores are attempted.
func (s *SnapshotService) TakeAll(ctx context.Context) error {
	log := s.log.Function("TakeAll")

	var firstErr error
	for _, storeKey := range []string{
		SnapshotStoreEquipment,
		SnapshotStoreMembers,
		SnapshotStorePackages,
		SnapshotStoreShifts,
	} {
		if err := s.Take(ctx, storeKey); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			log.Warn("store snapshot failed", "storeKey", storeKey, "error", err)
		}
	}

	if firstErr != nil {
		return firstErr
	}

	log.Info("All registry snapshots written")
	return nil
}

// Take snapshots a single registry store.
func (s *SnapshotService) Take(ctx context.Context, storeKey string) error {
	log := s.log.Function("Take")

	payload, err := s.buildPayload(ctx, storeKey)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return log.Err("failed to marshal snapshot payload", err, "storeKey", storeKey)
	}

	envelope := SnapshotEnvelope{
		Version:  SnapshotVersion,
		StoreKey: storeKey,
		TakenAt:  time.Now().UTC(),
		Payload:  raw,
	}

	err = database.NewCacheBuilder(s.db.Cache.Snapshot, snapshotKeyPrefix+storeKey).
		WithStruct(envelope).
		WithContext(ctx).
		SetNoExpiry()
	if err != nil {
		return log.Err("failed to store snapshot", err, "storeKey", storeKey)
	}

	log.Info("Snapshot written", "storeKey", storeKey, "bytes", len(raw))
	return nil
}

// Load retrieves the envelope for a store and migrates it to the current
// version. Returns nil when no snapshot exists yet.
func (s *SnapshotService) Load(ctx context.Context, storeKey string) (*SnapshotEnvelope, error) {
	log := s.log.Function("Load")

	var envelope SnapshotEnvelope
	found, err := database.NewCacheBuilder(s.db.Cache.Snapshot, snapshotKeyPrefix+storeKey).
		WithContext(ctx).
		Get(&envelope)
	if err != nil {
		return nil, log.Err("failed to load snapshot", err, "storeKey", storeKey)
	}
	if !found {
		return nil, nil
	}

	migrated, err := migrateEnvelope(&envelope)
	if err != nil {
		return nil, log.Err("failed to migrate snapshot", err, "storeKey", storeKey, "version", envelope.Version)
	}

	return migrated, nil
}

// Restore replaces a registry with the contents of its stored snapshot. The
// envelope is migrated to the current version before it is applied.
func (s *SnapshotService) Restore(ctx context.Context, storeKey string) error {
	log := s.log.Function("Restore")

	envelope, err := s.Load(ctx, storeKey)
	if err != nil {
		return err
	}
	if envelope == nil {
		return log.ErrMsg("no snapshot to restore for store: " + storeKey)
	}

	err = s.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return s.applyPayload(ctx, tx, storeKey, envelope.Payload)
	})
	if err != nil {
		return err
	}

	log.Info("Snapshot restored", "storeKey", storeKey, "takenAt", envelope.TakenAt)
	return nil
}

func (s *SnapshotService) applyPayload(
	ctx context.Context,
	tx *gorm.DB,
	storeKey string,
	payload json.RawMessage,
) error {
	log := s.log.Function("applyPayload")

	switch storeKey {
	case SnapshotStoreEquipment:
		var data equipmentSnapshotPayload
		if err := json.Unmarshal(payload, &data); err != nil {
			return log.Err("failed to decode equipment snapshot", err)
		}
		return s.repos.Equipment.ReplaceAll(ctx, tx, data.Equipment, data.CheckoutRecords)
	case SnapshotStoreMembers:
		var members []*Member
		if err := json.Unmarshal(payload, &members); err != nil {
			return log.Err("failed to decode member snapshot", err)
		}
		return s.repos.Member.ReplaceAll(ctx, tx, members)
	case SnapshotStorePackages:
		var packages []*Package
		if err := json.Unmarshal(payload, &packages); err != nil {
			return log.Err("failed to decode package snapshot", err)
		}
		return s.repos.Package.ReplaceAll(ctx, tx, packages)
	case SnapshotStoreShifts:
		var shifts []*Shift
		if err := json.Unmarshal(payload, &shifts); err != nil {
			return log.Err("failed to decode shift snapshot", err)
		}
		return s.repos.Shift.ReplaceAll(ctx, tx, shifts)
	default:
		return log.ErrMsg("unknown snapshot store: " + storeKey)
	}
}

func (s *SnapshotService) buildPayload(ctx context.Context, storeKey string) (any, error) {
	log := s.log.Function("buildPayload")

	switch storeKey {
	case SnapshotStoreEquipment:
		equipment, err := s.repos.Equipment.ListEquipment(ctx, s.db.SQL)
		if err != nil {
			return nil, log.Err("failed to list equipment", err)
		}
		records, err := s.repos.Equipment.ListAllCheckoutRecords(ctx, s.db.SQL)
		if err != nil {
			return nil, log.Err("failed to list checkout records", err)
		}
		return equipmentSnapshotPayload{Equipment: equipment, CheckoutRecords: records}, nil
	case SnapshotStoreMembers:
		members, err := s.repos.Member.ListMembers(ctx, s.db.SQL)
		if err != nil {
			return nil, log.Err("failed to list members", err)
		}
		return members, nil
	case SnapshotStorePackages:
		packages, err := s.repos.Package.ListPackages(ctx, s.db.SQL, false)
		if err != nil {
			return nil, log.Err("failed to list packages", err)
		}
		return packages, nil
	case SnapshotStoreShifts:
		shifts, err := s.repos.Shift.ListAllShifts(ctx, s.db.SQL)
		if err != nil {
			return nil, log.Err("failed to list shifts", err)
		}
		return shifts, nil
	default:
		return nil, log.ErrMsg("unknown snapshot store: " + storeKey)
	}
}

// migrateEnvelope upgrades an envelope read from storage to the current
// version. Each released version gets a case that rewrites the payload into
// the next shape.
func migrateEnvelope(envelope *SnapshotEnvelope) (*SnapshotEnvelope, error) {
	if envelope.Version == SnapshotVersion {
		return envelope, nil
	}

	if envelope.Version > SnapshotVersion {
		return nil, fmt.Errorf(
			"snapshot version %d is newer than supported version %d",
			envelope.Version,
			SnapshotVersion,
		)
	}

	return nil, fmt.Errorf("no migration path from snapshot version %d", envelope.Version)
}
