package jobs

import (
	"context"

	"dutydesk/internal/constants"
	equipmentController "dutydesk/internal/controllers/equipment"
	"dutydesk/internal/database"
	"dutydesk/internal/events"

	logger "github.com/Bparsons0904/goLogger"
)

// OverdueSweepJob walks the open checkouts every few hours, caches the result
// for the dashboard, and alerts connected desk clients.
type OverdueSweepJob struct {
	equipment equipmentController.EquipmentControllerInterface
	eventBus  *events.EventBus
	db        database.DB
	log       logger.Logger
	schedule  Schedule
}

type overdueSweepResult struct {
	Overdue []*equipmentController.OverdueItem `json:"overdue"`
	DueSoon []*equipmentController.DueSoonItem `json:"dueSoon"`
}

func NewOverdueSweepJob(
	equipment equipmentController.EquipmentControllerInterface,
	eventBus *events.EventBus,
	db database.DB,
	schedule Schedule,
) *OverdueSweepJob {
	log := logger.New("overdueSweepJob")
	log.Info("Creating new overdue sweep job", "schedule", schedule)

	return &OverdueSweepJob{
		equipment: equipment,
		eventBus:  eventBus,
		db:        db,
		log:       log,
		schedule:  schedule,
	}
}

func (j *OverdueSweepJob) Name() string {
	return "OverdueSweep"
}

func (j *OverdueSweepJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	log.Info("Starting overdue sweep")

	overdue, err := j.equipment.Overdue(ctx)
	if err != nil {
		return log.Err("overdue sweep failed", err)
	}

	dueSoon, err := j.equipment.DueSoon(ctx)
	if err != nil {
		return log.Err("due-soon sweep failed", err)
	}

	result := overdueSweepResult{Overdue: overdue, DueSoon: dueSoon}
	err = database.NewCacheBuilder(j.db.Cache.General, constants.OverdueCachePrefix).
		WithStruct(result).
		WithTTL(constants.RegistryCacheExpiry).
		WithContext(ctx).
		Set()
	if err != nil {
		log.Warn("failed to cache sweep result", "error", err)
	}

	if err := j.eventBus.PublishOverdueAlert(len(overdue), len(dueSoon)); err != nil {
		log.Warn("failed to publish overdue alert", "error", err)
	}

	log.Info("Overdue sweep completed", "overdue", len(overdue), "dueSoon", len(dueSoon))
	return nil
}

func (j *OverdueSweepJob) Schedule() Schedule {
	return j.schedule
}
