package jobs

import (
	"context"

	"dutydesk/internal/events"
	"dutydesk/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

// SnapshotJob writes the nightly registry snapshots.
type SnapshotJob struct {
	snapshot *services.SnapshotService
	eventBus *events.EventBus
	log      logger.Logger
	schedule Schedule
}

func NewSnapshotJob(
	snapshot *services.SnapshotService,
	eventBus *events.EventBus,
	schedule Schedule,
) *SnapshotJob {
	log := logger.New("snapshotJob")
	log.Info("Creating new snapshot job", "schedule", schedule)

	return &SnapshotJob{
		snapshot: snapshot,
		eventBus: eventBus,
		log:      log,
		schedule: schedule,
	}
}

func (j *SnapshotJob) Name() string {
	return "NightlySnapshot"
}

func (j *SnapshotJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	log.Info("Starting registry snapshot run")

	if err := j.snapshot.TakeAll(ctx); err != nil {
		return log.Err("snapshot run failed", err)
	}

	err := j.eventBus.Publish(events.BROADCAST_CHANNEL, events.Event{
		Type: events.SNAPSHOT_COMPLETE,
	})
	if err != nil {
		log.Warn("failed to publish snapshot completion", "error", err)
	}

	log.Info("Registry snapshot run completed")
	return nil
}

func (j *SnapshotJob) Schedule() Schedule {
	return j.schedule
}
