package jobs

import (
	"dutydesk/config"
	"dutydesk/internal/controllers"
	"dutydesk/internal/database"
	"dutydesk/internal/events"
	"dutydesk/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type Schedule = services.Schedule

// Import schedule constants
const (
	Hourly      = services.Hourly
	Every4Hours = services.Every4Hours
	Daily       = services.Daily
)

func RegisterAllJobs(
	schedulerService *services.SchedulerService,
	config config.Config,
	services services.Service,
	controllers controllers.Controllers,
	eventBus *events.EventBus,
	db database.DB,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")
	log.Info("Registering jobs")

	overdueSweepJob := NewOverdueSweepJob(
		controllers.Equipment,
		eventBus,
		db,
		Every4Hours,
	)
	if err := schedulerService.AddJob(overdueSweepJob); err != nil {
		return log.Err("failed to register overdue sweep job", err)
	}
	log.Info("Registered overdue sweep job", "schedule", "every 4 hours")

	snapshotJob := NewSnapshotJob(
		services.Snapshot,
		eventBus,
		Daily,
	)
	if err := schedulerService.AddJob(snapshotJob); err != nil {
		return log.Err("failed to register snapshot job", err)
	}
	log.Info("Registered snapshot job", "schedule", "daily")

	return nil
}
