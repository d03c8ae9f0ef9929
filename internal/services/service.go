package services

import (
	"dutydesk/config"
	"dutydesk/internal/database"
	"dutydesk/internal/events"
	"dutydesk/internal/repositories"
)

type Service struct {
	Transaction *TransactionService
	Scheduler   *SchedulerService
	Snapshot    *SnapshotService
	Transfer    *TransferService
}

func New(db database.DB, config config.Config, eventBus *events.EventBus) (Service, error) {
	transactionService := NewTransactionService(db)
	repos := repositories.New(db)

	schedulerService := NewSchedulerService()
	snapshotService := NewSnapshotService(db, repos, transactionService)
	transferService := NewTransferService(db, repos, transactionService)

	return Service{
		Transaction: transactionService,
		Scheduler:   schedulerService,
		Snapshot:    snapshotService,
		Transfer:    transferService,
	}, nil
}
