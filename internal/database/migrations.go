package database

import (
	"dutydesk/internal/logger"
	"dutydesk/internal/models"
)

// MigrateModels runs GORM AutoMigrate for all models
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	modelsToMigrate := []interface{}{
		&models.Equipment{},
		&models.CheckoutRecord{},
		&models.Member{},
		&models.Package{},
		&models.Shift{},
		&models.DeskSettings{},
	}

	for _, model := range modelsToMigrate {
		if err := db.SQL.AutoMigrate(model); err != nil {
			log.Error("Failed to migrate model", "model", model, "error", err)
			return err
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}

// CreateIndexes creates additional indexes that GORM doesn't create automatically
func (db *DB) CreateIndexes() error {
	log := logger.New("database").Function("CreateIndexes")
	log.Info("Creating additional database indexes")

	// The uniqueness invariants (one open checkout per equipment, one active
	// shift) live in the sql-migrate files; these only support hot queries.
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_checkout_records_expected_return ON checkout_records(expected_return_date) WHERE return_date IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_packages_pending ON packages(storage_location) WHERE picked_up_date IS NULL",
	}

	for _, indexSQL := range indexes {
		if err := db.SQL.Exec(indexSQL).Error; err != nil {
			log.Warn("Failed to create index", "sql", indexSQL, "error", err)
			// Continue with other indexes even if one fails
		}
	}

	log.Info("Additional database indexes created")
	return nil
}
