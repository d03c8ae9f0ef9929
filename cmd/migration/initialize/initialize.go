package initialize

import (
	"dutydesk/config"
	. "dutydesk/internal/models"

	logger "dutydesk/internal/logger"

	"gorm.io/gorm"
)

func InitializeTables(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Initializing essential production data")

	if err := initializeDeskSettings(db, log); err != nil {
		return log.Err("failed to initialize desk settings", err)
	}

	log.Info("Table initialization complete")
	return nil
}

// initializeDeskSettings ensures the single settings row exists so the desk
// UI always has a roster to render, even before an admin has edited it.
func initializeDeskSettings(db *gorm.DB, log logger.Logger) error {
	log.Info("Initializing desk settings")

	var existing DeskSettings
	if err := db.First(&existing).Error; err == nil {
		log.Debug("Desk settings already exist", "id", existing.ID)
		return nil
	}

	settings := DeskSettings{}
	if err := db.Create(&settings).Error; err != nil {
		return log.Err("failed to create desk settings", err)
	}

	log.Info("Desk settings initialized", "id", settings.ID)
	return nil
}
