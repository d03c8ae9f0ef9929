package repositories

import (
	"context"

	"dutydesk/internal/constants"
	"dutydesk/internal/database"
	"dutydesk/internal/logger"
	. "dutydesk/internal/models"

	"gorm.io/gorm"
)

type SettingsRepository interface {
	GetSettings(ctx context.Context, tx *gorm.DB) (*DeskSettings, error)
	SaveSettings(ctx context.Context, tx *gorm.DB, settings *DeskSettings) error
}

type settingsRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewSettingsRepository(db database.DB) SettingsRepository {
	return &settingsRepository{
		cache: db.Cache.General,
		log:   logger.New("settingsRepository"),
	}
}

// GetSettings returns the single settings row, creating it on first use.
func (r *settingsRepository) GetSettings(ctx context.Context, tx *gorm.DB) (*DeskSettings, error) {
	log := r.log.Function("GetSettings")

	var cached DeskSettings
	found, err := database.NewCacheBuilder(r.cache, constants.DutyRosterCacheKey).
		WithContext(ctx).
		Get(&cached)
	if err != nil {
		log.Warn("failed to get desk settings from cache", "error", err)
	}

	if found {
		return &cached, nil
	}

	settings, err := gorm.G[*DeskSettings](tx).First(ctx)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, log.Err("failed to get desk settings", err)
		}

		settings = &DeskSettings{}
		if createErr := gorm.G[DeskSettings](tx).Create(ctx, settings); createErr != nil {
			return nil, log.Err("failed to create desk settings", createErr)
		}
	}

	err = database.NewCacheBuilder(r.cache, constants.DutyRosterCacheKey).
		WithContext(ctx).
		WithStruct(settings).
		WithTTL(constants.RosterCacheExpiry).
		Set()
	if err != nil {
		log.Warn("failed to cache desk settings", "error", err)
	}

	return settings, nil
}

func (r *settingsRepository) SaveSettings(
	ctx context.Context,
	tx *gorm.DB,
	settings *DeskSettings,
) error {
	log := r.log.Function("SaveSettings")

	result := tx.WithContext(ctx).
		Model(&DeskSettings{}).
		Where("id = ?", settings.ID).
		Select("DutyOfficers", "StorageLocations").
		Updates(settings)
	if result.Error != nil {
		return log.Err("failed to save desk settings", result.Error)
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	err := database.NewCacheBuilder(r.cache, constants.DutyRosterCacheKey).
		WithContext(ctx).
		Delete()
	if err != nil {
		log.Warn("failed to clear desk settings cache", "error", err)
	}

	return nil
}
