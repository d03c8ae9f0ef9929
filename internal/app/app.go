package app

import (
	"context"

	"dutydesk/config"
	"dutydesk/internal/controllers"
	"dutydesk/internal/database"
	"dutydesk/internal/events"
	"dutydesk/internal/handlers/middleware"
	"dutydesk/internal/jobs"
	"dutydesk/internal/logger"
	"dutydesk/internal/repositories"
	"dutydesk/internal/services"
	"dutydesk/internal/websockets"
)

type App struct {
	Database     database.DB
	Middleware   middleware.Middleware
	Websocket    *websockets.Manager
	EventBus     *events.EventBus
	Config       config.Config
	Services     services.Service
	Repositories repositories.Repository
	Controllers  controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events, config)

	appServices, err := services.New(db, config, eventBus)
	if err != nil {
		return &App{}, log.Err("failed to create services", err)
	}

	repos := repositories.New(db)
	appControllers := controllers.New(appServices, repos, config, db)

	websocket, err := websockets.New(db, eventBus, appControllers.Auth, config)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	appMiddleware := middleware.New(db, eventBus, config)

	if config.SchedulerEnabled {
		err := jobs.RegisterAllJobs(
			appServices.Scheduler,
			config,
			appServices,
			appControllers,
			eventBus,
			db,
		)
		if err != nil {
			return &App{}, log.Err("failed to register jobs", err)
		}

		if err := appServices.Scheduler.Start(context.Background()); err != nil {
			return &App{}, log.Err("failed to start scheduler", err)
		}
	}

	app := &App{
		Database:     db,
		Config:       config,
		Middleware:   appMiddleware,
		EventBus:     eventBus,
		Websocket:    websocket,
		Services:     appServices,
		Repositories: repos,
		Controllers:  appControllers,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.Services.Transaction,
		a.Services.Scheduler,
		a.Services.Snapshot,
		a.Services.Transfer,
		a.Controllers.Equipment,
		a.Controllers.Member,
		a.Controllers.Package,
		a.Controllers.Shift,
		a.Controllers.Auth,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
