package handlers

import (
	"dutydesk/internal/app"
	authController "dutydesk/internal/controllers/auth"
	"dutydesk/internal/database"
	"dutydesk/internal/logger"
	"dutydesk/internal/repositories"
	"dutydesk/internal/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

type AdminHandler struct {
	Handler
	snapshotService *services.SnapshotService
	settingsRepo    repositories.SettingsRepository
	authController  authController.AuthControllerInterface
	db              database.DB
}

type updateSettingsRequest struct {
	DutyOfficers     []string `json:"dutyOfficers"`
	StorageLocations []string `json:"storageLocations"`
}

func NewAdminHandler(app app.App, router fiber.Router) *AdminHandler {
	log := logger.New("handlers").File("admin_handler")
	return &AdminHandler{
		snapshotService: app.Services.Snapshot,
		settingsRepo:    app.Repositories.Settings,
		authController:  app.Controllers.Auth,
		db:              app.Database,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AdminHandler) Register() {
	admin := h.router.Group("/admin", h.middleware.RequireAuth(h.authController))

	admin.Post("/snapshot", h.takeSnapshot)
	admin.Get("/snapshot/:store", h.getSnapshot)
	admin.Post("/snapshot/:store/restore", h.restoreSnapshot)
	admin.Get("/settings", h.getSettings)
	admin.Put("/settings", h.updateSettings)
}

func validSnapshotStore(store string) bool {
	switch store {
	case services.SnapshotStoreEquipment,
		services.SnapshotStoreMembers,
		services.SnapshotStorePackages,
		services.SnapshotStoreShifts:
		return true
	}
	return false
}

func (h *AdminHandler) takeSnapshot(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("takeSnapshot")

	if err := h.snapshotService.TakeAll(c.Context()); err != nil {
		_ = log.Err("Failed to take snapshots", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to take snapshots",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

func (h *AdminHandler) getSnapshot(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("getSnapshot")

	store := c.Params("store")
	if !validSnapshotStore(store) {
		log.Warn("Unknown snapshot store", "store", store)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown snapshot store",
		})
	}

	envelope, err := h.snapshotService.Load(c.Context(), store)
	if err != nil {
		_ = log.Err("Failed to load snapshot", err, "store", store)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load snapshot",
		})
	}
	if envelope == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No snapshot taken yet",
		})
	}

	return c.JSON(envelope)
}

func (h *AdminHandler) restoreSnapshot(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("restoreSnapshot")

	store := c.Params("store")
	if !validSnapshotStore(store) {
		log.Warn("Unknown snapshot store", "store", store)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown snapshot store",
		})
	}

	if err := h.snapshotService.Restore(c.Context(), store); err != nil {
		_ = log.Err("Failed to restore snapshot", err, "store", store)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to restore snapshot",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

func (h *AdminHandler) getSettings(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("getSettings")

	settings, err := h.settingsRepo.GetSettings(c.Context(), h.db.SQL)
	if err != nil {
		_ = log.Err("Failed to get desk settings", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get desk settings",
		})
	}

	return c.JSON(fiber.Map{
		"settings": settings,
	})
}

func (h *AdminHandler) updateSettings(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("updateSettings")

	var req updateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	settings, err := h.settingsRepo.GetSettings(c.Context(), h.db.SQL)
	if err != nil {
		_ = log.Err("Failed to load desk settings", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load desk settings",
		})
	}

	settings.DutyOfficers = datatypes.NewJSONSlice(req.DutyOfficers)
	settings.StorageLocations = datatypes.NewJSONSlice(req.StorageLocations)

	if err := h.settingsRepo.SaveSettings(c.Context(), h.db.SQL, settings); err != nil {
		_ = log.Err("Failed to save desk settings", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save desk settings",
		})
	}

	return c.JSON(fiber.Map{
		"settings": settings,
	})
}
