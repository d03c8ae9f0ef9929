package handlers

import (
	"dutydesk/internal/app"
	authController "dutydesk/internal/controllers/auth"
	"dutydesk/internal/logger"
	"dutydesk/internal/services"

	"github.com/gofiber/fiber/v2"
)

type TransferHandler struct {
	Handler
	transferService *services.TransferService
	authController  authController.AuthControllerInterface
}

func NewTransferHandler(app app.App, router fiber.Router) *TransferHandler {
	log := logger.New("handlers").File("transfer_handler")
	return &TransferHandler{
		transferService: app.Services.Transfer,
		authController:  app.Controllers.Auth,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *TransferHandler) Register() {
	transfer := h.router.Group("/transfer", h.middleware.RequireAuth(h.authController))

	transfer.Get("/:kind/export", h.export)
	transfer.Post("/:kind/import", h.importCSV)
}

func validTransferKind(kind string) bool {
	switch kind {
	case services.TransferKindEquipment, services.TransferKindCheckouts, services.TransferKindMembers:
		return true
	}
	return false
}

func (h *TransferHandler) export(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("export")

	kind := c.Params("kind")
	if !validTransferKind(kind) {
		log.Warn("Unknown transfer kind", "kind", kind)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown transfer kind",
		})
	}

	data, err := h.transferService.Export(c.Context(), kind)
	if err != nil {
		_ = log.Err("Failed to export registry", err, "kind", kind)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to export registry",
		})
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+kind+`.csv"`)
	return c.SendString(data)
}

func (h *TransferHandler) importCSV(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("importCSV")

	kind := c.Params("kind")
	if !validTransferKind(kind) {
		log.Warn("Unknown transfer kind", "kind", kind)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown transfer kind",
		})
	}

	data := string(c.Body())
	if data == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Request body is empty",
		})
	}

	report, err := h.transferService.Import(c.Context(), kind, data)
	if err != nil {
		_ = log.Err("Failed to import registry", err, "kind", kind)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to import registry",
		})
	}

	return c.JSON(report)
}
