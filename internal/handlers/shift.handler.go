package handlers

import (
	"errors"

	"dutydesk/internal/app"
	authController "dutydesk/internal/controllers/auth"
	shiftController "dutydesk/internal/controllers/shifts"
	"dutydesk/internal/events"
	"dutydesk/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type ShiftHandler struct {
	Handler
	shiftController shiftController.ShiftControllerInterface
	authController  authController.AuthControllerInterface
	eventBus        *events.EventBus
}

func NewShiftHandler(app app.App, router fiber.Router) *ShiftHandler {
	log := logger.New("handlers").File("shift_handler")
	return &ShiftHandler{
		shiftController: app.Controllers.Shift,
		authController:  app.Controllers.Auth,
		eventBus:        app.EventBus,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ShiftHandler) Register() {
	shifts := h.router.Group("/shifts", h.middleware.RequireAuth(h.authController))

	shifts.Get("/status", h.getStatus)
	shifts.Get("/history", h.getHistory)
	shifts.Post("/start", h.startShift)
	shifts.Post("/end", h.endShift)
}

func (h *ShiftHandler) getStatus(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("getStatus")

	status, err := h.shiftController.Status(c.Context())
	if err != nil {
		_ = log.Err("Failed to get shift status", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get shift status",
		})
	}

	return c.JSON(status)
}

func (h *ShiftHandler) getHistory(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("getHistory")

	limit := c.QueryInt("limit", 50)

	shifts, err := h.shiftController.History(c.Context(), limit)
	if err != nil {
		_ = log.Err("Failed to get shift history", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get shift history",
		})
	}

	return c.JSON(fiber.Map{
		"shifts": shifts,
	})
}

func (h *ShiftHandler) startShift(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("startShift")

	var req shiftController.StartShiftRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	shift, err := h.shiftController.Start(c.Context(), &req)
	if err != nil {
		if errors.Is(err, shiftController.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if errors.Is(err, shiftController.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "A shift is already active",
			})
		}
		_ = log.Err("Failed to start shift", err, "dutyOfficer", req.DutyOfficer)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to start shift",
		})
	}

	if err := h.eventBus.PublishShiftChange(shift.DutyOfficer, true); err != nil {
		log.Warn("Failed to publish shift change", "error", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"shift": shift,
	})
}

func (h *ShiftHandler) endShift(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("endShift")

	var req shiftController.EndShiftRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	shift, err := h.shiftController.End(c.Context(), &req)
	if err != nil {
		if errors.Is(err, shiftController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No active shift to end",
			})
		}
		_ = log.Err("Failed to end shift", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to end shift",
		})
	}

	if err := h.eventBus.PublishShiftChange(shift.DutyOfficer, false); err != nil {
		log.Warn("Failed to publish shift change", "error", err)
	}

	return c.JSON(fiber.Map{
		"shift": shift,
	})
}
