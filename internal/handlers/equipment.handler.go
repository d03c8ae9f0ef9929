package handlers

import (
	"errors"

	"dutydesk/internal/app"
	authController "dutydesk/internal/controllers/auth"
	equipmentController "dutydesk/internal/controllers/equipment"
	"dutydesk/internal/logger"
	"dutydesk/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type EquipmentHandler struct {
	Handler
	equipmentController equipmentController.EquipmentControllerInterface
	authController      authController.AuthControllerInterface
}

func NewEquipmentHandler(app app.App, router fiber.Router) *EquipmentHandler {
	log := logger.New("handlers").File("equipment_handler")
	return &EquipmentHandler{
		equipmentController: app.Controllers.Equipment,
		authController:      app.Controllers.Auth,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *EquipmentHandler) Register() {
	equipment := h.router.Group("/equipment", h.middleware.RequireAuth(h.authController))

	equipment.Get("/overdue", h.listOverdue)
	equipment.Get("/due-soon", h.listDueSoon)
	equipment.Get("", h.listEquipment)
	equipment.Post("", h.addEquipment)
	equipment.Post("/checkout", h.checkout)
	equipment.Post("/return", h.returnEquipment)
	equipment.Post("/renew", h.renew)
	equipment.Get("/:id", h.getEquipment)
	equipment.Put("/:id", h.updateEquipment)
	equipment.Delete("/:id", h.removeEquipment)
	equipment.Get("/:id/history", h.getHistory)
	equipment.Get("/:id/checkout", h.getActiveCheckout)
}

func (h *EquipmentHandler) listEquipment(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("listEquipment")

	equipment, err := h.equipmentController.List(c.Context())
	if err != nil {
		_ = log.Err("Failed to list equipment", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list equipment",
		})
	}

	return c.JSON(fiber.Map{
		"equipment": equipment,
	})
}

func (h *EquipmentHandler) addEquipment(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("addEquipment")

	var req equipmentController.AddEquipmentRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	equipment, err := h.equipmentController.Add(c.Context(), &req)
	if err != nil {
		if errors.Is(err, equipmentController.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		_ = log.Err("Failed to add equipment", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add equipment",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"equipment": equipment,
	})
}

func (h *EquipmentHandler) getEquipment(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("getEquipment")

	equipmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		log.Warn("Invalid equipment ID", "id", c.Params("id"))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid equipment ID",
		})
	}

	equipment, err := h.equipmentController.Get(c.Context(), equipmentID)
	if err != nil {
		if errors.Is(err, equipmentController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Equipment not found",
			})
		}
		_ = log.Err("Failed to get equipment", err, "equipmentID", equipmentID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get equipment",
		})
	}

	return c.JSON(fiber.Map{
		"equipment": equipment,
	})
}

func (h *EquipmentHandler) updateEquipment(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("updateEquipment")

	equipmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		log.Warn("Invalid equipment ID", "id", c.Params("id"))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid equipment ID",
		})
	}

	var equipment models.Equipment
	if err := c.BodyParser(&equipment); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	equipment.ID = equipmentID

	updated, err := h.equipmentController.Update(c.Context(), &equipment)
	if err != nil {
		if errors.Is(err, equipmentController.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if errors.Is(err, equipmentController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Equipment not found",
			})
		}
		_ = log.Err("Failed to update equipment", err, "equipmentID", equipmentID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update equipment",
		})
	}

	return c.JSON(fiber.Map{
		"equipment": updated,
	})
}

func (h *EquipmentHandler) removeEquipment(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("removeEquipment")

	equipmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		log.Warn("Invalid equipment ID", "id", c.Params("id"))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid equipment ID",
		})
	}

	if err := h.equipmentController.Remove(c.Context(), equipmentID); err != nil {
		if errors.Is(err, equipmentController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Equipment not found",
			})
		}
		_ = log.Err("Failed to remove equipment", err, "equipmentID", equipmentID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to remove equipment",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

func (h *EquipmentHandler) checkout(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("checkout")

	var req equipmentController.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	record, err := h.equipmentController.Checkout(c.Context(), &req)
	if err != nil {
		if errors.Is(err, equipmentController.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if errors.Is(err, equipmentController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Equipment not found",
			})
		}
		if errors.Is(err, equipmentController.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Equipment is already checked out",
			})
		}
		_ = log.Err("Failed to check out equipment", err, "equipmentID", req.EquipmentID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to check out equipment",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"record": record,
	})
}

func (h *EquipmentHandler) returnEquipment(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("returnEquipment")

	var req equipmentController.ReturnRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	response, err := h.equipmentController.Return(c.Context(), &req)
	if err != nil {
		if errors.Is(err, equipmentController.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if errors.Is(err, equipmentController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No active checkout for this equipment",
			})
		}
		_ = log.Err("Failed to return equipment", err, "equipmentID", req.EquipmentID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to return equipment",
		})
	}

	return c.JSON(response)
}

func (h *EquipmentHandler) renew(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("renew")

	var req equipmentController.RenewRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	record, err := h.equipmentController.Renew(c.Context(), &req)
	if err != nil {
		if errors.Is(err, equipmentController.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if errors.Is(err, equipmentController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No active checkout for this equipment",
			})
		}
		_ = log.Err("Failed to renew checkout", err, "equipmentID", req.EquipmentID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to renew checkout",
		})
	}

	return c.JSON(fiber.Map{
		"record": record,
	})
}

func (h *EquipmentHandler) listOverdue(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("listOverdue")

	items, err := h.equipmentController.Overdue(c.Context())
	if err != nil {
		_ = log.Err("Failed to list overdue equipment", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list overdue equipment",
		})
	}

	return c.JSON(fiber.Map{
		"overdue": items,
	})
}

func (h *EquipmentHandler) listDueSoon(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("listDueSoon")

	items, err := h.equipmentController.DueSoon(c.Context())
	if err != nil {
		_ = log.Err("Failed to list due-soon equipment", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list due-soon equipment",
		})
	}

	return c.JSON(fiber.Map{
		"dueSoon": items,
	})
}

func (h *EquipmentHandler) getActiveCheckout(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("getActiveCheckout")

	equipmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		log.Warn("Invalid equipment ID", "id", c.Params("id"))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid equipment ID",
		})
	}

	record, err := h.equipmentController.ActiveCheckout(c.Context(), equipmentID)
	if err != nil {
		if errors.Is(err, equipmentController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No active checkout for this equipment",
			})
		}
		_ = log.Err("Failed to get active checkout", err, "equipmentID", equipmentID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get active checkout",
		})
	}

	return c.JSON(fiber.Map{
		"record": record,
	})
}

func (h *EquipmentHandler) getHistory(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("getHistory")

	equipmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		log.Warn("Invalid equipment ID", "id", c.Params("id"))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid equipment ID",
		})
	}

	records, err := h.equipmentController.History(c.Context(), equipmentID)
	if err != nil {
		_ = log.Err("Failed to get checkout history", err, "equipmentID", equipmentID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get checkout history",
		})
	}

	return c.JSON(fiber.Map{
		"records": records,
	})
}
