package handlers

import (
	"errors"

	"dutydesk/internal/app"
	authController "dutydesk/internal/controllers/auth"
	packageController "dutydesk/internal/controllers/packages"
	"dutydesk/internal/logger"
	"dutydesk/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PackageHandler struct {
	Handler
	packageController packageController.PackageControllerInterface
	authController    authController.AuthControllerInterface
}

func NewPackageHandler(app app.App, router fiber.Router) *PackageHandler {
	log := logger.New("handlers").File("package_handler")
	return &PackageHandler{
		packageController: app.Controllers.Package,
		authController:    app.Controllers.Auth,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *PackageHandler) Register() {
	packages := h.router.Group("/packages", h.middleware.RequireAuth(h.authController))

	packages.Get("", h.listPackages)
	packages.Post("", h.intakePackage)
	packages.Post("/pickup", h.pickupPackage)
	packages.Post("/reassign-location", h.reassignLocation)
	packages.Get("/member/:memberId", h.listForMember)
	packages.Get("/:id", h.getPackage)
	packages.Put("/:id", h.updatePackage)
	packages.Delete("/:id", h.deletePackage)
}

func (h *PackageHandler) listPackages(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("listPackages")

	pendingOnly := c.QueryBool("pending", false)

	packages, err := h.packageController.List(c.Context(), pendingOnly)
	if err != nil {
		_ = log.Err("Failed to list packages", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list packages",
		})
	}

	return c.JSON(fiber.Map{
		"packages": packages,
	})
}

func (h *PackageHandler) intakePackage(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("intakePackage")

	var req packageController.IntakeRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	pkg, err := h.packageController.Intake(c.Context(), &req)
	if err != nil {
		if errors.Is(err, packageController.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		_ = log.Err("Failed to intake package", err, "memberID", req.MemberID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to intake package",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"package": pkg,
	})
}

func (h *PackageHandler) pickupPackage(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("pickupPackage")

	var req packageController.PickupRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	pkg, err := h.packageController.Pickup(c.Context(), &req)
	if err != nil {
		if errors.Is(err, packageController.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if errors.Is(err, packageController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Package not found",
			})
		}
		if errors.Is(err, packageController.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Package was already picked up",
			})
		}
		_ = log.Err("Failed to record pickup", err, "packageID", req.PackageID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record pickup",
		})
	}

	return c.JSON(fiber.Map{
		"package": pkg,
	})
}

func (h *PackageHandler) reassignLocation(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("reassignLocation")

	var req packageController.ReassignLocationRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	count, err := h.packageController.ReassignLocation(c.Context(), &req)
	if err != nil {
		if errors.Is(err, packageController.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		_ = log.Err("Failed to reassign storage location", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reassign storage location",
		})
	}

	return c.JSON(fiber.Map{
		"moved": count,
	})
}

func (h *PackageHandler) listForMember(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("listForMember")

	memberID := c.Params("memberId")
	if memberID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Member ID is required",
		})
	}

	packages, err := h.packageController.ListForMember(c.Context(), memberID)
	if err != nil {
		_ = log.Err("Failed to list packages for member", err, "memberID", memberID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list packages for member",
		})
	}

	return c.JSON(fiber.Map{
		"packages": packages,
	})
}

func (h *PackageHandler) getPackage(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("getPackage")

	packageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		log.Warn("Invalid package ID", "id", c.Params("id"))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid package ID",
		})
	}

	pkg, err := h.packageController.Get(c.Context(), packageID)
	if err != nil {
		if errors.Is(err, packageController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Package not found",
			})
		}
		_ = log.Err("Failed to get package", err, "packageID", packageID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get package",
		})
	}

	return c.JSON(fiber.Map{
		"package": pkg,
	})
}

func (h *PackageHandler) updatePackage(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("updatePackage")

	packageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		log.Warn("Invalid package ID", "id", c.Params("id"))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid package ID",
		})
	}

	var pkg models.Package
	if err := c.BodyParser(&pkg); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	pkg.ID = packageID

	updated, err := h.packageController.Update(c.Context(), &pkg)
	if err != nil {
		if errors.Is(err, packageController.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if errors.Is(err, packageController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Package not found",
			})
		}
		_ = log.Err("Failed to update package", err, "packageID", packageID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update package",
		})
	}

	return c.JSON(fiber.Map{
		"package": updated,
	})
}

func (h *PackageHandler) deletePackage(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("deletePackage")

	packageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		log.Warn("Invalid package ID", "id", c.Params("id"))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid package ID",
		})
	}

	if err := h.packageController.Delete(c.Context(), packageID); err != nil {
		if errors.Is(err, packageController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Package not found",
			})
		}
		_ = log.Err("Failed to delete package", err, "packageID", packageID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete package",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}
