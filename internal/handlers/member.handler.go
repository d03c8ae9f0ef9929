package handlers

import (
	"context"
	"errors"

	"dutydesk/internal/app"
	authController "dutydesk/internal/controllers/auth"
	memberController "dutydesk/internal/controllers/members"
	"dutydesk/internal/logger"
	"dutydesk/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type MemberHandler struct {
	Handler
	memberController memberController.MemberControllerInterface
	authController   authController.AuthControllerInterface
}

func NewMemberHandler(app app.App, router fiber.Router) *MemberHandler {
	log := logger.New("handlers").File("member_handler")
	return &MemberHandler{
		memberController: app.Controllers.Member,
		authController:   app.Controllers.Auth,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *MemberHandler) Register() {
	members := h.router.Group("/members", h.middleware.RequireAuth(h.authController))

	members.Get("/search", h.searchMembers)
	members.Get("", h.listMembers)
	members.Post("", h.createMember)
	members.Get("/:id", h.getMember)
	members.Put("/:id", h.updateMember)
	members.Delete("/:id", h.deleteMember)
	members.Post("/:id/associations/:otherId", h.associate)
	members.Delete("/:id/associations/:otherId", h.dissociate)
}

func (h *MemberHandler) listMembers(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("listMembers")

	members, err := h.memberController.List(c.Context())
	if err != nil {
		_ = log.Err("Failed to list members", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list members",
		})
	}

	return c.JSON(fiber.Map{
		"members": members,
	})
}

func (h *MemberHandler) searchMembers(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("searchMembers")

	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query parameter q is required",
		})
	}

	members, err := h.memberController.Search(c.Context(), query)
	if err != nil {
		_ = log.Err("Failed to search members", err, "query", query)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search members",
		})
	}

	return c.JSON(fiber.Map{
		"members": members,
	})
}

func (h *MemberHandler) createMember(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("createMember")

	var req memberController.CreateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	member, err := h.memberController.Create(c.Context(), &req)
	if err != nil {
		if errors.Is(err, memberController.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if errors.Is(err, memberController.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "A member with this memberId already exists",
			})
		}
		_ = log.Err("Failed to create member", err, "memberID", req.MemberID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create member",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"member": member,
	})
}

func (h *MemberHandler) getMember(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("getMember")

	memberID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		log.Warn("Invalid member ID", "id", c.Params("id"))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid member ID",
		})
	}

	member, err := h.memberController.Get(c.Context(), memberID)
	if err != nil {
		if errors.Is(err, memberController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Member not found",
			})
		}
		_ = log.Err("Failed to get member", err, "memberID", memberID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get member",
		})
	}

	return c.JSON(fiber.Map{
		"member": member,
	})
}

func (h *MemberHandler) updateMember(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("updateMember")

	memberID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		log.Warn("Invalid member ID", "id", c.Params("id"))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid member ID",
		})
	}

	var member models.Member
	if err := c.BodyParser(&member); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	member.ID = memberID

	updated, err := h.memberController.Update(c.Context(), &member)
	if err != nil {
		if errors.Is(err, memberController.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if errors.Is(err, memberController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Member not found",
			})
		}
		if errors.Is(err, memberController.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "A member with this memberId already exists",
			})
		}
		_ = log.Err("Failed to update member", err, "memberID", memberID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update member",
		})
	}

	return c.JSON(fiber.Map{
		"member": updated,
	})
}

func (h *MemberHandler) deleteMember(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("deleteMember")

	memberID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		log.Warn("Invalid member ID", "id", c.Params("id"))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid member ID",
		})
	}

	if err := h.memberController.Delete(c.Context(), memberID); err != nil {
		if errors.Is(err, memberController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Member not found",
			})
		}
		_ = log.Err("Failed to delete member", err, "memberID", memberID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete member",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

func (h *MemberHandler) associate(c *fiber.Ctx) error {
	return h.updateAssociation(c, h.memberController.Associate, "associate")
}

func (h *MemberHandler) dissociate(c *fiber.Ctx) error {
	return h.updateAssociation(c, h.memberController.Dissociate, "dissociate")
}

func (h *MemberHandler) updateAssociation(
	c *fiber.Ctx,
	op func(ctx context.Context, memberID, otherID uuid.UUID) error,
	name string,
) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("updateAssociation")

	memberID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid member ID",
		})
	}

	otherID, err := uuid.Parse(c.Params("otherId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid associated member ID",
		})
	}

	if err := op(c.Context(), memberID, otherID); err != nil {
		if errors.Is(err, memberController.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if errors.Is(err, memberController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Member not found",
			})
		}
		_ = log.Err("Failed to update association", err,
			"memberID", memberID,
			"otherID", otherID,
			"operation", name,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update association",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}
