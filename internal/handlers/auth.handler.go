package handlers

import (
	"errors"

	"dutydesk/internal/app"
	authController "dutydesk/internal/controllers/auth"
	"dutydesk/internal/handlers/middleware"
	"dutydesk/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Handler
	authController authController.AuthControllerInterface
}

func NewAuthHandler(app app.App, router fiber.Router) *AuthHandler {
	log := logger.New("handlers").File("auth_handler")
	return &AuthHandler{
		authController: app.Controllers.Auth,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AuthHandler) Register() {
	auth := h.router.Group("/auth")

	auth.Post("/login", h.login)

	protected := auth.Group("/", h.middleware.RequireAuth(h.authController))
	protected.Get("/me", h.getCurrentSession)
	protected.Post("/logout", h.logout)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	log := h.log.Function("login")

	var req authController.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	response, err := h.authController.Login(c.Context(), &req)
	if err != nil {
		if errors.Is(err, authController.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "dutyOfficer is required",
			})
		}
		if errors.Is(err, authController.ErrUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid desk PIN",
			})
		}
		_ = log.Err("Login failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Login failed",
		})
	}

	return c.JSON(response)
}

func (h *AuthHandler) getCurrentSession(c *fiber.Ctx) error {
	session := middleware.GetSession(c)
	if session == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	return c.JSON(fiber.Map{
		"dutyOfficer": session.DutyOfficer,
	})
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	log := h.log.Function("logout")

	session := middleware.GetSession(c)
	if session == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	if err := h.authController.Logout(c.Context(), session); err != nil {
		_ = log.Err("Logout failed", err, "dutyOfficer", session.DutyOfficer)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Logout failed",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Logout successful",
	})
}
