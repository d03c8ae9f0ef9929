package handlers

import (
	"dutydesk/internal/app"
	"dutydesk/internal/handlers/middleware"
	"dutydesk/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) (err error) {
	setupWebSocketRoute(router, app)

	api := router.Group("/api", app.Middleware.TraceID())
	HealthHandler(api, app.Config)
	NewAuthHandler(*app, api).Register()
	NewEquipmentHandler(*app, api).Register()
	NewMemberHandler(*app, api).Register()
	NewPackageHandler(*app, api).Register()
	NewShiftHandler(*app, api).Register()
	NewTransferHandler(*app, api).Register()
	NewAdminHandler(*app, api).Register()

	return nil
}

func setupWebSocketRoute(router fiber.Router, app *app.App) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws", websocket.New(func(c *websocket.Conn) {
		app.Websocket.HandleWebSocket(c)
	}))
}
