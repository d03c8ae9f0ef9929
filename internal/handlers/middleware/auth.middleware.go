package middleware

import (
	"context"
	"strings"

	authController "dutydesk/internal/controllers/auth"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
)

// AuthContextKey is used to store auth info in context
type AuthContextKey string

const (
	SessionKey      AuthContextKey = "session"
	SessionKeyFiber string         = "Session" // Fiber context key (string)
)

// RequireAuth validates the desk session token on every request.
func (m *Middleware) RequireAuth(auth authController.AuthControllerInterface) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := logger.New("middleware").TraceFromContext(c.Context()).Function("RequireAuth")

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			log.Info("missing authorization header")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		// Check for Bearer token format
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			log.Info("invalid authorization header format")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		token := tokenParts[1]
		if token == "" {
			log.Info("empty token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Token required",
			})
		}

		session, err := auth.ValidateToken(c.Context(), token)
		if err != nil {
			log.Info("token validation failed", "error", err.Error())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		// Store session in Fiber context
		c.Locals(SessionKeyFiber, session)

		// Add to Go context for services (preserve trace ID from TraceID middleware)
		ctx := context.WithValue(c.UserContext(), SessionKey, session)
		c.SetUserContext(ctx)

		log.Info("officer authenticated", "dutyOfficer", session.DutyOfficer)
		return c.Next()
	}
}

// GetSession extracts the desk session from Fiber context
func GetSession(c *fiber.Ctx) *authController.Session {
	session, ok := c.Locals(SessionKeyFiber).(*authController.Session)
	if !ok {
		return nil
	}
	return session
}
