// middleware/auth.go
package middleware

import (
	"log"

	"game-platform/services"

	"github.com/gofiber/fiber/v2"
)

const callerKey = "caller"

// CallerResolver turns the X-User-ID set by the Gateway into a Caller.
type CallerResolver interface {
	Caller(userID string) (services.Caller, error)
}

// UserContextMiddleware requires X-User-ID, resolves it to a known account
// and stores the Caller in c.Locals for handlers.
func UserContextMiddleware(resolver CallerResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		if userID == "" {
			log.Printf("❌ [USER_CTX] X-User-ID required but missing: %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID: request must come through gateway with auth context",
			})
		}

		caller, err := resolver.Caller(userID)
		if err != nil {
			log.Printf("❌ [USER_CTX] Unknown user %s on %s", userID, c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unknown user",
			})
		}

		c.Locals(callerKey, caller)
		return c.Next()
	}
}

// RequireAdmin rejects callers that are not administrators. It must run
// after UserContextMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !CallerFrom(c).Admin {
			log.Printf("🚫 [USER_CTX] Non-admin %s denied on %s", CallerFrom(c).UserID, c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "administrator access required",
			})
		}
		return c.Next()
	}
}

// CallerFrom returns the Caller stored by UserContextMiddleware, or the
// zero Caller on public routes.
func CallerFrom(c *fiber.Ctx) services.Caller {
	caller, _ := c.Locals(callerKey).(services.Caller)
	return caller
}
