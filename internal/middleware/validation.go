package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"smartq/internal/domain"
)

// RequireJSON rejects bodies that are not declared as JSON before they reach
// the handler.
func RequireJSON() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ct := strings.ToLower(c.Get(fiber.HeaderContentType))
		if !strings.HasPrefix(ct, fiber.MIMEApplicationJSON) {
			return domain.NewInputError("Content-Type", "request body must be application/json")
		}
		if len(c.Body()) == 0 {
			return domain.NewInputError("body", "request body is empty")
		}
		return c.Next()
	}
}
