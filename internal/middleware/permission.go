package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/urlsentry/urlsentry-backend/internal/authz"
	"github.com/urlsentry/urlsentry-backend/internal/dto"
)

// RequireCapability rejects requests whose role does not hold one of the
// given capabilities. Runs after JWTProtected; a request that reaches the
// handler is guaranteed to carry a valid identity with sufficient rights.
func RequireCapability(capabilities ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mc, err := claims(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		role, _ := mc["role"].(string)
		for _, capability := range capabilities {
			if authz.Can(role, capability) {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Forbidden: insufficient permissions",
		})
	}
}
