package middleware

import (
	"errors"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/urlsentry/urlsentry-backend/internal/config"
	"github.com/urlsentry/urlsentry-backend/internal/dto"
)

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

// claims pulls the parsed JWT claims stored by the JWT middleware.
func claims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, errors.New("missing token")
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return mc, nil
}

// UserID returns the authenticated user's id from the JWT subject.
func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	mc, err := claims(c)
	if err != nil {
		return uuid.Nil, err
	}
	sub, _ := mc["sub"].(string)
	return uuid.Parse(sub)
}

// Role returns the authenticated user's role claim.
func Role(c *fiber.Ctx) string {
	mc, err := claims(c)
	if err != nil {
		return ""
	}
	role, _ := mc["role"].(string)
	return role
}
