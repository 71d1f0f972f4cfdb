package middleware

import (
	"context"
	"errors"
	"strings"

	"mixmodas/internal/models"
	"mixmodas/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// localsUser is the fiber.Ctx locals key holding the verified *models.User.
const localsUser = "user"

// TokenVerifier resolves a session token to its stored user.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*models.User, error)
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthRequired is a Fiber middleware to check for a valid session token.
func AuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Token de autenticação é obrigatório",
			})
		}

		// Expected format: "Bearer <token>"
		token := BearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Formato do cabeçalho Authorization deve ser 'Bearer <token>'",
			})
		}

		user, err := verifier.VerifyToken(c.UserContext(), token)
		if err != nil {
			if !errors.Is(err, services.ErrInvalidToken) {
				// The store or the identity provider failed, not the token.
				zap.L().Error("token verification failed", zap.String("path", c.Path()), zap.Error(err))
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "Erro no servidor",
				})
			}
			zap.L().Debug("token validation failed", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": services.MsgInvalidToken,
			})
		}

		// Store the user in Fiber context for subsequent handlers
		c.Locals(localsUser, user)

		return c.Next()
	}
}

// RequireRole must run after AuthRequired. The role is read from the stored
// user; request headers are never consulted.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": services.MsgInvalidToken,
			})
		}
		if user.Role != role {
			zap.L().Info("role check failed",
				zap.String("email", user.Email),
				zap.String("required", role),
				zap.String("path", c.Path()),
			)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": services.MsgAdminOnly,
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the user stored by AuthRequired, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localsUser).(*models.User)
	return user
}
