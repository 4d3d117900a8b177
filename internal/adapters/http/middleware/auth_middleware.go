package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"sogecredit/internal/adapters/persistence/repositories"
	"sogecredit/internal/config"
	"sogecredit/internal/core/domain"
	"sogecredit/internal/pkg/jwt"
	"sogecredit/internal/pkg/response"
)

// AuthMiddleware validates the access token and resolves the acting user.
// The user row is reloaded on every request so a deactivated account is cut
// off immediately, not at token expiry. The resolved domain.Actor is stored
// in c.Locals("actor").
func AuthMiddleware(cfg *config.Config, userRepo repositories.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := c.Cookies("access_token")

		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		user, err := userRepo.GetByID(c.Context(), claims.UserID)
		if err != nil {
			return response.Unauthorized(c, "Unknown user")
		}
		if !user.IsActive {
			return response.Forbidden(c, "User account is inactive")
		}

		c.Locals("userID", user.ID)
		c.Locals("username", user.Username)
		c.Locals("role", string(user.Role))
		c.Locals("actor", user.ToActor())

		return c.Next()
	}
}

// RoleMiddleware restricts a route to the given roles
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := c.Locals("actor").(domain.Actor)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowed := range allowedRoles {
			if actor.Role == allowed {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// ManagerOnly allows only the manager role
func ManagerOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleManager)
}

// ManagerOrOfficer allows the manager and officer roles
func ManagerOrOfficer() fiber.Handler {
	return RoleMiddleware(domain.RoleManager, domain.RoleOfficer)
}
