package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/utils"
)

// Auth role constants used by WithAuth helper.
const (
	AuthRoleAny     = "any"
	AuthRoleGrader  = "grader"
	AuthRoleAdmin   = models.RoleAdmin
	AuthRoleStudent = models.RoleStudent
)

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	Role        string
	RequireUser bool
}

// WithAuth wraps a handler with basic authentication/authorization guards.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := strings.ToLower(strings.TrimSpace(opts.Role))
	if role == "" {
		role = AuthRoleAny
	}

	requireUser := opts.RequireUser
	if !requireUser && role != AuthRoleAny {
		requireUser = true
	}

	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id")
		if requireUser && userID == nil {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}

		if role == AuthRoleAny {
			if !requireUser || userID != nil {
				return handler(c)
			}
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}

		if !roleAllowed(normalizeRoleValue(c.Locals("user_role")), role) {
			return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
		}

		return handler(c)
	}
}
