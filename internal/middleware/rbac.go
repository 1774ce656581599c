package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-assign/internal/utils"
)

// RequireRole ensures the authenticated user holds one of roles. AuthRoleGrader
// may be listed to admit teachers and admins alike.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make([]string, 0, len(roles))
	for _, role := range roles {
		if normalized := strings.ToLower(strings.TrimSpace(role)); normalized != "" {
			allowed = append(allowed, normalized)
		}
	}

	return func(c *fiber.Ctx) error {
		if c.Locals("user_id") == nil {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}
		role := normalizeRoleValue(c.Locals("user_role"))
		for _, want := range allowed {
			if roleAllowed(role, want) {
				return c.Next()
			}
		}
		return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", fiber.Map{"role": role})
	}
}
