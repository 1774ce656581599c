package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func roleApp(userID interface{}, role string, allowed ...string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if userID != nil {
			c.Locals("user_id", userID)
		}
		c.Locals("user_role", role)
		return c.Next()
	})
	app.Use(RequireRole(allowed...))
	app.Get("/grading", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name    string
		userID  interface{}
		role    string
		allowed []string
		status  int
	}{
		{"admin listed", uint(1), "admin", []string{"admin", "teacher"}, fiber.StatusOK},
		{"student rejected", uint(2), "student", []string{"admin", "teacher"}, fiber.StatusForbidden},
		{"editing teacher maps to teacher", uint(3), "editingteacher", []string{"teacher"}, fiber.StatusOK},
		{"manager maps to admin", uint(4), "manager", []string{"admin"}, fiber.StatusOK},
		{"grader alias admits teacher", uint(5), "teacher", []string{AuthRoleGrader}, fiber.StatusOK},
		{"grader alias rejects student", uint(6), "student", []string{AuthRoleGrader}, fiber.StatusForbidden},
		{"anonymous", nil, "admin", []string{"admin"}, fiber.StatusUnauthorized},
		{"guest is not a student", uint(7), "guest", []string{"student"}, fiber.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := roleApp(tc.userID, tc.role, tc.allowed...)
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/grading", nil))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestHighestRolePrefersPrivilege(t *testing.T) {
	require.Equal(t, "admin", highestRole([]string{"student", "manager", "editingteacher"}))
	require.Equal(t, "teacher", highestRole([]string{" ", "student", "EditingTeacher"}))
	require.Equal(t, "", highestRole(nil))
}
