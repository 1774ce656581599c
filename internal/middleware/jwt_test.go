package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const jwtTestSecret = "assign-secret"

func jwtApp() *fiber.App {
	app := fiber.New()
	app.Use(JWTProtected(jwtTestSecret))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("user_id"), "role": c.Locals("user_role")})
	})
	return app
}

func signed(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(jwtTestSecret))
	require.NoError(t, err)
	return token
}

func callWithBearer(t *testing.T, app *fiber.App, header string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestJWTProtectedAcceptsMultiRoleToken(t *testing.T) {
	token := signed(t, jwt.SigningMethodHS384, jwt.MapClaims{
		"sub":   "17",
		"roles": []string{"student", "editingteacher"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	resp := callWithBearer(t, jwtApp(), "bearer "+token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTProtectedRejections(t *testing.T) {
	expired := signed(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 3,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	anonymous := signed(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "teacher",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"empty token":    "Bearer ",
		"expired":        "Bearer " + expired,
		"no user claim":  "Bearer " + anonymous,
		"garbage":        "Bearer not.a.token",
	}

	app := jwtApp()
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			resp := callWithBearer(t, app, header)
			require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestRoleFromClaimsSplitsCommaList(t *testing.T) {
	require.Equal(t, "admin", roleFromClaims(jwt.MapClaims{"role": "teacher,manager"}))
	require.Equal(t, "guest", roleFromClaims(jwt.MapClaims{"roles": []interface{}{"guest"}}))
	require.Equal(t, "student", roleFromClaims(jwt.MapClaims{"roles": []interface{}{"guest", "student"}}))
}
