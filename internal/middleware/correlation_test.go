package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assign/internal/observability"
)

func correlationApp(seen *string) *fiber.App {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		*seen = observability.CorrelationID(c.UserContext())
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestCorrelationIDPropagatesIncomingHeader(t *testing.T) {
	var seen string
	app := correlationApp(&seen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderCorrelationID, "batch-42")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "batch-42", resp.Header.Get(HeaderCorrelationID))
	require.Equal(t, "batch-42", seen)
}

func TestCorrelationIDReplacesUnsafeHeader(t *testing.T) {
	var seen string
	app := correlationApp(&seen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderCorrelationID, strings.Repeat("x", 65))
	resp, err := app.Test(req)
	require.NoError(t, err)

	id := resp.Header.Get(HeaderCorrelationID)
	require.Len(t, id, 36)
	require.Equal(t, id, seen)
}
