package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assign/internal/lang"
	"github.com/noah-isme/gema-assign/internal/validation"
)

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Details map[string]string `json:"details"`
}

// newApp returns an app whose requests carry the given caller, as the JWT
// middleware would set it.
func newApp(userID uint, role string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if userID > 0 {
			c.Locals("user_id", userID)
			c.Locals("user_role", role)
		}
		return c.Next()
	})
	return app
}

func newValidator(t *testing.T) *validation.Validator {
	t.Helper()
	v, err := validation.New(lang.MustNew())
	require.NoError(t, err)
	return v
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func doMultipart(t *testing.T, app *fiber.App, target string, fields map[string]string, files map[string][]byte) *http.Response {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for name, content := range files {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()
	var out envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}
