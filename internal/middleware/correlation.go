package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/noah-isme/gema-assign/internal/observability"
)

// HeaderCorrelationID carries the correlation identifier in requests and responses.
const HeaderCorrelationID = "X-Correlation-ID"

const maxCorrelationIDLength = 64

// CorrelationID ensures every request carries a correlation identifier. The id is
// echoed in the response and stored on the request's user context, so events
// published while serving the request carry it too.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := acceptCorrelationID(c.Get(HeaderCorrelationID))
		if id == "" {
			id = acceptCorrelationID(c.Get(fiber.HeaderXRequestID))
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals("correlation_id", id)
		c.Set(HeaderCorrelationID, id)
		c.SetUserContext(observability.WithCorrelationID(c.UserContext(), id))

		return c.Next()
	}
}

// acceptCorrelationID returns the incoming id when it is short and printable,
// so client supplied values cannot forge log lines.
func acceptCorrelationID(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || len(value) > maxCorrelationIDLength {
		return ""
	}
	for _, r := range value {
		if r < 0x21 || r > 0x7e {
			return ""
		}
	}
	return value
}

// GetCorrelationID returns the correlation identifier bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals("correlation_id").(string); ok {
		return id
	}
	return observability.CorrelationID(c.UserContext())
}
