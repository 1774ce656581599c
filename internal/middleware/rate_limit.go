package middleware

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/gema-assign/internal/observability"
	"github.com/noah-isme/gema-assign/internal/utils"
)

// RateLimit throttles a route family per authenticated user, falling back to
// the client IP for anonymous callers. Rejections answer 429 with the window
// the caller should wait.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}
	retryAfter := int(math.Ceil(window.Seconds()))

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userID, ok := c.Locals("user_id").(uint); ok && userID != 0 {
				return fmt.Sprintf("%s:user:%d", identifier, userID)
			}
			return fmt.Sprintf("%s:ip:%s", identifier, c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			observability.RateLimited().WithLabelValues(identifier).Inc()
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return utils.Fail(c, fiber.StatusTooManyRequests, "too many requests", fiber.Map{
				"limiter":     identifier,
				"retry_after": retryAfter,
			})
		},
	})
}
