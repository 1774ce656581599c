package middleware

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/gema-assign/internal/utils"
)

const tokenLeeway = 30 * time.Second

// JWTProtected validates HMAC signed bearer tokens and stores the caller's
// user id and canonical role on the request locals.
func JWTProtected(secret string) fiber.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithLeeway(tokenLeeway),
	)
	key := []byte(secret)

	return func(c *fiber.Ctx) error {
		raw, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return utils.Fail(c, fiber.StatusUnauthorized, err.Error(), nil)
		}

		claims := jwt.MapClaims{}
		if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		}); err != nil {
			detail := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				detail = "token expired"
			}
			return utils.Fail(c, fiber.StatusUnauthorized, detail, nil)
		}

		userID, ok := userIDFromClaims(claims)
		if !ok {
			return utils.Fail(c, fiber.StatusUnauthorized, "token carries no user", nil)
		}
		c.Locals("user_id", userID)
		if role := roleFromClaims(claims); role != "" {
			c.Locals("user_role", role)
		}

		return c.Next()
	}
}

func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("authorization header missing")
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", errors.New("invalid authorization header")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.New("invalid token")
	}
	return token, nil
}

func userIDFromClaims(claims jwt.MapClaims) (uint, bool) {
	for _, key := range []string{"user_id", "sub", "id"} {
		switch v := claims[key].(type) {
		case float64:
			if v > 0 && v == float64(uint(v)) {
				return uint(v), true
			}
		case string:
			if parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64); err == nil && parsed > 0 {
				return uint(parsed), true
			}
		}
	}
	return 0, false
}

// roleFromClaims reads "role" or "roles". Multi-role tokens resolve to the
// most privileged role.
func roleFromClaims(claims jwt.MapClaims) string {
	var values []string
	for _, key := range []string{"role", "roles"} {
		switch v := claims[key].(type) {
		case string:
			values = append(values, strings.Split(v, ",")...)
		case []interface{}:
			for _, item := range v {
				if s, ok := item.(string); ok {
					values = append(values, s)
				}
			}
		}
	}
	return highestRole(values)
}
