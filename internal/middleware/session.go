package middleware

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/voteguard/voteguard-api/internal/utils"
)

// SessionCookieName is the cookie the browser clients carry the token in.
const SessionCookieName = "voteguard_session"

// SessionChecker reports whether a session token is still live. A nil
// checker skips revocation checks (stateless validation only).
type SessionChecker interface {
	IsSessionActive(ctx context.Context, tokenID string) (bool, error)
}

// SessionProtected returns a middleware that validates the session JWT
// carried either in the session cookie or an Authorization bearer header.
func SessionProtected(secret string, sessions SessionChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		tokenID, _ := claims["sid"].(string)
		if sessions != nil {
			if tokenID == "" {
				return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
			}
			active, err := sessions.IsSessionActive(c.Context(), tokenID)
			if err != nil || !active {
				return utils.SendError(c, fiber.StatusUnauthorized, "session expired")
			}
		}

		if userID := extractUserIDFromClaims(claims); userID != nil {
			c.Locals("user_id", *userID)
		}
		if roles := extractRolesFromClaims(claims); len(roles) > 0 {
			c.Locals("user_roles", roles)
		}
		if tokenID != "" {
			c.Locals("session_id", tokenID)
		}

		return c.Next()
	}
}

func tokenFromRequest(c *fiber.Ctx) string {
	if cookie := strings.TrimSpace(c.Cookies(SessionCookieName)); cookie != "" {
		return cookie
	}

	authorization := c.Get("Authorization")
	const bearer = "Bearer "
	if strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
		return strings.TrimSpace(authorization[len(bearer):])
	}

	return ""
}

func extractUserIDFromClaims(claims jwt.MapClaims) *uint {
	keys := []string{"sub", "user_id", "id"}
	for _, key := range keys {
		if value, ok := claims[key]; ok {
			if normalized, err := normalizeUserID(value); err == nil {
				return &normalized
			}
		}
	}

	return nil
}

func normalizeUserID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	default:
		return 0, fmt.Errorf("unsupported subject type")
	}
}

func extractRolesFromClaims(claims jwt.MapClaims) []string {
	candidates := []string{"roles", "role"}
	for _, key := range candidates {
		value, ok := claims[key]
		if !ok {
			continue
		}
		if roles := normalizeRoles(value); len(roles) > 0 {
			return roles
		}
	}
	return nil
}

func normalizeRoles(value interface{}) []string {
	switch v := value.(type) {
	case string:
		if role := strings.ToLower(strings.TrimSpace(v)); role != "" {
			return []string{role}
		}
	case []string:
		return lowerNonEmpty(v)
	case []interface{}:
		roles := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				roles = append(roles, str)
			}
		}
		return lowerNonEmpty(roles)
	}
	return nil
}

func lowerNonEmpty(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		normalized := strings.ToLower(strings.TrimSpace(value))
		if normalized != "" {
			result = append(result, normalized)
		}
	}
	return result
}
