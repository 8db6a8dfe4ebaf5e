package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/voteguard/voteguard-api/internal/utils"
)

// RequireRole ensures that the authenticated user possesses one of the allowed roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		for _, role := range rolesFromLocals(c.Locals("user_roles")) {
			if _, ok := allowed[role]; ok {
				return c.Next()
			}
		}
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	}
}

func rolesFromLocals(value interface{}) []string {
	switch v := value.(type) {
	case []string:
		return lowerNonEmpty(v)
	case string:
		return lowerNonEmpty([]string{v})
	case fmt.Stringer:
		return lowerNonEmpty([]string{v.String()})
	default:
		return nil
	}
}
