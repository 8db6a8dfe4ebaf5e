package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/voteguard/voteguard-api/internal/middleware"
	"github.com/voteguard/voteguard-api/internal/models"
	"github.com/voteguard/voteguard-api/internal/service"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Params(key))
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func rolesFromContext(c *fiber.Ctx) []string {
	if v := c.Locals("user_roles"); v != nil {
		if roles, ok := v.([]string); ok {
			return roles
		}
	}
	return nil
}

func sessionIDFromContext(c *fiber.Ctx) string {
	if v := c.Locals("session_id"); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func hasAnyRole(c *fiber.Ctx, wanted ...string) bool {
	roles := rolesFromContext(c)
	for _, role := range roles {
		for _, want := range wanted {
			if role == want {
				return true
			}
		}
	}
	return false
}

// actorRoleFromContext reports the highest-privilege role on the session,
// which is what audit entries record as the acting capacity.
func actorRoleFromContext(c *fiber.Ctx) string {
	roles := rolesFromContext(c)
	ranked := []string{models.RoleSuperAdmin, models.RoleAdmin, models.RoleVoter}
	for _, candidate := range ranked {
		for _, role := range roles {
			if role == candidate {
				return role
			}
		}
	}
	if len(roles) > 0 {
		return roles[0]
	}
	return ""
}

func auditActorFromContext(c *fiber.Ctx) service.AuditActor {
	return service.AuditActor{
		ID:   userIDFromContext(c),
		Role: actorRoleFromContext(c),
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}
