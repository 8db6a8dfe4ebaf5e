package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/voteguard/voteguard-api/internal/dto"
	"github.com/voteguard/voteguard-api/internal/service"
	"github.com/voteguard/voteguard-api/internal/utils"
)

// AdminEligibilityHandler manages the per-election voter roster routes.
type AdminEligibilityHandler struct {
	eligibility service.EligibilityService
	logger      zerolog.Logger
}

// NewAdminEligibilityHandler constructs the handler.
func NewAdminEligibilityHandler(eligibility service.EligibilityService, logger zerolog.Logger) *AdminEligibilityHandler {
	return &AdminEligibilityHandler{
		eligibility: eligibility,
		logger:      logger.With().Str("component", "admin_eligibility_handler").Logger(),
	}
}

// Register attaches roster routes under the admin elections group.
func (h *AdminEligibilityHandler) Register(router fiber.Router) {
	router.Post("/:id/voters", h.add)
	router.Get("/:id/voters", h.list)
	router.Delete("/:id/voters/:userID", h.remove)
}

func (h *AdminEligibilityHandler) add(c *fiber.Ctx) error {
	electionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid election id")
	}

	var payload dto.EligibilityAddRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.eligibility.Add(c.Context(), electionID, payload, auditActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrElectionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "election not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to add eligible voters")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to add eligible voters")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "eligible voters added", result)
}

func (h *AdminEligibilityHandler) list(c *fiber.Ctx) error {
	electionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid election id")
	}

	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	req := dto.EligibilityListRequest{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
	}

	result, err := h.eligibility.List(c.Context(), electionID, req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list roster")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list roster")
	}

	return utils.SendSuccess(c, "roster retrieved", result)
}

func (h *AdminEligibilityHandler) remove(c *fiber.Ctx) error {
	electionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid election id")
	}
	userID, err := parseUintParam(c, "userID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	if err := h.eligibility.Remove(c.Context(), electionID, userID, auditActorFromContext(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrEligibilityNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "roster entry not found")
		case errors.Is(err, service.ErrVoterAlreadyVoted):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to remove roster entry")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to remove roster entry")
	}

	return utils.SendSuccess(c, "roster entry removed", nil)
}
