package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/voteguard/voteguard-api/internal/dto"
	"github.com/voteguard/voteguard-api/internal/models"
	"github.com/voteguard/voteguard-api/internal/service"
	"github.com/voteguard/voteguard-api/internal/utils"
)

// ElectionHandler serves the voter-facing election routes.
type ElectionHandler struct {
	elections service.ElectionService
	ballots   service.BallotService
	results   service.ResultsService
	logger    zerolog.Logger
}

// NewElectionHandler constructs the handler.
func NewElectionHandler(elections service.ElectionService, ballots service.BallotService, results service.ResultsService, logger zerolog.Logger) *ElectionHandler {
	return &ElectionHandler{
		elections: elections,
		ballots:   ballots,
		results:   results,
		logger:    logger.With().Str("component", "election_handler").Logger(),
	}
}

// Register attaches voter election routes.
func (h *ElectionHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.detail)
	router.Post("/:id/vote", h.castBallot)
	router.Get("/:id/results", h.electionResults)
}

func (h *ElectionHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	req := dto.ElectionListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Status:   c.Query("status"),
	}

	result, err := h.elections.ListVisible(c.Context(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list elections")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list elections")
	}

	return utils.SendSuccess(c, "elections retrieved", result)
}

func (h *ElectionHandler) detail(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid election id")
	}

	detail, err := h.elections.Detail(c.Context(), id, userIDFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrElectionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "election not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load election")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load election")
	}

	return utils.SendSuccess(c, "election retrieved", detail)
}

func (h *ElectionHandler) castBallot(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid election id")
	}

	var payload dto.CastBallotRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	receipt, err := h.ballots.Cast(c.Context(), id, userIDFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err), errors.Is(err, service.ErrInvalidSelection):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrElectionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "election not found")
		case errors.Is(err, service.ErrVotingClosed):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrNotEligible):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrAlreadyVoted):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("ballot submission failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "ballot submission failed")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "ballot accepted", receipt)
}

func (h *ElectionHandler) electionResults(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid election id")
	}

	includeInterim := hasAnyRole(c, models.RoleAdmin, models.RoleSuperAdmin)

	results, err := h.results.Results(c.Context(), id, includeInterim)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrElectionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "election not found")
		case errors.Is(err, service.ErrResultsNotVisible):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to compute results")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute results")
	}

	if results.CacheHit {
		c.Set("X-Cache-Hit", "true")
	} else {
		c.Set("X-Cache-Hit", "false")
	}

	return utils.SendSuccess(c, "results retrieved", results)
}
