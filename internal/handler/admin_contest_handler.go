package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/voteguard/voteguard-api/internal/dto"
	"github.com/voteguard/voteguard-api/internal/service"
	"github.com/voteguard/voteguard-api/internal/utils"
)

// AdminContestHandler manages contest administration routes.
type AdminContestHandler struct {
	contests   service.ContestService
	candidates service.CandidateService
	logger     zerolog.Logger
}

// NewAdminContestHandler constructs the handler.
func NewAdminContestHandler(contests service.ContestService, candidates service.CandidateService, logger zerolog.Logger) *AdminContestHandler {
	return &AdminContestHandler{
		contests:   contests,
		candidates: candidates,
		logger:     logger.With().Str("component", "admin_contest_handler").Logger(),
	}
}

// Register attaches routes.
func (h *AdminContestHandler) Register(router fiber.Router) {
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/candidates", h.createCandidate)
	router.Get("/:id/candidates", h.listCandidates)
}

func (h *AdminContestHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid contest id")
	}

	var payload dto.ContestUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	contest, err := h.contests.Update(c.Context(), id, payload, auditActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrContestNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "contest not found")
		case errors.Is(err, service.ErrElectionHasBallots):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to update contest")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update contest")
	}

	return utils.SendSuccess(c, "contest updated", contest)
}

func (h *AdminContestHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid contest id")
	}

	if err := h.contests.Delete(c.Context(), id, auditActorFromContext(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrContestNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "contest not found")
		case errors.Is(err, service.ErrElectionHasBallots):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete contest")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete contest")
	}

	return utils.SendSuccess(c, "contest deleted", nil)
}

func (h *AdminContestHandler) createCandidate(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid contest id")
	}

	var payload dto.CandidateCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	candidate, err := h.candidates.Create(c.Context(), id, payload, auditActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrContestNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "contest not found")
		case errors.Is(err, service.ErrElectionHasBallots):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create candidate")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create candidate")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "candidate created", candidate)
}

func (h *AdminContestHandler) listCandidates(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid contest id")
	}

	candidates, err := h.candidates.ListByContest(c.Context(), id)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list candidates")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list candidates")
	}

	return utils.SendSuccess(c, "candidates retrieved", candidates)
}
