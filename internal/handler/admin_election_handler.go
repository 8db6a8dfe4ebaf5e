package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/voteguard/voteguard-api/internal/dto"
	"github.com/voteguard/voteguard-api/internal/service"
	"github.com/voteguard/voteguard-api/internal/utils"
)

// AdminElectionHandler manages the election administration routes.
type AdminElectionHandler struct {
	elections service.ElectionService
	contests  service.ContestService
	logger    zerolog.Logger
}

// NewAdminElectionHandler constructs the handler.
func NewAdminElectionHandler(elections service.ElectionService, contests service.ContestService, logger zerolog.Logger) *AdminElectionHandler {
	return &AdminElectionHandler{
		elections: elections,
		contests:  contests,
		logger:    logger.With().Str("component", "admin_election_handler").Logger(),
	}
}

// Register attaches routes.
func (h *AdminElectionHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/contests", h.createContest)
	router.Get("/:id/contests", h.listContests)
}

func (h *AdminElectionHandler) create(c *fiber.Ctx) error {
	var payload dto.ElectionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	election, err := h.elections.Create(c.Context(), payload, auditActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err), errors.Is(err, service.ErrInvalidElectionWindow):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create election")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create election")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "election created", election)
}

func (h *AdminElectionHandler) list(c *fiber.Ctx) error {
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

	result, err := h.elections.List(c.Context(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list elections")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list elections")
	}

	return utils.SendSuccess(c, "elections retrieved", result)
}

func (h *AdminElectionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid election id")
	}

	detail, err := h.elections.Detail(c.Context(), id, 0)
	if err != nil {
		if errors.Is(err, service.ErrElectionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "election not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load election")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load election")
	}

	return utils.SendSuccess(c, "election retrieved", detail)
}

func (h *AdminElectionHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid election id")
	}

	var payload dto.ElectionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	election, err := h.elections.Update(c.Context(), id, payload, auditActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err), errors.Is(err, service.ErrInvalidElectionWindow):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrElectionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "election not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to update election")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update election")
	}

	return utils.SendSuccess(c, "election updated", election)
}

func (h *AdminElectionHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid election id")
	}

	if err := h.elections.Delete(c.Context(), id, auditActorFromContext(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrElectionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "election not found")
		case errors.Is(err, service.ErrElectionHasBallots):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete election")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete election")
	}

	return utils.SendSuccess(c, "election deleted", nil)
}

func (h *AdminElectionHandler) createContest(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid election id")
	}

	var payload dto.ContestCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	contest, err := h.contests.Create(c.Context(), id, payload, auditActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrElectionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "election not found")
		case errors.Is(err, service.ErrElectionHasBallots):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create contest")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create contest")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "contest created", contest)
}

func (h *AdminElectionHandler) listContests(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid election id")
	}

	contests, err := h.contests.ListByElection(c.Context(), id)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list contests")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list contests")
	}

	return utils.SendSuccess(c, "contests retrieved", contests)
}
