package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/voteguard/voteguard-api/internal/dto"
	"github.com/voteguard/voteguard-api/internal/service"
	"github.com/voteguard/voteguard-api/internal/utils"
)

// AdminCandidateHandler manages candidate administration routes.
type AdminCandidateHandler struct {
	candidates service.CandidateService
	logger     zerolog.Logger
}

// NewAdminCandidateHandler constructs the handler.
func NewAdminCandidateHandler(candidates service.CandidateService, logger zerolog.Logger) *AdminCandidateHandler {
	return &AdminCandidateHandler{
		candidates: candidates,
		logger:     logger.With().Str("component", "admin_candidate_handler").Logger(),
	}
}

// Register attaches routes.
func (h *AdminCandidateHandler) Register(router fiber.Router) {
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/photo", h.uploadPhoto)
}

func (h *AdminCandidateHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid candidate id")
	}

	var payload dto.CandidateUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	candidate, err := h.candidates.Update(c.Context(), id, payload, auditActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrCandidateNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "candidate not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to update candidate")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update candidate")
	}

	return utils.SendSuccess(c, "candidate updated", candidate)
}

func (h *AdminCandidateHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid candidate id")
	}

	if err := h.candidates.Delete(c.Context(), id, auditActorFromContext(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrCandidateNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "candidate not found")
		case errors.Is(err, service.ErrElectionHasBallots):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete candidate")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete candidate")
	}

	return utils.SendSuccess(c, "candidate deleted", nil)
}

func (h *AdminCandidateHandler) uploadPhoto(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid candidate id")
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "photo file is required")
	}

	candidate, err := h.candidates.UploadPhoto(c.Context(), id, file, auditActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCandidateNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "candidate not found")
		case errors.Is(err, service.ErrPhotoTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrPhotoTypeNotAllowed):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, service.ErrPhotoStorageUnavailable):
			return utils.SendError(c, fiber.StatusServiceUnavailable, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to upload candidate photo")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to upload candidate photo")
	}

	return utils.SendSuccess(c, "candidate photo updated", candidate)
}
