package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/voteguard/voteguard-api/internal/dto"
	"github.com/voteguard/voteguard-api/internal/models"
	"github.com/voteguard/voteguard-api/internal/repository"
)

var (
	// ErrEligibilityNotFound indicates the roster row does not exist.
	ErrEligibilityNotFound = errors.New("eligibility row not found")
	// ErrVoterAlreadyVoted refuses roster removal once the voter cast a ballot.
	ErrVoterAlreadyVoted = errors.New("voter has already cast a ballot")
)

// EligibilityService manages the per-election voter allow-list.
type EligibilityService interface {
	Add(ctx context.Context, electionID uint, payload dto.EligibilityAddRequest, actor AuditActor) (dto.EligibilityAddResponse, error)
	List(ctx context.Context, electionID uint, req dto.EligibilityListRequest) (dto.EligibilityListResponse, error)
	Remove(ctx context.Context, electionID, userID uint, actor AuditActor) error
}

type eligibilityService struct {
	repo      repository.EligibilityRepository
	elections repository.ElectionRepository
	validator *validator.Validate
	audit     AuditRecorder
	logger    zerolog.Logger
}

// NewEligibilityService constructs the eligibility service.
func NewEligibilityService(repo repository.EligibilityRepository, elections repository.ElectionRepository, validate *validator.Validate, audit AuditRecorder, logger zerolog.Logger) EligibilityService {
	return &eligibilityService{
		repo:      repo,
		elections: elections,
		validator: validate,
		audit:     audit,
		logger:    logger.With().Str("component", "eligibility_service").Logger(),
	}
}

// Add inserts roster rows for the given users. Users already on the roster
// are skipped, so repeated adds from concurrent admin sessions converge.
func (s *eligibilityService) Add(ctx context.Context, electionID uint, payload dto.EligibilityAddRequest, actor AuditActor) (dto.EligibilityAddResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EligibilityAddResponse{}, err
	}

	if _, err := s.elections.GetByID(ctx, electionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EligibilityAddResponse{}, ErrElectionNotFound
		}
		return dto.EligibilityAddResponse{}, err
	}

	added, err := s.repo.Add(ctx, electionID, payload.UserIDs)
	if err != nil {
		return dto.EligibilityAddResponse{}, err
	}

	if s.audit != nil {
		id := electionID
		_, _ = s.audit.Record(ctx, AuditEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "eligibility.added",
			EntityType: "election",
			EntityID:   &id,
			Detail: map[string]interface{}{
				"requested": len(payload.UserIDs),
				"added":     added,
			},
		})
	}

	return dto.EligibilityAddResponse{
		Added:   int(added),
		Skipped: len(payload.UserIDs) - int(added),
	}, nil
}

func (s *eligibilityService) List(ctx context.Context, electionID uint, req dto.EligibilityListRequest) (dto.EligibilityListResponse, error) {
	filter := repository.EligibilityFilter{
		Status:   strings.TrimSpace(req.Status),
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	rows, total, err := s.repo.List(ctx, electionID, filter)
	if err != nil {
		return dto.EligibilityListResponse{}, err
	}

	responses := make([]dto.EligibilityResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, dto.NewEligibilityResponse(row))
	}

	return dto.EligibilityListResponse{
		Items:      responses,
		Pagination: paginationMeta(req.Page, req.PageSize, total),
	}, nil
}

// Remove deletes a roster row. The server refuses once the voter has voted;
// this must not depend on the client remembering to disable the button.
func (s *eligibilityService) Remove(ctx context.Context, electionID, userID uint, actor AuditActor) error {
	row, err := s.repo.Get(ctx, electionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEligibilityNotFound
		}
		return err
	}

	if row.Status == models.EligibilityStatusVoted {
		return ErrVoterAlreadyVoted
	}

	if err := s.repo.Remove(ctx, electionID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEligibilityNotFound
		}
		return err
	}

	if s.audit != nil {
		id := electionID
		_, _ = s.audit.Record(ctx, AuditEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "eligibility.removed",
			EntityType: "election",
			EntityID:   &id,
			Detail:     map[string]interface{}{"user_id": userID},
		})
	}

	return nil
}
