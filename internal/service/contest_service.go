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

// ErrContestNotFound indicates the contest does not exist.
var ErrContestNotFound = errors.New("contest not found")

// ContestService manages contests within an election.
type ContestService interface {
	Create(ctx context.Context, electionID uint, payload dto.ContestCreateRequest, actor AuditActor) (dto.ContestResponse, error)
	ListByElection(ctx context.Context, electionID uint) ([]dto.ContestResponse, error)
	Update(ctx context.Context, id uint, payload dto.ContestUpdateRequest, actor AuditActor) (dto.ContestResponse, error)
	Delete(ctx context.Context, id uint, actor AuditActor) error
}

type contestService struct {
	repo      repository.ContestRepository
	elections repository.ElectionRepository
	ballots   repository.BallotRepository
	validator *validator.Validate
	audit     AuditRecorder
	logger    zerolog.Logger
}

// NewContestService constructs the contest service.
func NewContestService(repo repository.ContestRepository, elections repository.ElectionRepository, ballots repository.BallotRepository, validate *validator.Validate, audit AuditRecorder, logger zerolog.Logger) ContestService {
	return &contestService{
		repo:      repo,
		elections: elections,
		ballots:   ballots,
		validator: validate,
		audit:     audit,
		logger:    logger.With().Str("component", "contest_service").Logger(),
	}
}

func (s *contestService) Create(ctx context.Context, electionID uint, payload dto.ContestCreateRequest, actor AuditActor) (dto.ContestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ContestResponse{}, err
	}

	if _, err := s.elections.GetByID(ctx, electionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ContestResponse{}, ErrElectionNotFound
		}
		return dto.ContestResponse{}, err
	}

	if err := s.ensureNoBallots(ctx, electionID); err != nil {
		return dto.ContestResponse{}, err
	}

	contestType := strings.ToLower(strings.TrimSpace(payload.Type))
	maxSelections := payload.MaxSelections
	if maxSelections <= 0 || contestType == models.ContestTypeYesNo {
		maxSelections = 1
	}

	contest := models.Contest{
		ElectionID:    electionID,
		Title:         strings.TrimSpace(payload.Title),
		Type:          contestType,
		MaxSelections: maxSelections,
		Position:      payload.Position,
	}

	if err := s.repo.Create(ctx, &contest); err != nil {
		return dto.ContestResponse{}, err
	}

	s.record(ctx, actor, "contest.created", contest.ID, map[string]interface{}{"election_id": electionID})

	return dto.NewContestResponse(contest), nil
}

func (s *contestService) ListByElection(ctx context.Context, electionID uint) ([]dto.ContestResponse, error) {
	contests, err := s.repo.ListByElection(ctx, electionID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ContestResponse, 0, len(contests))
	for _, contest := range contests {
		responses = append(responses, dto.NewContestResponse(contest))
	}

	return responses, nil
}

func (s *contestService) Update(ctx context.Context, id uint, payload dto.ContestUpdateRequest, actor AuditActor) (dto.ContestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ContestResponse{}, err
	}

	contest, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ContestResponse{}, ErrContestNotFound
		}
		return dto.ContestResponse{}, err
	}

	if err := s.ensureNoBallots(ctx, contest.ElectionID); err != nil {
		return dto.ContestResponse{}, err
	}

	updates := make(map[string]interface{})
	if payload.Title != nil {
		updates["title"] = strings.TrimSpace(*payload.Title)
	}
	if payload.Type != nil {
		updates["type"] = strings.ToLower(strings.TrimSpace(*payload.Type))
		if updates["type"] == models.ContestTypeYesNo {
			updates["max_selections"] = 1
		}
	}
	if payload.MaxSelections != nil && updates["max_selections"] == nil {
		updates["max_selections"] = *payload.MaxSelections
	}
	if payload.Position != nil {
		updates["position"] = *payload.Position
	}

	if len(updates) == 0 {
		return dto.NewContestResponse(contest), nil
	}

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ContestResponse{}, ErrContestNotFound
		}
		return dto.ContestResponse{}, err
	}

	s.record(ctx, actor, "contest.updated", id, nil)

	return dto.NewContestResponse(updated), nil
}

func (s *contestService) Delete(ctx context.Context, id uint, actor AuditActor) error {
	contest, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContestNotFound
		}
		return err
	}

	if err := s.ensureNoBallots(ctx, contest.ElectionID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContestNotFound
		}
		return err
	}

	s.record(ctx, actor, "contest.deleted", id, nil)

	return nil
}

// Structural edits are locked as soon as any ballot references the election.
func (s *contestService) ensureNoBallots(ctx context.Context, electionID uint) error {
	count, err := s.ballots.CountByElection(ctx, electionID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrElectionHasBallots
	}
	return nil
}

func (s *contestService) record(ctx context.Context, actor AuditActor, action string, contestID uint, detail map[string]interface{}) {
	if s.audit == nil {
		return
	}

	id := contestID
	_, _ = s.audit.Record(ctx, AuditEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "contest",
		EntityID:   &id,
		Detail:     detail,
	})
}
