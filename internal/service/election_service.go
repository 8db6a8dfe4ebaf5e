package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/voteguard/voteguard-api/internal/dto"
	"github.com/voteguard/voteguard-api/internal/models"
	"github.com/voteguard/voteguard-api/internal/repository"
)

var (
	// ErrElectionNotFound indicates the election does not exist.
	ErrElectionNotFound = errors.New("election not found")
	// ErrElectionHasBallots blocks destructive changes once voting happened.
	ErrElectionHasBallots = errors.New("election already has ballots")
	// ErrInvalidElectionWindow indicates end does not come after start.
	ErrInvalidElectionWindow = errors.New("election end must be after start")
)

// ElectionService orchestrates election management and voter-facing reads.
type ElectionService interface {
	Create(ctx context.Context, payload dto.ElectionCreateRequest, actor AuditActor) (dto.ElectionResponse, error)
	Get(ctx context.Context, id uint) (dto.ElectionResponse, error)
	List(ctx context.Context, req dto.ElectionListRequest) (dto.ElectionListResponse, error)
	ListVisible(ctx context.Context, req dto.ElectionListRequest) (dto.ElectionListResponse, error)
	Detail(ctx context.Context, id uint, voterID uint) (dto.ElectionDetailResponse, error)
	Update(ctx context.Context, id uint, payload dto.ElectionUpdateRequest, actor AuditActor) (dto.ElectionResponse, error)
	Delete(ctx context.Context, id uint, actor AuditActor) error
}

type electionService struct {
	repo        repository.ElectionRepository
	eligibility repository.EligibilityRepository
	ballots     repository.BallotRepository
	validator   *validator.Validate
	audit       AuditRecorder
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

// NewElectionService constructs the election service.
func NewElectionService(repo repository.ElectionRepository, eligibility repository.EligibilityRepository, ballots repository.BallotRepository, validate *validator.Validate, audit AuditRecorder, logger zerolog.Logger) ElectionService {
	return &electionService{
		repo:        repo,
		eligibility: eligibility,
		ballots:     ballots,
		validator:   validate,
		audit:       audit,
		sanitizer:   bluemonday.UGCPolicy(),
		logger:      logger.With().Str("component", "election_service").Logger(),
	}
}

func (s *electionService) Create(ctx context.Context, payload dto.ElectionCreateRequest, actor AuditActor) (dto.ElectionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ElectionResponse{}, err
	}

	if !payload.EndsAt.After(payload.StartsAt) {
		return dto.ElectionResponse{}, ErrInvalidElectionWindow
	}

	status := strings.ToLower(strings.TrimSpace(payload.Status))
	if status == "" {
		status = models.ElectionStatusDraft
	}

	election := models.Election{
		Title:       strings.TrimSpace(payload.Title),
		Description: s.sanitizer.Sanitize(payload.Description),
		Status:      status,
		StartsAt:    payload.StartsAt.UTC(),
		EndsAt:      payload.EndsAt.UTC(),
	}

	if err := s.repo.Create(ctx, &election); err != nil {
		return dto.ElectionResponse{}, err
	}

	s.record(ctx, actor, "election.created", election.ID, map[string]interface{}{"title": election.Title})

	return dto.NewElectionResponse(election), nil
}

func (s *electionService) Get(ctx context.Context, id uint) (dto.ElectionResponse, error) {
	election, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ElectionResponse{}, ErrElectionNotFound
		}
		return dto.ElectionResponse{}, err
	}

	return dto.NewElectionResponse(election), nil
}

func (s *electionService) List(ctx context.Context, req dto.ElectionListRequest) (dto.ElectionListResponse, error) {
	return s.list(ctx, repository.ElectionFilter{
		Search:   strings.TrimSpace(req.Search),
		Status:   strings.TrimSpace(req.Status),
		Page:     req.Page,
		PageSize: req.PageSize,
	}, req)
}

// ListVisible restricts the listing to statuses voters may see; drafts and
// cancelled elections stay admin-only.
func (s *electionService) ListVisible(ctx context.Context, req dto.ElectionListRequest) (dto.ElectionListResponse, error) {
	visible := []string{models.ElectionStatusUpcoming, models.ElectionStatusActive, models.ElectionStatusCompleted}

	status := strings.TrimSpace(req.Status)
	filter := repository.ElectionFilter{
		Search:   strings.TrimSpace(req.Search),
		Statuses: visible,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if status != "" {
		for _, allowed := range visible {
			if status == allowed {
				filter.Statuses = []string{status}
				break
			}
		}
	}

	return s.list(ctx, filter, req)
}

func (s *electionService) list(ctx context.Context, filter repository.ElectionFilter, req dto.ElectionListRequest) (dto.ElectionListResponse, error) {
	elections, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ElectionListResponse{}, err
	}

	responses := make([]dto.ElectionResponse, 0, len(elections))
	for _, election := range elections {
		responses = append(responses, dto.NewElectionResponse(election))
	}

	return dto.ElectionListResponse{
		Items:      responses,
		Pagination: paginationMeta(req.Page, req.PageSize, total),
	}, nil
}

// Detail returns the contest/candidate tree plus the caller's voting status.
func (s *electionService) Detail(ctx context.Context, id uint, voterID uint) (dto.ElectionDetailResponse, error) {
	election, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ElectionDetailResponse{}, ErrElectionNotFound
		}
		return dto.ElectionDetailResponse{}, err
	}

	contests := make([]dto.ContestResponse, 0, len(election.Contests))
	for _, contest := range election.Contests {
		contests = append(contests, dto.NewContestResponse(contest))
	}

	status := dto.VoterStatusIneligible
	if voterID > 0 {
		row, err := s.eligibility.Get(ctx, id, voterID)
		switch {
		case err == nil && row.Status == models.EligibilityStatusVoted:
			status = dto.VoterStatusVoted
		case err == nil && row.Status == models.EligibilityStatusEligible:
			status = dto.VoterStatusEligible
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return dto.ElectionDetailResponse{}, err
		}
	}

	return dto.ElectionDetailResponse{
		ElectionResponse: dto.NewElectionResponse(election),
		Contests:         contests,
		VoterStatus:      status,
	}, nil
}

func (s *electionService) Update(ctx context.Context, id uint, payload dto.ElectionUpdateRequest, actor AuditActor) (dto.ElectionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ElectionResponse{}, err
	}

	updates := make(map[string]interface{})
	changedFields := make([]string, 0)

	if payload.Title != nil {
		updates["title"] = strings.TrimSpace(*payload.Title)
		changedFields = append(changedFields, "title")
	}
	if payload.Description != nil {
		updates["description"] = s.sanitizer.Sanitize(*payload.Description)
		changedFields = append(changedFields, "description")
	}
	if payload.Status != nil {
		updates["status"] = strings.ToLower(strings.TrimSpace(*payload.Status))
		changedFields = append(changedFields, "status")
	}
	if payload.StartsAt != nil {
		updates["starts_at"] = payload.StartsAt.UTC()
		changedFields = append(changedFields, "starts_at")
	}
	if payload.EndsAt != nil {
		updates["ends_at"] = payload.EndsAt.UTC()
		changedFields = append(changedFields, "ends_at")
	}

	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	if payload.StartsAt != nil || payload.EndsAt != nil {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ElectionResponse{}, ErrElectionNotFound
			}
			return dto.ElectionResponse{}, err
		}

		starts, ends := current.StartsAt, current.EndsAt
		if payload.StartsAt != nil {
			starts = payload.StartsAt.UTC()
		}
		if payload.EndsAt != nil {
			ends = payload.EndsAt.UTC()
		}
		if !ends.After(starts) {
			return dto.ElectionResponse{}, ErrInvalidElectionWindow
		}
	}

	election, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ElectionResponse{}, ErrElectionNotFound
		}
		return dto.ElectionResponse{}, err
	}

	s.record(ctx, actor, "election.updated", id, map[string]interface{}{"fields": changedFields})

	return dto.NewElectionResponse(election), nil
}

func (s *electionService) Delete(ctx context.Context, id uint, actor AuditActor) error {
	count, err := s.ballots.CountByElection(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrElectionHasBallots
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrElectionNotFound
		}
		return err
	}

	s.record(ctx, actor, "election.deleted", id, nil)

	return nil
}

func (s *electionService) record(ctx context.Context, actor AuditActor, action string, electionID uint, detail map[string]interface{}) {
	if s.audit == nil {
		return
	}

	id := electionID
	_, _ = s.audit.Record(ctx, AuditEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "election",
		EntityID:   &id,
		Detail:     detail,
	})
}
