package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/voteguard/voteguard-api/internal/dto"
	"github.com/voteguard/voteguard-api/internal/models"
	"github.com/voteguard/voteguard-api/internal/repository"
)

var (
	// ErrCandidateNotFound indicates the candidate does not exist.
	ErrCandidateNotFound = errors.New("candidate not found")
	// ErrPhotoTooLarge indicates the upload exceeded the size limit.
	ErrPhotoTooLarge = errors.New("photo exceeds maximum allowed size")
	// ErrPhotoTypeNotAllowed indicates the sniffed MIME type is not an image.
	ErrPhotoTypeNotAllowed = errors.New("photo type not allowed")
	// ErrPhotoStorageUnavailable indicates no upload backend is configured.
	ErrPhotoStorageUnavailable = errors.New("photo storage not configured")
)

const maxPhotoBytes = 5 * 1024 * 1024

var allowedPhotoTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// PhotoStorage abstracts the upload destination for candidate photos.
type PhotoStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// CandidateService manages candidates within a contest.
type CandidateService interface {
	Create(ctx context.Context, contestID uint, payload dto.CandidateCreateRequest, actor AuditActor) (dto.CandidateResponse, error)
	ListByContest(ctx context.Context, contestID uint) ([]dto.CandidateResponse, error)
	Update(ctx context.Context, id uint, payload dto.CandidateUpdateRequest, actor AuditActor) (dto.CandidateResponse, error)
	Delete(ctx context.Context, id uint, actor AuditActor) error
	UploadPhoto(ctx context.Context, id uint, file *multipart.FileHeader, actor AuditActor) (dto.CandidateResponse, error)
}

type candidateService struct {
	repo      repository.CandidateRepository
	contests  repository.ContestRepository
	ballots   repository.BallotRepository
	storage   PhotoStorage
	validator *validator.Validate
	audit     AuditRecorder
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewCandidateService constructs the candidate service. Storage may be nil
// when no photo backend is configured; photo uploads then fail cleanly.
func NewCandidateService(repo repository.CandidateRepository, contests repository.ContestRepository, ballots repository.BallotRepository, storage PhotoStorage, validate *validator.Validate, audit AuditRecorder, logger zerolog.Logger) CandidateService {
	return &candidateService{
		repo:      repo,
		contests:  contests,
		ballots:   ballots,
		storage:   storage,
		validator: validate,
		audit:     audit,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "candidate_service").Logger(),
	}
}

func (s *candidateService) Create(ctx context.Context, contestID uint, payload dto.CandidateCreateRequest, actor AuditActor) (dto.CandidateResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CandidateResponse{}, err
	}

	contest, err := s.contests.GetByID(ctx, contestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CandidateResponse{}, ErrContestNotFound
		}
		return dto.CandidateResponse{}, err
	}

	if count, err := s.ballots.CountByElection(ctx, contest.ElectionID); err != nil {
		return dto.CandidateResponse{}, err
	} else if count > 0 {
		return dto.CandidateResponse{}, ErrElectionHasBallots
	}

	candidate := models.Candidate{
		ContestID:   contestID,
		Name:        strings.TrimSpace(payload.Name),
		Party:       strings.TrimSpace(payload.Party),
		Description: s.sanitizer.Sanitize(payload.Description),
	}

	if err := s.repo.Create(ctx, &candidate); err != nil {
		return dto.CandidateResponse{}, err
	}

	s.record(ctx, actor, "candidate.created", candidate.ID, map[string]interface{}{"contest_id": contestID})

	return dto.NewCandidateResponse(candidate), nil
}

func (s *candidateService) ListByContest(ctx context.Context, contestID uint) ([]dto.CandidateResponse, error) {
	candidates, err := s.repo.ListByContest(ctx, contestID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CandidateResponse, 0, len(candidates))
	for _, candidate := range candidates {
		responses = append(responses, dto.NewCandidateResponse(candidate))
	}

	return responses, nil
}

func (s *candidateService) Update(ctx context.Context, id uint, payload dto.CandidateUpdateRequest, actor AuditActor) (dto.CandidateResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CandidateResponse{}, err
	}

	updates := make(map[string]interface{})
	if payload.Name != nil {
		updates["name"] = strings.TrimSpace(*payload.Name)
	}
	if payload.Party != nil {
		updates["party"] = strings.TrimSpace(*payload.Party)
	}
	if payload.Description != nil {
		updates["description"] = s.sanitizer.Sanitize(*payload.Description)
	}

	if len(updates) == 0 {
		candidate, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.CandidateResponse{}, ErrCandidateNotFound
			}
			return dto.CandidateResponse{}, err
		}
		return dto.NewCandidateResponse(candidate), nil
	}

	candidate, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CandidateResponse{}, ErrCandidateNotFound
		}
		return dto.CandidateResponse{}, err
	}

	s.record(ctx, actor, "candidate.updated", id, nil)

	return dto.NewCandidateResponse(candidate), nil
}

func (s *candidateService) Delete(ctx context.Context, id uint, actor AuditActor) error {
	candidate, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCandidateNotFound
		}
		return err
	}

	contest, err := s.contests.GetByID(ctx, candidate.ContestID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err == nil {
		if count, err := s.ballots.CountByElection(ctx, contest.ElectionID); err != nil {
			return err
		} else if count > 0 {
			return ErrElectionHasBallots
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCandidateNotFound
		}
		return err
	}

	s.record(ctx, actor, "candidate.deleted", id, nil)

	return nil
}

// UploadPhoto sniffs the real MIME type before handing the bytes to the
// storage backend; the client-provided content type is ignored.
func (s *candidateService) UploadPhoto(ctx context.Context, id uint, file *multipart.FileHeader, actor AuditActor) (dto.CandidateResponse, error) {
	if s.storage == nil {
		return dto.CandidateResponse{}, ErrPhotoStorageUnavailable
	}

	if file == nil || file.Size == 0 {
		return dto.CandidateResponse{}, ErrPhotoTypeNotAllowed
	}
	if file.Size > maxPhotoBytes {
		return dto.CandidateResponse{}, ErrPhotoTooLarge
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CandidateResponse{}, ErrCandidateNotFound
		}
		return dto.CandidateResponse{}, err
	}

	source, err := file.Open()
	if err != nil {
		return dto.CandidateResponse{}, err
	}
	defer source.Close()

	content, err := io.ReadAll(io.LimitReader(source, maxPhotoBytes+1))
	if err != nil {
		return dto.CandidateResponse{}, err
	}
	if int64(len(content)) > maxPhotoBytes {
		return dto.CandidateResponse{}, ErrPhotoTooLarge
	}

	detected := mimetype.Detect(content)
	if _, ok := allowedPhotoTypes[detected.String()]; !ok {
		return dto.CandidateResponse{}, ErrPhotoTypeNotAllowed
	}

	url, err := s.storage.Upload(ctx, file.Filename, bytes.NewReader(content))
	if err != nil {
		s.logger.Error().Err(err).Msg("photo upload failed")
		return dto.CandidateResponse{}, err
	}

	candidate, err := s.repo.Update(ctx, id, map[string]interface{}{"photo_url": url})
	if err != nil {
		return dto.CandidateResponse{}, err
	}

	s.record(ctx, actor, "candidate.photo_updated", id, map[string]interface{}{"mime": detected.String()})

	return dto.NewCandidateResponse(candidate), nil
}

func (s *candidateService) record(ctx context.Context, actor AuditActor, action string, candidateID uint, detail map[string]interface{}) {
	if s.audit == nil {
		return
	}

	id := candidateID
	_, _ = s.audit.Record(ctx, AuditEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "candidate",
		EntityID:   &id,
		Detail:     detail,
	})
}
