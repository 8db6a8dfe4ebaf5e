package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/voteguard/voteguard-api/internal/dto"
	"github.com/voteguard/voteguard-api/internal/models"
	"github.com/voteguard/voteguard-api/internal/observability"
	"github.com/voteguard/voteguard-api/internal/repository"
)

var (
	// ErrNotEligible indicates no usable roster row for this voter/election.
	ErrNotEligible = errors.New("voter not eligible for this election")
	// ErrAlreadyVoted indicates a completed ballot already exists.
	ErrAlreadyVoted = errors.New("ballot already submitted")
	// ErrVotingClosed indicates the election is not accepting ballots.
	ErrVotingClosed = errors.New("voting is not open")
	// ErrInvalidSelection indicates the selection set fails contest rules.
	ErrInvalidSelection = errors.New("invalid selection set")
)

// BallotService validates and persists complete ballots.
type BallotService interface {
	Cast(ctx context.Context, electionID, voterID uint, payload dto.CastBallotRequest) (dto.CastBallotResponse, error)
}

type ballotService struct {
	ballots     repository.BallotRepository
	elections   repository.ElectionRepository
	eligibility repository.EligibilityRepository
	validator   *validator.Validate
	audit       AuditRecorder
	logger      zerolog.Logger
}

// NewBallotService constructs the ballot service.
func NewBallotService(ballots repository.BallotRepository, elections repository.ElectionRepository, eligibility repository.EligibilityRepository, validate *validator.Validate, audit AuditRecorder, logger zerolog.Logger) BallotService {
	return &ballotService{
		ballots:     ballots,
		elections:   elections,
		eligibility: eligibility,
		validator:   validate,
		audit:       audit,
		logger:      logger.With().Str("component", "ballot_service").Logger(),
	}
}

// Cast accepts the full selection set exactly once. Selections beyond a
// contest's max are rejected outright: silently altering a ballot
// server-side is not acceptable, trimming is the client's courtesy.
func (s *ballotService) Cast(ctx context.Context, electionID, voterID uint, payload dto.CastBallotRequest) (dto.CastBallotResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CastBallotResponse{}, err
	}

	election, err := s.elections.GetDetail(ctx, electionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CastBallotResponse{}, ErrElectionNotFound
		}
		return dto.CastBallotResponse{}, err
	}

	if !election.VotingOpen(time.Now().UTC()) {
		return dto.CastBallotResponse{}, ErrVotingClosed
	}

	row, err := s.eligibility.Get(ctx, electionID, voterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CastBallotResponse{}, ErrNotEligible
		}
		return dto.CastBallotResponse{}, err
	}
	switch row.Status {
	case models.EligibilityStatusVoted:
		return dto.CastBallotResponse{}, ErrAlreadyVoted
	case models.EligibilityStatusEligible:
	default:
		return dto.CastBallotResponse{}, ErrNotEligible
	}

	votes, err := buildVotes(election, payload.Selections)
	if err != nil {
		return dto.CastBallotResponse{}, err
	}

	ballot := models.Ballot{
		UserID:     voterID,
		ElectionID: electionID,
		ReceiptID:  uuid.NewString(),
	}

	if err := s.ballots.Cast(ctx, &ballot, votes); err != nil {
		if errors.Is(err, repository.ErrEligibilityGone) || isUniqueViolation(err) {
			// A concurrent submission won the race.
			return dto.CastBallotResponse{}, ErrAlreadyVoted
		}
		return dto.CastBallotResponse{}, err
	}

	observability.BallotsCast().WithLabelValues(fmt.Sprintf("%d", electionID)).Inc()

	if s.audit != nil {
		id := electionID
		_, _ = s.audit.Record(ctx, AuditEntry{
			ActorID:    voterID,
			ActorRole:  models.RoleVoter,
			Action:     "ballot.cast",
			EntityType: "election",
			EntityID:   &id,
			Detail:     map[string]interface{}{"receipt_id": ballot.ReceiptID},
		})
	}

	return dto.CastBallotResponse{
		ReceiptID:   ballot.ReceiptID,
		ElectionID:  electionID,
		SubmittedAt: ballot.SubmittedAt,
	}, nil
}

// buildVotes checks every selection against the election's contest tree:
// contests must belong to the election, candidates to their contest, counts
// must respect max selections and duplicates are refused. Contests missing
// from the payload are abstentions.
func buildVotes(election models.Election, selections []dto.BallotSelection) ([]models.Vote, error) {
	contests := make(map[uint]models.Contest, len(election.Contests))
	candidates := make(map[uint]map[uint]struct{}, len(election.Contests))
	for _, contest := range election.Contests {
		contests[contest.ID] = contest
		members := make(map[uint]struct{}, len(contest.Candidates))
		for _, candidate := range contest.Candidates {
			members[candidate.ID] = struct{}{}
		}
		candidates[contest.ID] = members
	}

	seenContests := make(map[uint]struct{}, len(selections))
	votes := make([]models.Vote, 0, len(selections))

	for _, selection := range selections {
		contest, ok := contests[selection.ContestID]
		if !ok {
			return nil, fmt.Errorf("%w: contest %d not in election", ErrInvalidSelection, selection.ContestID)
		}
		if _, dup := seenContests[selection.ContestID]; dup {
			return nil, fmt.Errorf("%w: contest %d repeated", ErrInvalidSelection, selection.ContestID)
		}
		seenContests[selection.ContestID] = struct{}{}

		if len(selection.CandidateIDs) > contest.MaxSelections {
			return nil, fmt.Errorf("%w: contest %d allows at most %d selections", ErrInvalidSelection, contest.ID, contest.MaxSelections)
		}

		seenCandidates := make(map[uint]struct{}, len(selection.CandidateIDs))
		for _, candidateID := range selection.CandidateIDs {
			if _, ok := candidates[contest.ID][candidateID]; !ok {
				return nil, fmt.Errorf("%w: candidate %d not in contest %d", ErrInvalidSelection, candidateID, contest.ID)
			}
			if _, dup := seenCandidates[candidateID]; dup {
				return nil, fmt.Errorf("%w: candidate %d repeated", ErrInvalidSelection, candidateID)
			}
			seenCandidates[candidateID] = struct{}{}

			votes = append(votes, models.Vote{
				ElectionID:  election.ID,
				ContestID:   contest.ID,
				CandidateID: candidateID,
			})
		}
	}

	return votes, nil
}
