package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/voteguard/voteguard-api/internal/dto"
	"github.com/voteguard/voteguard-api/internal/models"
	"github.com/voteguard/voteguard-api/internal/repository"
)

// ErrResultsNotVisible hides tallies from voters until the election completes.
var ErrResultsNotVisible = errors.New("results not yet published")

// ResultsService computes per-candidate counts, percentages and winner
// flags from stored vote rows at read time.
type ResultsService interface {
	Results(ctx context.Context, electionID uint, includeInterim bool) (dto.ElectionResults, error)
}

type resultsService struct {
	ballots   repository.BallotRepository
	elections repository.ElectionRepository
	redis     *redis.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
}

// NewResultsService constructs the results service. The redis client may be
// nil, in which case every request hits the database.
func NewResultsService(ballots repository.BallotRepository, elections repository.ElectionRepository, redisClient *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) ResultsService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}

	return &resultsService{
		ballots:   ballots,
		elections: elections,
		redis:     redisClient,
		cacheTTL:  cacheTTL,
		logger:    logger.With().Str("component", "results_service").Logger(),
	}
}

// Results returns the full tally. Voters only see completed elections;
// admins pass includeInterim to watch an active election. Winner flags mark
// every candidate sharing the maximum count, so a tie yields multiple
// winners rather than an arbitrary pick.
func (s *resultsService) Results(ctx context.Context, electionID uint, includeInterim bool) (dto.ElectionResults, error) {
	election, err := s.elections.GetDetail(ctx, electionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ElectionResults{}, ErrElectionNotFound
		}
		return dto.ElectionResults{}, err
	}

	if election.Status != models.ElectionStatusCompleted && !includeInterim {
		return dto.ElectionResults{}, ErrResultsNotVisible
	}

	cacheKey := fmt.Sprintf("voteguard:results:%d", electionID)
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var results dto.ElectionResults
			if err := json.Unmarshal(cached, &results); err == nil {
				results.CacheHit = true
				return results, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("results cache read failed")
		}
	}

	rows, err := s.ballots.Tally(ctx, electionID)
	if err != nil {
		return dto.ElectionResults{}, err
	}

	totalBallots, err := s.ballots.CountByElection(ctx, electionID)
	if err != nil {
		return dto.ElectionResults{}, err
	}

	results := assembleResults(election, rows, totalBallots)

	if s.redis != nil {
		if payload, err := json.Marshal(results); err == nil {
			if err := s.redis.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("results cache write failed")
			}
		}
	}

	return results, nil
}

func assembleResults(election models.Election, rows []repository.TallyRow, totalBallots int64) dto.ElectionResults {
	counts := make(map[uint]map[uint]int64, len(election.Contests))
	for _, row := range rows {
		if counts[row.ContestID] == nil {
			counts[row.ContestID] = make(map[uint]int64)
		}
		counts[row.ContestID][row.CandidateID] = row.Count
	}

	contests := make([]dto.ContestResult, 0, len(election.Contests))
	for _, contest := range election.Contests {
		var total int64
		for _, candidate := range contest.Candidates {
			total += counts[contest.ID][candidate.ID]
		}

		var top int64
		for _, candidate := range contest.Candidates {
			if votes := counts[contest.ID][candidate.ID]; votes > top {
				top = votes
			}
		}

		candidates := make([]dto.CandidateResult, 0, len(contest.Candidates))
		for _, candidate := range contest.Candidates {
			votes := counts[contest.ID][candidate.ID]
			candidates = append(candidates, dto.CandidateResult{
				CandidateID: candidate.ID,
				Name:        candidate.Name,
				Party:       candidate.Party,
				Votes:       votes,
				Percentage:  percentage(votes, total),
				Winner:      total > 0 && votes == top,
			})
		}

		contests = append(contests, dto.ContestResult{
			ContestID:  contest.ID,
			Title:      contest.Title,
			Type:       contest.Type,
			TotalVotes: total,
			Candidates: candidates,
		})
	}

	return dto.ElectionResults{
		ElectionID:   election.ID,
		Title:        election.Title,
		Status:       election.Status,
		TotalBallots: totalBallots,
		Contests:     contests,
		ComputedAt:   time.Now().UTC(),
	}
}

// percentage rounds to one decimal place.
func percentage(votes, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(votes)/float64(total)*1000) / 10
}
