package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/voteguard/voteguard-api/internal/models"
)

// ErrEligibilityGone signals that the caster's roster row was not in the
// eligible state when the ballot transaction ran.
var ErrEligibilityGone = errors.New("eligibility row not in eligible state")

// TallyRow is one (contest, candidate) aggregate from the votes table.
type TallyRow struct {
	ContestID   uint
	CandidateID uint
	Count       int64
}

// BallotRepository persists completed ballots and serves tally aggregates.
type BallotRepository interface {
	Cast(ctx context.Context, ballot *models.Ballot, votes []models.Vote) error
	GetByUserElection(ctx context.Context, userID, electionID uint) (models.Ballot, error)
	CountByElection(ctx context.Context, electionID uint) (int64, error)
	Tally(ctx context.Context, electionID uint) ([]TallyRow, error)
}

type ballotRepository struct {
	db *gorm.DB
}

// NewBallotRepository constructs the ballot repository.
func NewBallotRepository(db *gorm.DB) BallotRepository {
	return &ballotRepository{db: db}
}

// Cast writes the ballot in one transaction: the roster row must transition
// eligible -> voted (guarded by RowsAffected), then the ballot and its vote
// rows are inserted. The unique index on (user_id, election_id) backstops
// concurrent submissions that race past the status flip.
func (r *ballotRepository) Cast(ctx context.Context, ballot *models.Ballot, votes []models.Vote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		flip := tx.Model(&models.VoterEligibility{}).
			Where("election_id = ?", ballot.ElectionID).
			Where("user_id = ?", ballot.UserID).
			Where("status = ?", models.EligibilityStatusEligible).
			Update("status", models.EligibilityStatusVoted)
		if flip.Error != nil {
			return flip.Error
		}
		if flip.RowsAffected == 0 {
			return ErrEligibilityGone
		}

		if err := tx.Create(ballot).Error; err != nil {
			return err
		}

		for i := range votes {
			votes[i].BallotID = ballot.ID
		}

		if len(votes) > 0 {
			if err := tx.Create(&votes).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *ballotRepository) GetByUserElection(ctx context.Context, userID, electionID uint) (models.Ballot, error) {
	var ballot models.Ballot
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("election_id = ?", electionID)
	if err := query.First(&ballot).Error; err != nil {
		return models.Ballot{}, err
	}

	return ballot, nil
}

func (r *ballotRepository) CountByElection(ctx context.Context, electionID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Ballot{}).
		Where("election_id = ?", electionID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Tally aggregates vote rows per (contest, candidate). Results are computed
// at read time; candidates with zero votes are absent from the rows.
func (r *ballotRepository) Tally(ctx context.Context, electionID uint) ([]TallyRow, error) {
	var rows []TallyRow
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Select("contest_id, candidate_id, COUNT(*) as count").
		Where("election_id = ?", electionID).
		Group("contest_id").
		Group("candidate_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}
