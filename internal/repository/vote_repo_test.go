package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/voteguard/voteguard-api/internal/models"
)

func setupVoteTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.UserRole{},
		&models.UserSession{},
		&models.Election{},
		&models.Contest{},
		&models.Candidate{},
		&models.VoterEligibility{},
		&models.Ballot{},
		&models.Vote{},
	))
	return db
}

func seedElection(t *testing.T, db *gorm.DB) (models.Election, models.Contest, []models.Candidate) {
	t.Helper()

	election := models.Election{
		Title:    "Student Council 2026",
		Status:   models.ElectionStatusActive,
		StartsAt: time.Now().Add(-time.Hour),
		EndsAt:   time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(&election).Error)

	contest := models.Contest{
		ElectionID:    election.ID,
		Title:         "President",
		Type:          models.ContestTypeChooseOne,
		MaxSelections: 1,
	}
	require.NoError(t, db.Create(&contest).Error)

	candidates := []models.Candidate{
		{ContestID: contest.ID, Name: "Ada"},
		{ContestID: contest.ID, Name: "Grace"},
	}
	require.NoError(t, db.Create(&candidates).Error)

	return election, contest, candidates
}

func TestEligibilityRepositoryAddIsIdempotent(t *testing.T) {
	db := setupVoteTestDB(t)
	repo := NewEligibilityRepository(db)
	election, _, _ := seedElection(t, db)

	added, err := repo.Add(context.Background(), election.ID, []uint{10, 11, 12})
	require.NoError(t, err)
	require.Equal(t, int64(3), added)

	added, err = repo.Add(context.Background(), election.ID, []uint{11, 12, 13})
	require.NoError(t, err)
	require.Equal(t, int64(1), added, "existing roster rows must be skipped")

	var total int64
	require.NoError(t, db.Model(&models.VoterEligibility{}).Count(&total).Error)
	require.Equal(t, int64(4), total)
}

func TestEligibilityRepositoryRemoveMissingRow(t *testing.T) {
	db := setupVoteTestDB(t)
	repo := NewEligibilityRepository(db)
	election, _, _ := seedElection(t, db)

	err := repo.Remove(context.Background(), election.ID, 999)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBallotRepositoryCastFlipsEligibilityExactlyOnce(t *testing.T) {
	db := setupVoteTestDB(t)
	ballots := NewBallotRepository(db)
	eligibility := NewEligibilityRepository(db)
	election, contest, candidates := seedElection(t, db)

	_, err := eligibility.Add(context.Background(), election.ID, []uint{42})
	require.NoError(t, err)

	ballot := models.Ballot{UserID: 42, ElectionID: election.ID, ReceiptID: "receipt-1"}
	votes := []models.Vote{{ElectionID: election.ID, ContestID: contest.ID, CandidateID: candidates[0].ID}}
	require.NoError(t, ballots.Cast(context.Background(), &ballot, votes))

	row, err := eligibility.Get(context.Background(), election.ID, 42)
	require.NoError(t, err)
	require.Equal(t, models.EligibilityStatusVoted, row.Status)

	var voteCount int64
	require.NoError(t, db.Model(&models.Vote{}).Where("ballot_id = ?", ballot.ID).Count(&voteCount).Error)
	require.Equal(t, int64(1), voteCount)

	second := models.Ballot{UserID: 42, ElectionID: election.ID, ReceiptID: "receipt-2"}
	err = ballots.Cast(context.Background(), &second, nil)
	require.True(t, errors.Is(err, ErrEligibilityGone), "second cast must fail on the status guard")
}

func TestBallotRepositoryCastWithoutRosterRow(t *testing.T) {
	db := setupVoteTestDB(t)
	ballots := NewBallotRepository(db)
	election, _, _ := seedElection(t, db)

	ballot := models.Ballot{UserID: 7, ElectionID: election.ID, ReceiptID: "receipt-x"}
	err := ballots.Cast(context.Background(), &ballot, nil)
	require.ErrorIs(t, err, ErrEligibilityGone)
}

func TestBallotRepositoryTallyGroupsByContestAndCandidate(t *testing.T) {
	db := setupVoteTestDB(t)
	ballots := NewBallotRepository(db)
	eligibility := NewEligibilityRepository(db)
	election, contest, candidates := seedElection(t, db)

	voters := []uint{1, 2, 3}
	_, err := eligibility.Add(context.Background(), election.ID, voters)
	require.NoError(t, err)

	// Two votes for Ada, one for Grace.
	picks := []uint{candidates[0].ID, candidates[0].ID, candidates[1].ID}
	for i, voter := range voters {
		ballot := models.Ballot{UserID: voter, ElectionID: election.ID, ReceiptID: fmt.Sprintf("r-%d", voter)}
		votes := []models.Vote{{ElectionID: election.ID, ContestID: contest.ID, CandidateID: picks[i]}}
		require.NoError(t, ballots.Cast(context.Background(), &ballot, votes))
	}

	count, err := ballots.CountByElection(context.Background(), election.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)

	rows, err := ballots.Tally(context.Background(), election.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byCandidate := make(map[uint]int64, len(rows))
	for _, row := range rows {
		require.Equal(t, contest.ID, row.ContestID)
		byCandidate[row.CandidateID] = row.Count
	}
	require.Equal(t, int64(2), byCandidate[candidates[0].ID])
	require.Equal(t, int64(1), byCandidate[candidates[1].ID])
}
