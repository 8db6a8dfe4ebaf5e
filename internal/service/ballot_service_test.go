package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/voteguard/voteguard-api/internal/dto"
	"github.com/voteguard/voteguard-api/internal/models"
	"github.com/voteguard/voteguard-api/internal/repository"
)

type electionRepoStub struct {
	election models.Election
	err      error
}

func (s *electionRepoStub) Create(_ context.Context, election *models.Election) error {
	election.ID = s.election.ID
	return s.err
}

func (s *electionRepoStub) GetByID(_ context.Context, _ uint) (models.Election, error) {
	return s.election, s.err
}

func (s *electionRepoStub) GetDetail(_ context.Context, _ uint) (models.Election, error) {
	return s.election, s.err
}

func (s *electionRepoStub) List(_ context.Context, _ repository.ElectionFilter) ([]models.Election, int64, error) {
	return []models.Election{s.election}, 1, s.err
}

func (s *electionRepoStub) Update(_ context.Context, _ uint, _ map[string]interface{}) (models.Election, error) {
	return s.election, s.err
}

func (s *electionRepoStub) Delete(_ context.Context, _ uint) error {
	return s.err
}

type eligibilityRepoStub struct {
	row    models.VoterEligibility
	getErr error
	added  int64
}

func (s *eligibilityRepoStub) Add(_ context.Context, _ uint, userIDs []uint) (int64, error) {
	if s.added > 0 {
		return s.added, nil
	}
	return int64(len(userIDs)), nil
}

func (s *eligibilityRepoStub) Get(_ context.Context, _, _ uint) (models.VoterEligibility, error) {
	if s.getErr != nil {
		return models.VoterEligibility{}, s.getErr
	}
	return s.row, nil
}

func (s *eligibilityRepoStub) List(_ context.Context, _ uint, _ repository.EligibilityFilter) ([]models.VoterEligibility, int64, error) {
	return []models.VoterEligibility{s.row}, 1, nil
}

func (s *eligibilityRepoStub) Remove(_ context.Context, _, _ uint) error {
	return nil
}

type ballotRepoStub struct {
	castErr    error
	lastBallot models.Ballot
	lastVotes  []models.Vote
	casts      int
	count      int64
	tally      []repository.TallyRow
}

func (s *ballotRepoStub) Cast(_ context.Context, ballot *models.Ballot, votes []models.Vote) error {
	if s.castErr != nil {
		return s.castErr
	}
	s.casts++
	ballot.ID = uint(s.casts)
	ballot.SubmittedAt = time.Now().UTC()
	s.lastBallot = *ballot
	s.lastVotes = votes
	return nil
}

func (s *ballotRepoStub) GetByUserElection(_ context.Context, _, _ uint) (models.Ballot, error) {
	return s.lastBallot, nil
}

func (s *ballotRepoStub) CountByElection(_ context.Context, _ uint) (int64, error) {
	return s.count, nil
}

func (s *ballotRepoStub) Tally(_ context.Context, _ uint) ([]repository.TallyRow, error) {
	return s.tally, nil
}

func activeElectionFixture() models.Election {
	now := time.Now().UTC()
	return models.Election{
		ID:       1,
		Title:    "Board Election",
		Status:   models.ElectionStatusActive,
		StartsAt: now.Add(-time.Hour),
		EndsAt:   now.Add(time.Hour),
		Contests: []models.Contest{
			{
				ID:            10,
				ElectionID:    1,
				Title:         "Chair",
				Type:          models.ContestTypeChooseOne,
				MaxSelections: 1,
				Candidates:    []models.Candidate{{ID: 100, Name: "Ada"}, {ID: 101, Name: "Grace"}},
			},
			{
				ID:            11,
				ElectionID:    1,
				Title:         "Board Members",
				Type:          models.ContestTypeChooseOne,
				MaxSelections: 2,
				Candidates:    []models.Candidate{{ID: 110, Name: "Lin"}, {ID: 111, Name: "Omar"}, {ID: 112, Name: "Priya"}},
			},
		},
	}
}

func newBallotServiceForTest(elections *electionRepoStub, eligibility *eligibilityRepoStub, ballots *ballotRepoStub, audit *auditRecorderStub) BallotService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewBallotService(ballots, elections, eligibility, validate, audit, testLogger())
}

func TestBallotServiceCastSuccess(t *testing.T) {
	elections := &electionRepoStub{election: activeElectionFixture()}
	eligibility := &eligibilityRepoStub{row: models.VoterEligibility{Status: models.EligibilityStatusEligible}}
	ballots := &ballotRepoStub{}
	audit := &auditRecorderStub{}
	svc := newBallotServiceForTest(elections, eligibility, ballots, audit)

	resp, err := svc.Cast(context.Background(), 1, 42, dto.CastBallotRequest{
		Selections: []dto.BallotSelection{
			{ContestID: 10, CandidateIDs: []uint{100}},
			{ContestID: 11, CandidateIDs: []uint{110, 112}},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ReceiptID)
	require.Equal(t, uint(1), resp.ElectionID)
	require.Len(t, ballots.lastVotes, 3)
	require.Equal(t, uint(42), ballots.lastBallot.UserID)
	require.Equal(t, "ballot.cast", audit.lastAction())
}

func TestBallotServiceCastAbstentionIsLegal(t *testing.T) {
	elections := &electionRepoStub{election: activeElectionFixture()}
	eligibility := &eligibilityRepoStub{row: models.VoterEligibility{Status: models.EligibilityStatusEligible}}
	ballots := &ballotRepoStub{}
	svc := newBallotServiceForTest(elections, eligibility, ballots, &auditRecorderStub{})

	// Only one contest answered; the other is an abstention.
	resp, err := svc.Cast(context.Background(), 1, 42, dto.CastBallotRequest{
		Selections: []dto.BallotSelection{{ContestID: 10, CandidateIDs: []uint{101}}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ReceiptID)
	require.Len(t, ballots.lastVotes, 1)
}

func TestBallotServiceCastVotingClosed(t *testing.T) {
	election := activeElectionFixture()
	election.Status = models.ElectionStatusUpcoming
	elections := &electionRepoStub{election: election}
	eligibility := &eligibilityRepoStub{row: models.VoterEligibility{Status: models.EligibilityStatusEligible}}
	svc := newBallotServiceForTest(elections, eligibility, &ballotRepoStub{}, &auditRecorderStub{})

	_, err := svc.Cast(context.Background(), 1, 42, dto.CastBallotRequest{
		Selections: []dto.BallotSelection{{ContestID: 10, CandidateIDs: []uint{100}}},
	})
	require.ErrorIs(t, err, ErrVotingClosed)
}

func TestBallotServiceCastNotEligible(t *testing.T) {
	elections := &electionRepoStub{election: activeElectionFixture()}
	eligibility := &eligibilityRepoStub{getErr: gorm.ErrRecordNotFound}
	svc := newBallotServiceForTest(elections, eligibility, &ballotRepoStub{}, &auditRecorderStub{})

	_, err := svc.Cast(context.Background(), 1, 42, dto.CastBallotRequest{
		Selections: []dto.BallotSelection{{ContestID: 10, CandidateIDs: []uint{100}}},
	})
	require.ErrorIs(t, err, ErrNotEligible)
}

func TestBallotServiceCastAlreadyVoted(t *testing.T) {
	elections := &electionRepoStub{election: activeElectionFixture()}
	eligibility := &eligibilityRepoStub{row: models.VoterEligibility{Status: models.EligibilityStatusVoted}}
	svc := newBallotServiceForTest(elections, eligibility, &ballotRepoStub{}, &auditRecorderStub{})

	_, err := svc.Cast(context.Background(), 1, 42, dto.CastBallotRequest{
		Selections: []dto.BallotSelection{{ContestID: 10, CandidateIDs: []uint{100}}},
	})
	require.ErrorIs(t, err, ErrAlreadyVoted)
}

func TestBallotServiceCastRejectsOverMaxSelections(t *testing.T) {
	elections := &electionRepoStub{election: activeElectionFixture()}
	eligibility := &eligibilityRepoStub{row: models.VoterEligibility{Status: models.EligibilityStatusEligible}}
	ballots := &ballotRepoStub{}
	svc := newBallotServiceForTest(elections, eligibility, ballots, &auditRecorderStub{})

	_, err := svc.Cast(context.Background(), 1, 42, dto.CastBallotRequest{
		Selections: []dto.BallotSelection{{ContestID: 11, CandidateIDs: []uint{110, 111, 112}}},
	})
	require.ErrorIs(t, err, ErrInvalidSelection)
	require.Zero(t, ballots.casts, "over-limit ballots must be rejected, not trimmed")
}

func TestBallotServiceCastRejectsForeignCandidate(t *testing.T) {
	elections := &electionRepoStub{election: activeElectionFixture()}
	eligibility := &eligibilityRepoStub{row: models.VoterEligibility{Status: models.EligibilityStatusEligible}}
	svc := newBallotServiceForTest(elections, eligibility, &ballotRepoStub{}, &auditRecorderStub{})

	// Candidate 110 belongs to contest 11, not 10.
	_, err := svc.Cast(context.Background(), 1, 42, dto.CastBallotRequest{
		Selections: []dto.BallotSelection{{ContestID: 10, CandidateIDs: []uint{110}}},
	})
	require.ErrorIs(t, err, ErrInvalidSelection)

	_, err = svc.Cast(context.Background(), 1, 42, dto.CastBallotRequest{
		Selections: []dto.BallotSelection{{ContestID: 99, CandidateIDs: []uint{100}}},
	})
	require.ErrorIs(t, err, ErrInvalidSelection)
}

func TestBallotServiceCastLosesRace(t *testing.T) {
	elections := &electionRepoStub{election: activeElectionFixture()}
	eligibility := &eligibilityRepoStub{row: models.VoterEligibility{Status: models.EligibilityStatusEligible}}
	ballots := &ballotRepoStub{castErr: repository.ErrEligibilityGone}
	svc := newBallotServiceForTest(elections, eligibility, ballots, &auditRecorderStub{})

	_, err := svc.Cast(context.Background(), 1, 42, dto.CastBallotRequest{
		Selections: []dto.BallotSelection{{ContestID: 10, CandidateIDs: []uint{100}}},
	})
	require.ErrorIs(t, err, ErrAlreadyVoted)
}
