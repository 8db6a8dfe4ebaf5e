package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/voteguard/voteguard-api/internal/dto"
	"github.com/voteguard/voteguard-api/internal/handler"
	"github.com/voteguard/voteguard-api/internal/service"
)

type mockElectionService struct {
	list       dto.ElectionListResponse
	detail     dto.ElectionDetailResponse
	detailErr  error
	lastVoter  uint
	lastListed dto.ElectionListRequest
}

func (m *mockElectionService) Create(_ context.Context, _ dto.ElectionCreateRequest, _ service.AuditActor) (dto.ElectionResponse, error) {
	return dto.ElectionResponse{}, nil
}

func (m *mockElectionService) Get(_ context.Context, _ uint) (dto.ElectionResponse, error) {
	return dto.ElectionResponse{}, nil
}

func (m *mockElectionService) List(_ context.Context, req dto.ElectionListRequest) (dto.ElectionListResponse, error) {
	m.lastListed = req
	return m.list, nil
}

func (m *mockElectionService) ListVisible(_ context.Context, req dto.ElectionListRequest) (dto.ElectionListResponse, error) {
	m.lastListed = req
	return m.list, nil
}

func (m *mockElectionService) Detail(_ context.Context, _ uint, voterID uint) (dto.ElectionDetailResponse, error) {
	m.lastVoter = voterID
	if m.detailErr != nil {
		return dto.ElectionDetailResponse{}, m.detailErr
	}
	return m.detail, nil
}

func (m *mockElectionService) Update(_ context.Context, _ uint, _ dto.ElectionUpdateRequest, _ service.AuditActor) (dto.ElectionResponse, error) {
	return dto.ElectionResponse{}, nil
}

func (m *mockElectionService) Delete(_ context.Context, _ uint, _ service.AuditActor) error {
	return nil
}

type mockBallotService struct {
	receipt dto.CastBallotResponse
	err     error
}

func (m *mockBallotService) Cast(_ context.Context, _ uint, _ uint, _ dto.CastBallotRequest) (dto.CastBallotResponse, error) {
	if m.err != nil {
		return dto.CastBallotResponse{}, m.err
	}
	return m.receipt, nil
}

type mockResultsService struct {
	results     dto.ElectionResults
	err         error
	lastInterim bool
}

func (m *mockResultsService) Results(_ context.Context, _ uint, includeInterim bool) (dto.ElectionResults, error) {
	m.lastInterim = includeInterim
	if m.err != nil {
		return dto.ElectionResults{}, m.err
	}
	return m.results, nil
}

func newElectionApp(elections *mockElectionService, ballots *mockBallotService, results *mockResultsService, userID uint, roles []string) *fiber.App {
	logger := zerolog.New(io.Discard)
	app := fiber.New()
	group := app.Group("/api/v1/elections", func(c *fiber.Ctx) error {
		if userID != 0 {
			c.Locals("user_id", userID)
			c.Locals("user_roles", roles)
		}
		return c.Next()
	})
	handler.NewElectionHandler(elections, ballots, results, logger).Register(group)
	return app
}

func TestElectionHandler_DetailReportsVoterStatus(t *testing.T) {
	elections := &mockElectionService{detail: dto.ElectionDetailResponse{
		ElectionResponse: dto.ElectionResponse{ID: 1, Title: "Board Election", Status: "active"},
		VoterStatus:      dto.VoterStatusEligible,
	}}
	app := newElectionApp(elections, &mockBallotService{}, &mockResultsService{}, 42, []string{"voter"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/elections/1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                       `json:"success"`
		Data    dto.ElectionDetailResponse `json:"data"`
		Message string                     `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, dto.VoterStatusEligible, body.Data.VoterStatus)
	require.Equal(t, uint(42), elections.lastVoter)
}

func TestElectionHandler_DetailInvalidID(t *testing.T) {
	app := newElectionApp(&mockElectionService{}, &mockBallotService{}, &mockResultsService{}, 42, []string{"voter"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/elections/abc", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestElectionHandler_CastBallotCreated(t *testing.T) {
	ballots := &mockBallotService{receipt: dto.CastBallotResponse{
		ReceiptID:   "a1b2c3",
		ElectionID:  1,
		SubmittedAt: time.Now().UTC(),
	}}
	app := newElectionApp(&mockElectionService{}, ballots, &mockResultsService{}, 42, []string{"voter"})

	payload, err := json.Marshal(dto.CastBallotRequest{
		Selections: []dto.BallotSelection{{ContestID: 10, CandidateIDs: []uint{100}}},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/elections/1/vote", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Success bool                   `json:"success"`
		Data    dto.CastBallotResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "a1b2c3", body.Data.ReceiptID)
}

func TestElectionHandler_CastBallotConflictWhenAlreadyVoted(t *testing.T) {
	ballots := &mockBallotService{err: service.ErrAlreadyVoted}
	app := newElectionApp(&mockElectionService{}, ballots, &mockResultsService{}, 42, []string{"voter"})

	payload := []byte(`{"selections":[{"contest_id":10,"candidate_ids":[100]}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/elections/1/vote", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
}

func TestElectionHandler_ResultsHiddenFromVoters(t *testing.T) {
	results := &mockResultsService{err: service.ErrResultsNotVisible}
	app := newElectionApp(&mockElectionService{}, &mockBallotService{}, results, 42, []string{"voter"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/elections/1/results", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.False(t, results.lastInterim)
}

func TestElectionHandler_ResultsAdminSeesInterim(t *testing.T) {
	results := &mockResultsService{results: dto.ElectionResults{
		ElectionID: 1,
		Status:     "active",
		CacheHit:   true,
	}}
	app := newElectionApp(&mockElectionService{}, &mockBallotService{}, results, 7, []string{"admin"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/elections/1/results", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "true", resp.Header.Get("X-Cache-Hit"))
	require.True(t, results.lastInterim)
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}
