package dto

import (
	"time"

	"github.com/voteguard/voteguard-api/internal/models"
)

// ContestCreateRequest creates a contest inside an election.
type ContestCreateRequest struct {
	Title         string `json:"title" validate:"required,min=2,max=255"`
	Type          string `json:"type" validate:"required,oneof=choose_one yes_no"`
	MaxSelections int    `json:"max_selections" validate:"omitempty,min=1,max=50"`
	Position      int    `json:"position" validate:"omitempty,min=0"`
}

// ContestUpdateRequest captures partial update payloads for contests.
type ContestUpdateRequest struct {
	Title         *string `json:"title" validate:"omitempty,min=2,max=255"`
	Type          *string `json:"type" validate:"omitempty,oneof=choose_one yes_no"`
	MaxSelections *int    `json:"max_selections" validate:"omitempty,min=1,max=50"`
	Position      *int    `json:"position" validate:"omitempty,min=0"`
}

// ContestResponse serializes a contest with its candidates.
type ContestResponse struct {
	ID            uint                `json:"id"`
	ElectionID    uint                `json:"election_id"`
	Title         string              `json:"title"`
	Type          string              `json:"type"`
	MaxSelections int                 `json:"max_selections"`
	Position      int                 `json:"position"`
	Candidates    []CandidateResponse `json:"candidates"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// CandidateCreateRequest creates a candidate inside a contest.
type CandidateCreateRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Party       string `json:"party" validate:"omitempty,max=255"`
	Description string `json:"description"`
}

// CandidateUpdateRequest captures partial update payloads for candidates.
type CandidateUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=255"`
	Party       *string `json:"party" validate:"omitempty,max=255"`
	Description *string `json:"description"`
}

// CandidateResponse serializes a candidate.
type CandidateResponse struct {
	ID          uint      `json:"id"`
	ContestID   uint      `json:"contest_id"`
	Name        string    `json:"name"`
	Party       string    `json:"party"`
	Description string    `json:"description"`
	PhotoURL    string    `json:"photo_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCandidateResponse maps a candidate model to its response shape.
func NewCandidateResponse(candidate models.Candidate) CandidateResponse {
	return CandidateResponse{
		ID:          candidate.ID,
		ContestID:   candidate.ContestID,
		Name:        candidate.Name,
		Party:       candidate.Party,
		Description: candidate.Description,
		PhotoURL:    candidate.PhotoURL,
		CreatedAt:   candidate.CreatedAt,
		UpdatedAt:   candidate.UpdatedAt,
	}
}

// NewContestResponse maps a contest model, including candidates, to its response shape.
func NewContestResponse(contest models.Contest) ContestResponse {
	candidates := make([]CandidateResponse, 0, len(contest.Candidates))
	for _, candidate := range contest.Candidates {
		candidates = append(candidates, NewCandidateResponse(candidate))
	}

	return ContestResponse{
		ID:            contest.ID,
		ElectionID:    contest.ElectionID,
		Title:         contest.Title,
		Type:          contest.Type,
		MaxSelections: contest.MaxSelections,
		Position:      contest.Position,
		Candidates:    candidates,
		CreatedAt:     contest.CreatedAt,
		UpdatedAt:     contest.UpdatedAt,
	}
}
