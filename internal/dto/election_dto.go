package dto

import (
	"time"

	"github.com/voteguard/voteguard-api/internal/models"
)

// ElectionCreateRequest creates a new election.
type ElectionCreateRequest struct {
	Title       string    `json:"title" validate:"required,min=3,max=255"`
	Description string    `json:"description"`
	Status      string    `json:"status" validate:"omitempty,oneof=draft upcoming active completed cancelled"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
}

// ElectionUpdateRequest captures partial update payloads for elections.
type ElectionUpdateRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string    `json:"description"`
	Status      *string    `json:"status" validate:"omitempty,oneof=draft upcoming active completed cancelled"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

// ElectionListRequest defines filters for listing elections.
type ElectionListRequest struct {
	Page     int
	PageSize int
	Search   string
	Status   string
}

// ElectionResponse serializes election data.
type ElectionResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ElectionListResponse wraps a paginated election response.
type ElectionListResponse struct {
	Items      []ElectionResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// ElectionDetailResponse is the voter-facing detail: the contest/candidate
// tree plus the caller's voting status for this election.
type ElectionDetailResponse struct {
	ElectionResponse
	Contests    []ContestResponse `json:"contests"`
	VoterStatus string            `json:"voter_status"`
}

// Voter status values reported on the election detail.
const (
	VoterStatusIneligible = "ineligible"
	VoterStatusEligible   = "eligible"
	VoterStatusVoted      = "voted"
)

// NewElectionResponse maps an election model to its response shape.
func NewElectionResponse(election models.Election) ElectionResponse {
	return ElectionResponse{
		ID:          election.ID,
		Title:       election.Title,
		Description: election.Description,
		Status:      election.Status,
		StartsAt:    election.StartsAt,
		EndsAt:      election.EndsAt,
		CreatedAt:   election.CreatedAt,
		UpdatedAt:   election.UpdatedAt,
	}
}
