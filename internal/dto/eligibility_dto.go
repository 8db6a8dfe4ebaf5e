package dto

import (
	"time"

	"github.com/voteguard/voteguard-api/internal/models"
)

// EligibilityAddRequest adds one or more users to an election roster.
type EligibilityAddRequest struct {
	UserIDs []uint `json:"user_ids" validate:"required,min=1,dive,min=1"`
}

// EligibilityListRequest defines filters for listing a roster.
type EligibilityListRequest struct {
	Page     int
	PageSize int
	Status   string
}

// EligibilityResponse serializes a roster row joined with user display fields.
type EligibilityResponse struct {
	ID         uint      `json:"id"`
	ElectionID uint      `json:"election_id"`
	UserID     uint      `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserEmail  string    `json:"user_email"`
	Status     string    `json:"status"`
	AddedAt    time.Time `json:"added_at"`
}

// EligibilityListResponse wraps a paginated roster response.
type EligibilityListResponse struct {
	Items      []EligibilityResponse `json:"items"`
	Pagination PaginationMeta        `json:"pagination"`
}

// EligibilityAddResponse reports how many rows an add actually created.
type EligibilityAddResponse struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// NewEligibilityResponse maps a roster row to its response shape.
func NewEligibilityResponse(row models.VoterEligibility) EligibilityResponse {
	return EligibilityResponse{
		ID:         row.ID,
		ElectionID: row.ElectionID,
		UserID:     row.UserID,
		UserName:   row.User.Name,
		UserEmail:  row.User.Email,
		Status:     row.Status,
		AddedAt:    row.AddedAt,
	}
}
