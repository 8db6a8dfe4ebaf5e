package dto

import (
	"time"

	"github.com/voteguard/voteguard-api/internal/models"
)

// AuditListRequest narrows audit log queries.
type AuditListRequest struct {
	Page       int
	PageSize   int
	ActorID    uint
	Action     string
	EntityType string
}

// AuditEntryResponse serializes one audit log row.
type AuditEntryResponse struct {
	ID         uint                   `json:"id"`
	ActorID    uint                   `json:"actor_id"`
	ActorRole  string                 `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uint                  `json:"entity_id,omitempty"`
	Detail     map[string]interface{} `json:"detail"`
	CreatedAt  time.Time              `json:"created_at"`
}

// AuditListResponse wraps a paginated audit response.
type AuditListResponse struct {
	Items      []AuditEntryResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
}

// NewAuditEntryResponse maps an audit log model to its response shape.
func NewAuditEntryResponse(entry models.AuditLog) AuditEntryResponse {
	detail := map[string]interface{}{}
	for key, value := range entry.Detail {
		detail[key] = value
	}

	return AuditEntryResponse{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Detail:     detail,
		CreatedAt:  entry.CreatedAt,
	}
}
