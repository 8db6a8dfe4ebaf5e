package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog is an append-only record of admin and security-relevant actions.
// The API never updates or deletes rows.
type AuditLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uint              `gorm:"index" json:"actor_id"`
	ActorRole  string            `gorm:"size:32" json:"actor_role"`
	Action     string            `gorm:"size:64;index;not null" json:"action"`
	EntityType string            `gorm:"size:64;index;not null" json:"entity_type"`
	EntityID   *uint             `json:"entity_id,omitempty"`
	Detail     datatypes.JSONMap `gorm:"type:json" json:"detail"`
	CreatedAt  time.Time         `json:"created_at"`
}
