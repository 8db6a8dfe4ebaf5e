package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/voteguard/voteguard-api/internal/models"
)

// SessionRepository persists issued session tokens.
type SessionRepository interface {
	Create(ctx context.Context, session *models.UserSession) error
	Revoke(ctx context.Context, tokenID string) error
	IsActive(ctx context.Context, tokenID string) (bool, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository constructs the session repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.UserSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) Revoke(ctx context.Context, tokenID string) error {
	result := r.db.WithContext(ctx).Model(&models.UserSession{}).
		Where("token_id = ?", tokenID).
		Update("revoked", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *sessionRepository) IsActive(ctx context.Context, tokenID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserSession{}).
		Where("token_id = ?", tokenID).
		Where("revoked = ?", false).
		Where("expires_at > ?", time.Now().UTC()).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
