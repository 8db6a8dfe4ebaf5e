package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/voteguard/voteguard-api/internal/models"
)

// OTPRepository persists one-time codes and their verification state.
type OTPRepository interface {
	Create(ctx context.Context, code *models.OTPCode) error
	LatestActive(ctx context.Context, channel, destination string) (models.OTPCode, error)
	MarkVerified(ctx context.Context, id uint) error
	HasVerified(ctx context.Context, channel, destination string, since time.Time) (bool, error)
	Consume(ctx context.Context, destination string) error
}

type otpRepository struct {
	db *gorm.DB
}

// NewOTPRepository constructs the OTP repository.
func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) Create(ctx context.Context, code *models.OTPCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

// LatestActive returns the newest unconsumed code for a destination,
// expired or not; expiry is the verifier's concern so that wrong-code and
// expired-code attempts can share one generic failure.
func (r *otpRepository) LatestActive(ctx context.Context, channel, destination string) (models.OTPCode, error) {
	var code models.OTPCode
	query := r.db.WithContext(ctx).
		Where("channel = ?", channel).
		Where("destination = ?", destination).
		Where("consumed = ?", false).
		Order("created_at DESC")
	if err := query.First(&code).Error; err != nil {
		return models.OTPCode{}, err
	}

	return code, nil
}

func (r *otpRepository) MarkVerified(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.OTPCode{}).
		Where("id = ?", id).
		Update("verified_at", time.Now().UTC()).Error
}

func (r *otpRepository) HasVerified(ctx context.Context, channel, destination string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OTPCode{}).
		Where("channel = ?", channel).
		Where("destination = ?", destination).
		Where("verified_at IS NOT NULL").
		Where("verified_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Consume retires every outstanding code for a destination once
// registration completes so verified flags cannot be replayed.
func (r *otpRepository) Consume(ctx context.Context, destination string) error {
	return r.db.WithContext(ctx).Model(&models.OTPCode{}).
		Where("destination = ?", destination).
		Where("consumed = ?", false).
		Update("consumed", true).Error
}
