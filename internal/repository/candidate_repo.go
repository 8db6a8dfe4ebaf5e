package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/voteguard/voteguard-api/internal/models"
)

// CandidateRepository exposes persistence helpers for candidates.
type CandidateRepository interface {
	Create(ctx context.Context, candidate *models.Candidate) error
	GetByID(ctx context.Context, id uint) (models.Candidate, error)
	ListByContest(ctx context.Context, contestID uint) ([]models.Candidate, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Candidate, error)
	Delete(ctx context.Context, id uint) error
}

type candidateRepository struct {
	db *gorm.DB
}

// NewCandidateRepository constructs the candidate repository.
func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	return r.db.WithContext(ctx).Create(candidate).Error
}

func (r *candidateRepository) GetByID(ctx context.Context, id uint) (models.Candidate, error) {
	var candidate models.Candidate
	if err := r.db.WithContext(ctx).First(&candidate, id).Error; err != nil {
		return models.Candidate{}, err
	}

	return candidate, nil
}

func (r *candidateRepository) ListByContest(ctx context.Context, contestID uint) ([]models.Candidate, error) {
	var candidates []models.Candidate
	query := r.db.WithContext(ctx).Where("contest_id = ?", contestID).Order("id ASC")
	if err := query.Find(&candidates).Error; err != nil {
		return nil, err
	}

	return candidates, nil
}

func (r *candidateRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Candidate, error) {
	result := r.db.WithContext(ctx).Model(&models.Candidate{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return models.Candidate{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Candidate{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *candidateRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Candidate{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
