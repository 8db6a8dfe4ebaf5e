package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/voteguard/voteguard-api/internal/models"
)

// ContestRepository exposes persistence helpers for contests.
type ContestRepository interface {
	Create(ctx context.Context, contest *models.Contest) error
	GetByID(ctx context.Context, id uint) (models.Contest, error)
	ListByElection(ctx context.Context, electionID uint) ([]models.Contest, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Contest, error)
	Delete(ctx context.Context, id uint) error
}

type contestRepository struct {
	db *gorm.DB
}

// NewContestRepository constructs the contest repository.
func NewContestRepository(db *gorm.DB) ContestRepository {
	return &contestRepository{db: db}
}

func (r *contestRepository) Create(ctx context.Context, contest *models.Contest) error {
	return r.db.WithContext(ctx).Create(contest).Error
}

func (r *contestRepository) GetByID(ctx context.Context, id uint) (models.Contest, error) {
	var contest models.Contest
	query := r.db.WithContext(ctx).Preload("Candidates", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
	if err := query.First(&contest, id).Error; err != nil {
		return models.Contest{}, err
	}

	return contest, nil
}

func (r *contestRepository) ListByElection(ctx context.Context, electionID uint) ([]models.Contest, error) {
	var contests []models.Contest
	query := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("position ASC, id ASC").
		Preload("Candidates", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})
	if err := query.Find(&contests).Error; err != nil {
		return nil, err
	}

	return contests, nil
}

func (r *contestRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Contest, error) {
	result := r.db.WithContext(ctx).Model(&models.Contest{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return models.Contest{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Contest{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *contestRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contest_id = ?", id).Delete(&models.Candidate{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Contest{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}
