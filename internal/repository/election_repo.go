package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/voteguard/voteguard-api/internal/models"
)

// ElectionFilter defines filters for listing elections.
type ElectionFilter struct {
	Search   string
	Status   string
	Statuses []string
	Page     int
	PageSize int
}

// ElectionRepository exposes persistence helpers for elections.
type ElectionRepository interface {
	Create(ctx context.Context, election *models.Election) error
	GetByID(ctx context.Context, id uint) (models.Election, error)
	GetDetail(ctx context.Context, id uint) (models.Election, error)
	List(ctx context.Context, filter ElectionFilter) ([]models.Election, int64, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Election, error)
	Delete(ctx context.Context, id uint) error
}

type electionRepository struct {
	db *gorm.DB
}

// NewElectionRepository constructs the election repository.
func NewElectionRepository(db *gorm.DB) ElectionRepository {
	return &electionRepository{db: db}
}

func (r *electionRepository) Create(ctx context.Context, election *models.Election) error {
	return r.db.WithContext(ctx).Create(election).Error
}

func (r *electionRepository) GetByID(ctx context.Context, id uint) (models.Election, error) {
	var election models.Election
	if err := r.db.WithContext(ctx).First(&election, id).Error; err != nil {
		return models.Election{}, err
	}

	return election, nil
}

// GetDetail loads the election with its full contest/candidate tree ordered
// by contest position.
func (r *electionRepository) GetDetail(ctx context.Context, id uint) (models.Election, error) {
	var election models.Election
	query := r.db.WithContext(ctx).
		Preload("Contests", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Preload("Contests.Candidates", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})
	if err := query.First(&election, id).Error; err != nil {
		return models.Election{}, err
	}

	return election, nil
}

func (r *electionRepository) List(ctx context.Context, filter ElectionFilter) ([]models.Election, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Election{})

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ?", like)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("starts_at DESC")

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Limit(filter.PageSize).Offset(offset)
	}

	var elections []models.Election
	if err := query.Find(&elections).Error; err != nil {
		return nil, 0, err
	}

	return elections, total, nil
}

func (r *electionRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Election, error) {
	result := r.db.WithContext(ctx).Model(&models.Election{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return models.Election{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Election{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete removes the election together with its contests, candidates and
// roster rows in one transaction. Callers must refuse deletion when ballots
// exist before reaching this point.
func (r *electionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contestIDs := tx.Model(&models.Contest{}).Select("id").Where("election_id = ?", id)

		if err := tx.Where("contest_id IN (?)", contestIDs).Delete(&models.Candidate{}).Error; err != nil {
			return err
		}

		if err := tx.Where("election_id = ?", id).Delete(&models.Contest{}).Error; err != nil {
			return err
		}

		if err := tx.Where("election_id = ?", id).Delete(&models.VoterEligibility{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Election{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}
