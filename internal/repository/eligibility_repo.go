package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/voteguard/voteguard-api/internal/models"
)

// EligibilityFilter defines filters for listing a roster.
type EligibilityFilter struct {
	Status   string
	Page     int
	PageSize int
}

// EligibilityRepository persists the per-election voter allow-list.
type EligibilityRepository interface {
	Add(ctx context.Context, electionID uint, userIDs []uint) (int64, error)
	Get(ctx context.Context, electionID, userID uint) (models.VoterEligibility, error)
	List(ctx context.Context, electionID uint, filter EligibilityFilter) ([]models.VoterEligibility, int64, error)
	Remove(ctx context.Context, electionID, userID uint) error
}

type eligibilityRepository struct {
	db *gorm.DB
}

// NewEligibilityRepository constructs the eligibility repository.
func NewEligibilityRepository(db *gorm.DB) EligibilityRepository {
	return &eligibilityRepository{db: db}
}

// Add inserts roster rows, skipping users already present. Returns the
// number of rows actually created so adds stay idempotent.
func (r *eligibilityRepository) Add(ctx context.Context, electionID uint, userIDs []uint) (int64, error) {
	rows := make([]models.VoterEligibility, 0, len(userIDs))
	for _, userID := range userIDs {
		rows = append(rows, models.VoterEligibility{
			ElectionID: electionID,
			UserID:     userID,
			Status:     models.EligibilityStatusEligible,
		})
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "election_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (r *eligibilityRepository) Get(ctx context.Context, electionID, userID uint) (models.VoterEligibility, error) {
	var row models.VoterEligibility
	query := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Where("user_id = ?", userID)
	if err := query.First(&row).Error; err != nil {
		return models.VoterEligibility{}, err
	}

	return row, nil
}

func (r *eligibilityRepository) List(ctx context.Context, electionID uint, filter EligibilityFilter) ([]models.VoterEligibility, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.VoterEligibility{}).
		Where("election_id = ?", electionID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("added_at ASC").Preload("User")

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Limit(filter.PageSize).Offset(offset)
	}

	var rows []models.VoterEligibility
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (r *eligibilityRepository) Remove(ctx context.Context, electionID, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Where("user_id = ?", userID).
		Delete(&models.VoterEligibility{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
