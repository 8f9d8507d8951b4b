package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/career-assistant/internal/models"
)

type ComparisonCacheRepository interface {
	FindBySessionID(ctx context.Context, sessionID string) (*models.ComparisonCache, error)
	Upsert(ctx context.Context, entry *models.ComparisonCache) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type comparisonCacheRepository struct {
	db *gorm.DB
}

func NewComparisonCacheRepository(db *gorm.DB) ComparisonCacheRepository {
	return &comparisonCacheRepository{db: db}
}

// FindBySessionID implements ComparisonCacheRepository.
func (r *comparisonCacheRepository) FindBySessionID(ctx context.Context, sessionID string) (*models.ComparisonCache, error) {
	if r.db == nil {
		return nil, ErrUnavailable
	}

	var entry models.ComparisonCache
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find cached comparison: %w", err)
	}

	return &entry, nil
}

// Upsert implements ComparisonCacheRepository. The last writer for a session wins.
func (r *comparisonCacheRepository) Upsert(ctx context.Context, entry *models.ComparisonCache) error {
	if r.db == nil {
		return ErrUnavailable
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"cv_text_hash",
			"job_offer_text_hash",
			"additional_considerations_hash",
			"comparison_results",
			"cv_analysis",
			"job_offer_analysis",
			"updated_at",
		}),
	}).Create(entry).Error
	if err != nil {
		return fmt.Errorf("failed to upsert cached comparison: %w", err)
	}

	return nil
}

// DeleteOlderThan implements ComparisonCacheRepository.
func (r *comparisonCacheRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.db == nil {
		return 0, ErrUnavailable
	}

	result := r.db.WithContext(ctx).
		Where("updated_at < ?", cutoff).
		Delete(&models.ComparisonCache{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old cached comparisons: %w", result.Error)
	}

	return result.RowsAffected, nil
}
