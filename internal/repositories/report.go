package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/career-assistant/internal/models"
)

type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	FindLatestByProcessID(ctx context.Context, processID string) (*models.Report, error)
	FindOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// Create implements ReportRepository.
func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	if r.db == nil {
		return ErrUnavailable
	}

	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	return nil
}

// FindLatestByProcessID implements ReportRepository.
func (r *reportRepository) FindLatestByProcessID(ctx context.Context, processID string) (*models.Report, error) {
	if r.db == nil {
		return nil, ErrUnavailable
	}

	var report models.Report
	err := r.db.WithContext(ctx).
		Where("process_id = ?", processID).
		Order("created_at DESC").
		First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to find report: %w", err)
	}

	return &report, nil
}

// FindOlderThan implements ReportRepository.
func (r *reportRepository) FindOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.Report, error) {
	if r.db == nil {
		return nil, ErrUnavailable
	}

	var reports []models.Report
	err := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find old reports: %w", err)
	}

	return reports, nil
}

// Delete implements ReportRepository.
func (r *reportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if r.db == nil {
		return ErrUnavailable
	}

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Report{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete report: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
