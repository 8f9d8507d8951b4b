package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"alfredoptarigan/career-assistant/internal/models"
)

type UserRequestRepository interface {
	Create(ctx context.Context, req *models.UserRequest) error
	CountSince(ctx context.Context, since time.Time) (int64, error)
	CountByIPSince(ctx context.Context, ip string, since time.Time) (int64, error)
}

type userRequestRepository struct {
	db *gorm.DB
}

func NewUserRequestRepository(db *gorm.DB) UserRequestRepository {
	return &userRequestRepository{db: db}
}

func (r *userRequestRepository) Create(ctx context.Context, req *models.UserRequest) error {
	if r.db == nil {
		return ErrUnavailable
	}

	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("failed to create user request: %w", err)
	}
	return nil
}

func (r *userRequestRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	if r.db == nil {
		return 0, ErrUnavailable
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserRequest{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count user requests: %w", err)
	}
	return count, nil
}

func (r *userRequestRepository) CountByIPSince(ctx context.Context, ip string, since time.Time) (int64, error) {
	if r.db == nil {
		return 0, ErrUnavailable
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserRequest{}).
		Where("ip_address = ? AND created_at >= ?", ip, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count user requests for ip: %w", err)
	}
	return count, nil
}
