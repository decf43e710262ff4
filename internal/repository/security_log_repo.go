package repository

import (
	"context"
	"time"

	"rotkit/internal/entity"

	"gorm.io/gorm"
)

type SecurityLogRepository interface {
	Log(ctx context.Context, log *entity.SecurityLog) error
	ListRecent(ctx context.Context, limit int) ([]entity.SecurityLog, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type securityLogRepository struct {
	db *gorm.DB
}

func NewSecurityLogRepository(db *gorm.DB) SecurityLogRepository {
	return &securityLogRepository{db: db}
}

func (r *securityLogRepository) Log(ctx context.Context, log *entity.SecurityLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *securityLogRepository) ListRecent(ctx context.Context, limit int) ([]entity.SecurityLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var logs []entity.SecurityLog
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *securityLogRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&entity.SecurityLog{})
	return result.RowsAffected, result.Error
}
