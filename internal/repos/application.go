package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/civilink/civilink-backend/internal/logger"
	"github.com/civilink/civilink-backend/internal/types"
)

type ApplicationRepo interface {
	// ListAssignedInRange returns applications with an assigned officer whose
	// updated_at falls inside [start, end].
	ListAssignedInRange(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]*types.Application, error)
	// ActivityTimestamps returns the updated_at of every application, for
	// period discovery by the refresh orchestrator.
	ActivityTimestamps(ctx context.Context, tx *gorm.DB) ([]time.Time, error)
}

type applicationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewApplicationRepo(db *gorm.DB, baseLog *logger.Logger) ApplicationRepo {
	return &applicationRepo{db: db, log: baseLog.With("repo", "ApplicationRepo")}
}

func (r *applicationRepo) ListAssignedInRange(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]*types.Application, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Application
	if err := transaction.WithContext(ctx).
		Where("assigned_officer IS NOT NULL AND updated_at >= ? AND updated_at <= ?", start, end).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *applicationRepo) ActivityTimestamps(ctx context.Context, tx *gorm.DB) ([]time.Time, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var stamps []time.Time
	if err := transaction.WithContext(ctx).
		Model(&types.Application{}).
		Pluck("updated_at", &stamps).Error; err != nil {
		return nil, err
	}
	return stamps, nil
}
