package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/civilink/civilink-backend/internal/logger"
	"github.com/civilink/civilink-backend/internal/types"
)

type GlobalMaxScoreRepo interface {
	// Upsert stores the period's normalization baseline, one row per period.
	Upsert(ctx context.Context, tx *gorm.DB, period string, maxRankScore float64) error
	// GetByPeriod returns nil when the period has no stored baseline.
	GetByPeriod(ctx context.Context, tx *gorm.DB, period string) (*types.GlobalMaxScore, error)
}

type globalMaxScoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGlobalMaxScoreRepo(db *gorm.DB, baseLog *logger.Logger) GlobalMaxScoreRepo {
	return &globalMaxScoreRepo{db: db, log: baseLog.With("repo", "GlobalMaxScoreRepo")}
}

func (r *globalMaxScoreRepo) Upsert(ctx context.Context, tx *gorm.DB, period string, maxRankScore float64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if period == "" {
		return nil
	}
	now := time.Now().UTC()
	row := &types.GlobalMaxScore{
		ID:           uuid.New(),
		Period:       period,
		MaxRankScore: maxRankScore,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "period"}},
			DoUpdates: clause.AssignmentColumns([]string{"max_rank_score", "updated_at"}),
		}).
		Create(row).Error
}

func (r *globalMaxScoreRepo) GetByPeriod(ctx context.Context, tx *gorm.DB, period string) (*types.GlobalMaxScore, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if period == "" {
		return nil, nil
	}
	var row types.GlobalMaxScore
	err := transaction.WithContext(ctx).
		Where("period = ?", period).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}
