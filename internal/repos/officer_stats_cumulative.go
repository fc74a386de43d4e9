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

// CumulativeStatsFilter restricts cumulative rollup rows.
type CumulativeStatsFilter struct {
	Department string
	Subcity    string
}

type OfficerStatsCumulativeRepo interface {
	// Upsert overwrites the officer's all-time rollup in full.
	Upsert(ctx context.Context, tx *gorm.DB, row *types.OfficerStatsCumulative) error
	ListByFilter(ctx context.Context, tx *gorm.DB, filter CumulativeStatsFilter) ([]*types.OfficerStatsCumulative, error)
	// MaxRankScore returns the highest all-time rank score and whether any
	// cumulative rows exist.
	MaxRankScore(ctx context.Context, tx *gorm.DB) (float64, bool, error)
}

type officerStatsCumulativeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOfficerStatsCumulativeRepo(db *gorm.DB, baseLog *logger.Logger) OfficerStatsCumulativeRepo {
	return &officerStatsCumulativeRepo{db: db, log: baseLog.With("repo", "OfficerStatsCumulativeRepo")}
}

func (r *officerStatsCumulativeRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.OfficerStatsCumulative) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now().UTC()
	row.UpdatedAt = now
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "officer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"department", "subcity",
				"total_conversations", "processed_conversations",
				"total_applications", "processed_applications",
				"communication_response_rate", "application_response_rate",
				"average_response_time_ms",
				"requests_total", "requests_processed",
				"raw_score", "rank_score",
				"updated_at",
			}),
		}).
		Create(row).Error
}

func (r *officerStatsCumulativeRepo) ListByFilter(ctx context.Context, tx *gorm.DB, filter CumulativeStatsFilter) ([]*types.OfficerStatsCumulative, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Model(&types.OfficerStatsCumulative{})
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}
	if filter.Subcity != "" {
		q = q.Where("subcity = ?", filter.Subcity)
	}
	var results []*types.OfficerStatsCumulative
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *officerStatsCumulativeRepo) MaxRankScore(ctx context.Context, tx *gorm.DB) (float64, bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.OfficerStatsCumulative
	err := transaction.WithContext(ctx).
		Order("rank_score DESC").
		Limit(1).
		Find(&row).Error
	if err != nil {
		return 0, false, err
	}
	if row.ID == uuid.Nil {
		return 0, false, nil
	}
	return row.RankScore, true, nil
}
