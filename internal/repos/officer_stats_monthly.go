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

// MonthlyStatsFilter restricts monthly rollup rows. From/To bound the period
// lexicographically, which is date order for YYYY-MM strings.
type MonthlyStatsFilter struct {
	From       string
	To         string
	OfficerID  *uuid.UUID
	Department string
	Subcity    string
}

type OfficerStatsMonthlyRepo interface {
	// Upsert writes a rollup row keyed by (officer_id, period), replacing any
	// previous computation for that key in full.
	Upsert(ctx context.Context, tx *gorm.DB, row *types.OfficerStatsMonthly) error
	ListByOfficer(ctx context.Context, tx *gorm.DB, officerID uuid.UUID) ([]*types.OfficerStatsMonthly, error)
	ListByFilter(ctx context.Context, tx *gorm.DB, filter MonthlyStatsFilter) ([]*types.OfficerStatsMonthly, error)
	// MaxRankScoreForPeriod returns the highest rank score in the period and
	// whether the period has any rows at all.
	MaxRankScoreForPeriod(ctx context.Context, tx *gorm.DB, period string) (float64, bool, error)
}

type officerStatsMonthlyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOfficerStatsMonthlyRepo(db *gorm.DB, baseLog *logger.Logger) OfficerStatsMonthlyRepo {
	return &officerStatsMonthlyRepo{db: db, log: baseLog.With("repo", "OfficerStatsMonthlyRepo")}
}

func (r *officerStatsMonthlyRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.OfficerStatsMonthly) error {
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
			Columns: []clause.Column{{Name: "officer_id"}, {Name: "period"}},
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

func (r *officerStatsMonthlyRepo) ListByOfficer(ctx context.Context, tx *gorm.DB, officerID uuid.UUID) ([]*types.OfficerStatsMonthly, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.OfficerStatsMonthly
	if officerID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("officer_id = ?", officerID).
		Order("period ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *officerStatsMonthlyRepo) ListByFilter(ctx context.Context, tx *gorm.DB, filter MonthlyStatsFilter) ([]*types.OfficerStatsMonthly, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Model(&types.OfficerStatsMonthly{})
	if filter.From != "" {
		q = q.Where("period >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("period <= ?", filter.To)
	}
	if filter.OfficerID != nil && *filter.OfficerID != uuid.Nil {
		q = q.Where("officer_id = ?", *filter.OfficerID)
	}
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}
	if filter.Subcity != "" {
		q = q.Where("subcity = ?", filter.Subcity)
	}
	var results []*types.OfficerStatsMonthly
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *officerStatsMonthlyRepo) MaxRankScoreForPeriod(ctx context.Context, tx *gorm.DB, period string) (float64, bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.OfficerStatsMonthly
	err := transaction.WithContext(ctx).
		Where("period = ?", period).
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
