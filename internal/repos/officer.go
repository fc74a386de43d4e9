package repos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/civilink/civilink-backend/internal/logger"
	"github.com/civilink/civilink-backend/internal/types"
)

// OfficerCounts reports headcounts for the officer directory, independent of
// any recorded activity.
type OfficerCounts struct {
	Total   int64 `json:"total"`
	Active  int64 `json:"active"`
	OnLeave int64 `json:"onLeave"`
}

type OfficerRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Officer, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Officer, error)
	CountByFilter(ctx context.Context, tx *gorm.DB, department, subcity, search string) (OfficerCounts, error)
}

type officerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOfficerRepo(db *gorm.DB, baseLog *logger.Logger) OfficerRepo {
	return &officerRepo{db: db, log: baseLog.With("repo", "OfficerRepo")}
}

func (r *officerRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Officer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Officer
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
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

func (r *officerRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Officer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Officer
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *officerRepo) CountByFilter(ctx context.Context, tx *gorm.DB, department, subcity, search string) (OfficerCounts, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	base := func() *gorm.DB {
		q := transaction.WithContext(ctx).Model(&types.Officer{})
		if department != "" {
			q = q.Where("department = ?", department)
		}
		if subcity != "" {
			q = q.Where("subcity = ?", subcity)
		}
		if search != "" {
			needle := "%" + strings.ToLower(search) + "%"
			q = q.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", needle, needle)
		}
		return q
	}

	var counts OfficerCounts
	if err := base().Count(&counts.Total).Error; err != nil {
		return OfficerCounts{}, err
	}
	if err := base().Where("on_leave = ?", false).Count(&counts.Active).Error; err != nil {
		return OfficerCounts{}, err
	}
	if err := base().Where("on_leave = ?", true).Count(&counts.OnLeave).Error; err != nil {
		return OfficerCounts{}, err
	}
	return counts, nil
}
