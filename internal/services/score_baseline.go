package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/civilink/civilink-backend/internal/logger"
	"github.com/civilink/civilink-backend/internal/repos"
)

// ScoreBaselineService tracks the normalization baseline: the maximum rank
// score per period, and the all-time maximum derived from cumulative rollups.
type ScoreBaselineService interface {
	// UpdateGlobalMax refreshes the stored baseline for a period. A period
	// with no monthly rows leaves the baseline unset.
	UpdateGlobalMax(ctx context.Context, period string) error
	// GetGlobalMax resolves the normalization denominator: the stored max for
	// one period, or the all-time cumulative max when period is nil. Never
	// returns less than 1 so normalization stays division-safe.
	GetGlobalMax(ctx context.Context, period *string) (float64, error)
}

type scoreBaselineService struct {
	db             *gorm.DB
	log            *logger.Logger
	monthlyRepo    repos.OfficerStatsMonthlyRepo
	cumulativeRepo repos.OfficerStatsCumulativeRepo
	globalMaxRepo  repos.GlobalMaxScoreRepo
}

func NewScoreBaselineService(
	db *gorm.DB,
	log *logger.Logger,
	monthlyRepo repos.OfficerStatsMonthlyRepo,
	cumulativeRepo repos.OfficerStatsCumulativeRepo,
	globalMaxRepo repos.GlobalMaxScoreRepo,
) ScoreBaselineService {
	return &scoreBaselineService{
		db:             db,
		log:            log.With("service", "ScoreBaselineService"),
		monthlyRepo:    monthlyRepo,
		cumulativeRepo: cumulativeRepo,
		globalMaxRepo:  globalMaxRepo,
	}
}

func (s *scoreBaselineService) UpdateGlobalMax(ctx context.Context, period string) error {
	maxScore, found, err := s.monthlyRepo.MaxRankScoreForPeriod(ctx, nil, period)
	if err != nil {
		return fmt.Errorf("max rank score for %s: %w", period, err)
	}
	if !found {
		return nil
	}
	if err := s.globalMaxRepo.Upsert(ctx, nil, period, maxScore); err != nil {
		return fmt.Errorf("upsert global max for %s: %w", period, err)
	}
	return nil
}

func (s *scoreBaselineService) GetGlobalMax(ctx context.Context, period *string) (float64, error) {
	if period != nil {
		record, err := s.globalMaxRepo.GetByPeriod(ctx, nil, *period)
		if err != nil {
			return 0, err
		}
		if record == nil || record.MaxRankScore <= 0 {
			return 1, nil
		}
		return record.MaxRankScore, nil
	}
	maxScore, found, err := s.cumulativeRepo.MaxRankScore(ctx, nil)
	if err != nil {
		return 0, err
	}
	if !found || maxScore <= 0 {
		return 1, nil
	}
	return maxScore, nil
}
