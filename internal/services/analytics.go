package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/civilink/civilink-backend/internal/logger"
	"github.com/civilink/civilink-backend/internal/repos"
	"github.com/civilink/civilink-backend/internal/utils"
)

// DefaultLookbackMonths bounds how far back a refresh will recompute.
const DefaultLookbackMonths = 12

// AnalyticsService discovers which periods have activity and re-runs the
// monthly and cumulative aggregation for each. Idempotent: repeated runs over
// unchanged activity produce identical stored state.
type AnalyticsService interface {
	// RefreshAnalytics takes now and the lookback bound explicitly so the
	// orchestration is a pure function of its inputs and the stored activity.
	RefreshAnalytics(ctx context.Context, now time.Time, maxLookbackMonths int) error
}

type analyticsService struct {
	db               *gorm.DB
	log              *logger.Logger
	conversationRepo repos.ConversationRepo
	applicationRepo  repos.ApplicationRepo
	monthlyStats     MonthlyStatsService
	cumulativeStats  CumulativeStatsService
	baseline         ScoreBaselineService
}

func NewAnalyticsService(
	db *gorm.DB,
	log *logger.Logger,
	conversationRepo repos.ConversationRepo,
	applicationRepo repos.ApplicationRepo,
	monthlyStats MonthlyStatsService,
	cumulativeStats CumulativeStatsService,
	baseline ScoreBaselineService,
) AnalyticsService {
	return &analyticsService{
		db:               db,
		log:              log.With("service", "AnalyticsService"),
		conversationRepo: conversationRepo,
		applicationRepo:  applicationRepo,
		monthlyStats:     monthlyStats,
		cumulativeStats:  cumulativeStats,
		baseline:         baseline,
	}
}

func (s *analyticsService) RefreshAnalytics(ctx context.Context, now time.Time, maxLookbackMonths int) error {
	periods, err := s.discoverPeriods(ctx)
	if err != nil {
		return err
	}

	if len(periods) == 0 {
		periods = []string{utils.CurrentPeriod(now)}
	} else {
		sort.Strings(periods)
		keep := maxLookbackMonths
		if keep < 1 {
			keep = 1
		}
		if len(periods) > keep {
			periods = periods[len(periods)-keep:]
		}
	}

	// One bad period must not abort the rest of the run.
	var periodErrs []error
	for _, period := range periods {
		if err := s.refreshPeriod(ctx, period); err != nil {
			s.log.Error("Period refresh failed", "period", period, "error", err)
			periodErrs = append(periodErrs, fmt.Errorf("period %s: %w", period, err))
		}
	}
	return errors.Join(periodErrs...)
}

func (s *analyticsService) discoverPeriods(ctx context.Context) ([]string, error) {
	convStamps, err := s.conversationRepo.ActivityTimestamps(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("conversation activity timestamps: %w", err)
	}
	appStamps, err := s.applicationRepo.ActivityTimestamps(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("application activity timestamps: %w", err)
	}

	seen := make(map[string]struct{})
	for _, t := range convStamps {
		seen[utils.PeriodOf(t)] = struct{}{}
	}
	for _, t := range appStamps {
		seen[utils.PeriodOf(t)] = struct{}{}
	}
	periods := make([]string, 0, len(seen))
	for p := range seen {
		periods = append(periods, p)
	}
	return periods, nil
}

func (s *analyticsService) refreshPeriod(ctx context.Context, period string) error {
	rows, err := s.monthlyStats.ComputeMonthlyStats(ctx, period)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if _, err := s.cumulativeStats.RecomputeCumulative(ctx, row.OfficerID); err != nil {
			if errors.Is(err, ErrOfficerNotFound) {
				s.log.Warn("Skipping cumulative recompute for unknown officer", "officer_id", row.OfficerID)
				continue
			}
			return err
		}
	}

	return s.baseline.UpdateGlobalMax(ctx, period)
}
