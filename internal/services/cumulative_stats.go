package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/civilink/civilink-backend/internal/logger"
	"github.com/civilink/civilink-backend/internal/repos"
	"github.com/civilink/civilink-backend/internal/types"
)

// ErrOfficerNotFound is returned when a cumulative recompute targets an
// officer with no directory record. Batch callers skip these and keep going.
var ErrOfficerNotFound = errors.New("officer not found")

// CumulativeStatsService re-derives an officer's all-time rollup by folding
// every monthly rollup row that officer has.
type CumulativeStatsService interface {
	RecomputeCumulative(ctx context.Context, officerID uuid.UUID) (*types.OfficerStatsCumulative, error)
}

type cumulativeStatsService struct {
	db             *gorm.DB
	log            *logger.Logger
	officerRepo    repos.OfficerRepo
	monthlyRepo    repos.OfficerStatsMonthlyRepo
	cumulativeRepo repos.OfficerStatsCumulativeRepo
}

func NewCumulativeStatsService(
	db *gorm.DB,
	log *logger.Logger,
	officerRepo repos.OfficerRepo,
	monthlyRepo repos.OfficerStatsMonthlyRepo,
	cumulativeRepo repos.OfficerStatsCumulativeRepo,
) CumulativeStatsService {
	return &cumulativeStatsService{
		db:             db,
		log:            log.With("service", "CumulativeStatsService"),
		officerRepo:    officerRepo,
		monthlyRepo:    monthlyRepo,
		cumulativeRepo: cumulativeRepo,
	}
}

func (s *cumulativeStatsService) RecomputeCumulative(ctx context.Context, officerID uuid.UUID) (*types.OfficerStatsCumulative, error) {
	officer, err := s.officerRepo.GetByID(ctx, nil, officerID)
	if err != nil {
		return nil, fmt.Errorf("lookup officer %s: %w", officerID, err)
	}
	if officer == nil {
		return nil, fmt.Errorf("%w: %s", ErrOfficerNotFound, officerID)
	}

	months, err := s.monthlyRepo.ListByOfficer(ctx, nil, officerID)
	if err != nil {
		return nil, fmt.Errorf("list monthly stats for officer %s: %w", officerID, err)
	}
	if len(months) == 0 {
		// Nothing to fold; leave any previous cumulative row untouched.
		return nil, nil
	}

	row := &types.OfficerStatsCumulative{
		OfficerID: officerID,
		// Denormalized from the officer's current record, not historical.
		Department: officer.Department,
		Subcity:    officer.Subcity,
	}
	var weightedTimeMs float64
	for _, m := range months {
		row.TotalConversations += m.TotalConversations
		row.ProcessedConversations += m.ProcessedConversations
		row.TotalApplications += m.TotalApplications
		row.ProcessedApplications += m.ProcessedApplications
		row.RequestsTotal += m.RequestsTotal
		row.RequestsProcessed += m.RequestsProcessed
		weightedTimeMs += m.AverageResponseTimeMs * float64(m.RequestsProcessed)
	}

	// Rates come from summed numerators and denominators, never from
	// averaging per-month rates.
	row.CommunicationResponseRate = ratio(row.ProcessedConversations, row.TotalConversations)
	row.ApplicationResponseRate = ratio(row.ProcessedApplications, row.TotalApplications)
	row.AverageResponseTimeMs = safeDiv(weightedTimeMs, float64(row.RequestsProcessed))
	row.RawScore = unifiedScore(row.RequestsProcessed, row.RequestsTotal)
	row.RankScore = row.RawScore

	if err := s.cumulativeRepo.Upsert(ctx, nil, row); err != nil {
		return nil, fmt.Errorf("upsert cumulative stats for officer %s: %w", officerID, err)
	}
	return row, nil
}
