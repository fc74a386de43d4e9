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
	"github.com/civilink/civilink-backend/internal/utils"
)

// MonthlyStatsService scans the two activity streams for one period, folds
// them per officer and upserts the monthly rollup rows.
type MonthlyStatsService interface {
	ComputeMonthlyStats(ctx context.Context, period string) ([]*types.OfficerStatsMonthly, error)
}

type monthlyStatsService struct {
	db               *gorm.DB
	log              *logger.Logger
	conversationRepo repos.ConversationRepo
	applicationRepo  repos.ApplicationRepo
	officerRepo      repos.OfficerRepo
	monthlyRepo      repos.OfficerStatsMonthlyRepo
}

func NewMonthlyStatsService(
	db *gorm.DB,
	log *logger.Logger,
	conversationRepo repos.ConversationRepo,
	applicationRepo repos.ApplicationRepo,
	officerRepo repos.OfficerRepo,
	monthlyRepo repos.OfficerStatsMonthlyRepo,
) MonthlyStatsService {
	return &monthlyStatsService{
		db:               db,
		log:              log.With("service", "MonthlyStatsService"),
		conversationRepo: conversationRepo,
		applicationRepo:  applicationRepo,
		officerRepo:      officerRepo,
		monthlyRepo:      monthlyRepo,
	}
}

// activityFold is one officer's raw counts from a single activity stream.
type activityFold struct {
	assigned        int
	processed       int
	totalResponseMs float64
}

func (s *monthlyStatsService) ComputeMonthlyStats(ctx context.Context, period string) ([]*types.OfficerStatsMonthly, error) {
	start, end, err := utils.MonthRange(period)
	if err != nil {
		return nil, err
	}

	conversations, err := s.conversationRepo.ListAssignedInRange(ctx, nil, start, end)
	if err != nil {
		return nil, fmt.Errorf("scan conversations for %s: %w", period, err)
	}
	applications, err := s.applicationRepo.ListAssignedInRange(ctx, nil, start, end)
	if err != nil {
		return nil, fmt.Errorf("scan applications for %s: %w", period, err)
	}

	convFolds := make(map[uuid.UUID]*activityFold)
	for _, c := range conversations {
		if c.OfficerID == nil {
			continue
		}
		fold := convFolds[*c.OfficerID]
		if fold == nil {
			fold = &activityFold{}
			convFolds[*c.OfficerID] = fold
		}
		fold.assigned++
		if c.Status == types.ConversationStatusClosed {
			fold.processed++
			fold.totalResponseMs += float64(c.UpdatedAt.Sub(c.CreatedAt).Milliseconds())
		}
	}

	appFolds := make(map[uuid.UUID]*activityFold)
	for _, a := range applications {
		if a.AssignedOfficer == nil {
			continue
		}
		fold := appFolds[*a.AssignedOfficer]
		if fold == nil {
			fold = &activityFold{}
			appFolds[*a.AssignedOfficer] = fold
		}
		fold.assigned++
		if a.Status == types.ApplicationStatusApproved || a.Status == types.ApplicationStatusRejected {
			fold.processed++
			fold.totalResponseMs += float64(a.UpdatedAt.Sub(a.CreatedAt).Milliseconds())
		}
	}

	officerIDs := make([]uuid.UUID, 0, len(convFolds)+len(appFolds))
	for id := range convFolds {
		officerIDs = append(officerIDs, id)
	}
	for id := range appFolds {
		if _, seen := convFolds[id]; !seen {
			officerIDs = append(officerIDs, id)
		}
	}
	officers, err := s.officerRepo.GetByIDs(ctx, nil, officerIDs)
	if err != nil {
		return nil, fmt.Errorf("lookup officers for %s: %w", period, err)
	}
	officerByID := make(map[uuid.UUID]*types.Officer, len(officers))
	for _, o := range officers {
		officerByID[o.ID] = o
	}

	// Merge the two streams per officer. An officer normally belongs to one
	// department, but when the same id shows up in both streams the counts
	// combine rather than overwrite. Officer ids with no directory record
	// drop out here, the same way the lookup join drops them upstream.
	merged := make(map[uuid.UUID]*types.OfficerStatsMonthly)
	responseMs := make(map[uuid.UUID]float64)

	for id, fold := range convFolds {
		officer := officerByID[id]
		if officer == nil || officer.Department != types.DepartmentCustomerSupport {
			continue
		}
		row := &types.OfficerStatsMonthly{
			OfficerID:                 id,
			Period:                    period,
			Department:                officer.Department,
			Subcity:                   officer.Subcity,
			TotalConversations:        fold.assigned,
			ProcessedConversations:    fold.processed,
			CommunicationResponseRate: ratio(fold.processed, fold.assigned),
		}
		merged[id] = row
		responseMs[id] = fold.totalResponseMs
	}

	for id, fold := range appFolds {
		officer := officerByID[id]
		if officer == nil || officer.Department != types.DepartmentApprover {
			continue
		}
		row := merged[id]
		if row == nil {
			row = &types.OfficerStatsMonthly{
				OfficerID:  id,
				Period:     period,
				Department: officer.Department,
				Subcity:    officer.Subcity,
			}
			merged[id] = row
		}
		row.TotalApplications = fold.assigned
		row.ProcessedApplications = fold.processed
		row.ApplicationResponseRate = ratio(fold.processed, fold.assigned)
		responseMs[id] += fold.totalResponseMs
	}

	results := make([]*types.OfficerStatsMonthly, 0, len(merged))
	var upsertErrs []error
	for id, row := range merged {
		row.RequestsTotal = row.TotalConversations + row.TotalApplications
		row.RequestsProcessed = row.ProcessedConversations + row.ProcessedApplications
		row.AverageResponseTimeMs = safeDiv(responseMs[id], float64(row.RequestsProcessed))
		row.RawScore = unifiedScore(row.RequestsProcessed, row.RequestsTotal)
		row.RankScore = row.RawScore

		// One bad document must not take its siblings down with it.
		if err := s.monthlyRepo.Upsert(ctx, nil, row); err != nil {
			s.log.Error("Monthly stats upsert failed", "officer_id", id, "period", period, "error", err)
			upsertErrs = append(upsertErrs, err)
			continue
		}
		results = append(results, row)
	}

	s.log.Info("Computed monthly stats", "period", period, "officers", len(results))
	return results, errors.Join(upsertErrs...)
}
