package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/civilink/civilink-backend/internal/logger"
	"github.com/civilink/civilink-backend/internal/repos"
	"github.com/civilink/civilink-backend/internal/types"
	"github.com/civilink/civilink-backend/internal/utils"
)

// PerformanceFilter restricts the aggregated performance report. From/To are
// YYYY-MM periods, inclusive on both ends.
type PerformanceFilter struct {
	From       string
	To         string
	OfficerID  *uuid.UUID
	Department string
	Subcity    string
}

// OfficerStatsFilter restricts the paginated officer leaderboard.
type OfficerStatsFilter struct {
	From       string
	To         string
	Department string
	Subcity    string
	Search     string
	Page       int
	Limit      int
}

// GlobalStats summarizes all filtered rollup rows. Rates here are document
// averages over rows with activity in that domain, so a month without
// conversations does not drag the communication rate toward zero.
type GlobalStats struct {
	TotalAssigned             int     `json:"totalAssigned"`
	TotalRequestsProcessed    int     `json:"totalRequestsProcessed"`
	CommunicationResponseRate float64 `json:"communicationResponseRate"`
	ApplicationResponseRate   float64 `json:"applicationResponseRate"`
	AvgResponseTimeMs         float64 `json:"avgResponseTimeMs"`
	CombinedResponseRate      float64 `json:"combinedResponseRate"`
}

// OfficerIdentity is the joined directory record carried on report entries.
type OfficerIdentity struct {
	ID         uuid.UUID `json:"id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	Subcity    string    `json:"subcity"`
}

type OfficerPerformanceEntry struct {
	OfficerID                 uuid.UUID       `json:"officerId"`
	Officer                   OfficerIdentity `json:"officer"`
	TotalConversations        int             `json:"totalConversations"`
	TotalApplications         int             `json:"totalApplications"`
	RequestsProcessed         int             `json:"requestsProcessed"`
	RequestsTotal             int             `json:"requestsTotal"`
	AvgResponseTimeMs         float64         `json:"avgResponseTimeMs"`
	CommunicationResponseRate float64         `json:"communicationResponseRate"`
	ApplicationResponseRate   float64         `json:"applicationResponseRate"`
	RawScore                  float64         `json:"rawScore"`
	RankScore                 float64         `json:"rankScore"`
	NormalizedScore           float64         `json:"normalizedScore"`
	CombinedResponseRate      float64         `json:"combinedResponseRate"`
	CombinedAvgResponseTimeMs float64         `json:"combinedAvgResponseTimeMs"`
}

type MonthlyTrendEntry struct {
	Month                     string  `json:"month"`
	RequestsProcessed         int     `json:"requestsProcessed"`
	AverageResponseTimeMs     float64 `json:"averageResponseTimeMs"`
	CommunicationResponseRate float64 `json:"communicationResponseRate"`
	ApplicationResponseRate   float64 `json:"applicationResponseRate"`
}

// AggregatedPerformance is the multi-facet report consumed by the dashboard
// and the spreadsheet exporter. GlobalStats keeps its historical slice shape:
// empty when no rows matched, a single element otherwise.
type AggregatedPerformance struct {
	GlobalStats        []*GlobalStats             `json:"globalStats"`
	OfficerPerformance []*OfficerPerformanceEntry `json:"officerPerformance"`
	MonthlyTrend       []*MonthlyTrendEntry       `json:"monthlyTrend"`
}

// OfficerStatsDoc is one leaderboard row. responseRate and score are 0..100
// percentages; the stored 0..1 fractions stay at the rollup layer.
type OfficerStatsDoc struct {
	OfficerID         uuid.UUID `json:"officerId"`
	Name              string    `json:"name"`
	Department        string    `json:"department"`
	Subcity           string    `json:"subcity"`
	RequestsTotal     int       `json:"requestsTotal"`
	RequestsProcessed int       `json:"requestsProcessed"`
	AvgResponseTime   float64   `json:"avgResponseTime"`
	ResponseRate      float64   `json:"responseRate"`
	RawScore          float64   `json:"rawScore"`
	RankScore         float64   `json:"rankScore"`
	Score             float64   `json:"score"`
}

type PaginatedOfficerStats struct {
	Docs        []*OfficerStatsDoc  `json:"docs"`
	Counts      repos.OfficerCounts `json:"counts"`
	TotalDocs   int                 `json:"totalDocs"`
	Page        int                 `json:"page"`
	Limit       int                 `json:"limit"`
	TotalPages  int                 `json:"totalPages"`
	HasPrevPage bool                `json:"hasPrevPage"`
	HasNextPage bool                `json:"hasNextPage"`
}

// PerformanceService serves the two read views over the rollup tables.
type PerformanceService interface {
	GetAggregatedPerformance(ctx context.Context, filter PerformanceFilter) (*AggregatedPerformance, error)
	GetPaginatedOfficerStats(ctx context.Context, filter OfficerStatsFilter) (*PaginatedOfficerStats, error)
}

type performanceService struct {
	db             *gorm.DB
	log            *logger.Logger
	officerRepo    repos.OfficerRepo
	monthlyRepo    repos.OfficerStatsMonthlyRepo
	cumulativeRepo repos.OfficerStatsCumulativeRepo
	baseline       ScoreBaselineService
}

func NewPerformanceService(
	db *gorm.DB,
	log *logger.Logger,
	officerRepo repos.OfficerRepo,
	monthlyRepo repos.OfficerStatsMonthlyRepo,
	cumulativeRepo repos.OfficerStatsCumulativeRepo,
	baseline ScoreBaselineService,
) PerformanceService {
	return &performanceService{
		db:             db,
		log:            log.With("service", "PerformanceService"),
		officerRepo:    officerRepo,
		monthlyRepo:    monthlyRepo,
		cumulativeRepo: cumulativeRepo,
		baseline:       baseline,
	}
}

// baselinePeriod decides the normalization scope once, explicitly: a single
// valid period when the range collapses to one month, the all-time baseline
// otherwise.
func baselinePeriod(from, to string) *string {
	if from != "" && from == to && utils.ValidPeriod(from) {
		return &from
	}
	return nil
}

// officerFold accumulates one officer's monthly rows for regrouping.
type officerFold struct {
	officerID              uuid.UUID
	department             string
	subcity                string
	totalConversations     int
	processedConversations int
	totalApplications      int
	processedApplications  int
	requestsTotal          int
	requestsProcessed      int
	weightedTimeMs         float64
}

func foldMonthlyByOfficer(rows []*types.OfficerStatsMonthly) map[uuid.UUID]*officerFold {
	folds := make(map[uuid.UUID]*officerFold)
	for _, m := range rows {
		fold := folds[m.OfficerID]
		if fold == nil {
			fold = &officerFold{
				officerID:  m.OfficerID,
				department: m.Department,
				subcity:    m.Subcity,
			}
			folds[m.OfficerID] = fold
		}
		fold.totalConversations += m.TotalConversations
		fold.processedConversations += m.ProcessedConversations
		fold.totalApplications += m.TotalApplications
		fold.processedApplications += m.ProcessedApplications
		fold.requestsTotal += m.RequestsTotal
		fold.requestsProcessed += m.RequestsProcessed
		fold.weightedTimeMs += m.AverageResponseTimeMs * float64(m.RequestsProcessed)
	}
	return folds
}

func (s *performanceService) GetAggregatedPerformance(ctx context.Context, filter PerformanceFilter) (*AggregatedPerformance, error) {
	rows, err := s.monthlyRepo.ListByFilter(ctx, nil, repos.MonthlyStatsFilter{
		From:       filter.From,
		To:         filter.To,
		OfficerID:  filter.OfficerID,
		Department: filter.Department,
		Subcity:    filter.Subcity,
	})
	if err != nil {
		return nil, fmt.Errorf("list monthly stats: %w", err)
	}

	result := &AggregatedPerformance{
		GlobalStats:        []*GlobalStats{},
		OfficerPerformance: []*OfficerPerformanceEntry{},
		MonthlyTrend:       []*MonthlyTrendEntry{},
	}

	if len(rows) > 0 {
		result.GlobalStats = append(result.GlobalStats, computeGlobalStats(rows))
	}

	globalMax, err := s.baseline.GetGlobalMax(ctx, baselinePeriod(filter.From, filter.To))
	if err != nil {
		return nil, fmt.Errorf("resolve global max: %w", err)
	}

	entries, err := s.officerPerformance(ctx, rows, globalMax)
	if err != nil {
		return nil, err
	}
	result.OfficerPerformance = entries
	result.MonthlyTrend = monthlyTrend(rows)
	return result, nil
}

func computeGlobalStats(rows []*types.OfficerStatsMonthly) *GlobalStats {
	stats := &GlobalStats{}
	var commDocs, appDocs int
	var sumCommRates, sumAppRates, sumWeightedTime float64
	for _, m := range rows {
		stats.TotalAssigned += m.RequestsTotal
		stats.TotalRequestsProcessed += m.RequestsProcessed
		if m.TotalConversations > 0 {
			commDocs++
			sumCommRates += m.CommunicationResponseRate
		}
		if m.TotalApplications > 0 {
			appDocs++
			sumAppRates += m.ApplicationResponseRate
		}
		sumWeightedTime += m.AverageResponseTimeMs * float64(m.RequestsProcessed)
	}
	stats.CommunicationResponseRate = safeDiv(sumCommRates, float64(commDocs))
	stats.ApplicationResponseRate = safeDiv(sumAppRates, float64(appDocs))
	stats.AvgResponseTimeMs = safeDiv(sumWeightedTime, float64(stats.TotalRequestsProcessed))
	stats.CombinedResponseRate = ratio(stats.TotalRequestsProcessed, stats.TotalAssigned)
	return stats
}

func (s *performanceService) officerPerformance(ctx context.Context, rows []*types.OfficerStatsMonthly, globalMax float64) ([]*OfficerPerformanceEntry, error) {
	folds := foldMonthlyByOfficer(rows)
	ids := make([]uuid.UUID, 0, len(folds))
	for id := range folds {
		ids = append(ids, id)
	}
	officers, err := s.officerRepo.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup officers: %w", err)
	}
	officerByID := make(map[uuid.UUID]*types.Officer, len(officers))
	for _, o := range officers {
		officerByID[o.ID] = o
	}

	if globalMax <= 0 {
		globalMax = 1
	}

	entries := make([]*OfficerPerformanceEntry, 0, len(folds))
	for id, fold := range folds {
		officer := officerByID[id]
		if officer == nil {
			// Same as the lookup/unwind join: stats for unknown officers
			// disappear from the report.
			continue
		}
		avgTime := safeDiv(fold.weightedTimeMs, float64(fold.requestsProcessed))
		raw := unifiedScore(fold.requestsProcessed, fold.requestsTotal)
		entries = append(entries, &OfficerPerformanceEntry{
			OfficerID: id,
			Officer: OfficerIdentity{
				ID:         officer.ID,
				FullName:   officer.FullName,
				Email:      officer.Email,
				Department: officer.Department,
				Subcity:    officer.Subcity,
			},
			TotalConversations:        fold.totalConversations,
			TotalApplications:         fold.totalApplications,
			RequestsProcessed:         fold.requestsProcessed,
			RequestsTotal:             fold.requestsTotal,
			AvgResponseTimeMs:         avgTime,
			CommunicationResponseRate: ratio(fold.processedConversations, fold.totalConversations),
			ApplicationResponseRate:   ratio(fold.processedApplications, fold.totalApplications),
			RawScore:                  raw,
			RankScore:                 raw,
			NormalizedScore:           raw / globalMax * 100,
			CombinedResponseRate:      ratio(fold.requestsProcessed, fold.requestsTotal) * 100,
			CombinedAvgResponseTimeMs: avgTime,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].RawScore != entries[j].RawScore {
			return entries[i].RawScore > entries[j].RawScore
		}
		return entries[i].RequestsTotal > entries[j].RequestsTotal
	})
	return entries, nil
}

func monthlyTrend(rows []*types.OfficerStatsMonthly) []*MonthlyTrendEntry {
	type periodFold struct {
		totalConversations     int
		processedConversations int
		totalApplications      int
		processedApplications  int
		requestsProcessed      int
		weightedTimeMs         float64
	}
	folds := make(map[string]*periodFold)
	for _, m := range rows {
		fold := folds[m.Period]
		if fold == nil {
			fold = &periodFold{}
			folds[m.Period] = fold
		}
		fold.totalConversations += m.TotalConversations
		fold.processedConversations += m.ProcessedConversations
		fold.totalApplications += m.TotalApplications
		fold.processedApplications += m.ProcessedApplications
		fold.requestsProcessed += m.RequestsProcessed
		fold.weightedTimeMs += m.AverageResponseTimeMs * float64(m.RequestsProcessed)
	}

	trend := make([]*MonthlyTrendEntry, 0, len(folds))
	for period, fold := range folds {
		trend = append(trend, &MonthlyTrendEntry{
			Month:                     period,
			RequestsProcessed:         fold.requestsProcessed,
			AverageResponseTimeMs:     safeDiv(fold.weightedTimeMs, float64(fold.requestsProcessed)),
			CommunicationResponseRate: ratio(fold.processedConversations, fold.totalConversations),
			ApplicationResponseRate:   ratio(fold.processedApplications, fold.totalApplications),
		})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Month < trend[j].Month })
	return trend
}

func (s *performanceService) GetPaginatedOfficerStats(ctx context.Context, filter OfficerStatsFilter) (*PaginatedOfficerStats, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}

	globalMax, err := s.baseline.GetGlobalMax(ctx, baselinePeriod(filter.From, filter.To))
	if err != nil {
		return nil, fmt.Errorf("resolve global max: %w", err)
	}
	if globalMax <= 0 {
		globalMax = 1
	}

	byPeriod := filter.From != "" || filter.To != ""
	var folds []*officerFold
	if byPeriod {
		rows, err := s.monthlyRepo.ListByFilter(ctx, nil, repos.MonthlyStatsFilter{
			From:       filter.From,
			To:         filter.To,
			Department: filter.Department,
			Subcity:    filter.Subcity,
		})
		if err != nil {
			return nil, fmt.Errorf("list monthly stats: %w", err)
		}
		grouped := foldMonthlyByOfficer(rows)
		for _, fold := range grouped {
			folds = append(folds, fold)
		}
	} else {
		rows, err := s.cumulativeRepo.ListByFilter(ctx, nil, repos.CumulativeStatsFilter{
			Department: filter.Department,
			Subcity:    filter.Subcity,
		})
		if err != nil {
			return nil, fmt.Errorf("list cumulative stats: %w", err)
		}
		for _, c := range rows {
			folds = append(folds, &officerFold{
				officerID:              c.OfficerID,
				department:             c.Department,
				subcity:                c.Subcity,
				totalConversations:     c.TotalConversations,
				processedConversations: c.ProcessedConversations,
				totalApplications:      c.TotalApplications,
				processedApplications:  c.ProcessedApplications,
				requestsTotal:          c.RequestsTotal,
				requestsProcessed:      c.RequestsProcessed,
				weightedTimeMs:         c.AverageResponseTimeMs * float64(c.RequestsProcessed),
			})
		}
	}

	ids := make([]uuid.UUID, 0, len(folds))
	for _, fold := range folds {
		ids = append(ids, fold.officerID)
	}
	officers, err := s.officerRepo.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup officers: %w", err)
	}
	officerByID := make(map[uuid.UUID]*types.Officer, len(officers))
	for _, o := range officers {
		officerByID[o.ID] = o
	}

	needle := strings.ToLower(filter.Search)
	docs := make([]*OfficerStatsDoc, 0, len(folds))
	for _, fold := range folds {
		officer := officerByID[fold.officerID]
		if officer == nil {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(officer.FullName), needle) &&
			!strings.Contains(strings.ToLower(officer.Email), needle) {
			continue
		}
		avgTime := safeDiv(fold.weightedTimeMs, float64(fold.requestsProcessed))
		raw := unifiedScore(fold.requestsProcessed, fold.requestsTotal)
		department := fold.department
		if department == "" {
			department = officer.Department
		}
		subcity := fold.subcity
		if subcity == "" {
			subcity = officer.Subcity
		}
		docs = append(docs, &OfficerStatsDoc{
			OfficerID:         fold.officerID,
			Name:              officer.FullName,
			Department:        department,
			Subcity:           subcity,
			RequestsTotal:     fold.requestsTotal,
			RequestsProcessed: fold.requestsProcessed,
			AvgResponseTime:   avgTime,
			ResponseRate:      ratio(fold.requestsProcessed, fold.requestsTotal) * 100,
			RawScore:          raw,
			RankScore:         raw,
			Score:             raw / globalMax * 100,
		})
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].RawScore != docs[j].RawScore {
			return docs[i].RawScore > docs[j].RawScore
		}
		return docs[i].RequestsTotal > docs[j].RequestsTotal
	})

	counts, err := s.officerRepo.CountByFilter(ctx, nil, filter.Department, filter.Subcity, filter.Search)
	if err != nil {
		return nil, fmt.Errorf("count officers: %w", err)
	}

	totalDocs := len(docs)
	totalPages := (totalDocs + limit - 1) / limit
	startIdx := (page - 1) * limit
	if startIdx > totalDocs {
		startIdx = totalDocs
	}
	endIdx := startIdx + limit
	if endIdx > totalDocs {
		endIdx = totalDocs
	}

	return &PaginatedOfficerStats{
		Docs:        docs[startIdx:endIdx],
		Counts:      counts,
		TotalDocs:   totalDocs,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
		HasPrevPage: page > 1,
		HasNextPage: endIdx < totalDocs,
	}, nil
}
