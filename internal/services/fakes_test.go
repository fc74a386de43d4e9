package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/civilink/civilink-backend/internal/repos"
	"github.com/civilink/civilink-backend/internal/types"
)

// In-memory repo implementations so the aggregation services can be exercised
// without a database.

type fakeOfficerRepo struct {
	officers map[uuid.UUID]*types.Officer
}

func newFakeOfficerRepo(officers ...*types.Officer) *fakeOfficerRepo {
	m := make(map[uuid.UUID]*types.Officer, len(officers))
	for _, o := range officers {
		m[o.ID] = o
	}
	return &fakeOfficerRepo{officers: m}
}

func (f *fakeOfficerRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Officer, error) {
	return f.officers[id], nil
}

func (f *fakeOfficerRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Officer, error) {
	var out []*types.Officer
	for _, id := range ids {
		if o, ok := f.officers[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOfficerRepo) CountByFilter(ctx context.Context, tx *gorm.DB, department, subcity, search string) (repos.OfficerCounts, error) {
	var counts repos.OfficerCounts
	needle := strings.ToLower(search)
	for _, o := range f.officers {
		if department != "" && o.Department != department {
			continue
		}
		if subcity != "" && o.Subcity != subcity {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(o.FullName), needle) &&
			!strings.Contains(strings.ToLower(o.Email), needle) {
			continue
		}
		counts.Total++
		if o.OnLeave {
			counts.OnLeave++
		} else {
			counts.Active++
		}
	}
	return counts, nil
}

type fakeConversationRepo struct {
	rows []*types.Conversation
	// rangeErr, when set, can simulate a data-source failure for one window.
	rangeErr func(start, end time.Time) error
}

func (f *fakeConversationRepo) ListAssignedInRange(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]*types.Conversation, error) {
	if f.rangeErr != nil {
		if err := f.rangeErr(start, end); err != nil {
			return nil, err
		}
	}
	var out []*types.Conversation
	for _, c := range f.rows {
		if c.OfficerID == nil {
			continue
		}
		if c.UpdatedAt.Before(start) || c.UpdatedAt.After(end) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeConversationRepo) ActivityTimestamps(ctx context.Context, tx *gorm.DB) ([]time.Time, error) {
	var out []time.Time
	for _, c := range f.rows {
		out = append(out, c.UpdatedAt)
	}
	return out, nil
}

type fakeApplicationRepo struct {
	rows []*types.Application
}

func (f *fakeApplicationRepo) ListAssignedInRange(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]*types.Application, error) {
	var out []*types.Application
	for _, a := range f.rows {
		if a.AssignedOfficer == nil {
			continue
		}
		if a.UpdatedAt.Before(start) || a.UpdatedAt.After(end) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeApplicationRepo) ActivityTimestamps(ctx context.Context, tx *gorm.DB) ([]time.Time, error) {
	var out []time.Time
	for _, a := range f.rows {
		out = append(out, a.UpdatedAt)
	}
	return out, nil
}

type fakeMonthlyRepo struct {
	rows map[string]types.OfficerStatsMonthly // officerID|period
}

func newFakeMonthlyRepo() *fakeMonthlyRepo {
	return &fakeMonthlyRepo{rows: make(map[string]types.OfficerStatsMonthly)}
}

func monthlyKey(officerID uuid.UUID, period string) string {
	return officerID.String() + "|" + period
}

func (f *fakeMonthlyRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.OfficerStatsMonthly) error {
	f.rows[monthlyKey(row.OfficerID, row.Period)] = *row
	return nil
}

func (f *fakeMonthlyRepo) ListByOfficer(ctx context.Context, tx *gorm.DB, officerID uuid.UUID) ([]*types.OfficerStatsMonthly, error) {
	var out []*types.OfficerStatsMonthly
	for _, row := range f.rows {
		if row.OfficerID == officerID {
			copied := row
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

func (f *fakeMonthlyRepo) ListByFilter(ctx context.Context, tx *gorm.DB, filter repos.MonthlyStatsFilter) ([]*types.OfficerStatsMonthly, error) {
	var out []*types.OfficerStatsMonthly
	for _, row := range f.rows {
		if filter.From != "" && row.Period < filter.From {
			continue
		}
		if filter.To != "" && row.Period > filter.To {
			continue
		}
		if filter.OfficerID != nil && row.OfficerID != *filter.OfficerID {
			continue
		}
		if filter.Department != "" && row.Department != filter.Department {
			continue
		}
		if filter.Subcity != "" && row.Subcity != filter.Subcity {
			continue
		}
		copied := row
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeMonthlyRepo) MaxRankScoreForPeriod(ctx context.Context, tx *gorm.DB, period string) (float64, bool, error) {
	var best float64
	found := false
	for _, row := range f.rows {
		if row.Period != period {
			continue
		}
		if !found || row.RankScore > best {
			best = row.RankScore
		}
		found = true
	}
	return best, found, nil
}

type fakeCumulativeRepo struct {
	rows map[uuid.UUID]types.OfficerStatsCumulative
}

func newFakeCumulativeRepo() *fakeCumulativeRepo {
	return &fakeCumulativeRepo{rows: make(map[uuid.UUID]types.OfficerStatsCumulative)}
}

func (f *fakeCumulativeRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.OfficerStatsCumulative) error {
	f.rows[row.OfficerID] = *row
	return nil
}

func (f *fakeCumulativeRepo) ListByFilter(ctx context.Context, tx *gorm.DB, filter repos.CumulativeStatsFilter) ([]*types.OfficerStatsCumulative, error) {
	var out []*types.OfficerStatsCumulative
	for _, row := range f.rows {
		if filter.Department != "" && row.Department != filter.Department {
			continue
		}
		if filter.Subcity != "" && row.Subcity != filter.Subcity {
			continue
		}
		copied := row
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeCumulativeRepo) MaxRankScore(ctx context.Context, tx *gorm.DB) (float64, bool, error) {
	var best float64
	found := false
	for _, row := range f.rows {
		if !found || row.RankScore > best {
			best = row.RankScore
		}
		found = true
	}
	return best, found, nil
}

type fakeGlobalMaxRepo struct {
	rows map[string]float64
}

func newFakeGlobalMaxRepo() *fakeGlobalMaxRepo {
	return &fakeGlobalMaxRepo{rows: make(map[string]float64)}
}

func (f *fakeGlobalMaxRepo) Upsert(ctx context.Context, tx *gorm.DB, period string, maxRankScore float64) error {
	f.rows[period] = maxRankScore
	return nil
}

func (f *fakeGlobalMaxRepo) GetByPeriod(ctx context.Context, tx *gorm.DB, period string) (*types.GlobalMaxScore, error) {
	score, ok := f.rows[period]
	if !ok {
		return nil, nil
	}
	return &types.GlobalMaxScore{ID: uuid.New(), Period: period, MaxRankScore: score}, nil
}
