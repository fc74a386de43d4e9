package services

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/civilink/civilink-backend/internal/logger"
	"github.com/civilink/civilink-backend/internal/types"
)

type analyticsFixture struct {
	officerRepo      *fakeOfficerRepo
	conversationRepo *fakeConversationRepo
	applicationRepo  *fakeApplicationRepo
	monthlyRepo      *fakeMonthlyRepo
	cumulativeRepo   *fakeCumulativeRepo
	globalMaxRepo    *fakeGlobalMaxRepo
	svc              AnalyticsService
}

func newAnalyticsFixture(officers []*types.Officer, convs []*types.Conversation, apps []*types.Application) *analyticsFixture {
	f := &analyticsFixture{
		officerRepo:      newFakeOfficerRepo(officers...),
		conversationRepo: &fakeConversationRepo{rows: convs},
		applicationRepo:  &fakeApplicationRepo{rows: apps},
		monthlyRepo:      newFakeMonthlyRepo(),
		cumulativeRepo:   newFakeCumulativeRepo(),
		globalMaxRepo:    newFakeGlobalMaxRepo(),
	}
	log := logger.NewNop()
	monthly := NewMonthlyStatsService(nil, log, f.conversationRepo, f.applicationRepo, f.officerRepo, f.monthlyRepo)
	cumulative := NewCumulativeStatsService(nil, log, f.officerRepo, f.monthlyRepo, f.cumulativeRepo)
	baseline := NewScoreBaselineService(nil, log, f.monthlyRepo, f.cumulativeRepo, f.globalMaxRepo)
	f.svc = NewAnalyticsService(nil, log, f.conversationRepo, f.applicationRepo, monthly, cumulative, baseline)
	return f
}

func (f *analyticsFixture) storedPeriods() []string {
	seen := make(map[string]struct{})
	for _, row := range f.monthlyRepo.rows {
		seen[row.Period] = struct{}{}
	}
	periods := make([]string, 0, len(seen))
	for p := range seen {
		periods = append(periods, p)
	}
	sort.Strings(periods)
	return periods
}

func TestRefreshAnalyticsEmptyDataset(t *testing.T) {
	f := newAnalyticsFixture(nil, nil, nil)

	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	if err := f.svc.RefreshAnalytics(context.Background(), now, DefaultLookbackMonths); err != nil {
		t.Fatalf("RefreshAnalytics: %v", err)
	}
	// With no activity the run still targets the current period, which then
	// produces no rows and no baseline.
	if len(f.monthlyRepo.rows) != 0 || len(f.cumulativeRepo.rows) != 0 || len(f.globalMaxRepo.rows) != 0 {
		t.Fatalf("empty dataset wrote rows: monthly=%d cumulative=%d globalMax=%d",
			len(f.monthlyRepo.rows), len(f.cumulativeRepo.rows), len(f.globalMaxRepo.rows))
	}
}

func TestRefreshAnalyticsFullPipeline(t *testing.T) {
	officer := supportOfficer("selam")
	march := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	april := time.Date(2024, 4, 12, 10, 0, 0, 0, time.UTC)
	convs := []*types.Conversation{
		conversationAt(officer.ID, types.ConversationStatusClosed, march, time.Hour),
		conversationAt(officer.ID, types.ConversationStatusOpen, march, 0),
		conversationAt(officer.ID, types.ConversationStatusClosed, april, 2*time.Hour),
	}
	f := newAnalyticsFixture([]*types.Officer{officer}, convs, nil)

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if err := f.svc.RefreshAnalytics(context.Background(), now, DefaultLookbackMonths); err != nil {
		t.Fatalf("RefreshAnalytics: %v", err)
	}

	if got := f.storedPeriods(); !reflect.DeepEqual(got, []string{"2024-03", "2024-04"}) {
		t.Fatalf("stored periods = %v, want [2024-03 2024-04]", got)
	}

	cum, ok := f.cumulativeRepo.rows[officer.ID]
	if !ok {
		t.Fatalf("no cumulative row for officer")
	}
	if cum.RequestsTotal != 3 || cum.RequestsProcessed != 2 {
		t.Fatalf("cumulative requests = %d/%d, want 2/3", cum.RequestsProcessed, cum.RequestsTotal)
	}

	marchRow := f.monthlyRepo.rows[monthlyKey(officer.ID, "2024-03")]
	if got := f.globalMaxRepo.rows["2024-03"]; !almostEqual(got, marchRow.RankScore) {
		t.Fatalf("global max for 2024-03 = %v, want %v", got, marchRow.RankScore)
	}
	if _, ok := f.globalMaxRepo.rows["2024-04"]; !ok {
		t.Fatalf("no global max stored for 2024-04")
	}
}

func TestRefreshAnalyticsLookbackBound(t *testing.T) {
	officer := supportOfficer("selam")
	var convs []*types.Conversation
	// 15 consecutive months of activity, Jan 2023 through Mar 2024.
	for i := 0; i < 15; i++ {
		updated := time.Date(2023, time.Month(1+i), 5, 8, 0, 0, 0, time.UTC)
		convs = append(convs, conversationAt(officer.ID, types.ConversationStatusClosed, updated, time.Hour))
	}
	f := newAnalyticsFixture([]*types.Officer{officer}, convs, nil)

	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	if err := f.svc.RefreshAnalytics(context.Background(), now, 12); err != nil {
		t.Fatalf("RefreshAnalytics: %v", err)
	}

	periods := f.storedPeriods()
	if len(periods) != 12 {
		t.Fatalf("stored %d periods, want 12: %v", len(periods), periods)
	}
	if periods[0] != "2023-04" || periods[len(periods)-1] != "2024-03" {
		t.Fatalf("lookback window = [%s, %s], want [2023-04, 2024-03]", periods[0], periods[len(periods)-1])
	}
}

func TestRefreshAnalyticsContinuesPastFailedPeriod(t *testing.T) {
	officer := supportOfficer("selam")
	march := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	april := time.Date(2024, 4, 12, 10, 0, 0, 0, time.UTC)
	convs := []*types.Conversation{
		conversationAt(officer.ID, types.ConversationStatusClosed, march, time.Hour),
		conversationAt(officer.ID, types.ConversationStatusClosed, april, time.Hour),
	}
	f := newAnalyticsFixture([]*types.Officer{officer}, convs, nil)
	f.conversationRepo.rangeErr = func(start, end time.Time) error {
		if start.Month() == time.March {
			return fmt.Errorf("connection reset")
		}
		return nil
	}

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	err := f.svc.RefreshAnalytics(context.Background(), now, DefaultLookbackMonths)
	if err == nil {
		t.Fatalf("RefreshAnalytics succeeded, want error for the failed period")
	}
	if got := f.storedPeriods(); !reflect.DeepEqual(got, []string{"2024-04"}) {
		t.Fatalf("stored periods = %v, want [2024-04] despite the March failure", got)
	}
	if _, ok := f.globalMaxRepo.rows["2024-04"]; !ok {
		t.Fatalf("surviving period has no global max")
	}
}

func TestRefreshAnalyticsIdempotent(t *testing.T) {
	officer := supportOfficer("selam")
	march := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	convs := []*types.Conversation{
		conversationAt(officer.ID, types.ConversationStatusClosed, march, time.Hour),
		conversationAt(officer.ID, types.ConversationStatusPending, march, 0),
	}
	f := newAnalyticsFixture([]*types.Officer{officer}, convs, nil)

	now := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	if err := f.svc.RefreshAnalytics(context.Background(), now, DefaultLookbackMonths); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	firstMonthly := snapshotMonthly(f.monthlyRepo)
	firstCumulative := snapshotCumulative(f.cumulativeRepo)
	firstGlobal := make(map[string]float64, len(f.globalMaxRepo.rows))
	for k, v := range f.globalMaxRepo.rows {
		firstGlobal[k] = v
	}

	if err := f.svc.RefreshAnalytics(context.Background(), now, DefaultLookbackMonths); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if !reflect.DeepEqual(firstMonthly, snapshotMonthly(f.monthlyRepo)) {
		t.Fatalf("monthly rows changed across identical runs")
	}
	if !reflect.DeepEqual(firstCumulative, snapshotCumulative(f.cumulativeRepo)) {
		t.Fatalf("cumulative rows changed across identical runs")
	}
	if !reflect.DeepEqual(firstGlobal, f.globalMaxRepo.rows) {
		t.Fatalf("global max rows changed across identical runs")
	}
}

func snapshotMonthly(repo *fakeMonthlyRepo) map[string]types.OfficerStatsMonthly {
	out := make(map[string]types.OfficerStatsMonthly, len(repo.rows))
	for k, v := range repo.rows {
		out[k] = v
	}
	return out
}

func snapshotCumulative(repo *fakeCumulativeRepo) map[string]types.OfficerStatsCumulative {
	out := make(map[string]types.OfficerStatsCumulative, len(repo.rows))
	for k, v := range repo.rows {
		out[k.String()] = v
	}
	return out
}
