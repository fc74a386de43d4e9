package services

import (
	"context"
	"testing"

	"github.com/civilink/civilink-backend/internal/logger"
	"github.com/civilink/civilink-backend/internal/types"
)

func TestUpdateGlobalMaxStoresPeriodMax(t *testing.T) {
	a := supportOfficer("a")
	b := supportOfficer("b")
	monthlyRepo := newFakeMonthlyRepo()
	globalMaxRepo := newFakeGlobalMaxRepo()

	_ = monthlyRepo.Upsert(context.Background(), nil, monthlyRow(a.ID, "2024-03", 10, 7, 0, 0, 1000))
	_ = monthlyRepo.Upsert(context.Background(), nil, monthlyRow(b.ID, "2024-03", 20, 18, 0, 0, 1000))

	svc := NewScoreBaselineService(nil, logger.NewNop(), monthlyRepo, newFakeCumulativeRepo(), globalMaxRepo)
	if err := svc.UpdateGlobalMax(context.Background(), "2024-03"); err != nil {
		t.Fatalf("UpdateGlobalMax: %v", err)
	}

	want := unifiedScore(18, 20)
	if got := globalMaxRepo.rows["2024-03"]; !almostEqual(got, want) {
		t.Fatalf("stored max = %v, want %v", got, want)
	}
}

func TestUpdateGlobalMaxLeavesEmptyPeriodUnset(t *testing.T) {
	globalMaxRepo := newFakeGlobalMaxRepo()
	svc := NewScoreBaselineService(nil, logger.NewNop(), newFakeMonthlyRepo(), newFakeCumulativeRepo(), globalMaxRepo)
	if err := svc.UpdateGlobalMax(context.Background(), "2024-09"); err != nil {
		t.Fatalf("UpdateGlobalMax: %v", err)
	}
	if _, ok := globalMaxRepo.rows["2024-09"]; ok {
		t.Fatalf("baseline stored for period with no monthly rows")
	}
}

func TestGetGlobalMaxDefaults(t *testing.T) {
	svc := NewScoreBaselineService(nil, logger.NewNop(), newFakeMonthlyRepo(), newFakeCumulativeRepo(), newFakeGlobalMaxRepo())

	period := "2024-03"
	got, err := svc.GetGlobalMax(context.Background(), &period)
	if err != nil {
		t.Fatalf("GetGlobalMax(period): %v", err)
	}
	if got != 1 {
		t.Fatalf("missing period baseline = %v, want 1", got)
	}

	got, err = svc.GetGlobalMax(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetGlobalMax(nil): %v", err)
	}
	if got != 1 {
		t.Fatalf("missing cumulative baseline = %v, want 1", got)
	}
}

func TestGetGlobalMaxAllTimeFromCumulative(t *testing.T) {
	cumulativeRepo := newFakeCumulativeRepo()
	a := supportOfficer("a")
	b := supportOfficer("b")
	_ = cumulativeRepo.Upsert(context.Background(), nil, &types.OfficerStatsCumulative{OfficerID: a.ID, RankScore: 1.2})
	_ = cumulativeRepo.Upsert(context.Background(), nil, &types.OfficerStatsCumulative{OfficerID: b.ID, RankScore: 2.5})

	svc := NewScoreBaselineService(nil, logger.NewNop(), newFakeMonthlyRepo(), cumulativeRepo, newFakeGlobalMaxRepo())
	got, err := svc.GetGlobalMax(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetGlobalMax(nil): %v", err)
	}
	if !almostEqual(got, 2.5) {
		t.Fatalf("all-time max = %v, want 2.5", got)
	}
}
