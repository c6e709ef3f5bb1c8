package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stadiumfit/scorecard/internal/service"
	"github.com/stadiumfit/scorecard/pkg/entity"
	"github.com/stretchr/testify/assert"
)

// fakeCatalog prices entries from a fixed table and serves fixed targets.
type fakeCatalog struct {
	points  map[string]int
	targets entity.Targets
}

func (f *fakeCatalog) ResolveCategories() []entity.KpiCategory        { return nil }
func (f *fakeCatalog) ResolveActions() []entity.KpiAction             { return nil }
func (f *fakeCatalog) ActionsByCategory() map[string][]entity.KpiAction { return nil }

func (f *fakeCatalog) PointsFor(actionID string) int {
	return f.points[actionID]
}

func (f *fakeCatalog) TargetsAsOf(date string) entity.Targets {
	return f.targets
}

// wednesday is a fixed mid-week instant used as "now" throughout.
var wednesday = time.Date(2026, 8, 26, 14, 30, 0, 0, time.UTC)

func newTestLedger(t *testing.T, cat service.CatalogReader) *service.LedgerService {
	t.Helper()
	ls := service.NewLedgerServiceWithClock(newFakeDocsRepo(), cat, func() time.Time { return wednesday })
	if err := ls.Hydrate(context.Background()); err != nil {
		t.Fatal(err)
	}
	return ls
}

func defaultFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		points: map[string]int{
			"new_lead":            1,
			"converted_to_member": 10,
			"checkin_call":        2,
		},
		targets: entity.Targets{Daily: 40, Weekly: 120, Monthly: 1000},
	}
}

func TestWeekBounds(t *testing.T) {
	cases := []struct {
		name  string
		now   time.Time
		start string
		end   string
	}{
		{"wednesday", wednesday, "2026-08-24", "2026-08-30"},
		{"monday is its own week start", time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), "2026-08-24", "2026-08-30"},
		{"sunday closes the prior week", time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC), "2026-08-24", "2026-08-30"},
		{"next monday rolls over", time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), "2026-08-31", "2026-09-06"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := service.WeekBounds(tc.now)
			assert.Equal(t, tc.start, start)
			assert.Equal(t, tc.end, end)
		})
	}
}

func TestLedgerSelection(t *testing.T) {
	ls := newTestLedger(t, defaultFakeCatalog())
	t.Run("quantities accumulate per action", func(t *testing.T) {
		ls.SetQuantity("1", "new_lead", 3)
		ls.SetQuantity("1", "checkin_call", 1)
		assert.Equal(t, map[string]int{"new_lead": 3, "checkin_call": 1}, ls.Selection("1"))
	})
	t.Run("zero removes the action", func(t *testing.T) {
		ls.SetQuantity("1", "checkin_call", 0)
		assert.Equal(t, map[string]int{"new_lead": 3}, ls.Selection("1"))
	})
	t.Run("buffers are per user", func(t *testing.T) {
		assert.Empty(t, ls.Selection("2"))
	})
	t.Run("returned map is a copy", func(t *testing.T) {
		sel := ls.Selection("1")
		sel["new_lead"] = 99
		assert.Equal(t, map[string]int{"new_lead": 3}, ls.Selection("1"))
	})
	t.Run("reset clears everything", func(t *testing.T) {
		ls.ResetSelection("1")
		assert.Empty(t, ls.Selection("1"))
	})
}

func TestLedgerSubmit(t *testing.T) {
	ls := newTestLedger(t, defaultFakeCatalog())
	ctx := context.Background()
	t.Run("empty selection is a no-op", func(t *testing.T) {
		appended, err := ls.Submit(ctx, "1")
		assert.NoError(t, err)
		assert.Zero(t, appended)
	})
	t.Run("one entry per unit of quantity", func(t *testing.T) {
		ls.SetQuantity("1", "new_lead", 3)
		ls.SetQuantity("1", "converted_to_member", 1)
		appended, err := ls.Submit(ctx, "1")
		assert.NoError(t, err)
		assert.Equal(t, 4, appended)
		assert.Empty(t, ls.Selection("1"))
	})
	t.Run("summary reflects the submission", func(t *testing.T) {
		summary, err := ls.RecomputeSummary(ctx, "1")
		assert.NoError(t, err)
		assert.Equal(t, "2026-08-26", summary.Daily.Date)
		assert.Equal(t, 13, summary.Daily.Total)
		assert.Equal(t, 3, summary.Daily.Actions["new_lead"])
		assert.Equal(t, 1, summary.Daily.Actions["converted_to_member"])
		assert.Equal(t, 13, summary.Weekly.Total)
		assert.Equal(t, "2026-08-24", summary.Weekly.StartDate)
		assert.Equal(t, "2026-08-30", summary.Weekly.EndDate)
		assert.Equal(t, "2026-08", summary.TeamMonthly.Month)
		assert.Equal(t, 13, summary.TeamMonthly.Total)
	})
	t.Run("recompute is idempotent", func(t *testing.T) {
		first, err := ls.RecomputeSummary(ctx, "1")
		assert.NoError(t, err)
		second, err := ls.RecomputeSummary(ctx, "1")
		assert.NoError(t, err)
		assert.Equal(t, *first, *second)
	})
	t.Run("team monthly counts every user", func(t *testing.T) {
		ls.SetQuantity("2", "checkin_call", 2)
		appended, err := ls.Submit(ctx, "2")
		assert.NoError(t, err)
		assert.Equal(t, 2, appended)
		summary, err := ls.RecomputeSummary(ctx, "1")
		assert.NoError(t, err)
		assert.Equal(t, 13, summary.Daily.Total)
		assert.Equal(t, 17, summary.TeamMonthly.Total)
	})
}

func TestLedgerRepricing(t *testing.T) {
	cat := defaultFakeCatalog()
	ls := newTestLedger(t, cat)
	ctx := context.Background()
	ls.SetQuantity("1", "converted_to_member", 2)
	_, err := ls.Submit(ctx, "1")
	assert.NoError(t, err)
	t.Run("entries priced at current points", func(t *testing.T) {
		summary, err := ls.RecomputeSummary(ctx, "1")
		assert.NoError(t, err)
		assert.Equal(t, 20, summary.Daily.Total)
	})
	t.Run("point edits apply retroactively", func(t *testing.T) {
		cat.points["converted_to_member"] = 15
		summary, err := ls.RecomputeSummary(ctx, "1")
		assert.NoError(t, err)
		assert.Equal(t, 30, summary.Daily.Total)
	})
	t.Run("deleted actions price at zero but stay counted", func(t *testing.T) {
		delete(cat.points, "converted_to_member")
		summary, err := ls.RecomputeSummary(ctx, "1")
		assert.NoError(t, err)
		assert.Zero(t, summary.Daily.Total)
		assert.Equal(t, 2, summary.Daily.Actions["converted_to_member"])
	})
}

func TestLedgerProgress(t *testing.T) {
	cat := defaultFakeCatalog()
	cat.targets = entity.Targets{Daily: 100, Weekly: 100, Monthly: 100}
	ls := newTestLedger(t, cat)
	ctx := context.Background()
	t.Run("zero progress", func(t *testing.T) {
		p := ls.DailyProgress("1")
		assert.Equal(t, entity.Progress{Current: 0, Target: 100, Percentage: 0}, p)
	})
	t.Run("percentage rounds", func(t *testing.T) {
		ls.SetQuantity("1", "new_lead", 33)
		_, err := ls.Submit(ctx, "1")
		assert.NoError(t, err)
		p := ls.DailyProgress("1")
		assert.Equal(t, 33, p.Percentage)
	})
	t.Run("percentage clamps at 100", func(t *testing.T) {
		ls.SetQuantity("1", "converted_to_member", 12)
		_, err := ls.Submit(ctx, "1")
		assert.NoError(t, err)
		p := ls.DailyProgress("1")
		assert.Equal(t, 153, p.Current)
		assert.Equal(t, 100, p.Percentage)
	})
	t.Run("weekly and team monthly share the window math", func(t *testing.T) {
		assert.Equal(t, 100, ls.WeeklyProgress("1").Percentage)
		assert.Equal(t, 100, ls.TeamMonthlyProgress().Percentage)
	})
}

func TestLedgerBuildReport(t *testing.T) {
	ls := newTestLedger(t, defaultFakeCatalog())
	ctx := context.Background()
	ls.SetQuantity("1", "new_lead", 2)
	_, err := ls.Submit(ctx, "1")
	assert.NoError(t, err)
	ls.SetQuantity("2", "checkin_call", 1)
	_, err = ls.Submit(ctx, "2")
	assert.NoError(t, err)
	t.Run("range covers every user by default", func(t *testing.T) {
		data := ls.BuildReport("2026-08-01", "2026-08-31", "")
		assert.Equal(t, 3, data.TotalEntries)
		assert.Equal(t, 4, data.TotalPoints)
		assert.Equal(t, 2, data.ActionBreakdown["new_lead"])
		assert.Len(t, data.UserBreakdown, 2)
		assert.Len(t, data.FilteredEntries, 3)
	})
	t.Run("user filter narrows the rows", func(t *testing.T) {
		data := ls.BuildReport("2026-08-01", "2026-08-31", "2")
		assert.Equal(t, 1, data.TotalEntries)
		assert.Equal(t, 2, data.TotalPoints)
		assert.Equal(t, entity.UserReportStats{Entries: 1, Points: 2}, data.UserBreakdown["2"])
	})
	t.Run("dates outside the range drop out", func(t *testing.T) {
		data := ls.BuildReport("2026-09-01", "2026-09-30", "")
		assert.Zero(t, data.TotalEntries)
		assert.Empty(t, data.FilteredEntries)
	})
}
