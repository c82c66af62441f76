package mirror_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/warp/mirror-engine/cycle"
	"github.com/warp/mirror-engine/factory"
	"github.com/warp/mirror-engine/mirror"
	"github.com/warp/mirror-engine/mirror/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =============================================================================
// TEST SETUP
// =============================================================================

var monday = cycle.NewDate(2026, time.January, 5)

func week(code string, workdays int) []string {
	codes := make([]string, 7)
	for i := range codes {
		if i < workdays {
			codes[i] = code
		} else {
			codes[i] = cycle.OffCode
		}
	}
	return codes
}

func newTestService(t *testing.T) (*mirror.Service, *store.Memory) {
	mem := store.NewMemory()
	mem.PutShiftCodes(factory.StandardCatalog().Definitions()...)
	mem.SetParameters(cycle.ScheduleParameters{StartDate: monday, NumCycles: 2})

	mixed := append(append([]string{}, week("08AA", 3)[:3]...), "14AF", "14AF", cycle.OffCode, cycle.OffCode)
	for _, l := range []mirror.Line{
		{ID: "line-1", Number: 1, Name: "Line 1", Pattern: cycle.NewPattern(week("06BC", 5)...)},
		{ID: "line-3", Number: 3, Name: "Line 3", Pattern: cycle.NewPattern(week("14AF", 5)...)},
		{ID: "line-2", Number: 2, Name: "Line 2", Pattern: cycle.NewPattern(week("07BC", 5)...)},
		{ID: "line-4", Number: 4, Name: "Line 4", Pattern: cycle.NewPattern(mixed...)},
		{ID: "line-5", Number: 5, Name: "Line 5", Pattern: cycle.NewPattern(week("07BC", 5)...)},
	} {
		mem.PutLine(l)
	}

	svc := mirror.NewService(mem, zaptest.NewLogger(t))
	svc.Workers = 3
	return svc, mem
}

func lineIDs(results []cycle.ComparisonResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.LineID
	}
	return out
}

// =============================================================================
// FIND MIRRORS
// =============================================================================

func TestFindMirrors_RanksByScore(t *testing.T) {
	// GIVEN: Four candidate lines, two tied at a perfect score
	// WHEN: Ranking by pattern score, best first
	// THEN: Ties keep line-number order, the user's own line is excluded
	svc, _ := newTestService(t)

	results, err := svc.FindMirrors(context.Background(), mirror.MirrorQuery{
		UserLineID: "line-1",
		Metric:     cycle.MetricUserShiftPatternScore,
		Direction:  cycle.Desc,
	})
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"line-2", "line-5", "line-4", "line-3"}, lineIDs(results)); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
	assert.True(t, decimal.NewFromInt(60).Equal(results[2].Comparison.UserShiftPatternScore))
	assert.Equal(t, 10, results[3].Comparison.DifferentCategoryCount)
	assert.Equal(t, 10, results[3].Comparison.SignificantDifferenceCount)
}

func TestFindMirrors_DefaultsAndCandidates(t *testing.T) {
	svc, _ := newTestService(t)

	results, err := svc.FindMirrors(context.Background(), mirror.MirrorQuery{
		UserLineID:   "line-1",
		CandidateIDs: []string{"line-4", "line-3", "line-1", "line-3"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"line-4", "line-3"}, lineIDs(results))
}

func TestFindMirrors_AscendingByDifferences(t *testing.T) {
	svc, _ := newTestService(t)

	results, err := svc.FindMirrors(context.Background(), mirror.MirrorQuery{
		UserLineID: "line-1",
		Metric:     cycle.MetricDifferentCategoryCount,
		Direction:  cycle.Asc,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"line-2", "line-5", "line-4", "line-3"}, lineIDs(results))
}

func TestFindMirrors_UnknownMetric(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.FindMirrors(context.Background(), mirror.MirrorQuery{
		UserLineID: "line-1",
		Metric:     "happiness",
	})
	assert.ErrorIs(t, err, cycle.ErrUnknownMetric)
}

func TestFindMirrors_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.FindMirrors(context.Background(), mirror.MirrorQuery{UserLineID: "line-99"})
	assert.True(t, mirror.IsNotFound(err))

	_, err = svc.FindMirrors(context.Background(), mirror.MirrorQuery{UserLineID: "line-1", CandidateIDs: []string{"line-99"}})
	assert.True(t, mirror.IsNotFound(err))
}

func TestFindMirrors_CanceledContext(t *testing.T) {
	svc, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.FindMirrors(ctx, mirror.MirrorQuery{UserLineID: "line-1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindMirrors_Window(t *testing.T) {
	svc, _ := newTestService(t)
	window := cycle.Period{Start: monday, End: monday.AddDays(6)}

	results, err := svc.FindMirrors(context.Background(), mirror.MirrorQuery{
		UserLineID: "line-1",
		Metric:     cycle.MetricDifferentCategoryCount,
		Direction:  cycle.Desc,
		Window:     &window,
	})
	require.NoError(t, err)
	require.Equal(t, "line-3", results[0].LineID)
	assert.Equal(t, 5, results[0].Comparison.DifferentCategoryCount)
	assert.Len(t, results[0].Comparison.Records, 7)
}

func TestFindMirrors_ReadsParametersEveryCall(t *testing.T) {
	// GIVEN: An admin shrinks the bid period to zero cycles between calls
	// THEN: The next call sees the empty window; nothing is cached
	svc, mem := newTestService(t)
	ctx := context.Background()

	before, err := svc.FindMirrors(ctx, mirror.MirrorQuery{UserLineID: "line-1"})
	require.NoError(t, err)
	assert.Len(t, before[0].Comparison.Records, 14)

	mem.SetParameters(cycle.ScheduleParameters{StartDate: monday, NumCycles: 0})

	after, err := svc.FindMirrors(ctx, mirror.MirrorQuery{UserLineID: "line-1"})
	require.NoError(t, err)
	for _, r := range after {
		assert.Empty(t, r.Comparison.Records)
		assert.True(t, r.Comparison.UserShiftPatternScore.IsZero())
	}
}

// =============================================================================
// SINGLE-LINE OPERATIONS
// =============================================================================

func TestSchedule(t *testing.T) {
	svc, _ := newTestService(t)

	sched, err := svc.Schedule(context.Background(), "line-3")
	require.NoError(t, err)
	assert.Equal(t, 14, sched.Expansion.Len())
	assert.Equal(t, "14AF", sched.Expansion.At(7).Code)
	assert.Equal(t, 2, sched.Expansion.At(7).CycleNumber)

	_, err = svc.Schedule(context.Background(), "nope")
	assert.ErrorIs(t, err, mirror.ErrLineNotFound)
}

func TestStatistics_HolidaysInsidePeriod(t *testing.T) {
	svc, mem := newTestService(t)
	mem.PutHolidays(
		cycle.Holiday{ID: "h1", Date: monday.AddDays(2), Name: "Wednesday"},
		cycle.Holiday{ID: "h2", Date: cycle.NewDate(2026, time.December, 25), Name: "Christmas Day"},
	)

	ls, err := svc.Statistics(context.Background(), "line-1")
	require.NoError(t, err)

	assert.Equal(t, 10, ls.Stats.WorkDays)
	assert.Equal(t, 4, ls.Stats.DaysOff)
	assert.Equal(t, 1, ls.Stats.HolidaysWorked)
	assert.Equal(t, 1, ls.Stats.TotalHolidays)
	assert.Equal(t, 2, ls.Stats.TotalWeekendsInPeriod)
	assert.Equal(t, 0, ls.Stats.WeekendPairsWorked)
	assert.Equal(t, "2026-01-18", ls.Period.End.String())
}

func TestCompare_Detail(t *testing.T) {
	svc, _ := newTestService(t)

	lc, err := svc.Compare(context.Background(), "line-1", "line-4", nil)
	require.NoError(t, err)
	assert.Equal(t, "line-4", lc.Other.ID)
	assert.Len(t, lc.Comparison.Records, 14)
	assert.Equal(t, 6, lc.Comparison.SameCategoryCount)
	assert.Equal(t, 4, lc.Comparison.DifferentCategoryCount)
}

func TestService_UnrecognizedCodes(t *testing.T) {
	svc, mem := newTestService(t)
	mem.PutLine(mirror.Line{ID: "legacy", Number: 9, Pattern: cycle.NewPattern(week("OLD1", 5)...)})

	lc, err := svc.Compare(context.Background(), "line-1", "legacy", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"OLD1"}, lc.Comparison.UnrecognizedCodes)
	assert.Equal(t, 10, lc.Comparison.UserWorksOtherOffCount)

	ls, err := svc.Statistics(context.Background(), "legacy")
	require.NoError(t, err)
	assert.Equal(t, 0, ls.Stats.WorkDays)
	assert.Equal(t, 10, ls.Stats.UnrecognizedDays)
}
