package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/mirror-engine/cycle"
	"github.com/warp/mirror-engine/factory"
	"github.com/warp/mirror-engine/mirror"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestShiftCodes_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, d := range factory.StandardCatalog().Definitions() {
		require.NoError(t, store.SaveShiftCode(ctx, d))
	}
	half := cycle.ShiftCodeDefinition{
		Code:        "06BC",
		Begin:       cycle.NewLocalTime(6, 0),
		End:         cycle.NewLocalTime(13, 30),
		Category:    cycle.CategoryDays,
		LengthHours: decimal.RequireFromString("7.5"),
	}
	require.NoError(t, store.SaveShiftCode(ctx, half))

	defs, err := store.ListShiftCodes(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 11)

	cat, err := cycle.NewCatalog(defs...)
	require.NoError(t, err)
	got, kind := cat.Lookup("06BC")
	require.Equal(t, cycle.KindWork, kind)
	assert.Equal(t, "13:30", got.End.String())
	assert.True(t, decimal.RequireFromString("7.5").Equal(got.LengthHours))

	got, _ = cat.Lookup("22MN")
	assert.Equal(t, cycle.CategoryMidnights, got.Category)
}

func TestLines(t *testing.T) {
	// GIVEN: Lines saved out of number order
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveLine(ctx, mirror.Line{ID: "b", Number: 2, Name: "Line 2", Pattern: cycle.NewPattern("14AF", "----")}))
	require.NoError(t, store.SaveLine(ctx, mirror.Line{ID: "a", Number: 1, Name: "Line 1", Operation: "Tower", Pattern: cycle.NewPattern("06BC", "----")}))

	// WHEN: Listing
	lines, err := store.ListLines(ctx)
	require.NoError(t, err)

	// THEN: Ordered by number, patterns intact
	require.Len(t, lines, 2)
	assert.Equal(t, "a", lines[0].ID)
	assert.Equal(t, "Tower", lines[0].Operation)
	assert.Equal(t, []string{"14AF", "----"}, lines[1].Pattern.Codes)

	line, err := store.GetLine(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "", line.Operation)
	assert.Equal(t, 2, line.Pattern.Len())
}

func TestLines_Errors(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetLine(ctx, "missing")
	assert.ErrorIs(t, err, mirror.ErrLineNotFound)
	assert.ErrorIs(t, store.DeleteLine(ctx, "missing"), mirror.ErrLineNotFound)

	err = store.SaveLine(ctx, mirror.Line{ID: "x", Number: 1, Pattern: cycle.NewPattern()})
	assert.ErrorIs(t, err, cycle.ErrInvalidPattern)

	require.NoError(t, store.SaveLine(ctx, mirror.Line{ID: "a", Number: 1, Pattern: cycle.NewPattern("06BC")}))
	err = store.SaveLine(ctx, mirror.Line{ID: "b", Number: 1, Pattern: cycle.NewPattern("06BC")})
	assert.ErrorIs(t, err, ErrDuplicateLineNumber)

	// Updating in place keeps the number.
	require.NoError(t, store.SaveLine(ctx, mirror.Line{ID: "a", Number: 1, Name: "Renamed", Pattern: cycle.NewPattern("14AF")}))
	line, err := store.GetLine(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", line.Name)

	require.NoError(t, store.DeleteLine(ctx, "a"))
	_, err = store.GetLine(ctx, "a")
	assert.True(t, mirror.IsNotFound(err))
}

func TestHolidays_Range(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, h := range []cycle.Holiday{
		{ID: "h3", Date: cycle.NewDate(2026, time.December, 25), Name: "Christmas Day"},
		{ID: "h1", Date: cycle.NewDate(2026, time.January, 1), Name: "New Year's Day"},
		{ID: "h2", Date: cycle.NewDate(2026, time.July, 1), Name: "Canada Day"},
	} {
		require.NoError(t, store.SaveHoliday(ctx, h))
	}

	hols, err := store.ListHolidays(ctx, cycle.NewDate(2026, time.January, 1), cycle.NewDate(2026, time.July, 1))
	require.NoError(t, err)
	require.Len(t, hols, 2)
	assert.Equal(t, "h1", hols[0].ID)
	assert.Equal(t, "2026-07-01", hols[1].Date.String())

	err = store.SaveHoliday(ctx, cycle.Holiday{ID: "dup", Date: cycle.NewDate(2026, time.July, 1), Name: "Again"})
	assert.ErrorIs(t, err, ErrDuplicateHoliday)

	require.NoError(t, store.DeleteHoliday(ctx, "h2"))
	assert.ErrorIs(t, store.DeleteHoliday(ctx, "h2"), ErrHolidayNotFound)

	all, err := store.GetAllHolidays(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestParameters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// GIVEN: Nothing saved yet
	p, err := store.GetParameters(ctx)
	require.NoError(t, err)
	assert.True(t, p.StartDate.IsZero())

	// WHEN: The admin sets the bid period twice
	require.NoError(t, store.SaveParameters(ctx, cycle.ScheduleParameters{StartDate: cycle.NewDate(2026, time.January, 4), NumCycles: 3}))
	require.NoError(t, store.SaveParameters(ctx, cycle.ScheduleParameters{StartDate: cycle.NewDate(2026, time.March, 1), NumCycles: 1}))

	// THEN: The latest values win
	p, err = store.GetParameters(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", p.StartDate.String())
	assert.Equal(t, 1, p.NumCycles)

	err = store.SaveParameters(ctx, cycle.ScheduleParameters{NumCycles: 1})
	assert.ErrorIs(t, err, cycle.ErrInvalidParameters)

	err = store.SaveParameters(ctx, cycle.ScheduleParameters{StartDate: cycle.NewDate(2026, time.March, 1), NumCycles: 1 << 60})
	assert.ErrorIs(t, err, cycle.ErrInvalidParameters)

	p, err = store.GetParameters(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, p.NumCycles)
}

func TestStore_ServesMirrorService(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, d := range factory.StandardCatalog().Definitions() {
		require.NoError(t, store.SaveShiftCode(ctx, d))
	}
	require.NoError(t, store.SaveParameters(ctx, cycle.ScheduleParameters{StartDate: cycle.NewDate(2026, time.January, 5), NumCycles: 1}))
	require.NoError(t, store.SaveLine(ctx, mirror.Line{ID: "u", Number: 1, Pattern: cycle.NewPattern("06BC", "06BC", "----")}))
	require.NoError(t, store.SaveLine(ctx, mirror.Line{ID: "o", Number: 2, Pattern: cycle.NewPattern("07BC", "14AF", "----")}))

	svc := mirror.NewService(store, nil)
	results, err := svc.FindMirrors(ctx, mirror.MirrorQuery{UserLineID: "u"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, decimal.NewFromInt(50).Equal(results[0].Comparison.UserShiftPatternScore))
}

func TestReset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveLine(ctx, mirror.Line{ID: "a", Number: 1, Pattern: cycle.NewPattern("06BC")}))
	require.NoError(t, store.Reset(ctx))

	lines, err := store.ListLines(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
