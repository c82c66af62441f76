package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/mirror-engine/cycle"
	"github.com/warp/mirror-engine/mirror"
)

func TestMemory_ListingOrder(t *testing.T) {
	// GIVEN: Reference data inserted out of order
	mem := NewMemory()
	mem.PutLine(mirror.Line{ID: "c", Number: 3, Pattern: cycle.NewPattern("06BC")})
	mem.PutLine(mirror.Line{ID: "a", Number: 1, Pattern: cycle.NewPattern("06BC")})
	mem.PutLine(mirror.Line{ID: "b", Number: 2, Pattern: cycle.NewPattern("06BC")})
	mem.PutShiftCodes(
		cycle.ShiftCodeDefinition{Code: "14AF", Category: cycle.CategoryAfternoons},
		cycle.ShiftCodeDefinition{Code: "06BC", Category: cycle.CategoryDays},
	)
	jan := func(day int) cycle.CalendarDate { return cycle.NewDate(2026, time.January, day) }
	mem.PutHolidays(
		cycle.Holiday{ID: "late", Date: jan(20), Name: "Late"},
		cycle.Holiday{ID: "early", Date: jan(2), Name: "Early"},
		cycle.Holiday{ID: "outside", Date: jan(31), Name: "Outside"},
		cycle.Holiday{ID: "mid", Date: jan(10), Name: "Mid"},
	)
	ctx := context.Background()

	// THEN: Lines by number, codes by code, holidays by date within range
	lines, err := mem.ListLines(ctx)
	require.NoError(t, err)
	var ids []string
	for _, l := range lines {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	codes, err := mem.ListShiftCodes(ctx)
	require.NoError(t, err)
	require.Len(t, codes, 2)
	assert.Equal(t, "06BC", codes[0].Code)

	hols, err := mem.ListHolidays(ctx, jan(1), jan(25))
	require.NoError(t, err)
	ids = ids[:0]
	for _, h := range hols {
		ids = append(ids, h.ID)
	}
	assert.Equal(t, []string{"early", "mid", "late"}, ids)
}

func TestMemory_LineNotFoundAndCopies(t *testing.T) {
	mem := NewMemory()
	_, err := mem.GetLine(context.Background(), "missing")
	assert.True(t, mirror.IsNotFound(err))

	mem.PutLine(mirror.Line{ID: "a", Number: 1, Pattern: cycle.NewPattern("06BC", "----")})
	got, err := mem.GetLine(context.Background(), "a")
	require.NoError(t, err)
	got.Pattern.Codes[0] = "14AF"

	again, err := mem.GetLine(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "06BC", again.Pattern.Codes[0])
}
