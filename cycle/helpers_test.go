package cycle_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/warp/mirror-engine/cycle"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

const off = cycle.OffCode

// monday is the anchor used by most fixtures.
var monday = cycle.NewDate(2026, time.January, 5)

func def(code string, begin, end string, cat cycle.Category, hours int64) cycle.ShiftCodeDefinition {
	b, err := cycle.ParseLocalTime(begin)
	if err != nil {
		panic(err)
	}
	e, err := cycle.ParseLocalTime(end)
	if err != nil {
		panic(err)
	}
	return cycle.ShiftCodeDefinition{
		Code:        code,
		Begin:       b,
		End:         e,
		Category:    cat,
		LengthHours: decimal.NewFromInt(hours),
	}
}

func testCatalog() *cycle.Catalog {
	return cycle.MustCatalog(
		def("06BC", "06:00", "14:00", cycle.CategoryDays, 8),
		def("08AA", "08:00", "16:00", cycle.CategoryDays, 8),
		def("0830", "08:30", "16:00", cycle.CategoryLateDays, 8),
		def("0850", "08:50", "16:00", cycle.CategoryLateDays, 8),
		def("14AF", "14:00", "22:00", cycle.CategoryAfternoons, 8),
		def("2330", "23:30", "07:30", cycle.CategoryMidnights, 8),
		def("0015", "00:15", "08:00", cycle.CategoryOther, 8),
		def("2345", "23:45", "07:45", cycle.CategoryMidnights, 8),
	)
}

func params(cycles int) cycle.ScheduleParameters {
	return cycle.ScheduleParameters{StartDate: monday, NumCycles: cycles}
}

func expand(t *testing.T, cycles int, codes ...string) []cycle.ExpandedDay {
	t.Helper()
	days, err := cycle.ExpandDays(cycle.NewPattern(codes...), params(cycles))
	require.NoError(t, err)
	return days
}

// fortnight builds a 14-day pattern of days off with the given overrides.
func fortnight(overrides map[int]string) []string {
	codes := make([]string, 14)
	for i := range codes {
		codes[i] = off
	}
	for i, c := range overrides {
		codes[i] = c
	}
	return codes
}
