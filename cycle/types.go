/*
Package cycle expands cyclic shift patterns and compares the results.

PURPOSE:
  Shift workers bid on "lines": fixed-length repeating patterns of shift
  codes. This package turns a compact pattern into a dated calendar,
  compares two calendars day for day to find trade opportunities, reduces
  a calendar to statistics, and ranks comparison results.

KEY CONCEPTS IN THIS FILE (types.go):
  - ShiftCodeDefinition: reference data for one shift code
  - CyclicPattern: one entry per day of the cycle
  - ScheduleParameters: the calendar anchor shared by every expansion
  - ExpandedDay: one dated entry of an expansion

DESIGN PRINCIPLES:
  1. Pure functions: every operation depends only on explicit inputs
  2. No caching: parameters may change between calls
  3. Value objects: nothing is mutated after construction
  4. Data problems degrade, structural problems fail

DATA FLOW:
  pattern + params -> Expand -> []ExpandedDay
      -> Aggregate (single schedule statistics)
      -> Compare (paired with another expansion)
          -> Ranker.Rank (many comparison results)

SEE ALSO:
  - expander.go: CycleExpander
  - classifier.go: ShiftClassifier
  - comparison.go: ComparisonEngine
  - statistics.go: StatisticsAggregator
  - ranking.go: RankingEngine
*/
package cycle

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OffCode is the sentinel pattern entry for a day off. It is never looked up
// in the catalog.
const OffCode = "----"

// =============================================================================
// SHIFT CATEGORY
// =============================================================================

// Category is a coarse shift classification.
type Category string

const (
	CategoryDays       Category = "days"
	CategoryLateDays   Category = "late_days"
	CategoryMidDays    Category = "mid_days"
	CategoryAfternoons Category = "afternoons"
	CategoryMidnights  Category = "midnights"
	CategoryOther      Category = "other"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{
		CategoryDays, CategoryLateDays, CategoryMidDays,
		CategoryAfternoons, CategoryMidnights, CategoryOther,
	}
}

// ParseCategory maps a category name to a Category. Unknown names are
// reported as false rather than coerced to CategoryOther.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// =============================================================================
// SHIFT CODE DEFINITION
// =============================================================================

// ShiftCodeDefinition is immutable reference data for one shift code.
type ShiftCodeDefinition struct {
	Code        string
	Begin       LocalTime
	End         LocalTime
	Category    Category
	LengthHours decimal.Decimal
}

// Window returns the begin/end time window of the shift.
func (d ShiftCodeDefinition) Window() TimeWindow {
	return TimeWindow{Begin: d.Begin, End: d.End}
}

// TimeWindow is the wall-clock span of a shift. End may be earlier than
// Begin for shifts that cross midnight.
type TimeWindow struct {
	Begin LocalTime
	End   LocalTime
}

func (w TimeWindow) String() string { return w.Begin.String() + "-" + w.End.String() }

// =============================================================================
// PATTERN AND PARAMETERS
// =============================================================================

// CyclicPattern is one shift code per day of the cycle. Its length is the
// cycle length (canonically 56 days).
type CyclicPattern struct {
	Codes []string
}

// NewPattern copies codes into a pattern.
func NewPattern(codes ...string) CyclicPattern {
	return CyclicPattern{Codes: append([]string(nil), codes...)}
}

// Len returns the cycle length.
func (p CyclicPattern) Len() int { return len(p.Codes) }

// Validate checks the pattern is non-empty and has no blank entries.
func (p CyclicPattern) Validate() error {
	if len(p.Codes) == 0 {
		return &InvalidPatternError{Index: 0, Reason: "cycle length must be greater than zero"}
	}
	for i, c := range p.Codes {
		if c == "" {
			return &InvalidPatternError{Index: i, Reason: "empty shift code"}
		}
	}
	return nil
}

// MaxExpansionDays caps the number of days one expansion may cover,
// roughly ten years.
const MaxExpansionDays = 3660

// ScheduleParameters anchors every expansion to the same calendar.
type ScheduleParameters struct {
	StartDate CalendarDate
	NumCycles int
}

// Validate checks the parameters without reference to a pattern. A cycle is
// at least one day long, so NumCycles may not exceed MaxExpansionDays.
// NumCycles below one is allowed and expands to nothing.
func (p ScheduleParameters) Validate() error {
	if p.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidParameters)
	}
	if p.NumCycles > MaxExpansionDays {
		return fmt.Errorf("%w: num_cycles %d exceeds %d", ErrInvalidParameters, p.NumCycles, MaxExpansionDays)
	}
	return nil
}

// ExpandedDay is one dated entry of an expansion.
type ExpandedDay struct {
	Date             CalendarDate
	AbsoluteDayIndex int
	DayInCycle       int
	CycleNumber      int
	Code             string
}
