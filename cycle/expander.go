package cycle

import (
	"fmt"
	"iter"
)

// =============================================================================
// CYCLE EXPANDER - Compact pattern to dated calendar
// =============================================================================

// Expansion is the dated calendar produced by Expand. It holds only its
// inputs; every day is computed on demand, so iterating twice yields the
// same sequence and no iteration state outlives a call.
type Expansion struct {
	pattern CyclicPattern
	params  ScheduleParameters
	offset  int
	length  int
}

// Expand turns a pattern and schedule parameters into an expansion of
// pattern.Len() * params.NumCycles days. NumCycles below one yields an
// empty expansion, not an error; more than MaxExpansionDays days is
// ErrInvalidParameters.
func Expand(pattern CyclicPattern, params ScheduleParameters) (Expansion, error) {
	if err := pattern.Validate(); err != nil {
		return Expansion{}, err
	}
	if err := params.Validate(); err != nil {
		return Expansion{}, err
	}
	if params.NumCycles > MaxExpansionDays/pattern.Len() {
		return Expansion{}, fmt.Errorf("%w: %d cycles of %d days exceed %d days",
			ErrInvalidParameters, params.NumCycles, pattern.Len(), MaxExpansionDays)
	}
	n := 0
	if params.NumCycles > 0 {
		n = pattern.Len() * params.NumCycles
	}
	return Expansion{
		pattern: NewPattern(pattern.Codes...),
		params:  params,
		length:  n,
	}, nil
}

// ExpandDays is Expand followed by Days.
func ExpandDays(pattern CyclicPattern, params ScheduleParameters) ([]ExpandedDay, error) {
	e, err := Expand(pattern, params)
	if err != nil {
		return nil, err
	}
	return e.Days(), nil
}

// Len returns the number of days in the expansion.
func (e Expansion) Len() int { return e.length }

// CycleLength returns the pattern length.
func (e Expansion) CycleLength() int { return e.pattern.Len() }

// Params returns the parameters the expansion was built from.
func (e Expansion) Params() ScheduleParameters { return e.params }

// At returns the i-th day of the expansion, 0 <= i < Len().
func (e Expansion) At(i int) ExpandedDay {
	if i < 0 || i >= e.length {
		panic(fmt.Sprintf("cycle: expansion index %d out of range [0, %d)", i, e.length))
	}
	abs := e.offset + i
	l := e.pattern.Len()
	dayInCycle := abs % l
	return ExpandedDay{
		Date:             e.params.StartDate.AddDays(abs),
		AbsoluteDayIndex: abs,
		DayInCycle:       dayInCycle,
		CycleNumber:      abs/l + 1,
		Code:             e.pattern.Codes[dayInCycle],
	}
}

// All iterates the expansion in date order.
func (e Expansion) All() iter.Seq[ExpandedDay] {
	return func(yield func(ExpandedDay) bool) {
		for i := 0; i < e.length; i++ {
			if !yield(e.At(i)) {
				return
			}
		}
	}
}

// Days materializes the expansion.
func (e Expansion) Days() []ExpandedDay {
	days := make([]ExpandedDay, 0, e.length)
	for d := range e.All() {
		days = append(days, d)
	}
	return days
}

// Period returns the dates covered by the expansion. ok is false when the
// expansion is empty.
func (e Expansion) Period() (p Period, ok bool) {
	if e.length == 0 {
		return Period{}, false
	}
	return Period{Start: e.At(0).Date, End: e.At(e.length - 1).Date}, true
}

// Within restricts the expansion to the days inside p. Absolute day
// indexes and cycle numbers keep referring to the original anchor.
func (e Expansion) Within(p Period) Expansion {
	if e.length == 0 {
		return e
	}
	first := e.offset
	last := e.offset + e.length - 1
	from := max(first, DaysBetween(e.params.StartDate, p.Start))
	to := min(last, DaysBetween(e.params.StartDate, p.End))
	out := e
	if from > to {
		out.length = 0
		return out
	}
	out.offset = from
	out.length = to - from + 1
	return out
}
