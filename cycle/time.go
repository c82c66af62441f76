package cycle

import (
	"fmt"
	"time"
)

// =============================================================================
// CALENDAR DATE - Day-granular date, always UTC midnight
// =============================================================================

// CalendarDate is a single calendar day. The wrapped time is always UTC
// midnight, so two dates compare equal with == and can key maps. Build
// values with NewDate, DateOf or ParseDate.
type CalendarDate struct {
	t time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDate{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) CalendarDate {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses an ISO "2006-01-02" date.
func ParseDate(s string) (CalendarDate, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

// Comparison
func (d CalendarDate) Before(other CalendarDate) bool        { return d.t.Before(other.t) }
func (d CalendarDate) After(other CalendarDate) bool         { return d.t.After(other.t) }
func (d CalendarDate) Equal(other CalendarDate) bool         { return d.t.Equal(other.t) }
func (d CalendarDate) BeforeOrEqual(other CalendarDate) bool { return !d.After(other) }
func (d CalendarDate) AfterOrEqual(other CalendarDate) bool  { return !d.Before(other) }

// Arithmetic
func (d CalendarDate) AddDays(n int) CalendarDate { return CalendarDate{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d CalendarDate) Time() time.Time       { return d.t }
func (d CalendarDate) Weekday() time.Weekday { return d.t.Weekday() }
func (d CalendarDate) IsSaturday() bool      { return d.Weekday() == time.Saturday }
func (d CalendarDate) IsSunday() bool        { return d.Weekday() == time.Sunday }
func (d CalendarDate) IsWeekend() bool       { return d.IsSaturday() || d.IsSunday() }
func (d CalendarDate) IsZero() bool          { return d.t.IsZero() }
func (d CalendarDate) String() string        { return d.t.Format(time.DateOnly) }

// WeekendAnchor returns the Saturday a weekend day belongs to. Sundays map
// to the day before; every other weekday maps to itself.
func (d CalendarDate) WeekendAnchor() CalendarDate {
	if d.IsSunday() {
		return d.AddDays(-1)
	}
	return d
}

// DaysBetween returns the number of whole days from one date to another.
func DaysBetween(from, to CalendarDate) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// =============================================================================
// LOCAL TIME - Wall-clock time of day, minute precision
// =============================================================================

// MinutesPerDay is the modulus for all time-of-day arithmetic.
const MinutesPerDay = 24 * 60

// LocalTime is a time of day expressed in minutes since midnight.
type LocalTime int

func NewLocalTime(hour, minute int) LocalTime {
	return LocalTime(hour*60 + minute)
}

// ParseLocalTime parses "HH:MM" (a trailing ":SS" is accepted and ignored).
func ParseLocalTime(s string) (LocalTime, error) {
	var layout string
	switch len(s) {
	case len("15:04"):
		layout = "15:04"
	case len("15:04:05"):
		layout = "15:04:05"
	default:
		return 0, fmt.Errorf("invalid time %q (use HH:MM)", s)
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q (use HH:MM): %w", s, err)
	}
	return NewLocalTime(t.Hour(), t.Minute()), nil
}

func (t LocalTime) Hour() int   { return int(t) / 60 }
func (t LocalTime) Minute() int { return int(t) % 60 }

func (t LocalTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// CircularDistance returns the shorter of the forward and backward distance
// between two times of day, so 23:30 and 00:15 are 45 minutes apart.
func CircularDistance(a, b LocalTime) int {
	d := (int(a) - int(b)) % MinutesPerDay
	if d < 0 {
		d = -d
	}
	if back := MinutesPerDay - d; back < d {
		return back
	}
	return d
}

// =============================================================================
// PERIOD - Inclusive date window
// =============================================================================

// Period is an inclusive [Start, End] window of calendar days.
type Period struct {
	Start CalendarDate
	End   CalendarDate
}

// Contains returns true if the date is within [Start, End].
func (p Period) Contains(d CalendarDate) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns the number of days in the period.
func (p Period) Days() int {
	if p.End.Before(p.Start) {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// HOLIDAY
// =============================================================================

// Holiday is an externally supplied named date.
type Holiday struct {
	ID   string
	Date CalendarDate
	Name string
}
