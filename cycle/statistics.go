/*
statistics.go - Single-schedule statistics

PURPOSE:
  Reduces one expansion (plus a holiday list) to the numbers shown on the
  statistics cards: work/off balance, weekend coverage, holiday exposure
  and a per-code histogram.

WEEKEND RULES:
  For every worked Saturday, look at the next calendar day:
    - present and worked   -> WeekendPairsWorked++
    - off or not present   -> OrphanedSaturdays++
  Independently, for every worked Sunday, look at the previous day:
    - off or not present   -> OrphanedSundays++
  TotalWeekendsInPeriod counts distinct Saturday-anchored weekends that
  have at least one day inside the range, worked or not.

EXAMPLE:
  Sat W  Sun W   -> 1 pair
  Sat W  Sun off -> 1 orphaned Saturday
  Sat off Sun W  -> 1 orphaned Sunday

HOLIDAYS:
  HolidaysWorked counts work days whose date is a holiday date.
  TotalHolidays is len(holidays), unfiltered.
*/
package cycle

import (
	"github.com/shopspring/decimal"
)

// AggregateStats summarizes one schedule.
type AggregateStats struct {
	WorkDays              int
	DaysOff               int
	UnrecognizedDays      int
	WeekendPairsWorked    int
	TotalWeekendsInPeriod int
	OrphanedSaturdays     int
	OrphanedSundays       int
	HolidaysWorked        int
	TotalHolidays         int
	TotalHours            decimal.Decimal

	// Work days per shift code, and per category.
	ShiftTypeCounts map[string]int
	CategoryCounts  map[Category]int
}

// TotalDays returns the number of days aggregated.
func (s AggregateStats) TotalDays() int { return s.WorkDays + s.DaysOff }

// WorkPercent returns the share of days worked, 0-100.
func (s AggregateStats) WorkPercent() decimal.Decimal {
	return percent(s.WorkDays, s.TotalDays())
}

// WeekendsWorkedPercent returns worked weekend pairs over weekends in the
// period, 0-100.
func (s AggregateStats) WeekendsWorkedPercent() decimal.Decimal {
	return percent(s.WeekendPairsWorked, s.TotalWeekendsInPeriod)
}

func percent(n, d int) decimal.Decimal {
	if d == 0 {
		return decimal.Zero
	}
	return hundred.Mul(decimal.NewFromInt(int64(n))).Div(decimal.NewFromInt(int64(d)))
}

// Aggregator computes AggregateStats.
type Aggregator struct {
	Classifier Classifier
}

// NewAggregator creates an aggregator over catalog.
func NewAggregator(catalog *Catalog) Aggregator {
	return Aggregator{Classifier: NewClassifier(catalog)}
}

// Aggregate is NewAggregator(catalog).Aggregate(days, holidays).
func Aggregate(days []ExpandedDay, holidays []Holiday, catalog *Catalog) AggregateStats {
	return NewAggregator(catalog).Aggregate(days, holidays)
}

// Aggregate reduces days to statistics. Days are expected in date order.
// Unrecognized codes count as days off and are also tallied in
// UnrecognizedDays.
func (a Aggregator) Aggregate(days []ExpandedDay, holidays []Holiday) AggregateStats {
	stats := AggregateStats{
		TotalHolidays:   len(holidays),
		TotalHours:      decimal.Zero,
		ShiftTypeCounts: make(map[string]int),
		CategoryCounts:  make(map[Category]int),
	}

	holidayDates := make(map[CalendarDate]bool, len(holidays))
	for _, h := range holidays {
		holidayDates[h.Date] = true
	}

	worked := make(map[CalendarDate]bool, len(days))
	for _, d := range days {
		c := a.Classifier.Classify(d.Code)
		worked[d.Date] = c.IsWork()
		if !c.IsWork() {
			stats.DaysOff++
			if c.IsUnrecognized() {
				stats.UnrecognizedDays++
			}
			continue
		}
		stats.WorkDays++
		stats.ShiftTypeCounts[d.Code]++
		stats.CategoryCounts[c.Category()]++
		stats.TotalHours = stats.TotalHours.Add(c.Definition.LengthHours)
		if holidayDates[d.Date] {
			stats.HolidaysWorked++
		}
	}

	weekends := make(map[CalendarDate]bool)
	for _, d := range days {
		if !d.Date.IsWeekend() {
			continue
		}
		weekends[d.Date.WeekendAnchor()] = true

		if !worked[d.Date] {
			continue
		}
		switch {
		case d.Date.IsSaturday():
			if worked[d.Date.AddDays(1)] {
				stats.WeekendPairsWorked++
			} else {
				stats.OrphanedSaturdays++
			}
		case d.Date.IsSunday():
			if !worked[d.Date.AddDays(-1)] {
				stats.OrphanedSundays++
			}
		}
	}
	stats.TotalWeekendsInPeriod = len(weekends)

	return stats
}
