/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's value types from the external API contract consumed by the
  calendar, results and statistics UIs.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Reference data:
    factory.ShiftCodeJSON, factory.LineJSON, factory.HolidayJSON and
    factory.ParametersJSON are reused as-is for create/list bodies

  Schedule:
    ScheduleDTO, ExpandedDayDTO

  Statistics:
    StatisticsDTO

  Comparison:
    ComparisonDTO, ComparisonRecordDTO, MirrorResultDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

NUMBERS:
  Decimal values (hours, scores, percentages) are serialized by
  shopspring/decimal as JSON strings to keep them exact.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/schedule.go: JSON schema types
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/mirror-engine/cycle"
	"github.com/warp/mirror-engine/factory"
	"github.com/warp/mirror-engine/mirror"
)

// =============================================================================
// SCHEDULE
// =============================================================================

// ExpandedDayDTO is one calendar cell.
type ExpandedDayDTO struct {
	Date        string          `json:"date"`
	Weekday     string          `json:"weekday"`
	DayIndex    int             `json:"day_index"`
	DayInCycle  int             `json:"day_in_cycle"`
	CycleNumber int             `json:"cycle_number"`
	Code        string          `json:"code"`
	Kind        string          `json:"kind"` // work, off, unrecognized
	Category    string          `json:"category,omitempty"`
	Begin       string          `json:"begin,omitempty"`
	End         string          `json:"end,omitempty"`
	LengthHours decimal.Decimal `json:"length_hours"`
}

// ScheduleDTO is an expanded line.
type ScheduleDTO struct {
	Line        factory.LineJSON       `json:"line"`
	Parameters  factory.ParametersJSON `json:"parameters"`
	CycleLength int                    `json:"cycle_length"`
	Days        []ExpandedDayDTO       `json:"days"`
}

// =============================================================================
// STATISTICS
// =============================================================================

// StatisticsDTO is the statistics panel for one line.
type StatisticsDTO struct {
	LineID                string                `json:"line_id"`
	PeriodStart           string                `json:"period_start,omitempty"`
	PeriodEnd             string                `json:"period_end,omitempty"`
	WorkDays              int                   `json:"work_days"`
	DaysOff               int                   `json:"days_off"`
	UnrecognizedDays      int                   `json:"unrecognized_days"`
	WorkPercent           decimal.Decimal       `json:"work_percent"`
	TotalHours            decimal.Decimal       `json:"total_hours"`
	WeekendPairsWorked    int                   `json:"weekend_pairs_worked"`
	TotalWeekendsInPeriod int                   `json:"total_weekends_in_period"`
	WeekendsWorkedPercent decimal.Decimal       `json:"weekends_worked_percent"`
	OrphanedSaturdays     int                   `json:"orphaned_saturdays"`
	OrphanedSundays       int                   `json:"orphaned_sundays"`
	HolidaysWorked        int                   `json:"holidays_worked"`
	TotalHolidays         int                   `json:"total_holidays"`
	ShiftTypeCounts       map[string]int        `json:"shift_type_counts"`
	CategoryCounts        map[string]int        `json:"category_counts"`
	Holidays              []factory.HolidayJSON `json:"holidays"`
}

// =============================================================================
// COMPARISON
// =============================================================================

// ComparisonRecordDTO is one compared day.
type ComparisonRecordDTO struct {
	Date                string `json:"date"`
	DayIndex            int    `json:"day_index"`
	UserCode            string `json:"user_code"`
	OtherCode           string `json:"other_code"`
	UserKind            string `json:"user_kind"`
	OtherKind           string `json:"other_kind"`
	UserTime            string `json:"user_time,omitempty"`
	OtherTime           string `json:"other_time,omitempty"`
	Outcome             string `json:"outcome"`
	IsDifferentCategory bool   `json:"is_different_category"`
	IsWorkOffMismatch   bool   `json:"is_work_off_mismatch"`
	IsSignificant       bool   `json:"is_significant"`
}

// ComparisonSummaryDTO carries the tallies of a comparison.
type ComparisonSummaryDTO struct {
	SameCategoryCount          int             `json:"same_category_count"`
	DifferentCategoryCount     int             `json:"different_category_count"`
	SignificantDifferenceCount int             `json:"significant_difference_count"`
	WorkOffMismatchCount       int             `json:"work_off_mismatch_count"`
	UserWorksOtherOffCount     int             `json:"user_works_other_off_count"`
	UserOffOtherWorksCount     int             `json:"user_off_other_works_count"`
	UserShiftPatternScore      decimal.Decimal `json:"user_shift_pattern_score"`
	UnrecognizedCodes          []string        `json:"unrecognized_codes,omitempty"`
}

// ComparisonDTO is the detail view of two lines.
type ComparisonDTO struct {
	UserLineID  string                `json:"user_line_id"`
	OtherLineID string                `json:"other_line_id"`
	Summary     ComparisonSummaryDTO  `json:"summary"`
	Records     []ComparisonRecordDTO `json:"records"`
}

// MirrorResultDTO is one row of the ranked results table.
type MirrorResultDTO struct {
	Rank       int    `json:"rank"`
	LineID     string `json:"line_id"`
	LineNumber int    `json:"line_number"`
	ComparisonSummaryDTO
}

// MirrorsResponse wraps the ranked results with the ordering used.
type MirrorsResponse struct {
	UserLineID string            `json:"user_line_id"`
	Metric     string            `json:"metric"`
	Direction  string            `json:"direction"`
	Results    []MirrorResultDTO `json:"results"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toExpandedDayDTO(d cycle.ExpandedDay, cl cycle.Classifier) ExpandedDayDTO {
	c := cl.Classify(d.Code)
	dto := ExpandedDayDTO{
		Date:        d.Date.String(),
		Weekday:     d.Date.Weekday().String(),
		DayIndex:    d.AbsoluteDayIndex,
		DayInCycle:  d.DayInCycle,
		CycleNumber: d.CycleNumber,
		Code:        d.Code,
		Kind:        c.Kind.String(),
		LengthHours: decimal.Zero,
	}
	if c.IsWork() {
		dto.Category = string(c.Category())
		dto.Begin = c.Definition.Begin.String()
		dto.End = c.Definition.End.String()
		dto.LengthHours = c.Definition.LengthHours
	}
	return dto
}

func toStatisticsDTO(ls *mirror.LineStatistics, f *factory.ScheduleFactory) StatisticsDTO {
	s := ls.Stats
	dto := StatisticsDTO{
		LineID:                ls.Line.ID,
		WorkDays:              s.WorkDays,
		DaysOff:               s.DaysOff,
		UnrecognizedDays:      s.UnrecognizedDays,
		WorkPercent:           s.WorkPercent().Round(1),
		TotalHours:            s.TotalHours,
		WeekendPairsWorked:    s.WeekendPairsWorked,
		TotalWeekendsInPeriod: s.TotalWeekendsInPeriod,
		WeekendsWorkedPercent: s.WeekendsWorkedPercent().Round(1),
		OrphanedSaturdays:     s.OrphanedSaturdays,
		OrphanedSundays:       s.OrphanedSundays,
		HolidaysWorked:        s.HolidaysWorked,
		TotalHolidays:         s.TotalHolidays,
		ShiftTypeCounts:       s.ShiftTypeCounts,
		CategoryCounts:        make(map[string]int, len(s.CategoryCounts)),
		Holidays:              make([]factory.HolidayJSON, 0, len(ls.Holidays)),
	}
	if !ls.Period.Start.IsZero() {
		dto.PeriodStart = ls.Period.Start.String()
		dto.PeriodEnd = ls.Period.End.String()
	}
	for cat, n := range s.CategoryCounts {
		dto.CategoryCounts[string(cat)] = n
	}
	for _, h := range ls.Holidays {
		dto.Holidays = append(dto.Holidays, f.HolidayToJSON(h))
	}
	return dto
}

func toSummaryDTO(c cycle.Comparison) ComparisonSummaryDTO {
	return ComparisonSummaryDTO{
		SameCategoryCount:          c.SameCategoryCount,
		DifferentCategoryCount:     c.DifferentCategoryCount,
		SignificantDifferenceCount: c.SignificantDifferenceCount,
		WorkOffMismatchCount:       c.WorkOffMismatchCount,
		UserWorksOtherOffCount:     c.UserWorksOtherOffCount,
		UserOffOtherWorksCount:     c.UserOffOtherWorksCount,
		UserShiftPatternScore:      c.UserShiftPatternScore.Round(2),
		UnrecognizedCodes:          c.UnrecognizedCodes,
	}
}

func toComparisonDTO(lc *mirror.LineComparison) ComparisonDTO {
	records := make([]ComparisonRecordDTO, len(lc.Comparison.Records))
	for i, r := range lc.Comparison.Records {
		records[i] = ComparisonRecordDTO{
			Date:                r.Date.String(),
			DayIndex:            r.DayIndex,
			UserCode:            r.UserCode,
			OtherCode:           r.OtherCode,
			UserKind:            r.UserKind.String(),
			OtherKind:           r.OtherKind.String(),
			UserTime:            windowString(r.UserTime),
			OtherTime:           windowString(r.OtherTime),
			Outcome:             string(r.Outcome),
			IsDifferentCategory: r.IsDifferentCategory,
			IsWorkOffMismatch:   r.IsWorkOffMismatch,
			IsSignificant:       r.IsSignificant,
		}
	}
	return ComparisonDTO{
		UserLineID:  lc.User.ID,
		OtherLineID: lc.Other.ID,
		Summary:     toSummaryDTO(lc.Comparison),
		Records:     records,
	}
}

func toMirrorResultDTOs(results []cycle.ComparisonResult) []MirrorResultDTO {
	dtos := make([]MirrorResultDTO, len(results))
	for i, r := range results {
		dtos[i] = MirrorResultDTO{
			Rank:                 i + 1,
			LineID:               r.LineID,
			LineNumber:           r.LineNumber,
			ComparisonSummaryDTO: toSummaryDTO(r.Comparison),
		}
	}
	return dtos
}

func windowString(w *cycle.TimeWindow) string {
	if w == nil {
		return ""
	}
	return w.String()
}
