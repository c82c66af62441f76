/*
Package factory converts JSON reference data into cycle engine types.

PURPOSE:
  The shift-code table, lines, holidays and bid-period settings arrive as
  JSON from the admin UI and reference endpoints. The factory validates
  them and builds the engine's value types, so nothing downstream has to
  deal with strings like "08:50" or "2026-01-05".

JSON SCHEMA:
  Shift code:
    {"code": "06BC", "begin": "06:00", "end": "14:00",
     "category": "days", "length_hours": 8}

  Line:
    {"id": "line-7", "number": 7, "name": "Line 7",
     "operation": "Tower", "pattern": ["06BC", "06BC", "----", ...]}

  Parameters:
    {"start_date": "2026-01-05", "num_cycles": 3}

  Holiday:
    {"id": "h-1", "date": "2026-12-25", "name": "Christmas Day"}

VALIDATION:
  - Times must be HH:MM, dates YYYY-MM-DD
  - Category must be one of cycle.Categories()
  - Patterns must be non-empty with no blank entries
  - Pattern entries are NOT checked against the catalog; unknown codes
    are a data-quality concern reported by the engine, not a parse error

SEE ALSO:
  - presets.go: demo shift-code table
  - cycle/types.go: target types
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/mirror-engine/cycle"
	"github.com/warp/mirror-engine/mirror"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ShiftCodeJSON is the JSON representation of a shift code.
type ShiftCodeJSON struct {
	Code        string          `json:"code"`
	Begin       string          `json:"begin"`
	End         string          `json:"end"`
	Category    string          `json:"category"`
	LengthHours decimal.Decimal `json:"length_hours"`
}

// LineJSON is the JSON representation of a line.
type LineJSON struct {
	ID        string   `json:"id"`
	Number    int      `json:"number"`
	Name      string   `json:"name"`
	Operation string   `json:"operation,omitempty"`
	Pattern   []string `json:"pattern"`
}

// ParametersJSON is the JSON representation of schedule parameters.
type ParametersJSON struct {
	StartDate string `json:"start_date"`
	NumCycles int    `json:"num_cycles"`
}

// HolidayJSON is the JSON representation of a holiday.
type HolidayJSON struct {
	ID   string `json:"id,omitempty"`
	Date string `json:"date"`
	Name string `json:"name"`
}

// =============================================================================
// SCHEDULE FACTORY
// =============================================================================

// ScheduleFactory converts JSON to engine types.
type ScheduleFactory struct {
	// OffCode is the day-off sentinel catalogs are built with.
	OffCode string
}

// NewScheduleFactory creates a factory using the standard off sentinel.
func NewScheduleFactory() *ScheduleFactory {
	return &ScheduleFactory{OffCode: cycle.OffCode}
}

// ParseShiftCodes parses a JSON array of shift codes.
func (f *ScheduleFactory) ParseShiftCodes(jsonStr string) ([]cycle.ShiftCodeDefinition, error) {
	var sj []ShiftCodeJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return nil, fmt.Errorf("failed to parse shift codes JSON: %w", err)
	}
	defs := make([]cycle.ShiftCodeDefinition, 0, len(sj))
	for _, s := range sj {
		d, err := f.ShiftCodeFromJSON(s)
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	return defs, nil
}

// ParseCatalog parses a JSON array of shift codes into a catalog.
func (f *ScheduleFactory) ParseCatalog(jsonStr string) (*cycle.Catalog, error) {
	defs, err := f.ParseShiftCodes(jsonStr)
	if err != nil {
		return nil, err
	}
	return f.Catalog(defs)
}

// Catalog builds a catalog honouring the factory's off sentinel.
func (f *ScheduleFactory) Catalog(defs []cycle.ShiftCodeDefinition) (*cycle.Catalog, error) {
	return cycle.NewCatalogWithOffCode(f.OffCode, defs...)
}

// ShiftCodeFromJSON converts one shift code.
func (f *ScheduleFactory) ShiftCodeFromJSON(s ShiftCodeJSON) (cycle.ShiftCodeDefinition, error) {
	if s.Code == "" {
		return cycle.ShiftCodeDefinition{}, fmt.Errorf("shift code is required")
	}
	begin, err := cycle.ParseLocalTime(s.Begin)
	if err != nil {
		return cycle.ShiftCodeDefinition{}, fmt.Errorf("shift code %s: begin: %w", s.Code, err)
	}
	end, err := cycle.ParseLocalTime(s.End)
	if err != nil {
		return cycle.ShiftCodeDefinition{}, fmt.Errorf("shift code %s: end: %w", s.Code, err)
	}
	cat, ok := cycle.ParseCategory(s.Category)
	if !ok {
		return cycle.ShiftCodeDefinition{}, fmt.Errorf("shift code %s: unknown category %q", s.Code, s.Category)
	}
	if s.LengthHours.IsNegative() {
		return cycle.ShiftCodeDefinition{}, fmt.Errorf("shift code %s: negative length", s.Code)
	}
	return cycle.ShiftCodeDefinition{
		Code:        s.Code,
		Begin:       begin,
		End:         end,
		Category:    cat,
		LengthHours: s.LengthHours,
	}, nil
}

// ShiftCodeToJSON converts a definition back to JSON form.
func (f *ScheduleFactory) ShiftCodeToJSON(d cycle.ShiftCodeDefinition) ShiftCodeJSON {
	return ShiftCodeJSON{
		Code:        d.Code,
		Begin:       d.Begin.String(),
		End:         d.End.String(),
		Category:    string(d.Category),
		LengthHours: d.LengthHours,
	}
}

// ParseLine parses a JSON line.
func (f *ScheduleFactory) ParseLine(jsonStr string) (*mirror.Line, error) {
	var lj LineJSON
	if err := json.Unmarshal([]byte(jsonStr), &lj); err != nil {
		return nil, fmt.Errorf("failed to parse line JSON: %w", err)
	}
	return f.LineFromJSON(lj)
}

// LineFromJSON converts a LineJSON, validating its pattern.
func (f *ScheduleFactory) LineFromJSON(lj LineJSON) (*mirror.Line, error) {
	if lj.ID == "" {
		return nil, fmt.Errorf("line id is required")
	}
	if lj.Number <= 0 {
		return nil, fmt.Errorf("line %s: number must be positive", lj.ID)
	}
	pattern := cycle.NewPattern(lj.Pattern...)
	if err := pattern.Validate(); err != nil {
		return nil, fmt.Errorf("line %s: %w", lj.ID, err)
	}
	name := lj.Name
	if name == "" {
		name = fmt.Sprintf("Line %d", lj.Number)
	}
	return &mirror.Line{
		ID:        lj.ID,
		Number:    lj.Number,
		Name:      name,
		Operation: lj.Operation,
		Pattern:   pattern,
	}, nil
}

// LineToJSON converts a line back to JSON form.
func (f *ScheduleFactory) LineToJSON(l mirror.Line) LineJSON {
	return LineJSON{
		ID:        l.ID,
		Number:    l.Number,
		Name:      l.Name,
		Operation: l.Operation,
		Pattern:   append([]string(nil), l.Pattern.Codes...),
	}
}

// ParametersFromJSON converts schedule parameters. NumCycles of zero is
// accepted; callers probing before data is ready get empty expansions.
func (f *ScheduleFactory) ParametersFromJSON(pj ParametersJSON) (cycle.ScheduleParameters, error) {
	start, err := cycle.ParseDate(pj.StartDate)
	if err != nil {
		return cycle.ScheduleParameters{}, fmt.Errorf("%w: %v", cycle.ErrInvalidParameters, err)
	}
	if pj.NumCycles < 0 {
		return cycle.ScheduleParameters{}, fmt.Errorf("%w: num_cycles must not be negative", cycle.ErrInvalidParameters)
	}
	p := cycle.ScheduleParameters{StartDate: start, NumCycles: pj.NumCycles}
	if err := p.Validate(); err != nil {
		return cycle.ScheduleParameters{}, err
	}
	return p, nil
}

// ParametersToJSON converts parameters back to JSON form.
func (f *ScheduleFactory) ParametersToJSON(p cycle.ScheduleParameters) ParametersJSON {
	return ParametersJSON{StartDate: p.StartDate.String(), NumCycles: p.NumCycles}
}

// ParseHolidays parses a JSON array of holidays.
func (f *ScheduleFactory) ParseHolidays(jsonStr string) ([]cycle.Holiday, error) {
	var hj []HolidayJSON
	if err := json.Unmarshal([]byte(jsonStr), &hj); err != nil {
		return nil, fmt.Errorf("failed to parse holidays JSON: %w", err)
	}
	out := make([]cycle.Holiday, 0, len(hj))
	for _, h := range hj {
		hol, err := f.HolidayFromJSON(h)
		if err != nil {
			return nil, err
		}
		out = append(out, hol)
	}
	return out, nil
}

// HolidayFromJSON converts one holiday.
func (f *ScheduleFactory) HolidayFromJSON(h HolidayJSON) (cycle.Holiday, error) {
	if h.Name == "" {
		return cycle.Holiday{}, fmt.Errorf("holiday name is required")
	}
	d, err := cycle.ParseDate(h.Date)
	if err != nil {
		return cycle.Holiday{}, fmt.Errorf("holiday %s: %w", h.Name, err)
	}
	return cycle.Holiday{ID: h.ID, Date: d, Name: h.Name}, nil
}

// HolidayToJSON converts a holiday back to JSON form.
func (f *ScheduleFactory) HolidayToJSON(h cycle.Holiday) HolidayJSON {
	return HolidayJSON{ID: h.ID, Date: h.Date.String(), Name: h.Name}
}
