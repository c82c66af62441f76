package factory

import (
	"encoding/json"

	"github.com/warp/mirror-engine/cycle"
)

// =============================================================================
// PRESET JSON GENERATORS
// =============================================================================

// StandardShiftCodesJSON returns the demo shift-code table.
func StandardShiftCodesJSON() string {
	codes := []map[string]any{
		{"code": "06BC", "begin": "06:00", "end": "14:00", "category": "days", "length_hours": 8},
		{"code": "07BC", "begin": "07:00", "end": "15:00", "category": "days", "length_hours": 8},
		{"code": "08AA", "begin": "08:00", "end": "16:00", "category": "days", "length_hours": 8},
		{"code": "09LD", "begin": "09:00", "end": "17:00", "category": "late_days", "length_hours": 8},
		{"code": "10LD", "begin": "10:00", "end": "18:00", "category": "late_days", "length_hours": 8},
		{"code": "11MD", "begin": "11:00", "end": "19:00", "category": "mid_days", "length_hours": 8},
		{"code": "14AF", "begin": "14:00", "end": "22:00", "category": "afternoons", "length_hours": 8},
		{"code": "15AF", "begin": "15:00", "end": "23:00", "category": "afternoons", "length_hours": 8},
		{"code": "22MN", "begin": "22:00", "end": "06:00", "category": "midnights", "length_hours": 8},
		{"code": "23MN", "begin": "23:00", "end": "07:00", "category": "midnights", "length_hours": 8},
		{"code": "06TR", "begin": "06:00", "end": "16:00", "category": "other", "length_hours": 10},
	}
	b, _ := json.MarshalIndent(codes, "", "  ")
	return string(b)
}

// StandardCatalog returns the demo shift-code table as a catalog.
func StandardCatalog() *cycle.Catalog {
	f := NewScheduleFactory()
	c, err := f.ParseCatalog(StandardShiftCodesJSON())
	if err != nil {
		panic(err)
	}
	return c
}

// RotatingPattern builds a cycle of len(weeks)*7 days. Each week works the
// given code on the weekdays marked true (index 0 = first day of the week)
// and carries offCode otherwise.
func RotatingPattern(weeks []string, workdays [7]bool, offCode string) []string {
	codes := make([]string, 0, len(weeks)*7)
	for _, code := range weeks {
		for _, works := range workdays {
			if works {
				codes = append(codes, code)
			} else {
				codes = append(codes, offCode)
			}
		}
	}
	return codes
}

// LineJSONString returns JSON for a line.
func LineJSONString(id string, number int, name, operation string, pattern []string) string {
	b, _ := json.MarshalIndent(LineJSON{
		ID:        id,
		Number:    number,
		Name:      name,
		Operation: operation,
		Pattern:   pattern,
	}, "", "  ")
	return string(b)
}
