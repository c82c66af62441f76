/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built bid packages that populate the database with
	realistic data for demos. Each scenario loads the standard shift-code
	table, a set of rotating lines, a bid period and a holiday calendar.

AVAILABLE SCENARIOS:

	standard-bid:       Twelve 56-day rotating lines over three cycles
	unrecognized-codes: Standard bid plus lines carrying retired codes
	look-ahead:         Single cycle starting mid-week with dense holidays

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Load the shift-code table via factory
 3. Generate lines from rotating week patterns
 4. Save the bid period
 5. Save holidays

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "standard-bid"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Add the loader to 'scenarioLoaders'

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Reference data handlers
  - factory/presets.go: Shift-code table and pattern builders
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/mirror-engine/cycle"
	"github.com/warp/mirror-engine/factory"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "standard-bid",
		Name:        "Standard Bid",
		Description: "Twelve rotating 56-day lines over three cycles",
	},
	{
		ID:          "unrecognized-codes",
		Name:        "Retired Shift Codes",
		Description: "Standard bid plus lines using codes missing from the shift-code table",
	},
	{
		ID:          "look-ahead",
		Name:        "Look-Ahead Window",
		Description: "One cycle starting on a Wednesday with a holiday-heavy calendar",
	},
}

var scenarioLoaders = map[string]func(*Handler, context.Context) error{
	"standard-bid":       (*Handler).loadStandardBidScenario,
	"unrecognized-codes": (*Handler).loadUnrecognizedCodesScenario,
	"look-ahead":         (*Handler).loadLookAheadScenario,
}

// Weekday masks indexed from the first day of the cycle.
var (
	// Sunday start: works Monday to Friday
	weekdaysFromSunday = [7]bool{false, true, true, true, true, true, false}
	// Sunday start: works Sunday to Thursday
	sundayToThursday = [7]bool{true, true, true, true, true, false, false}
	// Sunday start: works Wednesday to Sunday
	wednesdayToSunday = [7]bool{true, false, false, true, true, true, true}
)

// baseRotation is the eight-week shift rotation lines are cut from.
var baseRotation = []string{"06BC", "07BC", "14AF", "15AF", "22MN", "23MN", "09LD", "11MD"}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.LoadScenarioByID(r.Context(), req.ScenarioID); err != nil {
		if _, ok := scenarioLoaders[req.ScenarioID]; !ok {
			writeError(w, http.StatusBadRequest, "Unknown scenario", err)
			return
		}
		h.writeServiceError(w, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "loaded",
		"scenario": req.ScenarioID,
	})
}

// LoadScenarioByID resets the store and loads a scenario. Used by the
// HTTP handler and the seed command.
func (h *Handler) LoadScenarioByID(ctx context.Context, id string) error {
	load, ok := scenarioLoaders[id]
	if !ok {
		return fmt.Errorf("unknown scenario %q", id)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := load(h, ctx); err != nil {
		return fmt.Errorf("scenario %s: %w", id, err)
	}
	h.currentScenario = id
	h.Logger.Info("scenario loaded", zap.String("scenario", id))
	return nil
}

// ResetDatabase clears all data.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		h.writeServiceError(w, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]any{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadStandardBidScenario(ctx context.Context) error {
	if err := h.loadShiftCodes(ctx); err != nil {
		return err
	}
	if err := h.loadRotatingLines(ctx, 12, "Tower"); err != nil {
		return err
	}
	if err := h.Store.SaveParameters(ctx, cycle.ScheduleParameters{
		StartDate: cycle.NewDate(2026, time.January, 4),
		NumCycles: 3,
	}); err != nil {
		return err
	}
	return h.loadHolidays(ctx,
		factory.HolidayJSON{Date: "2026-01-01", Name: "New Year's Day"},
		factory.HolidayJSON{Date: "2026-02-16", Name: "Family Day"},
		factory.HolidayJSON{Date: "2026-04-03", Name: "Good Friday"},
		factory.HolidayJSON{Date: "2026-05-18", Name: "Victoria Day"},
		factory.HolidayJSON{Date: "2026-07-01", Name: "Canada Day"},
	)
}

func (h *Handler) loadUnrecognizedCodesScenario(ctx context.Context) error {
	if err := h.loadStandardBidScenario(ctx); err != nil {
		return err
	}

	retired := []string{"05XX", "07BC", "OLD1", "14AF", "22MN", "OLD1", "09LD", "11MD"}
	for i, n := range []int{13, 14} {
		weeks := append(append([]string{}, retired[i:]...), retired[:i]...)
		line, err := h.Factory.LineFromJSON(factory.LineJSON{
			ID:        DemoLineID(n),
			Number:    n,
			Name:      fmt.Sprintf("Legacy Line %d", n),
			Operation: "Tower",
			Pattern:   factory.RotatingPattern(weeks, weekdaysFromSunday, h.Factory.OffCode),
		})
		if err != nil {
			return err
		}
		if err := h.Store.SaveLine(ctx, *line); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadLookAheadScenario(ctx context.Context) error {
	if err := h.loadShiftCodes(ctx); err != nil {
		return err
	}
	if err := h.loadRotatingLines(ctx, 6, "Approach"); err != nil {
		return err
	}
	if err := h.Store.SaveParameters(ctx, cycle.ScheduleParameters{
		StartDate: cycle.NewDate(2026, time.December, 2),
		NumCycles: 1,
	}); err != nil {
		return err
	}
	return h.loadHolidays(ctx,
		factory.HolidayJSON{Date: "2026-12-24", Name: "Christmas Eve"},
		factory.HolidayJSON{Date: "2026-12-25", Name: "Christmas Day"},
		factory.HolidayJSON{Date: "2026-12-26", Name: "Boxing Day"},
		factory.HolidayJSON{Date: "2026-12-31", Name: "New Year's Eve"},
		factory.HolidayJSON{Date: "2027-01-01", Name: "New Year's Day"},
	)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) loadShiftCodes(ctx context.Context) error {
	defs, err := h.Factory.ParseShiftCodes(factory.StandardShiftCodesJSON())
	if err != nil {
		return err
	}
	for _, d := range defs {
		if err := h.Store.SaveShiftCode(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// loadRotatingLines saves count lines, each starting one week further into
// the base rotation, cycling through three workday masks.
func (h *Handler) loadRotatingLines(ctx context.Context, count int, operation string) error {
	masks := [][7]bool{weekdaysFromSunday, sundayToThursday, wednesdayToSunday}
	for i := range count {
		shift := i % len(baseRotation)
		weeks := append(append([]string{}, baseRotation[shift:]...), baseRotation[:shift]...)

		n := i + 1
		line, err := h.Factory.ParseLine(factory.LineJSONString(
			DemoLineID(n), n, "", operation,
			factory.RotatingPattern(weeks, masks[i%len(masks)], h.Factory.OffCode),
		))
		if err != nil {
			return err
		}
		if err := h.Store.SaveLine(ctx, *line); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadHolidays(ctx context.Context, hols ...factory.HolidayJSON) error {
	for _, hj := range hols {
		hol, err := h.Factory.HolidayFromJSON(hj)
		if err != nil {
			return err
		}
		hol.ID = uuid.NewString()
		if err := h.Store.SaveHoliday(ctx, hol); err != nil {
			return err
		}
	}
	return nil
}

// DemoLineID derives a stable ID for demo line number n so reloading a
// scenario keeps bookmarked URLs working.
func DemoLineID(n int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, fmt.Appendf(nil, "mirror-engine/line/%d", n)).String()
}
