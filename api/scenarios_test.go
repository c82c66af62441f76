/*
scenarios_test.go - Unit tests for demo scenarios

PURPOSE:
	Tests that each scenario correctly sets up the expected state:
	- Shift codes are loaded
	- Lines are generated with valid patterns
	- Bid period and holidays are saved

These tests ensure scenarios work correctly and can be used as integration tests.
*/
package api

import (
	"context"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/warp/mirror-engine/cycle"
	"github.com/warp/mirror-engine/mirror"
	"github.com/warp/mirror-engine/store/sqlite"
)

func setupTestHandler(t *testing.T) *Handler {
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := zaptest.NewLogger(t)
	return NewHandler(store, mirror.NewService(store, logger), logger)
}

func TestScenario_StandardBid(t *testing.T) {
	// GIVEN: Standard bid scenario
	// WHEN: Loading the scenario
	// THEN: Twelve 56-day lines, the full code table and three cycles exist

	handler := setupTestHandler(t)
	ctx := context.Background()

	if err := handler.LoadScenarioByID(ctx, "standard-bid"); err != nil {
		t.Fatalf("Failed to load standard-bid scenario: %v", err)
	}

	lines, err := handler.Store.ListLines(ctx)
	if err != nil {
		t.Fatalf("Failed to list lines: %v", err)
	}
	if len(lines) != 12 {
		t.Fatalf("Expected 12 lines, got %d", len(lines))
	}
	for i, l := range lines {
		if l.Number != i+1 {
			t.Errorf("Expected line number %d, got %d", i+1, l.Number)
		}
		if l.Pattern.Len() != 56 {
			t.Errorf("Line %d: expected 56-day pattern, got %d", l.Number, l.Pattern.Len())
		}
	}
	if lines[0].ID != DemoLineID(1) {
		t.Errorf("Expected stable ID for line 1, got %s", lines[0].ID)
	}

	codes, err := handler.Store.ListShiftCodes(ctx)
	if err != nil {
		t.Fatalf("Failed to list shift codes: %v", err)
	}
	if len(codes) != 11 {
		t.Errorf("Expected 11 shift codes, got %d", len(codes))
	}

	params, err := handler.Store.GetParameters(ctx)
	if err != nil {
		t.Fatalf("Failed to get parameters: %v", err)
	}
	if params.StartDate.String() != "2026-01-04" || params.NumCycles != 3 {
		t.Errorf("Unexpected parameters: %s x %d", params.StartDate, params.NumCycles)
	}

	holidays, err := handler.Store.GetAllHolidays(ctx)
	if err != nil {
		t.Fatalf("Failed to get holidays: %v", err)
	}
	if len(holidays) != 5 {
		t.Errorf("Expected 5 holidays, got %d", len(holidays))
	}
}

func TestScenario_ReloadIsIdempotent(t *testing.T) {
	// GIVEN: A scenario loaded twice
	// THEN: Line IDs are stable and nothing is duplicated

	handler := setupTestHandler(t)
	ctx := context.Background()

	for range 2 {
		if err := handler.LoadScenarioByID(ctx, "standard-bid"); err != nil {
			t.Fatalf("Failed to load scenario: %v", err)
		}
	}

	lines, _ := handler.Store.ListLines(ctx)
	if len(lines) != 12 {
		t.Errorf("Expected 12 lines after reload, got %d", len(lines))
	}
	if _, err := handler.Store.GetLine(ctx, DemoLineID(12)); err != nil {
		t.Errorf("Expected line 12 to keep its ID: %v", err)
	}
}

func TestScenario_UnrecognizedCodes(t *testing.T) {
	handler := setupTestHandler(t)
	ctx := context.Background()

	if err := handler.LoadScenarioByID(ctx, "unrecognized-codes"); err != nil {
		t.Fatalf("Failed to load scenario: %v", err)
	}

	stats, err := handler.Service.Statistics(ctx, DemoLineID(13))
	if err != nil {
		t.Fatalf("Failed to compute statistics: %v", err)
	}
	// 05XX for one week and OLD1 for two, five days a week, three cycles
	if stats.Stats.UnrecognizedDays != 45 {
		t.Errorf("Expected 45 unrecognized days, got %d", stats.Stats.UnrecognizedDays)
	}
}

func TestScenario_HonoursConfiguredOffCode(t *testing.T) {
	// GIVEN: A deployment whose day-off code is "OFF"
	// WHEN: Loading the standard bid
	// THEN: Demo off days use that code and none are unrecognized

	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := zaptest.NewLogger(t)
	svc := mirror.NewService(store, logger)
	svc.OffCode = "OFF"
	handler := NewHandler(store, svc, logger)
	ctx := context.Background()

	if err := handler.LoadScenarioByID(ctx, "standard-bid"); err != nil {
		t.Fatalf("Failed to load scenario: %v", err)
	}

	line, err := handler.Store.GetLine(ctx, DemoLineID(1))
	if err != nil {
		t.Fatalf("Failed to get line: %v", err)
	}
	for i, code := range line.Pattern.Codes {
		if code == cycle.OffCode {
			t.Fatalf("Day %d uses the default off code", i)
		}
	}

	stats, err := handler.Service.Statistics(ctx, DemoLineID(1))
	if err != nil {
		t.Fatalf("Failed to compute statistics: %v", err)
	}
	if stats.Stats.UnrecognizedDays != 0 {
		t.Errorf("Expected no unrecognized days, got %d", stats.Stats.UnrecognizedDays)
	}
	if stats.Stats.WorkDays != 120 || stats.Stats.DaysOff != 48 {
		t.Errorf("Expected 120 work / 48 off, got %d / %d", stats.Stats.WorkDays, stats.Stats.DaysOff)
	}
}

func TestScenario_LookAhead(t *testing.T) {
	handler := setupTestHandler(t)
	ctx := context.Background()

	if err := handler.LoadScenarioByID(ctx, "look-ahead"); err != nil {
		t.Fatalf("Failed to load scenario: %v", err)
	}

	sched, err := handler.Service.Schedule(ctx, DemoLineID(1))
	if err != nil {
		t.Fatalf("Failed to expand schedule: %v", err)
	}
	period, ok := sched.Expansion.Period()
	if !ok {
		t.Fatal("Expected a non-empty expansion")
	}
	if period.End.String() != "2027-01-26" {
		t.Errorf("Expected period to end 2027-01-26, got %s", period.End)
	}

	stats, err := handler.Service.Statistics(ctx, DemoLineID(1))
	if err != nil {
		t.Fatalf("Failed to compute statistics: %v", err)
	}
	if stats.Stats.TotalHolidays != 5 {
		t.Errorf("Expected 5 holidays in period, got %d", stats.Stats.TotalHolidays)
	}
}

func TestScenario_UnknownAndReset(t *testing.T) {
	handler := setupTestHandler(t)
	ctx := context.Background()

	if err := handler.LoadScenarioByID(ctx, "does-not-exist"); err == nil {
		t.Fatal("Expected error for unknown scenario")
	}

	if err := handler.LoadScenarioByID(ctx, "look-ahead"); err != nil {
		t.Fatalf("Failed to load scenario: %v", err)
	}
	if err := handler.Store.Reset(ctx); err != nil {
		t.Fatalf("Failed to reset: %v", err)
	}

	_, err := handler.Service.Schedule(ctx, DemoLineID(1))
	if !mirror.IsNotFound(err) {
		t.Errorf("Expected not found after reset, got %v", err)
	}
	params, _ := handler.Store.GetParameters(ctx)
	if params != (cycle.ScheduleParameters{}) {
		t.Errorf("Expected parameters cleared, got %+v", params)
	}
}
