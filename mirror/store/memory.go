// Package store provides LineStore implementations.
package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/warp/mirror-engine/cycle"
	"github.com/warp/mirror-engine/mirror"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	lines      map[string]mirror.Line
	shiftCodes map[string]cycle.ShiftCodeDefinition
	holidays   []cycle.Holiday
	params     cycle.ScheduleParameters
}

var _ mirror.LineStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		lines:      make(map[string]mirror.Line),
		shiftCodes: make(map[string]cycle.ShiftCodeDefinition),
	}
}

// PutLine adds or replaces a line. The pattern is copied.
func (m *Memory) PutLine(l mirror.Line) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.Pattern = cycle.NewPattern(l.Pattern.Codes...)
	m.lines[l.ID] = l
}

// PutShiftCodes adds or replaces shift code definitions.
func (m *Memory) PutShiftCodes(defs ...cycle.ShiftCodeDefinition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range defs {
		m.shiftCodes[d.Code] = d
	}
}

// PutHolidays appends holidays.
func (m *Memory) PutHolidays(hols ...cycle.Holiday) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays = append(m.holidays, hols...)
}

// SetParameters replaces the schedule parameters.
func (m *Memory) SetParameters(p cycle.ScheduleParameters) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params = p
}

func (m *Memory) GetLine(_ context.Context, id string) (*mirror.Line, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.lines[id]
	if !ok {
		return nil, mirror.ErrLineNotFound
	}
	l.Pattern = cycle.NewPattern(l.Pattern.Codes...)
	return &l, nil
}

func (m *Memory) ListLines(_ context.Context) ([]mirror.Line, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]mirror.Line, 0, len(m.lines))
	for _, l := range m.lines {
		l.Pattern = cycle.NewPattern(l.Pattern.Codes...)
		result = append(result, l)
	}
	slices.SortFunc(result, func(a, b mirror.Line) int { return cmp.Compare(a.Number, b.Number) })
	return result, nil
}

func (m *Memory) ListShiftCodes(_ context.Context) ([]cycle.ShiftCodeDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]cycle.ShiftCodeDefinition, 0, len(m.shiftCodes))
	for _, d := range m.shiftCodes {
		result = append(result, d)
	}
	slices.SortFunc(result, func(a, b cycle.ShiftCodeDefinition) int { return cmp.Compare(a.Code, b.Code) })
	return result, nil
}

func (m *Memory) ListHolidays(_ context.Context, from, to cycle.CalendarDate) ([]cycle.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p := cycle.Period{Start: from, End: to}
	var result []cycle.Holiday
	for _, h := range m.holidays {
		if p.Contains(h.Date) {
			result = append(result, h)
		}
	}
	slices.SortStableFunc(result, func(a, b cycle.Holiday) int { return a.Date.Time().Compare(b.Date.Time()) })
	return result, nil
}

func (m *Memory) GetParameters(_ context.Context) (cycle.ScheduleParameters, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.params, nil
}
