// Package mirror hosts the cycle engine: it loads lines, reference data and
// schedule parameters from a LineStore and answers the questions the UI
// asks (calendar, statistics, mirror ranking).
package mirror

import (
	"context"
	"errors"

	"github.com/warp/mirror-engine/cycle"
)

// =============================================================================
// LINE - A biddable schedule
// =============================================================================

// Line is one biddable schedule. Lines are listed by Number.
type Line struct {
	ID        string
	Number    int
	Name      string
	Operation string // e.g. "Tower", "Approach"
	Pattern   cycle.CyclicPattern
}

// =============================================================================
// STORE
// =============================================================================

// ErrLineNotFound is returned when a line ID is unknown.
var ErrLineNotFound = errors.New("line not found")

// LineStore supplies the inputs the engine needs. Every call returns fresh
// data; the service never caches across calls.
type LineStore interface {
	// GetLine returns ErrLineNotFound for unknown IDs.
	GetLine(ctx context.Context, id string) (*Line, error)

	// ListLines returns all lines ordered by Number.
	ListLines(ctx context.Context) ([]Line, error)

	ListShiftCodes(ctx context.Context) ([]cycle.ShiftCodeDefinition, error)

	// ListHolidays returns holidays in [from, to].
	ListHolidays(ctx context.Context, from, to cycle.CalendarDate) ([]cycle.Holiday, error)

	GetParameters(ctx context.Context) (cycle.ScheduleParameters, error)
}

// IsNotFound returns true if the error indicates a missing line.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLineNotFound)
}
