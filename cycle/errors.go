/*
errors.go - Centralized error types for the cycle engine

ERROR CATEGORIES:
  1. Structural errors - malformed pattern or parameters, fatal to one call
  2. Configuration errors - unknown ranking metric or direction
  3. Data-quality issues - NOT errors. Unknown shift codes surface as
     KindUnrecognized in classifications and comparison records.

USAGE:
  exp, err := cycle.Expand(pattern, params)
  if errors.Is(err, cycle.ErrInvalidPattern) {
      // show retry affordance
  }

SEE ALSO:
  - classifier.go: KindUnrecognized
  - ranking.go: UnknownMetricError
*/
package cycle

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPattern is returned when a cycle definition is empty or
	// contains malformed entries. Aborts expansion.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrInvalidParameters is returned when schedule parameters lack a
	// start date.
	ErrInvalidParameters = errors.New("invalid schedule parameters")

	// ErrUnknownMetric is returned when ranking is requested on a metric
	// the ranker does not define. Aborts ranking.
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrInvalidDirection is returned for a sort direction other than asc/desc.
	ErrInvalidDirection = errors.New("invalid sort direction")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidPatternError pinpoints the malformed entry of a pattern.
type InvalidPatternError struct {
	Index  int
	Reason string
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid pattern: entry %d: %s", e.Index, e.Reason)
}

func (e *InvalidPatternError) Unwrap() error {
	return ErrInvalidPattern
}

// UnknownMetricError names the metric that could not be resolved.
type UnknownMetricError struct {
	Metric MetricName
}

func (e *UnknownMetricError) Error() string {
	return fmt.Sprintf("unknown metric: %q", string(e.Metric))
}

func (e *UnknownMetricError) Unwrap() error {
	return ErrUnknownMetric
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPattern) ||
		errors.Is(err, ErrInvalidParameters) ||
		errors.Is(err, ErrUnknownMetric) ||
		errors.Is(err, ErrInvalidDirection)
}
