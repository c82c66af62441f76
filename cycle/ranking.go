package cycle

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RANKING ENGINE - Orders comparison results by a metric
// =============================================================================

// MetricName names a rankable field of a comparison.
type MetricName string

const (
	MetricUserShiftPatternScore      MetricName = "userShiftPatternScore"
	MetricDifferentCategoryCount     MetricName = "differentCategoryCount"
	MetricSignificantDifferenceCount MetricName = "significantDifferenceCount"
	MetricSameCategoryCount          MetricName = "sameCategoryCount"
	MetricWorkOffMismatchCount       MetricName = "workOffMismatchCount"
)

// Direction is the sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts "asc"/"desc" in any case. Empty means Asc.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(s)) {
	case "", Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// ComparisonResult pairs a candidate line with its comparison against the
// user's line.
type ComparisonResult struct {
	LineID     string
	LineNumber int
	Comparison Comparison
}

// MetricFunc extracts a metric value from a result.
type MetricFunc func(ComparisonResult) decimal.Decimal

func countMetric(f func(Comparison) int) MetricFunc {
	return func(r ComparisonResult) decimal.Decimal {
		return decimal.NewFromInt(int64(f(r.Comparison)))
	}
}

func builtinMetrics() map[MetricName]MetricFunc {
	return map[MetricName]MetricFunc{
		MetricUserShiftPatternScore: func(r ComparisonResult) decimal.Decimal {
			return r.Comparison.UserShiftPatternScore
		},
		MetricDifferentCategoryCount:     countMetric(func(c Comparison) int { return c.DifferentCategoryCount }),
		MetricSignificantDifferenceCount: countMetric(func(c Comparison) int { return c.SignificantDifferenceCount }),
		MetricSameCategoryCount:          countMetric(func(c Comparison) int { return c.SameCategoryCount }),
		MetricWorkOffMismatchCount:       countMetric(func(c Comparison) int { return c.WorkOffMismatchCount }),
	}
}

// Ranker resolves metric names and sorts results. A Ranker is immutable;
// WithMetric returns a copy.
type Ranker struct {
	metrics map[MetricName]MetricFunc
}

// NewRanker returns a ranker that knows the built-in metrics.
func NewRanker() Ranker {
	return Ranker{metrics: builtinMetrics()}
}

// WithMetric returns a ranker that also knows the caller-defined metric.
func (rk Ranker) WithMetric(name MetricName, fn MetricFunc) Ranker {
	metrics := make(map[MetricName]MetricFunc, len(rk.metrics)+1)
	for k, v := range rk.metrics {
		metrics[k] = v
	}
	metrics[name] = fn
	return Ranker{metrics: metrics}
}

// Metrics lists the metric names the ranker accepts, sorted.
func (rk Ranker) Metrics() []MetricName {
	names := make([]MetricName, 0, len(rk.metrics))
	for n := range rk.metrics {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Value evaluates a metric for one result.
func (rk Ranker) Value(r ComparisonResult, field MetricName) (decimal.Decimal, error) {
	fn, ok := rk.metrics[field]
	if !ok {
		return decimal.Zero, &UnknownMetricError{Metric: field}
	}
	return fn(r), nil
}

// Rank returns a sorted copy of results. The sort is stable: ties keep the
// input order.
func (rk Ranker) Rank(results []ComparisonResult, field MetricName, dir Direction) ([]ComparisonResult, error) {
	fn, ok := rk.metrics[field]
	if !ok {
		return nil, &UnknownMetricError{Metric: field}
	}
	if dir != Asc && dir != Desc {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDirection, string(dir))
	}

	type keyed struct {
		key decimal.Decimal
		res ComparisonResult
	}
	items := make([]keyed, len(results))
	for i, r := range results {
		items[i] = keyed{key: fn(r), res: r}
	}
	slices.SortStableFunc(items, func(a, b keyed) int {
		if dir == Desc {
			return b.key.Cmp(a.key)
		}
		return a.key.Cmp(b.key)
	})

	out := make([]ComparisonResult, len(items))
	for i, it := range items {
		out[i] = it.res
	}
	return out, nil
}

// Rank sorts with the built-in metrics.
func Rank(results []ComparisonResult, field MetricName, dir Direction) ([]ComparisonResult, error) {
	return NewRanker().Rank(results, field, dir)
}
