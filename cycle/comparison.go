/*
comparison.go - Day-for-day comparison of two expanded schedules

PURPOSE:
  Answers "how different is this mirror line from mine?" by walking two
  expansions in lockstep and classifying every shared calendar day.

CLASSIFICATION (priority order, exactly one outcome per day):
  1. Work/off mismatch: exactly one side works
  2. Both off: identical, counts toward nothing
  3. Both work, same category: identical
  4. Both work, different category: IsDifferentCategory, and
     IsSignificant when begin differs by >= 45 min or end by >= 60 min
     (distances taken around the clock, so 23:30 vs 00:15 is 45 min)

  Unrecognized codes take the "not working" side of rule 1/2 and never
  reach the time comparison. They are reported in UnrecognizedCodes.

ALIGNMENT:
  Days are matched by calendar date. Days present on only one side are
  skipped, so two lines expanded over different windows still compare over
  their overlap.

SCORE:
  UserShiftPatternScore = 100 * same / (same + different) over the days
  both sides work. Zero when that denominator is zero.

SEE ALSO:
  - classifier.go: Kind and Classification
  - ranking.go: orders many Comparisons
*/
package cycle

import (
	"slices"

	"github.com/shopspring/decimal"
)

// =============================================================================
// THRESHOLDS
// =============================================================================

// Default significance thresholds, in minutes.
const (
	DefaultBeginThresholdMinutes = 45
	DefaultEndThresholdMinutes   = 60
)

// Thresholds decide when a category difference is large enough to matter.
type Thresholds struct {
	BeginMinutes int
	EndMinutes   int
}

// DefaultThresholds returns the 45/60 minute thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BeginMinutes: DefaultBeginThresholdMinutes,
		EndMinutes:   DefaultEndThresholdMinutes,
	}
}

// Significant reports whether two shift windows differ by at least the
// begin or end threshold.
func (t Thresholds) Significant(user, other TimeWindow) bool {
	return CircularDistance(user.Begin, other.Begin) >= t.BeginMinutes ||
		CircularDistance(user.End, other.End) >= t.EndMinutes
}

// =============================================================================
// COMPARISON RECORD
// =============================================================================

// Outcome is the single terminal classification of a compared day.
type Outcome string

const (
	OutcomeIdentical         Outcome = "identical"
	OutcomeWorkOffMismatch   Outcome = "work_off_mismatch"
	OutcomeDifferentCategory Outcome = "different_category"
)

// ComparisonRecord describes one calendar day of a comparison.
type ComparisonRecord struct {
	Date      CalendarDate
	DayIndex  int
	UserCode  string
	OtherCode string
	UserKind  Kind
	OtherKind Kind
	UserTime  *TimeWindow
	OtherTime *TimeWindow

	Outcome             Outcome
	IsDifferentCategory bool
	IsWorkOffMismatch   bool
	IsSignificant       bool
}

// Comparison is the full result of comparing two schedules.
type Comparison struct {
	Records []ComparisonRecord

	SameCategoryCount          int
	DifferentCategoryCount     int
	SignificantDifferenceCount int
	WorkOffMismatchCount       int
	UserWorksOtherOffCount     int
	UserOffOtherWorksCount     int
	UserShiftPatternScore      decimal.Decimal

	// Distinct codes, from either side, missing from the catalog.
	UnrecognizedCodes []string
}

// =============================================================================
// COMPARER
// =============================================================================

// Comparer compares expansions using a classifier and thresholds. The zero
// Thresholds value is not useful; build with NewComparer.
type Comparer struct {
	Classifier Classifier
	Thresholds Thresholds
}

// NewComparer creates a comparer with the default thresholds.
func NewComparer(catalog *Catalog) Comparer {
	return Comparer{Classifier: NewClassifier(catalog), Thresholds: DefaultThresholds()}
}

// Compare is NewComparer(catalog).Compare(user, other).
func Compare(user, other []ExpandedDay, catalog *Catalog) Comparison {
	return NewComparer(catalog).Compare(user, other)
}

// Compare walks user in date order and compares each day against the other
// schedule's entry for the same date.
func (c Comparer) Compare(user, other []ExpandedDay) Comparison {
	byDate := make(map[CalendarDate]ExpandedDay, len(other))
	for _, d := range other {
		byDate[d.Date] = d
	}

	var (
		result       Comparison
		unrecognized = make(map[string]bool)
	)
	result.Records = make([]ComparisonRecord, 0, min(len(user), len(other)))

	for _, u := range user {
		o, ok := byDate[u.Date]
		if !ok {
			continue
		}
		uc := c.Classifier.Classify(u.Code)
		oc := c.Classifier.Classify(o.Code)
		if uc.IsUnrecognized() {
			unrecognized[uc.Code] = true
		}
		if oc.IsUnrecognized() {
			unrecognized[oc.Code] = true
		}

		rec := ComparisonRecord{
			Date:      u.Date,
			DayIndex:  u.AbsoluteDayIndex,
			UserCode:  u.Code,
			OtherCode: o.Code,
			UserKind:  uc.Kind,
			OtherKind: oc.Kind,
			UserTime:  uc.Window(),
			OtherTime: oc.Window(),
			Outcome:   OutcomeIdentical,
		}

		switch {
		case uc.IsWork() != oc.IsWork():
			rec.Outcome = OutcomeWorkOffMismatch
			rec.IsWorkOffMismatch = true
			result.WorkOffMismatchCount++
			if uc.IsWork() {
				result.UserWorksOtherOffCount++
			} else {
				result.UserOffOtherWorksCount++
			}
		case !uc.IsWork():
			// both off
		case uc.Category() == oc.Category():
			result.SameCategoryCount++
		default:
			rec.Outcome = OutcomeDifferentCategory
			rec.IsDifferentCategory = true
			rec.IsSignificant = c.Thresholds.Significant(*rec.UserTime, *rec.OtherTime)
			result.DifferentCategoryCount++
			if rec.IsSignificant {
				result.SignificantDifferenceCount++
			}
		}
		result.Records = append(result.Records, rec)
	}

	result.UserShiftPatternScore = patternScore(result.SameCategoryCount, result.DifferentCategoryCount)
	if len(unrecognized) > 0 {
		for code := range unrecognized {
			result.UnrecognizedCodes = append(result.UnrecognizedCodes, code)
		}
		slices.Sort(result.UnrecognizedCodes)
	}
	return result
}

var hundred = decimal.NewFromInt(100)

func patternScore(same, different int) decimal.Decimal {
	total := same + different
	if total == 0 {
		return decimal.Zero
	}
	return hundred.Mul(decimal.NewFromInt(int64(same))).Div(decimal.NewFromInt(int64(total)))
}

// Differences returns only the records whose outcome is not identical.
func (c Comparison) Differences() []ComparisonRecord {
	var out []ComparisonRecord
	for _, r := range c.Records {
		if r.Outcome != OutcomeIdentical {
			out = append(out, r)
		}
	}
	return out
}
