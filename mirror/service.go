/*
service.go - Mirror-line analysis on top of the cycle engine

PURPOSE:
  Glues a LineStore to the pure engine. Every call reads the current
  schedule parameters, shift codes and holidays from the store, so an
  admin editing the bid period is visible on the very next request.

FIND MIRRORS FLOW:
  1. Load the user's line and the candidate lines
  2. Expand the user's line once
  3. Compare against every candidate on a bounded worker pool
     (each comparison touches only its own inputs)
  4. Wait for all workers, then rank once on the calling goroutine so
     tie order is the deterministic line-number order

CANCELLATION:
  The engine itself never blocks. Context cancellation is checked here,
  between candidates.

SEE ALSO:
  - cycle/comparison.go: per-candidate comparison
  - cycle/ranking.go: final ordering
*/
package mirror

import (
	"cmp"
	"context"
	"fmt"
	"runtime"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/warp/mirror-engine/cycle"
)

// Service answers schedule questions for the UI collaborators.
type Service struct {
	Store      LineStore
	Thresholds cycle.Thresholds
	Ranker     cycle.Ranker
	OffCode    string
	Workers    int
	Logger     *zap.Logger
}

// NewService creates a service with default thresholds and ranker.
func NewService(store LineStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		Store:      store,
		Thresholds: cycle.DefaultThresholds(),
		Ranker:     cycle.NewRanker(),
		OffCode:    cycle.OffCode,
		Workers:    runtime.GOMAXPROCS(0),
		Logger:     logger,
	}
}

// MirrorQuery selects and orders candidate lines.
type MirrorQuery struct {
	UserLineID string

	// CandidateIDs limits the comparison; empty means every other line.
	CandidateIDs []string

	Metric    cycle.MetricName
	Direction cycle.Direction

	// Window restricts the comparison to a look-ahead period.
	Window *cycle.Period
}

// Schedule is an expanded line.
type Schedule struct {
	Line      Line
	Params    cycle.ScheduleParameters
	Expansion cycle.Expansion
}

// LineStatistics is a line with its aggregate statistics.
type LineStatistics struct {
	Line     Line
	Period   cycle.Period
	Stats    cycle.AggregateStats
	Holidays []cycle.Holiday
}

// LineComparison is a detailed comparison of two lines.
type LineComparison struct {
	User       Line
	Other      Line
	Comparison cycle.Comparison
}

// =============================================================================
// SINGLE-LINE OPERATIONS
// =============================================================================

// Schedule expands a line with the current parameters.
func (s *Service) Schedule(ctx context.Context, lineID string) (*Schedule, error) {
	params, err := s.Store.GetParameters(ctx)
	if err != nil {
		return nil, fmt.Errorf("load parameters: %w", err)
	}
	line, err := s.Store.GetLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	exp, err := cycle.Expand(line.Pattern, params)
	if err != nil {
		return nil, fmt.Errorf("expand line %s: %w", line.ID, err)
	}
	return &Schedule{Line: *line, Params: params, Expansion: exp}, nil
}

// Statistics aggregates a line over the current parameters, counting the
// holidays that fall inside the expanded period.
func (s *Service) Statistics(ctx context.Context, lineID string) (*LineStatistics, error) {
	sched, err := s.Schedule(ctx, lineID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	out := &LineStatistics{Line: sched.Line}
	period, ok := sched.Expansion.Period()
	if ok {
		out.Period = period
		out.Holidays, err = s.Store.ListHolidays(ctx, period.Start, period.End)
		if err != nil {
			return nil, fmt.Errorf("load holidays: %w", err)
		}
	}

	out.Stats = cycle.NewAggregator(catalog).Aggregate(sched.Expansion.Days(), out.Holidays)
	s.Logger.Debug("computed line statistics",
		zap.String("line", lineID),
		zap.Int("work_days", out.Stats.WorkDays),
		zap.Int("unrecognized_days", out.Stats.UnrecognizedDays))
	return out, nil
}

// Compare produces the day-by-day comparison of two lines.
func (s *Service) Compare(ctx context.Context, userLineID, otherLineID string, window *cycle.Period) (*LineComparison, error) {
	user, err := s.Schedule(ctx, userLineID)
	if err != nil {
		return nil, err
	}
	other, err := s.Store.GetLine(ctx, otherLineID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	otherExp, err := cycle.Expand(other.Pattern, user.Params)
	if err != nil {
		return nil, fmt.Errorf("expand line %s: %w", other.ID, err)
	}

	comparer := s.comparer(catalog)
	res := comparer.Compare(windowed(user.Expansion, window), windowed(otherExp, window))
	return &LineComparison{User: user.Line, Other: *other, Comparison: res}, nil
}

// =============================================================================
// MIRROR RANKING
// =============================================================================

// FindMirrors compares the user's line against the candidates and ranks the
// results.
func (s *Service) FindMirrors(ctx context.Context, q MirrorQuery) ([]cycle.ComparisonResult, error) {
	if q.Metric == "" {
		q.Metric = cycle.MetricUserShiftPatternScore
	}
	if q.Direction == "" {
		q.Direction = cycle.Desc
	}
	// Fail on a bad metric before doing any work.
	if _, err := s.Ranker.Rank(nil, q.Metric, q.Direction); err != nil {
		return nil, err
	}

	user, err := s.Schedule(ctx, q.UserLineID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	candidates, err := s.candidates(ctx, user.Line, q.CandidateIDs)
	if err != nil {
		return nil, err
	}

	userDays := windowed(user.Expansion, q.Window)
	comparer := s.comparer(catalog)
	results := make([]cycle.ComparisonResult, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.Workers))
	for i, cand := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			exp, err := cycle.Expand(cand.Pattern, user.Params)
			if err != nil {
				return fmt.Errorf("expand line %s: %w", cand.ID, err)
			}
			results[i] = cycle.ComparisonResult{
				LineID:     cand.ID,
				LineNumber: cand.Number,
				Comparison: comparer.Compare(userDays, windowed(exp, q.Window)),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranked, err := s.Ranker.Rank(results, q.Metric, q.Direction)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("ranked mirror lines",
		zap.String("user_line", q.UserLineID),
		zap.Int("candidates", len(candidates)),
		zap.String("metric", string(q.Metric)),
		zap.String("direction", string(q.Direction)))
	return ranked, nil
}

// candidates returns the lines to compare against, ordered by number. The
// user's own line is never a candidate.
func (s *Service) candidates(ctx context.Context, user Line, ids []string) ([]Line, error) {
	var lines []Line
	if len(ids) == 0 {
		all, err := s.Store.ListLines(ctx)
		if err != nil {
			return nil, fmt.Errorf("list lines: %w", err)
		}
		lines = all
	} else {
		for _, id := range ids {
			l, err := s.Store.GetLine(ctx, id)
			if err != nil {
				return nil, err
			}
			lines = append(lines, *l)
		}
	}

	out := make([]Line, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if l.ID == user.ID || seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		out = append(out, l)
	}
	slices.SortStableFunc(out, func(a, b Line) int { return cmp.Compare(a.Number, b.Number) })
	return out, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// Catalog builds the shift-code catalog from the store's current table.
func (s *Service) Catalog(ctx context.Context) (*cycle.Catalog, error) {
	defs, err := s.Store.ListShiftCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load shift codes: %w", err)
	}
	return cycle.NewCatalogWithOffCode(s.OffCode, defs...)
}

func (s *Service) comparer(catalog *cycle.Catalog) cycle.Comparer {
	return cycle.Comparer{Classifier: cycle.NewClassifier(catalog), Thresholds: s.Thresholds}
}

func windowed(e cycle.Expansion, window *cycle.Period) []cycle.ExpandedDay {
	if window != nil {
		e = e.Within(*window)
	}
	return e.Days()
}
