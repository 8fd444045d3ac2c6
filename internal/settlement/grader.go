package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/prop-edge/internal/models"
)

// Grader settles batches of picks
type Grader struct {
	policy  TiePolicy
	workers int
	now     func() time.Time
}

// NewGrader creates a new grader. A nil clock uses UTC wall time.
func NewGrader(policy TiePolicy, workers int, now func() time.Time) (*Grader, error) {
	policy, err := ParseTiePolicy(string(policy))
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = 8
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Grader{policy: policy, workers: workers, now: now}, nil
}

// Policy returns the tie policy applied by the grader
func (g *Grader) Policy() TiePolicy {
	return g.policy
}

// Report is the outcome of one grading pass
type Report struct {
	// States holds one entry per valid pick, in input order
	States []models.PickState
	// Grades are the grades issued by this pass only
	Grades   []models.Grade
	Open     int
	Graded   int
	Skipped  int
	Failures []models.RecordFailure
}

// GradedStates returns the graded subset of States
func (r *Report) GradedStates() []models.PickState {
	var out []models.PickState
	for _, s := range r.States {
		if !s.IsOpen() {
			out = append(out, s)
		}
	}
	return out
}

// AllGrades returns the grades of every graded pick, previously issued ones included
func (r *Report) AllGrades() []models.Grade {
	out := make([]models.Grade, 0, r.Graded)
	for _, s := range r.States {
		if s.Grade != nil {
			out = append(out, *s.Grade)
		}
	}
	return out
}

// IndexResults keys results by market without line. When a market has more
// than one result the earliest settlement wins.
func IndexResults(results []models.Result) map[string]models.Result {
	index := make(map[string]models.Result, len(results))
	for _, r := range results {
		key := r.Market.Base().String()
		current, ok := index[key]
		if !ok || r.SettledAt.Before(current.SettledAt) ||
			(r.SettledAt.Equal(current.SettledAt) && r.ID.String() < current.ID.String()) {
			index[key] = r
		}
	}
	return index
}

// GradeAll matches picks to results by market and grades every pick that has
// a result. Picks found in existing keep their grade and are not regraded.
// Invalid picks are skipped and reported.
func (g *Grader) GradeAll(ctx context.Context, picks []models.Pick, results []models.Result, existing []models.Grade) (*Report, error) {
	index := IndexResults(results)
	prior := make(map[uuid.UUID]models.Grade, len(existing))
	for _, gr := range existing {
		prior[gr.PickID] = gr
	}

	now := g.now()
	states := make([]models.PickState, len(picks))
	fresh := make([]bool, len(picks))
	errs := make([]error, len(picks))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i := range picks {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			pick := &picks[i]
			if gr, ok := prior[pick.ID]; ok {
				states[i] = models.GradedPick(*pick, gr)
				return nil
			}
			if err := pick.Validate(); err != nil {
				errs[i] = err
				return nil
			}
			result, ok := index[pick.Market.Base().String()]
			if !ok {
				states[i] = models.OpenPick(*pick)
				return nil
			}
			grade, err := Grade(pick, &result, g.policy, now)
			if err != nil {
				errs[i] = err
				return nil
			}
			states[i] = models.GradedPick(*pick, grade)
			fresh[i] = true
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("grading cancelled: %w", err)
	}

	report := &Report{States: make([]models.PickState, 0, len(picks))}
	for i := range picks {
		if errs[i] != nil {
			report.Failures = append(report.Failures, models.RecordFailure{Key: picks[i].ID.String(), Err: errs[i]})
			continue
		}
		state := states[i]
		report.States = append(report.States, state)
		if state.IsOpen() {
			report.Open++
			continue
		}
		report.Graded++
		if fresh[i] {
			report.Grades = append(report.Grades, *state.Grade)
		}
	}
	report.Skipped = len(report.Failures)
	return report, nil
}
