package edge

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/prop-edge/internal/models"
)

// DefaultWorkers bounds the per-market fan-out
const DefaultWorkers = 8

// Board evaluates a batch of quotes into a board of edges
type Board struct {
	evaluator *Evaluator
	workers   int
}

// NewBoard creates a new board engine
func NewBoard(evaluator *Evaluator, workers int) *Board {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Board{evaluator: evaluator, workers: workers}
}

// BoardResult is the outcome of one board run. Records that failed
// validation or pricing are listed in Failures and the run continues.
type BoardResult struct {
	Entries     []models.BoardEntry
	Evaluations []*MarketEvaluation
	Markets     int
	Quotes      int
	Skipped     int
	Failures    []models.RecordFailure
}

// PositiveEntries returns the entries with a positive edge
func (r *BoardResult) PositiveEntries() []models.BoardEntry {
	var out []models.BoardEntry
	for i := range r.Entries {
		if r.Entries[i].IsPositive() {
			out = append(out, r.Entries[i])
		}
	}
	return out
}

type marketGroup struct {
	key    models.MarketKey
	quotes []models.MarketQuote
}

// Build validates quotes, groups them by canonical market and evaluates each
// market concurrently. Only context cancellation fails the whole run.
func (b *Board) Build(ctx context.Context, quotes []models.MarketQuote) (*BoardResult, error) {
	result := &BoardResult{Quotes: len(quotes)}

	groups := make(map[string]*marketGroup)
	for i := range quotes {
		q := quotes[i]
		if err := q.Validate(); err != nil {
			result.Failures = append(result.Failures, models.RecordFailure{
				Key: quoteKey(&q),
				Err: err,
			})
			continue
		}
		q.Market.StatType = q.CanonicalMarket().StatType
		key := q.CanonicalMarket()
		g, ok := groups[key.String()]
		if !ok {
			g = &marketGroup{key: key}
			groups[key.String()] = g
		}
		g.quotes = append(g.quotes, q)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	result.Markets = len(keys)

	evaluations := make([]*MarketEvaluation, len(keys))
	errs := make([]error, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, k := range keys {
		group := groups[k]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			evaluations[i], errs[i] = b.evaluator.Evaluate(group.key, group.quotes)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("board build cancelled: %w", err)
	}

	version := b.evaluator.ModelVersion()
	for i, k := range keys {
		if errs[i] != nil {
			result.Failures = append(result.Failures, models.RecordFailure{Key: k, Err: errs[i]})
			continue
		}
		result.Evaluations = append(result.Evaluations, evaluations[i])
		result.Entries = append(result.Entries, evaluations[i].BoardEntries(version)...)
	}
	result.Skipped = len(result.Failures)

	sort.SliceStable(result.Entries, func(i, j int) bool {
		if result.Entries[i].MarketKey != result.Entries[j].MarketKey {
			return result.Entries[i].MarketKey < result.Entries[j].MarketKey
		}
		return result.Entries[i].Side < result.Entries[j].Side
	})
	return result, nil
}

func quoteKey(q *models.MarketQuote) string {
	return fmt.Sprintf("%s|%s|%s", q.CanonicalMarket(), q.Source, q.Side)
}
