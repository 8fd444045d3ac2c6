package edge

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/yourusername/prop-edge/internal/models"
	"github.com/yourusername/prop-edge/internal/pricing"
	"github.com/yourusername/prop-edge/internal/projection"
)

// ConsensusMode selects how the projection mean is derived from the sources
// quoting a market.
type ConsensusMode string

const (
	// ConsensusRepresentative uses the single highest-weighted source
	ConsensusRepresentative ConsensusMode = "representative"
	// ConsensusWeighted averages per-source means by book weight
	ConsensusWeighted ConsensusMode = "weighted"
)

// ParseConsensusMode validates a configured mode; empty means representative
func ParseConsensusMode(raw string) (ConsensusMode, error) {
	switch ConsensusMode(raw) {
	case "", ConsensusRepresentative:
		return ConsensusRepresentative, nil
	case ConsensusWeighted:
		return ConsensusWeighted, nil
	default:
		return "", fmt.Errorf("unknown consensus mode %q", raw)
	}
}

// EvaluatorConfig holds everything an Evaluator needs
type EvaluatorConfig struct {
	Priors         *projection.Priors
	BookWeights    projection.BookWeights
	FreshnessDecay float64
	Mode           ConsensusMode
	Now            func() time.Time
}

// Evaluator turns the quotes of one canonical market into edges
type Evaluator struct {
	priors *projection.Priors
	books  projection.BookWeights
	decay  float64
	mode   ConsensusMode
	now    func() time.Time
}

// NewEvaluator creates a new evaluator
func NewEvaluator(cfg EvaluatorConfig) (*Evaluator, error) {
	if cfg.Priors == nil {
		return nil, fmt.Errorf("priors are required")
	}
	if cfg.FreshnessDecay < 0 || math.IsNaN(cfg.FreshnessDecay) {
		return nil, fmt.Errorf("freshness decay must be non-negative, got %v", cfg.FreshnessDecay)
	}
	mode, err := ParseConsensusMode(string(cfg.Mode))
	if err != nil {
		return nil, err
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Evaluator{
		priors: cfg.Priors,
		books:  cfg.BookWeights,
		decay:  cfg.FreshnessDecay,
		mode:   mode,
		now:    now,
	}, nil
}

// ModelVersion returns the version tag stamped on board entries
func (e *Evaluator) ModelVersion() string {
	return e.priors.ModelVersion()
}

// sourceQuotes is the latest over and under quote from one source
type sourceQuotes struct {
	source string
	over   *models.MarketQuote
	under  *models.MarketQuote
}

func (s *sourceQuotes) latest() time.Time {
	var t time.Time
	if s.over != nil {
		t = s.over.ObservedAt
	}
	if s.under != nil && s.under.ObservedAt.After(t) {
		t = s.under.ObservedAt
	}
	return t
}

// pOver de-margins the source's prices. A single quoted side is paired with
// a symmetric complementary side, which always de-vigs to 0.5.
func (s *sourceQuotes) pOver() (float64, error) {
	switch {
	case s.over != nil && s.under != nil:
		pair, err := pricing.DeVig(s.over.PriceAmerican, s.under.PriceAmerican)
		if err != nil {
			return 0, err
		}
		return pair.Over, nil
	case s.over != nil:
		p, err := pricing.ImpliedProbability(s.over.PriceAmerican)
		if err != nil {
			return 0, err
		}
		over, _, err := pricing.RemoveVig(p, p)
		return over, err
	case s.under != nil:
		p, err := pricing.ImpliedProbability(s.under.PriceAmerican)
		if err != nil {
			return 0, err
		}
		under, _, err := pricing.RemoveVig(p, p)
		return 1 - under, err
	default:
		return 0, fmt.Errorf("%w: source %s has no quotes", models.ErrDegenerateMarket, s.source)
	}
}

// MarketEvaluation is the full pricing of one canonical market
type MarketEvaluation struct {
	Market       models.MarketKey
	Source       string
	POver        float64
	Distribution models.ProjectedDistribution
	OverQuote    *models.MarketQuote
	UnderQuote   *models.MarketQuote
	Edges        []models.EdgeRecord
}

// Evaluate prices one canonical market. Every quote must belong to market.
func (e *Evaluator) Evaluate(market models.MarketKey, quotes []models.MarketQuote) (*MarketEvaluation, error) {
	if market.Line == nil {
		return nil, fmt.Errorf("%w: market %s has no line", models.ErrInvalidQuote, market)
	}
	sources := groupBySource(quotes)
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: market %s has no quotes", models.ErrDegenerateMarket, market)
	}

	rep := e.representative(sources)
	line := *market.Line
	stat := market.StatType

	pOver, err := rep.pOver()
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", rep.source, err)
	}
	dist, err := e.priors.Project(line, pOver, stat)
	if err != nil {
		return nil, err
	}
	if e.mode == ConsensusWeighted && len(sources) > 1 {
		dist.Mean, err = e.weightedMean(sources, line, stat)
		if err != nil {
			return nil, err
		}
	}

	eval := &MarketEvaluation{
		Market:       market,
		Source:       rep.source,
		POver:        pOver,
		Distribution: dist,
		OverQuote:    rep.over,
		UnderQuote:   rep.under,
	}
	now := e.now()
	for _, q := range []*models.MarketQuote{rep.over, rep.under} {
		if q == nil {
			continue
		}
		record, err := e.evaluateSide(market, dist, q, now)
		if err != nil {
			return nil, err
		}
		eval.Edges = append(eval.Edges, record)
	}
	return eval, nil
}

func (e *Evaluator) evaluateSide(market models.MarketKey, dist models.ProjectedDistribution, q *models.MarketQuote, now time.Time) (models.EdgeRecord, error) {
	pModel, err := ModelProbability(dist.Mean, dist.Stdev, q.Line, q.Side)
	if err != nil {
		return models.EdgeRecord{}, err
	}
	pImplied, err := pricing.ImpliedProbability(q.PriceAmerican)
	if err != nil {
		return models.EdgeRecord{}, err
	}
	record := models.EdgeRecord{
		Market:             market,
		Side:               q.Side,
		ModelProbability:   pModel,
		ImpliedProbability: pImplied,
		EdgePct:            EdgePct(pModel, pImplied),
		FreshnessScore:     Freshness(q.ObservedAt, now, e.decay),
	}
	if odds, ok := FairOdds(pModel); ok {
		record.FairOdds = &odds
	}
	return record, nil
}

// representative picks the highest-weighted book, then the most recent
// observation, then the source name.
func (e *Evaluator) representative(sources []*sourceQuotes) *sourceQuotes {
	ranked := make([]*sourceQuotes, len(sources))
	copy(ranked, sources)
	sort.SliceStable(ranked, func(i, j int) bool {
		wi, wj := e.books.Weight(ranked[i].source), e.books.Weight(ranked[j].source)
		if wi != wj {
			return wi > wj
		}
		ti, tj := ranked[i].latest(), ranked[j].latest()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return ranked[i].source < ranked[j].source
	})
	return ranked[0]
}

// weightedMean averages the consensus means of every source that prices
// cleanly. Sources that fail are left out of the average.
func (e *Evaluator) weightedMean(sources []*sourceQuotes, line float64, stat string) (float64, error) {
	var sum, total float64
	for _, s := range sources {
		p, err := s.pOver()
		if err != nil {
			continue
		}
		mean, err := e.priors.ConsensusMean(line, p, stat)
		if err != nil {
			continue
		}
		w := e.books.Weight(s.source)
		sum += w * mean
		total += w
	}
	if total == 0 {
		return 0, fmt.Errorf("%w: no source priced cleanly", models.ErrDegenerateMarket)
	}
	return sum / total, nil
}

// groupBySource keeps the latest quote per source and side, ordered by source
func groupBySource(quotes []models.MarketQuote) []*sourceQuotes {
	bySource := make(map[string]*sourceQuotes)
	for i := range quotes {
		q := &quotes[i]
		sq, ok := bySource[q.Source]
		if !ok {
			sq = &sourceQuotes{source: q.Source}
			bySource[q.Source] = sq
		}
		slot := &sq.over
		if q.Side == models.SideUnder {
			slot = &sq.under
		}
		if *slot == nil || q.ObservedAt.After((*slot).ObservedAt) {
			*slot = q
		}
	}

	out := make([]*sourceQuotes, 0, len(bySource))
	for _, sq := range bySource {
		out = append(out, sq)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].source < out[j].source })
	return out
}

// BoardEntries flattens the evaluation into one row per quoted side
func (m *MarketEvaluation) BoardEntries(modelVersion string) []models.BoardEntry {
	var overPrice, underPrice *int
	if m.OverQuote != nil {
		p := m.OverQuote.PriceAmerican
		overPrice = &p
	}
	if m.UnderQuote != nil {
		p := m.UnderQuote.PriceAmerican
		underPrice = &p
	}

	entries := make([]models.BoardEntry, 0, len(m.Edges))
	for _, rec := range m.Edges {
		observed := m.OverQuote
		if rec.Side == models.SideUnder {
			observed = m.UnderQuote
		}
		entry := models.BoardEntry{
			MarketKey:      m.Market.String(),
			GameID:         m.Market.GameID,
			SubjectID:      m.Market.SubjectID,
			StatType:       m.Market.StatType,
			Side:           rec.Side,
			Line:           *m.Market.Line,
			Source:         m.Source,
			ProjectionMean: m.Distribution.Mean,
			Stdev:          m.Distribution.Stdev,
			OverPrice:      overPrice,
			UnderPrice:     underPrice,
			PModel:         rec.ModelProbability,
			EdgePct:        rec.EdgePct,
			FairOdds:       rec.FairOdds,
			FreshnessScore: rec.FreshnessScore,
			ModelVersion:   modelVersion,
		}
		if observed != nil {
			entry.ObservedAt = observed.ObservedAt
		}
		entries = append(entries, entry)
	}
	return entries
}
