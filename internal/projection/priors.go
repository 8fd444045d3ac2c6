// Package projection infers a stat distribution from market consensus.
package projection

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	// DefaultStdev is used for stat types missing from the prior table
	DefaultStdev = 5.0
	// DefaultClampEpsilon bounds p_over away from 0 and 1 before inversion
	DefaultClampEpsilon = 1e-6
	// DefaultModelVersion tags every projection and board entry
	DefaultModelVersion = "nba_v0_market_normal_001"
)

// DefaultStdevPriors are the per-stat game-to-game standard deviations
func DefaultStdevPriors() map[string]float64 {
	return map[string]float64{
		"PTS": 5.5,
		"REB": 2.2,
		"AST": 1.8,
		"PRA": 6.8,
	}
}

// Priors is the immutable model configuration passed to projection and edge
// evaluation. Build it with NewPriors; the zero value is not usable.
type Priors struct {
	stdevs       map[string]float64
	defaultStdev float64
	epsilon      float64
	version      string
}

// PriorsConfig holds the raw values a Priors is built from
type PriorsConfig struct {
	StdevPriors  map[string]float64
	DefaultStdev float64
	ClampEpsilon float64
	ModelVersion string
}

// NewPriors validates the configuration and copies the stdev table
func NewPriors(cfg PriorsConfig) (*Priors, error) {
	p := &Priors{
		stdevs:       make(map[string]float64, len(cfg.StdevPriors)),
		defaultStdev: cfg.DefaultStdev,
		epsilon:      cfg.ClampEpsilon,
		version:      cfg.ModelVersion,
	}
	if p.defaultStdev == 0 {
		p.defaultStdev = DefaultStdev
	}
	if p.epsilon == 0 {
		p.epsilon = DefaultClampEpsilon
	}
	if p.version == "" {
		p.version = DefaultModelVersion
	}
	if !isPositiveFinite(p.defaultStdev) {
		return nil, fmt.Errorf("default stdev must be positive, got %v", p.defaultStdev)
	}
	if !(p.epsilon > 0 && p.epsilon < 0.5) {
		return nil, fmt.Errorf("clamp epsilon must be in (0, 0.5), got %v", p.epsilon)
	}
	for stat, stdev := range cfg.StdevPriors {
		if !isPositiveFinite(stdev) {
			return nil, fmt.Errorf("stdev prior for %s must be positive, got %v", stat, stdev)
		}
		p.stdevs[strings.ToUpper(stat)] = stdev
	}
	return p, nil
}

// DefaultPriors returns priors built from the default table
func DefaultPriors() *Priors {
	p, err := NewPriors(PriorsConfig{StdevPriors: DefaultStdevPriors()})
	if err != nil {
		panic(err)
	}
	return p
}

// Stdev returns the prior for a stat type, falling back to the default
func (p *Priors) Stdev(statType string) float64 {
	if s, ok := p.stdevs[strings.ToUpper(statType)]; ok {
		return s
	}
	return p.defaultStdev
}

// Epsilon returns the clamp bound used before inversion
func (p *Priors) Epsilon() float64 {
	return p.epsilon
}

// ModelVersion returns the version tag for produced projections
func (p *Priors) ModelVersion() string {
	return p.version
}

// StatTypes lists the stat types with an explicit prior, sorted
func (p *Priors) StatTypes() []string {
	out := make([]string, 0, len(p.stdevs))
	for stat := range p.stdevs {
		out = append(out, stat)
	}
	sort.Strings(out)
	return out
}

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
