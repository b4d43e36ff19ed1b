package memory

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
)

// Options holds the tunable parameters of the memory engine. The defaults
// mirror the values the learning rule was calibrated with.
type Options struct {
	SweepInterval       time.Duration // min time between expiry sweeps
	LearningRate        float64       // EMA step for outcome reinforcement
	SimilarityThreshold float64       // default cutoff for QuerySimilar
	QueryLimit          int           // max matches returned by QuerySimilar
	BlendLimit          int           // matches considered for confidence blending
	BaseWeight          float64       // weight of the raw signal confidence
	HistoryWeight       float64       // weight of the historical confidence
}

// DefaultOptions returns the standard engine parameters.
func DefaultOptions() Options {
	return Options{
		SweepInterval:       5 * time.Minute,
		LearningRate:        0.1,
		SimilarityThreshold: 0.7,
		QueryLimit:          10,
		BlendLimit:          5,
		BaseWeight:          0.6,
		HistoryWeight:       0.4,
	}
}

// Match pairs a retrieved pattern with its relevance (similarity x decay).
type Match struct {
	Pattern   Pattern
	Relevance float64
}

// Statistics summarizes the active patterns held for one symbol.
type Statistics struct {
	TotalPatterns          int     `json:"total_patterns"`
	AverageSuccessRate     float64 `json:"average_success_rate"`
	HighConfidencePatterns int     `json:"high_confidence_patterns"`
	MemoryUtilization      float64 `json:"memory_utilization"`
	OldestPatternAge       float64 `json:"oldest_pattern_age"`
}

// Bank is the shared in-memory pattern store. It keeps per-symbol pattern
// sequences in insertion order, expires entries past the memory horizon with
// a throttled sweep, and serializes all access behind a single mutex.
type Bank struct {
	mu        sync.Mutex
	patterns  map[string][]*Pattern
	opts      Options
	lastSweep time.Time
	seq       uint64

	now func() time.Time
}

// NewBank creates an empty pattern bank with the given options. Zero-valued
// option fields fall back to their defaults.
func NewBank(opts Options) *Bank {
	def := DefaultOptions()
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = def.SweepInterval
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = def.LearningRate
	}
	if opts.SimilarityThreshold <= 0 {
		opts.SimilarityThreshold = def.SimilarityThreshold
	}
	if opts.QueryLimit <= 0 {
		opts.QueryLimit = def.QueryLimit
	}
	if opts.BlendLimit <= 0 {
		opts.BlendLimit = def.BlendLimit
	}
	if opts.BaseWeight <= 0 && opts.HistoryWeight <= 0 {
		opts.BaseWeight = def.BaseWeight
		opts.HistoryWeight = def.HistoryWeight
	}

	now := time.Now
	return &Bank{
		patterns:  make(map[string][]*Pattern),
		opts:      opts,
		lastSweep: now(),
		now:       now,
	}
}

// Options returns the engine parameters the bank was built with.
func (b *Bank) Options() Options {
	return b.opts
}

// Store appends a new pattern for the symbol and returns its id. It never
// fails; inputs are taken as-is. The success probability starts at
// initialProb clamped to [0,1].
func (b *Bank) Store(symbol string, features FeatureVector, confidence, strength, initialProb float64) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.seq++
	id := fmt.Sprintf("%s_%d_%d", symbol, now.UnixMilli(), b.seq)

	b.patterns[symbol] = append(b.patterns[symbol], &Pattern{
		ID:                 id,
		Symbol:             symbol,
		CreatedAt:          now,
		Features:           features,
		SignalStrength:     strength,
		Confidence:         confidence,
		SuccessProbability: clamp01(initialProb),
		SampleCount:        1,
	})

	b.sweepIfDue(now)
	return id
}

// QuerySimilar returns the non-expired patterns for the symbol whose
// similarity to the query state is at least threshold, ranked by relevance
// (similarity x decay weight) descending and truncated to the query limit.
// A threshold <= 0 uses the configured default.
func (b *Bank) QuerySimilar(symbol string, features FeatureVector, threshold float64) []Match {
	b.mu.Lock()
	defer b.mu.Unlock()

	if threshold <= 0 {
		threshold = b.opts.SimilarityThreshold
	}

	now := b.now()
	b.sweepIfDue(now)

	var matches []Match
	for _, p := range b.patterns[symbol] {
		if p.IsExpired(now) {
			continue
		}
		sim := Similarity(features, p.Features)
		if sim < threshold {
			continue
		}
		matches = append(matches, Match{Pattern: *p, Relevance: sim * p.DecayWeight(now)})
	}

	// Stable sort keeps insertion order between equally relevant patterns.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Relevance > matches[j].Relevance
	})

	if len(matches) > b.opts.QueryLimit {
		matches = matches[:b.opts.QueryLimit]
	}
	return matches
}

// Reinforce applies an observed outcome to the identified pattern using an
// exponential moving average and reports whether a live pattern was updated.
// An unknown or already expired id is a silent miss, not an error.
func (b *Bank) Reinforce(patternID string, outcome float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	for _, seq := range b.patterns {
		for _, p := range seq {
			if p.ID != patternID || p.IsExpired(now) {
				continue
			}

			old := p.SuccessProbability
			p.SuccessProbability = clamp01(old + b.opts.LearningRate*(outcome-old))
			o := outcome
			p.Outcome = &o
			p.SampleCount++

			log.Printf("🧠 Pattern %s reinforced: probability %.2f -> %.2f", patternID, old, p.SuccessProbability)
			return true
		}
	}
	return false
}

// Statistics summarizes the active patterns for a symbol. An unknown symbol
// yields zero counts rather than an error.
func (b *Bank) Statistics(symbol string) Statistics {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.sweepIfDue(now)

	var stats Statistics
	var probSum, decaySum float64
	for _, p := range b.patterns[symbol] {
		if p.IsExpired(now) {
			continue
		}
		stats.TotalPatterns++
		probSum += p.SuccessProbability
		decaySum += p.DecayWeight(now)
		if p.SuccessProbability > 0.7 {
			stats.HighConfidencePatterns++
		}
		if age := p.AgeMinutes(now); age > stats.OldestPatternAge {
			stats.OldestPatternAge = age
		}
	}

	if stats.TotalPatterns > 0 {
		stats.AverageSuccessRate = probSum / float64(stats.TotalPatterns)
		stats.MemoryUtilization = decaySum / float64(stats.TotalPatterns)
	}
	return stats
}

// ActiveSymbols returns the symbols currently holding live patterns.
func (b *Bank) ActiveSymbols() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	var symbols []string
	for symbol, seq := range b.patterns {
		for _, p := range seq {
			if !p.IsExpired(now) {
				symbols = append(symbols, symbol)
				break
			}
		}
	}
	sort.Strings(symbols)
	return symbols
}

// sweepIfDue drops expired patterns across all symbols, at most once per
// sweep interval. Callers must hold b.mu.
func (b *Bank) sweepIfDue(now time.Time) {
	if now.Sub(b.lastSweep) < b.opts.SweepInterval {
		return
	}
	b.lastSweep = now

	for symbol, seq := range b.patterns {
		kept := seq[:0]
		for _, p := range seq {
			if !p.IsExpired(now) {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			delete(b.patterns, symbol)
			continue
		}
		b.patterns[symbol] = kept
	}

	log.Printf("🧹 Memory sweep completed. Active symbols: %d", len(b.patterns))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
