package memory

import (
	"math"
	"time"
)

// MemoryHorizonMinutes is the hard age limit for stored patterns.
// Past this age a pattern contributes nothing and is dropped by the sweeper.
const MemoryHorizonMinutes = 95.0

// FeatureKind discriminates the value variants a feature can hold.
type FeatureKind int

const (
	FeatureNumber FeatureKind = iota
	FeatureCategory
	FeatureBool
)

// FeatureValue is a tagged union of the value types that can appear in an
// environmental state: numeric readings, category labels and flags.
type FeatureValue struct {
	Kind     FeatureKind
	Number   float64
	Category string
	Flag     bool
}

// Number wraps a numeric feature value.
func Number(v float64) FeatureValue {
	return FeatureValue{Kind: FeatureNumber, Number: v}
}

// Category wraps a category label feature value.
func Category(v string) FeatureValue {
	return FeatureValue{Kind: FeatureCategory, Category: v}
}

// Flag wraps a boolean feature value.
func Flag(v bool) FeatureValue {
	return FeatureValue{Kind: FeatureBool, Flag: v}
}

// Equal reports whether two feature values hold the same variant and value.
func (v FeatureValue) Equal(o FeatureValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case FeatureNumber:
		return v.Number == o.Number
	case FeatureCategory:
		return v.Category == o.Category
	default:
		return v.Flag == o.Flag
	}
}

// FeatureVector maps named features to their values.
type FeatureVector map[string]FeatureValue

// Pattern is a single stored observation: an environmental snapshot plus the
// learned probability that signals seen under it work out.
type Pattern struct {
	ID                 string        `json:"pattern_id"`
	Symbol             string        `json:"symbol"`
	CreatedAt          time.Time     `json:"created_at"`
	Features           FeatureVector `json:"-"`
	SignalStrength     float64       `json:"signal_strength"`
	Confidence         float64       `json:"confidence"`
	SuccessProbability float64       `json:"success_probability"`
	SampleCount        int           `json:"sample_count"`
	Outcome            *float64      `json:"outcome,omitempty"`
}

// AgeMinutes returns the pattern age in fractional minutes at the given time.
func (p *Pattern) AgeMinutes(now time.Time) float64 {
	return now.Sub(p.CreatedAt).Minutes()
}

// DecayWeight returns the exponential recency multiplier exp(-age/95).
// It is exactly zero at and past the memory horizon, so it agrees with
// IsExpired at the boundary.
func (p *Pattern) DecayWeight(now time.Time) float64 {
	age := p.AgeMinutes(now)
	if age >= MemoryHorizonMinutes {
		return 0.0
	}
	return math.Exp(-age / MemoryHorizonMinutes)
}

// IsExpired reports whether the pattern has exceeded the memory horizon.
func (p *Pattern) IsExpired(now time.Time) bool {
	return p.AgeMinutes(now) >= MemoryHorizonMinutes
}
