package memory

import (
	"math"
	"testing"
)

func TestSimilarityReflexive(t *testing.T) {
	v := FeatureVector{
		"pressure":         Number(1.8),
		"momentum":         Category("BULLISH"),
		"volume_surge":     Number(2.1),
		"market_structure": Category("TRENDING"),
		"institutional":    Flag(true),
	}

	if got := Similarity(v, v); got != 1.0 {
		t.Errorf("Similarity(v, v) = %v, want 1.0", got)
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	a := FeatureVector{
		"pressure":     Number(1.2),
		"momentum":     Category("BULLISH"),
		"volume_surge": Number(1.5),
	}
	b := FeatureVector{
		"pressure":     Number(2.4),
		"momentum":     Category("BEARISH"),
		"confidence":   Number(0.8),
		"volume_surge": Number(1.5),
	}

	ab := Similarity(a, b)
	ba := Similarity(b, a)
	if math.Abs(ab-ba) > 1e-12 {
		t.Errorf("similarity not symmetric: %v vs %v", ab, ba)
	}
}

func TestSimilarityCases(t *testing.T) {
	tests := []struct {
		name string
		a    FeatureVector
		b    FeatureVector
		want float64
	}{
		{
			name: "no shared features",
			a:    FeatureVector{"pressure": Number(1)},
			b:    FeatureVector{"momentum": Category("BULLISH")},
			want: 0.0,
		},
		{
			name: "empty vectors",
			a:    FeatureVector{},
			b:    FeatureVector{},
			want: 0.0,
		},
		{
			name: "both zero numerics are identical",
			a:    FeatureVector{"pressure": Number(0)},
			b:    FeatureVector{"pressure": Number(0)},
			want: 1.0,
		},
		{
			name: "category mismatch",
			a:    FeatureVector{"momentum": Category("BULLISH")},
			b:    FeatureVector{"momentum": Category("BEARISH")},
			want: 0.0,
		},
		{
			name: "flag match",
			a:    FeatureVector{"institutional": Flag(true)},
			b:    FeatureVector{"institutional": Flag(true)},
			want: 1.0,
		},
		{
			name: "mismatched kinds count as dissimilar",
			a:    FeatureVector{"pressure": Number(1)},
			b:    FeatureVector{"pressure": Category("HIGH")},
			want: 0.0,
		},
		{
			name: "numeric half ratio",
			a:    FeatureVector{"pressure": Number(1)},
			b:    FeatureVector{"pressure": Number(2)},
			want: 0.5,
		},
		{
			name: "opposite signs floor at zero",
			a:    FeatureVector{"pressure": Number(1)},
			b:    FeatureVector{"pressure": Number(-1)},
			want: 0.0,
		},
		{
			name: "one sided features are skipped",
			a:    FeatureVector{"pressure": Number(1), "momentum": Category("BULLISH")},
			b:    FeatureVector{"pressure": Number(1)},
			want: 1.0,
		},
		{
			name: "mean over mixed contributions",
			a:    FeatureVector{"pressure": Number(1), "momentum": Category("BULLISH")},
			b:    FeatureVector{"pressure": Number(2), "momentum": Category("BULLISH")},
			want: 0.75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Similarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimilarityBounded(t *testing.T) {
	vectors := []FeatureVector{
		{"pressure": Number(-5), "volume_surge": Number(100)},
		{"pressure": Number(3), "volume_surge": Number(-0.1)},
		{"pressure": Number(0), "momentum": Category("NEUTRAL")},
	}

	for _, a := range vectors {
		for _, b := range vectors {
			got := Similarity(a, b)
			if got < 0 || got > 1 {
				t.Errorf("Similarity(%v, %v) = %v, out of [0,1]", a, b, got)
			}
		}
	}
}
