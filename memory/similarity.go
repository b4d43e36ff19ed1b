package memory

import "math"

// Similarity scores how alike two environmental states are, in [0,1].
// Only features present on both sides are compared: numeric pairs contribute
// 1 - |a-b|/max(|a|,|b|) (floored at 0, and 1.0 when both are exactly zero),
// category and flag pairs contribute 1.0 on equality and 0.0 otherwise.
// The result is the arithmetic mean of the contributions, or 0.0 when no
// comparable pair exists. The metric is symmetric.
func Similarity(a, b FeatureVector) float64 {
	var sum float64
	var count int

	for name, av := range a {
		bv, ok := b[name]
		if !ok {
			continue
		}

		if av.Kind == FeatureNumber && bv.Kind == FeatureNumber {
			sum += numericSimilarity(av.Number, bv.Number)
			count++
			continue
		}

		if av.Equal(bv) {
			sum += 1.0
		}
		count++
	}

	if count == 0 {
		return 0.0
	}
	return sum / float64(count)
}

func numericSimilarity(x, y float64) float64 {
	if x == 0 && y == 0 {
		return 1.0
	}
	maxAbs := math.Max(math.Abs(x), math.Abs(y))
	if maxAbs == 0 {
		// Unequal values with a zero denominator count as fully dissimilar.
		return 0.0
	}
	s := 1.0 - math.Abs(x-y)/maxAbs
	if s < 0 {
		return 0.0
	}
	return s
}
