package memory

// Signal carries the normalized fields the learner reads from an incoming
// alert or feed tick. Producers apply neutral defaults for missing fields
// before handing it over (see models.ParseAlert).
type Signal struct {
	Pressure         float64
	Direction        string
	VolumeSurgeRatio float64
	Strength         float64
	Confidence       float64
	MarketStructure  string
}

// Result is what processing one signal through the pattern memory yields.
type Result struct {
	PatternID            string     `json:"pattern_id"`
	EnhancedConfidence   float64    `json:"enhanced_confidence"`
	SimilarPatternsFound int        `json:"similar_patterns_found"`
	Statistics           Statistics `json:"pattern_statistics"`
	Recommendation       string     `json:"learning_recommendation"`
}

// Learner turns raw signals into stored patterns and biases their confidence
// with what the bank remembers about similar past conditions. It holds no
// state of its own beyond the bank reference.
type Learner struct {
	bank *Bank
}

// NewLearner creates a learner over the given pattern bank.
func NewLearner(bank *Bank) *Learner {
	return &Learner{bank: bank}
}

// Bank exposes the underlying pattern bank.
func (l *Learner) Bank() *Bank {
	return l.bank
}

// ProcessSignal runs the full associative step: extract the environmental
// state, retrieve similar live patterns, blend historical success into the
// confidence, store the new pattern and summarize the symbol's memory.
func (l *Learner) ProcessSignal(symbol string, sig Signal) Result {
	features := l.extractFeatures(sig)

	matches := l.bank.QuerySimilar(symbol, features, 0)
	enhanced := l.enhanceConfidence(sig.Confidence, matches)

	patternID := l.bank.Store(symbol, features, sig.Confidence, sig.Strength, enhanced)
	stats := l.bank.Statistics(symbol)

	return Result{
		PatternID:            patternID,
		EnhancedConfidence:   enhanced,
		SimilarPatternsFound: len(matches),
		Statistics:           stats,
		Recommendation:       recommendation(enhanced, stats),
	}
}

// extractFeatures maps the signal onto the fixed environmental state fields.
// An absent direction is omitted so similarity comparison skips it.
func (l *Learner) extractFeatures(sig Signal) FeatureVector {
	features := FeatureVector{
		"pressure":        Number(sig.Pressure),
		"volume_surge":    Number(sig.VolumeSurgeRatio),
		"signal_strength": Number(sig.Strength),
		"confidence":      Number(sig.Confidence),
	}
	if sig.Direction != "" {
		features["momentum"] = Category(sig.Direction)
	}
	structure := sig.MarketStructure
	if structure == "" {
		structure = "NORMAL"
	}
	features["market_structure"] = Category(structure)
	return features
}

// enhanceConfidence blends the raw confidence with the relevance-weighted
// success probability of the top matches. With no usable history the raw
// confidence passes through unchanged.
func (l *Learner) enhanceConfidence(base float64, matches []Match) float64 {
	if len(matches) == 0 {
		return base
	}

	opts := l.bank.Options()
	top := matches
	if len(top) > opts.BlendLimit {
		top = top[:opts.BlendLimit]
	}

	var weightedSum, totalWeight float64
	for _, m := range top {
		weightedSum += m.Pattern.SuccessProbability * m.Relevance
		totalWeight += m.Relevance
	}
	if totalWeight <= 0 {
		return base
	}

	historical := weightedSum / totalWeight
	return opts.BaseWeight*base + opts.HistoryWeight*historical
}

// recommendation derives the qualitative label from the symbol's memory
// state. Order matters: sparse history wins over everything else.
func recommendation(confidence float64, stats Statistics) string {
	switch {
	case stats.TotalPatterns < 10:
		return "LEARNING: Gathering patterns - trade cautiously"
	case stats.AverageSuccessRate > 0.7 && confidence > 0.7:
		return "HIGH CONFIDENCE: Historical patterns support this signal"
	case stats.AverageSuccessRate > 0.7:
		return "MIXED: Good history but weak current signal"
	case stats.AverageSuccessRate < 0.4:
		return "CAUTION: Poor historical performance in similar conditions"
	default:
		return "MODERATE: Continue monitoring pattern effectiveness"
	}
}
