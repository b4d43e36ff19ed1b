// Package models defines the signal vocabulary shared across the amoeba
// trading system: direction and market structure labels, food source grades,
// and the inbound alert shape with its lenient defaulting rules.
package models

// Signal directions
const (
	DirectionBullish = "BULLISH"
	DirectionBearish = "BEARISH"
	DirectionNeutral = "NEUTRAL"
)

// Market structure labels
const (
	StructureNormal      = "NORMAL"
	StructureTrending    = "TRENDING"
	StructureConstrained = "CONSTRAINED"
)

// Food quantity classifications
const (
	QuantitySmall  = "SMALL"
	QuantityMedium = "MEDIUM"
	QuantityLarge  = "LARGE"
)

// Food quality classifications
const (
	QualityLow    = "LOW"
	QualityMedium = "MEDIUM"
	QualityHigh   = "HIGH"
)

// Sustainability ratings
const (
	SustainabilityLimited     = "LIMITED"
	SustainabilityModerate    = "MODERATE"
	SustainabilityGood        = "GOOD"
	SustainabilityExcellent   = "EXCELLENT"
	SustainabilityExceptional = "EXCEPTIONAL"
)

// Alert is a normalized inbound signal, either a webhook delivery or a
// synthetic alert built from polled market data. Missing fields carry the
// neutral defaults applied by ParseAlert.
type Alert struct {
	Symbol     string  `json:"symbol"`
	Exchange   string  `json:"exchange"`
	AlertType  string  `json:"alert_type"`
	Direction  string  `json:"direction"`
	Strength   float64 `json:"strength"`
	Confidence float64 `json:"confidence"`
	Pressure   float64 `json:"pressure"`
	Threshold  float64 `json:"threshold"`

	// Scoring inputs
	VolumeSurgeRatio      float64 `json:"volume_surge_ratio"`
	VolumeTrendStrength   float64 `json:"volume_trend_strength"`
	InstitutionalHours    bool    `json:"institutional_hours"`
	RangeExpansion        float64 `json:"range_expansion"`
	ResistanceLevel       string  `json:"resistance_level"`
	ConsistentAdvancement bool    `json:"consistent_advancement"`
	ConsistentDecline     bool    `json:"consistent_decline"`
	WeekendApproach       bool    `json:"is_weekend_approach"`
	MarketStructure       string  `json:"market_structure"`

	Message string `json:"message,omitempty"`
}

// ParseAlert builds an Alert from a loosely structured payload, defaulting
// every missing or malformed field to its neutral value. It never fails;
// structurally hopeless payloads simply produce a neutral alert.
func ParseAlert(raw map[string]interface{}) *Alert {
	if raw == nil {
		raw = map[string]interface{}{}
	}

	return &Alert{
		Symbol:     getString(raw, "symbol", "UNKNOWN"),
		Exchange:   getString(raw, "exchange", "UNKNOWN"),
		AlertType:  getString(raw, "alert_type", "unknown"),
		Direction:  getString(raw, "direction", DirectionNeutral),
		Strength:   getFloat(raw, "strength", 0.5),
		Confidence: getFloat(raw, "confidence", 0.5),
		Pressure:   getFloat(raw, "pressure", 1.0),
		Threshold:  getFloat(raw, "threshold", 1.5),

		VolumeSurgeRatio:      getFloat(raw, "volume_surge_ratio", 1.0),
		VolumeTrendStrength:   getFloat(raw, "volume_trend_strength", 1.0),
		InstitutionalHours:    getBool(raw, "institutional_hours"),
		RangeExpansion:        getFloat(raw, "range_expansion", 1.0),
		ResistanceLevel:       getString(raw, "resistance_level", StructureNormal),
		ConsistentAdvancement: getBool(raw, "consistent_advancement"),
		ConsistentDecline:     getBool(raw, "consistent_decline"),
		WeekendApproach:       getBool(raw, "is_weekend_approach"),
		MarketStructure:       getString(raw, "market_structure", StructureNormal),

		Message: getString(raw, "message", ""),
	}
}

func getString(raw map[string]interface{}, key, def string) string {
	if v, ok := raw[key].(string); ok && v != "" {
		return v
	}
	return def
}

func getFloat(raw map[string]interface{}, key string, def float64) float64 {
	switch v := raw[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

func getBool(raw map[string]interface{}, key string) bool {
	v, _ := raw[key].(bool)
	return v
}
