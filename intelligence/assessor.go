// Package intelligence implements the food source assessment: a stateless
// 10-point scoring of how much opportunity a signal represents and how long
// it is likely to last.
package intelligence

import (
	"fmt"
	"strings"

	"amoeba-trading/models"
)

// Assessment is the scored classification of one alert.
type Assessment struct {
	Quantity          string            `json:"quantity"`
	Quality           string            `json:"quality"`
	Score             float64           `json:"score"`
	Sustainability    string            `json:"sustainability"`
	PredictedDuration string            `json:"predicted_duration"`
	Confidence        float64           `json:"confidence"`
	Rationale         map[string]string `json:"rationale"`
}

// Assessor scores alerts. It carries no state between calls.
type Assessor struct{}

// NewAssessor creates a food source assessor.
func NewAssessor() *Assessor {
	return &Assessor{}
}

// Assess scores the alert and classifies its quantity, quality,
// sustainability and predicted duration.
func (a *Assessor) Assess(alert *models.Alert) Assessment {
	quantityScore, quantityDetails := a.quantityScore(alert)
	qualityScore, qualityDetails := a.qualityScore(alert)

	score := a.granularScore(quantityScore, qualityScore, alert)

	return Assessment{
		Quantity:          classifyQuantity(quantityScore),
		Quality:           classifyQuality(qualityScore),
		Score:             roundTenth(score),
		Sustainability:    classifySustainability(score),
		PredictedDuration: predictDuration(score),
		Confidence:        alert.Confidence,
		Rationale: map[string]string{
			"quantity_factors":  quantityDetails,
			"quality_factors":   qualityDetails,
			"score_calculation": fmt.Sprintf("Base: %d/10, Adjusted: %.1f/10", quantityScore+qualityScore, score),
			"grade":             gradeDescription(score),
		},
	}
}

// quantityScore rates how much is on offer, 0-5 points.
func (a *Assessor) quantityScore(alert *models.Alert) (int, string) {
	score := 0
	var details []string

	switch {
	case alert.VolumeSurgeRatio > 1.5:
		score += 2
		details = append(details, "Strong volume surge (2pts)")
	case alert.VolumeSurgeRatio > 1.2:
		score++
		details = append(details, "Moderate volume surge (1pt)")
	default:
		details = append(details, "Normal volume (0pts)")
	}

	if alert.VolumeTrendStrength > 1.1 {
		score++
		details = append(details, "Accelerating volume (1pt)")
	} else {
		details = append(details, "Stable volume trend (0pts)")
	}

	if alert.InstitutionalHours {
		score++
		details = append(details, "Institutional hours (1pt)")
	} else {
		details = append(details, "Retail hours (0pts)")
	}

	if alert.RangeExpansion > 1.2 {
		score++
		details = append(details, "Range expanding (1pt)")
	} else {
		details = append(details, "Normal range (0pts)")
	}

	return score, strings.Join(details, ", ")
}

// qualityScore rates how clean the opportunity is, 0-6 points.
func (a *Assessor) qualityScore(alert *models.Alert) (int, string) {
	score := 0
	var details []string

	switch alert.ResistanceLevel {
	case "LIGHT":
		score += 2
		details = append(details, "Light resistance (2pts)")
	case "NORMAL":
		score++
		details = append(details, "Normal resistance (1pt)")
	default:
		details = append(details, "Heavy resistance (0pts)")
	}

	if alert.ConsistentAdvancement || alert.ConsistentDecline {
		score++
		details = append(details, "Directional consistency (1pt)")
	} else {
		details = append(details, "Choppy movement (0pts)")
	}

	if alert.InstitutionalHours {
		score++
		details = append(details, "Institutional timing (1pt)")
	} else {
		details = append(details, "Retail timing (0pts)")
	}

	if !alert.WeekendApproach {
		score++
		details = append(details, "Good timing (1pt)")
	} else {
		details = append(details, "Weekend approach (0pts)")
	}

	if alert.MarketStructure != models.StructureConstrained {
		score++
		details = append(details, "Open structure (1pt)")
	} else {
		details = append(details, "Constrained structure (0pts)")
	}

	return score, strings.Join(details, ", ")
}

// granularScore scales the 11 raw points onto a 10-point scale and applies
// environmental modifiers, clamped to [0,10].
func (a *Assessor) granularScore(quantity, quality int, alert *models.Alert) float64 {
	base := float64(quantity+quality) * 10.0 / 11.0

	modifiers := 1.0

	if alert.AlertType == "EMERGENCY" {
		modifiers *= 0.7
	}

	if alert.Confidence > 0.8 {
		modifiers *= 1.1
	} else if alert.Confidence < 0.4 {
		modifiers *= 0.9
	}

	if alert.Pressure > alert.Threshold*1.5 {
		modifiers *= 1.15
	} else if alert.Pressure > alert.Threshold {
		modifiers *= 1.05
	}

	score := base * modifiers
	if score > 10 {
		return 10
	}
	if score < 0 {
		return 0
	}
	return score
}

func classifyQuantity(score int) string {
	switch {
	case score >= 4:
		return models.QuantityLarge
	case score >= 2:
		return models.QuantityMedium
	default:
		return models.QuantitySmall
	}
}

func classifyQuality(score int) string {
	switch {
	case score >= 4:
		return models.QualityHigh
	case score >= 2:
		return models.QualityMedium
	default:
		return models.QualityLow
	}
}

func classifySustainability(score float64) string {
	switch {
	case score >= 9:
		return models.SustainabilityExceptional
	case score >= 7:
		return models.SustainabilityExcellent
	case score >= 5:
		return models.SustainabilityGood
	case score >= 3:
		return models.SustainabilityModerate
	default:
		return models.SustainabilityLimited
	}
}

func predictDuration(score float64) string {
	switch {
	case score >= 9:
		return "24-72h"
	case score >= 7:
		return "12-24h"
	case score >= 5:
		return "6-12h"
	case score >= 3:
		return "2-6h"
	default:
		return "30min-2h"
	}
}

func gradeDescription(score float64) string {
	switch {
	case score >= 9:
		return "🥩 PREMIUM GRADE - Exceptional institutional-quality opportunity"
	case score >= 7:
		return "🍖 HIGH GRADE - Excellent sustained opportunity"
	case score >= 5:
		return "🥘 GOOD GRADE - Solid standard opportunity"
	case score >= 3:
		return "🍞 MODERATE GRADE - Limited quick opportunity"
	default:
		return "🍿 LIMITED GRADE - Minimal scalp opportunity only"
	}
}

func roundTenth(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
