package intelligence

import (
	"testing"

	"amoeba-trading/models"
)

func TestAssessNeutralAlert(t *testing.T) {
	a := NewAssessor()

	alert := models.ParseAlert(nil)
	assessment := a.Assess(alert)

	// Neutral defaults: quantity 0, quality 3 (normal resistance, good
	// timing, open structure). Base 3*10/11 ≈ 2.7, no modifiers apply.
	if assessment.Quantity != models.QuantitySmall {
		t.Errorf("quantity = %s, want SMALL", assessment.Quantity)
	}
	if assessment.Quality != models.QualityMedium {
		t.Errorf("quality = %s, want MEDIUM", assessment.Quality)
	}
	if assessment.Score < 2.6 || assessment.Score > 2.8 {
		t.Errorf("score = %v, want ~2.7", assessment.Score)
	}
	if assessment.Sustainability != models.SustainabilityLimited {
		t.Errorf("sustainability = %s, want LIMITED", assessment.Sustainability)
	}
	if assessment.PredictedDuration != "30min-2h" {
		t.Errorf("duration = %s, want 30min-2h", assessment.PredictedDuration)
	}
}

func TestAssessStrongAlert(t *testing.T) {
	a := NewAssessor()

	alert := &models.Alert{
		Symbol:                "BTCUSD",
		AlertType:             "PRESSURE",
		Confidence:            0.9,
		Pressure:              3.0,
		Threshold:             1.5,
		VolumeSurgeRatio:      2.0,
		VolumeTrendStrength:   1.3,
		InstitutionalHours:    true,
		RangeExpansion:        1.5,
		ResistanceLevel:       "LIGHT",
		ConsistentAdvancement: true,
		MarketStructure:       models.StructureTrending,
	}

	assessment := a.Assess(alert)

	// Max points: 5 quantity + 6 quality, base 10, boosted then capped.
	if assessment.Quantity != models.QuantityLarge {
		t.Errorf("quantity = %s, want LARGE", assessment.Quantity)
	}
	if assessment.Quality != models.QualityHigh {
		t.Errorf("quality = %s, want HIGH", assessment.Quality)
	}
	if assessment.Score != 10.0 {
		t.Errorf("score = %v, want capped 10.0", assessment.Score)
	}
	if assessment.Sustainability != models.SustainabilityExceptional {
		t.Errorf("sustainability = %s, want EXCEPTIONAL", assessment.Sustainability)
	}
	if assessment.PredictedDuration != "24-72h" {
		t.Errorf("duration = %s, want 24-72h", assessment.PredictedDuration)
	}
}

func TestEmergencyReducesScore(t *testing.T) {
	a := NewAssessor()

	base := &models.Alert{
		Confidence:       0.5,
		Pressure:         1.0,
		Threshold:        1.5,
		VolumeSurgeRatio: 2.0,
		ResistanceLevel:  "LIGHT",
		MarketStructure:  models.StructureNormal,
	}
	emergency := *base
	emergency.AlertType = "EMERGENCY"

	normal := a.Assess(base)
	reduced := a.Assess(&emergency)

	if reduced.Score >= normal.Score {
		t.Errorf("emergency score %v not below normal %v", reduced.Score, normal.Score)
	}
}

func TestClassificationBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{9.0, models.SustainabilityExceptional},
		{8.9, models.SustainabilityExcellent},
		{7.0, models.SustainabilityExcellent},
		{5.0, models.SustainabilityGood},
		{3.0, models.SustainabilityModerate},
		{2.9, models.SustainabilityLimited},
		{0.0, models.SustainabilityLimited},
	}

	for _, tt := range tests {
		if got := classifySustainability(tt.score); got != tt.want {
			t.Errorf("classifySustainability(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
