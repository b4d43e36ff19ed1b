package memory

import (
	"math"
	"testing"
	"time"
)

func TestDecayWeightMatchesExpiry(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		ageMinutes float64
		expired    bool
	}{
		{"fresh", 0, false},
		{"mid window", 47.5, false},
		{"just inside horizon", 94.9, false},
		{"exactly at horizon", 95, true},
		{"past horizon", 96, true},
		{"far past horizon", 600, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Pattern{CreatedAt: now.Add(-time.Duration(tt.ageMinutes * float64(time.Minute)))}

			if got := p.IsExpired(now); got != tt.expired {
				t.Errorf("IsExpired = %v, want %v", got, tt.expired)
			}

			w := p.DecayWeight(now)
			if tt.expired && w != 0 {
				t.Errorf("expired pattern has decay weight %v, want 0", w)
			}
			if !tt.expired && w <= 0 {
				t.Errorf("live pattern has decay weight %v, want > 0", w)
			}
		})
	}
}

func TestDecayWeightCurve(t *testing.T) {
	now := time.Now()
	p := &Pattern{CreatedAt: now.Add(-95 * time.Minute / 2)}

	want := math.Exp(-0.5)
	if got := p.DecayWeight(now); math.Abs(got-want) > 1e-9 {
		t.Errorf("DecayWeight at half horizon = %v, want %v", got, want)
	}

	fresh := &Pattern{CreatedAt: now}
	if got := fresh.DecayWeight(now); got != 1.0 {
		t.Errorf("DecayWeight at age 0 = %v, want 1.0", got)
	}
}
