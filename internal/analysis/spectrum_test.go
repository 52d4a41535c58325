package analysis

import (
	"math"
	"testing"
)

func TestPowerSpectrumLength(t *testing.T) {
	series := make([]float64, 24)
	ps := PowerSpectrum(series)
	// padded to 32 samples, half retained
	if len(ps) != 16 {
		t.Errorf("expected 16 bins, got %d", len(ps))
	}

	if PowerSpectrum(nil) != nil {
		t.Error("empty series should produce no spectrum")
	}
}

func TestDominantPeriodAnnualCycle(t *testing.T) {
	// four years of monthly data with a clean annual cycle
	series := make([]float64, 48)
	for i := range series {
		series[i] = 25 + 3*math.Sin(2*math.Pi*float64(i)/12)
	}

	period := DominantPeriod(series)
	if math.Abs(period-12) > 2 {
		t.Errorf("expected period near 12 months, got %f", period)
	}
}

func TestDominantPeriodConstant(t *testing.T) {
	series := []float64{5, 5, 5, 5, 5, 5, 5, 5}
	if p := DominantPeriod(series); p != 0 {
		t.Errorf("constant series has no cycle, got period %f", p)
	}
}
