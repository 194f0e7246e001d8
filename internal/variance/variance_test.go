package variance

import (
	"errors"
	"math"
	"testing"
)

// almostEqual returns true if a and b are within epsilon of each other.
func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

// --- ComputeVariance() worked examples ---

func TestComputeVariance_Examples(t *testing.T) {
	tests := []struct {
		name                string
		est, actual, pct    float64
		wantPlanned         float64
		wantVariance        float64
		wantPct             float64
		wantStatus          Status
		wantTotal, wantOver float64
	}{
		{"trending over — yellow", 500, 300, 50, 250, 50, 10, StatusYellow, 600, 100},
		{"critically over — red", 500, 550, 90, 450, 100, 20, StatusRed, 611.111, 111.111},
		{"under budget — negative variance is green", 500, 240, 50, 250, -10, -2, StatusGreen, 480, -20},
		{"exactly on plan", 400, 100, 25, 100, 0, 0, StatusGreen, 400, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := ComputeVariance(tc.est, tc.actual, tc.pct)
			if err != nil {
				t.Fatalf("ComputeVariance() error = %v", err)
			}
			if !almostEqual(v.PlannedLabor, tc.wantPlanned, 0.001) {
				t.Errorf("PlannedLabor = %.4f, want %.4f", v.PlannedLabor, tc.wantPlanned)
			}
			if !almostEqual(v.LaborVariance, tc.wantVariance, 0.001) {
				t.Errorf("LaborVariance = %.4f, want %.4f", v.LaborVariance, tc.wantVariance)
			}
			if !almostEqual(v.VariancePercent, tc.wantPct, 0.001) {
				t.Errorf("VariancePercent = %.4f, want %.4f", v.VariancePercent, tc.wantPct)
			}
			if v.Status != tc.wantStatus {
				t.Errorf("Status = %q, want %q", v.Status, tc.wantStatus)
			}
			if v.ProjectedTotal == nil || v.ProjectedOverrun == nil {
				t.Fatal("projection should be set when progress > 0")
			}
			if !almostEqual(*v.ProjectedTotal, tc.wantTotal, 0.001) {
				t.Errorf("ProjectedTotal = %.4f, want %.4f", *v.ProjectedTotal, tc.wantTotal)
			}
			if !almostEqual(*v.ProjectedOverrun, tc.wantOver, 0.001) {
				t.Errorf("ProjectedOverrun = %.4f, want %.4f", *v.ProjectedOverrun, tc.wantOver)
			}
		})
	}
}

func TestComputeVariance_NegativeFourPercent(t *testing.T) {
	// 500 estimated, 230 actual at 50%: planned 250, variance -20 → -4%.
	v, err := ComputeVariance(500, 230, 50)
	if err != nil {
		t.Fatalf("ComputeVariance() error = %v", err)
	}
	if !almostEqual(v.VariancePercent, -4, 0.0001) {
		t.Errorf("VariancePercent = %.4f, want -4", v.VariancePercent)
	}
	if v.Status != StatusGreen {
		t.Errorf("Status = %q, want GREEN", v.Status)
	}
	if v.Explanation != MsgOnTrack {
		t.Errorf("Explanation = %q, want on-track message", v.Explanation)
	}
}

// --- Boundaries ---

func TestComputeVariance_Boundaries(t *testing.T) {
	tests := []struct {
		name       string
		actual     float64
		wantPct    float64
		wantStatus Status
	}{
		{"exactly 5% is green", 55, 5, StatusGreen},
		{"just over 5% is yellow", 55.1, 5.1, StatusYellow},
		{"exactly 15% is yellow", 65, 15, StatusYellow},
		{"just over 15% is red", 65.1, 15.1, StatusRed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// 100 estimated at 50% → 50 planned; variance hours == variance %.
			v, err := ComputeVariance(100, tc.actual, 50)
			if err != nil {
				t.Fatalf("ComputeVariance() error = %v", err)
			}
			if !almostEqual(v.VariancePercent, tc.wantPct, 1e-9) {
				t.Errorf("VariancePercent = %.12f, want %.12f", v.VariancePercent, tc.wantPct)
			}
			if v.Status != tc.wantStatus {
				t.Errorf("Status = %q, want %q (pct=%.6f)", v.Status, tc.wantStatus, v.VariancePercent)
			}
		})
	}
}

// --- No progress and zero estimate ---

func TestComputeVariance_ZeroProgress(t *testing.T) {
	for _, actual := range []float64{0, 12, 400} {
		v, err := ComputeVariance(500, actual, 0)
		if err != nil {
			t.Fatalf("ComputeVariance(actual=%.0f) error = %v", actual, err)
		}
		if v.VariancePercent != 0 {
			t.Errorf("actual=%.0f: VariancePercent = %.4f, want 0", actual, v.VariancePercent)
		}
		if v.Status != StatusGreen {
			t.Errorf("actual=%.0f: Status = %q, want GREEN", actual, v.Status)
		}
		if v.ProjectedTotal != nil || v.ProjectedOverrun != nil {
			t.Errorf("actual=%.0f: projection should be nil at 0%%", actual)
		}
		if v.Explanation != MsgJustStarted {
			t.Errorf("actual=%.0f: Explanation = %q, want %q", actual, v.Explanation, MsgJustStarted)
		}
	}
}

func TestComputeVariance_ZeroEstimate(t *testing.T) {
	v, err := ComputeVariance(0, 40, 50)
	if err != nil {
		t.Fatalf("ComputeVariance() error = %v", err)
	}
	if math.IsNaN(v.VariancePercent) || math.IsInf(v.VariancePercent, 0) {
		t.Fatalf("VariancePercent = %v, want a finite value", v.VariancePercent)
	}
	if v.VariancePercent != 0 {
		t.Errorf("VariancePercent = %.4f, want 0", v.VariancePercent)
	}
	if v.Status != StatusGreen {
		t.Errorf("Status = %q, want GREEN", v.Status)
	}
	if v.LaborVariance != 40 {
		t.Errorf("LaborVariance = %.4f, want 40", v.LaborVariance)
	}
}

// --- Projection round trip ---

func TestComputeVariance_ProjectionRoundTrip(t *testing.T) {
	cases := []struct{ est, actual, pct float64 }{
		{500, 300, 50},
		{120, 7.5, 3},
		{1000, 999, 99.9},
		{80, 80, 100},
		{60, 0, 40},
	}
	for _, c := range cases {
		v, err := ComputeVariance(c.est, c.actual, c.pct)
		if err != nil {
			t.Fatalf("ComputeVariance(%+v) error = %v", c, err)
		}
		wantTotal := c.actual / (c.pct / 100)
		if !almostEqual(*v.ProjectedTotal, wantTotal, 1e-9) {
			t.Errorf("%+v: ProjectedTotal = %.6f, want %.6f", c, *v.ProjectedTotal, wantTotal)
		}
		if !almostEqual(*v.ProjectedOverrun, wantTotal-c.est, 1e-9) {
			t.Errorf("%+v: ProjectedOverrun = %.6f, want %.6f", c, *v.ProjectedOverrun, wantTotal-c.est)
		}
	}
}

// --- Invalid input ---

func TestComputeVariance_InvalidInput(t *testing.T) {
	tests := []struct {
		name             string
		est, actual, pct float64
	}{
		{"percent above 100", 500, 10, 100.5},
		{"negative percent", 500, 10, -1},
		{"negative hours", 500, -3, 20},
		{"negative estimate", -500, 10, 20},
		{"NaN percent", 500, 10, math.NaN()},
		{"infinite hours", 500, math.Inf(1), 20},
		{"NaN estimate", math.NaN(), 10, 20},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeVariance(tc.est, tc.actual, tc.pct)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestComputeVariance_Overflow(t *testing.T) {
	tests := []struct {
		name             string
		est, actual, pct float64
	}{
		{"huge actual hours", 500, 1e307, 50},
		{"vanishing percent", 500, 10, 1e-320},
		{"huge estimate", 1e307, 1e307, 50},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := ComputeVariance(tc.est, tc.actual, tc.pct)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput (got %+v)", err, v)
			}
		})
	}
}

func TestComputeVariance_Deterministic(t *testing.T) {
	a, _ := ComputeVariance(500, 550, 90)
	b, _ := ComputeVariance(500, 550, 90)
	if a.Status != b.Status || a.Explanation != b.Explanation || a.VariancePercent != b.VariancePercent {
		t.Errorf("repeated calls differ: %+v vs %+v", a, b)
	}
}
