package variance

import (
	"math"
	"testing"
)

func ptr(v float64) *float64 { return &v }

func TestOverrunHours_Saturates(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{1e300, math.MaxInt64},
		{-1e300, math.MinInt64},
		{math.NaN(), 0},
		{2.5, 3},
	}
	for _, tc := range tests {
		if got := overrunHours(ptr(tc.in)); got != tc.want {
			t.Errorf("overrunHours(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestExplain(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		pct     float64
		overrun *float64
		done    float64
		want    string
	}{
		{
			name:   "no progress wins over status",
			status: StatusRed,
			pct:    40,
			done:   0,
			want:   MsgJustStarted,
		},
		{
			name:   "pending",
			status: StatusPending,
			want:   MsgJustStarted,
		},
		{
			name:    "green",
			status:  StatusGreen,
			pct:     3.2,
			overrun: ptr(12),
			done:    30,
			want:    MsgOnTrack,
		},
		{
			name:    "yellow embeds percent and rounded overrun",
			status:  StatusYellow,
			pct:     10,
			overrun: ptr(100),
			done:    50,
			want:    "Job is trending 10.0% over budget. Projected overrun: 100 hours. Monitor closely.",
		},
		{
			name:    "yellow without projection reports 0 hours",
			status:  StatusYellow,
			pct:     7.24,
			overrun: nil,
			done:    50,
			want:    "Job is trending 7.2% over budget. Projected overrun: 0 hours. Monitor closely.",
		},
		{
			name:    "red rounds half up",
			status:  StatusRed,
			pct:     20,
			overrun: ptr(111.5),
			done:    90,
			want:    "ALERT: Job is 20.0% over budget. Projected overrun: 112 hours. Action needed this week.",
		},
		{
			name:    "red rounds down below half",
			status:  StatusRed,
			pct:     20,
			overrun: ptr(111.11),
			done:    90,
			want:    "ALERT: Job is 20.0% over budget. Projected overrun: 111 hours. Action needed this week.",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Explain(tc.status, tc.pct, tc.overrun, tc.done)
			if got != tc.want {
				t.Errorf("Explain() =\n  %q\nwant\n  %q", got, tc.want)
			}
		})
	}
}

func TestComputeVariance_ExplanationText(t *testing.T) {
	v, err := ComputeVariance(500, 550, 90)
	if err != nil {
		t.Fatalf("ComputeVariance() error = %v", err)
	}
	want := "ALERT: Job is 20.0% over budget. Projected overrun: 111 hours. Action needed this week."
	if v.Explanation != want {
		t.Errorf("Explanation = %q, want %q", v.Explanation, want)
	}

	v, err = ComputeVariance(500, 300, 50)
	if err != nil {
		t.Fatalf("ComputeVariance() error = %v", err)
	}
	want = "Job is trending 10.0% over budget. Projected overrun: 100 hours. Monitor closely."
	if v.Explanation != want {
		t.Errorf("Explanation = %q, want %q", v.Explanation, want)
	}
}
