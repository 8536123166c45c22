package folio

import (
	"math"
	"testing"
)

func TestReconcileTotal(t *testing.T) {
	tests := []struct {
		name  string
		qty   *float64
		price *float64
		want  *float64
	}{
		{"both present", Float(10), Float(25.5), Float(255)},
		{"rounds half up", Float(3), Float(33.335), Float(100.01)},
		{"fractional result", Float(1000), Float(0.05), Float(50)},
		{"nil qty", nil, Float(25.5), nil},
		{"nil price", Float(10), nil, nil},
		{"both nil", nil, nil, nil},
		{"nan qty", Float(math.NaN()), Float(25.5), nil},
		{"inf price", Float(10), Float(math.Inf(1)), nil},
		{"zero qty", Float(0), Float(25.5), Float(0)},
		{"negative qty", Float(-2), Float(10), Float(-20)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ReconcileTotal(tc.qty, tc.price)
			if tc.want == nil {
				if got != nil {
					t.Fatalf("expected nil total, got %v", *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected %v, got nil", *tc.want)
			}
			if *got != *tc.want {
				t.Errorf("expected %v, got %v", *tc.want, *got)
			}
		})
	}
}

func TestReconcileTotalAvoidsFloatDrift(t *testing.T) {
	// 0.1 * 3 in raw float64 arithmetic is 0.30000000000000004.
	got := ReconcileTotal(Float(3), Float(0.1))
	if got == nil || *got != 0.3 {
		t.Fatalf("expected 0.3, got %v", got)
	}
}

func TestRoundAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.005, 1.01},
		{1.004, 1.0},
		{-1.005, -1.01},
		{0, 0},
		{100.999, 101},
	}
	for _, tc := range tests {
		if got := RoundAmount(tc.in); got != tc.want {
			t.Errorf("RoundAmount(%v): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}
