package matching_test

import (
	"testing"

	"github.com/coldflow/supportbot/internal/matching"
)

func TestQualityLabel(t *testing.T) {
	w := matching.DefaultWeights()

	testCases := []struct {
		confidence float64
		expected   string
	}{
		{1.0, matching.QualityExcellent},
		{0.9, matching.QualityExcellent},
		{0.89, matching.QualityVeryGood},
		{0.8, matching.QualityVeryGood},
		{0.79, matching.QualityGood},
		{0.7, matching.QualityGood},
		{0.69, matching.QualityAcceptable},
		{0.6, matching.QualityAcceptable},
		{0.59, matching.QualityPoor},
		{0.0, matching.QualityPoor},
		// out-of-range inputs clamp
		{1.5, matching.QualityExcellent},
		{-0.2, matching.QualityPoor},
	}

	for _, tc := range testCases {
		if got := matching.QualityLabel(tc.confidence, w); got != tc.expected {
			t.Errorf("QualityLabel(%v) = %q, want %q", tc.confidence, got, tc.expected)
		}
	}
}

func TestQualityLabel_CustomThresholds(t *testing.T) {
	w := matching.Weights{MinConfidence: 0.4, HighConfidence: 0.95}

	if got := matching.QualityLabel(0.92, w); got != matching.QualityVeryGood {
		t.Errorf("QualityLabel(0.92) = %q, want %q with a raised high threshold", got, matching.QualityVeryGood)
	}
	if got := matching.QualityLabel(0.45, w); got != matching.QualityAcceptable {
		t.Errorf("QualityLabel(0.45) = %q, want %q with a lowered minimum", got, matching.QualityAcceptable)
	}
}

func TestQualityLabel_Monotonic(t *testing.T) {
	w := matching.DefaultWeights()

	rank := map[string]int{
		matching.QualityPoor:       0,
		matching.QualityAcceptable: 1,
		matching.QualityGood:       2,
		matching.QualityVeryGood:   3,
		matching.QualityExcellent:  4,
	}

	prev := -1
	for c := 0.0; c <= 1.0; c += 0.05 {
		r := rank[matching.QualityLabel(c, w)]
		if r < prev {
			t.Fatalf("label rank decreased at confidence %v", c)
		}
		prev = r
	}
}
