package domain

import "testing"

func TestQualityIsValid(t *testing.T) {
	t.Parallel() // Enable parallel execution
	for q := Quality(0); q <= 5; q++ {
		if !q.IsValid() {
			t.Errorf("Expected quality %d to be valid", q)
		}
	}

	for _, q := range []Quality{-1, 6, 42} {
		if q.IsValid() {
			t.Errorf("Expected quality %d to be invalid", q)
		}
	}
}

func TestQualityIsCorrect(t *testing.T) {
	t.Parallel() // Enable parallel execution
	testCases := []struct {
		quality Quality
		correct bool
	}{
		{QualityBlackout, false},
		{1, false},
		{QualityFamiliar, false},
		{QualityHard, true},
		{4, true},
		{QualityPerfect, true},
	}

	for _, tc := range testCases {
		if got := tc.quality.IsCorrect(); got != tc.correct {
			t.Errorf("Quality %d: expected IsCorrect %v, got %v", tc.quality, tc.correct, got)
		}
	}
}
