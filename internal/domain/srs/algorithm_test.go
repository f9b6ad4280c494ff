package srs

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lexcram/recall-api/internal/domain"
)

const easeEpsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < easeEpsilon
}

func TestCalculateNewEaseFactor(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()

	testCases := []struct {
		name     string
		ef       float64
		quality  domain.Quality
		expected float64
	}{
		{
			name:     "Perfect recall raises ease factor by 0.1",
			ef:       2.5,
			quality:  domain.QualityPerfect,
			expected: 2.6,
		},
		{
			name:     "Quality 4 leaves ease factor unchanged",
			ef:       2.5,
			quality:  4,
			expected: 2.5, // 2.5 + (0.1 - 1*0.10) = 2.5
		},
		{
			name:     "Correct with effort lowers ease factor",
			ef:       2.5,
			quality:  domain.QualityHard,
			expected: 2.36, // 2.5 + (0.1 - 2*0.12)
		},
		{
			name:     "Close miss lowers ease factor further",
			ef:       2.5,
			quality:  domain.QualityFamiliar,
			expected: 2.18, // 2.5 + (0.1 - 3*0.14)
		},
		{
			name:     "Blackout drops ease factor by 0.8",
			ef:       2.5,
			quality:  domain.QualityBlackout,
			expected: 1.7, // 2.5 + (0.1 - 5*0.18)
		},
		{
			name:     "Clamp at floor on repeated failure",
			ef:       1.4,
			quality:  domain.QualityBlackout,
			expected: 1.3,
		},
		{
			name:     "Already at floor stays at floor",
			ef:       1.3,
			quality:  domain.QualityFamiliar,
			expected: 1.3,
		},
		{
			name:     "No upper bound on growth",
			ef:       4.0,
			quality:  domain.QualityPerfect,
			expected: 4.1,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := calculateNewEaseFactor(tc.ef, tc.quality, params)
			if !almostEqual(got, tc.expected) {
				t.Errorf("Expected ease factor %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestCalculateNewEaseFactorNeverBelowFloor(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()

	// Clamp invariant: for every starting ease factor and every grade in
	// [0,5], the result stays at or above the floor.
	for _, ef := range []float64{1.3, 1.5, 2.5, 3.7} {
		for q := domain.Quality(0); q <= 5; q++ {
			got := calculateNewEaseFactor(ef, q, params)
			if got < params.MinEaseFactor {
				t.Errorf("ef=%v quality=%d: got %v below floor %v", ef, q, got, params.MinEaseFactor)
			}
		}
	}
}

func TestCalculateNewInterval(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()

	testCases := []struct {
		name     string
		current  int
		reps     int
		newEF    float64
		quality  domain.Quality
		expected int
	}{
		{
			name:     "Failure resets interval regardless of prior state",
			current:  40,
			reps:     7,
			newEF:    2.5,
			quality:  domain.QualityBlackout,
			expected: 1,
		},
		{
			name:     "Close miss is still a failure",
			current:  12,
			reps:     3,
			newEF:    2.2,
			quality:  domain.QualityFamiliar,
			expected: 1,
		},
		{
			name:     "First success uses the first interval",
			current:  0,
			reps:     0,
			newEF:    2.6,
			quality:  domain.QualityPerfect,
			expected: 1,
		},
		{
			name:     "First success after a lapse also uses the first interval",
			current:  1,
			reps:     0,
			newEF:    1.7,
			quality:  domain.QualityHard,
			expected: 1,
		},
		{
			name:     "Second consecutive success uses the second interval",
			current:  1,
			reps:     1,
			newEF:    2.7,
			quality:  domain.QualityPerfect,
			expected: 3,
		},
		{
			name:     "Third success multiplies prior interval by new ease factor",
			current:  3,
			reps:     2,
			newEF:    2.8,
			quality:  domain.QualityPerfect,
			expected: 8, // round(3 * 2.8) = round(8.4)
		},
		{
			name:     "Rounding goes up past the half",
			current:  10,
			reps:     4,
			newEF:    2.55,
			quality:  4,
			expected: 26, // round(25.5)
		},
		{
			name:     "Growth stage result is floored at one day",
			current:  0,
			reps:     5,
			newEF:    1.3,
			quality:  domain.QualityHard,
			expected: 1, // round(0 * 1.3) = 0, floored
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := calculateNewInterval(tc.current, tc.reps, tc.newEF, tc.quality, params)
			if got != tc.expected {
				t.Errorf("Expected interval %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestCalculateNextCardScenarios(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	card := &domain.Card{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		Subject:      "torts",
		Front:        "front",
		Back:         "back",
		EaseFactor:   2.5,
		IntervalDays: 0,
		Repetitions:  0,
		DueAt:        now,
		CreatedAt:    now,
	}

	// First perfect review: repetitions 0 -> 1, interval 0 -> 1, ease 2.5 -> 2.6.
	first := calculateNextCard(card, domain.QualityPerfect, now, params)
	if first.Repetitions != 1 || first.IntervalDays != 1 || !almostEqual(first.EaseFactor, 2.6) {
		t.Fatalf("First review: got reps=%d interval=%d ef=%v",
			first.Repetitions, first.IntervalDays, first.EaseFactor)
	}
	if !first.DueAt.Equal(now.AddDate(0, 0, 1)) {
		t.Errorf("First review: expected due_at %v, got %v", now.AddDate(0, 0, 1), first.DueAt)
	}
	if first.LastReviewedAt == nil || !first.LastReviewedAt.Equal(now) {
		t.Errorf("First review: expected last_reviewed_at %v, got %v", now, first.LastReviewedAt)
	}

	// Second perfect review: repetitions 1 -> 2, interval 1 -> 3, ease 2.6 -> 2.7.
	second := calculateNextCard(first, domain.QualityPerfect, now.AddDate(0, 0, 1), params)
	if second.Repetitions != 2 || second.IntervalDays != 3 || !almostEqual(second.EaseFactor, 2.7) {
		t.Fatalf("Second review: got reps=%d interval=%d ef=%v",
			second.Repetitions, second.IntervalDays, second.EaseFactor)
	}

	// Third perfect review: interval = round(3 * 2.8) = 8, ease 2.7 -> 2.8.
	third := calculateNextCard(second, domain.QualityPerfect, now.AddDate(0, 0, 4), params)
	if third.Repetitions != 3 || third.IntervalDays != 8 || !almostEqual(third.EaseFactor, 2.8) {
		t.Fatalf("Third review: got reps=%d interval=%d ef=%v",
			third.Repetitions, third.IntervalDays, third.EaseFactor)
	}

	// Blackout on a fresh card: repetitions -> 0, interval -> 1, ease 2.5 -> 1.7.
	lapsed := calculateNextCard(card, domain.QualityBlackout, now, params)
	if lapsed.Repetitions != 0 || lapsed.IntervalDays != 1 || !almostEqual(lapsed.EaseFactor, 1.7) {
		t.Fatalf("Lapse: got reps=%d interval=%d ef=%v",
			lapsed.Repetitions, lapsed.IntervalDays, lapsed.EaseFactor)
	}

	// Original card untouched throughout.
	if card.Repetitions != 0 || card.IntervalDays != 0 || card.EaseFactor != 2.5 {
		t.Error("Expected the input card to be unmodified")
	}
	if card.LastReviewedAt != nil {
		t.Error("Expected the input card's last_reviewed_at to stay nil")
	}
}

func TestCalculateNextCardDueDateDerivation(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()
	now := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)

	card := &domain.Card{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		Subject:      "contracts",
		Front:        "front",
		Back:         "back",
		EaseFactor:   2.5,
		IntervalDays: 6,
		Repetitions:  4,
		DueAt:        now.AddDate(0, 0, -2),
		CreatedAt:    now.AddDate(0, 0, -30),
	}

	// due_at' must equal review time plus the new interval, for every grade.
	for q := domain.Quality(0); q <= 5; q++ {
		next := calculateNextCard(card, q, now, params)
		want := now.AddDate(0, 0, next.IntervalDays)
		if !next.DueAt.Equal(want) {
			t.Errorf("quality %d: expected due_at %v, got %v", q, want, next.DueAt)
		}
		if err := next.Validate(); err != nil {
			t.Errorf("quality %d: updated card fails validation: %v", q, err)
		}
		if next.IntervalDays < 1 {
			t.Errorf("quality %d: expected interval >= 1 after grading, got %d", q, next.IntervalDays)
		}
	}
}
