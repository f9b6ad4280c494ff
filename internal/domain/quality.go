package domain

// Quality is a learner's self-assessment of recall difficulty for a single
// review, on the SM-2 scale of 0 to 5. The scheduling math is defined for
// the full range, but the interaction surface only ever emits the four
// labeled grades below; 1 and 4 are accepted, never produced.
type Quality int

// Grades emitted by the review surface.
const (
	// QualityBlackout means no recall at all.
	QualityBlackout Quality = 0

	// QualityFamiliar means the answer was wrong but felt close.
	QualityFamiliar Quality = 2

	// QualityHard means the answer was correct with serious effort.
	QualityHard Quality = 3

	// QualityPerfect means instant, effortless recall.
	QualityPerfect Quality = 5
)

// PassingQuality is the success/failure threshold: grades at or above it
// count as a successful recall.
const PassingQuality Quality = 3

// IsValid reports whether q is within the numeric range the scheduler
// accepts. Callers must check this before invoking the scheduler.
func (q Quality) IsValid() bool {
	return q >= 0 && q <= 5
}

// IsCorrect reports whether q counts as a successful recall.
func (q Quality) IsCorrect() bool {
	return q >= PassingQuality
}
