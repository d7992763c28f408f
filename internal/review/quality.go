package review

import "math"

// DeriveQuality maps a 0-100 accuracy score and response behaviour onto the
// 0-5 quality scale the scheduler consumes. Used at session end to turn
// per-item exercise results into observations.
//
// A zero-accuracy answer is a blackout (0). Otherwise accuracy sets the
// base quality and heavy hint use knocks one point off: recall that needed
// help is weaker recall, even when the final answer was right.
func DeriveQuality(accuracy float64, hintsUsed int) int {
	if accuracy <= 0 {
		return 0
	}

	q := int(math.Round(accuracy / 100.0 * MaxQuality))
	if hintsUsed > 1 && q > 1 {
		q--
	}

	if q > MaxQuality {
		q = MaxQuality
	}
	if q < 1 {
		q = 1
	}
	return q
}
