package review

import (
	"errors"
	"fmt"
)

// MaxQuality is the top of the 0-5 quality scale.
const MaxQuality = 5

// ErrInvalidObservation reports a malformed performance observation.
// An invalid observation is rejected outright; clamping (e.g. quality 7 -> 5)
// would quietly corrupt the running quality statistics.
var ErrInvalidObservation = errors.New("invalid observation")

// Observation is one performance measurement for one item, produced when
// the learner completes an exercise. It is transient and never persisted.
type Observation struct {
	Quality            int
	ResponseTimeMs     int
	HintsUsed          int
	Attempts           int
	DeclaredDifficulty Difficulty
}

// Validate rejects observations outside the documented domain.
func (o Observation) Validate() error {
	if o.Quality < 0 || o.Quality > MaxQuality {
		return fmt.Errorf("%w: quality %d outside [0, %d]", ErrInvalidObservation, o.Quality, MaxQuality)
	}
	if o.ResponseTimeMs < 0 {
		return fmt.Errorf("%w: negative response time %dms", ErrInvalidObservation, o.ResponseTimeMs)
	}
	if o.HintsUsed < 0 {
		return fmt.Errorf("%w: negative hints used %d", ErrInvalidObservation, o.HintsUsed)
	}
	if o.Attempts < 1 {
		return fmt.Errorf("%w: attempts %d must be at least 1", ErrInvalidObservation, o.Attempts)
	}
	switch o.DeclaredDifficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyVeryHard:
	default:
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidObservation, o.DeclaredDifficulty)
	}
	return nil
}

// IsPass returns true if the observation counts as a passing review.
func (o Observation) IsPass(passingQuality int) bool {
	return o.Quality >= passingQuality
}
