package session

import (
	"context"
	"fmt"

	"github.com/lexivo/lexivo/internal/catalog"
	"github.com/lexivo/lexivo/internal/store"
)

// Reason explains a gate rejection. Rejections are ordinary results, not
// errors: running out of lives is an expected, frequent outcome.
type Reason string

const (
	ReasonInsufficientResource Reason = "insufficient_resource"
	ReasonLocked               Reason = "locked"
)

// Decision is the outcome of a lesson access check. Reason is set exactly
// when Allowed is false, so the caller can render the right message
// without re-deriving the cause.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Gate decides whether a learner may start a lesson. Checks run in order
// and short-circuit on the first failure: lives balance first, then the
// lesson's position in the unlock ordering.
type Gate struct {
	content  catalog.Provider
	profiles store.ProfileRepo
	progress store.ProgressRepo
	minLives int
}

// NewGate creates a gate. minLives is the balance required to start;
// values below 1 are raised to 1.
func NewGate(content catalog.Provider, profiles store.ProfileRepo, progress store.ProgressRepo, minLives int) *Gate {
	if minLives < 1 {
		minLives = 1
	}
	return &Gate{content: content, profiles: profiles, progress: progress, minLives: minLives}
}

// CanStart checks lives and prerequisites for one lesson. It mutates
// nothing: no lives are consumed and no progress is seeded here.
func (g *Gate) CanStart(ctx context.Context, userID, lessonID string) (Decision, error) {
	balance, err := g.profiles.Balance(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: read lives balance: %v", ErrStoreUnavailable, err)
	}
	if balance < g.minLives {
		return Decision{Allowed: false, Reason: ReasonInsufficientResource}, nil
	}

	completed, err := g.progress.CompletedLessons(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: read completed lessons: %v", ErrStoreUnavailable, err)
	}
	unlocked, err := g.content.Unlocked(lessonID, completed)
	if err != nil {
		return Decision{}, fmt.Errorf("check unlock for lesson %s: %w", lessonID, err)
	}
	if !unlocked {
		return Decision{Allowed: false, Reason: ReasonLocked}, nil
	}

	return Decision{Allowed: true}, nil
}
