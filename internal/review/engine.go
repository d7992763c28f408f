package review

import (
	"fmt"
	"math"
	"time"
)

// Engine computes the next scheduling state for an item from a performance
// observation. It is pure: no clock, no I/O, no hidden state. The caller
// supplies "now" so results are reproducible.
type Engine struct {
	params Params
}

// NewEngine creates an engine with the given parameters.
func NewEngine(p Params) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("scheduling params: %w", err)
	}
	return &Engine{params: p}, nil
}

// Params returns the engine's scheduling parameters.
func (e *Engine) Params() Params {
	return e.params
}

// Update applies one observation to an item and returns the next state.
// The input item is not mutated.
//
// A passing review nudges the ease factor up gently, steps through the
// fixed onboarding intervals for the first three passes, then grows the
// interval multiplicatively and applies the difficulty and performance
// multipliers. A failing review resets repetitions and yields exactly the
// initial interval: failure never schedules a review further out than an
// item's first exposure did, and the modifiers are skipped so that holds
// unconditionally.
func (e *Engine) Update(item Item, obs Observation, now time.Time) (Item, error) {
	if err := obs.Validate(); err != nil {
		return Item{}, err
	}
	p := e.params

	next := item
	next.Quality = obs.Quality
	next.LastReviewedAt = now

	if obs.IsPass(p.PassingQuality) {
		next.EaseFactor = clampEase(item.EaseFactor+float64(obs.Quality-p.PassingQuality)*p.EaseBonus, p)
		next.Repetitions = item.Repetitions + 1

		var interval int
		switch next.Repetitions {
		case 1:
			interval = p.InitialInterval
		case 2:
			interval = p.SecondInterval
		case 3:
			interval = p.ThirdInterval
		default:
			interval = int(math.Round(float64(item.Interval) * next.EaseFactor))
		}

		scaled := float64(interval) * difficultyMultiplier(obs.DeclaredDifficulty)
		scaled *= performanceMultiplier(obs, p)

		interval = int(math.Round(scaled))
		if interval < 1 {
			interval = 1
		}
		if interval > p.MaxInterval {
			interval = p.MaxInterval
		}
		next.Interval = interval
	} else {
		next.EaseFactor = clampEase(item.EaseFactor-p.FailurePenalty, p)
		next.Repetitions = 0
		next.Interval = p.InitialInterval
	}

	next.NextReviewDate = now.AddDate(0, 0, next.Interval)
	next.AverageQuality = (item.AverageQuality*float64(item.TotalReviews) + float64(obs.Quality)) / float64(item.TotalReviews+1)
	next.TotalReviews = item.TotalReviews + 1

	return next, nil
}

func clampEase(ease float64, p Params) float64 {
	if ease < p.MinEase {
		return p.MinEase
	}
	if ease > p.MaxEase {
		return p.MaxEase
	}
	return ease
}
