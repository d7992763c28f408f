package review

import "fmt"

// Params configures the scheduling algorithm. Zero value is not usable;
// start from DefaultParams and override.
type Params struct {
	// InitialEase is the ease factor assigned on first exposure.
	InitialEase float64
	// MinEase and MaxEase clamp the ease factor after every update.
	MinEase float64
	MaxEase float64
	// PassingQuality is the lowest quality that counts as a pass.
	PassingQuality int
	// EaseBonus is added per quality point above PassingQuality on a pass.
	EaseBonus float64
	// FailurePenalty is subtracted from the ease factor on a failure.
	// Deliberately steeper than EaseBonus so failed items come back sooner.
	FailurePenalty float64
	// InitialInterval, SecondInterval and ThirdInterval are the fixed
	// onboarding intervals (days) for the first three passes. They must be
	// strictly increasing. Multiplicative growth with few data points is
	// unstable, so the ease formula only takes over from the fourth pass.
	InitialInterval int
	SecondInterval  int
	ThirdInterval   int
	// MaxInterval caps interval growth, in days.
	MaxInterval int
	// PerformanceCeiling and PerformanceFloor clamp the performance
	// multiplier derived from response time, hints and attempts.
	PerformanceCeiling float64
	PerformanceFloor   float64
	// FastResponseMs and SlowResponseMs bound the neutral response-time
	// band: faster than Fast earns a bonus, slower than Slow a penalty.
	FastResponseMs int
	SlowResponseMs int
}

// DefaultParams returns the scheduling parameters tuned for early-stage
// learners: gentle ease growth, steeper failure penalty, 1/3/7 onboarding.
func DefaultParams() Params {
	return Params{
		InitialEase:        2.5,
		MinEase:            1.3,
		MaxEase:            3.0,
		PassingQuality:     3,
		EaseBonus:          0.05,
		FailurePenalty:     0.15,
		InitialInterval:    1,
		SecondInterval:     3,
		ThirdInterval:      7,
		MaxInterval:        365,
		PerformanceCeiling: 1.3,
		PerformanceFloor:   0.7,
		FastResponseMs:     2000,
		SlowResponseMs:     8000,
	}
}

// Validate checks parameter consistency.
func (p Params) Validate() error {
	if p.MinEase <= 0 || p.MaxEase < p.MinEase {
		return fmt.Errorf("ease bounds invalid: min=%.2f max=%.2f", p.MinEase, p.MaxEase)
	}
	if p.InitialEase < p.MinEase || p.InitialEase > p.MaxEase {
		return fmt.Errorf("initial ease %.2f outside [%.2f, %.2f]", p.InitialEase, p.MinEase, p.MaxEase)
	}
	if p.PassingQuality < 0 || p.PassingQuality > MaxQuality {
		return fmt.Errorf("passing quality %d outside [0, %d]", p.PassingQuality, MaxQuality)
	}
	if p.InitialInterval < 1 {
		return fmt.Errorf("initial interval %d must be at least 1 day", p.InitialInterval)
	}
	if p.SecondInterval <= p.InitialInterval || p.ThirdInterval <= p.SecondInterval {
		return fmt.Errorf("onboarding intervals must be strictly increasing: %d, %d, %d",
			p.InitialInterval, p.SecondInterval, p.ThirdInterval)
	}
	if p.MaxInterval < p.ThirdInterval {
		return fmt.Errorf("max interval %d below third onboarding interval %d", p.MaxInterval, p.ThirdInterval)
	}
	if p.PerformanceFloor <= 0 || p.PerformanceCeiling < p.PerformanceFloor {
		return fmt.Errorf("performance multiplier bounds invalid: floor=%.2f ceiling=%.2f",
			p.PerformanceFloor, p.PerformanceCeiling)
	}
	if p.SlowResponseMs <= p.FastResponseMs {
		return fmt.Errorf("slow response threshold %dms must exceed fast threshold %dms",
			p.SlowResponseMs, p.FastResponseMs)
	}
	return nil
}
