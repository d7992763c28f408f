package review

// difficultyMultiplier maps the declared item difficulty to an interval
// multiplier. The switch is exhaustive over the Difficulty constants;
// Observation.Validate has already rejected anything else.
func difficultyMultiplier(d Difficulty) float64 {
	switch d {
	case DifficultyEasy:
		return 1.2
	case DifficultyMedium:
		return 1.0
	case DifficultyHard:
		return 0.8
	case DifficultyVeryHard:
		return 0.6
	}
	return 1.0
}

// performanceMultiplier derives a secondary interval multiplier from how
// the answer was produced. Fast, hint-free, single-attempt responses push
// the multiplier above 1; slow, hint-heavy or multi-attempt responses push
// it below. A mid-band response with no hints on the first attempt is
// exactly neutral.
func performanceMultiplier(o Observation, p Params) float64 {
	m := 1.0

	switch {
	case o.ResponseTimeMs <= p.FastResponseMs:
		m += 0.15
	case o.ResponseTimeMs >= p.SlowResponseMs:
		m -= 0.15
	}

	m -= 0.05 * float64(o.HintsUsed)
	m -= 0.10 * float64(o.Attempts-1)

	// Clean fast recall earns the full ceiling.
	if o.HintsUsed == 0 && o.Attempts == 1 && o.ResponseTimeMs <= p.FastResponseMs {
		m += 0.15
	}

	if m > p.PerformanceCeiling {
		return p.PerformanceCeiling
	}
	if m < p.PerformanceFloor {
		return p.PerformanceFloor
	}
	return m
}
