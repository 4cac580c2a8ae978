package pacing

import "math"

// Combined multipliers are clamped into this range before rounding, so
// stacked conditions can never freeze or explode the clock.
const (
	MinMultiplier = 0.5
	MaxMultiplier = 2.0
)

// Modifier scales the time an action consumes while a character
// condition is active.
type Modifier struct {
	Condition  string  `json:"condition"`
	Multiplier float64 `json:"multiplier"`
}

// CombinedMultiplier multiplies all active modifiers together and clamps
// the product. Non-positive multipliers are invalid input and ignored.
func CombinedMultiplier(mods []Modifier) float64 {
	combined := 1.0
	for _, m := range mods {
		if m.Multiplier <= 0 {
			continue
		}
		combined *= m.Multiplier
	}
	if combined < MinMultiplier {
		return MinMultiplier
	}
	if combined > MaxMultiplier {
		return MaxMultiplier
	}
	return combined
}

// modify applies the combined multiplier to a minute count, rounding to
// the nearest whole minute.
func modify(minutes int, mods []Modifier) int {
	if len(mods) == 0 {
		return minutes
	}
	return int(math.Round(float64(minutes) * CombinedMultiplier(mods)))
}
