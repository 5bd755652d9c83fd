package player

import (
	"math"

	"github.com/samber/lo"
)

// levelToVolume converts a 0.0-1.0 level to beep's Volume value.
// beep uses a logarithmic scale where Volume is in "decibels" with base 2.
// Volume = 0 means no change, -1 = half volume, -2 = quarter, etc.
// We map: 1.0 -> 0, 0.5 -> -1, 0.25 -> -2, 0 -> -10 (essentially silent)
func levelToVolume(level float64) float64 {
	level = lo.Clamp(level, 0, 1)
	if level == 0 {
		return -10
	}
	return math.Log2(level)
}
