package utils

import (
	"fmt"
	"math"
)

// MilesPerKilometer converts kilometers to miles.
const MilesPerKilometer = 0.621371

// PresentableDistance formats a distance for display: meters below one
// kilometer (rounded to 10 m), kilometers with one decimal above.
func PresentableDistance(meters float64) string {
	if meters < 0 {
		meters = 0
	}
	if meters < 1000 {
		return fmt.Sprintf("%d m", int(math.Round(meters/10)*10))
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

// PresentableMiles formats a distance in miles with one decimal.
func PresentableMiles(meters float64) string {
	mi := meters / 1000 * MilesPerKilometer
	return fmt.Sprintf("%.1f mile%s", mi, ternary(mi == 1, "", "s"))
}

func ternary[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}
