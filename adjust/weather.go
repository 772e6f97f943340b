// Package adjust derives walking-time multipliers from weather and station
// crowding. The router only consumes the resulting factor.
package adjust

import "strings"

// Observation is the subset of a weather report that affects walking.
type Observation struct {
	PrecipitationMM *float64 `json:"precipitation_mm,omitempty"`
	TemperatureC    *float64 `json:"temperature_c,omitempty"`
	Description     string   `json:"description,omitempty"`
}

var (
	heavyWords = []string{"heavy", "rain", "snow", "thunderstorm", "blizzard"}
	lightWords = []string{"light rain", "drizzle", "sleet"}
)

// WeatherMultiplier returns 1.2 for heavy precipitation, 1.1 for light
// precipitation and 1.05 for extreme temperatures (below 20F or above 90F).
// Measured precipitation wins over the text description.
func WeatherMultiplier(obs Observation) float64 {
	desc := strings.ToLower(obs.Description)
	switch {
	case obs.PrecipitationMM != nil && *obs.PrecipitationMM > 2.5:
		return 1.2
	case obs.PrecipitationMM != nil && *obs.PrecipitationMM > 0.5:
		return 1.1
	case containsAny(desc, lightWords):
		return 1.1
	case containsAny(desc, heavyWords):
		return 1.2
	}
	if obs.TemperatureC != nil {
		f := *obs.TemperatureC*9/5 + 32
		if f < 20 || f > 90 {
			return 1.05
		}
	}
	return 1.0
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
