package adjust

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestWeatherMultiplier(t *testing.T) {
	tests := []struct {
		name string
		obs  Observation
		want float64
	}{
		{"clear", Observation{Description: "Sunny", TemperatureC: ptr(18)}, 1.0},
		{"heavy precipitation", Observation{PrecipitationMM: ptr(3)}, 1.2},
		{"light precipitation", Observation{PrecipitationMM: ptr(1)}, 1.1},
		{"trace precipitation", Observation{PrecipitationMM: ptr(0.2)}, 1.0},
		{"heavy text", Observation{Description: "Thunderstorm"}, 1.2},
		{"light text", Observation{Description: "Light Rain"}, 1.1},
		{"drizzle", Observation{Description: "Drizzle"}, 1.1},
		{"extreme cold", Observation{TemperatureC: ptr(-10)}, 1.05},
		{"extreme heat", Observation{TemperatureC: ptr(35)}, 1.05},
		{"rain beats temperature", Observation{PrecipitationMM: ptr(3), TemperatureC: ptr(-10)}, 1.2},
		{"empty", Observation{}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeatherMultiplier(tt.obs))
		})
	}
}

func TestTimeFactor(t *testing.T) {
	assert.Equal(t, 1.0, TimeFactor(8, true))
	assert.Equal(t, 1.0, TimeFactor(17, true))
	assert.Equal(t, 0.8, TimeFactor(9, true))
	assert.Equal(t, 0.8, TimeFactor(19, true))
	assert.Equal(t, 0.5, TimeFactor(12, true))
	assert.Equal(t, 0.3, TimeFactor(23, true))
	assert.Equal(t, 1.1, TimeFactor(12, false))
	assert.Equal(t, 1.0, TimeFactor(20, false))
}

func TestCongestion_Multiplier(t *testing.T) {
	c := &Congestion{Hubs: DefaultHubs(), Location: time.UTC}
	monday := func(hour int) time.Time { return time.Date(2026, 3, 2, hour, 15, 0, 0, time.UTC) }

	assert.InDelta(t, 1.4, c.Multiplier("place-sstat", monday(8)), 1e-9)
	assert.InDelta(t, 1.32, c.Multiplier("place-sstat", monday(9)), 1e-9)
	assert.Equal(t, 1.0, c.Multiplier("place-sstat", monday(12)), "midday factor is below the rush threshold")
	assert.Equal(t, 1.0, c.Multiplier("place-unknown", monday(8)))

	saturday := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	assert.InDelta(t, 1.33, c.Multiplier("place-pktrm", saturday), 1e-9)

	got := c.Assess("place-pktrm", monday(17))
	assert.Equal(t, LevelHigh, got.Level)
	assert.Equal(t, "rush_hour", got.Reason)
}

func TestCongestion_Events(t *testing.T) {
	c := &Congestion{Events: []Event{{Name: "fenway_park", Stations: []string{"place-kencl"}, Multiplier: 1.3}}}
	got := c.Assess("place-kencl", time.Date(2026, 3, 2, 22, 0, 0, 0, time.UTC))
	assert.Equal(t, "event", got.Reason)
	assert.Equal(t, LevelHigh, got.Level)
	assert.Equal(t, 1.3, got.Multiplier)
}

func TestCongestion_Nil(t *testing.T) {
	var c *Congestion
	assert.Equal(t, 1.0, c.Multiplier("place-pktrm", time.Now()))
}
