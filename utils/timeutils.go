package utils

import (
	"fmt"
	"math"
	"time"
)

// Iso8601 formats t in RFC3339 with the offset of loc. A nil loc keeps t's
// own location.
func Iso8601(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(time.RFC3339)
}

// Iso8601FromUnixSeconds converts Unix timestamp to ISO8601 format
func Iso8601FromUnixSeconds(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}

// MinutesUntil returns the minutes from now to t rounded to one decimal.
// Times in the past give negative values.
func MinutesUntil(now, t time.Time) float64 {
	return math.Round(t.Sub(now).Minutes()*10) / 10
}

// CountdownText renders a departure countdown: "Arriving" under a minute,
// then whole minutes.
func CountdownText(minutes float64) string {
	switch {
	case minutes < 1:
		return "Arriving"
	case minutes < 2:
		return "1 min"
	default:
		return fmt.Sprintf("%d min", int(minutes))
	}
}

// DurationText renders seconds as "45 sec", "12 min" or "1 h 05 min".
func DurationText(seconds float64) string {
	s := int(math.Round(seconds))
	switch {
	case s < 60:
		return fmt.Sprintf("%d sec", s)
	case s < 3600:
		return fmt.Sprintf("%d min", int(math.Round(float64(s)/60)))
	default:
		m := int(math.Round(float64(s) / 60))
		return fmt.Sprintf("%d h %02d min", m/60, m%60)
	}
}
