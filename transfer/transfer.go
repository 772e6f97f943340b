// Package transfer rates how likely a rider is to make a connection.
//
// The model is deterministic: a required buffer is derived from the station,
// the pair of lines involved and the rider's walking speed, and whatever time
// remains after the buffer and any explicit walk is the slack that decides the
// rating.
package transfer

import (
	"math"
	"time"
)

// Rating is the qualitative chance of making a transfer.
type Rating string

const (
	Likely   Rating = "likely"
	Risky    Rating = "risky"
	Unlikely Rating = "unlikely"
)

const (
	likelySlackSeconds = 300
	riskySlackSeconds  = 120
)

// Rate converts slack seconds into a Rating.
func Rate(slackSeconds float64) Rating {
	switch {
	case slackSeconds > likelySlackSeconds:
		return Likely
	case slackSeconds > riskySlackSeconds:
		return Risky
	default:
		return Unlikely
	}
}

// LinePair is an ordered (from, to) line combination.
type LinePair struct {
	From string
	To   string
}

// Policy holds the buffer tables. The zero value is usable and applies only
// the floor; DefaultPolicy returns the tuned tables.
type Policy struct {
	DefaultBuffer       int
	StationBuffers      map[string]int
	LinePairAdjustments map[LinePair]int
	// FixedFraction is the share of the buffer spent orienting and waiting;
	// the remainder is platform walking and scales with walking speed.
	FixedFraction    float64
	BaselineSpeedKmh float64
	MinBuffer        int
}

// DefaultPolicy returns buffers for the MBTA network.
func DefaultPolicy() Policy {
	return Policy{
		DefaultBuffer: 60,
		StationBuffers: map[string]int{
			"place-pktrm": 180,
			"place-dwnxg": 150,
			"place-sstat": 180,
			"place-jfk":   120,
			"place-north": 180,
			"place-bbsta": 120,
			"place-rugg":  90,
			"place-haecl": 120,
			"place-state": 120,
			"place-gover": 120,
			"place-coecl": 90,
			"place-kencl": 120,
			"place-lech":  120,
			"place-aport": 90,
		},
		LinePairAdjustments: Symmetric(map[LinePair]int{
			{"Red Line", "Green Line"}:       30,
			{"Orange Line", "Green Line"}:    20,
			{"Red Line", "Commuter Rail"}:    60,
			{"Orange Line", "Commuter Rail"}: 60,
			{"Blue Line", "Green Line"}:      20,
			{"Blue Line", "Orange Line"}:     20,
		}),
		FixedFraction:    0.4,
		BaselineSpeedKmh: 5.0,
		MinBuffer:        30,
	}
}

// Symmetric returns adjustments with every pair also present in reverse.
// Explicit reverse entries win.
func Symmetric(adj map[LinePair]int) map[LinePair]int {
	out := make(map[LinePair]int, len(adj)*2)
	for p, v := range adj {
		out[LinePair{From: p.To, To: p.From}] = v
	}
	for p, v := range adj {
		out[p] = v
	}
	return out
}

// BaseBuffer returns the station buffer plus the line-pair adjustment before
// any speed scaling.
func (p Policy) BaseBuffer(stationID, fromLine, toLine string) int {
	base, ok := p.StationBuffers[stationID]
	if !ok {
		base = p.DefaultBuffer
	}
	if fromLine != "" && toLine != "" {
		base += p.LinePairAdjustments[LinePair{From: fromLine, To: toLine}]
	}
	return base
}

// BufferSeconds returns the speed-adjusted buffer required at stationID when
// changing from fromLine to toLine. Only the walking share of the buffer is
// scaled by baseline/actual speed, and the result never drops below MinBuffer.
func (p Policy) BufferSeconds(stationID, fromLine, toLine string, walkingSpeedKmh float64) int {
	base := float64(p.BaseBuffer(stationID, fromLine, toLine))
	scale := 1.0
	if walkingSpeedKmh > 0 && p.BaselineSpeedKmh > 0 {
		scale = p.BaselineSpeedKmh / walkingSpeedKmh
	}
	fixed := base * p.FixedFraction
	walking := base * (1 - p.FixedFraction) * scale
	total := int(math.Round(fixed + walking))
	if total < p.MinBuffer {
		total = p.MinBuffer
	}
	return total
}

// Assessment is the timing breakdown of one transfer.
type Assessment struct {
	BufferSeconds    int     `json:"buffer_seconds"`
	WalkSeconds      float64 `json:"walking_time_seconds"`
	RequiredSeconds  float64 `json:"total_required_seconds"`
	AvailableSeconds float64 `json:"available_seconds"`
	SlackSeconds     float64 `json:"slack_time_seconds"`
	Rating           Rating  `json:"rating"`
}

// Assess rates a transfer at stationID where the rider arrives at arrival and
// the connecting vehicle leaves at departure.
func (p Policy) Assess(stationID, fromLine, toLine string, arrival, departure time.Time, walkSeconds, walkingSpeedKmh float64) Assessment {
	buffer := p.BufferSeconds(stationID, fromLine, toLine, walkingSpeedKmh)
	available := departure.Sub(arrival).Seconds()
	required := float64(buffer) + walkSeconds
	slack := available - required
	return Assessment{
		BufferSeconds:    buffer,
		WalkSeconds:      walkSeconds,
		RequiredSeconds:  required,
		AvailableSeconds: available,
		SlackSeconds:     slack,
		Rating:           Rate(slack),
	}
}
