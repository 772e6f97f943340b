package realtime

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUpstreamTimeout means the source did not answer within the call timeout.
	ErrUpstreamTimeout = errors.New("upstream timeout")
	// ErrUpstreamUnavailable means the source answered with an error.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// Status values reported by the bundled sources.
const (
	StatusPredicted = "Predicted"
	StatusScheduled = "Scheduled"
)

// Departure is one upcoming vehicle at a station.
type Departure struct {
	DepartureTime       time.Time `json:"departure_time"`
	ArrivalTimeAtOrigin time.Time `json:"arrival_time"`
	Status              string    `json:"status"`
	TripID              string    `json:"trip_id,omitempty"`
	VehicleID           string    `json:"vehicle_id,omitempty"`
}

// Source provides upcoming departures and per-trip arrival predictions.
// Implementations must be safe for concurrent use.
type Source interface {
	// NextDepartures returns up to limit departures from stationID on routeID
	// ordered by departure time. A nil directionID means both directions.
	NextDepartures(ctx context.Context, stationID, routeID string, limit int, directionID *int) ([]Departure, error)
	// ArrivalAtStop returns when tripID reaches stopID, and false when the
	// source has no prediction for it.
	ArrivalAtStop(ctx context.Context, stopID, tripID string) (time.Time, bool, error)
}

// Clock returns the current time. Sources take one so tests can pin "now".
type Clock func() time.Time
