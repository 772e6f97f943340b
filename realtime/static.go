package realtime

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Static is an in-memory Source with fixed answers. It is deterministic and
// is used by tests and offline runs.
type Static struct {
	mu         sync.RWMutex
	departures map[string][]Departure
	arrivals   map[string]time.Time
	err        error
	calls      atomic.Int64
}

// NewStatic creates an empty Static source.
func NewStatic() *Static {
	return &Static{
		departures: map[string][]Departure{},
		arrivals:   map[string]time.Time{},
	}
}

func staticKey(a, b string) string { return a + "\x00" + b }

// AddDeparture registers a departure from stationID on routeID.
func (s *Static) AddDeparture(stationID, routeID string, d Departure) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := staticKey(stationID, routeID)
	s.departures[k] = append(s.departures[k], d)
	sort.SliceStable(s.departures[k], func(i, j int) bool {
		return s.departures[k][i].DepartureTime.Before(s.departures[k][j].DepartureTime)
	})
	return s
}

// AddArrival registers when tripID reaches stopID.
func (s *Static) AddArrival(stopID, tripID string, at time.Time) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arrivals[staticKey(stopID, tripID)] = at
	return s
}

// SetError makes every call fail with err until it is reset with nil.
func (s *Static) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls returns how many queries the source has answered or failed.
func (s *Static) Calls() int64 { return s.calls.Load() }

func (s *Static) NextDepartures(ctx context.Context, stationID, routeID string, limit int, directionID *int) ([]Departure, error) {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	deps := s.departures[staticKey(stationID, routeID)]
	if limit > 0 && len(deps) > limit {
		deps = deps[:limit]
	}
	return append([]Departure(nil), deps...), nil
}

func (s *Static) ArrivalAtStop(ctx context.Context, stopID, tripID string) (time.Time, bool, error) {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return time.Time{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return time.Time{}, false, s.err
	}
	at, ok := s.arrivals[staticKey(stopID, tripID)]
	return at, ok, nil
}
