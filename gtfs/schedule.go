package gtfs

import (
	"context"
	"sort"
	"time"

	"github.com/theoremus-urban-solutions/transit-router/realtime"
)

const secondsPerDay = 24 * 60 * 60

// ScheduleSource answers departure queries from the static timetable.
type ScheduleSource struct {
	index *Index
	loc   *time.Location
	clock realtime.Clock
}

var _ realtime.Source = (*ScheduleSource)(nil)

// NewScheduleSource creates a source over index. Service days start at local
// midnight in loc; a nil loc means UTC and a nil clock means time.Now.
func NewScheduleSource(index *Index, loc *time.Location, clock realtime.Clock) *ScheduleSource {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = time.Now
	}
	return &ScheduleSource{index: index, loc: loc, clock: clock}
}

func (s *ScheduleSource) serviceDay(t time.Time) time.Time {
	t = t.In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}

// at converts service-day seconds to a wall time. time.Date normalises
// seconds past midnight, so 25:10:00 lands on the following day.
func at(day time.Time, secs int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, secs, 0, day.Location())
}

// NextDepartures returns the next scheduled departures at or after now.
// Yesterday's service day is included for trips running past midnight.
func (s *ScheduleSource) NextDepartures(ctx context.Context, stationID, routeID string, limit int, directionID *int) ([]realtime.Departure, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := s.clock()
	today := s.serviceDay(now)
	days := []time.Time{today.AddDate(0, 0, -1), today, today.AddDate(0, 0, 1)}

	var out []realtime.Departure
	for _, d := range s.index.Departures(stationID, routeID) {
		if directionID != nil && d.DirectionID != *directionID {
			continue
		}
		for _, day := range days {
			dep := at(day, d.Departure)
			if dep.Before(now) {
				continue
			}
			out = append(out, realtime.Departure{
				DepartureTime:       dep,
				ArrivalTimeAtOrigin: at(day, d.Arrival),
				Status:              realtime.StatusScheduled,
				TripID:              d.TripID,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DepartureTime.Before(out[j].DepartureTime) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ArrivalAtStop returns the scheduled arrival of tripID at stopID on the
// service day closest to now.
func (s *ScheduleSource) ArrivalAtStop(ctx context.Context, stopID, tripID string) (time.Time, bool, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, false, err
	}
	st, ok := s.index.StopTimeAt(tripID, stopID)
	if !ok {
		return time.Time{}, false, nil
	}
	now := s.clock()
	arrival := at(s.serviceDay(now), st.Arrival)
	switch {
	case now.Sub(arrival) > secondsPerDay/2*time.Second:
		arrival = arrival.AddDate(0, 0, 1)
	case arrival.Sub(now) > secondsPerDay/2*time.Second:
		arrival = arrival.AddDate(0, 0, -1)
	}
	return arrival, true, nil
}
