package realtime

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/transit-router/internal"
)

// duplicateWindow is how close a scheduled departure may be to a prediction
// before it is treated as the same vehicle.
const duplicateWindow = 60 * time.Second

// Merged prefers live predictions and fills the remainder from the schedule.
type Merged struct {
	Predictions Source
	Schedule    Source
	Logger      logrus.FieldLogger
}

func (m *Merged) logger() logrus.FieldLogger {
	if m.Logger != nil {
		return m.Logger
	}
	return internal.Discard()
}

func (m *Merged) NextDepartures(ctx context.Context, stationID, routeID string, limit int, directionID *int) ([]Departure, error) {
	var (
		out     []Departure
		predErr error
	)
	if m.Predictions != nil {
		out, predErr = m.Predictions.NextDepartures(ctx, stationID, routeID, limit, directionID)
		if predErr != nil {
			m.logger().WithFields(logrus.Fields{
				"station": stationID,
				"route":   routeID,
				"error":   predErr,
			}).Debug("predictions unavailable, using schedule")
			out = nil
		}
	}
	if (limit <= 0 || len(out) < limit) && m.Schedule != nil {
		sched, err := m.Schedule.NextDepartures(ctx, stationID, routeID, limit, directionID)
		if err != nil {
			if predErr != nil || m.Predictions == nil {
				return nil, err
			}
		}
		for _, s := range sched {
			if !nearAny(s.DepartureTime, out) {
				out = append(out, s)
			}
		}
	} else if predErr != nil {
		return nil, predErr
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DepartureTime.Before(out[j].DepartureTime) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Merged) ArrivalAtStop(ctx context.Context, stopID, tripID string) (time.Time, bool, error) {
	var firstErr error
	for _, src := range []Source{m.Predictions, m.Schedule} {
		if src == nil {
			continue
		}
		at, ok, err := src.ArrivalAtStop(ctx, stopID, tripID)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			return at, true, nil
		}
	}
	return time.Time{}, false, firstErr
}

func nearAny(t time.Time, deps []Departure) bool {
	for _, d := range deps {
		diff := t.Sub(d.DepartureTime)
		if diff < 0 {
			diff = -diff
		}
		if diff < duplicateWindow {
			return true
		}
	}
	return false
}
