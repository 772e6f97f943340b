package routing

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/transit-router/graph"
	"github.com/theoremus-urban-solutions/transit-router/internal"
	"github.com/theoremus-urban-solutions/transit-router/realtime"
	"github.com/theoremus-urban-solutions/transit-router/transfer"
)

// EnrichOptions controls one enrichment pass.
type EnrichOptions struct {
	// Start is when the rider sets off; RequestTime is what the total is
	// measured from. They differ for alternatives searched from a later start.
	Start       time.Time
	RequestTime time.Time

	WalkingSpeedKmh float64
	WalkFactor      float64
	Source          realtime.Source
}

// Enricher turns an edge sequence into a timed Route.
type Enricher struct {
	graph  *graph.Graph
	opts   Options
	policy transfer.Policy
	logger logrus.FieldLogger
}

// NewEnricher creates an enricher. A nil logger discards output.
func NewEnricher(g *graph.Graph, opts Options, policy transfer.Policy, logger logrus.FieldLogger) *Enricher {
	if logger == nil {
		logger = internal.Discard()
	}
	return &Enricher{graph: g, opts: opts, policy: policy, logger: logger}
}

// ride is the vehicle last boarded.
type ride struct {
	line      string
	tripID    string
	vehicleID string
	status    SegmentStatus
}

// Enrich walks path forward from opts.Start. Departures are looked up only
// when boarding; later segments of the same ride follow the trip through
// ArrivalAtStop or fall back to nominal timing. A walk ends the ride, so the
// next train segment boards again and counts as a transfer.
func (e *Enricher) Enrich(ctx context.Context, path []graph.Edge, opts EnrichOptions) *Route {
	route := &Route{
		RequestTime:   opts.RequestTime,
		DepartureTime: opts.Start,
		Segments:      make([]Segment, 0, len(path)),
	}
	if len(path) > 0 {
		route.Origin = path[0].From
		route.Destination = path[len(path)-1].To
	}

	clock := opts.Start
	var (
		current          ride
		onBoard          bool
		lastTrainArrival time.Time
		walkSinceTrain   float64
	)
	for _, edge := range path {
		seg := Segment{
			From:           edge.From,
			To:             edge.To,
			FromName:       e.stationName(edge.From),
			ToName:         e.stationName(edge.To),
			DistanceMeters: edge.DistanceMeters,
		}
		if edge.IsWalk() {
			secs := walkSeconds(edge, opts.WalkingSpeedKmh, opts.WalkFactor)
			seg.Type = SegmentWalk
			seg.Status = StatusWalking
			seg.DepartureTime = clock
			clock = clock.Add(seconds(secs))
			seg.ArrivalTime = clock
			seg.DurationSeconds = secs
			walkSinceTrain += secs
			onBoard = false
		} else {
			line := edge.Line()
			seg.Type = SegmentTrain
			seg.Line = line
			seg.RouteID = edge.RouteID()
			nominal := seconds(e.opts.nominalSeconds(edge))

			if onBoard && e.opts.Families.Same(current.line, line) {
				seg.DepartureTime = clock
				seg.ArrivalTime = e.tripArrival(ctx, opts.Source, edge.To, current.tripID, clock, nominal)
				seg.Status = current.status
				seg.TripID, seg.VehicleID = current.tripID, current.vehicleID
			} else {
				prevLine := current.line
				isTransfer := prevLine != ""
				// Buffer tables are keyed by family, e.g. "Green Line" for every branch.
				fromFamily, toFamily := e.opts.Families.Family(prevLine), e.opts.Families.Family(line)
				ready := clock
				if isTransfer {
					buffer := e.policy.BufferSeconds(edge.From, fromFamily, toFamily, opts.WalkingSpeedKmh)
					ready = ready.Add(time.Duration(buffer) * time.Second)
					seg.IsTransfer = true
					route.Transfers++
				}
				dep, live, ok := e.board(ctx, opts.Source, edge, ready)
				current = ride{line: line, status: StatusScheduled}
				switch {
				case ok:
					current.tripID, current.vehicleID = dep.TripID, dep.VehicleID
					current.status = SegmentStatus(dep.Status)
					if current.status == "" {
						current.status = SegmentStatus(realtime.StatusPredicted)
					}
				case opts.Source != nil:
					current.status = StatusEstimated
				}
				seg.DepartureTime = live
				seg.WaitSeconds = live.Sub(clock).Seconds()
				seg.ArrivalTime = e.tripArrival(ctx, opts.Source, edge.To, current.tripID, live, nominal)
				seg.Status = current.status
				seg.TripID, seg.VehicleID = current.tripID, current.vehicleID
				if isTransfer && ok {
					a := e.policy.Assess(edge.From, fromFamily, toFamily, lastTrainArrival, live, walkSinceTrain, opts.WalkingSpeedKmh)
					seg.Transfer = &a
				}
			}
			seg.DurationSeconds = seg.ArrivalTime.Sub(seg.DepartureTime).Seconds()
			onBoard = true
			clock = seg.ArrivalTime
			lastTrainArrival = clock
			walkSinceTrain = 0
		}
		route.TotalDistanceMeters += seg.DistanceMeters
		route.Segments = append(route.Segments, seg)
	}

	if len(route.Segments) > 0 {
		route.DepartureTime = route.Segments[0].DepartureTime
	}
	route.ArrivalTime = clock
	route.TotalTimeSeconds = clock.Sub(opts.RequestTime).Seconds()
	return route
}

// board returns the departure to take from edge.From at or after ready. live
// is the departure time to use either way; ok reports whether it came from
// the source.
func (e *Enricher) board(ctx context.Context, source realtime.Source, edge graph.Edge, ready time.Time) (dep realtime.Departure, live time.Time, ok bool) {
	if source == nil {
		return dep, ready, false
	}
	deps, err := source.NextDepartures(ctx, edge.From, edge.RouteID(), e.opts.DeparturesLimit, nil)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"station": edge.From,
			"route":   edge.RouteID(),
			"error":   err,
		}).Warn("Departure lookup failed, using estimated timing")
		return dep, ready, false
	}
	for _, d := range deps {
		if !d.DepartureTime.Before(ready) {
			return d, d.DepartureTime, true
		}
	}
	return dep, ready, false
}

// tripArrival resolves when tripID reaches stopID, falling back to departure
// plus nominal. A prediction that is not after departure is ignored.
func (e *Enricher) tripArrival(ctx context.Context, source realtime.Source, stopID, tripID string, departure time.Time, nominal time.Duration) time.Time {
	fallback := departure.Add(nominal)
	if source == nil || tripID == "" {
		return fallback
	}
	at, ok, err := source.ArrivalAtStop(ctx, stopID, tripID)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"station": stopID,
			"trip":    tripID,
			"error":   err,
		}).Debug("Arrival lookup failed, using nominal duration")
		return fallback
	}
	if !ok || !at.After(departure) {
		return fallback
	}
	return at
}

func (e *Enricher) stationName(id string) string {
	s, err := e.graph.Station(id)
	if err != nil {
		return ""
	}
	return s.Name
}
