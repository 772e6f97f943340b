package routing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/transit-router/adjust"
	"github.com/theoremus-urban-solutions/transit-router/graph"
	"github.com/theoremus-urban-solutions/transit-router/internal"
	"github.com/theoremus-urban-solutions/transit-router/metrics"
	"github.com/theoremus-urban-solutions/transit-router/realtime"
	"github.com/theoremus-urban-solutions/transit-router/transfer"
)

// Request is a routing request.
type Request struct {
	Origin      string
	Destination string
	// DepartureTime defaults to now.
	DepartureTime        time.Time
	PreferFewerTransfers bool
	// MaxTransfers defaults to Options.MaxTransfers when zero.
	MaxTransfers    int
	WalkingSpeedKmh float64
	UseRealtime     bool
	// AdjustmentFactor multiplies walking time; zero means 1.
	AdjustmentFactor float64
	Weather          *adjust.Observation
}

// PlannerOptions configures a Planner.
type PlannerOptions struct {
	Search Options
	Policy transfer.Policy

	// RequestTimeout bounds the Pareto search; on expiry the static finder
	// answers instead.
	RequestTimeout         time.Duration
	AlternativeOffsets     []time.Duration
	AlternativeConcurrency int
}

// DefaultPlannerOptions returns production defaults.
func DefaultPlannerOptions() PlannerOptions {
	return PlannerOptions{
		Search:                 DefaultOptions(),
		Policy:                 transfer.DefaultPolicy(),
		RequestTimeout:         10 * time.Second,
		AlternativeOffsets:     []time.Duration{5 * time.Minute, 10 * time.Minute, 15 * time.Minute},
		AlternativeConcurrency: 2,
	}
}

// Dependencies are the collaborators of a Planner. Every field is optional.
type Dependencies struct {
	Source     realtime.Source
	Congestion *adjust.Congestion
	Logger     logrus.FieldLogger
	Metrics    *metrics.Registry
	Clock      realtime.Clock
}

// Planner answers routing requests. It is safe for concurrent use.
type Planner struct {
	graph    *graph.Graph
	opts     PlannerOptions
	router   *ParetoRouter
	static   *StaticFinder
	enricher *Enricher

	source     realtime.Source
	congestion *adjust.Congestion
	logger     logrus.FieldLogger
	metrics    *metrics.Registry
	clock      realtime.Clock
}

// NewPlanner wires the searches and enrichment over g.
func NewPlanner(g *graph.Graph, opts PlannerOptions, deps Dependencies) *Planner {
	logger := deps.Logger
	if logger == nil {
		logger = internal.Discard()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Planner{
		graph:      g,
		opts:       opts,
		router:     NewParetoRouter(g, opts.Search, logger, deps.Metrics),
		static:     NewStaticFinder(g, opts.Search),
		enricher:   NewEnricher(g, opts.Search, opts.Policy, logger),
		source:     deps.Source,
		congestion: deps.Congestion,
		logger:     logger,
		metrics:    deps.Metrics,
		clock:      clock,
	}
}

// Graph returns the graph the planner routes over.
func (p *Planner) Graph() *graph.Graph { return p.graph }

// Route plans a single itinerary. Failures of the Pareto search fall back to
// the static finder; only ErrUnknownStation and ErrNoPathFound reach the
// caller.
func (p *Planner) Route(ctx context.Context, req Request) (*Route, error) {
	for _, id := range []string{req.Origin, req.Destination} {
		if !p.graph.HasStation(id) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownStation, id)
		}
	}
	requestTime := req.DepartureTime
	if requestTime.IsZero() {
		requestTime = p.clock()
	}
	speed := req.WalkingSpeedKmh
	if speed <= 0 {
		speed = BaselineWalkingSpeedKmh
	}
	if req.Origin == req.Destination {
		return &Route{
			Origin:        req.Origin,
			Destination:   req.Destination,
			Segments:      []Segment{},
			RequestTime:   requestTime,
			DepartureTime: requestTime,
			ArrivalTime:   requestTime,
			Algorithm:     "none",
		}, nil
	}

	var source realtime.Source
	if req.UseRealtime {
		source = p.source
	}
	factor := p.walkFactor(req, requestTime)
	log := p.logger.WithFields(logrus.Fields{
		"origin":      req.Origin,
		"destination": req.Destination,
	})

	searchCtx := ctx
	if p.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, p.opts.RequestTimeout)
		defer cancel()
	}
	algorithm := "pareto"
	res, err := p.router.Search(searchCtx, Query{
		Origin:               req.Origin,
		Destination:          req.Destination,
		Departure:            requestTime,
		PreferFewerTransfers: req.PreferFewerTransfers,
		MaxTransfers:         req.MaxTransfers,
		UseHeuristic:         true,
		WalkingSpeedKmh:      speed,
		WalkFactor:           factor,
		Source:               source,
	})
	path := res.Path
	if err != nil {
		reason := outcome(err)
		log.WithFields(logrus.Fields{"algorithm": "pareto", "error": err, "pops": res.Pops}).Info("Falling back to static search")
		if p.metrics != nil {
			p.metrics.RecordFallback(reason)
		}
		start := time.Now()
		path, err = p.static.ShortestPath(req.Origin, req.Destination, req.PreferFewerTransfers)
		if p.metrics != nil {
			p.metrics.RecordSearch("static", outcome(err), time.Since(start), 0)
		}
		if err != nil {
			if errors.Is(err, ErrNoPathFound) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s to %s", ErrNoPathFound, req.Origin, req.Destination)
		}
		algorithm = "static"
	}

	route := p.enricher.Enrich(ctx, path, EnrichOptions{
		Start:           requestTime,
		RequestTime:     requestTime,
		WalkingSpeedKmh: speed,
		WalkFactor:      factor,
		Source:          source,
	})
	route.Origin, route.Destination = req.Origin, req.Destination
	route.Algorithm = algorithm
	log.WithFields(logrus.Fields{
		"algorithm": algorithm,
		"transfers": route.Transfers,
		"pops":      res.Pops,
	}).Debug("Route planned")
	return route, nil
}

// walkFactor combines the caller's factor with weather and congestion at the
// origin.
func (p *Planner) walkFactor(req Request, at time.Time) float64 {
	factor := req.AdjustmentFactor
	if factor <= 0 {
		factor = 1
	}
	if req.Weather != nil {
		factor *= adjust.WeatherMultiplier(*req.Weather)
	}
	if p.congestion != nil {
		factor *= p.congestion.Multiplier(req.Origin, at)
	}
	return factor
}

// WalkEstimate is a walking distance and duration between two stations.
type WalkEstimate struct {
	From            string  `json:"from_station"`
	To              string  `json:"to_station"`
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
	// Source is "graph" when a walk edge exists, "straight_line" otherwise.
	Source string `json:"source"`
}

// WalkingTime estimates a walk between two stations at speedKmh.
func (p *Planner) WalkingTime(from, to string, speedKmh float64) (WalkEstimate, error) {
	for _, id := range []string{from, to} {
		if !p.graph.HasStation(id) {
			return WalkEstimate{}, fmt.Errorf("%w: %s", ErrUnknownStation, id)
		}
	}
	if speedKmh <= 0 {
		speedKmh = BaselineWalkingSpeedKmh
	}
	est := WalkEstimate{From: from, To: to, Source: "graph"}
	edge, ok := p.graph.WalkEdge(from, to)
	if !ok {
		edge = graph.Edge{Kind: graph.Walk, From: from, To: to, DistanceMeters: p.graph.DistanceBetween(from, to)}
		est.Source = "straight_line"
	}
	est.DistanceMeters = edge.DistanceMeters
	est.DurationSeconds = walkSeconds(edge, speedKmh, 1)
	return est, nil
}
