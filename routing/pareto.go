package routing

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/transit-router/graph"
	"github.com/theoremus-urban-solutions/transit-router/internal"
	"github.com/theoremus-urban-solutions/transit-router/metrics"
	"github.com/theoremus-urban-solutions/transit-router/realtime"
)

// Query is one Pareto search.
type Query struct {
	Origin      string
	Destination string
	Departure   time.Time

	PreferFewerTransfers bool
	// MaxTransfers overrides Options.MaxTransfers when positive.
	MaxTransfers int
	UseHeuristic bool

	WalkingSpeedKmh float64
	// WalkFactor scales every walk, e.g. for weather. Zero means 1.
	WalkFactor float64

	// Source supplies live departures. Nil means boarding at once with
	// nominal timing.
	Source realtime.Source
}

// Result is the answer of a Pareto search.
type Result struct {
	Path      []graph.Edge
	Transfers int
	Arrival   time.Time
	Pops      int
}

// state is a node of the time-expanded search.
type state struct {
	station   string
	arrival   time.Time
	transfers int
	line      string

	parent *state
	via    graph.Edge

	primary   float64
	secondary float64
	seq       int
	dead      bool
}

func (s *state) kill() {
	if s != nil {
		s.dead = true
	}
}

func (s *state) label() Label { return Label{Transfers: s.transfers, Arrival: s.arrival} }

type stateQueue []*state

func (q stateQueue) Len() int { return len(q) }
func (q stateQueue) Less(i, j int) bool {
	if q[i].primary != q[j].primary {
		return q[i].primary < q[j].primary
	}
	if q[i].secondary != q[j].secondary {
		return q[i].secondary < q[j].secondary
	}
	return q[i].seq < q[j].seq
}
func (q stateQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *stateQueue) Push(x any)   { *q = append(*q, x.(*state)) }
func (q *stateQueue) Pop() any {
	old := *q
	n := len(old)
	s := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return s
}

// ParetoRouter is the time-dependent multi-objective search.
type ParetoRouter struct {
	graph   *graph.Graph
	opts    Options
	logger  logrus.FieldLogger
	metrics *metrics.Registry
}

// NewParetoRouter creates a router over g. Logger and metrics may be nil.
func NewParetoRouter(g *graph.Graph, opts Options, logger logrus.FieldLogger, m *metrics.Registry) *ParetoRouter {
	if logger == nil {
		logger = internal.Discard()
	}
	return &ParetoRouter{graph: g, opts: opts, logger: logger, metrics: m}
}

// search carries the per-query state so the router itself stays immutable.
type search struct {
	*ParetoRouter
	q            Query
	maxTransfers int
	labels       map[string]*Frontier
	queue        stateQueue
	seq          int
	destLat      float64
	destLon      float64
}

// Search finds a path that is optimal under the query's lexicographic order
// of (transfers, arrival) or (arrival, transfers).
func (r *ParetoRouter) Search(ctx context.Context, q Query) (Result, error) {
	start := time.Now()
	res, err := r.search(ctx, q)
	if r.metrics != nil {
		r.metrics.RecordSearch("pareto", outcome(err), time.Since(start), res.Pops)
	}
	return res, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeFound
	case errors.Is(err, ErrExplorationBudgetExceeded):
		return metrics.OutcomeBudgetExceeded
	case errors.Is(err, ErrNoPathFound):
		return metrics.OutcomeNoPath
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCancelled
	default:
		return metrics.OutcomeError
	}
}

func (r *ParetoRouter) search(ctx context.Context, q Query) (Result, error) {
	for _, id := range []string{q.Origin, q.Destination} {
		if !r.graph.HasStation(id) {
			return Result{}, fmt.Errorf("%w: %s", ErrUnknownStation, id)
		}
	}
	if q.Origin == q.Destination {
		return Result{Path: []graph.Edge{}, Arrival: q.Departure}, nil
	}
	if e, ok := r.graph.WalkEdge(q.Origin, q.Destination); ok && r.opts.nominalSeconds(e) < r.opts.DirectWalkSeconds {
		return Result{
			Path:    []graph.Edge{e},
			Arrival: q.Departure.Add(seconds(walkSeconds(e, q.WalkingSpeedKmh, q.WalkFactor))),
		}, nil
	}

	dest, _ := r.graph.Station(q.Destination)
	s := &search{
		ParetoRouter: r,
		q:            q,
		maxTransfers: r.opts.MaxTransfers,
		labels:       map[string]*Frontier{},
		destLat:      dest.Latitude,
		destLon:      dest.Longitude,
	}
	if q.MaxTransfers > 0 {
		s.maxTransfers = q.MaxTransfers
	}
	return s.run(ctx)
}

func (s *search) run(ctx context.Context) (Result, error) {
	s.push(&state{station: s.q.Origin, arrival: s.q.Departure})

	pops := 0
	for s.queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return Result{Pops: pops}, err
		}
		cur := heap.Pop(&s.queue).(*state)
		if cur.dead {
			continue
		}
		pops++
		if s.opts.MaxPops > 0 && pops > s.opts.MaxPops {
			s.logger.WithFields(logrus.Fields{
				"origin":      s.q.Origin,
				"destination": s.q.Destination,
				"pops":        pops,
			}).Warn("Pareto search exceeded its exploration budget")
			return Result{Pops: pops}, ErrExplorationBudgetExceeded
		}
		if cur.station == s.q.Destination {
			return Result{
				Path:      cur.path(),
				Transfers: cur.transfers,
				Arrival:   cur.arrival,
				Pops:      pops,
			}, nil
		}
		for _, e := range s.graph.Neighbors(cur.station) {
			var next *state
			if e.IsWalk() {
				next = s.walk(cur, e)
			} else {
				next = s.ride(ctx, cur, e)
			}
			if next == nil || next.transfers > s.maxTransfers {
				continue
			}
			s.push(next)
		}
	}
	return Result{Pops: pops}, fmt.Errorf("%w: %s to %s", ErrNoPathFound, s.q.Origin, s.q.Destination)
}

// push records st in its station's frontier and enqueues it when it is not
// covered by an existing label.
func (s *search) push(st *state) {
	f, ok := s.labels[st.station]
	if !ok {
		f = NewFrontier(s.opts.LabelCap)
		s.labels[st.station] = f
	}
	if !f.insert(st.label(), st) {
		return
	}
	elapsed := st.arrival.Sub(s.q.Departure).Seconds()
	if s.q.UseHeuristic && s.opts.HeuristicSpeed > 0 {
		if stn, err := s.graph.Station(st.station); err == nil {
			elapsed += graph.HaversineMeters(stn.Latitude, stn.Longitude, s.destLat, s.destLon) / s.opts.HeuristicSpeed
		}
	}
	if s.q.PreferFewerTransfers {
		st.primary, st.secondary = float64(st.transfers), elapsed
	} else {
		st.primary, st.secondary = elapsed, float64(st.transfers)
	}
	s.seq++
	st.seq = s.seq
	heap.Push(&s.queue, st)
}

// walk applies the walking guards and returns the state after e, or nil when
// the walk is not worth taking.
func (s *search) walk(cur *state, e graph.Edge) *state {
	fam := s.opts.Families
	riding := cur.line != ""
	if riding && (s.graph.Serves(s.q.Destination, cur.line, fam) || s.graph.Serves(e.To, cur.line, fam)) {
		return nil
	}
	strategic := s.graph.SharesLine(e.To, s.q.Destination, fam)
	if !strategic {
		before := s.graph.DistanceBetween(cur.station, s.q.Destination)
		after := s.graph.DistanceBetween(e.To, s.q.Destination)
		if after-before > s.opts.DetourMeters {
			return nil
		}
	}
	nominal := s.opts.nominalSeconds(e)
	switch {
	case strategic:
		if nominal > s.opts.StrategicWalkCapSeconds {
			return nil
		}
	case riding:
		if nominal > s.opts.RidingWalkCapSeconds || e.DistanceMeters > s.opts.RidingWalkCapMeters {
			return nil
		}
	default:
		if nominal > s.opts.WalkCapSeconds {
			return nil
		}
	}
	return &state{
		station:   e.To,
		arrival:   cur.arrival.Add(seconds(walkSeconds(e, s.q.WalkingSpeedKmh, s.q.WalkFactor))),
		transfers: cur.transfers,
		line:      cur.line,
		parent:    cur,
		via:       e,
	}
}

// ride returns the state after train edge e. Continuing on the same line
// family needs no lookup; boarding takes the first departure at or after the
// current arrival (plus the transfer buffer on a line change).
func (s *search) ride(ctx context.Context, cur *state, e graph.Edge) *state {
	line := e.Line()
	travel := seconds(s.opts.nominalSeconds(e))
	next := &state{
		station:   e.To,
		transfers: cur.transfers,
		line:      line,
		parent:    cur,
		via:       e,
	}
	if s.opts.Families.Same(cur.line, line) {
		next.arrival = cur.arrival.Add(travel)
		return next
	}

	earliest := cur.arrival
	if cur.line != "" {
		earliest = earliest.Add(s.opts.TransferBuffer)
		next.transfers++
	}
	if next.transfers > s.maxTransfers {
		return nil
	}
	depart := earliest
	if s.q.Source != nil {
		deps, err := s.q.Source.NextDepartures(ctx, cur.station, e.RouteID(), s.opts.DeparturesLimit, nil)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"station": cur.station,
				"route":   e.RouteID(),
				"error":   err,
			}).Debug("Departure lookup failed, skipping edge")
			return nil
		}
		found := false
		for _, d := range deps {
			if !d.DepartureTime.Before(earliest) {
				depart, found = d.DepartureTime, true
				break
			}
		}
		if !found {
			return nil
		}
	}
	next.arrival = depart.Add(travel)
	return next
}

func (st *state) path() []graph.Edge {
	var path []graph.Edge
	for at := st; at.parent != nil; at = at.parent {
		path = append(path, at.via)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
