package routing

import (
	"time"

	"github.com/theoremus-urban-solutions/transit-router/graph"
)

// BaselineWalkingSpeedKmh is the speed nominal walk durations assume.
const BaselineWalkingSpeedKmh = 5.0

// Options tunes the searches. DefaultOptions returns the production values.
type Options struct {
	MaxTransfers int
	MaxPops      int
	LabelCap     int

	// TransferBuffer is the minimum time between arriving on one line and
	// departing on another.
	TransferBuffer time.Duration
	// LineChangePenalty is added to train edges by the static finder when the
	// line changes.
	LineChangePenalty float64
	// HeuristicSpeed is the speed in m/s used for the A* lower bound.
	HeuristicSpeed float64
	// DirectWalkSeconds short-circuits the search when origin and destination
	// are joined by a shorter walk.
	DirectWalkSeconds float64

	WalkCapSeconds          float64
	RidingWalkCapSeconds    float64
	RidingWalkCapMeters     float64
	StrategicWalkCapSeconds float64
	DetourMeters            float64

	CategoryDurations map[graph.RouteCategory]float64
	DefaultDuration   float64
	DeparturesLimit   int

	Families graph.LineFamilies
}

// DefaultOptions returns the tuned search options.
func DefaultOptions() Options {
	return Options{
		MaxTransfers:            3,
		MaxPops:                 2000,
		LabelCap:                16,
		TransferBuffer:          2 * time.Minute,
		LineChangePenalty:       180,
		HeuristicSpeed:          20,
		DirectWalkSeconds:       600,
		WalkCapSeconds:          300,
		RidingWalkCapSeconds:    240,
		RidingWalkCapMeters:     300,
		StrategicWalkCapSeconds: 480,
		DetourMeters:            200,
		CategoryDurations: map[graph.RouteCategory]float64{
			graph.HeavyRail:    120,
			graph.LightRail:    150,
			graph.CommuterRail: 180,
		},
		DefaultDuration: 120,
		DeparturesLimit: 10,
		Families: graph.LineFamilies{
			"Green Line B": "Green Line",
			"Green Line C": "Green Line",
			"Green Line D": "Green Line",
			"Green Line E": "Green Line",
		},
	}
}

// nominalSeconds is the static travel time of an edge. Train edges without a
// duration fall back to their category default.
func (o Options) nominalSeconds(e graph.Edge) float64 {
	if e.HasDuration() {
		return e.DurationSeconds
	}
	if e.IsWalk() {
		return e.DistanceMeters / kmhToMps(BaselineWalkingSpeedKmh)
	}
	if e.Train != nil {
		if d, ok := o.CategoryDurations[e.Train.Category]; ok && d > 0 {
			return d
		}
	}
	return o.DefaultDuration
}

// walkSeconds is how long a walk edge takes at speedKmh, scaled by factor.
// Distance is preferred; a walk with only a duration is rescaled from the
// baseline speed.
func walkSeconds(e graph.Edge, speedKmh, factor float64) float64 {
	if speedKmh <= 0 {
		speedKmh = BaselineWalkingSpeedKmh
	}
	if factor <= 0 {
		factor = 1
	}
	var secs float64
	if e.DistanceMeters > 0 {
		secs = e.DistanceMeters / kmhToMps(speedKmh)
	} else {
		secs = e.DurationSeconds * BaselineWalkingSpeedKmh / speedKmh
	}
	return secs * factor
}

func kmhToMps(kmh float64) float64 { return kmh * 1000 / 3600 }

func seconds(s float64) time.Duration { return time.Duration(s * float64(time.Second)) }
