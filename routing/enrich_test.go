package routing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/transit-router/graph"
	"github.com/theoremus-urban-solutions/transit-router/realtime"
	"github.com/theoremus-urban-solutions/transit-router/transfer"
)

func pathThrough(t *testing.T, g *graph.Graph, stations ...string) []graph.Edge {
	t.Helper()
	var path []graph.Edge
	for i := 0; i+1 < len(stations); i++ {
		found := false
		for _, e := range g.Neighbors(stations[i]) {
			if e.To == stations[i+1] {
				path = append(path, e)
				found = true
				break
			}
		}
		require.Truef(t, found, "no edge %s -> %s", stations[i], stations[i+1])
	}
	return path
}

func newTestEnricher(g *graph.Graph) *Enricher {
	return NewEnricher(g, DefaultOptions(), transfer.DefaultPolicy(), nil)
}

func TestEnrich_ScheduledWithoutSource(t *testing.T) {
	g := bostonGraph(t)
	path := pathThrough(t, g, "place-alfcl", "place-harsq", "place-pktrm")

	route := newTestEnricher(g).Enrich(context.Background(), path, EnrichOptions{Start: t0, RequestTime: t0, WalkingSpeedKmh: 5})

	require.Len(t, route.Segments, 2)
	for _, s := range route.Segments {
		assert.Equal(t, StatusScheduled, s.Status)
		assert.Equal(t, "Red Line", s.Line)
		assert.Nil(t, s.Transfer)
	}
	assert.Equal(t, 300.0, route.Segments[0].DurationSeconds)
	assert.Equal(t, 600.0, route.Segments[1].DurationSeconds)
	assert.Equal(t, 0, route.Transfers)
	assert.Equal(t, 900.0, route.TotalTimeSeconds)
	assert.Equal(t, 8000.0, route.TotalDistanceMeters)
	assert.Equal(t, "Alewife", route.Segments[0].FromName)
	assertChronology(t, route)
}

func TestEnrich_LiveTransferRating(t *testing.T) {
	g := bostonGraph(t)
	path := pathThrough(t, g, "place-alfcl", "place-harsq", "place-pktrm", "place-boyls")

	route := newTestEnricher(g).Enrich(context.Background(), path, EnrichOptions{
		Start:           t0,
		RequestTime:     t0,
		WalkingSpeedKmh: 5,
		Source:          liveSource(),
	})
	require.Len(t, route.Segments, 3)
	assertChronology(t, route)

	red := route.Segments[0]
	assert.Equal(t, at("08:02"), red.DepartureTime)
	assert.Equal(t, 120.0, red.WaitSeconds)
	assert.Equal(t, "R1", red.TripID)
	assert.Equal(t, SegmentStatus(realtime.StatusPredicted), red.Status)
	assert.Equal(t, "R1", route.Segments[1].TripID, "same ride keeps the trip")
	assert.Equal(t, at("08:17"), route.Segments[1].ArrivalTime, "arrival resolved from the trip")

	green := route.Segments[2]
	assert.True(t, green.IsTransfer)
	assert.Equal(t, at("08:21"), green.DepartureTime)
	require.NotNil(t, green.Transfer)
	// Park Street 180s plus 30s for Red to Green.
	assert.Equal(t, 210, green.Transfer.BufferSeconds)
	assert.Equal(t, 240.0, green.Transfer.AvailableSeconds)
	assert.Equal(t, 30.0, green.Transfer.SlackSeconds)
	assert.Equal(t, transfer.Unlikely, green.Rating())

	assert.Equal(t, 1, route.Transfers)
	assert.Equal(t, at("08:23"), route.ArrivalTime)
	assert.Equal(t, at("08:02"), route.DepartureTime)
	assert.Equal(t, 23*60.0, route.TotalTimeSeconds)
	assert.True(t, route.HasRiskyTransfer())
	assert.Equal(t, []string{"Red Line", "Green Line B"}, route.Lines())
}

func TestEnrich_EstimatedOnSourceFailure(t *testing.T) {
	g := bostonGraph(t)
	source := liveSource()
	source.SetError(errors.New("upstream down"))
	path := pathThrough(t, g, "place-alfcl", "place-harsq", "place-pktrm", "place-boyls")

	route := newTestEnricher(g).Enrich(context.Background(), path, EnrichOptions{Start: t0, RequestTime: t0, Source: source})

	for _, s := range route.Segments {
		assert.Equal(t, StatusEstimated, s.Status)
	}
	green := route.Segments[2]
	assert.True(t, green.IsTransfer)
	assert.Nil(t, green.Transfer, "estimated boardings carry no rating")
	// 900s of Red, the 210s buffer, then 120s of Green.
	assert.Equal(t, t0.Add(1230*time.Second), route.ArrivalTime)
	assertChronology(t, route)
}

func TestEnrich_RequestTimeDiffersFromStart(t *testing.T) {
	g := bostonGraph(t)
	path := pathThrough(t, g, "place-alfcl", "place-harsq")
	start := t0.Add(10 * time.Minute)

	route := newTestEnricher(g).Enrich(context.Background(), path, EnrichOptions{Start: start, RequestTime: t0})
	assert.Equal(t, 900.0, route.TotalTimeSeconds, "ten minutes before departure plus five of riding")

	route.RecomputeTotal(start)
	assert.Equal(t, 300.0, route.TotalTimeSeconds)
	assert.Equal(t, start, route.RequestTime)
}

func TestEnrich_WalkingSegments(t *testing.T) {
	g := bostonGraph(t)
	path := pathThrough(t, g, "place-state", "place-pktrm", "place-harsq")

	route := newTestEnricher(g).Enrich(context.Background(), path, EnrichOptions{Start: t0, RequestTime: t0, WalkingSpeedKmh: 5, WalkFactor: 1.2})

	w := route.Segments[0]
	assert.Equal(t, SegmentWalk, w.Type)
	assert.Equal(t, StatusWalking, w.Status)
	assert.InDelta(t, 324*1.2, w.DurationSeconds, 0.01)
	assert.False(t, route.Segments[1].IsTransfer, "boarding after a walk from the origin is not a transfer")
	assertChronology(t, route)
}

func TestEnrich_BoardsAgainAfterWalk(t *testing.T) {
	g := branchGraph(t)
	path := pathThrough(t, g, "a", "b", "c", "d")

	route := newTestEnricher(g).Enrich(context.Background(), path, EnrichOptions{
		Start:           t0,
		RequestTime:     t0,
		WalkingSpeedKmh: 5,
		Source:          branchSource(),
	})
	require.Len(t, route.Segments, 3)
	assertChronology(t, route)

	assert.Equal(t, "B1", route.Segments[0].TripID)
	assert.Equal(t, at("08:03"), route.Segments[0].ArrivalTime)
	// 200m at 5 km/h.
	assert.InDelta(t, 144, route.Segments[1].DurationSeconds, 0.01)

	c := route.Segments[2]
	assert.Equal(t, "Green Line C", c.Line)
	assert.Equal(t, at("08:30"), c.DepartureTime, "the next Green-C departure, not the end of the walk")
	assert.Equal(t, "C1", c.TripID)
	assert.Equal(t, SegmentStatus(realtime.StatusPredicted), c.Status)
	assert.InDelta(t, 1476, c.WaitSeconds, 0.01)
	assert.True(t, c.IsTransfer)
	require.NotNil(t, c.Transfer)
	assert.Equal(t, transfer.Likely, c.Transfer.Rating)
	assert.Equal(t, 1, route.Transfers)
	assert.Equal(t, at("08:32"), route.ArrivalTime)
}

func TestEnrich_WalkEndsRideWithoutDepartures(t *testing.T) {
	g := branchGraph(t)
	path := pathThrough(t, g, "a", "b", "c", "d")
	source := realtime.NewStatic()
	source.AddDeparture("a", "Green-B", departure("08:01", "B1"))

	route := newTestEnricher(g).Enrich(context.Background(), path, EnrichOptions{Start: t0, RequestTime: t0, WalkingSpeedKmh: 5, Source: source})

	c := route.Segments[2]
	assert.Empty(t, c.TripID, "the walked-away trip is not carried over")
	assert.Equal(t, StatusEstimated, c.Status)
	assert.True(t, c.IsTransfer)
	assert.Nil(t, c.Transfer)
	assertChronology(t, route)
}

func TestWalkSeconds_Examples(t *testing.T) {
	e := graph.Edge{Kind: graph.Walk, DistanceMeters: 500}
	assert.InDelta(t, 360, walkSeconds(e, 5, 1), 0.01)
	assert.InDelta(t, 600, walkSeconds(e, 3, 1), 0.01)
	assert.InDelta(t, 257.14, walkSeconds(e, 7, 1), 0.01)
	assert.InDelta(t, 360, walkSeconds(e, 0, 0), 0.01, "zero speed and factor use defaults")

	durationOnly := graph.Edge{Kind: graph.Walk, DurationSeconds: 300}
	assert.InDelta(t, 600, walkSeconds(durationOnly, 2.5, 1), 0.01)
}

func TestWalkSeconds_MonotonicInSpeed(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("slower walking takes strictly longer", prop.ForAll(
		func(meters, slow, delta float64) bool {
			e := graph.Edge{Kind: graph.Walk, DistanceMeters: meters}
			return walkSeconds(e, slow, 1) > walkSeconds(e, slow+delta, 1)
		},
		gen.Float64Range(1, 5000),
		gen.Float64Range(0.5, 10),
		gen.Float64Range(0.1, 5),
	))

	properties.TestingRun(t)
}
