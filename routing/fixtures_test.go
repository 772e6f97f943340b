package routing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/transit-router/graph"
	"github.com/theoremus-urban-solutions/transit-router/realtime"
)

var t0 = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func at(hhmm string) time.Time {
	d, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(err)
	}
	return t0.Add(time.Duration(d.Hour()-8)*time.Hour + time.Duration(d.Minute())*time.Minute)
}

func train(from, to, line, routeID string, cat graph.RouteCategory, secs, meters float64) []graph.Edge {
	attrs := &graph.TrainAttrs{RouteID: routeID, Line: line, Category: cat}
	return []graph.Edge{
		{Kind: graph.Train, From: from, To: to, DurationSeconds: secs, DistanceMeters: meters, Train: attrs},
		{Kind: graph.Train, From: to, To: from, DurationSeconds: secs, DistanceMeters: meters, Train: attrs},
	}
}

func walk(from, to string, secs, meters float64) []graph.Edge {
	return []graph.Edge{
		{Kind: graph.Walk, From: from, To: to, DurationSeconds: secs, DistanceMeters: meters},
		{Kind: graph.Walk, From: to, To: from, DurationSeconds: secs, DistanceMeters: meters},
	}
}

// bostonGraph is a slice of the Red and Green lines meeting at Park Street,
// with State reachable on foot and an isolated station.
func bostonGraph(t *testing.T) *graph.Graph {
	t.Helper()
	stations := []graph.Station{
		{ID: "place-alfcl", Name: "Alewife", Latitude: 42.3954, Longitude: -71.1425, Lines: []string{"Red Line"}},
		{ID: "place-harsq", Name: "Harvard", Latitude: 42.3734, Longitude: -71.1189, Lines: []string{"Red Line"}},
		{ID: "place-pktrm", Name: "Park Street", Latitude: 42.3564, Longitude: -71.0624, Lines: []string{"Red Line", "Green Line B"}},
		{ID: "place-boyls", Name: "Boylston", Latitude: 42.3530, Longitude: -71.0648, Lines: []string{"Green Line B"}},
		{ID: "place-hymnl", Name: "Hynes", Latitude: 42.3479, Longitude: -71.0877, Lines: []string{"Green Line B"}},
		{ID: "place-state", Name: "State", Latitude: 42.3589, Longitude: -71.0576, Lines: []string{"Orange Line"}},
		{ID: "place-isle", Name: "Island", Latitude: 42.30, Longitude: -71.00},
	}
	var edges []graph.Edge
	edges = append(edges, train("place-alfcl", "place-harsq", "Red Line", "Red", graph.HeavyRail, 300, 3000)...)
	edges = append(edges, train("place-harsq", "place-pktrm", "Red Line", "Red", graph.HeavyRail, 600, 5000)...)
	edges = append(edges, train("place-pktrm", "place-boyls", "Green Line B", "Green-B", graph.LightRail, 120, 500)...)
	edges = append(edges, train("place-boyls", "place-hymnl", "Green Line B", "Green-B", graph.LightRail, 0, 2000)...)
	edges = append(edges, walk("place-pktrm", "place-state", 430, 450)...)

	g, err := graph.New(stations, edges)
	require.NoError(t, err)
	return g
}

func departure(hhmm, trip string) realtime.Departure {
	return realtime.Departure{
		DepartureTime:       at(hhmm),
		ArrivalTimeAtOrigin: at(hhmm),
		Status:              realtime.StatusPredicted,
		TripID:              trip,
	}
}

// liveSource has Red trips from Alewife every few minutes and Green-B
// departures from Park Street, with Red arrivals at Park Street.
func liveSource() *realtime.Static {
	s := realtime.NewStatic()
	s.AddDeparture("place-alfcl", "Red", departure("08:02", "R1")).
		AddDeparture("place-alfcl", "Red", departure("08:10", "R2")).
		AddDeparture("place-alfcl", "Red", departure("08:20", "R3")).
		AddDeparture("place-pktrm", "Green-B", departure("08:18", "G0")).
		AddDeparture("place-pktrm", "Green-B", departure("08:21", "G1")).
		AddDeparture("place-pktrm", "Green-B", departure("08:34", "G2")).
		AddDeparture("place-pktrm", "Green-B", departure("08:45", "G3")).
		AddArrival("place-pktrm", "R1", at("08:17")).
		AddArrival("place-pktrm", "R2", at("08:25")).
		AddArrival("place-pktrm", "R3", at("08:35"))
	return s
}

// diamondGraph has a fast route with a line change (a-b-c) and a slower
// single-line route (a-d-c).
func diamondGraph(t *testing.T) *graph.Graph {
	t.Helper()
	stations := []graph.Station{
		{ID: "a", Latitude: 42.0, Longitude: -71.0, Lines: []string{"Red Line"}},
		{ID: "b", Latitude: 42.001, Longitude: -71.0, Lines: []string{"Red Line", "Blue Line"}},
		{ID: "c", Latitude: 42.002, Longitude: -71.0, Lines: []string{"Blue Line", "Red Line"}},
		{ID: "d", Latitude: 42.001, Longitude: -71.001, Lines: []string{"Red Line"}},
	}
	var edges []graph.Edge
	edges = append(edges, train("a", "b", "Red Line", "Red", graph.HeavyRail, 100, 800)...)
	edges = append(edges, train("b", "c", "Blue Line", "Blue", graph.HeavyRail, 100, 800)...)
	edges = append(edges, train("a", "d", "Red Line", "Red", graph.HeavyRail, 150, 900)...)
	edges = append(edges, train("d", "c", "Red Line", "Red", graph.HeavyRail, 150, 900)...)
	g, err := graph.New(stations, edges)
	require.NoError(t, err)
	return g
}

func assertChronology(t *testing.T, r *Route) {
	t.Helper()
	for i, s := range r.Segments {
		require.Truef(t, s.ArrivalTime.After(s.DepartureTime), "segment %d arrives before it departs", i)
		if i > 0 {
			prev := r.Segments[i-1]
			require.Equal(t, prev.To, s.From)
			require.Falsef(t, prev.ArrivalTime.After(s.DepartureTime), "segment %d departs before %d arrives", i, i-1)
		}
	}
	require.InDelta(t, r.ArrivalTime.Sub(r.RequestTime).Seconds(), r.TotalTimeSeconds, 1)
}

// branchGraph has two Green Line branches joined only by a short walk, b to c.
func branchGraph(t *testing.T) *graph.Graph {
	t.Helper()
	stations := []graph.Station{
		{ID: "a", Name: "A", Latitude: 42.300, Longitude: -71.100, Lines: []string{"Green Line B"}},
		{ID: "b", Name: "B", Latitude: 42.305, Longitude: -71.100, Lines: []string{"Green Line B"}},
		{ID: "c", Name: "C", Latitude: 42.3065, Longitude: -71.100, Lines: []string{"Green Line C"}},
		{ID: "d", Name: "D", Latitude: 42.312, Longitude: -71.100, Lines: []string{"Green Line C"}},
	}
	var edges []graph.Edge
	edges = append(edges, train("a", "b", "Green Line B", "Green-B", graph.LightRail, 120, 550)...)
	edges = append(edges, walk("b", "c", 150, 200)...)
	edges = append(edges, train("c", "d", "Green Line C", "Green-C", graph.LightRail, 120, 600)...)
	g, err := graph.New(stations, edges)
	require.NoError(t, err)
	return g
}

// branchSource serves B1 from a at 08:01 and the only Green-C trip from c at
// 08:30.
func branchSource() *realtime.Static {
	s := realtime.NewStatic()
	s.AddDeparture("a", "Green-B", departure("08:01", "B1")).
		AddDeparture("c", "Green-C", departure("08:30", "C1"))
	return s
}
