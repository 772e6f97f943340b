package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrStationNotFound is returned for ids absent from the graph.
var ErrStationNotFound = errors.New("station not found")

// Graph is the immutable station/edge network.
type Graph struct {
	stations map[string]Station
	adj      map[string][]Edge
	edges    int
}

// New builds a Graph. Every edge endpoint must be a known station; identical
// duplicate edges are kept once.
func New(stations []Station, edges []Edge) (*Graph, error) {
	g := &Graph{
		stations: make(map[string]Station, len(stations)),
		adj:      make(map[string][]Edge, len(stations)),
	}
	for _, s := range stations {
		if s.ID == "" {
			return nil, &FormatError{Field: "nodes", Reason: "station without id"}
		}
		g.stations[s.ID] = s
	}
	seen := make(map[edgeKey]struct{}, len(edges))
	for i, e := range edges {
		if _, ok := g.stations[e.From]; !ok {
			return nil, &FormatError{Field: fmt.Sprintf("edges[%d].from", i), Reason: "unknown station " + e.From}
		}
		if _, ok := g.stations[e.To]; !ok {
			return nil, &FormatError{Field: fmt.Sprintf("edges[%d].to", i), Reason: "unknown station " + e.To}
		}
		if e.Kind == Train && e.Train == nil {
			return nil, &FormatError{Field: fmt.Sprintf("edges[%d]", i), Reason: "train edge without route"}
		}
		if e.DistanceMeters < 0 || e.DurationSeconds < 0 {
			return nil, &FormatError{Field: fmt.Sprintf("edges[%d]", i), Reason: "negative weight"}
		}
		k := e.key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		g.adj[e.From] = append(g.adj[e.From], e)
		g.edges++
	}
	return g, nil
}

// Station returns the station with the given id.
func (g *Graph) Station(id string) (Station, error) {
	s, ok := g.stations[id]
	if !ok {
		return Station{}, fmt.Errorf("%w: %s", ErrStationNotFound, id)
	}
	return s, nil
}

// HasStation reports whether id is a known station.
func (g *Graph) HasStation(id string) bool {
	_, ok := g.stations[id]
	return ok
}

// Neighbors returns the outgoing edges of a station in snapshot order. The
// slice must not be modified.
func (g *Graph) Neighbors(id string) []Edge {
	return g.adj[id]
}

// WalkEdge returns the walking connector from one station to another.
func (g *Graph) WalkEdge(from, to string) (Edge, bool) {
	for _, e := range g.adj[from] {
		if e.Kind == Walk && e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

func (g *Graph) StationCount() int { return len(g.stations) }

func (g *Graph) EdgeCount() int { return g.edges }

// Stations returns all stations sorted by id.
func (g *Graph) Stations() []Station {
	out := make([]Station, 0, len(g.stations))
	for _, s := range g.stations {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns every edge grouped by source station id.
func (g *Graph) Edges() []Edge {
	ids := make([]string, 0, len(g.adj))
	for id := range g.adj {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Edge, 0, g.edges)
	for _, id := range ids {
		out = append(out, g.adj[id]...)
	}
	return out
}

// Serves reports whether the station serves line or another member of its
// family.
func (g *Graph) Serves(stationID, line string, families LineFamilies) bool {
	s, ok := g.stations[stationID]
	if !ok || line == "" {
		return false
	}
	for _, l := range s.Lines {
		if families.Same(l, line) {
			return true
		}
	}
	return false
}

// SharesLine reports whether two stations have a line (or line family) in common.
func (g *Graph) SharesLine(a, b string, families LineFamilies) bool {
	sa, ok := g.stations[a]
	if !ok {
		return false
	}
	for _, l := range sa.Lines {
		if g.Serves(b, l, families) {
			return true
		}
	}
	return false
}

// StationDistance pairs a station with its distance from a query point.
type StationDistance struct {
	Station
	DistanceMeters float64 `json:"distance_meters"`
}

// Nearest returns up to limit stations ordered by straight-line distance.
func (g *Graph) Nearest(lat, lon float64, limit int) []StationDistance {
	out := make([]StationDistance, 0, len(g.stations))
	for _, s := range g.stations {
		out = append(out, StationDistance{Station: s, DistanceMeters: HaversineMeters(lat, lon, s.Latitude, s.Longitude)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceMeters != out[j].DistanceMeters {
			return out[i].DistanceMeters < out[j].DistanceMeters
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Search returns stations whose name contains query, case-insensitively.
func (g *Graph) Search(query string, limit int) []Station {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Station
	for _, s := range g.Stations() {
		if q == "" || strings.Contains(strings.ToLower(s.Name), q) {
			out = append(out, s)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}
