package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

type snapshotDoc struct {
	Metadata         map[string]any `json:"metadata"`
	Graph            *snapshotGraph `json:"graph"`
	TransferStations []string       `json:"transfer_stations"`
}

type snapshotGraph struct {
	Nodes map[string]snapshotNode `json:"nodes"`
	Edges []snapshotEdge          `json:"edges"`
}

type snapshotNode struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Lines     []string `json:"lines"`
}

type snapshotEdge struct {
	From           string   `json:"from"`
	To             string   `json:"to"`
	Type           string   `json:"type"`
	Line           string   `json:"line"`
	RouteID        string   `json:"route_id"`
	RouteType      *int     `json:"route_type"`
	DistanceMeters float64  `json:"distance_meters"`
	TimeSeconds    *float64 `json:"time_seconds"`
}

// Metadata describes the snapshot a Graph was parsed from.
type Metadata struct {
	Raw              map[string]any
	TransferStations []string
}

// Parse decodes a builder snapshot into a Graph.
func Parse(r io.Reader) (*Graph, error) {
	g, _, err := ParseWithMetadata(r)
	return g, err
}

// ParseWithMetadata decodes a builder snapshot and also returns its metadata.
func ParseWithMetadata(r io.Reader) (*Graph, Metadata, error) {
	var doc snapshotDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, Metadata{}, &FormatError{Field: "document", Reason: err.Error()}
	}
	if doc.Graph == nil {
		return nil, Metadata{}, &FormatError{Field: "graph", Reason: "missing"}
	}

	ids := make([]string, 0, len(doc.Graph.Nodes))
	for id := range doc.Graph.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	stations := make([]Station, 0, len(ids))
	for _, key := range ids {
		n := doc.Graph.Nodes[key]
		id := n.ID
		if id == "" {
			id = key
		}
		if id != key {
			return nil, Metadata{}, &FormatError{Field: "graph.nodes." + key, Reason: "id mismatch " + id}
		}
		stations = append(stations, Station{
			ID:        id,
			Name:      n.Name,
			Latitude:  n.Latitude,
			Longitude: n.Longitude,
			Lines:     append([]string(nil), n.Lines...),
		})
	}

	edges := make([]Edge, 0, len(doc.Graph.Edges))
	for i, se := range doc.Graph.Edges {
		e := Edge{
			From:           se.From,
			To:             se.To,
			DistanceMeters: se.DistanceMeters,
		}
		if se.TimeSeconds != nil {
			e.DurationSeconds = *se.TimeSeconds
		}
		switch se.Type {
		case "walk":
			e.Kind = Walk
		case "train", "":
			e.Kind = Train
			attrs := &TrainAttrs{RouteID: se.RouteID, Line: se.Line, Category: UnknownCategory}
			if se.RouteType != nil {
				attrs.Category = CategoryFromRouteType(*se.RouteType)
			}
			if attrs.Line == "" {
				attrs.Line = attrs.RouteID
			}
			if attrs.Line == "" {
				return nil, Metadata{}, &FormatError{Field: fmt.Sprintf("graph.edges[%d]", i), Reason: "train edge without line or route_id"}
			}
			e.Train = attrs
		default:
			return nil, Metadata{}, &FormatError{Field: fmt.Sprintf("graph.edges[%d].type", i), Reason: "unsupported type " + se.Type}
		}
		edges = append(edges, e)
	}

	g, err := New(stations, edges)
	if err != nil {
		return nil, Metadata{}, err
	}
	return g, Metadata{Raw: doc.Metadata, TransferStations: doc.TransferStations}, nil
}
