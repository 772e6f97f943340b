package graph

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

// cachedGraph is the gob form of a Graph. Graph keeps its maps unexported, so
// the cache stores the flat station and edge lists and rebuilds the adjacency.
type cachedGraph struct {
	Stations []Station
	Edges    []Edge
}

// Serialize encodes a Graph with gob.
func Serialize(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := SerializeToWriter(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SerializeToWriter writes the gob form of g to w.
func SerializeToWriter(g *Graph, w io.Writer) error {
	c := cachedGraph{Stations: g.Stations(), Edges: g.Edges()}
	if err := gob.NewEncoder(w).Encode(&c); err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	return nil
}

// Deserialize decodes a Graph produced by Serialize.
func Deserialize(data []byte) (*Graph, error) {
	return DeserializeFromReader(bytes.NewReader(data))
}

// DeserializeFromReader decodes a Graph from r.
func DeserializeFromReader(r io.Reader) (*Graph, error) {
	var c cachedGraph
	if err := gob.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode graph: %w", err)
	}
	return New(c.Stations, c.Edges)
}

// SaveCache writes g to path.
//
// Example:
//
//	g, _ := graph.NewLoader(nil, nil).Load(ctx, "data/transit_graph.json")
//	if err := graph.SaveCache(g, "/cache/graph.gob"); err != nil {
//	    // handle error
//	}
func SaveCache(g *Graph, path string) error {
	data, err := Serialize(g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadCache reads a Graph previously written by SaveCache.
func LoadCache(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	return Deserialize(data)
}
