package routing

import (
	"container/heap"
	"fmt"

	"github.com/theoremus-urban-solutions/transit-router/graph"
)

// StaticFinder runs Dijkstra over nominal edge durations. It never consults
// live data.
type StaticFinder struct {
	graph *graph.Graph
	opts  Options
}

// NewStaticFinder creates a finder over g.
func NewStaticFinder(g *graph.Graph, opts Options) *StaticFinder {
	return &StaticFinder{graph: g, opts: opts}
}

type staticItem struct {
	station string
	cost    float64
	line    string
	seq     int
}

type staticQueue []staticItem

func (q staticQueue) Len() int { return len(q) }
func (q staticQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	return q[i].seq < q[j].seq
}
func (q staticQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *staticQueue) Push(x any)   { *q = append(*q, x.(staticItem)) }
func (q *staticQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// ShortestPath returns the cheapest edge sequence from origin to destination.
// With minimizeTransfers, every train edge whose line differs from the line
// used to reach its source costs an extra LineChangePenalty. Walks keep the
// current line. Origin equal to destination yields an empty path.
func (f *StaticFinder) ShortestPath(origin, destination string, minimizeTransfers bool) ([]graph.Edge, error) {
	for _, id := range []string{origin, destination} {
		if !f.graph.HasStation(id) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownStation, id)
		}
	}
	if origin == destination {
		return []graph.Edge{}, nil
	}

	dist := map[string]float64{origin: 0}
	prev := map[string]graph.Edge{}
	done := map[string]bool{}
	seq := 0

	q := &staticQueue{{station: origin}}
	for q.Len() > 0 {
		cur := heap.Pop(q).(staticItem)
		if done[cur.station] {
			continue
		}
		done[cur.station] = true
		if cur.station == destination {
			return f.unwind(prev, origin, destination), nil
		}
		for _, e := range f.graph.Neighbors(cur.station) {
			if done[e.To] {
				continue
			}
			w := f.opts.nominalSeconds(e)
			line := cur.line
			if e.IsTrain() {
				if minimizeTransfers && cur.line != "" && !f.opts.Families.Same(cur.line, e.Line()) {
					w += f.opts.LineChangePenalty
				}
				line = e.Line()
			}
			nd := cur.cost + w
			if d, ok := dist[e.To]; ok && d <= nd {
				continue
			}
			dist[e.To] = nd
			prev[e.To] = e
			seq++
			heap.Push(q, staticItem{station: e.To, cost: nd, line: line, seq: seq})
		}
	}
	return nil, fmt.Errorf("%w: %s to %s", ErrNoPathFound, origin, destination)
}

func (f *StaticFinder) unwind(prev map[string]graph.Edge, origin, destination string) []graph.Edge {
	var path []graph.Edge
	for at := destination; at != origin; {
		e := prev[at]
		path = append(path, e)
		at = e.From
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
