package routing

import (
	"sort"
	"time"
)

// Label is one way of reaching a station.
type Label struct {
	Transfers int
	Arrival   time.Time
}

// Dominates reports whether l is at least as good as o in both objectives and
// strictly better in one.
func (l Label) Dominates(o Label) bool {
	if l.Transfers > o.Transfers || l.Arrival.After(o.Arrival) {
		return false
	}
	return l.Transfers < o.Transfers || l.Arrival.Before(o.Arrival)
}

// covers is weak dominance: l is no worse than o in either objective.
func (l Label) covers(o Label) bool {
	return l.Transfers <= o.Transfers && !l.Arrival.After(o.Arrival)
}

// Frontier is the set of non-dominated labels kept at one station. It holds
// at most cap labels; a zero cap means unbounded.
type Frontier struct {
	cap    int
	labels []Label
	owners []*state
}

// NewFrontier creates an empty frontier holding up to limit labels.
func NewFrontier(limit int) *Frontier {
	return &Frontier{cap: limit}
}

// Insert adds l unless a retained label covers it. It reports whether l was
// kept.
func (f *Frontier) Insert(l Label) bool {
	return f.insert(l, nil)
}

// insert removes every label l dominates and marks their states dead so the
// search skips them when popped. When the frontier is full the
// latest-arriving label is evicted if l arrives earlier; otherwise l is
// rejected.
func (f *Frontier) insert(l Label, owner *state) bool {
	for _, existing := range f.labels {
		if existing.covers(l) {
			return false
		}
	}
	kept := f.labels[:0]
	keptOwners := f.owners[:0]
	for i, existing := range f.labels {
		if l.Dominates(existing) {
			f.owners[i].kill()
			continue
		}
		kept = append(kept, existing)
		keptOwners = append(keptOwners, f.owners[i])
	}
	f.labels, f.owners = kept, keptOwners

	if f.cap > 0 && len(f.labels) >= f.cap {
		worst := 0
		for i := range f.labels {
			if f.labels[i].Arrival.After(f.labels[worst].Arrival) {
				worst = i
			}
		}
		if !l.Arrival.Before(f.labels[worst].Arrival) {
			return false
		}
		f.owners[worst].kill()
		f.labels = append(f.labels[:worst], f.labels[worst+1:]...)
		f.owners = append(f.owners[:worst], f.owners[worst+1:]...)
	}

	f.labels = append(f.labels, l)
	f.owners = append(f.owners, owner)
	return true
}

// Labels returns the retained labels ordered by transfers, then arrival.
func (f *Frontier) Labels() []Label {
	out := append([]Label(nil), f.labels...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Transfers != out[j].Transfers {
			return out[i].Transfers < out[j].Transfers
		}
		return out[i].Arrival.Before(out[j].Arrival)
	})
	return out
}

// Len returns the number of retained labels.
func (f *Frontier) Len() int { return len(f.labels) }
