package routing

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func lbl(transfers int, offset time.Duration) Label {
	return Label{Transfers: transfers, Arrival: t0.Add(offset)}
}

func TestLabel_Dominates(t *testing.T) {
	tests := []struct {
		name string
		a, b Label
		want bool
	}{
		{"fewer transfers same time", lbl(0, 0), lbl(1, 0), true},
		{"earlier same transfers", lbl(1, 0), lbl(1, time.Minute), true},
		{"equal", lbl(1, 0), lbl(1, 0), false},
		{"trade-off", lbl(0, time.Minute), lbl(1, 0), false},
		{"worse", lbl(2, time.Minute), lbl(1, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Dominates(tt.b))
		})
	}
}

func TestFrontier_Insert(t *testing.T) {
	f := NewFrontier(0)

	assert.True(t, f.Insert(lbl(1, 10*time.Minute)))
	assert.False(t, f.Insert(lbl(1, 10*time.Minute)), "equal label is rejected")
	assert.False(t, f.Insert(lbl(2, 12*time.Minute)), "dominated label is rejected")
	assert.True(t, f.Insert(lbl(0, 15*time.Minute)), "trade-off is kept")
	assert.True(t, f.Insert(lbl(1, 5*time.Minute)), "improvement replaces")

	assert.Equal(t, []Label{lbl(0, 15*time.Minute), lbl(1, 5*time.Minute)}, f.Labels())
}

func TestFrontier_Cap(t *testing.T) {
	f := NewFrontier(2)
	assert.True(t, f.Insert(lbl(0, 30*time.Minute)))
	assert.True(t, f.Insert(lbl(1, 20*time.Minute)))

	assert.False(t, f.Insert(lbl(2, 25*time.Minute)), "full and not earlier than the latest label")
	assert.True(t, f.Insert(lbl(2, 10*time.Minute)), "earlier label evicts the latest")
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, []Label{lbl(1, 20*time.Minute), lbl(2, 10*time.Minute)}, f.Labels())
}

func TestFrontier_KillsDominatedStates(t *testing.T) {
	f := NewFrontier(0)
	slow := &state{transfers: 0, arrival: t0.Add(time.Hour)}
	f.insert(slow.label(), slow)

	fast := &state{transfers: 0, arrival: t0.Add(time.Minute)}
	assert.True(t, f.insert(fast.label(), fast))
	assert.True(t, slow.dead)
	assert.False(t, fast.dead)
}

func TestFrontier_ParetoProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	decode := func(v int) Label { return lbl(v%5, time.Duration(v/5)*time.Second) }

	properties.Property("retained labels are mutually non-dominated", prop.ForAll(
		func(values []int, limit int) bool {
			f := NewFrontier(limit)
			for _, v := range values {
				f.Insert(decode(v))
			}
			labels := f.Labels()
			if limit > 0 && len(labels) > limit {
				return false
			}
			for i := range labels {
				for j := range labels {
					if i != j && (labels[i].Dominates(labels[j]) || labels[i] == labels[j]) {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 3000)),
		gen.IntRange(0, 4),
	))

	properties.Property("unbounded frontier covers every inserted label", prop.ForAll(
		func(values []int) bool {
			f := NewFrontier(0)
			for _, v := range values {
				f.Insert(decode(v))
			}
			labels := f.Labels()
			for _, v := range values {
				in := decode(v)
				covered := false
				for _, l := range labels {
					if l.covers(in) {
						covered = true
						break
					}
				}
				if !covered {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 3000)),
	))

	properties.TestingRun(t)
}
