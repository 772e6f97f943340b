package routing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/transit-router/transfer"
)

func TestAlternatives_AvoidRisk(t *testing.T) {
	p := newTestPlanner(t, liveSource(), nil)
	req := Request{Origin: "place-alfcl", Destination: "place-boyls", DepartureTime: t0, WalkingSpeedKmh: 5, UseRealtime: true}
	primary, err := p.Route(context.Background(), req)
	require.NoError(t, err)
	require.True(t, primary.HasRiskyTransfer())

	alts, err := p.Alternatives(context.Background(), primary, req, 3)
	require.NoError(t, err)
	// Starts at 08:07, 08:12 and 08:17; the last two catch the same trains.
	require.Len(t, alts, 2)
	assert.Equal(t, at("08:36"), alts[0].ArrivalTime)
	assert.Equal(t, at("08:47"), alts[1].ArrivalTime)

	for _, alt := range alts {
		assert.True(t, alt.ArrivalTime.After(primary.ArrivalTime))
		assert.False(t, alt.HasRiskyTransfer())
		assert.Equal(t, t0, alt.RequestTime)
		assertChronology(t, alt)
		for _, s := range alt.Segments {
			if s.Transfer != nil {
				assert.Equal(t, transfer.Likely, s.Transfer.Rating)
			}
		}
	}
	assert.Equal(t, 36*60.0, alts[0].TotalTimeSeconds, "total is measured from the original request")
}

func TestAlternatives_Count(t *testing.T) {
	p := newTestPlanner(t, liveSource(), nil)
	req := Request{Origin: "place-alfcl", Destination: "place-boyls", DepartureTime: t0, UseRealtime: true}
	primary, err := p.Route(context.Background(), req)
	require.NoError(t, err)

	one, err := p.Alternatives(context.Background(), primary, req, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, at("08:36"), one[0].ArrivalTime)

	none, err := p.Alternatives(context.Background(), primary, req, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAlternatives_LaterDepartureMode(t *testing.T) {
	p := newTestPlanner(t, nil, nil)
	req := Request{Origin: "place-alfcl", Destination: "place-pktrm", DepartureTime: t0}
	primary, err := p.Route(context.Background(), req)
	require.NoError(t, err)
	require.False(t, primary.HasRiskyTransfer())

	alts, err := p.Alternatives(context.Background(), primary, req, 5)
	require.NoError(t, err)
	require.Len(t, alts, 3)
	for i := 1; i < len(alts); i++ {
		assert.True(t, alts[i].ArrivalTime.After(alts[i-1].ArrivalTime))
	}
	assert.Equal(t, primary.ArrivalTime.Add(5*time.Minute), alts[0].ArrivalTime)
}

func TestAlternatives_NilPrimary(t *testing.T) {
	p := newTestPlanner(t, nil, nil)
	alts, err := p.Alternatives(context.Background(), nil, Request{}, 3)
	require.NoError(t, err)
	assert.Empty(t, alts)
}
