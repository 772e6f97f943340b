package gtfsrt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/transit-router/metrics"
	"github.com/theoremus-urban-solutions/transit-router/realtime"
)

var base = time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)

type stu struct {
	stop      string
	arrival   time.Duration // offset from base, 0 = absent
	departure time.Duration
	skipped   bool
}

func tripUpdate(id, trip, route string, dir uint32, vehicle string, stops ...stu) *gtfsrtpb.FeedEntity {
	tu := &gtfsrtpb.TripUpdate{
		Trip: &gtfsrtpb.TripDescriptor{
			TripId:      proto.String(trip),
			RouteId:     proto.String(route),
			DirectionId: proto.Uint32(dir),
		},
	}
	if vehicle != "" {
		tu.Vehicle = &gtfsrtpb.VehicleDescriptor{Id: proto.String(vehicle)}
	}
	for _, s := range stops {
		u := &gtfsrtpb.TripUpdate_StopTimeUpdate{StopId: proto.String(s.stop)}
		if s.arrival != 0 {
			u.Arrival = &gtfsrtpb.TripUpdate_StopTimeEvent{Time: proto.Int64(base.Add(s.arrival).Unix())}
		}
		if s.departure != 0 {
			u.Departure = &gtfsrtpb.TripUpdate_StopTimeEvent{Time: proto.Int64(base.Add(s.departure).Unix())}
		}
		if s.skipped {
			u.ScheduleRelationship = gtfsrtpb.TripUpdate_StopTimeUpdate_SKIPPED.Enum()
		}
		tu.StopTimeUpdate = append(tu.StopTimeUpdate, u)
	}
	return &gtfsrtpb.FeedEntity{Id: proto.String(id), TripUpdate: tu}
}

func encodeFeed(t *testing.T, entities ...*gtfsrtpb.FeedEntity) []byte {
	t.Helper()
	fm := &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Timestamp:           proto.Uint64(uint64(base.Unix())),
		},
		Entity: entities,
	}
	data, err := proto.Marshal(fm)
	require.NoError(t, err)
	return data
}

func sampleFeed(t *testing.T) []byte {
	t.Helper()
	cancelled := tripUpdate("4", "R9", "Red", 0, "", stu{stop: "70075", departure: 2 * time.Minute})
	cancelled.TripUpdate.Trip.ScheduleRelationship = gtfsrtpb.TripDescriptor_CANCELED.Enum()
	return encodeFeed(t,
		tripUpdate("1", "R1", "Red", 1, "1801",
			stu{stop: "70075", arrival: 4 * time.Minute, departure: 5 * time.Minute},
			stu{stop: "70077", arrival: 7 * time.Minute}),
		tripUpdate("2", "R2", "Red", 0, "",
			stu{stop: "70075", departure: 3 * time.Minute}),
		tripUpdate("3", "R3", "Red", 1, "",
			stu{stop: "70075", departure: -time.Minute},
			stu{stop: "70077", departure: 9 * time.Minute, skipped: true}),
		cancelled,
		tripUpdate("5", "O1", "Orange", 0, "", stu{stop: "place-dwnxg", departure: time.Minute}),
		&gtfsrtpb.FeedEntity{
			Id: proto.String("v2"),
			Vehicle: &gtfsrtpb.VehiclePosition{
				Trip:    &gtfsrtpb.TripDescriptor{TripId: proto.String("R2")},
				Vehicle: &gtfsrtpb.VehicleDescriptor{Id: proto.String("1900")},
			},
		},
	)
}

func newTestFeed(t *testing.T) *Feed {
	t.Helper()
	f := NewFeed(FeedOptions{
		Clock:   func() time.Time { return base },
		Aliases: map[string]string{"70075": "place-pktrm", "70077": "place-dwnxg"},
	})
	require.NoError(t, f.Update(sampleFeed(t)))
	return f
}

func TestFeed_NextDepartures(t *testing.T) {
	f := newTestFeed(t)

	deps, err := f.NextDepartures(context.Background(), "place-pktrm", "Red", 5, nil)
	require.NoError(t, err)
	require.Len(t, deps, 2, "departed and cancelled trips are excluded")

	assert.Equal(t, "R2", deps[0].TripID)
	assert.Equal(t, base.Add(3*time.Minute).Unix(), deps[0].DepartureTime.Unix())
	assert.Equal(t, deps[0].DepartureTime, deps[0].ArrivalTimeAtOrigin, "missing arrival falls back to departure")
	assert.Equal(t, "1900", deps[0].VehicleID)
	assert.Equal(t, realtime.StatusPredicted, deps[0].Status)

	assert.Equal(t, "R1", deps[1].TripID)
	assert.Equal(t, base.Add(4*time.Minute).Unix(), deps[1].ArrivalTimeAtOrigin.Unix())
	assert.Equal(t, "1801", deps[1].VehicleID)
}

func TestFeed_NextDepartures_Filters(t *testing.T) {
	f := newTestFeed(t)
	ctx := context.Background()

	outbound := 1
	deps, err := f.NextDepartures(ctx, "place-pktrm", "Red", 5, &outbound)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "R1", deps[0].TripID)

	deps, err = f.NextDepartures(ctx, "70075", "Red", 1, nil)
	require.NoError(t, err)
	require.Len(t, deps, 1, "platform ids resolve through aliases")

	deps, err = f.NextDepartures(ctx, "place-dwnxg", "Red", 5, nil)
	require.NoError(t, err)
	assert.Len(t, deps, 1, "skipped stop excluded")

	deps, err = f.NextDepartures(ctx, "place-dwnxg", "", 5, nil)
	require.NoError(t, err)
	assert.Len(t, deps, 2)
}

func TestFeed_ArrivalAtStop(t *testing.T) {
	f := newTestFeed(t)
	ctx := context.Background()

	at, ok, err := f.ArrivalAtStop(ctx, "place-dwnxg", "R1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, base.Add(7*time.Minute).Unix(), at.Unix())

	_, ok, err = f.ArrivalAtStop(ctx, "place-dwnxg", "R3")
	require.NoError(t, err)
	assert.False(t, ok, "skipped stop has no arrival")

	_, ok, err = f.ArrivalAtStop(ctx, "place-pktrm", "unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFeed_UpdateKeepsSnapshotOnError(t *testing.T) {
	f := newTestFeed(t)

	err := f.Update([]byte("not a protobuf"))
	require.Error(t, err)
	assert.Equal(t, 4, f.TripCount())
	assert.Equal(t, base.Unix(), f.Timestamp())
	assert.Equal(t, "Red", f.RouteForTrip("R1"))
	assert.Equal(t, time.Duration(0), f.Age())
}

func TestFeed_Refresh(t *testing.T) {
	data := sampleFeed(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	reg := metrics.NewRegistry()
	f := NewFeed(FeedOptions{
		URL:     srv.URL,
		Client:  NewClient(time.Second, "secret"),
		Clock:   func() time.Time { return base },
		Metrics: reg,
	})
	require.NoError(t, f.Refresh(context.Background()))
	assert.Equal(t, 4, f.TripCount())
	assert.Equal(t, "1801", f.VehicleForTrip("R1"))
}

func TestFeed_RefreshErrors(t *testing.T) {
	assert.ErrorIs(t, NewFeed(FeedOptions{}).Refresh(context.Background()), ErrNoFeedURL)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewFeed(FeedOptions{URL: srv.URL}).Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 503")
}

func TestClient_FetchEmptyURL(t *testing.T) {
	data, err := NewClient(time.Second, "").Fetch(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, data)
}
