package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/transit-router/gtfsrt"
	"github.com/theoremus-urban-solutions/transit-router/internal"
)

func writeFeedFile(t *testing.T, ts time.Time) string {
	t.Helper()
	fm := &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Timestamp:           proto.Uint64(uint64(ts.Unix())),
		},
		Entity: []*gtfsrtpb.FeedEntity{{
			Id: proto.String("1"),
			TripUpdate: &gtfsrtpb.TripUpdate{
				Trip: &gtfsrtpb.TripDescriptor{TripId: proto.String("R1"), RouteId: proto.String("Red")},
				StopTimeUpdate: []*gtfsrtpb.TripUpdate_StopTimeUpdate{{
					StopId:    proto.String("place-harsq"),
					Departure: &gtfsrtpb.TripUpdate_StopTimeEvent{Time: proto.Int64(ts.Add(time.Minute).Unix())},
				}},
			},
		}},
	}
	data, err := proto.Marshal(fm)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "TripUpdates.pb")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRefresher_FileSource(t *testing.T) {
	ts := time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)
	path := writeFeedFile(t, ts)
	feed := gtfsrt.NewFeed(gtfsrt.FeedOptions{})
	r := &refresher{feed: feed, source: "file://" + path, logger: internal.Discard()}

	require.NoError(t, r.refresh(context.Background()))
	assert.Equal(t, ts.Unix(), feed.Timestamp())
	assert.Equal(t, 1, feed.TripCount())
	assert.Equal(t, "Red", feed.RouteForTrip("R1"))
}

func TestRefresher_KeepsFeedOnFailure(t *testing.T) {
	ts := time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)
	feed := gtfsrt.NewFeed(gtfsrt.FeedOptions{})
	good := &refresher{feed: feed, source: "file://" + writeFeedFile(t, ts), logger: internal.Discard()}
	good.tick(context.Background())

	bad := &refresher{feed: feed, source: "file:///does/not/exist.pb", logger: internal.Discard()}
	assert.Error(t, bad.refresh(context.Background()))
	bad.tick(context.Background())
	assert.Equal(t, ts.Unix(), feed.Timestamp())
}

func TestRefresher_RunStopsOnCancel(t *testing.T) {
	feed := gtfsrt.NewFeed(gtfsrt.FeedOptions{})
	r := &refresher{
		feed:     feed,
		source:   "file://" + writeFeedFile(t, time.Now()),
		interval: 10 * time.Millisecond,
		logger:   internal.Discard(),
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not stop")
	}
	assert.Equal(t, 1, feed.TripCount())
}
