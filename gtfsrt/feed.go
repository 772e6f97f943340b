package gtfsrt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/transit-router/metrics"
	"github.com/theoremus-urban-solutions/transit-router/realtime"
)

// ErrNoFeedURL is returned by Refresh when the feed has no URL to poll.
var ErrNoFeedURL = errors.New("gtfsrt: no trip updates URL configured")

type stopPrediction struct {
	arrival   int64 // epoch seconds, 0 when absent
	departure int64
	skipped   bool
}

// snapshot is an immutable view of one decoded feed.
type snapshot struct {
	headerTimestamp int64

	tripRoute   map[string]string                    // trip_id -> route_id
	tripDir     map[string]int                       // trip_id -> direction_id
	tripVehicle map[string]string                    // trip_id -> vehicle id
	byTrip      map[string]map[string]stopPrediction // trip_id -> station -> prediction
	stopTrips   map[string][]string                  // station -> trip_ids
}

func emptySnapshot() *snapshot {
	return &snapshot{
		tripRoute:   map[string]string{},
		tripDir:     map[string]int{},
		tripVehicle: map[string]string{},
		byTrip:      map[string]map[string]stopPrediction{},
		stopTrips:   map[string][]string{},
	}
}

// Feed holds the latest TripUpdates snapshot and implements realtime.Source.
type Feed struct {
	url     string
	client  *Client
	clock   realtime.Clock
	aliases map[string]string
	metrics *metrics.Registry
	logger  logrus.FieldLogger

	mu   sync.RWMutex
	snap *snapshot
}

var _ realtime.Source = (*Feed)(nil)

// FeedOptions configures a Feed. Zero values are usable.
type FeedOptions struct {
	URL     string
	Client  *Client
	Clock   realtime.Clock
	Aliases map[string]string // stop_id -> station id, e.g. gtfs.Index.ParentStations()
	Metrics *metrics.Registry
	Logger  logrus.FieldLogger
}

// NewFeed creates an empty feed. Call Update or Refresh to load data.
func NewFeed(opts FeedOptions) *Feed {
	f := &Feed{
		url:     opts.URL,
		client:  opts.Client,
		clock:   opts.Clock,
		aliases: opts.Aliases,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		snap:    emptySnapshot(),
	}
	if f.client == nil {
		f.client = NewClient(10*time.Second, "")
	}
	if f.clock == nil {
		f.clock = time.Now
	}
	if f.logger == nil {
		f.logger = logrus.StandardLogger()
	}
	return f
}

func (f *Feed) station(stopID string) string {
	if parent, ok := f.aliases[stopID]; ok && parent != "" {
		return parent
	}
	return stopID
}

// Refresh fetches the configured URL and replaces the snapshot.
func (f *Feed) Refresh(ctx context.Context) error {
	if f.url == "" {
		return ErrNoFeedURL
	}
	data, err := f.client.Fetch(ctx, f.url)
	if err != nil {
		return err
	}
	return f.Update(data)
}

// Update decodes a FeedMessage and replaces the snapshot. On error the
// previous snapshot is kept.
func (f *Feed) Update(data []byte) error {
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(data, &fm); err != nil {
		return fmt.Errorf("failed to decode GTFS-RT feed: %w", err)
	}

	s := emptySnapshot()
	if fm.Header != nil && fm.Header.Timestamp != nil {
		s.headerTimestamp = int64(*fm.Header.Timestamp)
	}
	for _, e := range fm.Entity {
		if e.Vehicle != nil {
			f.indexVehicle(s, e.Vehicle)
		}
		if e.TripUpdate == nil || e.TripUpdate.Trip == nil || e.TripUpdate.Trip.TripId == nil {
			continue
		}
		f.indexTripUpdate(s, e.TripUpdate)
	}
	for station := range s.stopTrips {
		sort.Strings(s.stopTrips[station])
	}

	f.mu.Lock()
	f.snap = s
	f.mu.Unlock()

	if f.metrics != nil {
		f.metrics.RecordFeed(len(s.byTrip), s.headerTimestamp)
	}
	f.logger.WithFields(logrus.Fields{
		"trips":     len(s.byTrip),
		"timestamp": s.headerTimestamp,
	}).Debug("GTFS-RT feed updated")
	return nil
}

func (f *Feed) indexTripUpdate(s *snapshot, tu *gtfsrtpb.TripUpdate) {
	tripID := tu.Trip.GetTripId()
	if tu.Trip.GetScheduleRelationship() == gtfsrtpb.TripDescriptor_CANCELED {
		return
	}
	if tu.Trip.RouteId != nil {
		s.tripRoute[tripID] = tu.Trip.GetRouteId()
	}
	if tu.Trip.DirectionId != nil {
		s.tripDir[tripID] = int(tu.Trip.GetDirectionId())
	}
	// Vehicle from the trip update wins over one from a vehicle position.
	if tu.Vehicle != nil && tu.Vehicle.Id != nil {
		s.tripVehicle[tripID] = tu.Vehicle.GetId()
	}
	preds, ok := s.byTrip[tripID]
	if !ok {
		preds = map[string]stopPrediction{}
		s.byTrip[tripID] = preds
	}
	for _, stu := range tu.StopTimeUpdate {
		if stu.StopId == nil {
			continue
		}
		station := f.station(stu.GetStopId())
		p := stopPrediction{
			skipped: stu.GetScheduleRelationship() == gtfsrtpb.TripUpdate_StopTimeUpdate_SKIPPED,
		}
		if stu.Arrival != nil && stu.Arrival.Time != nil {
			p.arrival = stu.Arrival.GetTime()
		}
		if stu.Departure != nil && stu.Departure.Time != nil {
			p.departure = stu.Departure.GetTime()
		}
		if _, seen := preds[station]; !seen {
			s.stopTrips[station] = append(s.stopTrips[station], tripID)
		}
		preds[station] = p
	}
}

func (f *Feed) indexVehicle(s *snapshot, vp *gtfsrtpb.VehiclePosition) {
	if vp.Trip == nil || vp.Trip.TripId == nil || vp.Vehicle == nil || vp.Vehicle.Id == nil {
		return
	}
	tripID := vp.Trip.GetTripId()
	if _, exists := s.tripVehicle[tripID]; !exists {
		s.tripVehicle[tripID] = vp.Vehicle.GetId()
	}
}

func (f *Feed) current() *snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snap
}

// NextDepartures returns predicted departures from stationID on routeID at or
// after now. Skipped stops and trips without a departure or arrival estimate
// are left out.
func (f *Feed) NextDepartures(ctx context.Context, stationID, routeID string, limit int, directionID *int) ([]realtime.Departure, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := f.current()
	now := f.clock()
	station := f.station(stationID)

	var out []realtime.Departure
	for _, tripID := range s.stopTrips[station] {
		if routeID != "" && s.tripRoute[tripID] != routeID {
			continue
		}
		if directionID != nil {
			if dir, ok := s.tripDir[tripID]; !ok || dir != *directionID {
				continue
			}
		}
		p := s.byTrip[tripID][station]
		if p.skipped {
			continue
		}
		dep, arr := p.departure, p.arrival
		if dep == 0 {
			dep = arr
		}
		if arr == 0 {
			arr = dep
		}
		// Departure 0 means neither time was present.
		if dep == 0 {
			continue
		}
		depTime := time.Unix(dep, 0)
		if depTime.Before(now) {
			continue
		}
		out = append(out, realtime.Departure{
			DepartureTime:       depTime,
			ArrivalTimeAtOrigin: time.Unix(arr, 0),
			Status:              realtime.StatusPredicted,
			TripID:              tripID,
			VehicleID:           s.tripVehicle[tripID],
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DepartureTime.Before(out[j].DepartureTime) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ArrivalAtStop returns the predicted arrival of tripID at stopID.
func (f *Feed) ArrivalAtStop(ctx context.Context, stopID, tripID string) (time.Time, bool, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, false, err
	}
	p, ok := f.current().byTrip[tripID][f.station(stopID)]
	if !ok || p.skipped {
		return time.Time{}, false, nil
	}
	at := p.arrival
	if at == 0 {
		at = p.departure
	}
	if at == 0 {
		return time.Time{}, false, nil
	}
	return time.Unix(at, 0), true, nil
}

// Accessor methods

func (f *Feed) Timestamp() int64 { return f.current().headerTimestamp }

func (f *Feed) TripCount() int { return len(f.current().byTrip) }

func (f *Feed) RouteForTrip(tripID string) string { return f.current().tripRoute[tripID] }

func (f *Feed) VehicleForTrip(tripID string) string { return f.current().tripVehicle[tripID] }

// Age reports how old the feed header is relative to the clock, or zero when
// no feed has been loaded.
func (f *Feed) Age() time.Duration {
	ts := f.Timestamp()
	if ts == 0 {
		return 0
	}
	return f.clock().Sub(time.Unix(ts, 0))
}
