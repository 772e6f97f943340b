package config

import (
	"fmt"
	"time"

	"github.com/theoremus-urban-solutions/transit-router/adjust"
	"github.com/theoremus-urban-solutions/transit-router/graph"
	"github.com/theoremus-urban-solutions/transit-router/realtime"
	"github.com/theoremus-urban-solutions/transit-router/routing"
	"github.com/theoremus-urban-solutions/transit-router/transfer"
)

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

var categoryNames = map[string]graph.RouteCategory{
	graph.LightRail.String():    graph.LightRail,
	graph.HeavyRail.String():    graph.HeavyRail,
	graph.CommuterRail.String(): graph.CommuterRail,
	graph.Bus.String():          graph.Bus,
	graph.Ferry.String():        graph.Ferry,
}

// SearchOptions converts the routing section.
func (c AppConfig) SearchOptions() routing.Options {
	r := c.Routing
	opts := routing.DefaultOptions()
	opts.MaxTransfers = r.MaxTransfers
	opts.MaxPops = r.MaxPops
	opts.LabelCap = r.LabelCap
	opts.TransferBuffer = time.Duration(r.TransferBufferSeconds) * time.Second
	opts.LineChangePenalty = r.LineChangePenaltySeconds
	opts.HeuristicSpeed = r.HeuristicSpeedMPS
	opts.DirectWalkSeconds = r.DirectWalkSeconds
	opts.WalkCapSeconds = r.WalkCapSeconds
	opts.RidingWalkCapSeconds = r.RidingWalkCapSeconds
	opts.RidingWalkCapMeters = r.RidingWalkCapMeters
	opts.StrategicWalkCapSeconds = r.StrategicWalkCapSeconds
	opts.DetourMeters = r.DetourMeters
	opts.DefaultDuration = r.DefaultDurationSeconds
	opts.DeparturesLimit = c.Realtime.DeparturesLimit

	opts.CategoryDurations = make(map[graph.RouteCategory]float64, len(r.CategoryDurations))
	for name, secs := range r.CategoryDurations {
		if cat, ok := categoryNames[name]; ok {
			opts.CategoryDurations[cat] = secs
		}
	}
	opts.Families = graph.LineFamilies(r.LineFamilies)
	return opts
}

// TransferPolicy converts the transfers section. Line pairs apply in both
// directions.
func (c AppConfig) TransferPolicy() transfer.Policy {
	t := c.Transfers
	pairs := make(map[transfer.LinePair]int, len(t.LinePairs))
	for _, p := range t.LinePairs {
		pairs[transfer.LinePair{From: p.From, To: p.To}] = p.Seconds
	}
	return transfer.Policy{
		DefaultBuffer:       t.DefaultBufferSeconds,
		StationBuffers:      t.StationBuffers,
		LinePairAdjustments: transfer.Symmetric(pairs),
		FixedFraction:       t.FixedFraction,
		BaselineSpeedKmh:    t.BaselineSpeedKmh,
		MinBuffer:           t.MinBufferSeconds,
	}
}

// PlannerOptions assembles the planner settings.
func (c AppConfig) PlannerOptions() routing.PlannerOptions {
	offsets := make([]time.Duration, 0, len(c.Alternatives.OffsetsMinutes))
	for _, m := range c.Alternatives.OffsetsMinutes {
		offsets = append(offsets, time.Duration(m)*time.Minute)
	}
	return routing.PlannerOptions{
		Search:                 c.SearchOptions(),
		Policy:                 c.TransferPolicy(),
		RequestTimeout:         ms(c.Routing.RequestTimeoutMS),
		AlternativeOffsets:     offsets,
		AlternativeConcurrency: c.Alternatives.Concurrency,
	}
}

// CacheOptions converts the realtime section. Metrics and logger are left
// for the caller.
func (c AppConfig) CacheOptions() realtime.CacheOptions {
	return realtime.CacheOptions{
		TTL:     time.Duration(c.Realtime.CacheTTLSeconds) * time.Second,
		Size:    c.Realtime.CacheSize,
		Timeout: ms(c.Realtime.CallTimeoutMS),
		Retries: c.Realtime.Retries,
	}
}

// Congestion converts the adjustments section.
func (c AppConfig) Congestion() (*adjust.Congestion, error) {
	loc, err := loadLocation(c.Adjustments.Timezone)
	if err != nil {
		return nil, err
	}
	events := make([]adjust.Event, 0, len(c.Adjustments.Events))
	for _, e := range c.Adjustments.Events {
		events = append(events, adjust.Event{Name: e.Name, Stations: e.Stations, Multiplier: e.Multiplier})
	}
	return &adjust.Congestion{Hubs: c.Adjustments.Hubs, Events: events, Location: loc}, nil
}

// ScheduleLocation is the time zone stop_times are interpreted in.
func (c AppConfig) ScheduleLocation() (*time.Location, error) {
	return loadLocation(c.GTFS.Timezone)
}

// ReadInterval is the GTFS-RT refresh period.
func (c AppConfig) ReadInterval() time.Duration { return ms(c.GTFSRT.ReadIntervalMS) }

// FeedTimeout is the GTFS-RT HTTP timeout.
func (c AppConfig) FeedTimeout() time.Duration { return ms(c.GTFSRT.TimeoutMS) }

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}
