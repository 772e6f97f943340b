package config

import (
	"github.com/theoremus-urban-solutions/transit-router/adjust"
	"github.com/theoremus-urban-solutions/transit-router/transfer"
)

// Default returns the configuration for the MBTA network. Load applies
// config.yml and the environment on top of it.
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Port:              16181,
			Environment:       "development",
			LogLevel:          "info",
			LogFormat:         "text",
			RequestTimeoutMS:  15000,
			ShutdownTimeoutMS: 10000,
			CORSOrigins:       []string{"*"},
		},
		Graph: GraphConfig{
			Location: "data/mbta_transit_graph.json",
		},
		GTFS: GTFSConfig{
			Timezone: "America/New_York",
		},
		GTFSRT: GTFSRTConfig{
			TripUpdatesURL: "https://cdn.mbta.com/realtime/TripUpdates.pb",
			ReadIntervalMS: 30000,
			TimeoutMS:      10000,
		},
		Realtime: RealtimeConfig{
			Enabled:         true,
			CacheTTLSeconds: 45,
			CacheSize:       4096,
			CallTimeoutMS:   3000,
			Retries:         1,
			DeparturesLimit: 10,
		},
		Routing: RoutingConfig{
			MaxTransfers:             3,
			MaxPops:                  2000,
			LabelCap:                 16,
			TransferBufferSeconds:    120,
			LineChangePenaltySeconds: 180,
			HeuristicSpeedMPS:        20,
			DirectWalkSeconds:        600,
			WalkCapSeconds:           300,
			RidingWalkCapSeconds:     240,
			RidingWalkCapMeters:      300,
			StrategicWalkCapSeconds:  480,
			DetourMeters:             200,
			CategoryDurations: map[string]float64{
				"heavy_rail":    120,
				"light_rail":    150,
				"commuter_rail": 180,
			},
			DefaultDurationSeconds: 120,
			RequestTimeoutMS:       10000,
			LineFamilies: map[string]string{
				"Green Line B": "Green Line",
				"Green Line C": "Green Line",
				"Green Line D": "Green Line",
				"Green Line E": "Green Line",
			},
		},
		Transfers: TransfersConfig{
			DefaultBufferSeconds: 60,
			StationBuffers:       transfer.DefaultPolicy().StationBuffers,
			LinePairs: []LinePairConfig{
				{From: "Red Line", To: "Green Line", Seconds: 30},
				{From: "Orange Line", To: "Green Line", Seconds: 20},
				{From: "Red Line", To: "Commuter Rail", Seconds: 60},
				{From: "Orange Line", To: "Commuter Rail", Seconds: 60},
				{From: "Blue Line", To: "Green Line", Seconds: 20},
				{From: "Blue Line", To: "Orange Line", Seconds: 20},
			},
			FixedFraction:    0.4,
			BaselineSpeedKmh: 5.0,
			MinBufferSeconds: 30,
		},
		Alternatives: AlternativesConfig{
			OffsetsMinutes: []int{5, 10, 15},
			Concurrency:    2,
			DefaultCount:   3,
		},
		Adjustments: AdjustmentsConfig{
			Timezone: "America/New_York",
			Hubs:     adjust.DefaultHubs(),
		},
	}
}
