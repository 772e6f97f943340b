package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/transit-router/config"
	"github.com/theoremus-urban-solutions/transit-router/graph"
	"github.com/theoremus-urban-solutions/transit-router/gtfs"
	"github.com/theoremus-urban-solutions/transit-router/gtfsrt"
	"github.com/theoremus-urban-solutions/transit-router/internal"
	"github.com/theoremus-urban-solutions/transit-router/metrics"
	"github.com/theoremus-urban-solutions/transit-router/realtime"
	"github.com/theoremus-urban-solutions/transit-router/routing"
	"github.com/theoremus-urban-solutions/transit-router/server"
)

func main() {
	mode := flag.String("mode", "serve", "serve|route")
	configPath := flag.String("config", "", "config file (default: config.yml, ./config/config.yml)")
	from := flag.String("from", "", "origin station id (route mode)")
	to := flag.String("to", "", "destination station id (route mode)")
	at := flag.String("at", "", "departure time, RFC3339 (route mode, default now)")
	speed := flag.Float64("speed", 5.0, "walking speed in km/h (route mode)")
	fewerTransfers := flag.Bool("fewerTransfers", false, "prefer fewer transfers over earlier arrival (route mode)")
	alternatives := flag.Int("alternatives", 0, "number of alternatives to print (route mode)")
	flag.Parse()

	if err := config.LoadAppConfig(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Config
	logger := internal.NewLogger(cfg.Server.LogLevel, cfg.Server.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := build(ctx, cfg, logger)
	if err != nil {
		logger.WithField("error", err).Fatal("Startup failed")
	}

	switch *mode {
	case "serve":
		if app.refresher != nil {
			go app.refresher.run(ctx)
		}
		srv := server.New(server.Options{
			Port:                cfg.Server.Port,
			Environment:         cfg.Server.Environment,
			RequestTimeout:      time.Duration(cfg.Server.RequestTimeoutMS) * time.Millisecond,
			ShutdownTimeout:     time.Duration(cfg.Server.ShutdownTimeoutMS) * time.Millisecond,
			CORSOrigins:         cfg.Server.CORSOrigins,
			DefaultAlternatives: cfg.Alternatives.DefaultCount,
			DeparturesLimit:     cfg.Realtime.DeparturesLimit,
			RealtimeEnabled:     cfg.Realtime.Enabled && app.source != nil,
			Location:            app.location,
		}, server.Dependencies{
			Planner: app.planner,
			Source:  app.source,
			Feed:    app.feedStatus(),
			Metrics: app.metrics,
			Logger:  logger,
		})
		if err := srv.Run(ctx); err != nil {
			logger.WithField("error", err).Fatal("Server stopped")
		}
	case "route":
		if app.refresher != nil {
			app.refresher.tick(ctx)
		}
		if err := routeOnce(ctx, app, *from, *to, *at, *speed, *fewerTransfers, *alternatives); err != nil {
			logger.WithField("error", err).Fatal("Routing failed")
		}
	default:
		logger.WithField("mode", *mode).Fatal("Unknown mode")
	}
}

type application struct {
	planner   *routing.Planner
	source    realtime.Source
	feed      *gtfsrt.Feed
	refresher *refresher
	metrics   *metrics.Registry
	location  *time.Location
}

// feedStatus avoids handing the server a typed nil.
func (a *application) feedStatus() server.FeedStatus {
	if a.feed == nil {
		return nil
	}
	return a.feed
}

func build(ctx context.Context, cfg config.AppConfig, logger *logrus.Logger) (*application, error) {
	reg := metrics.DefaultRegistry()
	loc, err := cfg.ScheduleLocation()
	if err != nil {
		return nil, err
	}

	g, err := loadGraph(ctx, cfg.Graph, logger)
	if err != nil {
		return nil, err
	}
	reg.SetGraphSize(g.StationCount(), g.EdgeCount())

	app := &application{metrics: reg, location: loc}

	var index *gtfs.Index
	if cfg.GTFS.StaticPath != "" {
		index, err = loadIndex(cfg.GTFS, logger)
		if err != nil {
			return nil, err
		}
	}

	var schedule realtime.Source
	if index != nil {
		schedule = gtfs.NewScheduleSource(index, loc, nil)
	}

	var predictions realtime.Source
	if cfg.Realtime.Enabled && cfg.GTFSRT.TripUpdatesURL != "" {
		opts := gtfsrt.FeedOptions{
			Client:  gtfsrt.NewClient(cfg.FeedTimeout(), cfg.GTFSRT.APIKey),
			Metrics: reg,
			Logger:  logger,
		}
		if !isFileSource(cfg.GTFSRT.TripUpdatesURL) {
			opts.URL = cfg.GTFSRT.TripUpdatesURL
		}
		if index != nil {
			opts.Aliases = index.ParentStations()
		}
		app.feed = gtfsrt.NewFeed(opts)
		app.refresher = &refresher{
			feed:     app.feed,
			source:   cfg.GTFSRT.TripUpdatesURL,
			interval: cfg.ReadInterval(),
			logger:   logger,
		}
		predictions = app.feed
	}

	var source realtime.Source
	switch {
	case predictions != nil && schedule != nil:
		source = &realtime.Merged{Predictions: predictions, Schedule: schedule, Logger: logger}
	case predictions != nil:
		source = predictions
	case schedule != nil:
		source = schedule
	}
	if source != nil {
		cacheOpts := cfg.CacheOptions()
		cacheOpts.Metrics = reg
		cacheOpts.Logger = logger
		app.source = realtime.NewCached(source, cacheOpts)
	}

	congestion, err := cfg.Congestion()
	if err != nil {
		return nil, err
	}
	app.planner = routing.NewPlanner(g, cfg.PlannerOptions(), routing.Dependencies{
		Source:     app.source,
		Congestion: congestion,
		Logger:     logger,
		Metrics:    reg,
	})

	logger.WithFields(logrus.Fields{
		"stations": g.StationCount(),
		"edges":    g.EdgeCount(),
		"realtime": app.source != nil,
		"gtfsrt":   app.feed != nil,
	}).Info("Transit router initialized")
	return app, nil
}

// loadGraph prefers the gob cache and writes it after a fresh load.
func loadGraph(ctx context.Context, cfg config.GraphConfig, logger *logrus.Logger) (*graph.Graph, error) {
	if cfg.CachePath != "" {
		if g, err := graph.LoadCache(cfg.CachePath); err == nil {
			logger.WithField("path", cfg.CachePath).Info("Loaded graph from cache")
			return g, nil
		}
	}

	var s3Client graph.ObjectGetter
	if strings.HasPrefix(cfg.Location, "s3://") && cfg.S3Region != "" {
		client, err := graph.NewS3Client(ctx, cfg.S3Region)
		if err != nil {
			return nil, err
		}
		s3Client = client
	}
	g, err := graph.NewLoader(nil, s3Client).Load(ctx, cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph from %s: %w", cfg.Location, err)
	}
	logger.WithField("location", cfg.Location).Info("Loaded graph snapshot")

	if cfg.CachePath != "" {
		if err := graph.SaveCache(g, cfg.CachePath); err != nil {
			logger.WithField("error", err).Warn("Failed to write graph cache")
		}
	}
	return g, nil
}

func loadIndex(cfg config.GTFSConfig, logger *logrus.Logger) (*gtfs.Index, error) {
	if cfg.CachePath != "" {
		if index, err := gtfs.LoadIndexCache(cfg.CachePath); err == nil {
			logger.WithField("path", cfg.CachePath).Info("Loaded GTFS index from cache")
			return index, nil
		}
	}
	index, err := gtfs.NewIndexFromFile(cfg.StaticPath)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"agency": index.AgencyName,
		"stops":  len(index.Stops),
		"trips":  len(index.Trips),
	}).Info("Loaded GTFS schedule")
	if cfg.CachePath != "" {
		if err := gtfs.SaveIndexCache(index, cfg.CachePath); err != nil {
			logger.WithField("error", err).Warn("Failed to write GTFS cache")
		}
	}
	return index, nil
}

func routeOnce(ctx context.Context, app *application, from, to, at string, speed float64, fewerTransfers bool, alternatives int) error {
	if from == "" || to == "" {
		return fmt.Errorf("-from and -to are required in route mode")
	}
	req := routing.Request{
		Origin:               from,
		Destination:          to,
		PreferFewerTransfers: fewerTransfers,
		WalkingSpeedKmh:      speed,
		UseRealtime:          app.source != nil,
	}
	if at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return fmt.Errorf("invalid -at: %w", err)
		}
		req.DepartureTime = t
	}

	route, err := app.planner.Route(ctx, req)
	if err != nil {
		return err
	}
	out := map[string]any{"route": route}
	if alternatives > 0 {
		alts, err := app.planner.Alternatives(ctx, route, req, alternatives)
		if err != nil {
			return err
		}
		out["alternatives"] = alts
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
