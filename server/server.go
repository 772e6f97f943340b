// Package server exposes the planner over HTTP with gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/transit-router/internal"
	"github.com/theoremus-urban-solutions/transit-router/metrics"
	"github.com/theoremus-urban-solutions/transit-router/realtime"
	"github.com/theoremus-urban-solutions/transit-router/routing"
)

// FeedStatus reports on the live feed for the health endpoint.
type FeedStatus interface {
	Timestamp() int64
	TripCount() int
	Age() time.Duration
}

// Options configures a Server.
type Options struct {
	Port        int
	Environment string
	// RequestTimeout bounds routing handlers.
	RequestTimeout      time.Duration
	ShutdownTimeout     time.Duration
	CORSOrigins         []string
	DefaultAlternatives int
	DeparturesLimit     int
	RealtimeEnabled     bool
	// Location renders response timestamps; nil keeps UTC.
	Location *time.Location
}

// Dependencies are the collaborators of a Server. Planner is required.
type Dependencies struct {
	Planner *routing.Planner
	Source  realtime.Source
	Feed    FeedStatus
	Metrics *metrics.Registry
	Logger  *logrus.Logger
	Clock   realtime.Clock
}

// Server is the HTTP front end.
type Server struct {
	planner *routing.Planner
	source  realtime.Source
	feed    FeedStatus
	metrics *metrics.Registry
	logger  *logrus.Logger
	clock   realtime.Clock
	opts    Options
	engine  *gin.Engine
}

// New builds the gin engine and registers every route.
func New(opts Options, deps Dependencies) *Server {
	if opts.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if opts.DefaultAlternatives <= 0 {
		opts.DefaultAlternatives = 3
	}
	if opts.DeparturesLimit <= 0 {
		opts.DeparturesLimit = 10
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{
		planner: deps.Planner,
		source:  deps.Source,
		feed:    deps.Feed,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		clock:   deps.Clock,
		opts:    opts,
	}
	if s.metrics == nil {
		s.metrics = metrics.NewRegistry()
	}
	if s.logger == nil {
		s.logger = internal.Discard()
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(requestLogger(s.logger))
	router.Use(httpMetrics(s.metrics))

	origins := s.opts.CORSOrigins
	corsConfig := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	router.Use(cors.New(corsConfig))

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.GetPrometheusRegistry(), promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		api.GET("/health", s.handleHealth)

		stations := api.Group("/stations")
		{
			stations.GET("", s.handleStations)
			stations.GET("/search", s.handleStationSearch)
			stations.GET("/nearest", s.handleNearest)
			stations.GET("/:id", s.handleStation)
		}

		api.POST("/walking-time", s.handleWalkingTime)
		api.POST("/route", s.handleRoute)
		api.POST("/alternatives", s.handleAlternatives)
		api.GET("/departures", s.handleDepartures)
	}
	return router
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.opts.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.WithField("addr", addr).Info("Server listening")

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.logger.Info("Server shut down successfully")
	return nil
}
