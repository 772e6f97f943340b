package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/transit-router/graph"
	"github.com/theoremus-urban-solutions/transit-router/routing"
	"github.com/theoremus-urban-solutions/transit-router/utils"
)

// GET /api/health
func (s *Server) handleHealth(c *gin.Context) {
	g := s.planner.Graph()
	resp := gin.H{
		"status":           "ok",
		"stations":         g.StationCount(),
		"edges":            g.EdgeCount(),
		"realtime_enabled": s.opts.RealtimeEnabled,
		"timestamp":        utils.Iso8601(s.clock(), s.opts.Location),
	}
	if s.feed != nil {
		resp["latest_gtfsrt_epoch"] = s.feed.Timestamp()
		resp["gtfsrt_trips"] = s.feed.TripCount()
		resp["gtfsrt_age_seconds"] = int64(s.feed.Age().Seconds())
	}
	c.JSON(http.StatusOK, resp)
}

// GET /api/stations
func (s *Server) handleStations(c *gin.Context) {
	stations := s.planner.Graph().Stations()
	c.JSON(http.StatusOK, gin.H{"stations": stations, "count": len(stations)})
}

// GET /api/stations/search?query=&limit=
func (s *Server) handleStationSearch(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	limit, ok := intQuery(c, "limit", 10)
	if !ok {
		return
	}
	stations := s.planner.Graph().Search(query, limit)
	if stations == nil {
		stations = []graph.Station{}
	}
	c.JSON(http.StatusOK, gin.H{"stations": stations, "count": len(stations)})
}

// GET /api/stations/nearest?lat=&lng=&limit=
func (s *Server) handleNearest(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng must be valid coordinates"})
		return
	}
	limit, ok := intQuery(c, "limit", 5)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"stations": s.planner.Graph().Nearest(lat, lng, limit)})
}

// GET /api/stations/:id
func (s *Server) handleStation(c *gin.Context) {
	station, err := s.planner.Graph().Station(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Station not found"})
		return
	}
	c.JSON(http.StatusOK, station)
}

// POST /api/walking-time
func (s *Server) handleWalkingTime(c *gin.Context) {
	var req walkingTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	speed := defaultWalkingSpeedKmh
	if req.WalkingSpeedKmh != nil {
		speed = *req.WalkingSpeedKmh
	}
	est, err := s.planner.WalkingTime(req.From, req.To, speed)
	if err != nil {
		s.routingError(c, err)
		return
	}
	c.JSON(http.StatusOK, walkingTimeResponse{
		WalkEstimate:    est,
		WalkingSpeedKmh: speed,
		DurationText:    utils.DurationText(est.DurationSeconds),
		DistanceText:    utils.PresentableDistance(est.DistanceMeters),
	})
}

// POST /api/route
func (s *Server) handleRoute(c *gin.Context) {
	var body routeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	req := body.toRouting(s.opts.RealtimeEnabled)

	ctx, cancel := s.requestContext(c)
	defer cancel()

	route, err := s.planner.Route(ctx, req)
	if err != nil {
		s.routingError(c, err)
		return
	}
	resp := gin.H{"route": newRouteView(route)}

	if body.Alternatives != nil && *body.Alternatives > 0 {
		alts, err := s.planner.Alternatives(ctx, route, req, *body.Alternatives)
		if err != nil {
			// The primary route is still useful on its own.
			_ = c.Error(err)
			s.entry(c).WithField("error", err).Warn("Alternatives failed")
		}
		resp["alternatives"] = newRouteViews(alts)
	}
	c.JSON(http.StatusOK, resp)
}

// POST /api/alternatives
func (s *Server) handleAlternatives(c *gin.Context) {
	var body routeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	req := body.toRouting(s.opts.RealtimeEnabled)
	count := s.opts.DefaultAlternatives
	if body.Alternatives != nil {
		count = *body.Alternatives
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	primary, err := s.planner.Route(ctx, req)
	if err != nil {
		s.routingError(c, err)
		return
	}
	alts, err := s.planner.Alternatives(ctx, primary, req, count)
	if err != nil {
		s.routingError(c, err)
		return
	}
	mode := "later_departures"
	if primary.HasRiskyTransfer() {
		mode = "avoid_risky_transfers"
	}
	c.JSON(http.StatusOK, gin.H{
		"primary":      newRouteView(primary),
		"alternatives": newRouteViews(alts),
		"mode":         mode,
	})
}

// GET /api/departures?station=&route=&limit=&direction=
func (s *Server) handleDepartures(c *gin.Context) {
	station, route := c.Query("station"), c.Query("route")
	if station == "" || route == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "station and route are required"})
		return
	}
	if s.source == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No departure source configured"})
		return
	}
	if !s.planner.Graph().HasStation(station) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Station not found"})
		return
	}
	limit, ok := intQuery(c, "limit", s.opts.DeparturesLimit)
	if !ok {
		return
	}
	var direction *int
	if raw := c.Query("direction"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || (d != 0 && d != 1) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be 0 or 1"})
			return
		}
		direction = &d
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	deps, err := s.source.NextDepartures(ctx, station, route, limit, direction)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Departure source unavailable"})
		return
	}
	now := s.clock()
	out := make([]departureView, 0, len(deps))
	for _, d := range deps {
		minutes := utils.MinutesUntil(now, d.DepartureTime)
		out = append(out, departureView{
			DepartureTime: utils.Iso8601(d.DepartureTime, s.opts.Location),
			ArrivalTime:   utils.Iso8601(d.ArrivalTimeAtOrigin, s.opts.Location),
			MinutesUntil:  minutes,
			CountdownText: utils.CountdownText(minutes),
			Status:        d.Status,
			TripID:        d.TripID,
			VehicleID:     d.VehicleID,
		})
	}
	c.JSON(http.StatusOK, gin.H{"station": station, "route": route, "departures": out})
}

func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if s.opts.RequestTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), s.opts.RequestTimeout)
}

func (s *Server) entry(c *gin.Context) *logrus.Entry {
	return s.logger.WithField("request_id", c.GetString(requestIDKey))
}

// routingError maps planner errors to status codes. Unknown stations are a
// client error, an unreachable destination is a 404.
func (s *Server) routingError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, routing.ErrUnknownStation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown station", "details": err.Error()})
	case errors.Is(err, routing.ErrNoPathFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No route found", "details": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Request timed out"})
	default:
		s.entry(c).WithField("error", err).Error("Routing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to plan route"})
	}
}

func intQuery(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 || v > 500 {
		c.JSON(http.StatusBadRequest, gin.H{"error": key + " must be a positive integer"})
		return 0, false
	}
	return v, true
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
}
