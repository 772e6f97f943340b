package server

import (
	"time"

	"github.com/theoremus-urban-solutions/transit-router/adjust"
	"github.com/theoremus-urban-solutions/transit-router/routing"
	"github.com/theoremus-urban-solutions/transit-router/utils"
)

const defaultWalkingSpeedKmh = 5.0

type weatherRequest struct {
	PrecipitationMM *float64 `json:"precipitation_mm" binding:"omitempty,gte=0"`
	TemperatureC    *float64 `json:"temperature_c"`
	Description     string   `json:"description"`
}

type routeRequest struct {
	Origin               string          `json:"origin" binding:"required"`
	Destination          string          `json:"destination" binding:"required"`
	DepartureTime        *time.Time      `json:"departure_time"`
	PreferFewerTransfers bool            `json:"prefer_fewer_transfers"`
	MaxTransfers         int             `json:"max_transfers" binding:"gte=0,lte=5"`
	WalkingSpeedKmh      *float64        `json:"walking_speed_kmh" binding:"omitempty,gt=0,lte=15"`
	UseRealtime          *bool           `json:"use_realtime"`
	AdjustmentFactor     float64         `json:"adjustment_factor" binding:"omitempty,gte=0.5,lte=3"`
	Weather              *weatherRequest `json:"weather"`
	// Alternatives asks /api/route to also return up to this many
	// alternatives; /api/alternatives uses it as the count.
	Alternatives         *int            `json:"alternatives" binding:"omitempty,gte=0,lte=5"`
}

func (r routeRequest) toRouting(realtimeEnabled bool) routing.Request {
	req := routing.Request{
		Origin:               r.Origin,
		Destination:          r.Destination,
		PreferFewerTransfers: r.PreferFewerTransfers,
		MaxTransfers:         r.MaxTransfers,
		WalkingSpeedKmh:      defaultWalkingSpeedKmh,
		UseRealtime:          realtimeEnabled,
		AdjustmentFactor:     r.AdjustmentFactor,
	}
	if r.DepartureTime != nil {
		req.DepartureTime = *r.DepartureTime
	}
	if r.WalkingSpeedKmh != nil {
		req.WalkingSpeedKmh = *r.WalkingSpeedKmh
	}
	if r.UseRealtime != nil {
		req.UseRealtime = realtimeEnabled && *r.UseRealtime
	}
	if r.Weather != nil {
		req.Weather = &adjust.Observation{
			PrecipitationMM: r.Weather.PrecipitationMM,
			TemperatureC:    r.Weather.TemperatureC,
			Description:     r.Weather.Description,
		}
	}
	return req
}

type walkingTimeRequest struct {
	From            string   `json:"station_id_1" binding:"required"`
	To              string   `json:"station_id_2" binding:"required"`
	WalkingSpeedKmh *float64 `json:"walking_speed_kmh" binding:"omitempty,gt=0,lte=15"`
}

type walkingTimeResponse struct {
	routing.WalkEstimate
	WalkingSpeedKmh float64 `json:"walking_speed_kmh"`
	DurationText    string  `json:"duration_text"`
	DistanceText    string  `json:"distance_text"`
}

// routeView adds display fields to a route.
type routeView struct {
	*routing.Route
	Lines             []string `json:"lines"`
	HasRiskyTransfer  bool     `json:"has_risky_transfer"`
	TotalTimeText     string   `json:"total_time_text"`
	TotalDistanceText string   `json:"total_distance_text"`
}

func newRouteView(r *routing.Route) routeView {
	lines := r.Lines()
	if lines == nil {
		lines = []string{}
	}
	return routeView{
		Route:             r,
		Lines:             lines,
		HasRiskyTransfer:  r.HasRiskyTransfer(),
		TotalTimeText:     utils.DurationText(r.TotalTimeSeconds),
		TotalDistanceText: utils.PresentableDistance(r.TotalDistanceMeters),
	}
}

func newRouteViews(routes []*routing.Route) []routeView {
	out := make([]routeView, 0, len(routes))
	for _, r := range routes {
		out = append(out, newRouteView(r))
	}
	return out
}

type departureView struct {
	DepartureTime string  `json:"departure_time"`
	ArrivalTime   string  `json:"arrival_time"`
	MinutesUntil  float64 `json:"minutes_until_departure"`
	CountdownText string  `json:"countdown_text"`
	Status        string  `json:"status"`
	TripID        string  `json:"trip_id,omitempty"`
	VehicleID     string  `json:"vehicle_id,omitempty"`
}
