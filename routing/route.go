package routing

import (
	"time"

	"github.com/theoremus-urban-solutions/transit-router/transfer"
)

// SegmentType distinguishes rides from walks.
type SegmentType string

const (
	SegmentTrain SegmentType = "train"
	SegmentWalk  SegmentType = "walk"
)

// SegmentStatus tells how a segment's times were obtained. Live departures
// carry the status reported by the source, e.g. "Predicted".
type SegmentStatus string

const (
	StatusWalking   SegmentStatus = "Walking"
	StatusScheduled SegmentStatus = "Scheduled"
	StatusEstimated SegmentStatus = "Estimated"
)

// Segment is one ride or walk of a Route.
type Segment struct {
	Type            SegmentType   `json:"type"`
	From            string        `json:"from_station"`
	To              string        `json:"to_station"`
	FromName        string        `json:"from_name,omitempty"`
	ToName          string        `json:"to_name,omitempty"`
	Line            string        `json:"line,omitempty"`
	RouteID         string        `json:"route_id,omitempty"`
	DurationSeconds float64       `json:"duration_seconds"`
	DistanceMeters  float64       `json:"distance_meters"`
	WaitSeconds     float64       `json:"wait_seconds,omitempty"`
	DepartureTime   time.Time     `json:"departure_time"`
	ArrivalTime     time.Time     `json:"arrival_time"`
	Status          SegmentStatus `json:"status"`
	TripID          string        `json:"trip_id,omitempty"`
	VehicleID       string        `json:"vehicle_id,omitempty"`
	IsTransfer      bool          `json:"is_transfer"`

	// Transfer is set on the first segment after a line change when the
	// connecting departure came from a live source.
	Transfer *transfer.Assessment `json:"transfer,omitempty"`
}

// Rating returns the transfer rating, or "" when the segment has none.
func (s Segment) Rating() transfer.Rating {
	if s.Transfer == nil {
		return ""
	}
	return s.Transfer.Rating
}

// Route is a timed itinerary.
type Route struct {
	Origin              string    `json:"origin"`
	Destination         string    `json:"destination"`
	Segments            []Segment `json:"segments"`
	RequestTime         time.Time `json:"request_time"`
	DepartureTime       time.Time `json:"departure_time"`
	ArrivalTime         time.Time `json:"arrival_time"`
	TotalTimeSeconds    float64   `json:"total_time_seconds"`
	TotalDistanceMeters float64   `json:"total_distance_meters"`
	Transfers           int       `json:"num_transfers"`
	Algorithm           string    `json:"algorithm"`
}

// RecomputeTotal measures the total time from requestTime instead of the time
// the route was searched from.
func (r *Route) RecomputeTotal(requestTime time.Time) {
	r.RequestTime = requestTime
	r.TotalTimeSeconds = r.ArrivalTime.Sub(requestTime).Seconds()
}

// RiskyTransfers returns the segments whose transfer rated risky or unlikely.
func (r *Route) RiskyTransfers() []Segment {
	var out []Segment
	for _, s := range r.Segments {
		if rating := s.Rating(); rating == transfer.Risky || rating == transfer.Unlikely {
			out = append(out, s)
		}
	}
	return out
}

// HasRiskyTransfer reports whether any transfer rated risky or unlikely.
func (r *Route) HasRiskyTransfer() bool { return len(r.RiskyTransfers()) > 0 }

// Lines returns the distinct lines ridden, in order.
func (r *Route) Lines() []string {
	var out []string
	for _, s := range r.Segments {
		if s.Type != SegmentTrain {
			continue
		}
		if len(out) == 0 || out[len(out)-1] != s.Line {
			out = append(out, s.Line)
		}
	}
	return out
}
