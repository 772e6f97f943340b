package graph

import "fmt"

// EdgeKind distinguishes riding a train from walking between stations.
type EdgeKind int

const (
	Train EdgeKind = iota
	Walk
)

func (k EdgeKind) String() string {
	switch k {
	case Train:
		return "train"
	case Walk:
		return "walk"
	}
	return fmt.Sprintf("EdgeKind(%d)", int(k))
}

// RouteCategory is the vehicle class of a train edge. It picks default
// segment durations when an edge has no nominal time.
type RouteCategory int

const (
	UnknownCategory RouteCategory = iota
	LightRail
	HeavyRail
	CommuterRail
	Bus
	Ferry
)

// CategoryFromRouteType maps a GTFS route_type to a RouteCategory.
func CategoryFromRouteType(routeType int) RouteCategory {
	switch routeType {
	case 0:
		return LightRail
	case 1:
		return HeavyRail
	case 2:
		return CommuterRail
	case 3:
		return Bus
	case 4:
		return Ferry
	}
	return UnknownCategory
}

func (c RouteCategory) String() string {
	switch c {
	case LightRail:
		return "light_rail"
	case HeavyRail:
		return "heavy_rail"
	case CommuterRail:
		return "commuter_rail"
	case Bus:
		return "bus"
	case Ferry:
		return "ferry"
	}
	return "unknown"
}

// Station is a node of the network.
type Station struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Lines     []string `json:"lines"`
}

// HasLine reports whether the station serves line exactly.
func (s Station) HasLine(line string) bool {
	for _, l := range s.Lines {
		if l == line {
			return true
		}
	}
	return false
}

// TrainAttrs are the fields only train edges carry.
type TrainAttrs struct {
	RouteID  string
	Line     string
	Category RouteCategory
}

// Edge is a directed connection between two stations. Walk edges have a nil
// Train; DurationSeconds is zero when the snapshot had no nominal time.
type Edge struct {
	Kind            EdgeKind
	From            string
	To              string
	DistanceMeters  float64
	DurationSeconds float64
	Train           *TrainAttrs
}

// IsTrain reports whether the edge is a train segment.
func (e Edge) IsTrain() bool { return e.Kind == Train && e.Train != nil }

// IsWalk reports whether the edge is a walking connector.
func (e Edge) IsWalk() bool { return e.Kind == Walk }

// Line returns the line of a train edge and "" for walks.
func (e Edge) Line() string {
	if e.Train == nil {
		return ""
	}
	return e.Train.Line
}

// RouteID returns the route id of a train edge and "" for walks.
func (e Edge) RouteID() string {
	if e.Train == nil {
		return ""
	}
	return e.Train.RouteID
}

// HasDuration reports whether a nominal duration is present.
func (e Edge) HasDuration() bool { return e.DurationSeconds > 0 }

func (e Edge) key() edgeKey {
	k := edgeKey{kind: e.Kind, from: e.From, to: e.To}
	if e.Train != nil {
		k.route = e.Train.RouteID
		k.line = e.Train.Line
	}
	k.distance = e.DistanceMeters
	k.duration = e.DurationSeconds
	return k
}

type edgeKey struct {
	kind     EdgeKind
	from     string
	to       string
	route    string
	line     string
	distance float64
	duration float64
}

// FormatError reports a snapshot that cannot be turned into a Graph.
type FormatError struct {
	Field  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid graph snapshot: %s: %s", e.Field, e.Reason)
}
