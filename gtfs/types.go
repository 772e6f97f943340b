package gtfs

// Stop is a row of stops.txt.
type Stop struct {
	ID            string
	Name          string
	Latitude      float64
	Longitude     float64
	ParentStation string
}

// Route is a row of routes.txt.
type Route struct {
	ID        string
	ShortName string
	LongName  string
	Type      int
}

// Trip is a row of trips.txt.
type Trip struct {
	ID          string
	RouteID     string
	ServiceID   string
	DirectionID int
	Headsign    string
}

// StopTime is a row of stop_times.txt with times in seconds after the start
// of the service day. Values past 86400 belong to trips running after
// midnight.
type StopTime struct {
	StopID    string
	Sequence  int
	Arrival   int
	Departure int
}

// ScheduledDeparture is a departure from a station, resolved to its trip.
type ScheduledDeparture struct {
	TripID      string
	RouteID     string
	DirectionID int
	StopID      string
	Arrival     int
	Departure   int
}
