package gtfs

import (
	"sort"
)

const defaultTimezone = "America/New_York"

// Index stores a static GTFS feed in memory for fast lookups. Fields are
// exported so the index can be gob-encoded.
type Index struct {
	AgencyID       string
	AgencyName     string
	AgencyTimezone string

	Stops     map[string]Stop
	Routes    map[string]Route
	Trips     map[string]Trip
	StopTimes map[string][]StopTime // trip_id -> stop times ordered by sequence

	// StationDepartures is keyed by parent station (or the stop itself when it
	// has no parent) and ordered by departure seconds.
	StationDepartures map[string][]ScheduledDeparture
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		Stops:             map[string]Stop{},
		Routes:            map[string]Route{},
		Trips:             map[string]Trip{},
		StopTimes:         map[string][]StopTime{},
		StationDepartures: map[string][]ScheduledDeparture{},
	}
}

// Timezone returns the agency time zone, America/New_York when absent.
func (g *Index) Timezone() string {
	if g.AgencyTimezone != "" {
		return g.AgencyTimezone
	}
	return defaultTimezone
}

// StationFor returns the parent station of stopID, or stopID itself.
func (g *Index) StationFor(stopID string) string {
	if s, ok := g.Stops[stopID]; ok && s.ParentStation != "" {
		return s.ParentStation
	}
	return stopID
}

// ParentStations returns the child-stop to parent-station mapping.
func (g *Index) ParentStations() map[string]string {
	out := make(map[string]string)
	for id, s := range g.Stops {
		if s.ParentStation != "" {
			out[id] = s.ParentStation
		}
	}
	return out
}

func (g *Index) GetStopName(stopID string) string { return g.Stops[stopID].Name }

func (g *Index) GetRouteType(routeID string) int { return g.Routes[routeID].Type }

func (g *Index) GetRouteShortName(routeID string) string { return g.Routes[routeID].ShortName }

func (g *Index) GetRouteIDForTrip(tripID string) string { return g.Trips[tripID].RouteID }

// Departures returns the scheduled departures of stationID, optionally
// filtered by route (empty means all routes).
func (g *Index) Departures(stationID, routeID string) []ScheduledDeparture {
	all := g.StationDepartures[stationID]
	if routeID == "" {
		return all
	}
	var out []ScheduledDeparture
	for _, d := range all {
		if d.RouteID == routeID {
			out = append(out, d)
		}
	}
	return out
}

// StopTimeAt returns the stop time of tripID at stopID, matching either the
// stop itself or any platform whose parent station is stopID.
func (g *Index) StopTimeAt(tripID, stopID string) (StopTime, bool) {
	for _, st := range g.StopTimes[tripID] {
		if st.StopID == stopID || g.StationFor(st.StopID) == stopID {
			return st, true
		}
	}
	return StopTime{}, false
}

// finalize sorts stop times and builds StationDepartures. It runs once after
// every CSV has been consumed because zip entries arrive in any order.
func (g *Index) finalize() {
	g.StationDepartures = map[string][]ScheduledDeparture{}
	for tripID, times := range g.StopTimes {
		sort.Slice(times, func(i, j int) bool { return times[i].Sequence < times[j].Sequence })
		trip := g.Trips[tripID]
		// The last stop has no onward departure.
		for i := 0; i < len(times)-1; i++ {
			st := times[i]
			station := g.StationFor(st.StopID)
			g.StationDepartures[station] = append(g.StationDepartures[station], ScheduledDeparture{
				TripID:      tripID,
				RouteID:     trip.RouteID,
				DirectionID: trip.DirectionID,
				StopID:      st.StopID,
				Arrival:     st.Arrival,
				Departure:   st.Departure,
			})
		}
	}
	for station, deps := range g.StationDepartures {
		sort.Slice(deps, func(i, j int) bool {
			if deps[i].Departure != deps[j].Departure {
				return deps[i].Departure < deps[j].Departure
			}
			return deps[i].TripID < deps[j].TripID
		})
		g.StationDepartures[station] = deps
	}
}
