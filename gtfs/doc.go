/*
Package gtfs loads a static GTFS timetable and serves it as a departure
source.

The loader reads stops.txt, routes.txt, trips.txt, stop_times.txt and
agency.txt from a GTFS zip and builds an in-memory Index keyed by stop,
station and trip. Platform stops are folded into their parent station so the
ids line up with the stations of the routing graph.

# Basic Usage

	index, err := gtfs.NewIndexFromFile("data/MBTA_GTFS.zip")
	if err != nil {
	    log.Fatal(err)
	}
	loc, _ := time.LoadLocation(index.Timezone())
	source := gtfs.NewScheduleSource(index, loc, time.Now)

	deps, _ := source.NextDepartures(ctx, "place-pktrm", "Red", 5, nil)

# Caching

Parsing stop_times.txt dominates start-up, so an Index can be written with
SaveIndexCache and read back with LoadIndexCache.

# Limitations

Service calendars are not evaluated: every trip is assumed to run every day.
The schedule is a fallback behind live predictions, where an occasional
phantom departure only degrades an estimate.
*/
package gtfs
