/*
Package routing plans itineraries over a transit graph.

Planning runs in three stages:

  - ParetoRouter explores (station, arrival, transfers, line) states against
    live departures and keeps a non-dominated (transfers, arrival) frontier
    per station.
  - StaticFinder is a plain Dijkstra over nominal durations, used when the
    Pareto search fails or runs out of time.
  - Enricher replays the chosen edge sequence in time, resolving departures
    and arrivals through a realtime.Source and rating each transfer.

Planner ties the stages together and also generates later alternatives for
routes with tight connections.

# Basic Usage

	planner := routing.NewPlanner(g, routing.DefaultPlannerOptions(), routing.Dependencies{
	    Source: source,
	    Logger: logger,
	})
	route, err := planner.Route(ctx, routing.Request{
	    Origin:          "place-pktrm",
	    Destination:     "place-harsq",
	    WalkingSpeedKmh: 5,
	    UseRealtime:     true,
	})

Searches keep all state local, so a Planner can serve concurrent requests.
*/
package routing
