// Package realtime defines the departure source consulted by the router and
// the decorators placed in front of it.
//
// A Source answers two questions: which vehicles leave a station next on a
// route, and when a given trip reaches a given stop. Live GTFS-Realtime
// predictions (package gtfsrt) and the static timetable (package gtfs) both
// implement it; Merged combines them and Cached adds the short TTL cache,
// per-call timeout and single retry used in production.
package realtime
