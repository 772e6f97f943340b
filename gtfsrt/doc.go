// Package gtfsrt fetches GTFS-Realtime TripUpdates feeds and serves their
// predictions as a departure source.
//
// Feed decodes a FeedMessage, indexes predictions by trip and by stop, and
// swaps the index atomically so readers never see a half-built snapshot.
// Platform stop ids can be aliased to parent stations so predictions line up
// with graph station ids.
package gtfsrt
