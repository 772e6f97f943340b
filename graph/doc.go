// Package graph holds the static transit network used by the router.
//
// A Graph is built once from a snapshot produced by the offline graph builder
// and is read-only afterwards, so a single instance can serve concurrent
// searches without locking.
//
// Snapshots are JSON documents with a "graph" object containing "nodes" keyed
// by station id and a flat "edges" list of train and walk segments. They can be
// read from a local path, an http(s) URL or an s3://bucket/key location, and a
// ".sz" suffix marks a snappy-compressed document. A parsed graph can be cached
// with gob to skip JSON decoding on the next start.
package graph
