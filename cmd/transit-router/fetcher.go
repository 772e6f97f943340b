package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/transit-router/gtfsrt"
)

// refresher keeps a GTFS-RT feed current. The source is either an http(s)
// URL, fetched through the feed's own client, or a file:// path that is
// re-read on every tick.
type refresher struct {
	feed     *gtfsrt.Feed
	source   string
	interval time.Duration
	logger   logrus.FieldLogger
}

func isFileSource(source string) bool {
	return strings.HasPrefix(source, "file://")
}

// refresh loads the feed once.
func (r *refresher) refresh(ctx context.Context) error {
	if !isFileSource(r.source) {
		return r.feed.Refresh(ctx)
	}
	path := strings.TrimPrefix(r.source, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return r.feed.Update(data)
}

// run refreshes immediately and then every interval until ctx is done.
// Failures keep the previous snapshot and are only logged.
func (r *refresher) run(ctx context.Context) {
	r.tick(ctx)
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *refresher) tick(ctx context.Context) {
	start := time.Now()
	if err := r.refresh(ctx); err != nil {
		r.logger.WithField("error", err).Warn("GTFS-RT refresh failed, keeping previous feed")
		return
	}
	r.logger.WithFields(logrus.Fields{
		"trips":      r.feed.TripCount(),
		"feed_epoch": r.feed.Timestamp(),
		"latency_ms": time.Since(start).Milliseconds(),
	}).Debug("GTFS-RT feed refreshed")
}
