package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/bluele/gcache"
	"github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/transit-router/internal"
	"github.com/theoremus-urban-solutions/transit-router/metrics"
)

const (
	endpointDepartures = "departures"
	endpointArrival    = "arrival"
)

// CacheOptions tunes Cached.
type CacheOptions struct {
	TTL     time.Duration
	Size    int
	Timeout time.Duration
	Retries int
	Metrics *metrics.Registry
	Logger  logrus.FieldLogger
}

// DefaultCacheOptions returns a 45s TTL, a 3s call timeout and one retry.
func DefaultCacheOptions() CacheOptions {
	return CacheOptions{
		TTL:     45 * time.Second,
		Size:    4096,
		Timeout: 3 * time.Second,
		Retries: 1,
	}
}

// Cached wraps a Source with a TTL cache keyed by endpoint and sorted query
// parameters, a timeout on every upstream call and a bounded retry. Errors
// returned by Cached wrap ErrUpstreamTimeout or ErrUpstreamUnavailable.
type Cached struct {
	source  Source
	cache   gcache.Cache
	timeout time.Duration
	retries int
	metrics *metrics.Registry
	logger  logrus.FieldLogger
}

type arrivalEntry struct {
	at time.Time
	ok bool
}

// NewCached decorates source. Zero option fields take the defaults.
func NewCached(source Source, opts CacheOptions) *Cached {
	def := DefaultCacheOptions()
	if opts.TTL <= 0 {
		opts.TTL = def.TTL
	}
	if opts.Size <= 0 {
		opts.Size = def.Size
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = internal.Discard()
	}
	return &Cached{
		source:  source,
		cache:   gcache.New(opts.Size).LRU().Expiration(opts.TTL).Build(),
		timeout: opts.Timeout,
		retries: opts.Retries,
		metrics: opts.Metrics,
		logger:  logger,
	}
}

// CacheKey builds "endpoint?k1=v1&k2=v2" with keys sorted.
func CacheKey(endpoint string, params map[string]string) string {
	v := url.Values{}
	for k, val := range params {
		v.Set(k, val)
	}
	if len(v) == 0 {
		return endpoint
	}
	// Encode sorts by key.
	return endpoint + "?" + v.Encode()
}

func (c *Cached) NextDepartures(ctx context.Context, stationID, routeID string, limit int, directionID *int) ([]Departure, error) {
	params := map[string]string{
		"stop":  stationID,
		"route": routeID,
		"limit": strconv.Itoa(limit),
	}
	if directionID != nil {
		params["direction_id"] = strconv.Itoa(*directionID)
	}
	key := CacheKey(endpointDepartures, params)

	if v, err := c.cache.Get(key); err == nil {
		if deps, ok := v.([]Departure); ok {
			c.recordLookup(endpointDepartures, true)
			return append([]Departure(nil), deps...), nil
		}
	}
	c.recordLookup(endpointDepartures, false)

	var deps []Departure
	err := c.call(ctx, endpointDepartures, func(callCtx context.Context) error {
		var err error
		deps, err = c.source.NextDepartures(callCtx, stationID, routeID, limit, directionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	_ = c.cache.Set(key, append([]Departure(nil), deps...))
	return deps, nil
}

func (c *Cached) ArrivalAtStop(ctx context.Context, stopID, tripID string) (time.Time, bool, error) {
	key := CacheKey(endpointArrival, map[string]string{"stop": stopID, "trip": tripID})

	if v, err := c.cache.Get(key); err == nil {
		if e, ok := v.(arrivalEntry); ok {
			c.recordLookup(endpointArrival, true)
			return e.at, e.ok, nil
		}
	}
	c.recordLookup(endpointArrival, false)

	var entry arrivalEntry
	err := c.call(ctx, endpointArrival, func(callCtx context.Context) error {
		at, ok, err := c.source.ArrivalAtStop(callCtx, stopID, tripID)
		entry = arrivalEntry{at: at, ok: ok}
		return err
	})
	if err != nil {
		return time.Time{}, false, err
	}
	_ = c.cache.Set(key, entry)
	return entry.at, entry.ok, nil
}

// Purge drops every cached answer.
func (c *Cached) Purge() {
	c.cache.Purge()
}

func (c *Cached) call(ctx context.Context, endpoint string, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err == nil {
				err = ctxErr
			}
			break
		}
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		start := time.Now()
		err = fn(callCtx)
		cancel()
		c.recordCall(endpoint, err, time.Since(start))
		if err == nil {
			return nil
		}
		c.logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"attempt":  attempt + 1,
			"error":    err,
		}).Warn("departure source call failed")
	}
	return classify(err)
}

func classify(err error) error {
	switch {
	case errors.Is(err, ErrUpstreamTimeout), errors.Is(err, ErrUpstreamUnavailable):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	default:
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
}

func (c *Cached) recordLookup(endpoint string, hit bool) {
	if c.metrics != nil {
		c.metrics.RecordCacheLookup(endpoint, hit)
	}
}

func (c *Cached) recordCall(endpoint string, err error, d time.Duration) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		outcome = "timeout"
	default:
		outcome = "error"
	}
	c.metrics.RecordUpstreamCall(endpoint, outcome, d)
}
