package routing

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Alternatives re-plans req from later starts and returns up to count routes
// arriving strictly after primary. When primary has a risky or unlikely
// transfer, candidates with such transfers are dropped too.
func (p *Planner) Alternatives(ctx context.Context, primary *Route, req Request, count int) ([]*Route, error) {
	if primary == nil || count <= 0 || len(p.opts.AlternativeOffsets) == 0 {
		return []*Route{}, nil
	}
	base := primary.DepartureTime
	if base.IsZero() {
		base = primary.RequestTime
	}
	avoidRisk := primary.HasRiskyTransfer()

	candidates := make([]*Route, len(p.opts.AlternativeOffsets))
	g, gctx := errgroup.WithContext(ctx)
	if p.opts.AlternativeConcurrency > 0 {
		g.SetLimit(p.opts.AlternativeConcurrency)
	}
	for i, offset := range p.opts.AlternativeOffsets {
		r := req
		r.DepartureTime = base.Add(offset)
		g.Go(func() error {
			route, err := p.Route(gctx, r)
			if err != nil {
				p.logger.WithFields(logrus.Fields{
					"origin":      r.Origin,
					"destination": r.Destination,
					"offset":      offset.String(),
					"error":       err,
				}).Debug("Alternative search found nothing")
				return nil
			}
			candidates[i] = route
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	out := make([]*Route, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || !c.ArrivalTime.After(primary.ArrivalTime) {
			continue
		}
		if avoidRisk && c.HasRiskyTransfer() {
			continue
		}
		// Nearby offsets often catch the same trains.
		sig := signature(c)
		if seen[sig] {
			continue
		}
		seen[sig] = true
		c.RecomputeTotal(primary.RequestTime)
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ArrivalTime.Before(out[j].ArrivalTime) })
	if len(out) > count {
		out = out[:count]
	}
	if p.metrics != nil {
		p.metrics.RecordAlternatives(len(out))
	}
	return out, nil
}

func signature(r *Route) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(r.ArrivalTime.Unix(), 10))
	for _, s := range r.Segments {
		b.WriteByte('|')
		b.WriteString(s.From)
		b.WriteByte('>')
		b.WriteString(s.To)
		b.WriteByte('@')
		b.WriteString(strconv.FormatInt(s.DepartureTime.Unix(), 10))
	}
	return b.String()
}
