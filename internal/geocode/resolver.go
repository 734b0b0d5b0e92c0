package geocode

import (
	"context"
	"time"

	"go.uber.org/zap"

	"agritrace.io/provenance/internal/config"
	"agritrace.io/provenance/internal/domain"
	"agritrace.io/provenance/internal/pkg/logger"
	"agritrace.io/provenance/internal/pkg/worker"
)

// Resolver resolves a waypoint batch. The strategy is swappable so the
// sequential default can be upgraded to bounded concurrency without
// changing the ordering contract: the result always has exactly one entry
// per input waypoint, in input order, with unresolved entries keeping a
// nil Coordinates.
type Resolver interface {
	ResolveAll(ctx context.Context, waypoints []domain.JourneyWaypoint) []domain.JourneyWaypoint
}

// NewResolver picks the configured strategy.
func NewResolver(cfg config.GeocoderConfig, geo Geocoder, pools *worker.Pools) Resolver {
	if cfg.Strategy == "pooled" && pools != nil {
		return &PooledStrategy{geo: geo, pool: pools.Geocode}
	}
	return &SequentialStrategy{geo: geo, delay: cfg.Delay}
}

// SequentialStrategy resolves one address at a time. The external service
// imposes informal rate limits, so this is the default.
type SequentialStrategy struct {
	geo   Geocoder
	delay time.Duration
}

// ResolveAll implements Resolver.
func (s *SequentialStrategy) ResolveAll(ctx context.Context, waypoints []domain.JourneyWaypoint) []domain.JourneyWaypoint {
	out := cloneBatch(waypoints)
	for i := range out {
		if ctx.Err() != nil {
			// Abandoned batch: remaining entries stay unresolved.
			return out
		}
		if out[i].Coordinates != nil {
			continue // already resolved client-side
		}
		coords, err := s.geo.Geocode(ctx, out[i].Address)
		if err != nil {
			logger.Warn("Waypoint not mapped",
				zap.String("name", out[i].Name),
				zap.String("address", out[i].Address),
				zap.Error(err),
			)
		} else {
			out[i].Coordinates = coords
		}
		if s.delay > 0 && i < len(out)-1 {
			select {
			case <-ctx.Done():
				return out
			case <-time.After(s.delay):
			}
		}
	}
	return out
}

// PooledStrategy resolves addresses concurrently through the bounded
// geocode worker pool. Results land at their input index, so the list is
// never reordered.
type PooledStrategy struct {
	geo  Geocoder
	pool *worker.Pool
}

// ResolveAll implements Resolver.
func (p *PooledStrategy) ResolveAll(ctx context.Context, waypoints []domain.JourneyWaypoint) []domain.JourneyWaypoint {
	out := cloneBatch(waypoints)

	type resolved struct {
		index  int
		coords *domain.Coordinates
	}
	// Buffered to len(out) so a late worker can always send without
	// blocking, even after the caller has given up.
	results := make(chan resolved, len(out))

	submitted := 0
	for i := range out {
		if out[i].Coordinates != nil {
			continue
		}
		i := i
		address, name := out[i].Address, out[i].Name
		err := p.pool.Submit(ctx, func(ctx context.Context) {
			coords, err := p.geo.Geocode(ctx, address)
			if err != nil {
				logger.Warn("Waypoint not mapped",
					zap.String("name", name),
					zap.String("address", address),
					zap.Error(err),
				)
			}
			results <- resolved{index: i, coords: coords}
		})
		if err == nil {
			submitted++
		}
		// Pool refusal (cancelled context or shutdown) leaves the entry
		// unresolved.
	}

	for n := 0; n < submitted; n++ {
		select {
		case r := <-results:
			if r.coords != nil {
				out[r.index].Coordinates = r.coords
			}
		case <-ctx.Done():
			// Queued tasks are skipped on cancellation and never send;
			// stop waiting and return what resolved so far.
			return out
		}
	}
	return out
}

func cloneBatch(waypoints []domain.JourneyWaypoint) []domain.JourneyWaypoint {
	out := make([]domain.JourneyWaypoint, len(waypoints))
	copy(out, waypoints)
	return out
}
