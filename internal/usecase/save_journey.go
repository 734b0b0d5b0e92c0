package usecase

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"agritrace.io/provenance/internal/domain"
	"agritrace.io/provenance/internal/geocode"
	"agritrace.io/provenance/internal/notify"
	"agritrace.io/provenance/internal/pkg/logger"
	"agritrace.io/provenance/internal/service"
	"agritrace.io/provenance/internal/store"
)

// SaveJourneyInput is the full waypoint batch for a product.
type SaveJourneyInput struct {
	Waypoints []domain.JourneyWaypoint `json:"waypoints"`
}

// WaypointOutcome reports the geocode result for one submitted waypoint,
// positionally matched to the input.
type WaypointOutcome struct {
	Index       int                 `json:"index"`
	Name        string              `json:"name"`
	Resolved    bool                `json:"resolved"`
	Coordinates *domain.Coordinates `json:"coordinates,omitempty"`
}

// SaveJourneyOutput carries per-waypoint outcomes and the re-fetched state.
type SaveJourneyOutput struct {
	Outcomes []WaypointOutcome       `json:"outcomes"`
	State    *domain.ProvenanceState `json:"state"`
}

// SaveJourneyUseCase geocodes and persists a product's journey as one
// all-or-nothing batch.
type SaveJourneyUseCase struct {
	store    store.Store
	resolver geocode.Resolver
	notifier notify.RefreshPublisher

	// locks serializes saves per product so two submissions cannot
	// interleave their delete-and-insert batches.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSaveJourneyUseCase creates a new SaveJourneyUseCase.
func NewSaveJourneyUseCase(st store.Store, resolver geocode.Resolver, notifier notify.RefreshPublisher) *SaveJourneyUseCase {
	return &SaveJourneyUseCase{
		store:    st,
		resolver: resolver,
		notifier: notifier,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Execute validates the batch, resolves coordinates and replaces the
// product's journey. An empty or invalid batch never reaches the store.
// A waypoint whose address cannot be geocoded is saved without
// coordinates; its outcome marks it unresolved.
func (uc *SaveJourneyUseCase) Execute(ctx context.Context, productID string, input SaveJourneyInput) (*SaveJourneyOutput, error) {
	if err := service.ValidateJourney(input.Waypoints); err != nil {
		return nil, err
	}

	lock := uc.lockFor(productID)
	lock.Lock()
	defer lock.Unlock()

	resolved := uc.resolver.ResolveAll(ctx, input.Waypoints)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := uc.store.SaveJourney(ctx, productID, resolved); err != nil {
		return nil, err
	}

	publishRefresh(ctx, uc.notifier, productID)

	state, err := uc.store.FetchProvenance(ctx, productID)
	if err != nil {
		return nil, err
	}

	outcomes := make([]WaypointOutcome, len(resolved))
	unresolvedCount := 0
	for i, wp := range resolved {
		outcomes[i] = WaypointOutcome{
			Index:       i,
			Name:        wp.Name,
			Resolved:    wp.Coordinates != nil,
			Coordinates: wp.Coordinates,
		}
		if wp.Coordinates == nil {
			unresolvedCount++
		}
	}

	logger.Info("Journey saved",
		zap.String("product_id", productID),
		zap.Int("waypoints", len(resolved)),
		zap.Int("unresolved", unresolvedCount),
	)

	return &SaveJourneyOutput{Outcomes: outcomes, State: state}, nil
}

// lockFor returns the per-product mutex, creating it on first use. Entries
// are never evicted: one mutex per product that saved a journey in this
// process.
func (uc *SaveJourneyUseCase) lockFor(productID string) *sync.Mutex {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	lock, ok := uc.locks[productID]
	if !ok {
		lock = &sync.Mutex{}
		uc.locks[productID] = lock
	}
	return lock
}
