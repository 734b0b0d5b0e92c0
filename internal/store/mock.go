package store

import (
	"context"
	"sync"
	"time"

	"agritrace.io/provenance/internal/domain"
	apperrors "agritrace.io/provenance/internal/pkg/errors"
)

// MockStore implements Store in memory for tests and local development.
type MockStore struct {
	mu     sync.RWMutex
	states map[string]*domain.ProvenanceState

	// forcedErr, when set, is returned by every operation. Used to
	// exercise StoreUnavailable paths.
	forcedErr error

	// SaveJourneyCalls counts batch saves, so tests can assert the store
	// was never touched for a rejected batch.
	SaveJourneyCalls int
}

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{states: make(map[string]*domain.ProvenanceState)}
}

// Seed registers a product with an initial provenance state.
func (m *MockStore) Seed(states ...*domain.ProvenanceState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, st := range states {
		cp := cloneState(st)
		m.states[st.Product.ID] = cp
	}
}

// Reset clears all data and error injection.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = make(map[string]*domain.ProvenanceState)
	m.forcedErr = nil
	m.SaveJourneyCalls = 0
}

// ForceError makes every subsequent operation fail with err.
func (m *MockStore) ForceError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forcedErr = err
}

func (m *MockStore) FetchProvenance(_ context.Context, productID string) (*domain.ProvenanceState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	st, ok := m.states[productID]
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrNotFound,
			apperrors.CodeProductNotFound, "product "+productID+" has no provenance record", 404)
	}
	return cloneState(st), nil
}

func (m *MockStore) AppendEvent(_ context.Context, productID string, in EventInput) (*domain.SupplyChainEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	st, ok := m.states[productID]
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrNotFound,
			apperrors.CodeProductNotFound, "product "+productID+" has no provenance record", 404)
	}

	status, err := eventStatus(in.Status)
	if err != nil {
		return nil, err
	}
	ev := domain.SupplyChainEvent{
		ID:           newEventID(),
		ProductID:    productID,
		Stage:        in.Stage,
		Description:  in.Description,
		LocationName: in.LocationName,
		Coordinates:  cloneCoords(in.Coordinates),
		ImageURL:     in.ImageURL,
		Status:       status,
		CreatedAt:    time.Now().UTC(),
	}
	st.Events = append(st.Events, ev)
	if domain.IsKnownStage(in.Stage) {
		st.CurrentStage = domain.NormalizeStage(in.Stage)
	}
	return &ev, nil
}

func (m *MockStore) SaveJourney(_ context.Context, productID string, waypoints []domain.JourneyWaypoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveJourneyCalls++
	if m.forcedErr != nil {
		return m.forcedErr
	}
	st, ok := m.states[productID]
	if !ok {
		return apperrors.Wrap(apperrors.ErrNotFound,
			apperrors.CodeProductNotFound, "product "+productID+" has no provenance record", 404)
	}
	st.Journey = make([]domain.JourneyWaypoint, len(waypoints))
	for i, wp := range waypoints {
		if wp.Status == "" {
			wp.Status = domain.StatusPending
		}
		wp.Coordinates = cloneCoords(wp.Coordinates)
		st.Journey[i] = wp
	}
	return nil
}

func (m *MockStore) SetVerification(_ context.Context, productID string, verified bool, proofRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.forcedErr != nil {
		return m.forcedErr
	}
	if verified && proofRef == "" {
		return apperrors.Wrap(apperrors.ErrValidation,
			apperrors.CodeValidationFailed, "verified requires a proof reference", 400)
	}
	st, ok := m.states[productID]
	if !ok {
		return apperrors.Wrap(apperrors.ErrNotFound,
			apperrors.CodeProductNotFound, "product "+productID+" has no provenance record", 404)
	}
	st.Verified = verified
	st.ProofRef = proofRef
	return nil
}

func cloneState(st *domain.ProvenanceState) *domain.ProvenanceState {
	cp := *st
	cp.Events = make([]domain.SupplyChainEvent, len(st.Events))
	for i, ev := range st.Events {
		ev.Coordinates = cloneCoords(ev.Coordinates)
		cp.Events[i] = ev
	}
	cp.Journey = make([]domain.JourneyWaypoint, len(st.Journey))
	for i, wp := range st.Journey {
		wp.Coordinates = cloneCoords(wp.Coordinates)
		cp.Journey[i] = wp
	}
	return &cp
}

func cloneCoords(c *domain.Coordinates) *domain.Coordinates {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
