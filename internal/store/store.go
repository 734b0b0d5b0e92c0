// Package store provides the provenance persistence boundary: the Store
// contract plus a PostgreSQL implementation and an in-memory mock.
//
// The store is the sole mutator of persisted events, waypoints and
// verification state; no other component writes to it directly.
package store

import (
	"context"

	"agritrace.io/provenance/internal/domain"
	apperrors "agritrace.io/provenance/internal/pkg/errors"
)

// EventInput carries the caller-supplied fields of a new supply-chain event.
// Everything else (ID, timestamps) is assigned by the store.
type EventInput struct {
	Stage        string              `json:"stage"`
	Description  string              `json:"description"`
	LocationName string              `json:"location_name,omitempty"`
	Coordinates  *domain.Coordinates `json:"coordinates,omitempty"`
	ImageURL     string              `json:"image_url,omitempty"`
	Status       domain.StepStatus   `json:"status,omitempty"`
}

// eventStatus applies the append default and rejects labels outside the
// StepStatus enum. An empty status records as completed.
func eventStatus(s domain.StepStatus) (domain.StepStatus, error) {
	switch s {
	case "":
		return domain.StatusCompleted, nil
	case domain.StatusPending, domain.StatusInProgress, domain.StatusCompleted:
		return s, nil
	default:
		return "", apperrors.Wrap(apperrors.ErrValidation,
			apperrors.CodeValidationFailed, "unknown event status "+string(s), 400)
	}
}

// Store is the provenance persistence contract.
//
// An unknown product yields errors.ErrNotFound; backend failures yield
// errors.ErrStoreUnavailable. Callers rely on the distinction to tell "no
// provenance yet" apart from "cannot reach store".
type Store interface {
	// FetchProvenance returns the product's derived provenance state:
	// current stage, event history ordered by creation time, journey
	// waypoints and verification status.
	FetchProvenance(ctx context.Context, productID string) (*domain.ProvenanceState, error)

	// AppendEvent records an immutable stage-transition event. When the
	// stage label resolves to a catalog key the product's current stage
	// advances with it; free-text labels record history only.
	AppendEvent(ctx context.Context, productID string, in EventInput) (*domain.SupplyChainEvent, error)

	// SaveJourney replaces the product's waypoint list as a single batch.
	// All-or-nothing: either the whole list is persisted or none of it.
	SaveJourney(ctx context.Context, productID string, waypoints []domain.JourneyWaypoint) error

	// SetVerification records the outcome of a verification request.
	// A verified=true write requires a non-empty proofRef.
	SetVerification(ctx context.Context, productID string, verified bool, proofRef string) error
}
