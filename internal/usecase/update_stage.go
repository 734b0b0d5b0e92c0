// Package usecase provides the application's mutating and read flows.
//
// UseCases are reusable across HTTP, CLI and background triggers. Each
// mutating flow publishes a refresh trigger on success and returns the
// freshly re-fetched provenance state so callers never render stale data.
package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"agritrace.io/provenance/internal/domain"
	"agritrace.io/provenance/internal/notify"
	apperrors "agritrace.io/provenance/internal/pkg/errors"
	"agritrace.io/provenance/internal/pkg/logger"
	"agritrace.io/provenance/internal/store"
)

// UpdateStageInput represents a producer's stage transition.
type UpdateStageInput struct {
	Stage        string              `json:"stage"`
	Description  string              `json:"description"`
	LocationName string              `json:"location_name,omitempty"`
	Coordinates  *domain.Coordinates `json:"coordinates,omitempty"`
	ImageURL     string              `json:"image_url,omitempty"`
	Status       domain.StepStatus   `json:"status,omitempty"`
}

// UpdateStageOutput carries the recorded event and the re-fetched state.
type UpdateStageOutput struct {
	Event *domain.SupplyChainEvent `json:"event"`
	State *domain.ProvenanceState  `json:"state"`
}

// UpdateStageUseCase appends a supply-chain event to a product's history.
type UpdateStageUseCase struct {
	store    store.Store
	notifier notify.RefreshPublisher
}

// NewUpdateStageUseCase creates a new UpdateStageUseCase.
func NewUpdateStageUseCase(st store.Store, notifier notify.RefreshPublisher) *UpdateStageUseCase {
	return &UpdateStageUseCase{store: st, notifier: notifier}
}

// Execute validates and records the stage transition. The stage label may
// be free text; only labels matching a catalog key advance the product's
// current stage. On success the refresh trigger fires and the state is
// re-fetched so the caller sees the event in place.
func (uc *UpdateStageUseCase) Execute(ctx context.Context, productID string, input UpdateStageInput) (*UpdateStageOutput, error) {
	if strings.TrimSpace(input.Stage) == "" {
		return nil, apperrors.Wrap(apperrors.ErrValidation,
			apperrors.CodeValidationFailed, "stage is required", 400)
	}

	event, err := uc.store.AppendEvent(ctx, productID, store.EventInput{
		Stage:        input.Stage,
		Description:  input.Description,
		LocationName: input.LocationName,
		Coordinates:  input.Coordinates,
		ImageURL:     input.ImageURL,
		Status:       input.Status,
	})
	if err != nil {
		return nil, err
	}

	publishRefresh(ctx, uc.notifier, productID)

	state, err := uc.store.FetchProvenance(ctx, productID)
	if err != nil {
		return nil, err
	}

	logger.Info("Stage update recorded",
		zap.String("product_id", productID),
		zap.String("stage", event.Stage),
		zap.String("current_stage", state.CurrentStage),
	)

	return &UpdateStageOutput{Event: event, State: state}, nil
}

// publishRefresh fires the refresh trigger. Publish failures are logged
// and swallowed: the write already committed, a missed trigger only delays
// the consumer view until its next poll.
func publishRefresh(ctx context.Context, notifier notify.RefreshPublisher, productID string) {
	if notifier == nil {
		return
	}
	if err := notifier.PublishRefresh(ctx, productID); err != nil {
		logger.Warn("Refresh trigger failed",
			zap.String("product_id", productID),
			zap.Error(err),
		)
	}
}
