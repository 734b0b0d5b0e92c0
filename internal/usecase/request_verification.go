package usecase

import (
	"context"
	"errors"

	"agritrace.io/provenance/internal/domain"
	"agritrace.io/provenance/internal/notify"
	apperrors "agritrace.io/provenance/internal/pkg/errors"
	"agritrace.io/provenance/internal/store"
	"agritrace.io/provenance/internal/verify"
)

// RequestVerificationOutput carries the attestation and the re-fetched state.
type RequestVerificationOutput struct {
	Result *verify.Result          `json:"result"`
	State  *domain.ProvenanceState `json:"state"`
}

// RequestVerificationUseCase drives an on-demand verification round trip.
type RequestVerificationUseCase struct {
	gateway  *verify.Gateway
	store    store.Store
	notifier notify.RefreshPublisher
}

// NewRequestVerificationUseCase creates a new RequestVerificationUseCase.
func NewRequestVerificationUseCase(gw *verify.Gateway, st store.Store, notifier notify.RefreshPublisher) *RequestVerificationUseCase {
	return &RequestVerificationUseCase{gateway: gw, store: st, notifier: notifier}
}

// Execute asks the gateway to verify the product. A negative attestation
// still mutates the stored verification state, so the refresh trigger
// fires on that path too before the error is surfaced. Transport failures
// mutate nothing and trigger nothing.
func (uc *RequestVerificationUseCase) Execute(ctx context.Context, productID string) (*RequestVerificationOutput, error) {
	result, err := uc.gateway.RequestVerification(ctx, productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrVerificationFailed) {
			publishRefresh(ctx, uc.notifier, productID)
		}
		return nil, err
	}

	publishRefresh(ctx, uc.notifier, productID)

	state, fetchErr := uc.store.FetchProvenance(ctx, productID)
	if fetchErr != nil {
		return nil, fetchErr
	}
	return &RequestVerificationOutput{Result: result, State: state}, nil
}
