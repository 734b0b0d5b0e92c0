package usecase

import (
	"context"

	"agritrace.io/provenance/internal/domain"
	"agritrace.io/provenance/internal/service"
	"agritrace.io/provenance/internal/store"
)

// GetProvenanceOutput is the read-path unit handed to presentation:
// raw state plus the derived progress and timeline views.
type GetProvenanceOutput struct {
	State    *domain.ProvenanceState `json:"state"`
	Progress service.ProgressView    `json:"progress"`
	Timeline service.Timeline        `json:"timeline"`
}

// GetProvenanceUseCase assembles the consumer-facing provenance view.
type GetProvenanceUseCase struct {
	store store.Store
}

// NewGetProvenanceUseCase creates a new GetProvenanceUseCase.
func NewGetProvenanceUseCase(st store.Store) *GetProvenanceUseCase {
	return &GetProvenanceUseCase{store: st}
}

// Execute fetches the product's state and derives the progress and
// timeline views. A product whose current stage is not in the catalog
// still returns its history; the progress view is simply empty.
func (uc *GetProvenanceUseCase) Execute(ctx context.Context, productID string) (*GetProvenanceOutput, error) {
	state, err := uc.store.FetchProvenance(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &GetProvenanceOutput{
		State:    state,
		Progress: service.Progress(state.CurrentStage),
		Timeline: service.BuildTimeline(state),
	}, nil
}

// CompileReport builds the shareable report document for the product.
func (uc *GetProvenanceUseCase) CompileReport(ctx context.Context, productID string) (*service.ReportDocument, error) {
	state, err := uc.store.FetchProvenance(ctx, productID)
	if err != nil {
		return nil, err
	}
	report := service.CompileReport(state)
	return &report, nil
}
