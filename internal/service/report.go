package service

import (
	"sort"

	"agritrace.io/provenance/internal/domain"
)

// VerificationSection is the attestation part of a report.
type VerificationSection struct {
	Verified bool   `json:"verified"`
	ProofRef string `json:"proof_ref,omitempty"`
}

// ReportDocument is the exportable snapshot of a product's provenance.
// Section order is part of the contract; the rendering format is not.
type ReportDocument struct {
	Product      domain.ProductRef         `json:"product"`
	Progress     ProgressView              `json:"progress"`
	Locations    []DisplayLocation         `json:"locations"`
	Verification VerificationSection       `json:"verification"`
	History      []domain.SupplyChainEvent `json:"history"`
}

// CompileReport assembles stage state, location detail, verification proof
// and raw history into a single document. Pure function of its input.
func CompileReport(state *domain.ProvenanceState) ReportDocument {
	if state == nil {
		return ReportDocument{}
	}

	history := append([]domain.SupplyChainEvent(nil), state.Events...)
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].CreatedAt.Before(history[j].CreatedAt)
	})

	return ReportDocument{
		Product:   state.Product,
		Progress:  Progress(state.CurrentStage),
		Locations: BuildTimeline(state).Details,
		Verification: VerificationSection{
			Verified: state.Verified,
			ProofRef: state.ProofRef,
		},
		History: history,
	}
}
