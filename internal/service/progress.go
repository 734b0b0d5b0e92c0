// Package service provides the provenance business logic: stage progress
// derivation, journey building, timeline shaping and report compilation.
//
// Everything in this package is a pure transform over domain values; I/O
// lives in the store and adapter packages.
package service

import (
	"math"

	"agritrace.io/provenance/internal/domain"
)

// ProgressStatus is the renderable state of one catalog stage.
type ProgressStatus string

const (
	ProgressCompleted ProgressStatus = "completed"
	ProgressActive    ProgressStatus = "active"
	ProgressPending   ProgressStatus = "pending"
)

// StageProgress pairs a catalog stage with its derived status.
type StageProgress struct {
	Stage  domain.StageInfo `json:"stage"`
	Status ProgressStatus   `json:"status"`
}

// ProgressView is the full per-stage state for both phases plus the
// aggregate completion percentage.
type ProgressView struct {
	Production  []StageProgress `json:"production"`
	Fulfillment []StageProgress `json:"fulfillment,omitempty"`

	// ShowFulfillment signals that the fulfillment bar should be rendered:
	// either production is at its final stage or the product is already in
	// fulfillment.
	ShowFulfillment bool `json:"show_fulfillment"`

	// Percent is completed+active stages across both phases over the total
	// catalog size, rounded to the nearest integer. Coarse progress bars
	// only, never business decisions.
	Percent int `json:"percent"`
}

// Empty reports whether the view carries no stage data.
func (v ProgressView) Empty() bool {
	return len(v.Production) == 0 && len(v.Fulfillment) == 0
}

// Progress derives the renderable per-stage state for a current stage value.
//
// Stage labels may arrive as free text from the store; a label outside the
// catalog degrades to an empty view instead of failing the whole render.
func Progress(currentStage string) ProgressView {
	phase := domain.PhaseOf(currentStage)
	if phase == domain.PhaseUnknown {
		return ProgressView{}
	}

	view := ProgressView{}

	switch phase {
	case domain.PhaseProduction:
		idx := domain.StageIndex(domain.PhaseProduction, currentStage)
		view.Production = statusesAt(domain.PhaseProduction, idx)

		// Once production is at its final stage, preview the not-yet-started
		// fulfillment bar. The stage key is re-checked against the
		// fulfillment list, which yields -1 and therefore all-pending.
		if idx == len(view.Production)-1 {
			view.ShowFulfillment = true
			view.Fulfillment = statusesAt(domain.PhaseFulfillment,
				domain.StageIndex(domain.PhaseFulfillment, currentStage))
		}

	case domain.PhaseFulfillment:
		view.Production = allCompleted(domain.PhaseProduction)
		view.ShowFulfillment = true
		idx := domain.StageIndex(domain.PhaseFulfillment, currentStage)
		view.Fulfillment = statusesAt(domain.PhaseFulfillment, idx)
	}

	view.Percent = percent(view)
	return view
}

// statusesAt applies the three-way rule around currentIndex:
// before it completed, at it active, after it pending.
// A negative index marks every stage pending.
func statusesAt(phase domain.Phase, currentIndex int) []StageProgress {
	stages := domain.StagesForPhase(phase)
	out := make([]StageProgress, len(stages))
	for i, s := range stages {
		status := ProgressPending
		switch {
		case currentIndex >= 0 && i < currentIndex:
			status = ProgressCompleted
		case currentIndex >= 0 && i == currentIndex:
			status = ProgressActive
		}
		out[i] = StageProgress{Stage: s, Status: status}
	}
	return out
}

func allCompleted(phase domain.Phase) []StageProgress {
	stages := domain.StagesForPhase(phase)
	out := make([]StageProgress, len(stages))
	for i, s := range stages {
		out[i] = StageProgress{Stage: s, Status: ProgressCompleted}
	}
	return out
}

func percent(view ProgressView) int {
	total := domain.TotalStages()
	if total == 0 {
		return 0
	}
	reached := 0
	for _, sp := range view.Production {
		if sp.Status != ProgressPending {
			reached++
		}
	}
	for _, sp := range view.Fulfillment {
		if sp.Status != ProgressPending {
			reached++
		}
	}
	return int(math.Round(float64(reached) / float64(total) * 100))
}
