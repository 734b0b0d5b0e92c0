// Package domain provides domain models for AgriTrace Provenance.
//
// Adapters return domain types, never wire or storage types.
package domain

import "strings"

// Phase is one of the two top-level groupings of supply-chain stages.
type Phase string

const (
	PhaseProduction  Phase = "production"
	PhaseFulfillment Phase = "fulfillment"

	// PhaseUnknown is returned for stage keys outside the catalog. Stage
	// labels can originate from hand-entered event text, so lookups must
	// tolerate unrecognized strings instead of failing.
	PhaseUnknown Phase = "unknown"
)

// StageInfo is one entry of the fixed, ordered stage catalog.
type StageInfo struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	Phase       Phase  `json:"phase"`
}

// Production stage keys, in order.
const (
	StagePlanting     = "planting"
	StageHarvesting   = "harvesting"
	StageTransport    = "transport"
	StageProcessing   = "processing"
	StageDistribution = "distribution"
)

// Fulfillment stage keys, in order.
const (
	StagePackaging = "packaging"
	StageShipped   = "shipped"
	StageDelivered = "delivered"
)

// Catalog order is fixed at compile time.
var (
	productionStages = []StageInfo{
		{Key: StagePlanting, DisplayName: "Planting", Phase: PhaseProduction},
		{Key: StageHarvesting, DisplayName: "Harvesting", Phase: PhaseProduction},
		{Key: StageTransport, DisplayName: "Transport", Phase: PhaseProduction},
		{Key: StageProcessing, DisplayName: "Processing", Phase: PhaseProduction},
		{Key: StageDistribution, DisplayName: "Distribution", Phase: PhaseProduction},
	}

	fulfillmentStages = []StageInfo{
		{Key: StagePackaging, DisplayName: "Packaging", Phase: PhaseFulfillment},
		{Key: StageShipped, DisplayName: "Shipped", Phase: PhaseFulfillment},
		{Key: StageDelivered, DisplayName: "Delivered", Phase: PhaseFulfillment},
	}
)

// NormalizeStage canonicalizes a stage label for catalog lookup.
func NormalizeStage(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// StagesForPhase returns the ordered stage list for a phase.
// The returned slice is a copy; callers may not reorder the catalog.
func StagesForPhase(p Phase) []StageInfo {
	switch p {
	case PhaseProduction:
		return append([]StageInfo(nil), productionStages...)
	case PhaseFulfillment:
		return append([]StageInfo(nil), fulfillmentStages...)
	default:
		return nil
	}
}

// AllStages returns the full catalog, Production first.
func AllStages() []StageInfo {
	all := make([]StageInfo, 0, len(productionStages)+len(fulfillmentStages))
	all = append(all, productionStages...)
	all = append(all, fulfillmentStages...)
	return all
}

// TotalStages returns the stage count across both phases.
func TotalStages() int {
	return len(productionStages) + len(fulfillmentStages)
}

// PhaseOf resolves the phase a stage key belongs to.
// Returns PhaseUnknown for keys outside the catalog.
func PhaseOf(stageKey string) Phase {
	key := NormalizeStage(stageKey)
	for _, s := range productionStages {
		if s.Key == key {
			return PhaseProduction
		}
	}
	for _, s := range fulfillmentStages {
		if s.Key == key {
			return PhaseFulfillment
		}
	}
	return PhaseUnknown
}

// StageIndex returns the position of a stage key within its phase list,
// or -1 when the key is not in that phase.
func StageIndex(p Phase, stageKey string) int {
	key := NormalizeStage(stageKey)
	for i, s := range StagesForPhase(p) {
		if s.Key == key {
			return i
		}
	}
	return -1
}

// IsKnownStage reports whether the label resolves to a catalog entry.
func IsKnownStage(stageKey string) bool {
	return PhaseOf(stageKey) != PhaseUnknown
}
