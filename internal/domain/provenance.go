package domain

import "time"

// StepStatus is the shared lifecycle status of events and waypoints.
type StepStatus string

const (
	StatusPending    StepStatus = "pending"
	StatusInProgress StepStatus = "in-progress"
	StatusCompleted  StepStatus = "completed"
)

// Coordinates is a resolved geographic position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ProductRef identifies a product owned by the external catalog.
// Referenced read-only by the provenance core.
type ProductRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Origin string `json:"origin"`
}

// SupplyChainEvent is one immutable record of a stage transition or
// status note. Created only by a producer stage update; never mutated;
// ordered by CreatedAt to form the event history.
type SupplyChainEvent struct {
	ID           string       `json:"id"`
	ProductID    string       `json:"product_id"`
	Stage        string       `json:"stage"` // free-form label, normally a catalog key
	Description  string       `json:"description"`
	LocationName string       `json:"location_name,omitempty"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
	ImageURL     string       `json:"image_url,omitempty"`
	ProofRef     string       `json:"proof_ref,omitempty"`
	Status       StepStatus   `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
}

// WaypointType classifies a physical stop in the product's path.
type WaypointType string

const (
	WaypointFarm         WaypointType = "farm"
	WaypointProcessing   WaypointType = "processing"
	WaypointDistribution WaypointType = "distribution"
	WaypointRetail       WaypointType = "retail"
	WaypointTransport    WaypointType = "transport"
)

// JourneyWaypoint is one planned or recorded stop in the product's path,
// entered before coordinates are known. Coordinates stays nil until the
// address has been geocoded.
type JourneyWaypoint struct {
	Name        string       `json:"name"`
	Type        WaypointType `json:"type"`
	Address     string       `json:"address"`
	Status      StepStatus   `json:"status"`
	Date        time.Time    `json:"date"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// ProvenanceState is the derived unit returned to callers: a product's
// current stage, ordered event history, journey and verification status.
// Not persisted as a single record.
type ProvenanceState struct {
	Product      ProductRef         `json:"product"`
	CurrentStage string             `json:"current_stage"`
	Events       []SupplyChainEvent `json:"events"`
	Journey      []JourneyWaypoint  `json:"journey"`
	Verified     bool               `json:"verified"`
	ProofRef     string             `json:"proof_ref,omitempty"`
}
