package service

import (
	"sort"
	"time"

	"agritrace.io/provenance/internal/domain"
)

// DisplayLocation is one stop of the rendered journey: either a recorded
// supply-chain event or a planned waypoint.
type DisplayLocation struct {
	Name        string              `json:"name"`
	Kind        string              `json:"kind"` // "event" or "waypoint"
	Stage       string              `json:"stage,omitempty"`
	Type        domain.WaypointType `json:"type,omitempty"`
	Status      domain.StepStatus   `json:"status"`
	Date        time.Time           `json:"date"`
	Coordinates *domain.Coordinates `json:"coordinates,omitempty"`

	// Mapped is false for entries whose address never resolved; they stay
	// out of the map path but remain in the textual detail list. The dual
	// view is a contract, not a UI accident.
	Mapped bool `json:"mapped"`

	// IsLatest flags the final mapped stop for distinct marker rendering.
	IsLatest bool `json:"is_latest"`
}

// Timeline is the map-ready presentation of a provenance state.
type Timeline struct {
	// Stops are the mapped entries, date ascending.
	Stops []DisplayLocation `json:"stops"`

	// Path is the polyline connecting the mapped stops in order.
	Path []domain.Coordinates `json:"path"`

	// Details is the full entry list, mapped or not, date ascending.
	Details []DisplayLocation `json:"details"`
}

// BuildTimeline derives the map path and detail list from the union of
// event coordinates and journey waypoints. Entries are ordered by their
// associated date ascending; the sort is stable so same-date entries keep
// their input order.
//
// Events carrying neither a location name nor coordinates are status notes:
// they stay in the event history but never appear in Details or Path.
func BuildTimeline(state *domain.ProvenanceState) Timeline {
	if state == nil {
		return Timeline{}
	}

	entries := make([]DisplayLocation, 0, len(state.Events)+len(state.Journey))

	for _, ev := range state.Events {
		if ev.LocationName == "" && ev.Coordinates == nil {
			continue // status notes without a place are history, not stops
		}
		entries = append(entries, DisplayLocation{
			Name:        ev.LocationName,
			Kind:        "event",
			Stage:       ev.Stage,
			Status:      ev.Status,
			Date:        ev.CreatedAt,
			Coordinates: ev.Coordinates,
			Mapped:      ev.Coordinates != nil,
		})
	}

	for _, wp := range state.Journey {
		entries = append(entries, DisplayLocation{
			Name:        wp.Name,
			Kind:        "waypoint",
			Type:        wp.Type,
			Status:      wp.Status,
			Date:        wp.Date,
			Coordinates: wp.Coordinates,
			Mapped:      wp.Coordinates != nil,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})

	tl := Timeline{Details: entries}
	for _, e := range entries {
		if !e.Mapped {
			continue
		}
		tl.Stops = append(tl.Stops, e)
		tl.Path = append(tl.Path, *e.Coordinates)
	}
	if n := len(tl.Stops); n > 0 {
		tl.Stops[n-1].IsLatest = true
		// Mirror the flag into the detail entry for the same stop.
		for i := len(tl.Details) - 1; i >= 0; i-- {
			if tl.Details[i].Mapped {
				tl.Details[i].IsLatest = true
				break
			}
		}
	}
	return tl
}
