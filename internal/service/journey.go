package service

import (
	"strings"

	"agritrace.io/provenance/internal/domain"
	apperrors "agritrace.io/provenance/internal/pkg/errors"
)

// AddWaypoint appends a waypoint to the working list.
// Rejects entries with a blank name or address; the input list is returned
// unchanged in that case so callers can treat the failure as a no-op.
func AddWaypoint(list []domain.JourneyWaypoint, wp domain.JourneyWaypoint) ([]domain.JourneyWaypoint, error) {
	if strings.TrimSpace(wp.Name) == "" {
		return list, apperrors.Wrap(apperrors.ErrValidation,
			apperrors.CodeValidationFailed, "waypoint name is required", 400)
	}
	if strings.TrimSpace(wp.Address) == "" {
		return list, apperrors.Wrap(apperrors.ErrValidation,
			apperrors.CodeValidationFailed, "waypoint address is required", 400)
	}
	if wp.Status == "" {
		wp.Status = domain.StatusPending
	}
	out := make([]domain.JourneyWaypoint, len(list), len(list)+1)
	copy(out, list)
	return append(out, wp), nil
}

// RemoveWaypoint removes the waypoint at position i.
// An out-of-range index leaves the list unchanged.
func RemoveWaypoint(list []domain.JourneyWaypoint, i int) ([]domain.JourneyWaypoint, error) {
	if i < 0 || i >= len(list) {
		return list, apperrors.Wrap(apperrors.ErrIndexOutOfRange,
			apperrors.CodeValidationFailed, "waypoint index out of range", 400)
	}
	out := make([]domain.JourneyWaypoint, 0, len(list)-1)
	out = append(out, list[:i]...)
	out = append(out, list[i+1:]...)
	return out, nil
}

// ValidateJourney checks a waypoint batch before it is geocoded and saved.
// An empty batch is rejected so the store is never touched for it.
func ValidateJourney(list []domain.JourneyWaypoint) error {
	if len(list) == 0 {
		return apperrors.Wrap(apperrors.ErrValidation,
			apperrors.CodeValidationFailed, "journey must contain at least one waypoint", 400)
	}
	for _, wp := range list {
		if strings.TrimSpace(wp.Name) == "" || strings.TrimSpace(wp.Address) == "" {
			return apperrors.Wrap(apperrors.ErrValidation,
				apperrors.CodeValidationFailed, "every waypoint needs a name and address", 400)
		}
	}
	return nil
}
