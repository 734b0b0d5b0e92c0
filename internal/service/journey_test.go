package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agritrace.io/provenance/internal/domain"
	apperrors "agritrace.io/provenance/internal/pkg/errors"
)

func wp(name, address string) domain.JourneyWaypoint {
	return domain.JourneyWaypoint{
		Name:    name,
		Type:    domain.WaypointFarm,
		Address: address,
		Date:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestAddWaypoint(t *testing.T) {
	list, err := AddWaypoint(nil, wp("Kamau Farm", "Nyeri, Kenya"))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.StatusPending, list[0].Status, "status defaults to pending")

	list, err = AddWaypoint(list, wp("Thika Depot", "Thika, Kenya"))
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, "Kamau Farm", list[0].Name)
	assert.Equal(t, "Thika Depot", list[1].Name)
}

func TestAddWaypoint_Rejections(t *testing.T) {
	tests := []struct {
		name string
		in   domain.JourneyWaypoint
	}{
		{"empty name", wp("", "Nyeri, Kenya")},
		{"blank name", wp("   ", "Nyeri, Kenya")},
		{"empty address", wp("Kamau Farm", "")},
		{"blank address", wp("Kamau Farm", "  ")},
	}

	seed, err := AddWaypoint(nil, wp("Seed", "Somewhere"))
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := AddWaypoint(seed, tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrValidation))
			assert.Equal(t, seed, out, "rejected add must be a no-op")
		})
	}
}

func TestAddWaypoint_DoesNotAliasInput(t *testing.T) {
	seed, err := AddWaypoint(nil, wp("A", "addr-a"))
	require.NoError(t, err)

	grown, err := AddWaypoint(seed, wp("B", "addr-b"))
	require.NoError(t, err)

	grown[0].Name = "mutated"
	assert.Equal(t, "A", seed[0].Name)
}

func TestRemoveWaypoint(t *testing.T) {
	list, _ := AddWaypoint(nil, wp("A", "addr-a"))
	list, _ = AddWaypoint(list, wp("B", "addr-b"))
	list, _ = AddWaypoint(list, wp("C", "addr-c"))

	out, err := RemoveWaypoint(list, 1)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].Name)
	assert.Equal(t, "C", out[1].Name)
}

func TestRemoveWaypoint_OutOfRange(t *testing.T) {
	list, _ := AddWaypoint(nil, wp("A", "addr-a"))

	for _, i := range []int{-1, 1, 99} {
		out, err := RemoveWaypoint(list, i)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrIndexOutOfRange))
		assert.Equal(t, list, out)
	}
}

func TestValidateJourney(t *testing.T) {
	err := ValidateJourney(nil)
	require.Error(t, err, "empty journey must be rejected")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	list, _ := AddWaypoint(nil, wp("A", "addr-a"))
	assert.NoError(t, ValidateJourney(list))

	list = append(list, domain.JourneyWaypoint{Name: "B"}) // missing address
	assert.Error(t, ValidateJourney(list))
}
