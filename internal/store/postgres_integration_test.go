package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agritrace.io/provenance/internal/domain"
	apperrors "agritrace.io/provenance/internal/pkg/errors"
	"agritrace.io/provenance/internal/pkg/logger"
	"agritrace.io/provenance/internal/testutil"
)

func init() {
	_ = logger.Init("error", "json")
}

// applySchema executes the embedded up migration statement by statement,
// inside the test's isolated schema.
func applySchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	sql, err := migrationFiles.ReadFile("migrations/0001_provenance_tables.up.sql")
	require.NoError(t, err)

	for _, stmt := range strings.Split(string(sql), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		_, err := pool.Exec(context.Background(), stmt)
		require.NoError(t, err, "statement: %s", stmt)
	}
}

func seedProductRow(t *testing.T, pool *pgxpool.Pool, id, name, origin string) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO products (id, name, origin) VALUES ($1, $2, $3)`,
		id, name, origin)
	require.NoError(t, err)
}

func TestPostgresStore_Integration(t *testing.T) {
	pool := testutil.OpenPGXPool(t, "prov")
	applySchema(t, pool)
	seedProductRow(t, pool, "prod-1", "Arabica Lot 7", "Nyeri, Kenya")

	st := NewPostgresStore(pool)
	ctx := context.Background()

	t.Run("fetch unknown product", func(t *testing.T) {
		_, err := st.FetchProvenance(ctx, "ghost")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("fetch seeded product", func(t *testing.T) {
		state, err := st.FetchProvenance(ctx, "prod-1")
		require.NoError(t, err)
		assert.Equal(t, "Arabica Lot 7", state.Product.Name)
		assert.Empty(t, state.Events)
		assert.Empty(t, state.Journey)
		assert.False(t, state.Verified)
	})

	t.Run("catalog stage advances pointer", func(t *testing.T) {
		ev, err := st.AppendEvent(ctx, "prod-1", EventInput{
			Stage:       "Harvesting",
			Description: "Cherries picked",
			Coordinates: &domain.Coordinates{Lat: -0.42, Lng: 36.95},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, ev.ID)

		state, err := st.FetchProvenance(ctx, "prod-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StageHarvesting, state.CurrentStage)
		require.Len(t, state.Events, 1)
		require.NotNil(t, state.Events[0].Coordinates)
		assert.InDelta(t, -0.42, state.Events[0].Coordinates.Lat, 1e-9)
	})

	t.Run("free text stage records history only", func(t *testing.T) {
		_, err := st.AppendEvent(ctx, "prod-1", EventInput{Stage: "fermenting"})
		require.NoError(t, err)

		state, err := st.FetchProvenance(ctx, "prod-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StageHarvesting, state.CurrentStage)
		assert.Len(t, state.Events, 2)
	})

	t.Run("invalid event status rejected", func(t *testing.T) {
		_, err := st.AppendEvent(ctx, "prod-1", EventInput{
			Stage:  "processing",
			Status: domain.StepStatus("banana"),
		})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("journey batch replace preserves order", func(t *testing.T) {
		first := []domain.JourneyWaypoint{
			{Name: "Kiama Farm", Type: domain.WaypointFarm, Address: "Nyeri, Kenya",
				Date: time.Now().UTC(), Coordinates: &domain.Coordinates{Lat: -0.42, Lng: 36.95}},
			{Name: "Dry Mill", Type: domain.WaypointProcessing, Address: "Karatina, Kenya",
				Date: time.Now().UTC()},
		}
		require.NoError(t, st.SaveJourney(ctx, "prod-1", first))

		replacement := []domain.JourneyWaypoint{
			{Name: "City Market", Type: domain.WaypointRetail, Address: "Nairobi, Kenya",
				Date: time.Now().UTC()},
		}
		require.NoError(t, st.SaveJourney(ctx, "prod-1", replacement))

		state, err := st.FetchProvenance(ctx, "prod-1")
		require.NoError(t, err)
		require.Len(t, state.Journey, 1)
		assert.Equal(t, "City Market", state.Journey[0].Name)
		assert.Equal(t, domain.StatusPending, state.Journey[0].Status)
	})

	t.Run("journey for unknown product", func(t *testing.T) {
		err := st.SaveJourney(ctx, "ghost", []domain.JourneyWaypoint{
			{Name: "Nowhere", Address: "Nowhere", Date: time.Now().UTC()},
		})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("verified requires proof", func(t *testing.T) {
		err := st.SetVerification(ctx, "prod-1", true, "")
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		require.NoError(t, st.SetVerification(ctx, "prod-1", true, "0xproof"))
		state, err := st.FetchProvenance(ctx, "prod-1")
		require.NoError(t, err)
		assert.True(t, state.Verified)
		assert.Equal(t, "0xproof", state.ProofRef)

		require.NoError(t, st.SetVerification(ctx, "prod-1", false, ""))
		state, err = st.FetchProvenance(ctx, "prod-1")
		require.NoError(t, err)
		assert.False(t, state.Verified)
		assert.Empty(t, state.ProofRef)
	})
}
