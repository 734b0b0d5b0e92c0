package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"agritrace.io/provenance/internal/domain"
	apperrors "agritrace.io/provenance/internal/pkg/errors"
	"agritrace.io/provenance/internal/pkg/logger"
)

// PostgresStore implements Store on pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Store backed by the shared connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// storeErr maps a pgx failure onto the store error taxonomy. No-rows is
// handled at call sites; everything else is a reachability problem.
func storeErr(err error) error {
	return apperrors.Wrap(err, apperrors.CodeStoreUnavailable,
		"provenance store unreachable", 503).WithRetryable()
}

func notFound(productID string) error {
	return apperrors.Wrap(apperrors.ErrNotFound,
		apperrors.CodeProductNotFound, "product "+productID+" has no provenance record", 404)
}

// FetchProvenance loads the full derived state for a product.
func (s *PostgresStore) FetchProvenance(ctx context.Context, productID string) (*domain.ProvenanceState, error) {
	state := &domain.ProvenanceState{}

	err := s.pool.QueryRow(ctx, `
		SELECT id, name, origin, current_stage, verified, proof_ref
		FROM products WHERE id = $1`, productID,
	).Scan(
		&state.Product.ID, &state.Product.Name, &state.Product.Origin,
		&state.CurrentStage, &state.Verified, &state.ProofRef,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound(productID)
		}
		return nil, storeErr(err)
	}

	events, err := s.fetchEvents(ctx, productID)
	if err != nil {
		return nil, err
	}
	state.Events = events

	journey, err := s.fetchJourney(ctx, productID)
	if err != nil {
		return nil, err
	}
	state.Journey = journey

	return state, nil
}

func (s *PostgresStore) fetchEvents(ctx context.Context, productID string) ([]domain.SupplyChainEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, product_id, stage, description, location_name,
		       lat, lng, image_url, proof_ref, status, created_at
		FROM supply_chain_events
		WHERE product_id = $1
		ORDER BY created_at, id`, productID)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var events []domain.SupplyChainEvent
	for rows.Next() {
		var ev domain.SupplyChainEvent
		var lat, lng *float64
		if err := rows.Scan(
			&ev.ID, &ev.ProductID, &ev.Stage, &ev.Description, &ev.LocationName,
			&lat, &lng, &ev.ImageURL, &ev.ProofRef, &ev.Status, &ev.CreatedAt,
		); err != nil {
			return nil, storeErr(err)
		}
		ev.Coordinates = coordsFrom(lat, lng)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return events, nil
}

func (s *PostgresStore) fetchJourney(ctx context.Context, productID string) ([]domain.JourneyWaypoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, type, address, status, waypoint_date, lat, lng
		FROM journey_waypoints
		WHERE product_id = $1
		ORDER BY position`, productID)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var journey []domain.JourneyWaypoint
	for rows.Next() {
		var wp domain.JourneyWaypoint
		var lat, lng *float64
		if err := rows.Scan(
			&wp.Name, &wp.Type, &wp.Address, &wp.Status, &wp.Date, &lat, &lng,
		); err != nil {
			return nil, storeErr(err)
		}
		wp.Coordinates = coordsFrom(lat, lng)
		journey = append(journey, wp)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return journey, nil
}

// AppendEvent inserts the event and, for catalog stages, advances the
// product's current stage in the same transaction.
func (s *PostgresStore) AppendEvent(ctx context.Context, productID string, in EventInput) (*domain.SupplyChainEvent, error) {
	status, err := eventStatus(in.Status)
	if err != nil {
		return nil, err
	}

	ev := domain.SupplyChainEvent{
		ID:           newEventID(),
		ProductID:    productID,
		Stage:        in.Stage,
		Description:  in.Description,
		LocationName: in.LocationName,
		Coordinates:  in.Coordinates,
		ImageURL:     in.ImageURL,
		Status:       status,
		CreatedAt:    time.Now().UTC(),
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var lat, lng *float64
	if ev.Coordinates != nil {
		lat, lng = &ev.Coordinates.Lat, &ev.Coordinates.Lng
	}

	tag, err := tx.Exec(ctx, `
		UPDATE products SET updated_at = $2 WHERE id = $1`,
		productID, ev.CreatedAt)
	if err != nil {
		return nil, storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, notFound(productID)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO supply_chain_events
			(id, product_id, stage, description, location_name,
			 lat, lng, image_url, proof_ref, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		ev.ID, ev.ProductID, ev.Stage, ev.Description, ev.LocationName,
		lat, lng, ev.ImageURL, ev.ProofRef, ev.Status, ev.CreatedAt)
	if err != nil {
		return nil, storeErr(err)
	}

	if domain.IsKnownStage(ev.Stage) {
		_, err = tx.Exec(ctx, `
			UPDATE products SET current_stage = $2 WHERE id = $1`,
			productID, domain.NormalizeStage(ev.Stage))
		if err != nil {
			return nil, storeErr(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr(err)
	}

	logger.Debug("Supply-chain event appended",
		zap.String("product_id", productID),
		zap.String("stage", ev.Stage),
		zap.String("event_id", ev.ID),
	)
	return &ev, nil
}

// SaveJourney replaces the waypoint batch inside one transaction.
func (s *PostgresStore) SaveJourney(ctx context.Context, productID string, waypoints []domain.JourneyWaypoint) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storeErr(err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `
		UPDATE products SET updated_at = now() WHERE id = $1`, productID)
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(productID)
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM journey_waypoints WHERE product_id = $1`, productID); err != nil {
		return storeErr(err)
	}

	for i, wp := range waypoints {
		var lat, lng *float64
		if wp.Coordinates != nil {
			lat, lng = &wp.Coordinates.Lat, &wp.Coordinates.Lng
		}
		status := wp.Status
		if status == "" {
			status = domain.StatusPending
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO journey_waypoints
				(product_id, position, name, type, address, status, waypoint_date, lat, lng)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			productID, i, wp.Name, wp.Type, wp.Address, status, wp.Date, lat, lng,
		); err != nil {
			return storeErr(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr(err)
	}

	logger.Debug("Journey saved",
		zap.String("product_id", productID),
		zap.Int("waypoints", len(waypoints)),
	)
	return nil
}

// SetVerification records the verification outcome.
func (s *PostgresStore) SetVerification(ctx context.Context, productID string, verified bool, proofRef string) error {
	if verified && proofRef == "" {
		return apperrors.Wrap(apperrors.ErrValidation,
			apperrors.CodeValidationFailed, "verified requires a proof reference", 400)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE products
		SET verified = $2, proof_ref = $3, updated_at = now()
		WHERE id = $1`,
		productID, verified, proofRef)
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(productID)
	}
	return nil
}

func coordsFrom(lat, lng *float64) *domain.Coordinates {
	if lat == nil || lng == nil {
		return nil
	}
	return &domain.Coordinates{Lat: *lat, Lng: *lng}
}

// newEventID generates a time-ordered UUID v7 so identical timestamps keep
// insertion order in the history.
func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
