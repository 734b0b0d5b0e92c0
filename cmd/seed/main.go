// Package main provides demo data seeding for AgriTrace Provenance.
//
// Migrations are applied first, then a small set of demo products with
// events and journeys is inserted. Seeding is idempotent: products that
// already exist are left untouched.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"agritrace.io/provenance/internal/config"
	"agritrace.io/provenance/internal/domain"
	"agritrace.io/provenance/internal/pkg/logger"
	"agritrace.io/provenance/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	if err := store.Migrate(cfg.Database.DSN()); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	pool, err := store.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer pool.Close()

	logger.Info("Starting demo data seeding...")

	st := store.NewPostgresStore(pool)
	for _, p := range demoProducts() {
		inserted, err := insertProduct(ctx, pool, p)
		if err != nil {
			return fmt.Errorf("insert product %s: %w", p.ref.ID, err)
		}
		if !inserted {
			logger.Info("Product already seeded, skipping",
				zap.String("product_id", p.ref.ID))
			continue
		}

		for _, ev := range p.events {
			if _, err := st.AppendEvent(ctx, p.ref.ID, ev); err != nil {
				return fmt.Errorf("append event for %s: %w", p.ref.ID, err)
			}
		}
		if len(p.journey) > 0 {
			if err := st.SaveJourney(ctx, p.ref.ID, p.journey); err != nil {
				return fmt.Errorf("save journey for %s: %w", p.ref.ID, err)
			}
		}

		logger.Info("Product seeded",
			zap.String("product_id", p.ref.ID),
			zap.Int("events", len(p.events)),
			zap.Int("waypoints", len(p.journey)),
		)
	}

	logger.Info("Demo data seeding complete")
	return nil
}

// demoProduct bundles one product with its seeded history.
type demoProduct struct {
	ref     domain.ProductRef
	events  []store.EventInput
	journey []domain.JourneyWaypoint
}

func demoProducts() []demoProduct {
	day := 24 * time.Hour
	now := time.Now().UTC()

	return []demoProduct{
		{
			ref: domain.ProductRef{ID: "demo-coffee-7", Name: "Arabica Lot 7", Origin: "Nyeri, Kenya"},
			events: []store.EventInput{
				{Stage: domain.StagePlanting, Description: "Seedlings planted on the eastern slope"},
				{Stage: domain.StageHarvesting, Description: "Cherries hand-picked at full ripeness",
					LocationName: "Kiama Farm",
					Coordinates:  &domain.Coordinates{Lat: -0.4201, Lng: 36.9476}},
				{Stage: domain.StageProcessing, Description: "Washed and sun-dried",
					LocationName: "Karatina Dry Mill"},
			},
			journey: []domain.JourneyWaypoint{
				{Name: "Kiama Farm", Type: domain.WaypointFarm, Address: "Nyeri, Kenya",
					Status: domain.StatusCompleted, Date: now.Add(-21 * day),
					Coordinates: &domain.Coordinates{Lat: -0.4201, Lng: 36.9476}},
				{Name: "Karatina Dry Mill", Type: domain.WaypointProcessing, Address: "Karatina, Kenya",
					Status: domain.StatusCompleted, Date: now.Add(-14 * day),
					Coordinates: &domain.Coordinates{Lat: -0.4833, Lng: 37.1333}},
				{Name: "Nairobi Depot", Type: domain.WaypointDistribution, Address: "Nairobi, Kenya",
					Status: domain.StatusInProgress, Date: now.Add(-2 * day),
					Coordinates: &domain.Coordinates{Lat: -1.2921, Lng: 36.8219}},
			},
		},
		{
			ref: domain.ProductRef{ID: "demo-mango-3", Name: "Apple Mango Crate 3", Origin: "Makueni, Kenya"},
			events: []store.EventInput{
				{Stage: domain.StageHarvesting, Description: "Picked at export grade"},
			},
		},
	}
}

// insertProduct creates the product row. Returns false when the product
// already exists.
func insertProduct(ctx context.Context, pool *pgxpool.Pool, p demoProduct) (bool, error) {
	tag, err := pool.Exec(ctx, `
		INSERT INTO products (id, name, origin)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`,
		p.ref.ID, p.ref.Name, p.ref.Origin)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
