// Package app is the composition root. Bootstrap stays orchestration-only:
// it wires adapters to usecases and never carries business rules itself.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"agritrace.io/provenance/internal/api/handlers"
	"agritrace.io/provenance/internal/config"
	"agritrace.io/provenance/internal/geocode"
	"agritrace.io/provenance/internal/notify"
	"agritrace.io/provenance/internal/pkg/logger"
	"agritrace.io/provenance/internal/pkg/worker"
	"agritrace.io/provenance/internal/store"
	"agritrace.io/provenance/internal/usecase"
	"agritrace.io/provenance/internal/verify"
)

// Application holds composed application dependencies.
type Application struct {
	Config   *config.Config
	Router   *gin.Engine
	Pool     *pgxpool.Pool
	Pools    *worker.Pools
	Notifier notify.RefreshPublisher
}

// Bootstrap initializes all dependencies using manual DI.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	pool, err := store.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database pool: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := store.Migrate(cfg.Database.DSN()); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("Database migrations applied")
	}

	pools, err := worker.NewPools(ctx, worker.PoolConfig{
		GeneralPoolSize: cfg.Worker.GeneralPoolSize,
		GeocodePoolSize: cfg.Worker.GeocodePoolSize,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init worker pools: %w", err)
	}

	st := store.NewPostgresStore(pool)

	geocoder := geocode.NewHTTPGeocoder(cfg.Geocoder)
	resolver := geocode.NewResolver(cfg.Geocoder, geocoder, pools)

	oracle := verify.NewHTTPOracle(cfg.Oracle)
	gateway := verify.NewGateway(oracle, st)

	notifier, err := newNotifier(cfg.NATS, pools)
	if err != nil {
		pools.Shutdown()
		pool.Close()
		return nil, fmt.Errorf("init refresh publisher: %w", err)
	}

	server := handlers.NewServer(handlers.ServerDeps{
		Pool:          pool,
		WorkerPools:   pools,
		GetUC:        usecase.NewGetProvenanceUseCase(st),
		UpdateStageUC: usecase.NewUpdateStageUseCase(st, notifier),
		SaveJourneyUC: usecase.NewSaveJourneyUseCase(st, resolver, notifier),
		VerifyUC:      usecase.NewRequestVerificationUseCase(gateway, st, notifier),
	})

	return &Application{
		Config:   cfg,
		Router:   newRouter(cfg, server),
		Pool:     pool,
		Pools:    pools,
		Notifier: notifier,
	}, nil
}

func newNotifier(cfg config.NATSConfig, pools *worker.Pools) (notify.RefreshPublisher, error) {
	if cfg.URL == "" {
		logger.Info("NATS not configured, refresh triggers disabled")
		return notify.NoopPublisher{}, nil
	}
	nats, err := notify.NewNATSPublisher(cfg.URL, cfg.SubjectPrefix)
	if err != nil {
		return nil, err
	}
	// Triggers leave the request path: publishes run detached on the
	// general pool.
	return notify.NewAsyncPublisher(nats, pools), nil
}

// Shutdown gracefully releases all application resources.
func (a *Application) Shutdown() {
	if a.Notifier != nil {
		_ = a.Notifier.Close()
	}
	if a.Pools != nil {
		a.Pools.Shutdown()
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}
