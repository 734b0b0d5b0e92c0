// Package handlers implements the HTTP surface of the provenance API.
//
// Handlers bind and delegate to usecases; errors flow to the centralized
// ErrorHandler middleware via c.Error().
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"agritrace.io/provenance/internal/pkg/worker"
	"agritrace.io/provenance/internal/usecase"
)

// Server holds all API handlers and their dependencies.
type Server struct {
	pool          *pgxpool.Pool // nil when running on the in-memory store
	workers       *worker.Pools // optional, reported in health
	getUC         *usecase.GetProvenanceUseCase
	updateStageUC *usecase.UpdateStageUseCase
	saveJourneyUC *usecase.SaveJourneyUseCase
	verifyUC      *usecase.RequestVerificationUseCase
}

// ServerDeps holds all dependencies for creating a Server. Manual DI.
type ServerDeps struct {
	Pool          *pgxpool.Pool
	WorkerPools   *worker.Pools
	GetUC         *usecase.GetProvenanceUseCase
	UpdateStageUC *usecase.UpdateStageUseCase
	SaveJourneyUC *usecase.SaveJourneyUseCase
	VerifyUC      *usecase.RequestVerificationUseCase
}

// NewServer creates a new Server with all dependencies.
func NewServer(deps ServerDeps) *Server {
	return &Server{
		pool:          deps.Pool,
		workers:       deps.WorkerPools,
		getUC:         deps.GetUC,
		updateStageUC: deps.UpdateStageUC,
		saveJourneyUC: deps.SaveJourneyUC,
		verifyUC:      deps.VerifyUC,
	}
}

// RegisterRoutes mounts all API routes under base.
func (s *Server) RegisterRoutes(base *gin.RouterGroup) {
	base.GET("/health", s.GetHealth)
	base.GET("/stages", s.ListStages)

	products := base.Group("/products/:id")
	products.GET("/provenance", s.GetProvenance)
	products.GET("/report", s.GetReport)
	products.POST("/events", s.PostEvent)
	products.POST("/journey", s.PostJourney)
	products.POST("/verification", s.PostVerification)
}
