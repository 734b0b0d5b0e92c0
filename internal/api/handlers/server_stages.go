package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agritrace.io/provenance/internal/domain"
)

// ListStages handles GET /stages — the fixed, ordered stage catalog.
func (s *Server) ListStages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"production":  domain.StagesForPhase(domain.PhaseProduction),
		"fulfillment": domain.StagesForPhase(domain.PhaseFulfillment),
		"total":       domain.TotalStages(),
	})
}
