package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "agritrace.io/provenance/internal/pkg/errors"
	"agritrace.io/provenance/internal/usecase"
)

// GetProvenance handles GET /products/:id/provenance.
// Returns the raw state plus the derived progress and timeline views.
func (s *Server) GetProvenance(c *gin.Context) {
	out, err := s.getUC.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetReport handles GET /products/:id/report.
func (s *Server) GetReport(c *gin.Context) {
	report, err := s.getUC.CompileReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// PostEvent handles POST /products/:id/events — a producer stage update.
func (s *Server) PostEvent(c *gin.Context) {
	var input usecase.UpdateStageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.CodeBadRequest,
			"invalid event payload", http.StatusBadRequest))
		return
	}

	out, err := s.updateStageUC.Execute(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// PostJourney handles POST /products/:id/journey — replaces the product's
// waypoint batch after geocoding.
func (s *Server) PostJourney(c *gin.Context) {
	var input usecase.SaveJourneyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.CodeBadRequest,
			"invalid journey payload", http.StatusBadRequest))
		return
	}

	out, err := s.saveJourneyUC.Execute(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// PostVerification handles POST /products/:id/verification.
func (s *Server) PostVerification(c *gin.Context) {
	out, err := s.verifyUC.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}
