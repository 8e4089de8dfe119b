package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/narengee/c4c-api/internal/service"
	appErrors "github.com/narengee/c4c-api/pkg/errors"
	"github.com/narengee/c4c-api/pkg/response"
)

// RecommendationHandler exposes AI college match endpoints.
type RecommendationHandler struct {
	recommendations *service.RecommendationService
}

// NewRecommendationHandler constructs RecommendationHandler.
func NewRecommendationHandler(recommendations *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendations: recommendations}
}

// Generate godoc
// @Summary Generate AI college matches
// @Description Syncs dream colleges, calls the model and replaces previous AI matches.
// @Tags Recommendations
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /students/me/recommendations [post]
func (h *RecommendationHandler) Generate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	set, err := h.recommendations.Generate(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, set, nil)
}

// Matches godoc
// @Summary List current matches
// @Tags Recommendations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/me/matches [get]
func (h *RecommendationHandler) Matches(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	set, err := h.recommendations.Matches(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, set, nil)
}

// DeleteMatches godoc
// @Summary Delete AI-generated matches
// @Description Removes AI matches. Dream-college rows are kept.
// @Tags Recommendations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/me/matches [delete]
func (h *RecommendationHandler) DeleteMatches(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	deleted, err := h.recommendations.DeleteMatches(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": deleted}, nil)
}
