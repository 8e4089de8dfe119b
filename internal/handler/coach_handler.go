package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/narengee/c4c-api/internal/models"
	"github.com/narengee/c4c-api/internal/service"
	appErrors "github.com/narengee/c4c-api/pkg/errors"
	"github.com/narengee/c4c-api/pkg/export"
	"github.com/narengee/c4c-api/pkg/response"
)

// CoachHandler exposes the coach portfolio endpoints.
type CoachHandler struct {
	coaches *service.CoachService
}

// NewCoachHandler constructs CoachHandler.
func NewCoachHandler(coaches *service.CoachService) *CoachHandler {
	return &CoachHandler{coaches: coaches}
}

// Portfolio godoc
// @Summary Coach caseload overview
// @Description Cached aggregate of every assigned student's progress.
// @Tags Coach
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /coach/students [get]
func (h *CoachHandler) Portfolio(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	portfolio, err := h.coaches.Portfolio(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, portfolio, nil)
}

// StudentDetail godoc
// @Summary Per-student drill-down
// @Tags Coach
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /coach/students/{id} [get]
func (h *CoachHandler) StudentDetail(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	detail, err := h.coaches.StudentDetail(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// StudentProfile godoc
// @Summary Assigned student's profile
// @Tags Coach
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /coach/students/{id}/profile [get]
func (h *CoachHandler) StudentProfile(c *gin.Context) {
	h.studentSection(c, func(detail *models.StudentDetail) interface{} { return detail.Profile })
}

// StudentMatches godoc
// @Summary Assigned student's matches
// @Tags Coach
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /coach/students/{id}/matches [get]
func (h *CoachHandler) StudentMatches(c *gin.Context) {
	h.studentSection(c, func(detail *models.StudentDetail) interface{} { return detail.Matches })
}

// StudentApplications godoc
// @Summary Assigned student's application pipeline
// @Tags Coach
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /coach/students/{id}/applications [get]
func (h *CoachHandler) StudentApplications(c *gin.Context) {
	h.studentSection(c, func(detail *models.StudentDetail) interface{} { return detail.CollegeList })
}

// Export godoc
// @Summary Export the caseload as CSV or PDF
// @Tags Coach
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /coach/students/export [get]
func (h *CoachHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	dataset, err := h.coaches.ExportPortfolio(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("portfolio-%s", time.Now().UTC().Format("2006-01-02"))
	switch c.DefaultQuery("format", "csv") {
	case "csv":
		data, err := export.NewCSVExporter().Render(dataset)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render csv"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))
		c.Data(http.StatusOK, "text/csv", data)
	case "pdf":
		data, err := export.NewPDFExporter().Render(dataset, "Student Portfolio")
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render pdf"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", filename))
		c.Data(http.StatusOK, "application/pdf", data)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}

func (h *CoachHandler) studentSection(c *gin.Context, pick func(*models.StudentDetail) interface{}) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	detail, err := h.coaches.StudentDetail(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pick(detail), nil)
}
