package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/narengee/c4c-api/internal/models"
	"github.com/narengee/c4c-api/internal/service"
	appErrors "github.com/narengee/c4c-api/pkg/errors"
	"github.com/narengee/c4c-api/pkg/response"
)

// AdminHandler exposes superadmin assignment and platform endpoints.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Assign godoc
// @Summary Assign a student to a coach
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.AssignStudentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/assignments [post]
func (h *AdminHandler) Assign(c *gin.Context) {
	var req models.AssignStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	assignment, err := h.admin.Assign(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// BulkAssign godoc
// @Summary Assign multiple students to a coach
// @Description Partial failures are reported per student, successes are kept.
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.BulkAssignRequest true "Bulk assignment payload"
// @Success 200 {object} response.Envelope
// @Router /admin/assignments/bulk [post]
func (h *AdminHandler) BulkAssign(c *gin.Context) {
	var req models.BulkAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk payload"))
		return
	}

	created, failures, err := h.admin.BulkAssign(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"created": created, "failed": failures}, nil)
}

// Unassign godoc
// @Summary Deactivate a coach-student assignment
// @Tags Admin
// @Produce json
// @Param id path string true "coachID:studentID pair"
// @Success 204
// @Router /admin/assignments/{id} [delete]
func (h *AdminHandler) Unassign(c *gin.Context) {
	coachID, studentID, ok := strings.Cut(c.Param("id"), ":")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "assignment id must be coachID:studentID"))
		return
	}

	if err := h.admin.Unassign(c.Request.Context(), coachID, studentID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListUsers godoc
// @Summary List platform users
// @Tags Admin
// @Produce json
// @Param role query string false "Filter by role"
// @Param search query string false "Search by name or email"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var filter models.UserFilter
	if role := c.Query("role"); role != "" {
		r := models.UserRole(strings.ToUpper(role))
		filter.Role = &r
	}
	if active := c.Query("active"); active == "true" || active == "false" {
		v := active == "true"
		filter.Active = &v
	}
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	users, pagination, err := h.admin.ListUsers(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// Stats godoc
// @Summary Platform statistics
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
