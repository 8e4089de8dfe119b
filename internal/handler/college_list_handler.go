package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/narengee/c4c-api/internal/models"
	"github.com/narengee/c4c-api/internal/service"
	appErrors "github.com/narengee/c4c-api/pkg/errors"
	"github.com/narengee/c4c-api/pkg/response"
)

// CollegeListHandler exposes the student's working list and Kanban pipeline.
type CollegeListHandler struct {
	lists  *service.CollegeListService
	access *service.AccessService
}

// NewCollegeListHandler constructs CollegeListHandler.
func NewCollegeListHandler(lists *service.CollegeListService, access *service.AccessService) *CollegeListHandler {
	return &CollegeListHandler{lists: lists, access: access}
}

// List godoc
// @Summary List my colleges
// @Tags College List
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/me/colleges [get]
func (h *CollegeListHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	items, err := h.lists.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// ViewerList godoc
// @Summary List a student's colleges
// @Description Requires an active coach assignment or an accepted link to the student.
// @Tags College List
// @Produce json
// @Param studentID path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/{studentID}/colleges [get]
func (h *CollegeListHandler) ViewerList(c *gin.Context) {
	claims := claimsFromContext(c)
	studentID := c.Param("studentID")
	if err := h.access.CanViewStudent(c.Request.Context(), claims, studentID); err != nil {
		response.Error(c, err)
		return
	}

	items, err := h.lists.List(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Add godoc
// @Summary Add a college to my list
// @Tags College List
// @Accept json
// @Produce json
// @Param payload body models.AddCollegeRequest true "College payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/me/colleges [post]
func (h *CollegeListHandler) Add(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.AddCollegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid college payload"))
		return
	}

	item, err := h.lists.Add(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update a college entry
// @Tags College List
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param payload body models.UpdateCollegeRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Router /students/me/colleges/{id} [put]
func (h *CollegeListHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateCollegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid update payload"))
		return
	}

	item, err := h.lists.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// UpdateTasks godoc
// @Summary Replace the task checklist of an entry
// @Tags College List
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param payload body models.UpdateTasksRequest true "Tasks payload"
// @Success 200 {object} response.Envelope
// @Router /students/me/colleges/{id}/tasks [put]
func (h *CollegeListHandler) UpdateTasks(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid tasks payload"))
		return
	}

	item, err := h.lists.UpdateTasks(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Move godoc
// @Summary Move an entry on the Kanban board
// @Tags College List
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param payload body models.MoveCollegeRequest true "Move payload"
// @Success 200 {object} response.Envelope
// @Router /students/me/colleges/{id}/move [patch]
func (h *CollegeListHandler) Move(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.MoveCollegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid move payload"))
		return
	}

	item, err := h.lists.Move(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// ToggleFavorite godoc
// @Summary Toggle the favorite flag of an entry
// @Tags College List
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} response.Envelope
// @Router /students/me/colleges/{id}/favorite [patch]
func (h *CollegeListHandler) ToggleFavorite(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	item, err := h.lists.ToggleFavorite(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Remove a college from my list
// @Tags College List
// @Produce json
// @Param id path string true "Entry ID"
// @Success 204
// @Router /students/me/colleges/{id} [delete]
func (h *CollegeListHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.lists.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Stats godoc
// @Summary Pipeline statistics for my list
// @Tags College List
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/me/colleges/stats [get]
func (h *CollegeListHandler) Stats(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	stats, err := h.lists.Stats(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
