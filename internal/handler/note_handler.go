package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/narengee/c4c-api/internal/models"
	"github.com/narengee/c4c-api/internal/service"
	appErrors "github.com/narengee/c4c-api/pkg/errors"
	"github.com/narengee/c4c-api/pkg/response"
)

// NoteHandler exposes coach note and student reply endpoints.
type NoteHandler struct {
	notes *service.NoteService
}

// NewNoteHandler constructs NoteHandler.
func NewNoteHandler(notes *service.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// CreateForStudent godoc
// @Summary Write a note about an assigned student
// @Tags Notes
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.CreateNoteRequest true "Note payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /coach/students/{id}/notes [post]
func (h *NoteHandler) CreateForStudent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid note payload"))
		return
	}

	note, err := h.notes.Create(c.Request.Context(), claims.UserID, claims.Role, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, note)
}

// ListForStudent godoc
// @Summary List notes about an assigned student
// @Tags Notes
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /coach/students/{id}/notes [get]
func (h *NoteHandler) ListForStudent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	notes, err := h.notes.List(c.Request.Context(), claims.UserID, claims.Role, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notes, nil)
}

// MyNotes godoc
// @Summary List notes shared with me
// @Tags Notes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/me/notes [get]
func (h *NoteHandler) MyNotes(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	notes, err := h.notes.List(c.Request.Context(), claims.UserID, claims.Role, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notes, nil)
}

// Reply godoc
// @Summary Reply to a shared note
// @Tags Notes
// @Accept json
// @Produce json
// @Param id path string true "Parent note ID"
// @Param payload body models.CreateNoteRequest true "Reply payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/me/notes/{id}/reply [post]
func (h *NoteHandler) Reply(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reply payload"))
		return
	}
	parentID := c.Param("id")
	req.ParentNoteID = &parentID

	note, err := h.notes.Create(c.Request.Context(), claims.UserID, claims.Role, claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, note)
}

// Delete godoc
// @Summary Delete one of my notes
// @Tags Notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 204
// @Router /coach/notes/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.notes.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
