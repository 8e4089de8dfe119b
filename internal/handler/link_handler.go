package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/narengee/c4c-api/internal/models"
	"github.com/narengee/c4c-api/internal/service"
	appErrors "github.com/narengee/c4c-api/pkg/errors"
	"github.com/narengee/c4c-api/pkg/response"
)

// LinkHandler exposes parent invitation and account-linking endpoints.
type LinkHandler struct {
	links *service.LinkService
}

// NewLinkHandler constructs LinkHandler.
func NewLinkHandler(links *service.LinkService) *LinkHandler {
	return &LinkHandler{links: links}
}

// Invite godoc
// @Summary Invite a parent or guardian
// @Tags Links
// @Accept json
// @Produce json
// @Param payload body models.InviteParentRequest true "Invitation payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /links/invitations [post]
func (h *LinkHandler) Invite(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.InviteParentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid invitation payload"))
		return
	}

	token, err := h.links.Invite(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, token)
}

// Validate godoc
// @Summary Validate an invitation token
// @Description Public endpoint backing the invitation signup page.
// @Tags Links
// @Produce json
// @Param token query string true "Invitation token"
// @Success 200 {object} response.Envelope
// @Router /invitations/validate [get]
func (h *LinkHandler) Validate(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}

	res, err := h.links.Validate(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Accept godoc
// @Summary Accept an invitation
// @Description Creates the invited account (or signs in an existing one) and links it to the student.
// @Tags Links
// @Accept json
// @Produce json
// @Param payload body models.AcceptInvitationRequest true "Accept payload"
// @Success 200 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /invitations/accept [post]
func (h *LinkHandler) Accept(c *gin.Context) {
	var req models.AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid accept payload"))
		return
	}

	res, err := h.links.Accept(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Cancel godoc
// @Summary Cancel a pending invitation
// @Tags Links
// @Produce json
// @Param id path string true "Invitation ID"
// @Success 204
// @Router /links/invitations/{id} [delete]
func (h *LinkHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.links.Cancel(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Resend godoc
// @Summary Resend a pending invitation
// @Description Extends the expiry and sends the email again.
// @Tags Links
// @Produce json
// @Param id path string true "Invitation ID"
// @Success 204
// @Router /links/invitations/{id}/resend [post]
func (h *LinkHandler) Resend(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.links.Resend(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Pending godoc
// @Summary List my pending invitations
// @Tags Links
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /links/invitations [get]
func (h *LinkHandler) Pending(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	tokens, err := h.links.Pending(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tokens, nil)
}

// LinkedUsers godoc
// @Summary List accounts linked to me
// @Tags Links
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /links/users [get]
func (h *LinkHandler) LinkedUsers(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	users, err := h.links.LinkedUsers(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, nil)
}

// Students godoc
// @Summary List students linked to my account
// @Description Parent dashboard entry point.
// @Tags Links
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /links/students [get]
func (h *LinkHandler) Students(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	students, err := h.links.StudentsForParent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}
