package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/narengee/c4c-api/internal/models"
	"github.com/narengee/c4c-api/internal/service"
	appErrors "github.com/narengee/c4c-api/pkg/errors"
	"github.com/narengee/c4c-api/pkg/response"
)

// ChatHandler exposes the coach AI assistant endpoint.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler constructs ChatHandler.
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Chat godoc
// @Summary Ask the coach assistant
// @Description Answers caseload questions grounded in the coach's portfolio.
// @Tags Coach
// @Accept json
// @Produce json
// @Param payload body models.ChatRequest true "Chat turn"
// @Success 200 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /coach/ai-chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid chat payload"))
		return
	}

	res, err := h.chat.Chat(c.Request.Context(), claims.UserID, claims.FullName, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
