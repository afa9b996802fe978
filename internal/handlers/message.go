package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/warbler-social/warbler/internal/middleware"
	"github.com/warbler-social/warbler/internal/services"
)

type MessageHandler struct {
	messageService *services.MessageService
	graphService   *services.GraphService
}

func NewMessageHandler(messageService *services.MessageService, graphService *services.GraphService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		graphService:   graphService,
	}
}

type postMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *MessageHandler) PostMessage(c *gin.Context) {
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, decision, err := h.messageService.Post(c.Request.Context(), middleware.CurrentUserID(c), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	if respondDecision(c, decision) {
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": message})
}

func (h *MessageHandler) GetMessage(c *gin.Context) {
	messageID, ok := parseID(c, "id")
	if !ok {
		return
	}

	message, err := h.messageService.GetByID(c.Request.Context(), messageID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	messageID, ok := parseID(c, "id")
	if !ok {
		return
	}

	decision, err := h.messageService.Delete(c.Request.Context(), middleware.CurrentUserID(c), messageID)
	if err != nil {
		respondError(c, err)
		return
	}
	if respondDecision(c, decision) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *MessageHandler) GetUserMessages(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	offset, limit := pagination(c)
	messages, err := h.messageService.GetByUserID(c.Request.Context(), userID, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *MessageHandler) ToggleLike(c *gin.Context) {
	messageID, ok := parseID(c, "id")
	if !ok {
		return
	}

	state, decision, err := h.graphService.ToggleLike(c.Request.Context(), middleware.CurrentUserID(c), messageID)
	if err != nil {
		respondError(c, err)
		return
	}
	if respondDecision(c, decision) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *MessageHandler) GetLikeCount(c *gin.Context) {
	messageID, ok := parseID(c, "id")
	if !ok {
		return
	}

	count, err := h.graphService.LikeCount(c.Request.Context(), messageID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
