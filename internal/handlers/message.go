package handlers

import (
	"net/http"
	"strconv"

	"dating-app/internal/services"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messages *services.MessageService
}

func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.CreateMessageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	message, err := h.messages.SendMessage(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

// GetMessages serves ?container=inbox|outbox|unread.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	container, present := c.GetQuery("container")
	if !present || container == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "container is required"})
		return
	}

	messages, err := h.messages.ListMessages(c.Request.Context(), userID, services.Container(container))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

func (h *MessageHandler) GetThread(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	messages, err := h.messages.GetThread(c.Request.Context(), userID, c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	messageID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	if err := h.messages.DeleteMessage(c.Request.Context(), userID, uint(messageID)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
