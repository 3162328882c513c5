package handler

import (
	"net/http"
	"strconv"

	"bridge-go/internal/service"
	"bridge-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// MessageHandler serves direct messaging between residents and staff.
type MessageHandler struct {
	messageService service.MessageService
}

// NewMessageHandler creates a new MessageHandler instance.
func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// StartConversationRequest is the body for opening a thread.
type StartConversationRequest struct {
	StaffID   uint `json:"staffId" binding:"required"`
	ServiceID uint `json:"serviceId"`
}

// StartConversation opens a thread with a staff account.
func (h *MessageHandler) StartConversation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload: staffId is required"})
		return
	}

	conversation, err := h.messageService.StartConversation(user.ID, req.StaffID, req.ServiceID)
	if err != nil {
		log.Warnf("StartConversation: failed for user %d, error: %v", user.ID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "Conversation started", "data": conversation})
}

// ListConversations returns the current user's threads.
func (h *MessageHandler) ListConversations(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	conversations, err := h.messageService.ListConversations(user.ID)
	if err != nil {
		log.Errorf("ListConversations: failed for user %d, error: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list conversations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": conversations})
}

// SendMessageRequest is the body for posting a message.
type SendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// SendMessage appends a message to a thread.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	conversationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload: body is required"})
		return
	}

	message, err := h.messageService.SendMessage(uint(conversationID), user.ID, req.Body)
	if err != nil {
		log.Warnf("SendMessage: failed for user %d, error: %v", user.ID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "Message sent", "data": message})
}

// ListMessages returns a thread and marks the other party's messages read.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	conversationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	messages, err := h.messageService.ListMessages(uint(conversationID), user.ID)
	if err != nil {
		log.Warnf("ListMessages: failed for user %d, error: %v", user.ID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": messages})
}
