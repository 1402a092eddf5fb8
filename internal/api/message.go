package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"thriftit/backend/internal/service"
	"thriftit/backend/pkg/logger"
	"thriftit/backend/pkg/middleware"
)

// MessageHandler handles conversation history and inbox requests
type MessageHandler struct {
	messages *service.MessageService
	logger   *logger.Logger
}

func NewMessageHandler(messages *service.MessageService, logger *logger.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, logger: logger}
}

// Conversation returns the full pairwise history between the caller and the
// user in the path
func (h *MessageHandler) Conversation(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	otherID, err := parseIDParam(c, "userId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID must be a number"})
		return
	}

	history, err := h.messages.History(userID, otherID)
	if err != nil {
		switch err {
		case service.ErrSelfConversation:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("Error fetching conversation", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversation"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": history})
}

// Inbox returns the caller's aggregated conversation list
func (h *MessageHandler) Inbox(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	summaries, err := h.messages.ListConversations(userID)
	if err != nil {
		h.logger.Error("Error listing conversations", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list conversations"})
		return
	}

	conversations := make([]gin.H, 0, len(summaries))
	for _, s := range summaries {
		entry := gin.H{
			"user":         s.User,
			"unread_count": s.UnreadCount,
		}
		if s.LastMessage != nil {
			entry["last_message"] = gin.H{
				"content":   s.LastMessage.Content,
				"sender_id": s.LastMessage.SenderID,
				"timestamp": s.LastMessage.WireTimestamp(),
			}
		} else {
			entry["last_message"] = nil
		}
		conversations = append(conversations, entry)
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}
