package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/monster-anshu/api-social-media/internal/chat"
	"github.com/monster-anshu/api-social-media/internal/store"
)

// ChatHandlers provides HTTP handlers for direct messaging.
type ChatHandlers struct {
	chat *chat.Service
	log  *zerolog.Logger
}

// NewChatHandlers creates a new chat handlers instance.
func NewChatHandlers(chatSvc *chat.Service, logger *zerolog.Logger) *ChatHandlers {
	return &ChatHandlers{
		chat: chatSvc,
		log:  logger,
	}
}

// SendMessageRequest represents the send message body.
type SendMessageRequest struct {
	Text string `json:"text" binding:"required,notblank"`
}

// MessageResponse represents a chat message in API responses.
type MessageResponse struct {
	ID        string `json:"id"`
	Sender    int64  `json:"sender"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

func toMessageResponse(m *store.ChatMessage) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Sender:    m.SenderID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Send delivers a direct message to user :id. A 201 acknowledges the
// durable append, not receipt by the recipient.
// POST /api/chat/:id
func (h *ChatHandlers) Send(c *gin.Context) {
	senderID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	recipientID, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid send message request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	msg, err := h.chat.Send(c.Request.Context(), senderID, recipientID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "message text is required"})
		case errors.Is(err, chat.ErrSelfMessage):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cannot send message to yourself"})
		case errors.Is(err, chat.ErrRecipientNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "recipient not found"})
		case errors.Is(err, chat.ErrStoreUnavailable):
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "message store unavailable"})
		default:
			h.log.Error().Err(err).Int64("sender_id", senderID).Msg("failed to send message")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, toMessageResponse(msg))
}

// History returns the conversation with user :id, oldest first by
// default. ?order=desc returns newest first.
// GET /api/chat/:id
func (h *ChatHandlers) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	otherID, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	newestFirst := c.Query("order") == "desc"

	messages, err := h.chat.History(c.Request.Context(), userID, otherID, newestFirst)
	if err != nil {
		if errors.Is(err, chat.ErrStoreUnavailable) {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "message store unavailable"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to load history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		response = append(response, toMessageResponse(m))
	}
	c.JSON(http.StatusOK, response)
}

// Partners lists everyone the user shares a conversation with.
// GET /api/chat/partners
func (h *ChatHandlers) Partners(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	partners, err := h.chat.Partners(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, chat.ErrStoreUnavailable) {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "message store unavailable"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to list partners")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]ProfileResponse, 0, len(partners))
	for _, p := range partners {
		response = append(response, toProfileResponse(p))
	}
	c.JSON(http.StatusOK, response)
}
