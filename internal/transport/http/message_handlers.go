package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/messagely/server/internal/domain"
	"github.com/messagely/server/internal/ledger"
	"github.com/messagely/server/internal/policy"
)

// MessageHandlers provides HTTP handlers for the message ledger.
type MessageHandlers struct {
	ledger *ledger.Service
	log    *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(led *ledger.Service, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		ledger: led,
		log:    logger,
	}
}

// SendMessageRequest represents the message creation request body. The
// sender is always the token identity, never part of the body.
type SendMessageRequest struct {
	ToUsername string `json:"to_username" binding:"required"`
	Body       string `json:"body" binding:"required"`
}

func messageID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, domain.BadRequest("invalid message id")
	}
	return id, nil
}

// Get handles fetching a message. Only the sender or the recipient may
// read it.
// GET /messages/:id
func (h *MessageHandlers) Get(c *gin.Context) {
	id, err := messageID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	detail, err := h.ledger.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := policy.CanReadMessage(actingUsername(c), detail); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": toMessageDetail(detail)})
}

// Send handles message creation.
// POST /messages/
func (h *MessageHandlers) Send(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid send message request")
		respondError(c, h.log, domain.BadRequest("invalid request body"))
		return
	}

	from := actingUsername(c)
	msg, err := h.ledger.Create(c.Request.Context(), from, req.ToUsername, req.Body)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info().
		Str("from", msg.FromUsername).
		Str("to", msg.ToUsername).
		Int64("message_id", msg.ID).
		Msg("message sent")
	c.JSON(http.StatusCreated, gin.H{"message": SentMessage{
		ID:           msg.ID,
		FromUsername: msg.FromUsername,
		ToUsername:   msg.ToUsername,
		Body:         msg.Body,
		SentAt:       msg.SentAt,
	}})
}

// MarkRead handles marking a message as read. Only the recipient may do
// this; re-marking is an idempotent no-op.
// POST /messages/:id/read
func (h *MessageHandlers) MarkRead(c *gin.Context) {
	id, err := messageID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	detail, err := h.ledger.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := policy.CanMarkRead(actingUsername(c), detail); err != nil {
		respondError(c, h.log, err)
		return
	}

	msg, err := h.ledger.MarkRead(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info().Int64("message_id", msg.ID).Str("reader", msg.ToUsername).Msg("message marked read")
	c.JSON(http.StatusOK, gin.H{"message": ReadReceipt{ID: msg.ID, ReadAt: msg.ReadAt}})
}
