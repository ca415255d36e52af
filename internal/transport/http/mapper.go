package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/messagely/server/internal/domain"
	"github.com/messagely/server/internal/store"
)

// ErrorResponse is the uniform error body: {"error": {"message": "..."}}.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the error kind and human-readable message.
type ErrorBody struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// respondError maps a domain error to its HTTP status and uniform body.
// Anything outside the taxonomy is logged and answered with a bare 500.
func respondError(c *gin.Context, logger *zerolog.Logger, err error) {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		c.JSON(domainErr.Status, ErrorResponse{Error: ErrorBody{
			Code:    domainErr.Code,
			Message: domainErr.Message,
		}})
		return
	}

	logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: ErrorBody{
		Message: "internal server error",
	}})
}

// UserSummary is the credential-free user projection used in listings and
// message joins.
type UserSummary struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// UserDetail extends UserSummary with the timestamps of the full profile.
type UserDetail struct {
	UserSummary
	JoinAt      time.Time `json:"join_at"`
	LastLoginAt time.Time `json:"last_login_at"`
}

// SentMessage is the creation response payload.
type SentMessage struct {
	ID           int64     `json:"id"`
	FromUsername string    `json:"from_username"`
	ToUsername   string    `json:"to_username"`
	Body         string    `json:"body"`
	SentAt       time.Time `json:"sent_at"`
}

// MessageDetail is the full message payload with both party profiles.
type MessageDetail struct {
	ID       int64       `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
	FromUser UserSummary `json:"from_user"`
	ToUser   UserSummary `json:"to_user"`
}

// InboxMessage is a received message annotated with the sender profile.
type InboxMessage struct {
	ID       int64       `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
	FromUser UserSummary `json:"from_user"`
}

// OutboxMessage is a sent message annotated with the recipient profile.
type OutboxMessage struct {
	ID     int64       `json:"id"`
	Body   string      `json:"body"`
	SentAt time.Time   `json:"sent_at"`
	ReadAt *time.Time  `json:"read_at"`
	ToUser UserSummary `json:"to_user"`
}

// ReadReceipt is the mark-read response payload.
type ReadReceipt struct {
	ID     int64      `json:"id"`
	ReadAt *time.Time `json:"read_at"`
}

func toUserSummary(p *store.UserProfile) UserSummary {
	return UserSummary{
		Username:  p.Username,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
	}
}

func toUserDetail(u *store.User) UserDetail {
	return UserDetail{
		UserSummary: toUserSummary(u.Profile()),
		JoinAt:      u.JoinAt,
		LastLoginAt: u.LastLoginAt,
	}
}

func toMessageDetail(m *store.MessageDetail) MessageDetail {
	return MessageDetail{
		ID:       m.ID,
		Body:     m.Body,
		SentAt:   m.SentAt,
		ReadAt:   m.ReadAt,
		FromUser: toUserSummary(m.FromUser),
		ToUser:   toUserSummary(m.ToUser),
	}
}

func toInboxMessages(msgs []*store.MailboxMessage) []InboxMessage {
	out := make([]InboxMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, InboxMessage{
			ID:       m.ID,
			Body:     m.Body,
			SentAt:   m.SentAt,
			ReadAt:   m.ReadAt,
			FromUser: toUserSummary(m.Peer),
		})
	}
	return out
}

func toOutboxMessages(msgs []*store.MailboxMessage) []OutboxMessage {
	out := make([]OutboxMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, OutboxMessage{
			ID:     m.ID,
			Body:   m.Body,
			SentAt: m.SentAt,
			ReadAt: m.ReadAt,
			ToUser: toUserSummary(m.Peer),
		})
	}
	return out
}
