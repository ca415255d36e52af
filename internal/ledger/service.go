package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/messagely/server/internal/domain"
	"github.com/messagely/server/internal/store"
)

// Service is the authoritative ledger of message records. Visibility rules
// live in the policy package; the ledger only guarantees record integrity:
// a message's from/to identity never changes and read_at is set at most
// once.
type Service struct {
	store store.Store
}

// New creates a message ledger backed by the given store.
func New(st store.Store) *Service {
	return &Service{store: st}
}

// Create records a new message. Both parties must exist; unknown senders or
// recipients yield NotFound.
func (s *Service) Create(ctx context.Context, from, to, body string) (*store.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, domain.BadRequest("message body must not be empty")
	}

	for _, username := range []string{from, to} {
		exists, err := s.store.UserExists(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("check user %q: %w", username, err)
		}
		if !exists {
			return nil, domain.NotFound(fmt.Sprintf("user %q not found", username))
		}
	}

	msg := &store.Message{
		FromUsername: from,
		ToUsername:   to,
		Body:         body,
		SentAt:       time.Now(),
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domain.NotFound("user not found")
		}
		return nil, fmt.Errorf("create message: %w", err)
	}

	return msg, nil
}

// Get returns a message with both party profiles embedded.
func (s *Service) Get(ctx context.Context, id int64) (*store.MessageDetail, error) {
	detail, err := s.store.GetMessage(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrMessageNotFound) {
			return nil, domain.NotFound("message not found")
		}
		return nil, fmt.Errorf("get message: %w", err)
	}
	return detail, nil
}

// MarkRead sets the message's read_at timestamp. Marking an already-read
// message is an idempotent no-op that returns the original timestamp; the
// store's conditional update keeps concurrent calls from advancing the
// state twice.
func (s *Service) MarkRead(ctx context.Context, id int64) (*store.Message, error) {
	msg, err := s.store.MarkMessageRead(ctx, id, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrMessageNotFound) {
			return nil, domain.NotFound("message not found")
		}
		return nil, fmt.Errorf("mark message read: %w", err)
	}
	return msg, nil
}
