package policy

import (
	"errors"
	"testing"

	"github.com/messagely/server/internal/domain"
	"github.com/messagely/server/internal/store"
)

func testMessage() *store.MessageDetail {
	return &store.MessageDetail{
		Message: store.Message{
			ID:           1,
			FromUsername: "alice",
			ToUsername:   "bob",
			Body:         "hi",
		},
	}
}

func isUnauthorized(err error) bool {
	var domainErr *domain.Error
	return errors.As(err, &domainErr) && domainErr.Code == domain.CodeUnauthorized
}

func TestCanReadMessage(t *testing.T) {
	msg := testMessage()

	tests := []struct {
		actor   string
		allowed bool
	}{
		{"alice", true},
		{"bob", true},
		{"charlie", false},
		{"", false},
	}

	for _, tt := range tests {
		err := CanReadMessage(tt.actor, msg)
		if tt.allowed && err != nil {
			t.Errorf("actor %q: expected access, got %v", tt.actor, err)
		}
		if !tt.allowed && !isUnauthorized(err) {
			t.Errorf("actor %q: expected Unauthorized, got %v", tt.actor, err)
		}
	}
}

func TestCanMarkRead_RecipientOnly(t *testing.T) {
	msg := testMessage()

	if err := CanMarkRead("bob", msg); err != nil {
		t.Errorf("recipient: expected access, got %v", err)
	}

	// The sender may not mark their own sent message read.
	if err := CanMarkRead("alice", msg); !isUnauthorized(err) {
		t.Errorf("sender: expected Unauthorized, got %v", err)
	}
	if err := CanMarkRead("charlie", msg); !isUnauthorized(err) {
		t.Errorf("third party: expected Unauthorized, got %v", err)
	}
}

func TestCanAccessMailbox(t *testing.T) {
	if err := CanAccessMailbox("alice", "alice"); err != nil {
		t.Errorf("owner: expected access, got %v", err)
	}
	if err := CanAccessMailbox("alice", "bob"); !isUnauthorized(err) {
		t.Errorf("non-owner: expected Unauthorized, got %v", err)
	}
}
