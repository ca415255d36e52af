// Package policy holds the authorization rules gating ledger and directory
// operations by acting identity. Every rule is a pure decision over the
// acting username and the resource; there is no admin override.
package policy

import (
	"github.com/messagely/server/internal/domain"
	"github.com/messagely/server/internal/store"
)

// CanReadMessage allows only the sender or the recipient to read a message.
func CanReadMessage(actor string, msg *store.MessageDetail) error {
	if actor == msg.FromUsername || actor == msg.ToUsername {
		return nil
	}
	return domain.Unauthorized()
}

// CanMarkRead allows only the recipient to mark a message read. The sender
// may not mark their own sent message.
func CanMarkRead(actor string, msg *store.MessageDetail) error {
	if actor == msg.ToUsername {
		return nil
	}
	return domain.Unauthorized()
}

// CanAccessMailbox allows a user to access only their own profile, inbox
// and outbox.
func CanAccessMailbox(actor, owner string) error {
	if actor == owner {
		return nil
	}
	return domain.Unauthorized()
}
