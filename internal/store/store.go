package store

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by store implementations. Services translate
// these into the domain error taxonomy.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrUsernameTaken   = errors.New("username already taken")
)

// User represents a registered user.
type User struct {
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	JoinAt       time.Time
	LastLoginAt  time.Time
}

// Profile returns the public projection of the user.
func (u *User) Profile() *UserProfile {
	return &UserProfile{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}

// UserProfile is the credential-free projection of a user. It is the only
// user shape embedded in message listings and the user index.
type UserProfile struct {
	Username  string
	FirstName string
	LastName  string
	Phone     string
}

// Message represents a persisted direct message. FromUsername and ToUsername
// never change after creation; ReadAt is nil until the recipient marks the
// message read and immutable afterwards.
type Message struct {
	ID           int64
	FromUsername string
	ToUsername   string
	Body         string
	SentAt       time.Time
	ReadAt       *time.Time
}

// MessageDetail is a message with both party profiles attached.
type MessageDetail struct {
	Message
	FromUser *UserProfile
	ToUser   *UserProfile
}

// MailboxMessage is a message joined with the profile of the other party:
// the sender for inbox listings, the recipient for outbox listings.
type MailboxMessage struct {
	ID     int64
	Body   string
	SentAt time.Time
	ReadAt *time.Time
	Peer   *UserProfile
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser inserts a new user record. Returns ErrUsernameTaken if the
	// username already exists; uniqueness is enforced by the store so that
	// concurrent registrations cannot both succeed.
	CreateUser(ctx context.Context, user *User) error

	// GetUserByUsername retrieves a full user record including the password
	// hash. Returns ErrUserNotFound if absent.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// UserExists reports whether a username is registered.
	UserExists(ctx context.Context, username string) (bool, error)

	// ListUsers returns public profiles of all users ordered by username.
	ListUsers(ctx context.Context) ([]*UserProfile, error)

	// TouchLastLogin overwrites last_login_at for the user. Returns
	// ErrUserNotFound if absent.
	TouchLastLogin(ctx context.Context, username string, at time.Time) error
}

// MessageStore handles message persistence.
type MessageStore interface {
	// CreateMessage inserts a message and assigns its ID.
	CreateMessage(ctx context.Context, msg *Message) error

	// GetMessage retrieves a message with both party profiles. Returns
	// ErrMessageNotFound if the id is unknown.
	GetMessage(ctx context.Context, id int64) (*MessageDetail, error)

	// MarkMessageRead sets read_at only if it is currently null, so the
	// operation is safe under concurrent invocation. The returned message
	// always carries the stored read_at. Returns ErrMessageNotFound if the
	// id is unknown.
	MarkMessageRead(ctx context.Context, id int64, at time.Time) (*Message, error)

	// MessagesTo returns all messages addressed to the user, each joined
	// with the sender profile in a single query.
	MessagesTo(ctx context.Context, username string) ([]*MailboxMessage, error)

	// MessagesFrom returns all messages sent by the user, each joined with
	// the recipient profile in a single query.
	MessagesFrom(ctx context.Context, username string) ([]*MailboxMessage, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
