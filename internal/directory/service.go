package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/messagely/server/internal/domain"
	"github.com/messagely/server/internal/store"
)

// PasswordHasher is the credential hashing capability injected into the
// directory. Compare must run in constant time.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashed, password string) error
}

// RegisterParams carries the fields required to create a user.
type RegisterParams struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// Service provides accessors over user records and their message
// projections. It owns the credential store contract: passwords enter as
// plaintext and are stored only as hashes.
type Service struct {
	store  store.Store
	hasher PasswordHasher
}

// New creates a user directory backed by the given store and hasher.
func New(st store.Store, hasher PasswordHasher) *Service {
	return &Service{
		store:  st,
		hasher: hasher,
	}
}

// Register creates a new user. Returns a Conflict error if the username is
// already taken; the store's uniqueness constraint guarantees exactly one
// of two concurrent registrations succeeds.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*store.User, error) {
	username := strings.TrimSpace(params.Username)
	if len(username) < 1 || len(username) > 32 {
		return nil, domain.BadRequest("username must be 1-32 characters")
	}
	if len(params.Password) < 6 {
		return nil, domain.BadRequest("password must be at least 6 characters")
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &store.User{
		Username:     username,
		PasswordHash: hash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Phone:        params.Phone,
		JoinAt:       now,
		LastLoginAt:  now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			return nil, domain.Conflict("username already taken")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Authenticate checks a username/password pair. Returns NotFound for an
// unknown username and InvalidCredential on hash mismatch.
func (s *Service) Authenticate(ctx context.Context, username, password string) error {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return domain.NotFound("user not found")
		}
		return fmt.Errorf("get user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return domain.InvalidCredential()
	}

	return nil
}

// TouchLogin overwrites the user's last_login_at with the current time.
func (s *Service) TouchLogin(ctx context.Context, username string) error {
	if err := s.store.TouchLastLogin(ctx, username, time.Now()); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return domain.NotFound("user not found")
		}
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

// List returns public profiles of all users ordered by username. Credential
// fields never leave the store on this path.
func (s *Service) List(ctx context.Context) ([]*store.UserProfile, error) {
	profiles, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return profiles, nil
}

// Get returns the full user record. Callers serialize it without the
// password hash.
func (s *Service) Get(ctx context.Context, username string) (*store.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domain.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Inbox returns all messages addressed to the user, each joined with the
// sender profile in a single store query.
func (s *Service) Inbox(ctx context.Context, username string) ([]*store.MailboxMessage, error) {
	messages, err := s.store.MessagesTo(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	return messages, nil
}

// Outbox returns all messages sent by the user, each joined with the
// recipient profile in a single store query.
func (s *Service) Outbox(ctx context.Context, username string) ([]*store.MailboxMessage, error) {
	messages, err := s.store.MessagesFrom(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list outbox: %w", err)
	}
	return messages, nil
}
