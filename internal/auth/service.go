package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/messagely/server/internal/directory"
	"github.com/messagely/server/internal/domain"
)

// Service provides authentication operations: registration and login both
// end with an issued session token.
type Service struct {
	directory *directory.Service
	issuer    *TokenIssuer
}

// NewService creates a new authentication service.
func NewService(dir *directory.Service, issuer *TokenIssuer) *Service {
	return &Service{
		directory: dir,
		issuer:    issuer,
	}
}

// Register creates a new user and returns a session token.
func (s *Service) Register(ctx context.Context, params directory.RegisterParams) (string, error) {
	user, err := s.directory.Register(ctx, params)
	if err != nil {
		return "", err
	}

	token, err := s.issuer.Issue(user.Username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return token, nil
}

// Login validates credentials, refreshes the login timestamp and returns a
// session token. The timestamp is only touched after the password check
// succeeds.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	if err := s.directory.Authenticate(ctx, username, password); err != nil {
		// Unknown usernames answer the same way as bad passwords so the
		// login surface does not reveal which usernames exist.
		var domainErr *domain.Error
		if errors.As(err, &domainErr) && domainErr.Code == domain.CodeNotFound {
			return "", domain.InvalidCredential()
		}
		return "", err
	}

	if err := s.directory.TouchLogin(ctx, username); err != nil {
		return "", err
	}

	token, err := s.issuer.Issue(username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return token, nil
}

// VerifyToken validates a session token and returns its claims.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	return s.issuer.Verify(tokenString)
}
