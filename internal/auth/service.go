// Package auth handles account registration and session-based login.
package auth

import (
	"context"
	"fmt"
	"log"

	"github.com/galleria/service/internal/user"
)

// Credentials is the credential-store interface the service depends on.
type Credentials interface {
	Register(ctx context.Context, username, password string) (*user.User, error)
	Verify(ctx context.Context, username, password string) (*user.User, error)
}

// Sessions is the session-manager interface the service depends on.
type Sessions interface {
	Create(ctx context.Context, userID int64) (string, error)
	Destroy(ctx context.Context, token string) error
	PurgeExpired(ctx context.Context) error
}

// Service contains the business logic for registration, login, and logout.
type Service struct {
	users    Credentials
	sessions Sessions
}

// NewService creates a new auth Service.
func NewService(users Credentials, sessions Sessions) *Service {
	return &Service{users: users, sessions: sessions}
}

// Register creates a new account. Returns user.ErrDuplicateUsername when the
// username is taken.
func (s *Service) Register(ctx context.Context, username, password string) (*user.User, error) {
	return s.users.Register(ctx, username, password)
}

// Login verifies the credentials and issues a session token. Returns
// user.ErrInvalidCredentials for unknown usernames and wrong passwords alike.
func (s *Service) Login(ctx context.Context, username, password string) (string, *user.User, error) {
	u, err := s.users.Verify(ctx, username, password)
	if err != nil {
		return "", nil, err
	}

	token, err := s.sessions.Create(ctx, u.ID)
	if err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}

	// Opportunistic cleanup; login is rare enough that this stays cheap.
	if err := s.sessions.PurgeExpired(ctx); err != nil {
		log.Printf("auth: purge expired sessions: %v", err)
	}

	return token, u, nil
}

// Logout destroys the session. Idempotent: unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}
