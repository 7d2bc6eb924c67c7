package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// tokenBytes is the entropy of a session token; hex-encoded to 64 characters.
const tokenBytes = 32

// Store is the persistence interface the service depends on.
type Store interface {
	Insert(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	GetUserID(ctx context.Context, token string) (int64, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) error
}

// Service issues, resolves, and destroys login sessions.
type Service struct {
	repo Store
	ttl  time.Duration
}

// NewService creates a session Service. ttl bounds how long a token resolves.
func NewService(repo Store, ttl time.Duration) *Service {
	return &Service{repo: repo, ttl: ttl}
}

// Create allocates an unguessable token bound to the user id.
func (s *Service) Create(ctx context.Context, userID int64) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	if err := s.repo.Insert(ctx, token, userID, time.Now().Add(s.ttl)); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the user id bound to the token, or ErrNotFound when the
// token is unknown or expired.
func (s *Service) Resolve(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrNotFound
	}
	return s.repo.GetUserID(ctx, token)
}

// Destroy invalidates the token immediately. Idempotent: destroying a
// non-existent session is not an error.
func (s *Service) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := s.repo.Delete(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// PurgeExpired removes sessions past their expiry so the table stays small.
func (s *Service) PurgeExpired(ctx context.Context) error {
	return s.repo.DeleteExpired(ctx)
}

// generateToken returns a cryptographically random hex token.
func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
