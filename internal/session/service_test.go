package session

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	rows map[string]row
}

type row struct {
	userID    int64
	expiresAt time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]row)}
}

func (f *fakeStore) Insert(_ context.Context, token string, userID int64, expiresAt time.Time) error {
	f.rows[token] = row{userID: userID, expiresAt: expiresAt}
	return nil
}

func (f *fakeStore) GetUserID(_ context.Context, token string) (int64, error) {
	r, ok := f.rows[token]
	if !ok || !r.expiresAt.After(time.Now()) {
		return 0, ErrNotFound
	}
	return r.userID, nil
}

func (f *fakeStore) Delete(_ context.Context, token string) error {
	delete(f.rows, token)
	return nil
}

func (f *fakeStore) DeleteExpired(_ context.Context) error {
	for token, r := range f.rows {
		if !r.expiresAt.After(time.Now()) {
			delete(f.rows, token)
		}
	}
	return nil
}

var tokenPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestService_CreateIssuesOpaqueTokens(t *testing.T) {
	svc := NewService(newFakeStore(), time.Hour)

	first, err := svc.Create(context.Background(), 1)
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), 1)
	require.NoError(t, err)

	assert.Regexp(t, tokenPattern, first)
	assert.Regexp(t, tokenPattern, second)
	assert.NotEqual(t, first, second)
}

func TestService_ResolveBoundUser(t *testing.T) {
	svc := NewService(newFakeStore(), time.Hour)

	token, err := svc.Create(context.Background(), 42)
	require.NoError(t, err)

	userID, err := svc.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)

	_, err = svc.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Resolve(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_ExpiredSessionDoesNotResolve(t *testing.T) {
	svc := NewService(newFakeStore(), -time.Minute)

	token, err := svc.Create(context.Background(), 7)
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_DestroyIsIdempotent(t *testing.T) {
	svc := NewService(newFakeStore(), time.Hour)

	token, err := svc.Create(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, svc.Destroy(context.Background(), token))
	_, err = svc.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrNotFound)

	// Destroying again, or destroying something that never existed, is fine.
	assert.NoError(t, svc.Destroy(context.Background(), token))
	assert.NoError(t, svc.Destroy(context.Background(), "never-issued"))
	assert.NoError(t, svc.Destroy(context.Background(), ""))
}

func TestService_PurgeExpired(t *testing.T) {
	store := newFakeStore()
	expired := NewService(store, -time.Minute)
	active := NewService(store, time.Hour)

	_, err := expired.Create(context.Background(), 1)
	require.NoError(t, err)
	keep, err := active.Create(context.Background(), 2)
	require.NoError(t, err)

	require.NoError(t, active.PurgeExpired(context.Background()))
	assert.Len(t, store.rows, 1)

	userID, err := active.Resolve(context.Background(), keep)
	require.NoError(t, err)
	assert.Equal(t, int64(2), userID)
}
