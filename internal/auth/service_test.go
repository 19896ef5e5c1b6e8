package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*User // keyed by email
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*User)}
}

func (f *fakeUserStore) Create(_ context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[u.Email]; exists {
		return ErrEmailTaken
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	if u.PreferredLanguage == "" {
		u.PreferredLanguage = "en"
	}
	copied := *u
	f.users[u.Email] = &copied
	return nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func newTestAuthService() *Service {
	return NewService(newFakeUserStore(), NewJWTManager(testJWTConfig()), nil, nil)
}

func TestService_Register(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, "Jane@Example.com", "long enough password", "Jane")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email, "email is normalized to lower case")
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "bearer", pair.TokenType)
	assert.Equal(t, int64(15*60), pair.ExpiresIn)

	// The issued access token identifies the new user
	claims, err := svc.JWT().ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
}

func TestService_Register_Validation(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "not-an-email", "long enough password", "")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, _, err = svc.Register(ctx, "jane@example.com", "short", "")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "jane@example.com", "long enough password", "")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "jane@example.com", "another password", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestService_Login(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	registered, _, err := svc.Register(ctx, "jane@example.com", "long enough password", "Jane")
	require.NoError(t, err)

	user, pair, err := svc.Login(ctx, "jane@example.com", "long enough password")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "jane@example.com", "long enough password", "")
	require.NoError(t, err)

	// Wrong password and unknown email return the same error
	_, _, err = svc.Login(ctx, "jane@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "long enough password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Refresh(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, "jane@example.com", "long enough password", "")
	require.NoError(t, err)

	fresh, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.JWT().ValidateAccessToken(fresh.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
}

func TestService_Refresh_RejectsAccessToken(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	_, pair, err := svc.Register(ctx, "jane@example.com", "long enough password", "")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
