package session

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/skybooking/internal/auth"
	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var hasher = auth.NewHasher(bcrypt.MinCost)

func seedUser(t *testing.T, store repository.Store, email, password string, role domain.Role) *domain.User {
	t.Helper()
	digest, err := hasher.Hash(password)
	require.NoError(t, err)
	u := &domain.User{Email: email, FirstName: "Ana", PasswordDigest: digest, Token: auth.NewToken(), Role: role}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func credentialsRejected(t *testing.T, err error) {
	t.Helper()
	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CodeValidationFailed, derr.Code)
	assert.Equal(t, []string{msgInvalidCredentials}, derr.Fields["credentials"])
}

func TestSessionService_Login(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewSessionService(store, WithHasher(hasher))
	ctx := context.Background()
	ana := seedUser(t, store, "ana@example.com", "correct horse", domain.RoleStandard)

	u, err := svc.Login(ctx, " ANA@example.com ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, u.ID)
	assert.Equal(t, ana.Token, u.Token)

	_, err = svc.Login(ctx, "ana@example.com", "wrong")
	credentialsRejected(t, err)

	_, err = svc.Login(ctx, "nobody@example.com", "correct horse")
	credentialsRejected(t, err)
}

func TestSessionService_Authenticate(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewSessionService(store, WithHasher(hasher))
	ctx := context.Background()
	admin := seedUser(t, store, "admin@example.com", "pw", domain.RoleAdmin)

	p, err := svc.Authenticate(ctx, admin.Token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, p.ID)
	assert.True(t, p.IsAdmin())

	for _, token := range []string{"", "   ", "deadbeef"} {
		p, err := svc.Authenticate(ctx, token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated, token)
		assert.False(t, p.Authenticated())
	}
}

func TestSessionService_LogoutRevokesToken(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewSessionService(store, WithHasher(hasher))
	ctx := context.Background()
	ana := seedUser(t, store, "ana@example.com", "pw", domain.RoleStandard)

	require.NoError(t, svc.Logout(ctx, ana.Principal()))

	_, err := svc.Authenticate(ctx, ana.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	u, err := svc.Login(ctx, "ana@example.com", "pw")
	require.NoError(t, err)
	assert.NotEqual(t, ana.Token, u.Token)
	assert.Len(t, u.Token, auth.TokenLength)

	p, err := svc.Authenticate(ctx, u.Token)
	require.NoError(t, err)
	assert.Equal(t, ana.ID, p.ID)

	assert.ErrorIs(t, svc.Logout(ctx, domain.Anonymous()), domain.ErrUnauthenticated)
}

type failingUsers struct {
	repository.UserRepository
}

func (failingUsers) GetByToken(context.Context, string) (*domain.User, error) {
	return nil, errors.New("connection refused")
}

func TestSessionService_Authenticate_StoreFault(t *testing.T) {
	svc := NewSessionService(repository.NewMemoryStore())
	svc.users = failingUsers{}

	_, err := svc.Authenticate(context.Background(), "abc")
	assert.EqualError(t, err, "connection refused")
	assert.NotErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestSessionService_Logout_RegeneratesOnCollision(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewSessionService(store, WithHasher(hasher))
	ctx := context.Background()
	ana := seedUser(t, store, "ana@example.com", "pw", domain.RoleStandard)
	ivo := seedUser(t, store, "ivo@example.com", "pw", domain.RoleStandard)

	fresh := auth.NewToken()
	tokens := []string{ivo.Token, ivo.Token, fresh}
	svc.newToken = func() string {
		next := tokens[0]
		tokens = tokens[1:]
		return next
	}

	require.NoError(t, svc.Logout(ctx, ana.Principal()))
	assert.Empty(t, tokens)

	p, err := svc.Authenticate(ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, ana.ID, p.ID)

	p, err = svc.Authenticate(ctx, ivo.Token)
	require.NoError(t, err)
	assert.Equal(t, ivo.ID, p.ID)
}

func TestSessionService_Logout_GivesUpAfterRepeatedCollisions(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewSessionService(store, WithHasher(hasher))
	ctx := context.Background()
	ana := seedUser(t, store, "ana@example.com", "pw", domain.RoleStandard)
	ivo := seedUser(t, store, "ivo@example.com", "pw", domain.RoleStandard)

	calls := 0
	svc.newToken = func() string {
		calls++
		return ivo.Token
	}

	err := svc.Logout(ctx, ana.Principal())
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, auth.TokenCollision(err))
	assert.Equal(t, auth.TokenAttempts, calls)

	// The failed attempts left the old token in place.
	p, err := svc.Authenticate(ctx, ana.Token)
	require.NoError(t, err)
	assert.Equal(t, ana.ID, p.ID)
}
