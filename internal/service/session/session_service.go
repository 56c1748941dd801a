// Package session authenticates callers: it issues, resolves and revokes
// the opaque tokens that identify a Principal.
package session

import (
	"context"
	"strings"

	"github.com/Domenick1991/skybooking/internal/access"
	"github.com/Domenick1991/skybooking/internal/auth"
	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/logging"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/Domenick1991/skybooking/internal/service"
	"github.com/sirupsen/logrus"
)

const msgInvalidCredentials = "are invalid"

type SessionUseCase interface {
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Logout(ctx context.Context, p domain.Principal) error
	Authenticate(ctx context.Context, token string) (domain.Principal, error)
}

type SessionService struct {
	users    repository.UserRepository
	store    repository.Store
	hasher   auth.Hasher
	newToken func() string
	log      logrus.FieldLogger
}

type SessionServiceOption func(*SessionService)

func WithHasher(h auth.Hasher) SessionServiceOption {
	return func(s *SessionService) {
		s.hasher = h
	}
}

func WithLogger(log logrus.FieldLogger) SessionServiceOption {
	return func(s *SessionService) {
		s.log = log
	}
}

func NewSessionService(store repository.Store, opts ...SessionServiceOption) *SessionService {
	s := &SessionService{
		users:    store.Users(),
		store:    store,
		hasher:   auth.NewHasher(0),
		newToken: auth.NewToken,
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login returns the user, carrying their current token, when the
// credentials match. An unknown email and a wrong password fail alike.
func (s *SessionService) Login(ctx context.Context, email, password string) (_ *domain.User, err error) {
	ctx, done := service.Track(ctx, s.log, "login")
	defer func() { done(err) }()

	invalid := domain.Invalid(domain.FieldErrors{"credentials": {msgInvalidCredentials}})

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, invalid
		}
		return nil, err
	}
	if !s.hasher.Matches(user.PasswordDigest, password) {
		return nil, invalid
	}
	return user, nil
}

// Logout regenerates the caller's token, which revokes the old one. A
// colliding token is replaced in a fresh transaction, since a unique
// violation aborts the one it happened in.
func (s *SessionService) Logout(ctx context.Context, p domain.Principal) (err error) {
	ctx, done := service.Track(ctx, s.log, "logout")
	defer func() { done(err) }()

	if err := access.Authorize(p, access.ActionLogout, access.Owned(p.ID)).Err(); err != nil {
		return err
	}
	for attempt := 1; ; attempt++ {
		err = s.store.InTx(ctx, func(tx repository.Repositories) error {
			user, err := tx.Users().GetByID(ctx, p.ID)
			if err != nil {
				return err
			}
			user.Token = s.newToken()
			return tx.Users().Update(ctx, user)
		})
		if !auth.TokenCollision(err) || attempt == auth.TokenAttempts {
			return err
		}
		s.log.WithField("attempt", attempt).Warn("session token collided, regenerating")
	}
}

// Authenticate maps a token to its Principal. A missing or unknown token
// is ErrUnauthenticated.
func (s *SessionService) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Anonymous(), domain.ErrUnauthenticated
	}
	user, err := s.users.GetByToken(ctx, token)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.Anonymous(), domain.ErrUnauthenticated
		}
		return domain.Anonymous(), err
	}
	return user.Principal(), nil
}

var _ SessionUseCase = (*SessionService)(nil)
