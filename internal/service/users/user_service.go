package users

import (
	"context"

	"github.com/Domenick1991/skybooking/internal/access"
	"github.com/Domenick1991/skybooking/internal/auth"
	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/logging"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/Domenick1991/skybooking/internal/service"
	"github.com/sirupsen/logrus"
)

const (
	msgConfirmation = "doesn't match password"
	msgTooLong      = "is too long (maximum is 72 characters)"
)

type UserUseCase interface {
	List(ctx context.Context, p domain.Principal) ([]domain.User, error)
	GetByID(ctx context.Context, p domain.Principal, id int64) (*domain.User, error)
	CreateUser(ctx context.Context, p domain.Principal, input UserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, p domain.Principal, id int64, input UserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, p domain.Principal, id int64) error
	ChangePassword(ctx context.Context, p domain.Principal, id int64, password, confirmation string) error
}

// UserInput carries the attributes a command sets; nil fields are left
// unchanged. Role is privileged.
type UserInput struct {
	Email                *string
	FirstName            *string
	LastName             *string
	Password             *string
	PasswordConfirmation *string
	Role                 *domain.Role
}

func (in UserInput) apply(u *domain.User) {
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
}

type UserService struct {
	store  repository.Store
	hasher auth.Hasher
	log    logrus.FieldLogger
}

type UserServiceOption func(*UserService)

func WithHasher(h auth.Hasher) UserServiceOption {
	return func(s *UserService) {
		s.hasher = h
	}
}

func WithLogger(log logrus.FieldLogger) UserServiceOption {
	return func(s *UserService) {
		s.log = log
	}
}

func NewUserService(store repository.Store, opts ...UserServiceOption) *UserService {
	s := &UserService{
		store:  store,
		hasher: auth.NewHasher(0),
		log:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *UserService) List(ctx context.Context, p domain.Principal) ([]domain.User, error) {
	scope, err := access.ListScope(p, access.ActionListUsers)
	if err != nil {
		return nil, err
	}
	return s.store.Users().List(ctx, repository.UserFilter{ID: scope.OwnerID})
}

func (s *UserService) GetByID(ctx context.Context, p domain.Principal, id int64) (*domain.User, error) {
	if err := access.Authorize(p, access.ActionViewUser, access.Owned(id)).Err(); err != nil {
		return nil, err
	}
	return s.store.Users().GetByID(ctx, id)
}

// CreateUser signs a user up. Anybody may, but only admins may pick a role.
func (s *UserService) CreateUser(ctx context.Context, p domain.Principal, input UserInput) (_ *domain.User, err error) {
	ctx, done := service.Track(ctx, s.log, "create_user")
	defer func() { done(err) }()

	target := access.Target{}
	if input.Role != nil && *input.Role != domain.RoleStandard {
		target.Privileged = []string{"role"}
	}
	if err := access.Authorize(p, access.ActionCreateUser, target).Err(); err != nil {
		return nil, err
	}

	var user domain.User
	input.apply(&user)
	errs := user.Validate()
	if input.Password == nil || *input.Password == "" {
		errs.Add("password", domain.MsgBlank)
	}
	errs.Merge(checkPassword(input.Password, input.PasswordConfirmation))
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if user.PasswordDigest, err = s.hasher.Hash(*input.Password); err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		user.Token = auth.NewToken()
		err = s.store.Users().Create(ctx, &user)
		if !auth.TokenCollision(err) || attempt == auth.TokenAttempts {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("user created")
	return &user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, p domain.Principal, id int64, input UserInput) (_ *domain.User, err error) {
	ctx, done := service.Track(ctx, s.log, "update_user")
	defer func() { done(err) }()

	if !p.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	var updated domain.User
	err = s.store.InTx(ctx, func(tx repository.Repositories) error {
		current, err := tx.Users().GetByID(ctx, id)
		if err != nil {
			return err
		}
		target := access.Owned(current.ID)
		if input.Role != nil && *input.Role != current.Role {
			target.Privileged = []string{"role"}
		}
		if err := access.Authorize(p, access.ActionUpdateUser, target).Err(); err != nil {
			return err
		}

		candidate := *current
		input.apply(&candidate)
		errs := candidate.Validate()
		if input.Password != nil {
			errs.Merge(checkPassword(input.Password, input.PasswordConfirmation))
		}
		if err := errs.Err(); err != nil {
			return err
		}
		if input.Password != nil && *input.Password != "" {
			if candidate.PasswordDigest, err = s.hasher.Hash(*input.Password); err != nil {
				return err
			}
		}
		if err := tx.Users().Update(ctx, &candidate); err != nil {
			return err
		}
		updated = candidate
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithField("user_id", id).Info("user updated")
	return &updated, nil
}

// DeleteUser removes the user along with every booking they hold.
func (s *UserService) DeleteUser(ctx context.Context, p domain.Principal, id int64) (err error) {
	ctx, done := service.Track(ctx, s.log, "delete_user")
	defer func() { done(err) }()

	if err := access.Authorize(p, access.ActionDeleteUser, access.Owned(id)).Err(); err != nil {
		return err
	}
	if err := s.store.Users().Delete(ctx, id); err != nil {
		return err
	}

	s.log.WithField("user_id", id).Info("user deleted")
	return nil
}

func (s *UserService) ChangePassword(ctx context.Context, p domain.Principal, id int64, password, confirmation string) (err error) {
	ctx, done := service.Track(ctx, s.log, "change_password")
	defer func() { done(err) }()

	if err := access.Authorize(p, access.ActionChangePassword, access.Owned(id)).Err(); err != nil {
		return err
	}

	errs := checkPassword(&password, &confirmation)
	if password == "" {
		errs.Add("password", domain.MsgBlank)
	}
	if err := errs.Err(); err != nil {
		return err
	}
	digest, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	return s.store.InTx(ctx, func(tx repository.Repositories) error {
		user, err := tx.Users().GetByID(ctx, id)
		if err != nil {
			return err
		}
		user.PasswordDigest = digest
		return tx.Users().Update(ctx, user)
	})
}

// checkPassword validates a password against its confirmation. A nil
// confirmation skips the match.
func checkPassword(password, confirmation *string) domain.FieldErrors {
	errs := domain.FieldErrors{}
	if password == nil {
		return errs
	}
	if len(*password) > auth.MaxPasswordBytes {
		errs.Add("password", msgTooLong)
	}
	if confirmation != nil && *confirmation != *password {
		errs.Add("password_confirmation", msgConfirmation)
	}
	return errs
}

var _ UserUseCase = (*UserService)(nil)

