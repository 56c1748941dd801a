package repository

import (
	"context"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, first_name, last_name, password_digest, token, role, created_at, updated_at`

type PGUserRepository struct {
	db dbtx
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordDigest, &u.Token, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	// Unknown stored roles degrade to a standard user.
	u.Role, _ = domain.ParseRole(role)
	return &u, nil
}

func (r *PGUserRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if filter.ID != 0 {
		rows, err = r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, filter.ID)
	} else {
		rows, err = r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	}
	if err != nil {
		return nil, mapError("user", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError("user", err)
		}
		users = append(users, *u)
	}
	return users, mapError("user", rows.Err())
}

func (r *PGUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	return u, mapError("user", err)
}

func (r *PGUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email)=lower($1)`, email))
	return u, mapError("user", err)
}

func (r *PGUserRepository) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE token=$1`, token))
	return u, mapError("user", err)
}

func (r *PGUserRepository) Create(ctx context.Context, user *domain.User) error {
	err := r.db.QueryRow(ctx, `INSERT INTO users (email, first_name, last_name, password_digest, token, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		user.Email, user.FirstName, user.LastName, user.PasswordDigest, user.Token, string(user.Role)).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return mapError("user", err)
}

func (r *PGUserRepository) Update(ctx context.Context, user *domain.User) error {
	err := r.db.QueryRow(ctx, `UPDATE users
		SET email=$1, first_name=$2, last_name=$3, password_digest=$4, token=$5, role=$6, updated_at=now()
		WHERE id=$7
		RETURNING created_at, updated_at`,
		user.Email, user.FirstName, user.LastName, user.PasswordDigest, user.Token, string(user.Role), user.ID).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	return mapError("user", err)
}

func (r *PGUserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return mapError("user", err)
	}
	return requireAffected("user", tag)
}

var _ UserRepository = (*PGUserRepository)(nil)
