package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// uniqueFields maps unique indexes to the field they protect.
var uniqueFields = map[string]string{
	"companies_lower_name_key":       "name",
	"flights_company_lower_name_key": "name",
	"users_lower_email_key":          "email",
	"users_token_key":                "token",
}

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGStore struct {
	pool *pgxpool.Pool
	pgRepositories
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool, pgRepositories: pgRepositories{db: pool}}
}

func (s *PGStore) InTx(ctx context.Context, fn func(tx Repositories) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(pgRepositories{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type pgRepositories struct {
	db dbtx
}

func (r pgRepositories) Companies() CompanyRepository { return &PGCompanyRepository{db: r.db} }
func (r pgRepositories) Flights() FlightRepository    { return &PGFlightRepository{db: r.db} }
func (r pgRepositories) Bookings() BookingRepository  { return &PGBookingRepository{db: r.db} }
func (r pgRepositories) Users() UserRepository        { return &PGUserRepository{db: r.db} }

// mapError turns driver errors into domain errors where one applies.
func mapError(entity string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound(entity)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		field, ok := uniqueFields[pgErr.ConstraintName]
		if !ok {
			field = "base"
		}
		return domain.Conflict(field, err)
	}
	return fmt.Errorf("%s: %w", entity, err)
}

func requireAffected(entity string, tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return domain.NotFound(entity)
	}
	return nil
}

var _ Store = (*PGStore)(nil)
