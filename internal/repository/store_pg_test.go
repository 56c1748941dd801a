package repository

import (
	"errors"
	"testing"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPGStore(t *testing.T) {
	pool := &pgxpool.Pool{}
	store := NewPGStore(pool)
	assert.NotNil(t, store)
	assert.NotNil(t, store.Flights())
	assert.NotNil(t, store.Bookings())
	assert.NotNil(t, store.Companies())
	assert.NotNil(t, store.Users())
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError("flight", nil))
	assert.ErrorIs(t, mapError("flight", pgx.ErrNoRows), domain.ErrNotFound)

	dup := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "flights_company_lower_name_key"}
	err := mapError("flight", dup)
	require.ErrorIs(t, err, domain.ErrConflict)
	var derr *domain.Error
	require.True(t, errors.As(err, &derr))
	assert.Contains(t, derr.Fields, "name")

	boom := errors.New("connection reset")
	err = mapError("booking", boom)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestSchemaDeclaresUniqueIndexes(t *testing.T) {
	for name := range uniqueFields {
		assert.Contains(t, schema, name)
	}
}
