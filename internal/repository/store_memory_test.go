package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store   *MemoryStore
	company domain.Company
	flight  domain.Flight
	user    domain.User
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	s := NewMemoryStore()

	c := domain.Company{Name: "Croatia Airlines"}
	require.NoError(t, s.Companies().Create(ctx, &c))

	departs := time.Now().Add(48 * time.Hour)
	f := domain.Flight{CompanyID: c.ID, Name: "Zagreb-Split", DepartsAt: departs, ArrivesAt: departs.Add(time.Hour), BasePrice: 100, NoOfSeats: 10}
	require.NoError(t, s.Flights().Create(ctx, &f))

	u := domain.User{Email: "ana@example.com", FirstName: "Ana", Token: "tok-ana"}
	require.NoError(t, s.Users().Create(ctx, &u))

	return fixture{store: s, company: c, flight: f, user: u}
}

func TestMemoryStore_UniqueNamesAreCaseInsensitive(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	err := fx.store.Companies().Create(ctx, &domain.Company{Name: "CROATIA airlines"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	dup := fx.flight
	dup.ID = 0
	dup.Name = "zagreb-SPLIT"
	assert.ErrorIs(t, fx.store.Flights().Create(ctx, &dup), domain.ErrConflict)

	err = fx.store.Users().Create(ctx, &domain.User{Email: "ANA@example.com", FirstName: "Ana", Token: "other"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	other := domain.Company{Name: "Lufthansa"}
	require.NoError(t, fx.store.Companies().Create(ctx, &other))
	dup.CompanyID = other.ID
	assert.NoError(t, fx.store.Flights().Create(ctx, &dup), "flight names are unique per company only")
}

func TestMemoryStore_CascadingDeletes(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	b := domain.Booking{FlightID: fx.flight.ID, UserID: fx.user.ID, NoOfSeats: 2, SeatPrice: 100}
	require.NoError(t, fx.store.Bookings().Create(ctx, &b))

	require.NoError(t, fx.store.Companies().Delete(ctx, fx.company.ID))

	_, err := fx.store.Flights().GetByID(ctx, fx.flight.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = fx.store.Bookings().GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStore_DeleteUserRemovesBookings(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	b := domain.Booking{FlightID: fx.flight.ID, UserID: fx.user.ID, NoOfSeats: 1, SeatPrice: 100}
	require.NoError(t, fx.store.Bookings().Create(ctx, &b))
	require.NoError(t, fx.store.Users().Delete(ctx, fx.user.ID))

	list, err := fx.store.Bookings().List(ctx, BookingFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryStore_InTxRollsBackOnError(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := fx.store.InTx(ctx, func(tx Repositories) error {
		b := domain.Booking{FlightID: fx.flight.ID, UserID: fx.user.ID, NoOfSeats: 1, SeatPrice: 100}
		require.NoError(t, tx.Bookings().Create(ctx, &b))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	list, err := fx.store.Bookings().ListByFlight(ctx, fx.flight.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryStore_InTxCommits(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.store.InTx(ctx, func(tx Repositories) error {
		f, err := tx.Flights().Lock(ctx, fx.flight.ID)
		if err != nil {
			return err
		}
		b := domain.Booking{FlightID: f.ID, UserID: fx.user.ID, NoOfSeats: 3, SeatPrice: 100}
		return tx.Bookings().Create(ctx, &b)
	}))

	list, err := fx.store.Bookings().ListByFlight(ctx, fx.flight.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMemoryStore_ActiveCompanies(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	idle := domain.Company{Name: "Idle Air"}
	require.NoError(t, fx.store.Companies().Create(ctx, &idle))

	active, err := fx.store.Companies().List(ctx, CompanyFilter{ActiveAfter: time.Now()})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, fx.company.ID, active[0].ID)

	n, err := fx.store.Companies().CountActiveFlights(ctx, fx.company.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryStore_UserLookups(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	u, err := fx.store.Users().GetByEmail(ctx, "Ana@Example.com")
	require.NoError(t, err)
	assert.Equal(t, fx.user.ID, u.ID)

	u, err = fx.store.Users().GetByToken(ctx, "tok-ana")
	require.NoError(t, err)
	assert.Equal(t, fx.user.ID, u.ID)

	_, err = fx.store.Users().GetByToken(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
