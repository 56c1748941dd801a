// Package repository persists companies, flights, bookings and users.
//
// Every validate-then-write sequence runs inside Store.InTx. Implementations
// must make the rows read inside a transaction stable until it commits:
// Lock on a flight serialises every booking writer on that flight, Lock on a
// company serialises every flight writer for that company.
package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
)

type CompanyFilter struct {
	// ActiveAfter keeps only companies with a flight departing after it.
	ActiveAfter time.Time
}

type FlightFilter struct {
	CompanyID int64
}

type BookingFilter struct {
	UserID   int64
	FlightID int64
}

type UserFilter struct {
	ID int64
}

type CompanyRepository interface {
	List(ctx context.Context, filter CompanyFilter) ([]domain.Company, error)
	GetByID(ctx context.Context, id int64) (*domain.Company, error)
	Lock(ctx context.Context, id int64) (*domain.Company, error)
	CountActiveFlights(ctx context.Context, id int64, after time.Time) (int, error)
	Create(ctx context.Context, company *domain.Company) error
	Update(ctx context.Context, company *domain.Company) error
	Delete(ctx context.Context, id int64) error
}

type FlightRepository interface {
	List(ctx context.Context, filter FlightFilter) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Lock(ctx context.Context, id int64) (*domain.Flight, error)
	ListByCompany(ctx context.Context, companyID int64) ([]domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	Update(ctx context.Context, flight *domain.Flight) error
	Delete(ctx context.Context, id int64) error
}

type BookingRepository interface {
	List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByFlight(ctx context.Context, flightID int64) ([]domain.Booking, error)
	Create(ctx context.Context, booking *domain.Booking) error
	Update(ctx context.Context, booking *domain.Booking) error
	Delete(ctx context.Context, id int64) error
}

type UserRepository interface {
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByToken(ctx context.Context, token string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
}

type Repositories interface {
	Companies() CompanyRepository
	Flights() FlightRepository
	Bookings() BookingRepository
	Users() UserRepository
}

// Store hands out repositories bound either to autocommit reads or, inside
// InTx, to a single transaction. fn's error rolls the transaction back and
// is returned unchanged.
type Store interface {
	Repositories
	InTx(ctx context.Context, fn func(tx Repositories) error) error
}
