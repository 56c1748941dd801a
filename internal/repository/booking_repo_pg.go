package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

const bookingColumns = `id, flight_id, user_id, no_of_seats, seat_price, created_at, updated_at`

type PGBookingRepository struct {
	db dbtx
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.FlightID, &b.UserID, &b.NoOfSeats, &b.SeatPrice, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error) {
	var (
		where []string
		args  []any
	)
	if filter.UserID != 0 {
		args = append(args, filter.UserID)
		where = append(where, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.FlightID != 0 {
		args = append(args, filter.FlightID)
		where = append(where, fmt.Sprintf("flight_id=$%d", len(args)))
	}
	sql := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		sql += ` WHERE ` + strings.Join(where, " AND ")
	}
	return r.query(ctx, sql+` ORDER BY id`, args...)
}

func (r *PGBookingRepository) ListByFlight(ctx context.Context, flightID int64) ([]domain.Booking, error) {
	return r.query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE flight_id=$1 ORDER BY id`, flightID)
}

func (r *PGBookingRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError("booking", err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, mapError("booking", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, mapError("booking", rows.Err())
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	return b, mapError("booking", err)
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	err := r.db.QueryRow(ctx, `INSERT INTO bookings (flight_id, user_id, no_of_seats, seat_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		booking.FlightID, booking.UserID, booking.NoOfSeats, booking.SeatPrice).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	return mapError("booking", err)
}

func (r *PGBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	err := r.db.QueryRow(ctx, `UPDATE bookings
		SET flight_id=$1, user_id=$2, no_of_seats=$3, seat_price=$4, updated_at=now()
		WHERE id=$5
		RETURNING created_at, updated_at`,
		booking.FlightID, booking.UserID, booking.NoOfSeats, booking.SeatPrice, booking.ID).
		Scan(&booking.CreatedAt, &booking.UpdatedAt)
	return mapError("booking", err)
}

func (r *PGBookingRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	if err != nil {
		return mapError("booking", err)
	}
	return requireAffected("booking", tag)
}

var _ BookingRepository = (*PGBookingRepository)(nil)
