package repository

import (
	"context"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

const flightColumns = `id, company_id, name, departs_at, arrives_at, base_price, no_of_seats, created_at, updated_at`

type PGFlightRepository struct {
	db dbtx
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.CompanyID, &f.Name, &f.DepartsAt, &f.ArrivesAt, &f.BasePrice, &f.NoOfSeats, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) List(ctx context.Context, filter FlightFilter) ([]domain.Flight, error) {
	if filter.CompanyID != 0 {
		return r.ListByCompany(ctx, filter.CompanyID)
	}
	return r.query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departs_at, id`)
}

func (r *PGFlightRepository) ListByCompany(ctx context.Context, companyID int64) ([]domain.Flight, error) {
	return r.query(ctx, `SELECT `+flightColumns+` FROM flights WHERE company_id=$1 ORDER BY departs_at, id`, companyID)
}

func (r *PGFlightRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError("flight", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, mapError("flight", err)
		}
		flights = append(flights, *f)
	}
	return flights, mapError("flight", rows.Err())
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id))
	return f, mapError("flight", err)
}

func (r *PGFlightRepository) Lock(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1 FOR UPDATE`, id))
	return f, mapError("flight", err)
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	err := r.db.QueryRow(ctx, `INSERT INTO flights (company_id, name, departs_at, arrives_at, base_price, no_of_seats)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		flight.CompanyID, flight.Name, flight.DepartsAt, flight.ArrivesAt, flight.BasePrice, flight.NoOfSeats).
		Scan(&flight.ID, &flight.CreatedAt, &flight.UpdatedAt)
	return mapError("flight", err)
}

func (r *PGFlightRepository) Update(ctx context.Context, flight *domain.Flight) error {
	err := r.db.QueryRow(ctx, `UPDATE flights
		SET company_id=$1, name=$2, departs_at=$3, arrives_at=$4, base_price=$5, no_of_seats=$6, updated_at=now()
		WHERE id=$7
		RETURNING created_at, updated_at`,
		flight.CompanyID, flight.Name, flight.DepartsAt, flight.ArrivesAt, flight.BasePrice, flight.NoOfSeats, flight.ID).
		Scan(&flight.CreatedAt, &flight.UpdatedAt)
	return mapError("flight", err)
}

func (r *PGFlightRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM flights WHERE id=$1`, id)
	if err != nil {
		return mapError("flight", err)
	}
	return requireAffected("flight", tag)
}

var _ FlightRepository = (*PGFlightRepository)(nil)
