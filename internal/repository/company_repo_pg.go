package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

const companyColumns = `id, name, created_at, updated_at`

type PGCompanyRepository struct {
	db dbtx
}

func scanCompany(row pgx.Row) (*domain.Company, error) {
	var c domain.Company
	if err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PGCompanyRepository) List(ctx context.Context, filter CompanyFilter) ([]domain.Company, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if filter.ActiveAfter.IsZero() {
		rows, err = r.db.Query(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY id`)
	} else {
		rows, err = r.db.Query(ctx, `SELECT `+companyColumns+` FROM companies c
			WHERE EXISTS (SELECT 1 FROM flights f WHERE f.company_id = c.id AND f.departs_at > $1)
			ORDER BY id`, filter.ActiveAfter)
	}
	if err != nil {
		return nil, mapError("company", err)
	}
	defer rows.Close()

	companies := make([]domain.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, mapError("company", err)
		}
		companies = append(companies, *c)
	}
	return companies, mapError("company", rows.Err())
}

func (r *PGCompanyRepository) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	c, err := scanCompany(r.db.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id=$1`, id))
	return c, mapError("company", err)
}

func (r *PGCompanyRepository) Lock(ctx context.Context, id int64) (*domain.Company, error) {
	c, err := scanCompany(r.db.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id=$1 FOR UPDATE`, id))
	return c, mapError("company", err)
}

func (r *PGCompanyRepository) CountActiveFlights(ctx context.Context, id int64, after time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM flights WHERE company_id=$1 AND departs_at > $2`, id, after).Scan(&n)
	return n, mapError("company", err)
}

func (r *PGCompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	err := r.db.QueryRow(ctx, `INSERT INTO companies (name) VALUES ($1) RETURNING id, created_at, updated_at`, company.Name).
		Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
	return mapError("company", err)
}

func (r *PGCompanyRepository) Update(ctx context.Context, company *domain.Company) error {
	err := r.db.QueryRow(ctx, `UPDATE companies SET name=$1, updated_at=now() WHERE id=$2 RETURNING created_at, updated_at`, company.Name, company.ID).
		Scan(&company.CreatedAt, &company.UpdatedAt)
	return mapError("company", err)
}

func (r *PGCompanyRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM companies WHERE id=$1`, id)
	if err != nil {
		return mapError("company", err)
	}
	return requireAffected("company", tag)
}

var _ CompanyRepository = (*PGCompanyRepository)(nil)
