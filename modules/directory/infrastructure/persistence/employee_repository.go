package persistence

import (
	"context"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orgsight/orgsight/modules/directory/domain/aggregates/employee"
)

const selectEmployees = `
SELECT id, manager_id, email, role_level, region, country, location, department, status
FROM employees
ORDER BY id`

type PgEmployeeRepository struct {
	pool *pgxpool.Pool
}

func NewEmployeeRepository(pool *pgxpool.Pool) employee.Repository {
	return &PgEmployeeRepository{pool: pool}
}

func (r *PgEmployeeRepository) GetAll(ctx context.Context) ([]employee.Employee, error) {
	rows, err := r.pool.Query(ctx, selectEmployees)
	if err != nil {
		return nil, gerrors.Wrap(err, "query employees")
	}
	defer rows.Close()

	var out []employee.Employee
	for rows.Next() {
		var (
			id         int64
			managerID  *int64
			email      string
			roleLevel  string
			region     *string
			country    *string
			location   *string
			department *string
			status     string
		)
		if err := rows.Scan(&id, &managerID, &email, &roleLevel, &region, &country, &location, &department, &status); err != nil {
			return nil, gerrors.Wrap(err, "scan employee row")
		}
		level, err := employee.ParseRoleLevel(roleLevel)
		if err != nil {
			return nil, gerrors.Wrapf(err, "employee %d", id)
		}
		out = append(out, employee.Hydrate(
			id,
			managerID,
			email,
			level,
			deref(region),
			deref(country),
			deref(location),
			deref(department),
			employee.Status(status),
		))
	}
	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "iterate employees")
	}
	return out, nil
}

func (r *PgEmployeeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&count); err != nil {
		return 0, gerrors.Wrap(err, "count employees")
	}
	return count, nil
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
