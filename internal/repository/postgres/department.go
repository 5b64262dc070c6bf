package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"shiftboard-backend/internal/domain"
	"shiftboard-backend/internal/repository"
)

type departmentRepository struct {
	db *sql.DB
}

func NewDepartmentRepository(db *sql.DB) repository.DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	query := `INSERT INTO departments (name, rules, created_on, updated_on)
	          VALUES ($1, $2, NOW(), NOW())
	          RETURNING id, created_on, updated_on`
	return r.db.QueryRowContext(ctx, query, dept.Name, pq.Array(dept.Rules)).
		Scan(&dept.ID, &dept.CreatedOn, &dept.UpdatedOn)
}

func (r *departmentRepository) GetByID(ctx context.Context, id int32) (*domain.Department, error) {
	query := `SELECT id, name, rules, created_on, updated_on FROM departments WHERE id = $1`
	var d domain.Department
	var rules pq.StringArray
	err := r.db.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.Name, &rules, &d.CreatedOn, &d.UpdatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Errorf(domain.KindNotFound, "department %d not found", id)
		}
		return nil, err
	}
	d.Rules = rules
	return &d, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	query := `SELECT id, name, rules, created_on, updated_on FROM departments ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Department
	for rows.Next() {
		var d domain.Department
		var rules pq.StringArray
		if err := rows.Scan(&d.ID, &d.Name, &rules, &d.CreatedOn, &d.UpdatedOn); err != nil {
			return nil, err
		}
		d.Rules = rules
		out = append(out, d)
	}
	return out, rows.Err()
}
