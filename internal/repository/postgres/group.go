package postgres

import (
	"context"
	"database/sql"

	"shiftboard-backend/internal/domain"
	"shiftboard-backend/internal/repository"
)

type groupRepository struct {
	db *sql.DB
}

func NewGroupRepository(db *sql.DB) repository.GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *domain.Group) error {
	query := `INSERT INTO groups (name, created_on, updated_on)
	          VALUES ($1, NOW(), NOW())
	          RETURNING id, created_on, updated_on`
	return r.db.QueryRowContext(ctx, query, group.Name).
		Scan(&group.ID, &group.CreatedOn, &group.UpdatedOn)
}

func (r *groupRepository) List(ctx context.Context) ([]domain.Group, error) {
	query := `SELECT id, name, created_on, updated_on FROM groups ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Group
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedOn, &g.UpdatedOn); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
