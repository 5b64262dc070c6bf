package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"shiftboard-backend/internal/domain"
	"shiftboard-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (full_name, email, phone_number, password_hash, role, department_id, group_ids, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	          RETURNING id, created_on, updated_on`
	return r.db.QueryRowContext(ctx, query,
		user.FullName, user.Email, user.PhoneNumber, user.PasswordHash, user.Role, user.DepartmentID, pq.Array(user.GroupIDs),
	).Scan(&user.ID, &user.CreatedOn, &user.UpdatedOn)
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	return r.getBy(ctx, `WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, `WHERE email = $1`, email)
}

func (r *userRepository) UpdateLastLoggedIn(ctx context.Context, id int32, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_logged_in = $1, updated_on = NOW() WHERE id = $2`, at, id)
	return err
}

func (r *userRepository) getBy(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := `SELECT id, full_name, email, phone_number, password_hash, role, department_id, group_ids, last_logged_in, created_on, updated_on
	          FROM users ` + where
	var u domain.User
	var phone sql.NullString
	var groupIDs pq.Int32Array
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.FullName, &u.Email, &phone, &u.PasswordHash, &u.Role, &u.DepartmentID, &groupIDs, &u.LastLoggedIn, &u.CreatedOn, &u.UpdatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(domain.KindNotFound, "user not found")
		}
		return nil, err
	}
	u.PhoneNumber = phone.String
	u.GroupIDs = groupIDs
	return &u, nil
}
