package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shiftboard-backend/internal/domain"
	"shiftboard-backend/internal/repository"
)

type shiftRequestRepository struct {
	db *sql.DB
}

func NewShiftRequestRepository(db *sql.DB) repository.ShiftRequestRepository {
	return &shiftRequestRepository{db: db}
}

const requestColumns = `id, requested_by, department_id, date, start_time, end_time, reason, status, reviewed_by, reviewed_at, admin_notes, created_on, updated_on`

func (r *shiftRequestRepository) Create(ctx context.Context, req *domain.ShiftRequest) error {
	query := `INSERT INTO shift_requests (requested_by, department_id, date, start_time, end_time, reason, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	          RETURNING id, created_on, updated_on`
	return r.db.QueryRowContext(ctx, query,
		req.RequestedBy, req.DepartmentID, req.Date, req.StartTime, req.EndTime, req.Reason, req.Status,
	).Scan(&req.ID, &req.CreatedOn, &req.UpdatedOn)
}

func (r *shiftRequestRepository) GetByID(ctx context.Context, id int32) (*domain.ShiftRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM shift_requests WHERE id = $1`
	req, err := scanRequest(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.Errorf(domain.KindNotFound, "shift request %d not found", id)
	}
	return req, err
}

func (r *shiftRequestRepository) List(ctx context.Context, status domain.ShiftRequestStatus, window *domain.MonthWindow) ([]domain.ShiftRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM shift_requests WHERE 1=1`
	var args []any
	if status != "" {
		args = append(args, status)
		query += ` AND status = $1`
	}
	if window != nil {
		query += fmt.Sprintf(` AND date >= $%d AND date < $%d`, len(args)+1, len(args)+2)
		args = append(args, window.Start, window.End)
	}
	query += ` ORDER BY created_on DESC`
	return r.queryRequests(ctx, query, args...)
}

func (r *shiftRequestRepository) ListByUser(ctx context.Context, userID int32, status domain.ShiftRequestStatus) ([]domain.ShiftRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM shift_requests WHERE requested_by = $1`
	args := []any{userID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_on DESC`
	return r.queryRequests(ctx, query, args...)
}

func (r *shiftRequestRepository) UpdateStatus(ctx context.Context, id int32, from, to domain.ShiftRequestStatus, reviewerID int32, notes string) (*domain.ShiftRequest, error) {
	// Conditional on the prior status: two racing reviewers get exactly one
	// winner, the loser a zero-row update.
	query := `UPDATE shift_requests
	          SET status = $1, reviewed_by = $2, reviewed_at = NOW(), admin_notes = $3, updated_on = NOW()
	          WHERE id = $4 AND status = $5
	          RETURNING ` + requestColumns
	req, err := scanRequest(r.db.QueryRowContext(ctx, query, to, nullableID(reviewerID), nullableString(notes), id, from))
	if errors.Is(err, sql.ErrNoRows) {
		var n int
		if probeErr := r.db.QueryRowContext(ctx, `SELECT count(*) FROM shift_requests WHERE id = $1`, id).Scan(&n); probeErr != nil {
			return nil, probeErr
		}
		if n == 0 {
			return nil, domain.Errorf(domain.KindNotFound, "shift request %d not found", id)
		}
		return nil, domain.Errorf(domain.KindInvalidStateTransition, "shift request is not %s", from)
	}
	return req, err
}

func (r *shiftRequestRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shift_requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Errorf(domain.KindNotFound, "shift request %d not found", id)
	}
	return nil
}

func (r *shiftRequestRepository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.ShiftRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM shift_requests WHERE status = 'PENDING' AND date < $1 ORDER BY date`
	return r.queryRequests(ctx, query, cutoff)
}

func (r *shiftRequestRepository) queryRequests(ctx context.Context, query string, args ...any) ([]domain.ShiftRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ShiftRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

func scanRequest(row rowScanner) (*domain.ShiftRequest, error) {
	var req domain.ShiftRequest
	var notes sql.NullString
	err := row.Scan(&req.ID, &req.RequestedBy, &req.DepartmentID, &req.Date, &req.StartTime, &req.EndTime,
		&req.Reason, &req.Status, &req.ReviewedBy, &req.ReviewedAt, &notes, &req.CreatedOn, &req.UpdatedOn)
	if err != nil {
		return nil, err
	}
	req.AdminNotes = notes.String
	return &req, nil
}
