package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"shiftboard-backend/internal/domain"
	"shiftboard-backend/internal/logger"
	"shiftboard-backend/internal/repository"
)

type slotRepository struct {
	db *sql.DB
}

func NewSlotRepository(db *sql.DB) repository.SlotRepository {
	return &slotRepository{db: db}
}

const slotColumns = `id, department_id, date, start_time, end_time, quantity, publish_state, active_count, version, created_on, updated_on`

func (r *slotRepository) CreateSlots(ctx context.Context, departmentID int32, slots []domain.ShiftSlot) ([]domain.ShiftSlot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `INSERT INTO shift_slots (department_id, date, start_time, end_time, quantity, publish_state, active_count, version, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, 0, 0, NOW(), NOW())
	          RETURNING ` + slotColumns

	created := make([]domain.ShiftSlot, 0, len(slots))
	for _, s := range slots {
		state := s.PublishState
		if state == "" {
			state = domain.PublishStatePublished
		}
		var out domain.ShiftSlot
		row := tx.QueryRowContext(ctx, query, departmentID, s.Date, s.StartTime, s.EndTime, s.Quantity, state)
		if err := scanSlot(row, &out); err != nil {
			return nil, err
		}
		created = append(created, out)
	}

	if err := tx.Commit(); err != nil {
		return nil, translateConflict(err)
	}
	return created, nil
}

func (r *slotRepository) GetByID(ctx context.Context, slotID int32) (*domain.ShiftSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM shift_slots WHERE id = $1`
	var slot domain.ShiftSlot
	if err := scanSlot(r.db.QueryRowContext(ctx, query, slotID), &slot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Errorf(domain.KindNotFound, "shift %d not found", slotID)
		}
		return nil, err
	}
	slots := []domain.ShiftSlot{slot}
	if err := r.loadSubRecords(ctx, slots); err != nil {
		return nil, err
	}
	return &slots[0], nil
}

func (r *slotRepository) ListByDepartment(ctx context.Context, departmentID int32, window domain.MonthWindow) ([]domain.ShiftSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM shift_slots
	          WHERE department_id = $1 AND date >= $2 AND date < $3
	          ORDER BY date, id`
	return r.querySlots(ctx, query, departmentID, window.Start, window.End)
}

func (r *slotRepository) ListAll(ctx context.Context, window domain.MonthWindow) ([]domain.ShiftSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM shift_slots
	          WHERE date >= $1 AND date < $2
	          ORDER BY department_id, date, id`
	return r.querySlots(ctx, query, window.Start, window.End)
}

func (r *slotRepository) SetPublishState(ctx context.Context, slotID int32, state domain.PublishState) error {
	query := `UPDATE shift_slots SET publish_state = $1, version = version + 1, updated_on = NOW() WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, state, slotID)
	if err != nil {
		return translateConflict(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Errorf(domain.KindNotFound, "shift %d not found", slotID)
	}
	return nil
}

func (r *slotRepository) FindOrCreateSlot(ctx context.Context, departmentID int32, date time.Time, startTime, endTime string, quantity int32, state domain.PublishState) (*domain.ShiftSlot, error) {
	// INSERT ... ON CONFLICT keeps find-or-create race free under the unique
	// (department_id, date, start_time, end_time) index. The no-op DO UPDATE
	// lets RETURNING yield the existing row.
	query := `INSERT INTO shift_slots (department_id, date, start_time, end_time, quantity, publish_state, active_count, version, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, 0, 0, NOW(), NOW())
	          ON CONFLICT (department_id, date, start_time, end_time)
	          DO UPDATE SET updated_on = NOW()
	          RETURNING ` + slotColumns
	var slot domain.ShiftSlot
	row := r.db.QueryRowContext(ctx, query, departmentID, date, startTime, endTime, quantity, state)
	if err := scanSlot(row, &slot); err != nil {
		return nil, translateConflict(err)
	}
	return &slot, nil
}

func (r *slotRepository) AppendReservation(ctx context.Context, slotID, userID int32, origin domain.ReservationOrigin, status domain.ReservationStatus) (*domain.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Guarded increment: claims one capacity unit only while the slot is
	// published and below quantity. Zero rows means one of the preconditions
	// failed; the probe below tells which.
	claim := `UPDATE shift_slots
	          SET active_count = active_count + 1, version = version + 1, updated_on = NOW()
	          WHERE id = $1 AND publish_state = 'PUBLISHED' AND active_count < quantity`
	res, err := tx.ExecContext(ctx, claim, slotID)
	if err != nil {
		return nil, translateConflict(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var state domain.PublishState
		probe := `SELECT publish_state FROM shift_slots WHERE id = $1`
		switch err := tx.QueryRowContext(ctx, probe, slotID).Scan(&state); {
		case errors.Is(err, sql.ErrNoRows):
			return nil, domain.Errorf(domain.KindNotFound, "shift %d not found", slotID)
		case err != nil:
			return nil, err
		case state != domain.PublishStatePublished:
			// An unpublished slot is not addressable by staff.
			return nil, domain.Errorf(domain.KindNotFound, "shift %d not found", slotID)
		default:
			return nil, domain.NewError(domain.KindCapacityExceeded, "no available slots for this shift")
		}
	}

	insert := `INSERT INTO reservations (slot_id, user_id, status, origin, booked_at)
	           VALUES ($1, $2, $3, $4, NOW())
	           RETURNING id, slot_id, user_id, status, origin, booked_at`
	var rec domain.Reservation
	row := tx.QueryRowContext(ctx, insert, slotID, userID, status, origin)
	if err := row.Scan(&rec.ID, &rec.SlotID, &rec.UserID, &rec.Status, &rec.Origin, &rec.BookedAt); err != nil {
		if isUniqueViolation(err) {
			// Rollback also undoes the claimed capacity unit.
			return nil, domain.NewError(domain.KindDuplicateBooking, "you already have an active booking for this shift")
		}
		return nil, translateConflict(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, translateConflict(err)
	}
	logger.Debug("Reservation appended", "slot_id", slotID, "user_id", userID, "status", status)
	return &rec, nil
}

func (r *slotRepository) TransitionReservation(ctx context.Context, slotID, userID int32, from, to domain.ReservationStatus, reviewerID int32, reason string) (*domain.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	update := `UPDATE reservations
	           SET status = $1, reviewed_at = NOW(), reviewed_by = $2, rejection_reason = $3
	           WHERE slot_id = $4 AND user_id = $5 AND status = $6
	           RETURNING id, slot_id, user_id, status, origin, booked_at, reviewed_at, reviewed_by, rejection_reason`
	var rec domain.Reservation
	var reasonOut sql.NullString
	row := tx.QueryRowContext(ctx, update, to, reviewerID, nullableString(reason), slotID, userID, from)
	err = row.Scan(&rec.ID, &rec.SlotID, &rec.UserID, &rec.Status, &rec.Origin, &rec.BookedAt, &rec.ReviewedAt, &rec.ReviewedBy, &reasonOut)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.classifyMissingTransition(ctx, tx, slotID, userID, from)
		}
		return nil, translateConflict(err)
	}
	rec.RejectionReason = reasonOut.String

	if to == domain.ReservationStatusRejected {
		free := `UPDATE shift_slots SET active_count = active_count - 1, version = version + 1, updated_on = NOW() WHERE id = $1`
		if _, err := tx.ExecContext(ctx, free, slotID); err != nil {
			return nil, translateConflict(err)
		}
		audit := `INSERT INTO rejection_records (slot_id, user_id, reason, rejected_at, rejected_by) VALUES ($1, $2, $3, NOW(), $4)`
		if _, err := tx.ExecContext(ctx, audit, slotID, userID, reason, reviewerID); err != nil {
			return nil, translateConflict(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, translateConflict(err)
	}
	return &rec, nil
}

func (r *slotRepository) RemoveReservation(ctx context.Context, slotID, userID int32) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	del := `DELETE FROM reservations WHERE slot_id = $1 AND user_id = $2 AND status = 'PENDING'`
	res, err := tx.ExecContext(ctx, del, slotID, userID)
	if err != nil {
		return translateConflict(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.classifyMissingTransition(ctx, tx, slotID, userID, domain.ReservationStatusPending)
	}

	free := `UPDATE shift_slots SET active_count = active_count - 1, version = version + 1, updated_on = NOW() WHERE id = $1`
	if _, err := tx.ExecContext(ctx, free, slotID); err != nil {
		return translateConflict(err)
	}
	return translateConflict(tx.Commit())
}

func (r *slotRepository) UnpublishBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `UPDATE shift_slots
	          SET publish_state = 'UNPUBLISHED', version = version + 1, updated_on = NOW()
	          WHERE publish_state = 'PUBLISHED' AND date < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// classifyMissingTransition distinguishes "no reservation at all" from "a
// reservation in the wrong state" after a zero-row conditional update.
func (r *slotRepository) classifyMissingTransition(ctx context.Context, tx *sql.Tx, slotID, userID int32, from domain.ReservationStatus) error {
	var n int
	probe := `SELECT count(*) FROM reservations WHERE slot_id = $1 AND user_id = $2`
	if err := tx.QueryRowContext(ctx, probe, slotID, userID).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return domain.Errorf(domain.KindNotFound, "no %s booking found for this user on this shift", from)
	}
	return domain.Errorf(domain.KindInvalidStateTransition, "booking is not %s", from)
}

func (r *slotRepository) querySlots(ctx context.Context, query string, args ...any) ([]domain.ShiftSlot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []domain.ShiftSlot
	for rows.Next() {
		var s domain.ShiftSlot
		if err := scanSlot(rows, &s); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadSubRecords(ctx, slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// loadSubRecords attaches reservations and rejection history to the slots.
func (r *slotRepository) loadSubRecords(ctx context.Context, slots []domain.ShiftSlot) error {
	if len(slots) == 0 {
		return nil
	}
	ids := make([]int32, len(slots))
	index := make(map[int32]*domain.ShiftSlot, len(slots))
	for i := range slots {
		ids[i] = slots[i].ID
		index[slots[i].ID] = &slots[i]
	}

	resQuery := `SELECT id, slot_id, user_id, status, origin, booked_at, reviewed_at, reviewed_by, rejection_reason
	             FROM reservations WHERE slot_id = ANY($1) ORDER BY booked_at, id`
	rows, err := r.db.QueryContext(ctx, resQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var rec domain.Reservation
		var reason sql.NullString
		if err := rows.Scan(&rec.ID, &rec.SlotID, &rec.UserID, &rec.Status, &rec.Origin, &rec.BookedAt, &rec.ReviewedAt, &rec.ReviewedBy, &reason); err != nil {
			return err
		}
		rec.RejectionReason = reason.String
		if slot := index[rec.SlotID]; slot != nil {
			slot.Reservations = append(slot.Reservations, rec)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rejQuery := `SELECT id, slot_id, user_id, reason, rejected_at, rejected_by
	             FROM rejection_records WHERE slot_id = ANY($1) ORDER BY rejected_at, id`
	rejRows, err := r.db.QueryContext(ctx, rejQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rejRows.Close()
	for rejRows.Next() {
		var rec domain.RejectionRecord
		if err := rejRows.Scan(&rec.ID, &rec.SlotID, &rec.UserID, &rec.Reason, &rec.RejectedAt, &rec.RejectedBy); err != nil {
			return err
		}
		if slot := index[rec.SlotID]; slot != nil {
			slot.RejectionHistory = append(slot.RejectionHistory, rec)
		}
	}
	return rejRows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSlot(row rowScanner, s *domain.ShiftSlot) error {
	return row.Scan(&s.ID, &s.DepartmentID, &s.Date, &s.StartTime, &s.EndTime, &s.Quantity, &s.PublishState, &s.ActiveCount, &s.Version, &s.CreatedOn, &s.UpdatedOn)
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullableID maps the zero reviewer id (system actions) to NULL.
func nullableID(id int32) sql.NullInt32 {
	return sql.NullInt32{Int32: id, Valid: id != 0}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// translateConflict maps serialization failures and deadlocks to the domain
// conflict kind so the engine's bounded retry loop can pick them up.
func translateConflict(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && (pqErr.Code == "40001" || pqErr.Code == "40P01") {
		return domain.NewError(domain.KindConflict, "conflicting concurrent update, retry")
	}
	return err
}
