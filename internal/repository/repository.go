package repository

import (
	"context"
	"time"

	"shiftboard-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateLastLoggedIn(ctx context.Context, id int32, at time.Time) error
}

type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	GetByID(ctx context.Context, id int32) (*domain.Department, error)
	List(ctx context.Context) ([]domain.Department, error)
}

type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) error
	List(ctx context.Context) ([]domain.Group, error)
}

// SlotRepository is the durable slot store. Every capacity-affecting mutation
// is a single conditional write verified by the store itself, never by the
// caller: the published/capacity/duplicate checks and the reservation append
// land (or fail) as one atomic unit.
type SlotRepository interface {
	CreateSlots(ctx context.Context, departmentID int32, slots []domain.ShiftSlot) ([]domain.ShiftSlot, error)
	GetByID(ctx context.Context, slotID int32) (*domain.ShiftSlot, error)
	ListByDepartment(ctx context.Context, departmentID int32, window domain.MonthWindow) ([]domain.ShiftSlot, error)
	ListAll(ctx context.Context, window domain.MonthWindow) ([]domain.ShiftSlot, error)
	SetPublishState(ctx context.Context, slotID int32, state domain.PublishState) error

	// FindOrCreateSlot locates the slot matching (department, date, startTime,
	// endTime) or creates it with the given quantity and publish state.
	FindOrCreateSlot(ctx context.Context, departmentID int32, date time.Time, startTime, endTime string, quantity int32, state domain.PublishState) (*domain.ShiftSlot, error)

	// AppendReservation appends a reservation if and only if the slot is
	// published, its active count is below quantity, and the user holds no
	// active reservation on it. Errors: KindNotFound, KindCapacityExceeded,
	// KindDuplicateBooking, KindConflict (caller may retry).
	AppendReservation(ctx context.Context, slotID, userID int32, origin domain.ReservationOrigin, status domain.ReservationStatus) (*domain.Reservation, error)

	// TransitionReservation moves the user's reservation from the expected
	// prior status to the new one; a mismatch is KindInvalidStateTransition so
	// racing reviewers produce exactly one winner. A REJECTED transition also
	// frees one capacity unit and appends a rejection record atomically.
	TransitionReservation(ctx context.Context, slotID, userID int32, from, to domain.ReservationStatus, reviewerID int32, reason string) (*domain.Reservation, error)

	// RemoveReservation deletes the user's PENDING reservation and frees its
	// capacity unit. It leaves no audit trail; that is what distinguishes a
	// cancellation from a rejection.
	RemoveReservation(ctx context.Context, slotID, userID int32) error

	// UnpublishBefore flips published slots dated strictly before cutoff to
	// UNPUBLISHED and returns how many changed.
	UnpublishBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type ShiftRequestRepository interface {
	Create(ctx context.Context, req *domain.ShiftRequest) error
	GetByID(ctx context.Context, id int32) (*domain.ShiftRequest, error)
	List(ctx context.Context, status domain.ShiftRequestStatus, window *domain.MonthWindow) ([]domain.ShiftRequest, error)
	ListByUser(ctx context.Context, userID int32, status domain.ShiftRequestStatus) ([]domain.ShiftRequest, error)

	// UpdateStatus transitions the request conditionally on its current status
	// being `from`; a mismatch is KindInvalidStateTransition.
	UpdateStatus(ctx context.Context, id int32, from, to domain.ShiftRequestStatus, reviewerID int32, notes string) (*domain.ShiftRequest, error)
	Delete(ctx context.Context, id int32) error

	// ListPendingBefore returns PENDING requests whose requested date is
	// strictly before cutoff (stale-request expiry).
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.ShiftRequest, error)
}
