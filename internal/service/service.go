package service

import (
	"context"
	"time"

	"shiftboard-backend/internal/domain"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.User, string, error) // user, access token
	Profile(ctx context.Context, userID int32) (*domain.User, *domain.Department, error)
}

type DepartmentService interface {
	ListDepartments(ctx context.Context) ([]domain.Department, error)
}

type GroupService interface {
	ListGroups(ctx context.Context) ([]domain.Group, error)
}

// ShiftService is the reservation engine: it owns the booking state machine
// and the capacity invariant for shift slots.
type ShiftService interface {
	UploadSlots(ctx context.Context, departmentID int32, slots []domain.ShiftSlot) ([]domain.ShiftSlot, error)
	Book(ctx context.Context, slotID, userID int32) (*domain.Reservation, error)
	Approve(ctx context.Context, slotID, userID, reviewerID int32) (*domain.Reservation, error)
	Reject(ctx context.Context, slotID, userID int32, reason string, reviewerID int32) (*domain.Reservation, error)
	Cancel(ctx context.Context, slotID, userID int32) error
	SetPublishState(ctx context.Context, slotID int32, state domain.PublishState) error
}

// ShiftRequestService is the backdoor request workflow: pre-slot requests
// reviewed by an admin, materialized into a slot plus an approved reservation
// on approval.
type ShiftRequestService interface {
	Submit(ctx context.Context, userID, departmentID int32, date time.Time, startTime, endTime, reason string) (*domain.ShiftRequest, error)
	ListAll(ctx context.Context, status domain.ShiftRequestStatus, month string) ([]domain.ShiftRequest, error)
	ListByUser(ctx context.Context, userID int32, status domain.ShiftRequestStatus) ([]domain.ShiftRequest, error)
	Review(ctx context.Context, requestID int32, decision domain.ShiftRequestStatus, reviewerID int32, notes string) (*domain.ShiftRequest, error)
	Delete(ctx context.Context, requestID int32) error
	ExpireStale(ctx context.Context, cutoff time.Time) (int, error)
}

// ScheduleService provides the read-only projections: month-scoped slot
// views for staff and admins plus the dashboard counters. Reads are
// unlocked snapshots, not linearizable with concurrent bookings.
type ScheduleService interface {
	PublishedByDepartment(ctx context.Context, departmentID int32, month string) (*DepartmentSchedule, error)
	UnpublishedByDepartment(ctx context.Context, departmentID int32, month string) (*DepartmentSchedule, error)
	AvailableForUser(ctx context.Context, userID int32, month string) ([]domain.ShiftSlot, error)
	AvailableOtherDepartments(ctx context.Context, userID int32, month string) ([]SlotView, error)
	ApprovedForUser(ctx context.Context, userID int32, month string) ([]SlotView, error)
	PendingForUser(ctx context.Context, userID int32, month string) ([]SlotView, error)
	PendingAndRejectedForUser(ctx context.Context, userID int32, month string) ([]UserSlotEntry, error)
	PendingForAdmin(ctx context.Context, month string) ([]PendingApproval, error)
	DashboardStats(ctx context.Context, month string) (*DashboardStats, error)
}

// DepartmentRef is the light department reference attached to slot views.
type DepartmentRef struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

type DepartmentSchedule struct {
	Department DepartmentRef      `json:"department"`
	Slots      []domain.ShiftSlot `json:"shifts"`
}

type SlotView struct {
	Slot       domain.ShiftSlot `json:"shift"`
	Department DepartmentRef    `json:"department"`
}

// UserSlotEntry is one row of the combined pending-and-rejected view. Kind is
// "pending" or "rejected"; the rejection fields are set only for the latter.
type UserSlotEntry struct {
	SlotView
	Kind            string     `json:"type"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectedBy      *int32     `json:"rejected_by,omitempty"`
}

// PendingApproval is one admin review-queue row: a slot plus the specific
// pending reservation awaiting a decision.
type PendingApproval struct {
	SlotView
	Reservation domain.Reservation `json:"pending_booking"`
}

type DashboardStats struct {
	TotalSlotsUploaded int32  `json:"totalSlotsUploaded"`
	AvailableSlots     int32  `json:"availableSlots"`
	TotalRequests      int32  `json:"totalRequests"`
	PendingApprovals   int32  `json:"pendingApprovals"`
	Month              string `json:"month"`
}
