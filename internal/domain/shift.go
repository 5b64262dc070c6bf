package domain

import "time"

type PublishState string

const (
	PublishStatePublished   PublishState = "PUBLISHED"
	PublishStateUnpublished PublishState = "UNPUBLISHED"
)

type ReservationStatus string

const (
	ReservationStatusPending  ReservationStatus = "PENDING"
	ReservationStatusApproved ReservationStatus = "APPROVED"
	ReservationStatusRejected ReservationStatus = "REJECTED"
)

// IsActive reports whether the reservation counts against slot capacity.
func (s ReservationStatus) IsActive() bool {
	return s == ReservationStatusPending || s == ReservationStatusApproved
}

// IsTerminal reports whether the reservation can no longer transition.
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationStatusApproved || s == ReservationStatusRejected
}

type ReservationOrigin string

const (
	OriginBooking  ReservationOrigin = "BOOKING"
	OriginBackdoor ReservationOrigin = "BACKDOOR"
)

// ShiftSlot is a finite-capacity time window within a department.
// ActiveCount is denormalized and maintained only by the store's conditional
// writes; it always equals the number of PENDING plus APPROVED reservations.
type ShiftSlot struct {
	ID               int32             `json:"id"`
	DepartmentID     int32             `json:"department_id"`
	Date             time.Time         `json:"date"`
	StartTime        string            `json:"start_time"` // display string, e.g. "09:00 AM"
	EndTime          string            `json:"end_time"`
	Quantity         int32             `json:"quantity"`
	PublishState     PublishState      `json:"publish_state"`
	ActiveCount      int32             `json:"active_count"`
	Version          int64             `json:"version"`
	Reservations     []Reservation     `json:"reservations,omitempty"`
	RejectionHistory []RejectionRecord `json:"rejection_history,omitempty"`
	CreatedOn        time.Time         `json:"created_on"`
	UpdatedOn        time.Time         `json:"updated_on"`
}

// AvailableSlots returns the remaining bookable capacity, never negative.
func (s *ShiftSlot) AvailableSlots() int32 {
	if s.ActiveCount >= s.Quantity {
		return 0
	}
	return s.Quantity - s.ActiveCount
}

// ReservationFor returns the user's reservation matching any of the given
// statuses, or nil. With no statuses it matches any.
func (s *ShiftSlot) ReservationFor(userID int32, statuses ...ReservationStatus) *Reservation {
	for i := range s.Reservations {
		r := &s.Reservations[i]
		if r.UserID != userID {
			continue
		}
		if len(statuses) == 0 {
			return r
		}
		for _, st := range statuses {
			if r.Status == st {
				return r
			}
		}
	}
	return nil
}

// Reservation is one user's claim against a slot's capacity. At most one
// active (PENDING or APPROVED) reservation exists per (slot, user).
type Reservation struct {
	ID              int32             `json:"id"`
	SlotID          int32             `json:"slot_id"`
	UserID          int32             `json:"user_id"`
	Status          ReservationStatus `json:"status"`
	Origin          ReservationOrigin `json:"origin"`
	BookedAt        time.Time         `json:"booked_at"`
	ReviewedAt      *time.Time        `json:"reviewed_at,omitempty"`
	ReviewedBy      *int32            `json:"reviewed_by,omitempty"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
}

// RejectionRecord is an append-only audit entry. Records survive later
// cleanup of the reservation or the slot and are never mutated.
type RejectionRecord struct {
	ID         int32     `json:"id"`
	SlotID     int32     `json:"slot_id"`
	UserID     int32     `json:"user_id"`
	Reason     string    `json:"reason"`
	RejectedAt time.Time `json:"rejected_at"`
	RejectedBy *int32    `json:"rejected_by,omitempty"`
}
