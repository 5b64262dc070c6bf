package domain

import "time"

type ShiftRequestStatus string

const (
	ShiftRequestStatusPending  ShiftRequestStatus = "PENDING"
	ShiftRequestStatusApproved ShiftRequestStatus = "APPROVED"
	ShiftRequestStatusRejected ShiftRequestStatus = "REJECTED"
)

// ShiftRequest is a backdoor request: staff ask for a shift that does not
// exist yet. Its lifecycle is independent of any slot until an admin approves
// it, at which point a slot plus an APPROVED reservation are materialized.
type ShiftRequest struct {
	ID           int32              `json:"id"`
	RequestedBy  int32              `json:"requested_by"`
	DepartmentID int32              `json:"department_id"`
	Date         time.Time          `json:"date"`
	StartTime    string             `json:"start_time"`
	EndTime      string             `json:"end_time"`
	Reason       string             `json:"reason"`
	Status       ShiftRequestStatus `json:"status"`
	ReviewedBy   *int32             `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time         `json:"reviewed_at,omitempty"`
	AdminNotes   string             `json:"admin_notes,omitempty"`
	CreatedOn    time.Time          `json:"created_on"`
	UpdatedOn    time.Time          `json:"updated_on"`
}
