package domain

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

type User struct {
	ID           int32      `json:"id"`
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"`
	PhoneNumber  string     `json:"phone_number,omitempty"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	DepartmentID *int32     `json:"department_id,omitempty"`
	GroupIDs     []int32    `json:"group_ids,omitempty"`
	LastLoggedIn *time.Time `json:"last_logged_in,omitempty"`
	CreatedOn    time.Time  `json:"created_on"`
	UpdatedOn    time.Time  `json:"updated_on"`
}
