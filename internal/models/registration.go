package models

import "time"

// RequestStatus is the lifecycle state of a registration request.
// pending is the only non-terminal state.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// RegistrationRequest is a prospective student/teacher application awaiting
// an admin decision. Rows are never deleted once created.
type RegistrationRequest struct {
	ID            int64         `db:"id" json:"id"`
	Username      string        `db:"username" json:"username"`
	PasswordHash  string        `db:"password" json:"-"`
	Role          UserRole      `db:"role" json:"role"`
	Status        RequestStatus `db:"status" json:"status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	ReviewedBy    *string       `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time    `db:"reviewed_at" json:"reviewed_at,omitempty"`
	FullName      *string       `db:"full_name" json:"full_name,omitempty"`
	ContactNumber *string       `db:"contact_number" json:"contact_number,omitempty"`
}
