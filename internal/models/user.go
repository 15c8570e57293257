package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// UserStatus is the account lifecycle state. The storage encoding is the
// original small-int scheme: 0 deleted, 1 active, 2 suspended.
type UserStatus int

const (
	UserDeleted   UserStatus = 0
	UserActive    UserStatus = 1
	UserSuspended UserStatus = 2
)

// User represents an account stored in the users table.
type User struct {
	ID           int64      `db:"user_id" json:"user_id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password" json:"-"`
	Role         UserRole   `db:"role" json:"role"`
	Status       UserStatus `db:"user_status" json:"user_status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// UserProfile holds the 1:1 profile attributes owned by a user.
type UserProfile struct {
	UserID         int64      `db:"user_id" json:"user_id"`
	FullName       string     `db:"full_name" json:"full_name"`
	ContactNumber  *string    `db:"contact_number" json:"contact_number,omitempty"`
	Address        *string    `db:"address" json:"address,omitempty"`
	ClassID        *int64     `db:"class_id" json:"class_id,omitempty"`
	JoiningDate    *time.Time `db:"joining_date" json:"joining_date,omitempty"`
	EnrollmentDate *time.Time `db:"enrollment_date" json:"enrollment_date,omitempty"`
}

// UserListItem is the admin users listing row, including the derived
// deleted/suspended flag the dashboard UI keys off.
type UserListItem struct {
	ID            int64      `db:"user_id" json:"user_id"`
	Email         string     `db:"email" json:"email"`
	Role          UserRole   `db:"role" json:"role"`
	Status        UserStatus `db:"user_status" json:"user_status"`
	IsDeletedUser bool       `db:"is_deleted_user" json:"is_deleted_user"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
}
