package service

import "github.com/eduspark/edu-platform-api/internal/models"

// Actor identifies the authenticated caller behind a mutation. Trail entries
// are attributed to it.
type Actor struct {
	ID    int64
	Role  models.UserRole
	Email string
}
