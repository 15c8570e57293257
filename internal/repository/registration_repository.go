package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eduspark/edu-platform-api/internal/models"
)

// RegistrationRepository provides database access to registration requests.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository creates a new instance of RegistrationRepository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = `id, username, password, role, status, created_at, reviewed_by, reviewed_at, full_name, contact_number`

// FindByID returns a registration request by identifier.
func (r *RegistrationRepository) FindByID(ctx context.Context, id int64) (*models.RegistrationRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM registration_requests WHERE id = $1 LIMIT 1`, registrationColumns)
	var req models.RegistrationRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find registration request by id: %w", err)
	}
	return &req, nil
}

// ExistsByUsername reports whether any request exists for the username,
// regardless of status.
func (r *RegistrationRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM registration_requests WHERE username = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, username); err != nil {
		return false, fmt.Errorf("check registration request by username: %w", err)
	}
	return exists, nil
}

// HasApprovedForUsername reports whether an approved request exists for the
// username. The approval workflow uses this to tell a legitimately
// provisioned user apart from an unauthorized one.
func (r *RegistrationRepository) HasApprovedForUsername(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM registration_requests WHERE username = $1 AND status = 'approved')`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, username); err != nil {
		return false, fmt.Errorf("check approved request for username: %w", err)
	}
	return exists, nil
}

// ListPendingByUsernameExcept returns the ids of pending sibling requests for
// the same username, excluding the request being decided.
func (r *RegistrationRepository) ListPendingByUsernameExcept(ctx context.Context, username string, excludeID int64) ([]int64, error) {
	const query = `SELECT id FROM registration_requests WHERE username = $1 AND status = 'pending' AND id != $2`
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, username, excludeID); err != nil {
		return nil, fmt.Errorf("list pending sibling requests: %w", err)
	}
	return ids, nil
}

// UpdateStatus stamps the decision on a request and returns the number of
// rows affected so callers can detect a missing id.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id int64, status models.RequestStatus, reviewedBy string, reviewedAt time.Time) (int64, error) {
	const query = `UPDATE registration_requests SET status = $2, reviewed_by = $3, reviewed_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, reviewedBy, reviewedAt)
	if err != nil {
		return 0, fmt.Errorf("update registration request status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update registration request status: rows affected: %w", err)
	}
	return affected, nil
}

// Create inserts a new pending registration request.
func (r *RegistrationRepository) Create(ctx context.Context, req *models.RegistrationRequest) error {
	const query = `INSERT INTO registration_requests (username, password, role, status, full_name, contact_number)
		VALUES ($1, $2, $3, 'pending', $4, $5) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, req.Username, req.PasswordHash, req.Role, req.FullName, req.ContactNumber)
	if err := row.Scan(&req.ID, &req.CreatedAt); err != nil {
		return fmt.Errorf("create registration request: %w", err)
	}
	req.Status = models.RequestPending
	return nil
}

// List returns all registration requests, newest first.
func (r *RegistrationRepository) List(ctx context.Context) ([]models.RegistrationRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM registration_requests ORDER BY created_at DESC`, registrationColumns)
	var requests []models.RegistrationRequest
	if err := r.db.SelectContext(ctx, &requests, query); err != nil {
		return nil, fmt.Errorf("list registration requests: %w", err)
	}
	return requests, nil
}

// CountPending returns the number of requests awaiting review.
func (r *RegistrationRepository) CountPending(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM registration_requests WHERE status = 'pending'`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count pending requests: %w", err)
	}
	return count, nil
}
