package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eduspark/edu-platform-api/internal/models"
)

// UserRepository provides database access for accounts and profiles.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `user_id, email, password, role, user_status, created_at, updated_at`

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE user_id = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// Create inserts a new active user and fills in the generated identifier.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	const query = `INSERT INTO users (email, password, role, user_status)
		VALUES ($1, $2, $3, $4) RETURNING user_id, created_at, updated_at`
	if user.Status == 0 {
		user.Status = models.UserActive
	}
	row := r.db.QueryRowxContext(ctx, query, user.Email, user.PasswordHash, user.Role, user.Status)
	if err := row.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateStatus sets the account status and returns rows affected.
func (r *UserRepository) UpdateStatus(ctx context.Context, id int64, status models.UserStatus) (int64, error) {
	const query = `UPDATE users SET user_status = $2, updated_at = $3 WHERE user_id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("update user status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update user status: rows affected: %w", err)
	}
	return affected, nil
}

// HardDelete removes a user row entirely. Only the approval workflow's
// unauthorized-user remediation path uses this.
func (r *UserRepository) HardDelete(ctx context.Context, id int64) error {
	const query = `DELETE FROM users WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("hard delete user: %w", err)
	}
	return nil
}

// List returns all users newest first, with the derived deleted flag.
func (r *UserRepository) List(ctx context.Context) ([]models.UserListItem, error) {
	const query = `SELECT user_id, email, role, user_status,
		user_status IN (0, 2) AS is_deleted_user, created_at
		FROM users ORDER BY created_at DESC`
	var users []models.UserListItem
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// CountActiveByRole returns the number of active users holding the role.
func (r *UserRepository) CountActiveByRole(ctx context.Context, role models.UserRole) (int, error) {
	const query = `SELECT COUNT(*) FROM users WHERE role = $1 AND user_status = 1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, role); err != nil {
		return 0, fmt.Errorf("count active users by role: %w", err)
	}
	return count, nil
}

// CreateProfile inserts the 1:1 profile row for a user.
func (r *UserRepository) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	const query = `INSERT INTO user_profiles (user_id, full_name, contact_number) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, profile.UserID, profile.FullName, profile.ContactNumber); err != nil {
		return fmt.Errorf("create user profile: %w", err)
	}
	return nil
}

// DeleteProfile removes the profile row. The approval workflow deletes the
// profile before the user to satisfy referential order.
func (r *UserRepository) DeleteProfile(ctx context.Context, userID int64) error {
	const query = `DELETE FROM user_profiles WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("delete user profile: %w", err)
	}
	return nil
}

// SetProfileClass assigns or clears the student's class allocation and
// returns rows affected.
func (r *UserRepository) SetProfileClass(ctx context.Context, userID int64, classID *int64) (int64, error) {
	const query = `UPDATE user_profiles SET class_id = $2 WHERE user_id = $1`
	res, err := r.db.ExecContext(ctx, query, userID, classID)
	if err != nil {
		return 0, fmt.Errorf("set profile class: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("set profile class: rows affected: %w", err)
	}
	return affected, nil
}

// DisplayName resolves a user's display name from the profile full name,
// falling back to the account email.
func (r *UserRepository) DisplayName(ctx context.Context, userID int64) (string, error) {
	const query = `SELECT COALESCE(up.full_name, u.email) FROM users u
		LEFT JOIN user_profiles up ON up.user_id = u.user_id
		WHERE u.user_id = $1`
	var name string
	if err := r.db.GetContext(ctx, &name, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("resolve display name: %w", err)
	}
	return name, nil
}

// RegistrationsPerDay counts new teacher/student accounts per UTC calendar
// day since the cutoff. Days with no registrations produce no rows; the
// service layer zero-fills the series.
func (r *UserRepository) RegistrationsPerDay(ctx context.Context, since time.Time) ([]RegistrationDayCount, error) {
	const query = `SELECT DATE(created_at AT TIME ZONE 'UTC') AS day, role, COUNT(*) AS count
		FROM users
		WHERE created_at >= $1 AND role IN ('teacher', 'student')
		GROUP BY DATE(created_at AT TIME ZONE 'UTC'), role
		ORDER BY day ASC`
	var rows []RegistrationDayCount
	if err := r.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, fmt.Errorf("count registrations per day: %w", err)
	}
	return rows, nil
}

// RegistrationDayCount is one day/role bucket of new accounts.
type RegistrationDayCount struct {
	Day   time.Time       `db:"day"`
	Role  models.UserRole `db:"role"`
	Count int             `db:"count"`
}

// ListStudentsByTeacher returns active students allocated to any class the
// teacher is assigned to.
func (r *UserRepository) ListStudentsByTeacher(ctx context.Context, teacherID int64) ([]StudentRef, error) {
	const query = `SELECT u.user_id, up.full_name
		FROM users u
		JOIN user_profiles up ON up.user_id = u.user_id
		WHERE u.role = 'student' AND u.user_status = 1
		AND up.class_id IN (SELECT class_id FROM class_courses WHERE teacher_id = $1)
		ORDER BY up.full_name ASC`
	var students []StudentRef
	if err := r.db.SelectContext(ctx, &students, query, teacherID); err != nil {
		return nil, fmt.Errorf("list students by teacher: %w", err)
	}
	return students, nil
}

// ListStudentsByClass returns active students allocated to the class.
func (r *UserRepository) ListStudentsByClass(ctx context.Context, classID int64) ([]StudentRef, error) {
	const query = `SELECT u.user_id, up.full_name
		FROM users u
		JOIN user_profiles up ON up.user_id = u.user_id
		WHERE u.role = 'student' AND u.user_status = 1 AND up.class_id = $1
		ORDER BY up.full_name ASC`
	var students []StudentRef
	if err := r.db.SelectContext(ctx, &students, query, classID); err != nil {
		return nil, fmt.Errorf("list students by class: %w", err)
	}
	return students, nil
}

// ListTeachers returns active teachers for the assignment picker.
func (r *UserRepository) ListTeachers(ctx context.Context) ([]TeacherRef, error) {
	const query = `SELECT u.user_id, up.full_name
		FROM users u
		JOIN user_profiles up ON up.user_id = u.user_id
		WHERE u.role = 'teacher' AND u.user_status = 1
		ORDER BY up.full_name ASC`
	var teachers []TeacherRef
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// StudentRef is a minimal student identity for rosters.
type StudentRef struct {
	ID       int64  `db:"user_id" json:"user_id"`
	FullName string `db:"full_name" json:"full_name"`
}

// TeacherRef is a minimal teacher identity for allocation pickers.
type TeacherRef struct {
	ID       int64  `db:"user_id" json:"user_id"`
	FullName string `db:"full_name" json:"full_name"`
}
