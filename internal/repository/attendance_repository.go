package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eduspark/edu-platform-api/internal/models"
)

// AttendanceRepository records and aggregates attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository creates a new instance of AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Tally returns present and total mark counts inside the window, optionally
// narrowed by role, user or class.
func (r *AttendanceRepository) Tally(ctx context.Context, filter models.AttendanceFilter, since time.Time) (models.AttendanceTally, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT
		COALESCE(SUM(CASE WHEN at.attendance_status = 1 THEN 1 ELSE 0 END), 0) AS present_count,
		COUNT(*) AS total_count
		FROM attendance at
		LEFT JOIN user_profiles up ON at.user_id = up.user_id
		WHERE at.attendance_date >= $1`)
	args := []interface{}{since}
	if filter.Role != "" {
		args = append(args, filter.Role)
		builder.WriteString(fmt.Sprintf(" AND at.role = $%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		builder.WriteString(fmt.Sprintf(" AND at.user_id = $%d", len(args)))
	}
	if filter.ClassID != nil {
		args = append(args, *filter.ClassID)
		builder.WriteString(fmt.Sprintf(" AND up.class_id = $%d", len(args)))
	}

	var tally models.AttendanceTally
	if err := r.db.GetContext(ctx, &tally, builder.String(), args...); err != nil {
		return models.AttendanceTally{}, fmt.Errorf("tally attendance: %w", err)
	}
	return tally, nil
}

// TallyForStudent returns the student's present and total counts since the
// given date.
func (r *AttendanceRepository) TallyForStudent(ctx context.Context, studentID int64, since time.Time) (models.AttendanceTally, error) {
	const query = `SELECT
		COALESCE(SUM(CASE WHEN attendance_status = 1 THEN 1 ELSE 0 END), 0) AS present_count,
		COUNT(*) AS total_count
		FROM attendance
		WHERE user_id = $1 AND attendance_date >= $2`
	var tally models.AttendanceTally
	if err := r.db.GetContext(ctx, &tally, query, studentID, since); err != nil {
		return models.AttendanceTally{}, fmt.Errorf("tally student attendance: %w", err)
	}
	return tally, nil
}

// TallyForTeacher returns present and total counts for students allocated
// to any of the teacher's classes.
func (r *AttendanceRepository) TallyForTeacher(ctx context.Context, teacherID int64, since time.Time) (models.AttendanceTally, error) {
	const query = `SELECT
		COALESCE(SUM(CASE WHEN at.attendance_status = 1 THEN 1 ELSE 0 END), 0) AS present_count,
		COUNT(*) AS total_count
		FROM attendance at
		JOIN user_profiles up ON at.user_id = up.user_id
		WHERE at.attendance_date >= $1
		AND up.class_id IN (SELECT class_id FROM class_courses WHERE teacher_id = $2)`
	var tally models.AttendanceTally
	if err := r.db.GetContext(ctx, &tally, query, since, teacherID); err != nil {
		return models.AttendanceTally{}, fmt.Errorf("tally teacher attendance: %w", err)
	}
	return tally, nil
}

// Upsert records one mark, replacing any mark already taken for the same
// user, class course and date.
func (r *AttendanceRepository) Upsert(ctx context.Context, mark *models.Attendance) error {
	const query = `INSERT INTO attendance (user_id, role, class_course_id, attendance_date, attendance_status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, class_course_id, attendance_date)
		DO UPDATE SET attendance_status = EXCLUDED.attendance_status`
	if _, err := r.db.ExecContext(ctx, query, mark.UserID, mark.Role, mark.ClassCourseID, mark.Date, mark.Status); err != nil {
		return fmt.Errorf("upsert attendance mark: %w", err)
	}
	return nil
}

// UpsertSelf records a mark with no class course, replacing any same-day mark
// the user already took. Self marks carry a NULL class_course_id, which the
// unique constraint behind Upsert never matches, so the replacement is done as
// a delete plus insert inside one transaction.
func (r *AttendanceRepository) UpsertSelf(ctx context.Context, mark *models.Attendance) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin self attendance tx: %w", err)
	}
	defer tx.Rollback()

	const clear = `DELETE FROM attendance
		WHERE user_id = $1 AND attendance_date = $2 AND class_course_id IS NULL`
	if _, err := tx.ExecContext(ctx, clear, mark.UserID, mark.Date); err != nil {
		return fmt.Errorf("clear self attendance mark: %w", err)
	}

	const insert = `INSERT INTO attendance (user_id, role, class_course_id, attendance_date, attendance_status)
		VALUES ($1, $2, NULL, $3, $4)`
	if _, err := tx.ExecContext(ctx, insert, mark.UserID, mark.Role, mark.Date, mark.Status); err != nil {
		return fmt.Errorf("insert self attendance mark: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit self attendance tx: %w", err)
	}
	return nil
}

// ListByClassCourseAndDate returns all marks taken for the class course on
// the given date.
func (r *AttendanceRepository) ListByClassCourseAndDate(ctx context.Context, classCourseID int64, date time.Time) ([]models.Attendance, error) {
	const query = `SELECT id, user_id, role, class_course_id, attendance_date, attendance_status
		FROM attendance
		WHERE class_course_id = $1 AND attendance_date = $2
		ORDER BY user_id ASC`
	var marks []models.Attendance
	if err := r.db.SelectContext(ctx, &marks, query, classCourseID, date); err != nil {
		return nil, fmt.Errorf("list attendance by class course: %w", err)
	}
	return marks, nil
}

// ListByUser returns the user's marks newest first, capped by limit.
func (r *AttendanceRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]models.Attendance, error) {
	const query = `SELECT id, user_id, role, class_course_id, attendance_date, attendance_status
		FROM attendance
		WHERE user_id = $1
		ORDER BY attendance_date DESC
		LIMIT $2`
	var marks []models.Attendance
	if err := r.db.SelectContext(ctx, &marks, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list attendance by user: %w", err)
	}
	return marks, nil
}
