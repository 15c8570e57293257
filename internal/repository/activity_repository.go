package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/eduspark/edu-platform-api/internal/models"
)

// ActivityRepository provides append and read access to the activity trail.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository creates a new instance of ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Insert appends one activity entry. Entries are never mutated or deleted.
func (r *ActivityRepository) Insert(ctx context.Context, userID *int64, role, name string) error {
	const query = `INSERT INTO activities (user_id, role, activity_name) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, userID, role, name); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// ListToday returns today's activities joined with actor display names,
// optionally narrowed by role, user or class.
func (r *ActivityRepository) ListToday(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityFeedRow, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT a.activity_name, a.role, a.activity_timestamp,
		COALESCE(up.full_name, u.email, '') AS user_name
		FROM activities a
		LEFT JOIN users u ON a.user_id = u.user_id
		LEFT JOIN user_profiles up ON u.user_id = up.user_id
		WHERE DATE(a.activity_timestamp) = CURRENT_DATE`)
	var args []interface{}
	if filter.Role != "" {
		args = append(args, filter.Role)
		builder.WriteString(fmt.Sprintf(" AND a.role = $%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		builder.WriteString(fmt.Sprintf(" AND a.user_id = $%d", len(args)))
	}
	if filter.ClassID != nil {
		args = append(args, *filter.ClassID)
		builder.WriteString(fmt.Sprintf(" AND up.class_id = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY a.activity_timestamp DESC")

	var rows []models.ActivityFeedRow
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list today's activities: %w", err)
	}
	return rows, nil
}

// ListTodayForTeacher returns today's activities limited to students in the
// teacher's classes plus the teacher's own actions.
func (r *ActivityRepository) ListTodayForTeacher(ctx context.Context, teacherID int64) ([]models.ActivityFeedRow, error) {
	const query = `SELECT a.activity_name, a.role, a.activity_timestamp,
		COALESCE(up.full_name, u.email, '') AS user_name
		FROM activities a
		LEFT JOIN users u ON a.user_id = u.user_id
		LEFT JOIN user_profiles up ON u.user_id = up.user_id
		WHERE DATE(a.activity_timestamp) = CURRENT_DATE
		AND (a.user_id = $1 OR up.class_id IN (SELECT class_id FROM class_courses WHERE teacher_id = $1))
		ORDER BY a.activity_timestamp DESC`
	var rows []models.ActivityFeedRow
	if err := r.db.SelectContext(ctx, &rows, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher activities: %w", err)
	}
	return rows, nil
}

// ToolUsage counts use_* activities grouped by name, most used first.
func (r *ActivityRepository) ToolUsage(ctx context.Context, limit int) ([]models.ToolUsageCount, error) {
	const query = `SELECT activity_name, COUNT(*) AS usage_count
		FROM activities
		WHERE activity_name LIKE 'use_%'
		GROUP BY activity_name
		ORDER BY usage_count DESC
		LIMIT $1`
	var counts []models.ToolUsageCount
	if err := r.db.SelectContext(ctx, &counts, query, limit); err != nil {
		return nil, fmt.Errorf("count tool usage: %w", err)
	}
	return counts, nil
}
