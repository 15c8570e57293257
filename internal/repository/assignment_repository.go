package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/eduspark/edu-platform-api/internal/models"
)

// AssignmentRepository manages assignments and per-student progress rows.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new instance of AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts an assignment and fills in its generated fields.
func (r *AssignmentRepository) Create(ctx context.Context, a *models.Assignment) error {
	const query = `INSERT INTO assignments (title, description, class_course_id, created_by_teacher_id, due_date)
		VALUES ($1, $2, $3, $4, $5) RETURNING assignment_id, created_at`
	row := r.db.QueryRowxContext(ctx, query, a.Title, a.Description, a.ClassCourseID, a.TeacherID, a.DueDate)
	if err := row.Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Update edits an assignment owned by the given teacher and returns rows
// affected.
func (r *AssignmentRepository) Update(ctx context.Context, a *models.Assignment) (int64, error) {
	const query = `UPDATE assignments SET title = $3, description = $4, due_date = $5
		WHERE assignment_id = $1 AND created_by_teacher_id = $2`
	res, err := r.db.ExecContext(ctx, query, a.ID, a.TeacherID, a.Title, a.Description, a.DueDate)
	if err != nil {
		return 0, fmt.Errorf("update assignment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update assignment: rows affected: %w", err)
	}
	return affected, nil
}

// Delete removes an assignment owned by the given teacher and returns rows
// affected.
func (r *AssignmentRepository) Delete(ctx context.Context, id, teacherID int64) (int64, error) {
	const query = `DELETE FROM assignments WHERE assignment_id = $1 AND created_by_teacher_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, teacherID)
	if err != nil {
		return 0, fmt.Errorf("delete assignment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete assignment: rows affected: %w", err)
	}
	return affected, nil
}

// FindByID returns one assignment. sql.ErrNoRows is passed through.
func (r *AssignmentRepository) FindByID(ctx context.Context, id int64) (*models.Assignment, error) {
	const query = `SELECT assignment_id, title, description, class_course_id, created_by_teacher_id, due_date, created_at
		FROM assignments WHERE assignment_id = $1 LIMIT 1`
	var a models.Assignment
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment by id: %w", err)
	}
	return &a, nil
}

// ListByTeacher returns the teacher's assignments with class and course
// names and completion counts, newest first.
func (r *AssignmentRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.TeacherAssignmentRow, error) {
	const query = `SELECT a.assignment_id, a.title, a.description, a.due_date, a.created_at,
		c.class_id, c.class_name, co.course_id, co.course_name,
		(SELECT COUNT(*) FROM user_profiles up WHERE up.class_id = c.class_id) AS total_students,
		(SELECT COUNT(*) FROM student_assignment_status sas
			WHERE sas.assignment_id = a.assignment_id AND sas.status = 'Completed') AS submitted_count
		FROM assignments a
		JOIN class_courses cc ON cc.id = a.class_course_id
		JOIN classes c ON c.class_id = cc.class_id
		JOIN courses co ON co.course_id = cc.course_id
		WHERE a.created_by_teacher_id = $1
		ORDER BY a.created_at DESC`
	var rows []models.TeacherAssignmentRow
	if err := r.db.SelectContext(ctx, &rows, query, teacherID); err != nil {
		return nil, fmt.Errorf("list assignments by teacher: %w", err)
	}
	return rows, nil
}

// ListByStudent returns assignments addressed to the student's class,
// joined with the student's own progress status.
func (r *AssignmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.StudentAssignmentRow, error) {
	const query = `SELECT a.assignment_id, a.title, a.description, a.due_date,
		co.course_name, COALESCE(tp.full_name, tu.email) AS teacher_name,
		COALESCE(sas.status, 'Not Attempted') AS status
		FROM assignments a
		JOIN class_courses cc ON cc.id = a.class_course_id
		JOIN courses co ON co.course_id = cc.course_id
		JOIN users tu ON tu.user_id = a.created_by_teacher_id
		LEFT JOIN user_profiles tp ON tp.user_id = tu.user_id
		LEFT JOIN student_assignment_status sas
			ON sas.assignment_id = a.assignment_id AND sas.student_id = $1
		WHERE cc.class_id = (SELECT class_id FROM user_profiles WHERE user_id = $1)
		ORDER BY a.due_date ASC`
	var rows []models.StudentAssignmentRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("list assignments by student: %w", err)
	}
	return rows, nil
}

// UpsertStatus records the student's progress on an assignment.
func (r *AssignmentRepository) UpsertStatus(ctx context.Context, assignmentID, studentID int64, status models.AssignmentStatus) error {
	const query = `INSERT INTO student_assignment_status (assignment_id, student_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (assignment_id, student_id) DO UPDATE SET status = EXCLUDED.status`
	if _, err := r.db.ExecContext(ctx, query, assignmentID, studentID, status); err != nil {
		return fmt.Errorf("upsert assignment status: %w", err)
	}
	return nil
}

// CompletionTally counts the student's completed and total assignments
// across the teacher's assignments.
func (r *AssignmentRepository) CompletionTally(ctx context.Context, teacherID, studentID int64) (models.CompletionTally, error) {
	const query = `SELECT
		COALESCE(SUM(CASE WHEN sas.status = 'Completed' THEN 1 ELSE 0 END), 0) AS completed_count,
		COUNT(*) AS total_count
		FROM assignments a
		LEFT JOIN student_assignment_status sas
			ON sas.assignment_id = a.assignment_id AND sas.student_id = $2
		WHERE a.created_by_teacher_id = $1`
	var tally models.CompletionTally
	if err := r.db.GetContext(ctx, &tally, query, teacherID, studentID); err != nil {
		return models.CompletionTally{}, fmt.Errorf("tally assignment completion: %w", err)
	}
	return tally, nil
}

// CountUpcomingByStudent counts the student's not-yet-due, not-completed
// assignments.
func (r *AssignmentRepository) CountUpcomingByStudent(ctx context.Context, studentID int64) (int, error) {
	const query = `SELECT COUNT(*)
		FROM assignments a
		JOIN class_courses cc ON cc.id = a.class_course_id
		LEFT JOIN student_assignment_status sas
			ON sas.assignment_id = a.assignment_id AND sas.student_id = $1
		WHERE cc.class_id = (SELECT class_id FROM user_profiles WHERE user_id = $1)
		AND a.due_date >= CURRENT_DATE
		AND COALESCE(sas.status, 'Not Attempted') <> 'Completed'`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID); err != nil {
		return 0, fmt.Errorf("count upcoming assignments: %w", err)
	}
	return count, nil
}
