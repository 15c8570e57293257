package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/eduspark/edu-platform-api/internal/models"
)

// AllocationRepository manages teacher-to-class+course allocations.
type AllocationRepository struct {
	db *sqlx.DB
}

// NewAllocationRepository creates a new instance of AllocationRepository.
func NewAllocationRepository(db *sqlx.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

// Create inserts a class_courses row and fills in the generated identifier.
func (r *AllocationRepository) Create(ctx context.Context, alloc *models.ClassCourse) error {
	const query = `INSERT INTO class_courses (class_id, course_id, teacher_id, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	row := r.db.QueryRowxContext(ctx, query, alloc.ClassID, alloc.CourseID, alloc.TeacherID, alloc.StartDate, alloc.EndDate)
	if err := row.Scan(&alloc.ID); err != nil {
		return fmt.Errorf("create teacher allocation: %w", err)
	}
	return nil
}

// Update replaces the allocation's target tuple and returns rows affected.
func (r *AllocationRepository) Update(ctx context.Context, alloc *models.ClassCourse) (int64, error) {
	const query = `UPDATE class_courses SET class_id = $2, course_id = $3, teacher_id = $4, start_date = $5, end_date = $6
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, alloc.ID, alloc.ClassID, alloc.CourseID, alloc.TeacherID, alloc.StartDate, alloc.EndDate)
	if err != nil {
		return 0, fmt.Errorf("update teacher allocation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update teacher allocation: rows affected: %w", err)
	}
	return affected, nil
}

// Delete removes an allocation and returns rows affected.
func (r *AllocationRepository) Delete(ctx context.Context, id int64) (int64, error) {
	const query = `DELETE FROM class_courses WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete teacher allocation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete teacher allocation: rows affected: %w", err)
	}
	return affected, nil
}

// FindByID returns a bare allocation row.
func (r *AllocationRepository) FindByID(ctx context.Context, id int64) (*models.ClassCourse, error) {
	const query = `SELECT id, class_id, course_id, teacher_id, start_date, end_date FROM class_courses WHERE id = $1 LIMIT 1`
	var alloc models.ClassCourse
	if err := r.db.GetContext(ctx, &alloc, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find teacher allocation by id: %w", err)
	}
	return &alloc, nil
}

// ListDetails returns all allocations joined with display names.
func (r *AllocationRepository) ListDetails(ctx context.Context) ([]models.ClassCourseDetail, error) {
	const query = `SELECT cc.id, cc.class_id, cc.course_id, cc.teacher_id,
		c.class_name, co.course_name, COALESCE(up.full_name, u.email) AS teacher_name,
		cc.start_date, cc.end_date
		FROM class_courses cc
		JOIN classes c ON c.class_id = cc.class_id
		JOIN courses co ON co.course_id = cc.course_id
		JOIN users u ON u.user_id = cc.teacher_id
		LEFT JOIN user_profiles up ON up.user_id = u.user_id
		ORDER BY cc.id DESC`
	var details []models.ClassCourseDetail
	if err := r.db.SelectContext(ctx, &details, query); err != nil {
		return nil, fmt.Errorf("list teacher allocations: %w", err)
	}
	return details, nil
}

// FindClassCourseID resolves the allocation id for a teacher+class+course
// tuple. sql.ErrNoRows signals no such mapping exists.
func (r *AllocationRepository) FindClassCourseID(ctx context.Context, teacherID, classID, courseID int64) (int64, error) {
	const query = `SELECT id FROM class_courses WHERE teacher_id = $1 AND class_id = $2 AND course_id = $3 LIMIT 1`
	var id int64
	if err := r.db.GetContext(ctx, &id, query, teacherID, classID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return 0, err
		}
		return 0, fmt.Errorf("find class course id: %w", err)
	}
	return id, nil
}

// CountClassesByTeacher returns the number of distinct classes the teacher
// is allocated to.
func (r *AllocationRepository) CountClassesByTeacher(ctx context.Context, teacherID int64) (int, error) {
	const query = `SELECT COUNT(DISTINCT class_id) FROM class_courses WHERE teacher_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, teacherID); err != nil {
		return 0, fmt.Errorf("count classes by teacher: %w", err)
	}
	return count, nil
}

// ListCoursesByStudent returns the courses taught to the student's class.
func (r *AllocationRepository) ListCoursesByStudent(ctx context.Context, studentID int64) ([]models.Course, error) {
	const query = `SELECT DISTINCT co.course_id, co.course_name
		FROM class_courses cc
		JOIN courses co ON co.course_id = cc.course_id
		WHERE cc.class_id = (SELECT class_id FROM user_profiles WHERE user_id = $1)
		ORDER BY co.course_name ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, studentID); err != nil {
		return nil, fmt.Errorf("list courses by student: %w", err)
	}
	return courses, nil
}

// ListClassesByTeacher returns the classes the teacher is allocated to.
func (r *AllocationRepository) ListClassesByTeacher(ctx context.Context, teacherID int64) ([]models.Class, error) {
	const query = `SELECT DISTINCT cl.class_id, cl.class_name
		FROM class_courses cc
		JOIN classes cl ON cl.class_id = cc.class_id
		WHERE cc.teacher_id = $1
		ORDER BY cl.class_name ASC`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, teacherID); err != nil {
		return nil, fmt.Errorf("list classes by teacher: %w", err)
	}
	return classes, nil
}

// FindClassByStudent returns the class the student is allocated to.
// sql.ErrNoRows is passed through when the student has no placement.
func (r *AllocationRepository) FindClassByStudent(ctx context.Context, studentID int64) (*models.Class, error) {
	const query = `SELECT cl.class_id, cl.class_name
		FROM user_profiles up
		JOIN classes cl ON cl.class_id = up.class_id
		WHERE up.user_id = $1
		LIMIT 1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find class by student: %w", err)
	}
	return &class, nil
}

// ListCoursesByTeacher returns the courses the teacher currently teaches.
func (r *AllocationRepository) ListCoursesByTeacher(ctx context.Context, teacherID int64) ([]models.Course, error) {
	const query = `SELECT DISTINCT co.course_id, co.course_name
		FROM class_courses cc
		JOIN courses co ON co.course_id = cc.course_id
		WHERE cc.teacher_id = $1
		ORDER BY co.course_name ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, teacherID); err != nil {
		return nil, fmt.Errorf("list courses by teacher: %w", err)
	}
	return courses, nil
}
