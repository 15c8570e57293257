package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/eduspark/edu-platform-api/internal/models"
)

// CatalogRepository reads the class and course reference tables.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new instance of CatalogRepository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListClasses returns every class ordered by name.
func (r *CatalogRepository) ListClasses(ctx context.Context) ([]models.Class, error) {
	const query = `SELECT class_id, class_name FROM classes ORDER BY class_name ASC`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// ListCourses returns every course ordered by name.
func (r *CatalogRepository) ListCourses(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT course_id, course_name FROM courses ORDER BY course_name ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindClassByID returns a single class. sql.ErrNoRows is passed through.
func (r *CatalogRepository) FindClassByID(ctx context.Context, id int64) (*models.Class, error) {
	const query = `SELECT class_id, class_name FROM classes WHERE class_id = $1 LIMIT 1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find class by id: %w", err)
	}
	return &class, nil
}

// FindCourseByID returns a single course. sql.ErrNoRows is passed through.
func (r *CatalogRepository) FindCourseByID(ctx context.Context, id int64) (*models.Course, error) {
	const query = `SELECT course_id, course_name FROM courses WHERE course_id = $1 LIMIT 1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course by id: %w", err)
	}
	return &course, nil
}
