package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eduspark/edu-platform-api/internal/models"
	"github.com/eduspark/edu-platform-api/internal/repository"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
)

type allocationStore interface {
	Create(ctx context.Context, alloc *models.ClassCourse) error
	Update(ctx context.Context, alloc *models.ClassCourse) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	FindByID(ctx context.Context, id int64) (*models.ClassCourse, error)
	ListDetails(ctx context.Context) ([]models.ClassCourseDetail, error)
}

type catalogReader interface {
	FindClassByID(ctx context.Context, id int64) (*models.Class, error)
	FindCourseByID(ctx context.Context, id int64) (*models.Course, error)
	ListClasses(ctx context.Context) ([]models.Class, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
}

type allocationUserStore interface {
	DisplayName(ctx context.Context, userID int64) (string, error)
	SetProfileClass(ctx context.Context, userID int64, classID *int64) (int64, error)
	ListTeachers(ctx context.Context) ([]repository.TeacherRef, error)
}

// AllocationService assigns teachers to class+course pairs and students to
// classes, recording a human-readable trail entry per change.
type AllocationService struct {
	allocations allocationStore
	catalog     catalogReader
	users       allocationUserStore
	activity    activityWriter
	logger      *zap.Logger
}

// NewAllocationService constructs the service with defaults.
func NewAllocationService(allocations allocationStore, catalog catalogReader, users allocationUserStore, activity activityWriter, logger *zap.Logger) *AllocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationService{
		allocations: allocations,
		catalog:     catalog,
		users:       users,
		activity:    activity,
		logger:      logger,
	}
}

// AssignTeacherInput carries the allocation parameters.
type AssignTeacherInput struct {
	TeacherID int64      `json:"teacherId" binding:"required"`
	ClassID   int64      `json:"classId" binding:"required"`
	CourseID  int64      `json:"courseId" binding:"required"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

// List returns all allocations with resolved display names.
func (s *AllocationService) List(ctx context.Context) ([]models.ClassCourseDetail, error) {
	return s.allocations.ListDetails(ctx)
}

// Classes returns the class catalogue.
func (s *AllocationService) Classes(ctx context.Context) ([]models.Class, error) {
	return s.catalog.ListClasses(ctx)
}

// Courses returns the course catalogue.
func (s *AllocationService) Courses(ctx context.Context) ([]models.Course, error) {
	return s.catalog.ListCourses(ctx)
}

// Teachers returns the active teachers available for assignment.
func (s *AllocationService) Teachers(ctx context.Context) ([]repository.TeacherRef, error) {
	return s.users.ListTeachers(ctx)
}

// AssignTeacher creates an allocation and records a descriptive trail entry.
func (s *AllocationService) AssignTeacher(ctx context.Context, actor Actor, input AssignTeacherInput) (*models.ClassCourse, error) {
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date precedes start date")
	}

	alloc := &models.ClassCourse{
		TeacherID: input.TeacherID,
		ClassID:   input.ClassID,
		CourseID:  input.CourseID,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}
	if err := s.allocations.Create(ctx, alloc); err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("assigned %s to teach %s for %s%s",
		s.displayName(ctx, alloc.TeacherID),
		s.courseName(ctx, alloc.CourseID),
		s.className(ctx, alloc.ClassID),
		rangeSuffix(alloc.StartDate, alloc.EndDate))
	s.logActivity(ctx, actor, desc)
	return alloc, nil
}

// UpdateTeacherAssignment edits an allocation, logging an old-to-new diff.
func (s *AllocationService) UpdateTeacherAssignment(ctx context.Context, actor Actor, id int64, input AssignTeacherInput) (*models.ClassCourse, error) {
	before, err := s.allocations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher assignment not found")
		}
		return nil, err
	}

	alloc := &models.ClassCourse{
		ID:        id,
		TeacherID: input.TeacherID,
		ClassID:   input.ClassID,
		CourseID:  input.CourseID,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}
	affected, err := s.allocations.Update(ctx, alloc)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher assignment not found")
	}

	desc := fmt.Sprintf("updated assignment: %s teaching %s for %s, now %s teaching %s for %s",
		s.displayName(ctx, before.TeacherID),
		s.courseName(ctx, before.CourseID),
		s.className(ctx, before.ClassID),
		s.displayName(ctx, alloc.TeacherID),
		s.courseName(ctx, alloc.CourseID),
		s.className(ctx, alloc.ClassID))
	s.logActivity(ctx, actor, desc)
	return alloc, nil
}

// RemoveTeacherAssignment deletes an allocation.
func (s *AllocationService) RemoveTeacherAssignment(ctx context.Context, actor Actor, id int64) error {
	before, err := s.allocations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher assignment not found")
		}
		return err
	}

	affected, err := s.allocations.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "teacher assignment not found")
	}

	desc := fmt.Sprintf("removed %s from teaching %s for %s",
		s.displayName(ctx, before.TeacherID),
		s.courseName(ctx, before.CourseID),
		s.className(ctx, before.ClassID))
	s.logActivity(ctx, actor, desc)
	return nil
}

// AllocateStudent places a student in a class.
func (s *AllocationService) AllocateStudent(ctx context.Context, actor Actor, studentID, classID int64) error {
	affected, err := s.users.SetProfileClass(ctx, studentID, &classID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
	}

	desc := fmt.Sprintf("allocated %s to %s",
		s.displayName(ctx, studentID),
		s.className(ctx, classID))
	s.logActivity(ctx, actor, desc)
	return nil
}

// RemoveStudentAllocation clears the student's class.
func (s *AllocationService) RemoveStudentAllocation(ctx context.Context, actor Actor, studentID int64) error {
	affected, err := s.users.SetProfileClass(ctx, studentID, nil)
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
	}

	desc := fmt.Sprintf("removed class allocation for %s", s.displayName(ctx, studentID))
	s.logActivity(ctx, actor, desc)
	return nil
}

// Name lookups degrade to a placeholder so a failed resolution never blocks
// the allocation itself.

func (s *AllocationService) displayName(ctx context.Context, userID int64) string {
	name, err := s.users.DisplayName(ctx, userID)
	if err != nil || name == "" {
		return "unknown"
	}
	return name
}

func (s *AllocationService) className(ctx context.Context, classID int64) string {
	class, err := s.catalog.FindClassByID(ctx, classID)
	if err != nil {
		return "unknown"
	}
	return class.Name
}

func (s *AllocationService) courseName(ctx context.Context, courseID int64) string {
	course, err := s.catalog.FindCourseByID(ctx, courseID)
	if err != nil {
		return "unknown"
	}
	return course.Name
}

func rangeSuffix(start, end *time.Time) string {
	if start == nil || end == nil {
		return ""
	}
	return fmt.Sprintf(" from %s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
}

func (s *AllocationService) logActivity(ctx context.Context, actor Actor, name string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Insert(ctx, &actor.ID, string(actor.Role), name); err != nil {
		s.logger.Warn("record activity", zap.String("activity", name), zap.Error(err))
	}
}
