package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/eduspark/edu-platform-api/internal/models"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
)

type assignmentStore interface {
	Create(ctx context.Context, a *models.Assignment) error
	Update(ctx context.Context, a *models.Assignment) (int64, error)
	Delete(ctx context.Context, id, teacherID int64) (int64, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.TeacherAssignmentRow, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.StudentAssignmentRow, error)
	UpsertStatus(ctx context.Context, assignmentID, studentID int64, status models.AssignmentStatus) error
}

type classCourseResolver interface {
	FindClassCourseID(ctx context.Context, teacherID, classID, courseID int64) (int64, error)
}

// AssignmentService covers teacher assignment management and student
// progress updates.
type AssignmentService struct {
	assignments assignmentStore
	allocations classCourseResolver
	activity    activityWriter
	logger      *zap.Logger
}

// NewAssignmentService constructs the service with defaults.
func NewAssignmentService(assignments assignmentStore, allocations classCourseResolver, activity activityWriter, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		assignments: assignments,
		allocations: allocations,
		activity:    activity,
		logger:      logger,
	}
}

// CreateAssignmentInput is the teacher's creation payload. Class and course
// identify the allocation; the teacher must actually hold it.
type CreateAssignmentInput struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	ClassID     int64     `json:"classId" binding:"required"`
	CourseID    int64     `json:"courseId" binding:"required"`
	DueDate     time.Time `json:"dueDate" binding:"required"`
}

// ListForTeacher returns the teacher's assignments with progress counts.
func (s *AssignmentService) ListForTeacher(ctx context.Context, teacherID int64) ([]models.TeacherAssignmentRow, error) {
	return s.assignments.ListByTeacher(ctx, teacherID)
}

// ListForStudent returns the student's assignments with their own status.
func (s *AssignmentService) ListForStudent(ctx context.Context, studentID int64) ([]models.StudentAssignmentRow, error) {
	return s.assignments.ListByStudent(ctx, studentID)
}

// Create resolves the teacher's allocation and inserts the assignment.
func (s *AssignmentService) Create(ctx context.Context, teacherID int64, input CreateAssignmentInput) (*models.Assignment, error) {
	classCourseID, err := s.allocations.FindClassCourseID(ctx, teacherID, input.ClassID, input.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "you are not assigned to this class and course")
		}
		return nil, err
	}

	assignment := &models.Assignment{
		Title:         input.Title,
		Description:   input.Description,
		ClassCourseID: classCourseID,
		TeacherID:     teacherID,
		DueDate:       input.DueDate,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, err
	}
	s.logActivity(ctx, teacherID, string(models.RoleTeacher), models.ActivityCreateAssignment)
	return assignment, nil
}

// Update edits an assignment the teacher owns.
func (s *AssignmentService) Update(ctx context.Context, teacherID, assignmentID int64, input CreateAssignmentInput) error {
	affected, err := s.assignments.Update(ctx, &models.Assignment{
		ID:          assignmentID,
		TeacherID:   teacherID,
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	return nil
}

// Delete removes an assignment the teacher owns.
func (s *AssignmentService) Delete(ctx context.Context, teacherID, assignmentID int64) error {
	affected, err := s.assignments.Delete(ctx, assignmentID, teacherID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	return nil
}

// UpdateStatus records the student's own progress on an assignment.
func (s *AssignmentService) UpdateStatus(ctx context.Context, studentID, assignmentID int64, status models.AssignmentStatus) error {
	if !status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "invalid assignment status")
	}
	if err := s.assignments.UpsertStatus(ctx, assignmentID, studentID, status); err != nil {
		return err
	}
	s.logActivity(ctx, studentID, string(models.RoleStudent), models.ActivityUpdateAssignmentStatus)
	return nil
}

func (s *AssignmentService) logActivity(ctx context.Context, userID int64, role, name string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Insert(ctx, &userID, role, name); err != nil {
		s.logger.Warn("record activity", zap.String("activity", name), zap.Error(err))
	}
}
