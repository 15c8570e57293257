package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eduspark/edu-platform-api/internal/models"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
)

type attendanceStore interface {
	Upsert(ctx context.Context, mark *models.Attendance) error
	UpsertSelf(ctx context.Context, mark *models.Attendance) error
	ListByClassCourseAndDate(ctx context.Context, classCourseID int64, date time.Time) ([]models.Attendance, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]models.Attendance, error)
}

// AttendanceService records marks for class sessions and serves histories.
type AttendanceService struct {
	attendance attendanceStore
	activity   activityWriter
	logger     *zap.Logger
	now        func() time.Time
}

// NewAttendanceService constructs the service with defaults.
func NewAttendanceService(attendance attendanceStore, activity activityWriter, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		attendance: attendance,
		activity:   activity,
		logger:     logger,
		now:        time.Now,
	}
}

// StudentMark is one student's mark in a bulk submission.
type StudentMark struct {
	StudentID int64                   `json:"studentId" binding:"required"`
	Status    models.AttendanceStatus `json:"status"`
}

// MarkInput is a teacher's bulk attendance submission for one session.
type MarkInput struct {
	ClassCourseID int64         `json:"classCourseId" binding:"required"`
	Date          time.Time     `json:"date"`
	Marks         []StudentMark `json:"marks" binding:"required"`
}

// Mark records every student mark in the submission, replacing marks already
// taken for the same session.
func (s *AttendanceService) Mark(ctx context.Context, teacherID int64, input MarkInput) error {
	if len(input.Marks) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "no marks submitted")
	}
	date := input.Date
	if date.IsZero() {
		date = s.now().Truncate(24 * time.Hour)
	}

	for _, mark := range input.Marks {
		if !mark.Status.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, "invalid attendance status")
		}
		classCourseID := input.ClassCourseID
		if err := s.attendance.Upsert(ctx, &models.Attendance{
			UserID:        mark.StudentID,
			Role:          models.RoleStudent,
			ClassCourseID: &classCourseID,
			Date:          date,
			Status:        mark.Status,
		}); err != nil {
			return err
		}
	}

	s.logActivity(ctx, teacherID, string(models.RoleTeacher), models.ActivityMarkAttendance)
	return nil
}

// MarkSelf records the teacher's own attendance for the day.
func (s *AttendanceService) MarkSelf(ctx context.Context, teacherID int64, status models.AttendanceStatus) error {
	if !status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "invalid attendance status")
	}
	if err := s.attendance.UpsertSelf(ctx, &models.Attendance{
		UserID: teacherID,
		Role:   models.RoleTeacher,
		Date:   s.now().Truncate(24 * time.Hour),
		Status: status,
	}); err != nil {
		return err
	}
	s.logActivity(ctx, teacherID, string(models.RoleTeacher), models.ActivityMarkAttendance)
	return nil
}

// Session returns the marks taken for a class session.
func (s *AttendanceService) Session(ctx context.Context, classCourseID int64, date time.Time) ([]models.Attendance, error) {
	return s.attendance.ListByClassCourseAndDate(ctx, classCourseID, date)
}

// History returns the user's marks newest first.
func (s *AttendanceService) History(ctx context.Context, userID int64, limit int) ([]models.Attendance, error) {
	if limit <= 0 {
		limit = 30
	}
	return s.attendance.ListByUser(ctx, userID, limit)
}

func (s *AttendanceService) logActivity(ctx context.Context, userID int64, role, name string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Insert(ctx, &userID, role, name); err != nil {
		s.logger.Warn("record activity", zap.String("activity", name), zap.Error(err))
	}
}
