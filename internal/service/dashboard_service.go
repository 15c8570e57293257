package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eduspark/edu-platform-api/internal/dto"
	"github.com/eduspark/edu-platform-api/internal/models"
	"github.com/eduspark/edu-platform-api/internal/repository"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
)

type dashboardUserStore interface {
	CountActiveByRole(ctx context.Context, role models.UserRole) (int, error)
	RegistrationsPerDay(ctx context.Context, since time.Time) ([]repository.RegistrationDayCount, error)
	ListStudentsByTeacher(ctx context.Context, teacherID int64) ([]repository.StudentRef, error)
}

type pendingCounter interface {
	CountPending(ctx context.Context) (int, error)
}

type attendanceTallier interface {
	Tally(ctx context.Context, filter models.AttendanceFilter, since time.Time) (models.AttendanceTally, error)
	TallyForStudent(ctx context.Context, studentID int64, since time.Time) (models.AttendanceTally, error)
	TallyForTeacher(ctx context.Context, teacherID int64, since time.Time) (models.AttendanceTally, error)
}

type activityReader interface {
	ListToday(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityFeedRow, error)
	ListTodayForTeacher(ctx context.Context, teacherID int64) ([]models.ActivityFeedRow, error)
	ToolUsage(ctx context.Context, limit int) ([]models.ToolUsageCount, error)
}

type dashboardAssignmentStore interface {
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.TeacherAssignmentRow, error)
	CompletionTally(ctx context.Context, teacherID, studentID int64) (models.CompletionTally, error)
	CountUpcomingByStudent(ctx context.Context, studentID int64) (int, error)
}

type teacherAllocationReader interface {
	CountClassesByTeacher(ctx context.Context, teacherID int64) (int, error)
	ListClassesByTeacher(ctx context.Context, teacherID int64) ([]models.Class, error)
	ListCoursesByTeacher(ctx context.Context, teacherID int64) ([]models.Course, error)
	ListCoursesByStudent(ctx context.Context, studentID int64) ([]models.Course, error)
	FindClassByStudent(ctx context.Context, studentID int64) (*models.Class, error)
}

// DashboardService aggregates counters, rates and feeds for the role-specific
// dashboards. Every public method is an independent query path; one failing
// panel never takes down the others.
type DashboardService struct {
	users       dashboardUserStore
	requests    pendingCounter
	attendance  attendanceTallier
	activities  activityReader
	assignments dashboardAssignmentStore
	allocations teacherAllocationReader
	cache       *CacheService
	cacheTTL    time.Duration
	trendDays   int
	toolTopN    int
	logger      *zap.Logger
	now         func() time.Time
}

// DashboardConfig carries dashboard tuning knobs.
type DashboardConfig struct {
	CacheTTL  time.Duration
	TrendDays int
	ToolTopN  int
}

// NewDashboardService constructs the service with defaults.
func NewDashboardService(
	users dashboardUserStore,
	requests pendingCounter,
	attendance attendanceTallier,
	activities activityReader,
	assignments dashboardAssignmentStore,
	allocations teacherAllocationReader,
	cache *CacheService,
	cfg DashboardConfig,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TrendDays <= 0 {
		cfg.TrendDays = 7
	}
	if cfg.ToolTopN <= 0 {
		cfg.ToolTopN = 20
	}
	return &DashboardService{
		users:       users,
		requests:    requests,
		attendance:  attendance,
		activities:  activities,
		assignments: assignments,
		allocations: allocations,
		cache:       cache,
		cacheTTL:    cfg.CacheTTL,
		trendDays:   cfg.TrendDays,
		toolTopN:    cfg.ToolTopN,
		logger:      logger,
		now:         time.Now,
	}
}

const (
	cacheKeyAdminStats = "dashboard:admin:stats"
	cacheKeyToolUsage  = "dashboard:tool-usage"
)

// percent rounds present/total to a whole percentage, half away from zero.
// A zero denominator yields 0.
func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// AdminStats returns the admin landing counters.
func (s *DashboardService) AdminStats(ctx context.Context) (*dto.AdminStatsResponse, error) {
	var cached dto.AdminStatsResponse
	if hit, _ := s.cache.Get(ctx, cacheKeyAdminStats, &cached); hit {
		return &cached, nil
	}

	students, err := s.users.CountActiveByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	teachers, err := s.users.CountActiveByRole(ctx, models.RoleTeacher)
	if err != nil {
		return nil, err
	}
	admins, err := s.users.CountActiveByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	pending, err := s.requests.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	tally, err := s.attendance.Tally(ctx, models.AttendanceFilter{}, s.now().AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}

	stats := &dto.AdminStatsResponse{
		TotalStudents:     students,
		TotalTeachers:     teachers,
		TotalAdmins:       admins,
		PendingRequests:   pending,
		AverageAttendance: percent(tally.Present, tally.Total),
	}
	if err := s.cache.Set(ctx, cacheKeyAdminStats, stats, s.cacheTTL); err != nil {
		s.logger.Warn("cache admin stats", zap.Error(err))
	}
	return stats, nil
}

// AttendanceRate returns a rounded attendance percentage for the filter.
func (s *DashboardService) AttendanceRate(ctx context.Context, filter models.AttendanceFilter) (*dto.AttendanceRateResponse, error) {
	since := filter.TimeRange.WindowStart(s.now())
	tally, err := s.attendance.Tally(ctx, filter, since)
	if err != nil {
		return nil, err
	}
	return &dto.AttendanceRateResponse{
		AverageAttendance: percent(tally.Present, tally.Total),
		PresentCount:      tally.Present,
		TotalCount:        tally.Total,
	}, nil
}

// ToolUsage returns the most used AI tools with humanised labels.
func (s *DashboardService) ToolUsage(ctx context.Context) ([]dto.ToolUsageStat, error) {
	var cached []dto.ToolUsageStat
	if hit, _ := s.cache.Get(ctx, cacheKeyToolUsage, &cached); hit {
		return cached, nil
	}

	counts, err := s.activities.ToolUsage(ctx, s.toolTopN)
	if err != nil {
		return nil, err
	}
	stats := make([]dto.ToolUsageStat, 0, len(counts))
	for _, c := range counts {
		stats = append(stats, dto.ToolUsageStat{Label: toolLabel(c.Name), Count: c.Count})
	}
	if err := s.cache.Set(ctx, cacheKeyToolUsage, stats, s.cacheTTL); err != nil {
		s.logger.Warn("cache tool usage", zap.Error(err))
	}
	return stats, nil
}

// toolLabel turns use_lesson_plan into "Lesson Plan".
func toolLabel(name string) string {
	trimmed := strings.TrimPrefix(name, "use_")
	words := strings.Split(trimmed, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ActivityTrends returns a contiguous per-day series of new teacher and
// student registrations for the trailing window. Days without registrations
// appear as zeros.
func (s *DashboardService) ActivityTrends(ctx context.Context) ([]dto.RegistrationTrendPoint, error) {
	// Day buckets are anchored on UTC to match the repository's grouping,
	// whatever zone the clock or DB session runs in.
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	since := today.AddDate(0, 0, -(s.trendDays - 1))
	counts, err := s.users.RegistrationsPerDay(ctx, since)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]*dto.RegistrationTrendPoint, s.trendDays)
	series := make([]dto.RegistrationTrendPoint, s.trendDays)
	for i := 0; i < s.trendDays; i++ {
		date := since.AddDate(0, 0, i).Format("2006-01-02")
		series[i] = dto.RegistrationTrendPoint{Date: date}
		byDay[date] = &series[i]
	}
	for _, c := range counts {
		point, ok := byDay[c.Day.Format("2006-01-02")]
		if !ok {
			continue
		}
		switch c.Role {
		case models.RoleTeacher:
			point.Teachers = c.Count
		case models.RoleStudent:
			point.Students = c.Count
		}
	}
	return series, nil
}

// httpNoise matches request-trail entries like "GET /api/admin/users".
var httpNoise = regexp.MustCompile(`^[A-Z]+ /`)

// activitySentences maps trail names to display sentences. Names outside the
// table are dropped from human-facing feeds.
var activitySentences = map[string]string{
	models.ActivityLogin:                  "logged in",
	models.ActivityApproveRegistration:    "approved a registration request",
	models.ActivityRejectRegistration:     "rejected a registration request",
	models.ActivityDeactivateUser:         "deactivated a user account",
	models.ActivityReactivateUser:         "reactivated a user account",
	models.ActivityCreateAssignment:       "created an assignment",
	models.ActivityUpdateAssignmentStatus: "updated an assignment status",
	models.ActivityMarkAttendance:         "marked attendance",
	models.ActivityUseAITool:              "used the AI assistant",
	models.ActivityUseLessonPlan:          "generated a lesson plan",
}

// RecentActivities returns today's display-ready activity feed.
func (s *DashboardService) RecentActivities(ctx context.Context, filter models.ActivityFilter) ([]dto.ActivityFeedItem, error) {
	rows, err := s.activities.ListToday(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.renderFeed(rows), nil
}

// RecentActivitiesForTeacher returns today's feed scoped to the teacher's
// classes.
func (s *DashboardService) RecentActivitiesForTeacher(ctx context.Context, teacherID int64) ([]dto.ActivityFeedItem, error) {
	rows, err := s.activities.ListTodayForTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return s.renderFeed(rows), nil
}

func (s *DashboardService) renderFeed(rows []models.ActivityFeedRow) []dto.ActivityFeedItem {
	feed := make([]dto.ActivityFeedItem, 0, len(rows))
	for _, row := range rows {
		if httpNoise.MatchString(row.Name) {
			continue
		}
		sentence, ok := activitySentences[row.Name]
		if !ok {
			continue
		}
		feed = append(feed, dto.ActivityFeedItem{
			Description: sentence,
			UserName:    row.UserName,
			Role:        row.Role,
			Timestamp:   row.Timestamp.Format(time.RFC3339),
		})
	}
	return feed
}

// TeacherStats summarises the teacher's classes, assignments and attendance.
func (s *DashboardService) TeacherStats(ctx context.Context, teacherID int64) (*dto.TeacherStatsResponse, error) {
	students, err := s.users.ListStudentsByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	classes, err := s.allocations.CountClassesByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignments.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	completed := 0
	for _, a := range assignments {
		completed += a.SubmittedCount
	}
	tally, err := s.attendance.TallyForTeacher(ctx, teacherID, s.now().AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}

	return &dto.TeacherStatsResponse{
		TotalStudents:        len(students),
		TotalClasses:         classes,
		TotalAssignments:     len(assignments),
		CompletedAssignments: completed,
		AverageAttendance:    percent(tally.Present, tally.Total),
	}, nil
}

// StudentPerformance returns per-student attendance and completion rates
// across the teacher's roster.
func (s *DashboardService) StudentPerformance(ctx context.Context, teacherID int64) ([]dto.StudentPerformance, error) {
	students, err := s.users.ListStudentsByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	since := s.now().AddDate(0, 0, -30)

	rows := make([]dto.StudentPerformance, 0, len(students))
	for _, student := range students {
		tally, err := s.attendance.TallyForStudent(ctx, student.ID, since)
		if err != nil {
			return nil, fmt.Errorf("student %d attendance: %w", student.ID, err)
		}
		completion, err := s.assignments.CompletionTally(ctx, teacherID, student.ID)
		if err != nil {
			return nil, fmt.Errorf("student %d completion: %w", student.ID, err)
		}
		rows = append(rows, dto.StudentPerformance{
			StudentID:            student.ID,
			FullName:             student.FullName,
			AttendancePercent:    percent(tally.Present, tally.Total),
			CompletionPercent:    percent(completion.Completed, completion.Total),
			AssignmentsTotal:     completion.Total,
			AssignmentsCompleted: completion.Completed,
		})
	}
	return rows, nil
}

// Students returns the teacher's roster.
func (s *DashboardService) Students(ctx context.Context, teacherID int64) ([]repository.StudentRef, error) {
	return s.users.ListStudentsByTeacher(ctx, teacherID)
}

// TeacherClasses returns the classes the teacher is allocated to.
func (s *DashboardService) TeacherClasses(ctx context.Context, teacherID int64) ([]models.Class, error) {
	return s.allocations.ListClassesByTeacher(ctx, teacherID)
}

// TeacherCourses returns the courses the teacher currently teaches.
func (s *DashboardService) TeacherCourses(ctx context.Context, teacherID int64) ([]models.Course, error) {
	return s.allocations.ListCoursesByTeacher(ctx, teacherID)
}

// StudentCourses returns the courses taught to the student's class.
func (s *DashboardService) StudentCourses(ctx context.Context, studentID int64) ([]models.Course, error) {
	return s.allocations.ListCoursesByStudent(ctx, studentID)
}

// StudentClass returns the student's class placement. An unallocated
// student maps to a NOT_FOUND error.
func (s *DashboardService) StudentClass(ctx context.Context, studentID int64) (*models.Class, error) {
	class, err := s.allocations.FindClassByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no class allocated")
		}
		return nil, err
	}
	return class, nil
}

// StudentStats summarises the student's own dashboard.
func (s *DashboardService) StudentStats(ctx context.Context, studentID int64) (*dto.StudentStatsResponse, error) {
	upcoming, err := s.assignments.CountUpcomingByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	tally, err := s.attendance.TallyForStudent(ctx, studentID, s.now().AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}
	courses, err := s.allocations.ListCoursesByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return &dto.StudentStatsResponse{
		UpcomingAssignments: upcoming,
		AttendancePercent:   percent(tally.Present, tally.Total),
		EnrolledCourses:     len(courses),
	}, nil
}
