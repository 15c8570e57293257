package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eduspark/edu-platform-api/internal/models"
	"github.com/eduspark/edu-platform-api/internal/repository"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
)

type mockDashboardUsers struct {
	activeCounts map[models.UserRole]int
	perDay       []repository.RegistrationDayCount
	students     []repository.StudentRef
}

func (m *mockDashboardUsers) CountActiveByRole(ctx context.Context, role models.UserRole) (int, error) {
	return m.activeCounts[role], nil
}

func (m *mockDashboardUsers) RegistrationsPerDay(ctx context.Context, since time.Time) ([]repository.RegistrationDayCount, error) {
	return m.perDay, nil
}

func (m *mockDashboardUsers) ListStudentsByTeacher(ctx context.Context, teacherID int64) ([]repository.StudentRef, error) {
	return m.students, nil
}

type mockPendingCounter struct{ pending int }

func (m *mockPendingCounter) CountPending(ctx context.Context) (int, error) {
	return m.pending, nil
}

type mockAttendanceTallier struct {
	tally      models.AttendanceTally
	perStudent map[int64]models.AttendanceTally
}

func (m *mockAttendanceTallier) Tally(ctx context.Context, filter models.AttendanceFilter, since time.Time) (models.AttendanceTally, error) {
	return m.tally, nil
}

func (m *mockAttendanceTallier) TallyForStudent(ctx context.Context, studentID int64, since time.Time) (models.AttendanceTally, error) {
	return m.perStudent[studentID], nil
}

func (m *mockAttendanceTallier) TallyForTeacher(ctx context.Context, teacherID int64, since time.Time) (models.AttendanceTally, error) {
	return m.tally, nil
}

type mockActivityReader struct {
	rows  []models.ActivityFeedRow
	usage []models.ToolUsageCount
}

func (m *mockActivityReader) ListToday(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityFeedRow, error) {
	return m.rows, nil
}

func (m *mockActivityReader) ListTodayForTeacher(ctx context.Context, teacherID int64) ([]models.ActivityFeedRow, error) {
	return m.rows, nil
}

func (m *mockActivityReader) ToolUsage(ctx context.Context, limit int) ([]models.ToolUsageCount, error) {
	return m.usage, nil
}

type mockDashboardAssignments struct {
	teacherRows []models.TeacherAssignmentRow
	completion  map[int64]models.CompletionTally
	upcoming    int
}

func (m *mockDashboardAssignments) ListByTeacher(ctx context.Context, teacherID int64) ([]models.TeacherAssignmentRow, error) {
	return m.teacherRows, nil
}

func (m *mockDashboardAssignments) CompletionTally(ctx context.Context, teacherID, studentID int64) (models.CompletionTally, error) {
	return m.completion[studentID], nil
}

func (m *mockDashboardAssignments) CountUpcomingByStudent(ctx context.Context, studentID int64) (int, error) {
	return m.upcoming, nil
}

type mockAllocationReader struct {
	classes int
	courses []models.Course
}

func (m *mockAllocationReader) CountClassesByTeacher(ctx context.Context, teacherID int64) (int, error) {
	return m.classes, nil
}

func (m *mockAllocationReader) ListCoursesByStudent(ctx context.Context, studentID int64) ([]models.Course, error) {
	return m.courses, nil
}

func (m *mockAllocationReader) ListClassesByTeacher(ctx context.Context, teacherID int64) ([]models.Class, error) {
	return nil, nil
}

func (m *mockAllocationReader) ListCoursesByTeacher(ctx context.Context, teacherID int64) ([]models.Course, error) {
	return m.courses, nil
}

func (m *mockAllocationReader) FindClassByStudent(ctx context.Context, studentID int64) (*models.Class, error) {
	return nil, sql.ErrNoRows
}

func newDashboardService(users *mockDashboardUsers, pending *mockPendingCounter, attendance *mockAttendanceTallier, activities *mockActivityReader, assignments *mockDashboardAssignments, allocations *mockAllocationReader) *DashboardService {
	return NewDashboardService(users, pending, attendance, activities, assignments, allocations, nil, DashboardConfig{}, zap.NewNop())
}

func TestPercentRounding(t *testing.T) {
	assert.Equal(t, 0, percent(3, 0), "zero denominator yields zero")
	assert.Equal(t, 67, percent(2, 3))
	assert.Equal(t, 33, percent(1, 3))
	assert.Equal(t, 50, percent(1, 2))
	assert.Equal(t, 100, percent(5, 5))
	assert.Equal(t, 0, percent(0, 10))
}

func TestAdminStats(t *testing.T) {
	users := &mockDashboardUsers{activeCounts: map[models.UserRole]int{
		models.RoleStudent: 120,
		models.RoleTeacher: 10,
		models.RoleAdmin:   2,
	}}
	attendance := &mockAttendanceTallier{tally: models.AttendanceTally{Present: 2, Total: 3}}
	svc := newDashboardService(users, &mockPendingCounter{pending: 4}, attendance, &mockActivityReader{}, &mockDashboardAssignments{}, &mockAllocationReader{})

	stats, err := svc.AdminStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, stats.TotalStudents)
	assert.Equal(t, 10, stats.TotalTeachers)
	assert.Equal(t, 2, stats.TotalAdmins)
	assert.Equal(t, 4, stats.PendingRequests)
	assert.Equal(t, 67, stats.AverageAttendance)
}

func TestToolLabel(t *testing.T) {
	assert.Equal(t, "Lesson Plan", toolLabel("use_lesson_plan"))
	assert.Equal(t, "Ai Tool", toolLabel("use_ai_tool"))
	assert.Equal(t, "Quiz", toolLabel("use_quiz"))
}

func TestToolUsageTransformsLabels(t *testing.T) {
	activities := &mockActivityReader{usage: []models.ToolUsageCount{
		{Name: "use_lesson_plan", Count: 12},
		{Name: "use_ai_tool", Count: 4},
	}}
	svc := newDashboardService(&mockDashboardUsers{}, &mockPendingCounter{}, &mockAttendanceTallier{}, activities, &mockDashboardAssignments{}, &mockAllocationReader{})

	stats, err := svc.ToolUsage(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "Lesson Plan", stats[0].Label)
	assert.Equal(t, 12, stats[0].Count)
}

func TestActivityTrendsZeroFills(t *testing.T) {
	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	users := &mockDashboardUsers{perDay: []repository.RegistrationDayCount{
		{Day: today.AddDate(0, 0, -2), Role: models.RoleTeacher, Count: 3},
		{Day: today, Role: models.RoleStudent, Count: 5},
	}}
	svc := newDashboardService(users, &mockPendingCounter{}, &mockAttendanceTallier{}, &mockActivityReader{}, &mockDashboardAssignments{}, &mockAllocationReader{})
	svc.now = func() time.Time { return today.Add(15 * time.Hour) }

	series, err := svc.ActivityTrends(context.Background())
	require.NoError(t, err)
	require.Len(t, series, 7, "default trailing window")

	assert.Equal(t, "2024-06-04", series[0].Date)
	assert.Zero(t, series[0].Teachers)
	assert.Zero(t, series[0].Students)
	assert.Equal(t, 3, series[4].Teachers)
	assert.Equal(t, 5, series[6].Students)
}

func TestActivityTrendsBucketsOnUTCDays(t *testing.T) {
	// A clock in a western zone where the local date lags the UTC date. The
	// series must still line up with the repository's UTC day buckets.
	losAngeles := time.FixedZone("PDT", -7*60*60)
	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	users := &mockDashboardUsers{perDay: []repository.RegistrationDayCount{
		{Day: today, Role: models.RoleStudent, Count: 2},
	}}
	svc := newDashboardService(users, &mockPendingCounter{}, &mockAttendanceTallier{}, &mockActivityReader{}, &mockDashboardAssignments{}, &mockAllocationReader{})
	svc.now = func() time.Time {
		// 2024-06-09 19:30 local is already 2024-06-10 02:30 UTC.
		return time.Date(2024, 6, 9, 19, 30, 0, 0, losAngeles)
	}

	series, err := svc.ActivityTrends(context.Background())
	require.NoError(t, err)
	require.Len(t, series, 7)
	assert.Equal(t, "2024-06-10", series[6].Date)
	assert.Equal(t, 2, series[6].Students)
}

func TestRecentActivitiesFiltersNoiseAndUnknownNames(t *testing.T) {
	now := time.Now()
	activities := &mockActivityReader{rows: []models.ActivityFeedRow{
		{Name: models.ActivityLogin, Role: "student", Timestamp: now, UserName: "Amina Yusuf"},
		{Name: "GET /api/admin/users", Role: "admin", Timestamp: now, UserName: "Admin"},
		{Name: "POST /api/auth/login", Role: "student", Timestamp: now, UserName: "Amina Yusuf"},
		{Name: "unmapped_activity", Role: "teacher", Timestamp: now, UserName: "Joseph Kimani"},
		{Name: models.ActivityMarkAttendance, Role: "teacher", Timestamp: now, UserName: "Joseph Kimani"},
	}}
	svc := newDashboardService(&mockDashboardUsers{}, &mockPendingCounter{}, &mockAttendanceTallier{}, activities, &mockDashboardAssignments{}, &mockAllocationReader{})

	feed, err := svc.RecentActivities(context.Background(), models.ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "logged in", feed[0].Description)
	assert.Equal(t, "marked attendance", feed[1].Description)
}

func TestTeacherStats(t *testing.T) {
	users := &mockDashboardUsers{students: []repository.StudentRef{{ID: 11}, {ID: 12}}}
	attendance := &mockAttendanceTallier{tally: models.AttendanceTally{Present: 9, Total: 10}}
	assignments := &mockDashboardAssignments{teacherRows: []models.TeacherAssignmentRow{
		{ID: 1, SubmittedCount: 2},
		{ID: 2, SubmittedCount: 1},
	}}
	svc := newDashboardService(users, &mockPendingCounter{}, attendance, &mockActivityReader{}, assignments, &mockAllocationReader{classes: 3})

	stats, err := svc.TeacherStats(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalStudents)
	assert.Equal(t, 3, stats.TotalClasses)
	assert.Equal(t, 2, stats.TotalAssignments)
	assert.Equal(t, 3, stats.CompletedAssignments)
	assert.Equal(t, 90, stats.AverageAttendance)
}

func TestStudentPerformanceRates(t *testing.T) {
	users := &mockDashboardUsers{students: []repository.StudentRef{
		{ID: 11, FullName: "Amina Yusuf"},
		{ID: 12, FullName: "Brian Otieno"},
	}}
	attendance := &mockAttendanceTallier{perStudent: map[int64]models.AttendanceTally{
		11: {Present: 2, Total: 3},
	}}
	assignments := &mockDashboardAssignments{completion: map[int64]models.CompletionTally{
		11: {Completed: 1, Total: 4},
	}}
	svc := newDashboardService(users, &mockPendingCounter{}, attendance, &mockActivityReader{}, assignments, &mockAllocationReader{})

	rows, err := svc.StudentPerformance(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 67, rows[0].AttendancePercent)
	assert.Equal(t, 25, rows[0].CompletionPercent)
	assert.Zero(t, rows[1].AttendancePercent, "no marks yields zero, not an error")
	assert.Zero(t, rows[1].CompletionPercent)
}

func TestStudentStats(t *testing.T) {
	attendance := &mockAttendanceTallier{perStudent: map[int64]models.AttendanceTally{
		11: {Present: 8, Total: 10},
	}}
	assignments := &mockDashboardAssignments{upcoming: 3}
	allocations := &mockAllocationReader{courses: []models.Course{{ID: 1}, {ID: 2}}}
	svc := newDashboardService(&mockDashboardUsers{}, &mockPendingCounter{}, attendance, &mockActivityReader{}, assignments, allocations)

	stats, err := svc.StudentStats(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.UpcomingAssignments)
	assert.Equal(t, 80, stats.AttendancePercent)
	assert.Equal(t, 2, stats.EnrolledCourses)
}

func TestStudentClassUnallocated(t *testing.T) {
	svc := newDashboardService(&mockDashboardUsers{}, &mockPendingCounter{}, &mockAttendanceTallier{}, &mockActivityReader{}, &mockDashboardAssignments{}, &mockAllocationReader{})

	_, err := svc.StudentClass(context.Background(), 11)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
