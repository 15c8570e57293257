package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduspark/edu-platform-api/internal/dto"
	"github.com/eduspark/edu-platform-api/internal/models"
	"github.com/eduspark/edu-platform-api/internal/repository"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
	"github.com/eduspark/edu-platform-api/pkg/response"
)

// dashboardService is the aggregation surface the dashboard endpoints consume.
type dashboardService interface {
	AdminStats(ctx context.Context) (*dto.AdminStatsResponse, error)
	AttendanceRate(ctx context.Context, filter models.AttendanceFilter) (*dto.AttendanceRateResponse, error)
	ToolUsage(ctx context.Context) ([]dto.ToolUsageStat, error)
	ActivityTrends(ctx context.Context) ([]dto.RegistrationTrendPoint, error)
	RecentActivities(ctx context.Context, filter models.ActivityFilter) ([]dto.ActivityFeedItem, error)
	RecentActivitiesForTeacher(ctx context.Context, teacherID int64) ([]dto.ActivityFeedItem, error)
	TeacherStats(ctx context.Context, teacherID int64) (*dto.TeacherStatsResponse, error)
	StudentPerformance(ctx context.Context, teacherID int64) ([]dto.StudentPerformance, error)
	StudentStats(ctx context.Context, studentID int64) (*dto.StudentStatsResponse, error)
	Students(ctx context.Context, teacherID int64) ([]repository.StudentRef, error)
	TeacherClasses(ctx context.Context, teacherID int64) ([]models.Class, error)
	TeacherCourses(ctx context.Context, teacherID int64) ([]models.Course, error)
	StudentCourses(ctx context.Context, studentID int64) ([]models.Course, error)
	StudentClass(ctx context.Context, studentID int64) (*models.Class, error)
}

// DashboardHandler serves aggregated stats for every role's landing page.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc dashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// AdminStats godoc
// @Summary Admin dashboard summary
// @Description Headcounts, pending requests and the 30 day attendance rate
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/dashboard/stats [get]
func (h *DashboardHandler) AdminStats(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	stats, err := h.service.AdminStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil)
}

// AttendanceRate godoc
// @Summary Filtered attendance rate
// @Description Attendance percentage narrowed by role, user, class and window
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param role query string false "Filter by role (student or teacher)"
// @Param userId query int false "Filter by user"
// @Param classId query int false "Filter by class"
// @Param timeRange query string false "Lookback window (week, month, semester, year)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/dashboard/attendance [get]
func (h *DashboardHandler) AttendanceRate(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	window := c.Query("timeRange")
	if window == "" {
		window = c.Query("range")
	}
	filter := models.AttendanceFilter{
		Role:      models.UserRole(c.Query("role")),
		TimeRange: models.TimeRange(window),
	}
	if filter.Role != "" && !filter.Role.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid role"))
		return
	}
	userID, err := queryInt64(c, "userId")
	if err != nil {
		response.Error(c, err)
		return
	}
	classID, err := queryInt64(c, "classId")
	if err != nil {
		response.Error(c, err)
		return
	}
	filter.UserID = userID
	filter.ClassID = classID

	rate, err := h.service.AttendanceRate(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, rate, nil)
}

// ToolUsage godoc
// @Summary AI tool usage counters
// @Description Humanised use_* activity counters ordered by count
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard/tool-usage [get]
func (h *DashboardHandler) ToolUsage(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	usage, err := h.service.ToolUsage(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, usage, nil)
}

// ActivityTrends godoc
// @Summary Registration trend series
// @Description Per-day approved registrations split by role, zero filled
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard/activity-trends [get]
func (h *DashboardHandler) ActivityTrends(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	trends, err := h.service.ActivityTrends(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, trends, nil)
}

// RecentActivities godoc
// @Summary Today's activity feed
// @Description Display-ready activity lines, optionally narrowed by role, user or class
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param role query string false "Filter by actor role"
// @Param userId query int false "Filter by actor"
// @Param classId query int false "Filter by class"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/dashboard/activities [get]
func (h *DashboardHandler) RecentActivities(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	filter := models.ActivityFilter{Role: c.Query("role")}
	userID, err := queryInt64(c, "userId")
	if err != nil {
		response.Error(c, err)
		return
	}
	classID, err := queryInt64(c, "classId")
	if err != nil {
		response.Error(c, err)
		return
	}
	filter.UserID = userID
	filter.ClassID = classID

	feed, err := h.service.RecentActivities(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, feed, nil)
}

// TeacherStats godoc
// @Summary Teacher dashboard summary
// @Description Class, student and assignment counts for the authenticated teacher
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /teacher/dashboard/stats [get]
func (h *DashboardHandler) TeacherStats(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	stats, err := h.service.TeacherStats(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil)
}

// StudentPerformance godoc
// @Summary Per-student performance rows
// @Description Attendance and completion percentages for the teacher's students
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /teacher/students/performance [get]
func (h *DashboardHandler) StudentPerformance(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	rows, err := h.service.StudentPerformance(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, rows, nil)
}

// TeacherActivities godoc
// @Summary Teacher's activity feed
// @Description Today's activity lines for the teacher and their students
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /teacher/dashboard/activities [get]
func (h *DashboardHandler) TeacherActivities(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	feed, err := h.service.RecentActivitiesForTeacher(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, feed, nil)
}

// Students godoc
// @Summary The teacher's roster
// @Description Active students allocated to any of the teacher's classes
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /teacher/students [get]
func (h *DashboardHandler) Students(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	students, err := h.service.Students(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, students, nil)
}

// TeacherClasses godoc
// @Summary The teacher's classes
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /teacher/classes [get]
func (h *DashboardHandler) TeacherClasses(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	classes, err := h.service.TeacherClasses(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, classes, nil)
}

// TeacherCourses godoc
// @Summary The teacher's courses
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /teacher/courses [get]
func (h *DashboardHandler) TeacherCourses(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	courses, err := h.service.TeacherCourses(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, courses, nil)
}

// StudentCourses godoc
// @Summary The student's courses
// @Description Courses taught to the student's class
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /student/courses [get]
func (h *DashboardHandler) StudentCourses(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	courses, err := h.service.StudentCourses(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, courses, nil)
}

// StudentClass godoc
// @Summary The student's class placement
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/classes [get]
func (h *DashboardHandler) StudentClass(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	class, err := h.service.StudentClass(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, class, nil)
}

// StudentStats godoc
// @Summary Student dashboard summary
// @Description Upcoming assignments, attendance rate and enrolled course count
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /student/dashboard/stats [get]
func (h *DashboardHandler) StudentStats(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	stats, err := h.service.StudentStats(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil)
}
