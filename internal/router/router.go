package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/eduspark/edu-platform-api/internal/handler"
	"github.com/eduspark/edu-platform-api/internal/middleware"
	"github.com/eduspark/edu-platform-api/internal/models"
	"github.com/eduspark/edu-platform-api/internal/service"
	"github.com/eduspark/edu-platform-api/pkg/config"
	"github.com/eduspark/edu-platform-api/pkg/logger"
	corsmiddleware "github.com/eduspark/edu-platform-api/pkg/middleware/cors"
	reqidmiddleware "github.com/eduspark/edu-platform-api/pkg/middleware/requestid"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	Registrations *handler.RegistrationHandler
	Users         *handler.UserHandler
	Dashboard     *handler.DashboardHandler
	Allocations   *handler.AllocationHandler
	Assignments   *handler.AssignmentHandler
	Attendance    *handler.AttendanceHandler
	Events        *handler.EventHandler
	AI            *handler.AIHandler
	Exports       *handler.ExportHandler
}

// Options carries the cross-cutting dependencies of the route tree.
type Options struct {
	Config  *config.Config
	Logger  *zap.Logger
	Auth    middleware.TokenValidator
	Trail   middleware.ActivityRecorder
	Metrics *service.MetricsService
}

// New builds the full gin engine: global middleware, liveness probes and the
// versioned API groups with per-role guards.
func New(h Handlers, opts Options) *gin.Engine {
	if opts.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.Config.CORS.AllowedOrigins))
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if opts.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := opts.Config.APIPrefix
	if prefix == "" {
		prefix = "/api"
	}
	api := r.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.GET("/verify", middleware.JWT(opts.Auth), h.Auth.Verify)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(opts.Auth))
	authed.Use(middleware.ActivityTrail(opts.Trail, opts.Logger))
	{
		authed.GET("/events/upcoming", h.Events.Upcoming)
		authed.POST("/ai/validate", h.AI.Ask)
		authed.POST("/ai/lesson-plan", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), h.AI.LessonPlan)
	}

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/registration-requests", h.Registrations.List)
		admin.PUT("/registration-requests/:id/approve", h.Registrations.Approve)
		admin.PUT("/registration-requests/:id/reject", h.Registrations.Reject)

		admin.GET("/users", h.Users.List)
		admin.PUT("/users/:id/deactivate", h.Users.Deactivate)
		admin.PUT("/users/:id/reactivate", h.Users.Reactivate)

		admin.GET("/dashboard/stats", h.Dashboard.AdminStats)
		admin.GET("/dashboard/attendance", h.Dashboard.AttendanceRate)
		admin.GET("/dashboard/tool-usage", h.Dashboard.ToolUsage)
		admin.GET("/dashboard/activity-trends", h.Dashboard.ActivityTrends)
		admin.GET("/dashboard/activities", h.Dashboard.RecentActivities)

		admin.GET("/classes", h.Allocations.Classes)
		admin.GET("/courses", h.Allocations.Courses)
		admin.GET("/teachers", h.Allocations.Teachers)
		admin.GET("/teacher-assignments", h.Allocations.List)
		admin.POST("/assign-teacher", h.Allocations.AssignTeacher)
		admin.PUT("/teacher-assignments/:id", h.Allocations.UpdateTeacherAssignment)
		admin.DELETE("/teacher-assignments/:id", h.Allocations.RemoveTeacherAssignment)
		admin.POST("/allocate-student", h.Allocations.AllocateStudent)
		admin.DELETE("/remove-student-allocation/:id", h.Allocations.RemoveStudentAllocation)

		admin.POST("/events", h.Events.Create)
		admin.DELETE("/events/:id", h.Events.Delete)
	}

	teacher := authed.Group("/teacher")
	teacher.Use(middleware.RequireRoles(models.RoleTeacher))
	{
		teacher.GET("/dashboard/stats", h.Dashboard.TeacherStats)
		teacher.GET("/dashboard/activities", h.Dashboard.TeacherActivities)
		teacher.GET("/students", h.Dashboard.Students)
		teacher.GET("/students/performance", h.Dashboard.StudentPerformance)
		teacher.GET("/classes", h.Dashboard.TeacherClasses)
		teacher.GET("/courses", h.Dashboard.TeacherCourses)

		teacher.GET("/assignments", h.Assignments.ListForTeacher)
		teacher.POST("/assignments", h.Assignments.Create)
		teacher.PUT("/assignments/:id", h.Assignments.Update)
		teacher.DELETE("/assignments/:id", h.Assignments.Delete)

		teacher.POST("/attendance", h.Attendance.Mark)
		teacher.POST("/attendance/self", h.Attendance.MarkSelf)
		teacher.GET("/attendance/session", h.Attendance.Session)

		teacher.GET("/exports/attendance", h.Exports.AttendanceSummary)
	}

	student := authed.Group("/student")
	student.Use(middleware.RequireRoles(models.RoleStudent))
	{
		student.GET("/dashboard/stats", h.Dashboard.StudentStats)
		student.GET("/assignments", h.Assignments.ListForStudent)
		student.PUT("/assignments/:id/status", h.Assignments.UpdateStatus)
		student.GET("/courses", h.Dashboard.StudentCourses)
		student.GET("/classes", h.Dashboard.StudentClass)
		student.GET("/attendance/history", h.Attendance.History)
	}

	return r
}
