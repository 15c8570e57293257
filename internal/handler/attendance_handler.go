package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eduspark/edu-platform-api/internal/models"
	"github.com/eduspark/edu-platform-api/internal/service"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
	"github.com/eduspark/edu-platform-api/pkg/response"
)

// attendanceService covers marking and reading attendance.
type attendanceService interface {
	Mark(ctx context.Context, teacherID int64, input service.MarkInput) error
	MarkSelf(ctx context.Context, teacherID int64, status models.AttendanceStatus) error
	Session(ctx context.Context, classCourseID int64, date time.Time) ([]models.Attendance, error)
	History(ctx context.Context, userID int64, limit int) ([]models.Attendance, error)
}

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// markSelfRequest is the teacher's own attendance payload.
type markSelfRequest struct {
	Status models.AttendanceStatus `json:"status"`
}

// Mark godoc
// @Summary Mark a class session
// @Description Record attendance for every student in one session
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.MarkInput true "Session payload"
// @Success 204 "No Content"
// @Failure 400 {object} response.Envelope
// @Router /teacher/attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	var input service.MarkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	if err := h.service.Mark(c.Request.Context(), claims.UserID, input); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// MarkSelf godoc
// @Summary Record the teacher's own attendance
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body markSelfRequest true "Status payload"
// @Success 204 "No Content"
// @Failure 400 {object} response.Envelope
// @Router /teacher/attendance/self [post]
func (h *AttendanceHandler) MarkSelf(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	var req markSelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	if err := h.service.MarkSelf(c.Request.Context(), claims.UserID, req.Status); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Session godoc
// @Summary Read one session's marks
// @Description Marks already taken for a class-course on a given date
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param classCourseId query int true "Allocation ID"
// @Param date query string true "Session date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /teacher/attendance/session [get]
func (h *AttendanceHandler) Session(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	classCourseID, err := strconv.ParseInt(c.Query("classCourseId"), 10, 64)
	if err != nil || classCourseID <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid classCourseId"))
		return
	}
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD"))
		return
	}

	marks, err := h.service.Session(c.Request.Context(), classCourseID, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, marks, nil)
}

// History godoc
// @Summary The caller's attendance history
// @Description Most recent attendance rows for the authenticated user
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Row limit (default 30)"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /student/attendance/history [get]
func (h *AttendanceHandler) History(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid limit"))
			return
		}
		limit = parsed
	}

	rows, err := h.service.History(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, rows, nil)
}
