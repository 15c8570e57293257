package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduspark/edu-platform-api/internal/models"
	"github.com/eduspark/edu-platform-api/internal/repository"
	"github.com/eduspark/edu-platform-api/internal/service"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
	"github.com/eduspark/edu-platform-api/pkg/response"
)

// allocationService covers teaching assignments and student placement.
type allocationService interface {
	List(ctx context.Context) ([]models.ClassCourseDetail, error)
	Classes(ctx context.Context) ([]models.Class, error)
	Courses(ctx context.Context) ([]models.Course, error)
	Teachers(ctx context.Context) ([]repository.TeacherRef, error)
	AssignTeacher(ctx context.Context, actor service.Actor, input service.AssignTeacherInput) (*models.ClassCourse, error)
	UpdateTeacherAssignment(ctx context.Context, actor service.Actor, id int64, input service.AssignTeacherInput) (*models.ClassCourse, error)
	RemoveTeacherAssignment(ctx context.Context, actor service.Actor, id int64) error
	AllocateStudent(ctx context.Context, actor service.Actor, studentID, classID int64) error
	RemoveStudentAllocation(ctx context.Context, actor service.Actor, studentID int64) error
}

// AllocationHandler exposes admin allocation management.
type AllocationHandler struct {
	service allocationService
}

// NewAllocationHandler creates a new handler.
func NewAllocationHandler(svc allocationService) *AllocationHandler {
	return &AllocationHandler{service: svc}
}

// allocateStudentRequest is the student placement payload.
type allocateStudentRequest struct {
	StudentID int64 `json:"studentId" binding:"required"`
	ClassID   int64 `json:"classId" binding:"required"`
}

// List godoc
// @Summary List teaching assignments
// @Description Every class-course allocation with resolved display names
// @Tags Allocations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/teacher-assignments [get]
func (h *AllocationHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	details, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, details, nil)
}

// Classes godoc
// @Summary List classes
// @Tags Allocations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/classes [get]
func (h *AllocationHandler) Classes(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	classes, err := h.service.Classes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, classes, nil)
}

// Courses godoc
// @Summary List courses
// @Tags Allocations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/courses [get]
func (h *AllocationHandler) Courses(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	courses, err := h.service.Courses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, courses, nil)
}

// Teachers godoc
// @Summary List active teachers
// @Tags Allocations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/teachers [get]
func (h *AllocationHandler) Teachers(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	teachers, err := h.service.Teachers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, teachers, nil)
}

// AssignTeacher godoc
// @Summary Assign a teacher to a class and course
// @Tags Allocations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.AssignTeacherInput true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/assign-teacher [post]
func (h *AllocationHandler) AssignTeacher(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	var input service.AssignTeacherInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	allocation, err := h.service.AssignTeacher(c.Request.Context(), actorFrom(claims), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, allocation)
}

// UpdateTeacherAssignment godoc
// @Summary Update a teaching assignment
// @Tags Allocations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Allocation ID"
// @Param payload body service.AssignTeacherInput true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/teacher-assignments/{id} [put]
func (h *AllocationHandler) UpdateTeacherAssignment(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input service.AssignTeacherInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	allocation, err := h.service.UpdateTeacherAssignment(c.Request.Context(), actorFrom(claims), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, allocation, nil)
}

// RemoveTeacherAssignment godoc
// @Summary Remove a teaching assignment
// @Tags Allocations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Allocation ID"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Router /admin/teacher-assignments/{id} [delete]
func (h *AllocationHandler) RemoveTeacherAssignment(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.RemoveTeacherAssignment(c.Request.Context(), actorFrom(claims), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// AllocateStudent godoc
// @Summary Place a student in a class
// @Tags Allocations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body allocateStudentRequest true "Placement payload"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Router /admin/allocate-student [post]
func (h *AllocationHandler) AllocateStudent(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	var req allocateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid placement payload"))
		return
	}

	if err := h.service.AllocateStudent(c.Request.Context(), actorFrom(claims), req.StudentID, req.ClassID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// RemoveStudentAllocation godoc
// @Summary Remove a student's class placement
// @Tags Allocations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Router /admin/remove-student-allocation/{id} [delete]
func (h *AllocationHandler) RemoveStudentAllocation(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.RemoveStudentAllocation(c.Request.Context(), actorFrom(claims), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
