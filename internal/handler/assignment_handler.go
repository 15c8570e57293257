package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduspark/edu-platform-api/internal/models"
	"github.com/eduspark/edu-platform-api/internal/service"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
	"github.com/eduspark/edu-platform-api/pkg/response"
)

// assignmentService covers teacher assignment management and student progress.
type assignmentService interface {
	ListForTeacher(ctx context.Context, teacherID int64) ([]models.TeacherAssignmentRow, error)
	ListForStudent(ctx context.Context, studentID int64) ([]models.StudentAssignmentRow, error)
	Create(ctx context.Context, teacherID int64, input service.CreateAssignmentInput) (*models.Assignment, error)
	Update(ctx context.Context, teacherID, assignmentID int64, input service.CreateAssignmentInput) error
	Delete(ctx context.Context, teacherID, assignmentID int64) error
	UpdateStatus(ctx context.Context, studentID, assignmentID int64, status models.AssignmentStatus) error
}

// AssignmentHandler exposes assignment endpoints for teachers and students.
type AssignmentHandler struct {
	service assignmentService
}

// NewAssignmentHandler creates a new handler.
func NewAssignmentHandler(svc assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// updateStatusRequest is the student's progress update payload.
type updateStatusRequest struct {
	Status models.AssignmentStatus `json:"status" binding:"required"`
}

// ListForTeacher godoc
// @Summary List the teacher's assignments
// @Description Assignments created by the teacher with submission progress
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /teacher/assignments [get]
func (h *AssignmentHandler) ListForTeacher(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	rows, err := h.service.ListForTeacher(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, rows, nil)
}

// Create godoc
// @Summary Create an assignment
// @Description Create an assignment on one of the teacher's allocations
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateAssignmentInput true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /teacher/assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	var input service.CreateAssignmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	assignment, err := h.service.Create(c.Request.Context(), claims.UserID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, assignment)
}

// Update godoc
// @Summary Update an assignment
// @Description Update an assignment the teacher created
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Param payload body service.CreateAssignmentInput true "Assignment payload"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Router /teacher/assignments/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
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

	var input service.CreateAssignmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	if err := h.service.Update(c.Request.Context(), claims.UserID, id, input); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Delete godoc
// @Summary Delete an assignment
// @Description Delete an assignment the teacher created
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Router /teacher/assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
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

	if err := h.service.Delete(c.Request.Context(), claims.UserID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ListForStudent godoc
// @Summary List the student's assignments
// @Description Assignments for the student's class with their own status
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /student/assignments [get]
func (h *AssignmentHandler) ListForStudent(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	rows, err := h.service.ListForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, rows, nil)
}

// UpdateStatus godoc
// @Summary Update assignment progress
// @Description Record the student's own progress on an assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Param payload body updateStatusRequest true "Status payload"
// @Success 204 "No Content"
// @Failure 400 {object} response.Envelope
// @Router /student/assignments/{id}/status [put]
func (h *AssignmentHandler) UpdateStatus(c *gin.Context) {
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

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), claims.UserID, id, req.Status); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
