package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduspark/edu-platform-api/pkg/ai"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
	"github.com/eduspark/edu-platform-api/pkg/response"
)

// aiService covers the guarded AI assistant operations.
type aiService interface {
	Ask(ctx context.Context, userID int64, role, prompt string) (*ai.ValidationResult, error)
	LessonPlan(ctx context.Context, userID int64, role string, params ai.LessonPlanParams) (*ai.LessonPlan, error)
}

// AIHandler exposes the AI assistant endpoints.
type AIHandler struct {
	service aiService
}

// NewAIHandler creates a new handler.
func NewAIHandler(svc aiService) *AIHandler {
	return &AIHandler{service: svc}
}

// askRequest is the freeform prompt payload.
type askRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// Ask godoc
// @Summary Ask the AI assistant
// @Description Validate the prompt against school guidelines and answer it
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body askRequest true "Prompt payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /ai/validate [post]
func (h *AIHandler) Ask(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid prompt payload"))
		return
	}

	result, err := h.service.Ask(c.Request.Context(), claims.UserID, string(claims.Role), req.Prompt)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// LessonPlan godoc
// @Summary Generate a lesson plan
// @Description Produce a structured lesson plan for the given subject and topic
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body ai.LessonPlanParams true "Lesson plan parameters"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /ai/lesson-plan [post]
func (h *AIHandler) LessonPlan(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	var params ai.LessonPlanParams
	if err := c.ShouldBindJSON(&params); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lesson plan payload"))
		return
	}

	plan, err := h.service.LessonPlan(c.Request.Context(), claims.UserID, string(claims.Role), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, plan, nil)
}
