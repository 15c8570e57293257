package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/eduspark/edu-platform-api/internal/models"
	"github.com/eduspark/edu-platform-api/pkg/ai"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
)

// aiAssistant is the slice of the AI client this service consumes.
type aiAssistant interface {
	ValidateContent(ctx context.Context, prompt, guidelines string) (*ai.ValidationResult, error)
	GenerateLessonPlan(ctx context.Context, params ai.LessonPlanParams) (*ai.LessonPlan, error)
}

// guidelineDocument is the standing content policy applied to every
// study-assistant prompt.
const guidelineDocument = `1. Content must be appropriate for a school environment.
2. Questions must relate to academic subjects, studying, or school life.
3. No requests for completed homework to submit as one's own.
4. No harmful, violent, or adult content.
5. No personal information about other students or staff.`

// AIService guards and serves the study assistant and lesson planner.
type AIService struct {
	client   aiAssistant
	activity activityWriter
	logger   *zap.Logger
}

// NewAIService constructs the service with defaults.
func NewAIService(client aiAssistant, activity activityWriter, logger *zap.Logger) *AIService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIService{client: client, activity: activity, logger: logger}
}

// Ask validates the prompt against the guidelines and answers it. A
// non-compliant prompt surfaces the refusal reason to the caller.
func (s *AIService) Ask(ctx context.Context, userID int64, role, prompt string) (*ai.ValidationResult, error) {
	if prompt == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "prompt is required")
	}
	if s.client == nil {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "assistant is not configured")
	}
	result, err := s.client.ValidateContent(ctx, prompt, guidelineDocument)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "assistant unavailable")
	}
	if !result.Compliant {
		return nil, appErrors.Clone(appErrors.ErrGuideline, result.Reason)
	}
	s.logActivity(ctx, userID, role, models.ActivityUseAITool)
	return result, nil
}

// LessonPlan generates a structured lesson plan for a teacher.
func (s *AIService) LessonPlan(ctx context.Context, userID int64, role string, params ai.LessonPlanParams) (*ai.LessonPlan, error) {
	if s.client == nil {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "assistant is not configured")
	}
	plan, err := s.client.GenerateLessonPlan(ctx, params)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "lesson plan generation failed")
	}
	s.logActivity(ctx, userID, role, models.ActivityUseLessonPlan)
	return plan, nil
}

func (s *AIService) logActivity(ctx context.Context, userID int64, role, name string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Insert(ctx, &userID, role, name); err != nil {
		s.logger.Warn("record activity", zap.String("activity", name), zap.Error(err))
	}
}
