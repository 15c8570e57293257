package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eduspark/edu-platform-api/internal/models"
	"github.com/eduspark/edu-platform-api/pkg/ai"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
)

type fakeAISrv struct {
	result     *ai.ValidationResult
	plan       *ai.LessonPlan
	err        error
	lastPrompt string
	lastRole   string
	lastParams ai.LessonPlanParams
}

func (f *fakeAISrv) Ask(_ context.Context, _ int64, role, prompt string) (*ai.ValidationResult, error) {
	f.lastRole = role
	f.lastPrompt = prompt
	return f.result, f.err
}

func (f *fakeAISrv) LessonPlan(_ context.Context, _ int64, role string, params ai.LessonPlanParams) (*ai.LessonPlan, error) {
	f.lastRole = role
	f.lastParams = params
	return f.plan, f.err
}

func TestAskForwardsPromptAndRole(t *testing.T) {
	srv := &fakeAISrv{result: &ai.ValidationResult{Compliant: true, Answer: "Photosynthesis converts light into energy."}}
	handler := NewAIHandler(srv)

	c, rec := newJSONContext(t, http.MethodPost, "/ai/validate", map[string]interface{}{
		"prompt": "Explain photosynthesis",
	})
	asUser(c, 31, models.RoleStudent)
	handler.Ask(c)

	assertStatus(t, rec, http.StatusOK)
	assert.Equal(t, "Explain photosynthesis", srv.lastPrompt)
	assert.Equal(t, "student", srv.lastRole)
}

func TestAskGuidelineViolation(t *testing.T) {
	srv := &fakeAISrv{err: appErrors.Clone(appErrors.ErrGuideline, "off-topic request")}
	handler := NewAIHandler(srv)

	c, rec := newJSONContext(t, http.MethodPost, "/ai/validate", map[string]interface{}{
		"prompt": "Write my essay for me",
	})
	asUser(c, 31, models.RoleStudent)
	handler.Ask(c)

	assertStatus(t, rec, http.StatusBadRequest)
}

func TestAskRequiresPrompt(t *testing.T) {
	handler := NewAIHandler(&fakeAISrv{})

	c, rec := newJSONContext(t, http.MethodPost, "/ai/validate", map[string]interface{}{})
	asUser(c, 31, models.RoleStudent)
	handler.Ask(c)

	assertStatus(t, rec, http.StatusBadRequest)
}

func TestLessonPlanForwardsParams(t *testing.T) {
	srv := &fakeAISrv{plan: &ai.LessonPlan{Title: "Intro to Fractions"}}
	handler := NewAIHandler(srv)

	c, rec := newJSONContext(t, http.MethodPost, "/ai/lesson-plan", map[string]interface{}{
		"subject":    "Math",
		"gradeLevel": "5",
		"topic":      "Fractions",
		"duration":   45,
	})
	asUser(c, 8, models.RoleTeacher)
	handler.LessonPlan(c)

	assertStatus(t, rec, http.StatusOK)
	assert.Equal(t, "Fractions", srv.lastParams.Topic)
	assert.Equal(t, "teacher", srv.lastRole)
}
