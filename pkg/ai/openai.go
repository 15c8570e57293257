package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Config defines configuration options for the generative client.
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Greetings   []string
	Logger      *zap.Logger
}

// Client wraps the chat completion API for the study assistant and lesson planner.
type Client struct {
	api       *openai.Client
	cfg       Config
	greetings []string
	logger    *zap.Logger
}

// NewClient builds a generative client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	greetings := make([]string, 0, len(cfg.Greetings))
	for _, g := range cfg.Greetings {
		greetings = append(greetings, strings.ToLower(strings.TrimSpace(g)))
	}

	return &Client{
		api:       openai.NewClient(cfg.APIKey),
		cfg:       cfg,
		greetings: greetings,
		logger:    logger,
	}, nil
}

// ValidationResult captures the outcome of a guarded study-assistant exchange.
type ValidationResult struct {
	Compliant bool   `json:"compliant"`
	Greeting  bool   `json:"greeting"`
	Reason    string `json:"reason,omitempty"`
	Answer    string `json:"answer,omitempty"`
}

const notCompliantPrefix = "NOT_COMPLIANT:"

// ValidateContent checks a student prompt against the guideline document and,
// when compliant, generates the educational answer. Plain greetings skip the
// compliance evaluation and get a welcoming reply directly.
func (c *Client) ValidateContent(ctx context.Context, prompt, guidelines string) (*ValidationResult, error) {
	lower := strings.ToLower(strings.TrimSpace(prompt))
	for _, greeting := range c.greetings {
		if greeting != "" && strings.HasPrefix(lower, greeting) {
			answer, err := c.complete(ctx,
				"You are a friendly educational assistant.",
				fmt.Sprintf("Generate a warm and welcoming response to this greeting: %q", prompt))
			if err != nil {
				return nil, err
			}
			return &ValidationResult{Compliant: true, Greeting: true, Answer: answer}, nil
		}
	}

	verdict, err := c.complete(ctx,
		"You are an educational assistant enforcing content guidelines. Basic greetings and conversation starters are allowed. "+
			"Respond with exactly COMPLIANT, or with NOT_COMPLIANT: followed by the reason.",
		fmt.Sprintf("Input: %q\n\nGuidelines:\n%s\n\nResponse:", prompt, guidelines))
	if err != nil {
		return nil, err
	}

	verdict = strings.TrimSpace(verdict)
	if strings.HasPrefix(verdict, notCompliantPrefix) {
		reason := strings.TrimSpace(strings.TrimPrefix(verdict, notCompliantPrefix))
		return &ValidationResult{Compliant: false, Reason: reason}, nil
	}

	answer, err := c.complete(ctx,
		"You are an educational assistant helping students learn.",
		fmt.Sprintf("Provide a clear, thorough, and educational answer to this question:\n\n%s", prompt))
	if err != nil {
		return nil, err
	}
	return &ValidationResult{Compliant: true, Answer: answer}, nil
}

// LessonPlanParams describe a lesson-plan generation request.
type LessonPlanParams struct {
	Subject         string `json:"subject" validate:"required"`
	GradeLevel      string `json:"gradeLevel" validate:"required"`
	Topic           string `json:"topic" validate:"required"`
	DurationMinutes int    `json:"duration" validate:"required,gt=0"`
	Standards       string `json:"standards"`
	AdditionalNotes string `json:"additionalNotes"`
}

// LessonPlanActivity is one timed block within a lesson plan.
type LessonPlanActivity struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
}

// LessonPlan is the structured document returned to teachers.
type LessonPlan struct {
	Title      string               `json:"title"`
	Objectives []string             `json:"objectives"`
	Materials  []string             `json:"materials"`
	Activities []LessonPlanActivity `json:"activities"`
	Assessment string               `json:"assessment"`
	Subject    string               `json:"subject"`
	GradeLevel string               `json:"gradeLevel"`
	Duration   string               `json:"duration"`
	CreatedAt  time.Time            `json:"created_at"`
}

// GenerateLessonPlan asks the model for a strict-JSON lesson plan and validates
// the returned document shape. Malformed output is reported as an error, never
// returned to the caller.
func (c *Client) GenerateLessonPlan(ctx context.Context, params LessonPlanParams) (*LessonPlan, error) {
	prompt := buildLessonPlanPrompt(params)

	raw, err := c.complete(ctx,
		"You are a teaching assistant. Respond with ONLY a valid JSON document, no markdown or explanations.",
		prompt)
	if err != nil {
		return nil, err
	}

	plan, err := ParseLessonPlan(raw)
	if err != nil {
		c.logger.Warn("lesson plan response rejected", zap.Error(err))
		return nil, err
	}

	plan.Subject = params.Subject
	plan.GradeLevel = params.GradeLevel
	plan.Duration = fmt.Sprintf("%d minutes", params.DurationMinutes)
	plan.CreatedAt = time.Now().UTC()
	return plan, nil
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from model")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildLessonPlanPrompt(params LessonPlanParams) string {
	builder := strings.Builder{}
	builder.WriteString("Generate a detailed lesson plan in valid JSON format.\n\n")
	builder.WriteString("Parameters:\n")
	fmt.Fprintf(&builder, "Subject: %s\n", params.Subject)
	fmt.Fprintf(&builder, "Grade Level: %s\n", params.GradeLevel)
	fmt.Fprintf(&builder, "Topic: %s\n", params.Topic)
	fmt.Fprintf(&builder, "Duration: %d minutes\n", params.DurationMinutes)
	if params.Standards != "" {
		fmt.Fprintf(&builder, "Learning Standards: %s\n", params.Standards)
	}
	if params.AdditionalNotes != "" {
		fmt.Fprintf(&builder, "Additional Notes: %s\n", params.AdditionalNotes)
	}
	builder.WriteString("\nThe JSON must follow this exact structure:\n")
	builder.WriteString(`{"title":"string","objectives":["string"],"materials":["string"],` +
		`"activities":[{"title":"string","description":"string","duration":"string"}],"assessment":"string"}`)
	return builder.String()
}

// ParseLessonPlan decodes and validates a lesson plan document, stripping any
// markdown code fences the model wrapped around it.
func ParseLessonPlan(raw string) (*LessonPlan, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var plan LessonPlan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return nil, fmt.Errorf("parse lesson plan json: %w", err)
	}

	if plan.Title == "" || len(plan.Objectives) == 0 || len(plan.Materials) == 0 ||
		len(plan.Activities) == 0 || plan.Assessment == "" {
		return nil, fmt.Errorf("lesson plan is missing required fields")
	}
	for _, activity := range plan.Activities {
		if activity.Title == "" || activity.Description == "" || activity.Duration == "" {
			return nil, fmt.Errorf("lesson plan activity is missing required fields")
		}
	}

	plan.Assessment = strings.ReplaceAll(plan.Assessment, "\n", " ")
	return &plan, nil
}
