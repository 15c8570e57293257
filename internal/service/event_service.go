package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eduspark/edu-platform-api/internal/models"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
)

type eventStore interface {
	Create(ctx context.Context, e *models.Event) error
	ListUpcoming(ctx context.Context) ([]models.Event, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// EventService manages school calendar events.
type EventService struct {
	events eventStore
	logger *zap.Logger
}

// NewEventService constructs the service with defaults.
func NewEventService(events eventStore, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{events: events, logger: logger}
}

// CreateEventInput is the event creation payload.
type CreateEventInput struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Date        time.Time `json:"eventDate" binding:"required"`
}

// Create inserts a new event.
func (s *EventService) Create(ctx context.Context, input CreateEventInput) (*models.Event, error) {
	event := &models.Event{
		Title:       input.Title,
		Description: input.Description,
		Date:        input.Date,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Upcoming returns the next events, soonest first, capped by limit.
func (s *EventService) Upcoming(ctx context.Context, limit int) ([]models.Event, error) {
	if limit <= 0 {
		limit = 5
	}
	events, err := s.events.ListUpcoming(ctx)
	if err != nil {
		return nil, err
	}
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, id int64) error {
	affected, err := s.events.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	return nil
}
