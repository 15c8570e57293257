package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/eduspark/edu-platform-api/internal/models"
)

// EventRepository manages school calendar events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new instance of EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts an event and fills in its generated fields.
func (r *EventRepository) Create(ctx context.Context, e *models.Event) error {
	const query = `INSERT INTO events (title, description, event_date)
		VALUES ($1, $2, $3) RETURNING event_id, created_at`
	row := r.db.QueryRowxContext(ctx, query, e.Title, e.Description, e.Date)
	if err := row.Scan(&e.ID, &e.CreatedAt); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// ListUpcoming returns events on or after today, soonest first.
func (r *EventRepository) ListUpcoming(ctx context.Context) ([]models.Event, error) {
	const query = `SELECT event_id, title, description, event_date, created_at
		FROM events
		WHERE event_date >= CURRENT_DATE
		ORDER BY event_date ASC`
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return events, nil
}

// Delete removes an event and returns rows affected.
func (r *EventRepository) Delete(ctx context.Context, id int64) (int64, error) {
	const query = `DELETE FROM events WHERE event_id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete event: rows affected: %w", err)
	}
	return affected, nil
}
