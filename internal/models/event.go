package models

import "time"

// Event is a school calendar entry surfaced on dashboards.
type Event struct {
	ID          int64     `db:"event_id" json:"event_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Date        time.Time `db:"event_date" json:"event_date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
