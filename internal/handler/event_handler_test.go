package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eduspark/edu-platform-api/internal/models"
	"github.com/eduspark/edu-platform-api/internal/service"
)

type fakeEventSrv struct {
	created   *models.Event
	err       error
	lastInput service.CreateEventInput
	lastLimit int
	deleted   []int64
}

func (f *fakeEventSrv) Create(_ context.Context, input service.CreateEventInput) (*models.Event, error) {
	f.lastInput = input
	return f.created, f.err
}

func (f *fakeEventSrv) Upcoming(_ context.Context, limit int) ([]models.Event, error) {
	f.lastLimit = limit
	return nil, f.err
}

func (f *fakeEventSrv) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func TestCreateEventSuccess(t *testing.T) {
	srv := &fakeEventSrv{created: &models.Event{ID: 1}}
	handler := NewEventHandler(srv)

	c, rec := newJSONContext(t, http.MethodPost, "/admin/events", map[string]interface{}{
		"title":     "Science Fair",
		"eventDate": "2026-10-01T00:00:00Z",
	})
	handler.Create(c)

	assertStatus(t, rec, http.StatusCreated)
	assert.Equal(t, "Science Fair", srv.lastInput.Title)
}

func TestCreateEventMissingTitle(t *testing.T) {
	handler := NewEventHandler(&fakeEventSrv{})

	c, rec := newJSONContext(t, http.MethodPost, "/admin/events", map[string]interface{}{
		"eventDate": "2026-10-01T00:00:00Z",
	})
	handler.Create(c)

	assertStatus(t, rec, http.StatusBadRequest)
}

func TestUpcomingForwardsLimit(t *testing.T) {
	srv := &fakeEventSrv{}
	handler := NewEventHandler(srv)

	c, rec := newJSONContext(t, http.MethodGet, "/events/upcoming?limit=3", nil)
	handler.Upcoming(c)

	assertStatus(t, rec, http.StatusOK)
	assert.Equal(t, 3, srv.lastLimit)
}

func TestDeleteEvent(t *testing.T) {
	srv := &fakeEventSrv{}
	handler := NewEventHandler(srv)

	c, rec := newJSONContext(t, http.MethodDelete, "/admin/events/4", nil)
	withPathID(c, "4")
	handler.Delete(c)
	c.Writer.WriteHeaderNow()

	assertStatus(t, rec, http.StatusNoContent)
	assert.Equal(t, []int64{4}, srv.deleted)
}
