package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eduspark/edu-platform-api/internal/models"
	"github.com/eduspark/edu-platform-api/internal/service"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
	"github.com/eduspark/edu-platform-api/pkg/response"
)

// eventService covers the school calendar.
type eventService interface {
	Create(ctx context.Context, input service.CreateEventInput) (*models.Event, error)
	Upcoming(ctx context.Context, limit int) ([]models.Event, error)
	Delete(ctx context.Context, id int64) error
}

// EventHandler exposes school event endpoints.
type EventHandler struct {
	service eventService
}

// NewEventHandler creates a new handler.
func NewEventHandler(svc eventService) *EventHandler {
	return &EventHandler{service: svc}
}

// Create godoc
// @Summary Create a school event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateEventInput true "Event payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/events [post]
func (h *EventHandler) Create(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	var input service.CreateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}

	event, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, event)
}

// Upcoming godoc
// @Summary List upcoming events
// @Description Events from today onward, soonest first
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Row limit (default 5)"
// @Success 200 {object} response.Envelope
// @Router /events/upcoming [get]
func (h *EventHandler) Upcoming(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid limit"))
			return
		}
		limit = parsed
	}

	events, err := h.service.Upcoming(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, events, nil)
}

// Delete godoc
// @Summary Delete a school event
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Router /admin/events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
