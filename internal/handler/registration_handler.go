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

// approvalService is the slice of the approval workflow the handler needs.
type approvalService interface {
	List(ctx context.Context) ([]models.RegistrationRequest, error)
	Approve(ctx context.Context, requestID int64, actor service.Actor) (*models.RegistrationRequest, error)
	Reject(ctx context.Context, requestID int64, actor service.Actor) (*models.RegistrationRequest, error)
}

// RegistrationHandler exposes the admin review queue.
type RegistrationHandler struct {
	service approvalService
}

// NewRegistrationHandler creates a new handler.
func NewRegistrationHandler(svc approvalService) *RegistrationHandler {
	return &RegistrationHandler{service: svc}
}

// List godoc
// @Summary List registration requests
// @Description Return every registration request, newest first
// @Tags Registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/registration-requests [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	requests, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, requests, nil)
}

// Approve godoc
// @Summary Approve a registration request
// @Description Provision the account and mark the request approved
// @Tags Registrations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Registration request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/registration-requests/{id}/approve [put]
func (h *RegistrationHandler) Approve(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	h.decide(c, h.service.Approve)
}

// Reject godoc
// @Summary Reject a registration request
// @Description Mark the request rejected without provisioning an account
// @Tags Registrations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Registration request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/registration-requests/{id}/reject [put]
func (h *RegistrationHandler) Reject(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	h.decide(c, h.service.Reject)
}

func (h *RegistrationHandler) decide(c *gin.Context, fn func(context.Context, int64, service.Actor) (*models.RegistrationRequest, error)) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	request, err := fn(c.Request.Context(), id, actorFrom(claims))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, request, nil)
}
