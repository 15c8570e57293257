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

// userAdminService covers the account management operations.
type userAdminService interface {
	List(ctx context.Context) ([]models.UserListItem, error)
	Deactivate(ctx context.Context, actor service.Actor, userID int64) error
	Reactivate(ctx context.Context, actor service.Actor, userID int64) error
}

// UserHandler exposes admin account management.
type UserHandler struct {
	service userAdminService
}

// NewUserHandler creates a new handler.
func NewUserHandler(svc userAdminService) *UserHandler {
	return &UserHandler{service: svc}
}

// List godoc
// @Summary List user accounts
// @Description Return every account with its derived deleted flag
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/users [get]
func (h *UserHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	users, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, users, nil)
}

// Deactivate godoc
// @Summary Deactivate an account
// @Description Suspend the account so logins are refused
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Router /admin/users/{id}/deactivate [put]
func (h *UserHandler) Deactivate(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	h.setStatus(c, h.service.Deactivate)
}

// Reactivate godoc
// @Summary Reactivate an account
// @Description Restore a suspended account to active
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Router /admin/users/{id}/reactivate [put]
func (h *UserHandler) Reactivate(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	h.setStatus(c, h.service.Reactivate)
}

func (h *UserHandler) setStatus(c *gin.Context, fn func(context.Context, service.Actor, int64) error) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := fn(c.Request.Context(), actorFrom(claims), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
