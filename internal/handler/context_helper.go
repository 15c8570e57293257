package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eduspark/edu-platform-api/internal/middleware"
	"github.com/eduspark/edu-platform-api/internal/models"
	"github.com/eduspark/edu-platform-api/internal/service"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
	"github.com/eduspark/edu-platform-api/pkg/response"
)

// actorFrom maps the caller's claims onto the service-layer actor identity.
func actorFrom(claims *models.JWTClaims) service.Actor {
	return service.Actor{ID: claims.UserID, Role: claims.Role, Email: claims.Email}
}

// currentClaims extracts the authenticated identity or writes a 401.
func currentClaims(c *gin.Context) (*models.JWTClaims, bool) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return claims, true
}

// pathID parses a numeric path parameter or writes a 400.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+name))
		return 0, false
	}
	return id, true
}

// queryInt64 parses an optional numeric query parameter.
func queryInt64(c *gin.Context, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return &value, nil
}
