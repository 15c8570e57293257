package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eduspark/edu-platform-api/internal/models"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
)

type stubValidator struct {
	claims *models.JWTClaims
}

func (s *stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token == "good" && s.claims != nil {
		return s.claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type trailRecorder struct {
	entries []string
}

func (r *trailRecorder) Insert(ctx context.Context, userID *int64, role, name string) error {
	r.entries = append(r.entries, name)
	return nil
}

func newTestRouter(validator *stubValidator, recorder *trailRecorder, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/", JWT(validator))
	if recorder != nil {
		group.Use(ActivityTrail(recorder, zap.NewNop()))
	}
	if len(roles) > 0 {
		group.Use(RequireRoles(roles...))
	}
	group.GET("/resource", func(c *gin.Context) { c.Status(http.StatusOK) })
	group.POST("/resource", func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: 1, Email: "admin@school.edu", Role: models.RoleAdmin}
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	r := newTestRouter(&stubValidator{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	r := newTestRouter(&stubValidator{claims: adminClaims()}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set("Authorization", "Token good")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAcceptsBearerToken(t *testing.T) {
	r := newTestRouter(&stubValidator{claims: adminClaims()}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesForbidsOtherRoles(t *testing.T) {
	claims := &models.JWTClaims{UserID: 11, Role: models.RoleStudent}
	r := newTestRouter(&stubValidator{claims: claims}, nil, models.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestActivityTrailRecordsMutatingRequests(t *testing.T) {
	recorder := &trailRecorder{}
	r := newTestRouter(&stubValidator{claims: adminClaims()}, recorder)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/resource", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, recorder.entries, 1)
	assert.Equal(t, "POST /resource", recorder.entries[0])
}

func TestActivityTrailSkipsReads(t *testing.T) {
	recorder := &trailRecorder{}
	r := newTestRouter(&stubValidator{claims: adminClaims()}, recorder)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, recorder.entries)
}
