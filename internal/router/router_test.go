package router

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/eduspark/edu-platform-api/internal/handler"
	"github.com/eduspark/edu-platform-api/internal/models"
	"github.com/eduspark/edu-platform-api/internal/service"
	"github.com/eduspark/edu-platform-api/pkg/config"
)

// memUsers is an in-memory stand-in for the users and profiles tables.
type memUsers struct {
	nextID   int64
	users    map[int64]*models.User
	profiles map[int64]*models.UserProfile
}

func newMemUsers() *memUsers {
	return &memUsers{nextID: 1, users: map[int64]*models.User{}, profiles: map[int64]*models.UserProfile{}}
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memUsers) Create(_ context.Context, user *models.User) error {
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

func (m *memUsers) HardDelete(_ context.Context, id int64) error {
	delete(m.users, id)
	return nil
}

func (m *memUsers) CreateProfile(_ context.Context, profile *models.UserProfile) error {
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *memUsers) DeleteProfile(_ context.Context, userID int64) error {
	delete(m.profiles, userID)
	return nil
}

// memRequests is an in-memory stand-in for the registration_requests table.
type memRequests struct {
	nextID   int64
	requests map[int64]*models.RegistrationRequest
}

func newMemRequests() *memRequests {
	return &memRequests{nextID: 1, requests: map[int64]*models.RegistrationRequest{}}
}

func (m *memRequests) FindByID(_ context.Context, id int64) (*models.RegistrationRequest, error) {
	if req, ok := m.requests[id]; ok {
		copied := *req
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memRequests) HasApprovedForUsername(_ context.Context, username string) (bool, error) {
	for _, req := range m.requests {
		if req.Username == username && req.Status == models.RequestApproved {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRequests) ListPendingByUsernameExcept(_ context.Context, username string, excludeID int64) ([]int64, error) {
	var ids []int64
	for _, req := range m.requests {
		if req.Username == username && req.Status == models.RequestPending && req.ID != excludeID {
			ids = append(ids, req.ID)
		}
	}
	return ids, nil
}

func (m *memRequests) UpdateStatus(_ context.Context, id int64, status models.RequestStatus, reviewedBy string, reviewedAt time.Time) (int64, error) {
	req, ok := m.requests[id]
	if !ok {
		return 0, nil
	}
	req.Status = status
	req.ReviewedBy = &reviewedBy
	req.ReviewedAt = &reviewedAt
	return 1, nil
}

func (m *memRequests) List(_ context.Context) ([]models.RegistrationRequest, error) {
	out := make([]models.RegistrationRequest, 0, len(m.requests))
	for _, req := range m.requests {
		out = append(out, *req)
	}
	return out, nil
}

func (m *memRequests) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, req := range m.requests {
		if req.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRequests) Create(_ context.Context, req *models.RegistrationRequest) error {
	req.ID = m.nextID
	req.Status = models.RequestPending
	req.CreatedAt = time.Now()
	m.nextID++
	m.requests[req.ID] = req
	return nil
}

type noopTrail struct{}

func (noopTrail) Insert(context.Context, *int64, string, string) error { return nil }

func newTestServer(t *testing.T, users *memUsers, requests *memRequests) http.Handler {
	t.Helper()

	authSvc := service.NewAuthService(users, requests, noopTrail{}, validator.New(), zap.NewNop(), service.AuthConfig{
		Secret:     "integration-secret",
		Expiration: time.Hour,
		Issuer:     "eduspark-test",
	})
	approvalSvc := service.NewApprovalService(requests, users, noopTrail{}, zap.NewNop())

	return New(Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Registrations: handler.NewRegistrationHandler(approvalSvc),
		Users:         handler.NewUserHandler(nil),
		Dashboard:     handler.NewDashboardHandler(nil),
		Allocations:   handler.NewAllocationHandler(nil),
		Assignments:   handler.NewAssignmentHandler(nil),
		Attendance:    handler.NewAttendanceHandler(nil),
		Events:        handler.NewEventHandler(nil),
		AI:            handler.NewAIHandler(nil),
		Exports:       handler.NewExportHandler(nil),
	}, Options{
		Config: &config.Config{Env: config.EnvDevelopment, APIPrefix: "/api"},
		Logger: zap.NewNop(),
		Auth:   authSvc,
		Trail:  noopTrail{},
	})
}

func doJSON(t *testing.T, server http.Handler, method, target, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func seedAdmin(t *testing.T, users *memUsers) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), &models.User{
		Email:        "admin@school.edu",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Status:       models.UserActive,
	}))
}

func login(t *testing.T, server http.Handler, email, password string) string {
	t.Helper()
	rec := doJSON(t, server, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.Token)
	return envelope.Data.Token
}

func TestRegistrationLifecycle(t *testing.T) {
	users := newMemUsers()
	requests := newMemRequests()
	seedAdmin(t, users)
	server := newTestServer(t, users, requests)

	// A prospective student applies.
	rec := doJSON(t, server, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"email":    "student@school.edu",
		"password": "student-pass",
		"role":     "student",
		"fullName": "Sam Student",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// They cannot log in while pending.
	rec = doJSON(t, server, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    "student@school.edu",
		"password": "student-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The admin reviews the queue and approves.
	adminToken := login(t, server, "admin@school.edu", "admin-pass")

	rec = doJSON(t, server, http.MethodGet, "/api/admin/registration-requests", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodPut, "/api/admin/registration-requests/1/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.RequestApproved, requests.requests[1].Status)
	require.NotNil(t, requests.requests[1].ReviewedBy)
	assert.Equal(t, "admin@school.edu", *requests.requests[1].ReviewedBy)

	// The provisioned account can log in with the original password.
	studentToken := login(t, server, "student@school.edu", "student-pass")

	rec = doJSON(t, server, http.MethodGet, "/api/auth/verify", studentToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Role guard: students cannot reach the admin surface.
	rec = doJSON(t, server, http.MethodGet, "/api/admin/registration-requests", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Anonymous callers get rejected outright.
	rec = doJSON(t, server, http.MethodGet, "/api/admin/registration-requests", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestApproveVanishedRequest(t *testing.T) {
	users := newMemUsers()
	requests := newMemRequests()
	seedAdmin(t, users)
	server := newTestServer(t, users, requests)

	adminToken := login(t, server, "admin@school.edu", "admin-pass")

	rec := doJSON(t, server, http.MethodPut, "/api/admin/registration-requests/42/approve", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthProbes(t *testing.T) {
	server := newTestServer(t, newMemUsers(), newMemRequests())

	rec := doJSON(t, server, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
