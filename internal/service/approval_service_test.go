package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eduspark/edu-platform-api/internal/models"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
)

type mockRegistrationRepo struct {
	requests     map[int64]models.RegistrationRequest
	approvedFor  map[string]bool
	statusWrites []statusWrite
	failUpdate   error
}

type statusWrite struct {
	id       int64
	status   models.RequestStatus
	reviewer string
}

func (m *mockRegistrationRepo) FindByID(ctx context.Context, id int64) (*models.RegistrationRequest, error) {
	if req, ok := m.requests[id]; ok {
		return &req, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRegistrationRepo) HasApprovedForUsername(ctx context.Context, username string) (bool, error) {
	return m.approvedFor[username], nil
}

func (m *mockRegistrationRepo) ListPendingByUsernameExcept(ctx context.Context, username string, excludeID int64) ([]int64, error) {
	var ids []int64
	for id, req := range m.requests {
		if id != excludeID && req.Username == username && req.Status == models.RequestPending {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockRegistrationRepo) UpdateStatus(ctx context.Context, id int64, status models.RequestStatus, reviewedBy string, reviewedAt time.Time) (int64, error) {
	if m.failUpdate != nil {
		return 0, m.failUpdate
	}
	req, ok := m.requests[id]
	if !ok {
		return 0, nil
	}
	req.Status = status
	m.requests[id] = req
	m.statusWrites = append(m.statusWrites, statusWrite{id: id, status: status, reviewer: reviewedBy})
	return 1, nil
}

func (m *mockRegistrationRepo) List(ctx context.Context) ([]models.RegistrationRequest, error) {
	return nil, nil
}

type mockApprovalUserRepo struct {
	byEmail         map[string]models.User
	created         []models.User
	profiles        []models.UserProfile
	deletedUsers    []int64
	deletedProfiles []int64
	failCreate      error
}

func (m *mockApprovalUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockApprovalUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	user.ID = int64(len(m.created) + 100)
	m.created = append(m.created, *user)
	return nil
}

func (m *mockApprovalUserRepo) HardDelete(ctx context.Context, id int64) error {
	m.deletedUsers = append(m.deletedUsers, id)
	return nil
}

func (m *mockApprovalUserRepo) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	m.profiles = append(m.profiles, *profile)
	return nil
}

func (m *mockApprovalUserRepo) DeleteProfile(ctx context.Context, userID int64) error {
	m.deletedProfiles = append(m.deletedProfiles, userID)
	return nil
}

type trailEntry struct {
	userID *int64
	role   string
	name   string
}

type mockActivityLog struct {
	entries []string
	rows    []trailEntry
	fail    error
}

func (m *mockActivityLog) Insert(ctx context.Context, userID *int64, role, name string) error {
	if m.fail != nil {
		return m.fail
	}
	m.entries = append(m.entries, name)
	m.rows = append(m.rows, trailEntry{userID: userID, role: role, name: name})
	return nil
}

// adminActor is the caller identity used across service tests.
var adminActor = Actor{ID: 7, Role: models.RoleAdmin, Email: "admin@school.edu"}

func pendingRequest(id int64, username string) models.RegistrationRequest {
	fullName := "Test User"
	return models.RegistrationRequest{
		ID:           id,
		Username:     username,
		PasswordHash: "hash",
		Role:         models.RoleStudent,
		Status:       models.RequestPending,
		FullName:     &fullName,
	}
}

func TestApproveProvisionsUserAndProfile(t *testing.T) {
	requests := &mockRegistrationRepo{requests: map[int64]models.RegistrationRequest{
		1: pendingRequest(1, "amina@school.edu"),
	}}
	users := &mockApprovalUserRepo{}
	trail := &mockActivityLog{}
	svc := NewApprovalService(requests, users, trail, zap.NewNop())

	req, err := svc.Approve(context.Background(), 1, adminActor)
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, req.Status)
	require.NotNil(t, req.ReviewedBy)
	assert.Equal(t, "admin@school.edu", *req.ReviewedBy)

	require.Len(t, users.created, 1)
	assert.Equal(t, "amina@school.edu", users.created[0].Email)
	assert.Equal(t, models.UserActive, users.created[0].Status)
	require.Len(t, users.profiles, 1)
	assert.Equal(t, "Test User", users.profiles[0].FullName)
	assert.Contains(t, trail.entries, models.ActivityApproveRegistration)
	require.Len(t, trail.rows, 1)
	require.NotNil(t, trail.rows[0].userID)
	assert.Equal(t, adminActor.ID, *trail.rows[0].userID, "trail attributed to the reviewing admin")
	assert.Equal(t, string(models.RoleAdmin), trail.rows[0].role)
}

func TestApproveMissingRequest(t *testing.T) {
	svc := NewApprovalService(&mockRegistrationRepo{}, &mockApprovalUserRepo{}, &mockActivityLog{}, zap.NewNop())

	_, err := svc.Approve(context.Background(), 404, adminActor)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestApproveIdempotentWhenAccountBacked(t *testing.T) {
	requests := &mockRegistrationRepo{
		requests:    map[int64]models.RegistrationRequest{1: pendingRequest(1, "amina@school.edu")},
		approvedFor: map[string]bool{"amina@school.edu": true},
	}
	users := &mockApprovalUserRepo{byEmail: map[string]models.User{
		"amina@school.edu": {ID: 50, Email: "amina@school.edu", Status: models.UserActive},
	}}
	trail := &mockActivityLog{}
	svc := NewApprovalService(requests, users, trail, zap.NewNop())

	req, err := svc.Approve(context.Background(), 1, adminActor)
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, req.Status)

	assert.Empty(t, users.created, "no second account for an already-backed username")
	assert.Empty(t, users.deletedUsers)
	assert.Contains(t, trail.entries, models.ActivityApproveRegistration)
}

func TestApproveRemovesUnauthorizedAccount(t *testing.T) {
	requests := &mockRegistrationRepo{
		requests: map[int64]models.RegistrationRequest{1: pendingRequest(1, "amina@school.edu")},
	}
	users := &mockApprovalUserRepo{byEmail: map[string]models.User{
		"amina@school.edu": {ID: 50, Email: "amina@school.edu", Status: models.UserActive},
	}}
	svc := NewApprovalService(requests, users, &mockActivityLog{}, zap.NewNop())

	_, err := svc.Approve(context.Background(), 1, adminActor)
	require.NoError(t, err)

	assert.Equal(t, []int64{50}, users.deletedProfiles, "profile removed before user")
	assert.Equal(t, []int64{50}, users.deletedUsers)
	require.Len(t, users.created, 1)
	assert.NotEqual(t, int64(50), users.created[0].ID)
}

func TestApproveFailureAfterRemediationIsConflict(t *testing.T) {
	requests := &mockRegistrationRepo{
		requests: map[int64]models.RegistrationRequest{1: pendingRequest(1, "amina@school.edu")},
	}
	users := &mockApprovalUserRepo{
		byEmail:    map[string]models.User{"amina@school.edu": {ID: 50, Email: "amina@school.edu"}},
		failCreate: errors.New("insert failed"),
	}
	svc := NewApprovalService(requests, users, &mockActivityLog{}, zap.NewNop())

	_, err := svc.Approve(context.Background(), 1, adminActor)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrRemediation.Code, appErr.Code)
}

func TestApproveRejectsPendingSiblings(t *testing.T) {
	requests := &mockRegistrationRepo{requests: map[int64]models.RegistrationRequest{
		1: pendingRequest(1, "amina@school.edu"),
		2: pendingRequest(2, "amina@school.edu"),
		3: pendingRequest(3, "other@school.edu"),
	}}
	svc := NewApprovalService(requests, &mockApprovalUserRepo{}, &mockActivityLog{}, zap.NewNop())

	_, err := svc.Approve(context.Background(), 1, adminActor)
	require.NoError(t, err)

	assert.Equal(t, models.RequestRejected, requests.requests[2].Status)
	assert.Equal(t, models.RequestApproved, requests.requests[1].Status)
	assert.Equal(t, models.RequestPending, requests.requests[3].Status, "other usernames untouched")
}

func TestRejectMissingRequest(t *testing.T) {
	svc := NewApprovalService(&mockRegistrationRepo{}, &mockApprovalUserRepo{}, &mockActivityLog{}, zap.NewNop())

	_, err := svc.Reject(context.Background(), 404, adminActor)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestRejectStampsReviewer(t *testing.T) {
	requests := &mockRegistrationRepo{requests: map[int64]models.RegistrationRequest{
		1: pendingRequest(1, "amina@school.edu"),
	}}
	trail := &mockActivityLog{}
	svc := NewApprovalService(requests, &mockApprovalUserRepo{}, trail, zap.NewNop())

	req, err := svc.Reject(context.Background(), 1, adminActor)
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, req.Status)
	require.NotNil(t, req.ReviewedAt)
	assert.Contains(t, trail.entries, models.ActivityRejectRegistration)
	require.Len(t, trail.rows, 1)
	require.NotNil(t, trail.rows[0].userID)
	assert.Equal(t, adminActor.ID, *trail.rows[0].userID)
}

func TestDecisionSurvivesTrailFailure(t *testing.T) {
	requests := &mockRegistrationRepo{requests: map[int64]models.RegistrationRequest{
		1: pendingRequest(1, "amina@school.edu"),
	}}
	trail := &mockActivityLog{fail: errors.New("trail down")}
	svc := NewApprovalService(requests, &mockApprovalUserRepo{}, trail, zap.NewNop())

	req, err := svc.Approve(context.Background(), 1, adminActor)
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, req.Status)
}
