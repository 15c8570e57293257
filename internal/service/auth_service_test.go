package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/eduspark/edu-platform-api/internal/models"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
)

type mockAuthUsers struct {
	byEmail map[string]models.User
}

func (m *mockAuthUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

type mockAuthRequests struct {
	existing map[string]bool
	created  []models.RegistrationRequest
}

func (m *mockAuthRequests) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return m.existing[username], nil
}

func (m *mockAuthRequests) Create(ctx context.Context, req *models.RegistrationRequest) error {
	req.ID = int64(len(m.created) + 1)
	req.Status = models.RequestPending
	m.created = append(m.created, *req)
	return nil
}

func authConfig() AuthConfig {
	return AuthConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "edu-platform"}
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegisterCreatesPendingRequest(t *testing.T) {
	requests := &mockAuthRequests{}
	svc := NewAuthService(&mockAuthUsers{}, requests, &mockActivityLog{}, nil, zap.NewNop(), authConfig())

	req, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "amina@school.edu",
		Password: "s3cret-pass",
		Role:     "student",
		FullName: "Amina Yusuf",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, req.Status)
	assert.NotEqual(t, "s3cret-pass", req.PasswordHash, "password stored hashed")
	require.Len(t, requests.created, 1)
}

func TestRegisterRejectsExistingAccount(t *testing.T) {
	users := &mockAuthUsers{byEmail: map[string]models.User{
		"amina@school.edu": {ID: 1, Email: "amina@school.edu"},
	}}
	svc := NewAuthService(users, &mockAuthRequests{}, &mockActivityLog{}, nil, zap.NewNop(), authConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "amina@school.edu", Password: "s3cret-pass", Role: "student", FullName: "Amina Yusuf",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestRegisterRejectsDuplicateRequest(t *testing.T) {
	requests := &mockAuthRequests{existing: map[string]bool{"amina@school.edu": true}}
	svc := NewAuthService(&mockAuthUsers{}, requests, &mockActivityLog{}, nil, zap.NewNop(), authConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "amina@school.edu", Password: "s3cret-pass", Role: "student", FullName: "Amina Yusuf",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc := NewAuthService(&mockAuthUsers{}, &mockAuthRequests{}, &mockActivityLog{}, nil, zap.NewNop(), authConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "amina@school.edu", Password: "s3cret-pass", Role: "admin", FullName: "Amina Yusuf",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestLoginIssuesValidToken(t *testing.T) {
	users := &mockAuthUsers{byEmail: map[string]models.User{
		"amina@school.edu": {
			ID:           11,
			Email:        "amina@school.edu",
			PasswordHash: hashPassword(t, "s3cret-pass"),
			Role:         models.RoleStudent,
			Status:       models.UserActive,
		},
	}}
	trail := &mockActivityLog{}
	svc := NewAuthService(users, &mockAuthRequests{}, trail, nil, zap.NewNop(), authConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "amina@school.edu", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), resp.User.UserID)
	assert.Contains(t, trail.entries, models.ActivityLogin)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(11), claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	users := &mockAuthUsers{byEmail: map[string]models.User{
		"amina@school.edu": {
			ID: 11, Email: "amina@school.edu",
			PasswordHash: hashPassword(t, "s3cret-pass"),
			Status:       models.UserActive,
		},
	}}
	svc := NewAuthService(users, &mockAuthRequests{}, &mockActivityLog{}, nil, zap.NewNop(), authConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "amina@school.edu", Password: "wrong"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	users := &mockAuthUsers{byEmail: map[string]models.User{
		"amina@school.edu": {
			ID: 11, Email: "amina@school.edu",
			PasswordHash: hashPassword(t, "s3cret-pass"),
			Status:       models.UserSuspended,
		},
	}}
	svc := NewAuthService(users, &mockAuthRequests{}, &mockActivityLog{}, nil, zap.NewNop(), authConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "amina@school.edu", Password: "s3cret-pass"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(&mockAuthUsers{}, &mockAuthRequests{}, &mockActivityLog{}, nil, zap.NewNop(), authConfig())

	_, err := svc.ValidateToken("not-a-token")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}
