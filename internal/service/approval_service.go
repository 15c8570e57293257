package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eduspark/edu-platform-api/internal/models"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
)

type registrationStore interface {
	FindByID(ctx context.Context, id int64) (*models.RegistrationRequest, error)
	HasApprovedForUsername(ctx context.Context, username string) (bool, error)
	ListPendingByUsernameExcept(ctx context.Context, username string, excludeID int64) ([]int64, error)
	UpdateStatus(ctx context.Context, id int64, status models.RequestStatus, reviewedBy string, reviewedAt time.Time) (int64, error)
	List(ctx context.Context) ([]models.RegistrationRequest, error)
}

type approvalUserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	HardDelete(ctx context.Context, id int64) error
	CreateProfile(ctx context.Context, profile *models.UserProfile) error
	DeleteProfile(ctx context.Context, userID int64) error
}

type activityWriter interface {
	Insert(ctx context.Context, userID *int64, role, name string) error
}

// ApprovalService decides registration requests. Approval provisions the
// account and profile; both decisions stamp the reviewer and are recorded on
// the activity trail.
type ApprovalService struct {
	requests registrationStore
	users    approvalUserStore
	activity activityWriter
	logger   *zap.Logger
	now      func() time.Time
}

// NewApprovalService constructs the service with defaults.
func NewApprovalService(requests registrationStore, users approvalUserStore, activity activityWriter, logger *zap.Logger) *ApprovalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApprovalService{
		requests: requests,
		users:    users,
		activity: activity,
		logger:   logger,
		now:      time.Now,
	}
}

// List returns every registration request, newest first.
func (s *ApprovalService) List(ctx context.Context) ([]models.RegistrationRequest, error) {
	return s.requests.List(ctx)
}

// Approve accepts a registration request and provisions the account.
//
// When an account already exists for the request's username, the decision
// hinges on whether any approved request backs it: a backed account means the
// request was already honored and approval is idempotent; an unbacked account
// is unauthorized and is removed before provisioning proceeds. Any failure
// after that removal leaves the username without an account, so it surfaces
// under a distinct conflict code for operator follow-up.
func (s *ApprovalService) Approve(ctx context.Context, requestID int64, actor Actor) (*models.RegistrationRequest, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration request not found")
		}
		return nil, err
	}

	remediated := false
	existing, err := s.users.FindByEmail(ctx, req.Username)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		approved, err := s.requests.HasApprovedForUsername(ctx, req.Username)
		if err != nil {
			return nil, err
		}
		if approved {
			return s.stampApproved(ctx, req, actor, false)
		}

		// No approved request backs this account: it was created outside
		// the workflow. Remove it and provision from this request instead.
		s.logger.Warn("removing unauthorized account during approval",
			zap.Int64("request_id", req.ID),
			zap.Int64("user_id", existing.ID),
			zap.String("username", req.Username))
		if err := s.users.DeleteProfile(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("remove unauthorized profile: %w", err)
		}
		if err := s.users.HardDelete(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("remove unauthorized user: %w", err)
		}
		remediated = true
	}

	decidedAt := s.now()
	siblings, err := s.requests.ListPendingByUsernameExcept(ctx, req.Username, req.ID)
	if err != nil {
		return nil, s.approvalError(remediated, err)
	}
	for _, siblingID := range siblings {
		if _, err := s.requests.UpdateStatus(ctx, siblingID, models.RequestRejected, actor.Email, decidedAt); err != nil {
			return nil, s.approvalError(remediated, err)
		}
	}

	user := &models.User{
		Email:        req.Username,
		PasswordHash: req.PasswordHash,
		Role:         req.Role,
		Status:       models.UserActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, s.approvalError(remediated, err)
	}

	profile := &models.UserProfile{UserID: user.ID, ContactNumber: req.ContactNumber}
	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if err := s.users.CreateProfile(ctx, profile); err != nil {
		return nil, s.approvalError(remediated, err)
	}

	out, err := s.stampApproved(ctx, req, actor, remediated)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// stampApproved marks the request approved, stamps the reviewer and records
// the activity. Zero rows affected means the request vanished underneath us.
func (s *ApprovalService) stampApproved(ctx context.Context, req *models.RegistrationRequest, actor Actor, remediated bool) (*models.RegistrationRequest, error) {
	decidedAt := s.now()
	affected, err := s.requests.UpdateStatus(ctx, req.ID, models.RequestApproved, actor.Email, decidedAt)
	if err != nil {
		return nil, s.approvalError(remediated, err)
	}
	if affected == 0 {
		return nil, s.approvalError(remediated, appErrors.Clone(appErrors.ErrNotFound, "registration request not found"))
	}

	req.Status = models.RequestApproved
	req.ReviewedBy = &actor.Email
	req.ReviewedAt = &decidedAt
	s.logActivity(ctx, &actor.ID, string(actor.Role), models.ActivityApproveRegistration)
	return req, nil
}

// approvalError reclassifies failures that happen after an unauthorized
// account was removed.
func (s *ApprovalService) approvalError(remediated bool, err error) error {
	if !remediated {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrRemediation.Code, appErrors.ErrRemediation.Status, appErrors.ErrRemediation.Message)
}

// Reject declines a registration request.
func (s *ApprovalService) Reject(ctx context.Context, requestID int64, actor Actor) (*models.RegistrationRequest, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration request not found")
		}
		return nil, err
	}

	decidedAt := s.now()
	affected, err := s.requests.UpdateStatus(ctx, req.ID, models.RequestRejected, actor.Email, decidedAt)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "registration request not found")
	}

	req.Status = models.RequestRejected
	req.ReviewedBy = &actor.Email
	req.ReviewedAt = &decidedAt
	s.logActivity(ctx, &actor.ID, string(actor.Role), models.ActivityRejectRegistration)
	return req, nil
}

// logActivity records the trail entry best effort. Decisions never fail on a
// trail write.
func (s *ApprovalService) logActivity(ctx context.Context, userID *int64, role, name string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Insert(ctx, userID, role, name); err != nil {
		s.logger.Warn("record activity", zap.String("activity", name), zap.Error(err))
	}
}
