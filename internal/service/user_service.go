package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/eduspark/edu-platform-api/internal/models"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
)

type adminUserStore interface {
	List(ctx context.Context) ([]models.UserListItem, error)
	UpdateStatus(ctx context.Context, id int64, status models.UserStatus) (int64, error)
}

// UserService covers the admin account management operations.
type UserService struct {
	users    adminUserStore
	activity activityWriter
	logger   *zap.Logger
}

// NewUserService constructs the service with defaults.
func NewUserService(users adminUserStore, activity activityWriter, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, activity: activity, logger: logger}
}

// List returns all accounts with the derived deleted/suspended flag.
func (s *UserService) List(ctx context.Context) ([]models.UserListItem, error) {
	return s.users.List(ctx)
}

// Deactivate suspends an account.
func (s *UserService) Deactivate(ctx context.Context, actor Actor, userID int64) error {
	return s.setStatus(ctx, actor, userID, models.UserSuspended, models.ActivityDeactivateUser)
}

// Reactivate restores a suspended account.
func (s *UserService) Reactivate(ctx context.Context, actor Actor, userID int64) error {
	return s.setStatus(ctx, actor, userID, models.UserActive, models.ActivityReactivateUser)
}

func (s *UserService) setStatus(ctx context.Context, actor Actor, userID int64, status models.UserStatus, activityName string) error {
	affected, err := s.users.UpdateStatus(ctx, userID, status)
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	if s.activity != nil {
		if err := s.activity.Insert(ctx, &actor.ID, string(actor.Role), activityName); err != nil {
			s.logger.Warn("record activity", zap.String("activity", activityName), zap.Error(err))
		}
	}
	return nil
}
