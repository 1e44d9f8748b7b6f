package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/pkg/validator"
)

// UserStore persists users
type UserStore interface {
	GetByAuthID(ctx context.Context, authID string) (*models.User, error)
	GetByID(ctx context.Context, userID int64) (*models.User, error)
	Upsert(ctx context.Context, authID string, req *models.SyncUserRequest) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, req *models.UpdateProfileRequest) (*models.User, error)
}

// UserService provisions users from identity tokens and manages profiles
type UserService struct {
	users          UserStore
	phoneValidator *validator.PhoneValidator
	logger         *logrus.Logger
}

// NewUserService creates a new UserService
func NewUserService(users UserStore, logger *logrus.Logger) *UserService {
	return &UserService{
		users:          users,
		phoneValidator: validator.NewPhoneValidator(),
		logger:         logger,
	}
}

// Sync creates or refreshes the internal user row for an identity subject
func (s *UserService) Sync(ctx context.Context, authID string, req *models.SyncUserRequest) (*models.User, error) {
	if authID == "" {
		return nil, &models.AuthorizationError{Message: "authentication required"}
	}
	if !req.UserType.Valid() {
		return nil, models.NewValidationError("user_type", "must be guest or host")
	}

	user, err := s.users.Upsert(ctx, authID, req)
	if err != nil {
		return nil, translateError(err, "user", nil)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":   user.UserID,
		"user_type": user.UserType,
	}).Info("User synced")
	return user, nil
}

// ResolvePrincipal maps an identity subject to the internal user.
// Subjects that were never synced return a NotFoundError.
func (s *UserService) ResolvePrincipal(ctx context.Context, authID string) (*models.Principal, error) {
	user, err := s.users.GetByAuthID(ctx, authID)
	if err != nil {
		return nil, translateError(err, "user", nil)
	}
	return &models.Principal{
		UserID: user.UserID,
		AuthID: user.AuthID,
		Email:  user.Email,
		Type:   user.UserType,
	}, nil
}

// Get returns the principal's profile
func (s *UserService) Get(ctx context.Context, principal *models.Principal) (*models.User, error) {
	if principal == nil {
		return nil, &models.AuthorizationError{Message: "authentication required"}
	}
	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		return nil, translateError(err, "user", principal.UserID)
	}
	return user, nil
}

// UpdateProfile changes the principal's mutable profile fields. The phone
// number is stored in E.164 form.
func (s *UserService) UpdateProfile(ctx context.Context, principal *models.Principal, req *models.UpdateProfileRequest) (*models.User, error) {
	if principal == nil {
		return nil, &models.AuthorizationError{Message: "authentication required"}
	}

	if req.FirstName != nil {
		name := strings.TrimSpace(*req.FirstName)
		if name == "" {
			return nil, models.NewValidationError("first_name", "cannot be empty")
		}
		req.FirstName = &name
	}
	if req.Phone != nil {
		phone, err := s.phoneValidator.Validate(*req.Phone)
		if err != nil {
			return nil, models.NewValidationError("phone", err.Error())
		}
		req.Phone = &phone
	}

	user, err := s.users.UpdateProfile(ctx, principal.UserID, req)
	if err != nil {
		return nil, translateError(err, "user", principal.UserID)
	}

	s.logger.WithField("user_id", user.UserID).Info("Profile updated")
	return user, nil
}
