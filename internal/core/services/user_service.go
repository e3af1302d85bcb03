package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kantorly/currency_exchange_app/internal/apperrors"
	"github.com/kantorly/currency_exchange_app/internal/core/domain"
	portsrepo "github.com/kantorly/currency_exchange_app/internal/core/ports/repositories"
	"github.com/kantorly/currency_exchange_app/internal/dto"
	"github.com/kantorly/currency_exchange_app/internal/middleware"
	"github.com/kantorly/currency_exchange_app/internal/utils"
)

// UserService handles user registration, authentication and lifecycle.
type UserService struct {
	userRepo portsrepo.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo portsrepo.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// RegisterUser creates a new user after checking the first name and email
// are free. The password is stored bcrypt-hashed.
func (s *UserService) RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	nameTaken, err := s.userRepo.ExistsByFirstName(ctx, req.FirstName)
	if err != nil {
		logger.Error("Failed to check first name uniqueness", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to check first name: %w", err)
	}
	emailTaken, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		logger.Error("Failed to check email uniqueness", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if nameTaken {
		return nil, fmt.Errorf("%w: first name is already in use", apperrors.ErrDuplicate)
	}
	if emailTaken {
		return nil, fmt.Errorf("%w: email is already in use", apperrors.ErrDuplicate)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	userID := uuid.NewString()
	user := domain.User{
		UserID:       userID,
		FirstName:    req.FirstName,
		Email:        req.Email,
		PasswordHash: hash,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		logger.Error("Failed to save user in repository", slog.String("error", err.Error()), slog.String("user_id", user.UserID))
		return nil, err
	}

	logger.Info("User registered", slog.String("user_id", user.UserID))
	return &user, nil
}

// AuthenticateUser verifies first name + password credentials and returns
// the matching user. Bad credentials are reported as ErrNotFound so callers
// cannot distinguish an unknown name from a wrong password.
func (s *UserService) AuthenticateUser(ctx context.Context, firstName, password string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByFirstName(ctx, firstName)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to look up user for login", slog.String("error", err.Error()))
			return nil, err
		}
		return nil, apperrors.ErrNotFound
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrNotFound
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find user by ID", slog.String("error", err.Error()), slog.String("user_id", userID))
		}
		return nil, err
	}
	return user, nil
}

// ListUsers retrieves a paginated list of users.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users, err := s.userRepo.FindUsers(ctx, limit, offset)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		return []domain.User{}, nil
	}
	return users, nil
}

// DeleteUser soft-deletes a user. Account records are an external
// account-management concern and are left in place for audit.
func (s *UserService) DeleteUser(ctx context.Context, userID, deletedBy string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.userRepo.MarkUserDeleted(ctx, userID, time.Now().UTC(), deletedBy); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to mark user deleted", slog.String("error", err.Error()), slog.String("user_id", userID))
		}
		return err
	}
	logger.Info("User deleted", slog.String("user_id", userID))
	return nil
}
