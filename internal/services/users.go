package services

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"techie-backend/internal/models"
	"techie-backend/internal/plans"
	"techie-backend/internal/repository"
)

// SuperAdminUsername is the account seeded on first start.
const SuperAdminUsername = "superadmin"

// UserService manages member accounts.
type UserService struct {
	users    UserStore
	quota    *QuotaService
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewUserService(users UserStore, quota *QuotaService, logger zerolog.Logger) *UserService {
	return &UserService{
		users:    users,
		quota:    quota,
		validate: newValidator(),
		logger:   logger.With().Str("component", "users").Logger(),
	}
}

func (s *UserService) Get(ctx context.Context, caller Caller, userID uuid.UUID) (*models.User, error) {
	if err := Authorize(caller, userID); err != nil {
		return nil, err
	}
	return s.get(ctx, userID)
}

func (s *UserService) List(ctx context.Context, caller Caller) ([]models.User, error) {
	if err := RequirePrivileged(caller); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

func (s *UserService) Create(ctx context.Context, caller Caller, req models.CreateUserRequest) (*models.User, error) {
	if err := RequirePrivileged(caller); err != nil {
		return nil, err
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	user := &models.User{
		Username:    req.Username,
		Email:       req.Email,
		FullName:    req.FullName,
		Role:        req.Role,
		CurrentPlan: req.CurrentPlan,
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.CurrentPlan == "" {
		user.CurrentPlan = plans.Default
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ConflictError{Message: "Username or email already in use"}
		}
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("username", user.Username).
		Str("role", user.Role).
		Msg("User created")

	return user, nil
}

// Update edits profile fields. A plan change is billed like any other and
// takes the profile edits into the same transaction.
func (s *UserService) Update(ctx context.Context, caller Caller, userID uuid.UUID, req models.UpdateUserRequest) (*models.User, error) {
	if err := Authorize(caller, userID); err != nil {
		return nil, err
	}
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}
	if req.CurrentPlan != nil && !plans.Valid(*req.CurrentPlan) {
		return nil, fieldError("current_plan", "Plan must be one of: "+strings.Join(plans.Names(), ", "))
	}

	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}

	profileChanged := req.FullName != nil || req.Email != nil
	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		user.Email = strings.TrimSpace(strings.ToLower(*req.Email))
	}

	// A plan change carries the profile edits into its transaction so the
	// update lands whole or not at all.
	if req.CurrentPlan != nil && *req.CurrentPlan != user.CurrentPlan {
		var profile *models.ProfileUpdate
		if profileChanged {
			profile = &models.ProfileUpdate{FullName: user.FullName, Email: user.Email}
		}
		if _, err := s.quota.changePlan(ctx, caller, userID, *req.CurrentPlan, profile); err != nil {
			return nil, err
		}
		user.CurrentPlan = *req.CurrentPlan
		return user, nil
	}

	if profileChanged {
		if err := s.users.UpdateProfile(ctx, user); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicate):
				return nil, &ConflictError{Message: "Email already in use"}
			case errors.Is(err, repository.ErrNotFound):
				return nil, &NotFoundError{Message: "User not found"}
			}
			return nil, err
		}
	}

	return user, nil
}

func (s *UserService) Delete(ctx context.Context, caller Caller, userID uuid.UUID) error {
	if err := RequirePrivileged(caller); err != nil {
		return err
	}
	if caller.UserID == userID {
		return &ValidationError{Fields: map[string]string{"id": "You cannot delete your own account"}}
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Message: "User not found"}
		}
		return err
	}

	s.logger.Info().Str("user_id", userID.String()).Msg("User deleted")
	return nil
}

// EnsureSuperAdmin creates the superadmin account if it does not exist yet.
func (s *UserService) EnsureSuperAdmin(ctx context.Context, email string) (*models.User, error) {
	existing, err := s.users.GetByUsername(ctx, SuperAdminUsername)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user := &models.User{
		Username:    SuperAdminUsername,
		Email:       email,
		FullName:    "Super Admin",
		Role:        models.RoleAdmin,
		CurrentPlan: plans.Monthly,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return s.users.GetByUsername(ctx, SuperAdminUsername)
		}
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("Seeded superadmin account")
	return user, nil
}

func (s *UserService) get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Message: "User not found"}
		}
		return nil, err
	}
	return user, nil
}
