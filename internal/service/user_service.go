package service

import (
	"context"
	"time"

	"projecthub/internal/apperr"
	"projecthub/internal/model"
	"projecthub/internal/repository"
)

// includedSelectionRoles limits team-selection listings to roles that can
// actually hold project work. Admin accounts never appear.
var includedSelectionRoles = []string{model.RoleProjectManager, model.RoleDeveloper}

// --- DTOs ---

type UserResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Verified  bool   `json:"verified"`
	CreatedAt string `json:"created_at"`
}

type ProfileResponse struct {
	UserResponse
	Permissions []PermissionClaim `json:"permissions"`
}

// UserService defines the business logic for user lookups
type UserService interface {
	GetUserByID(ctx context.Context, id uint) (*UserResponse, error)
	GetProfile(ctx context.Context, id uint) (*ProfileResponse, error)
	ListUsersForTeamSelection(ctx context.Context, search string, page, limit int) ([]UserResponse, int64, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func userToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role.Name,
		Verified:  user.Verified,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Newf(apperr.UserNotFound, "User not found with ID: %d", id)
	}
	return userToResponse(user), nil
}

// GetProfile returns the user together with the flattened per-module
// permissions of their role, matching what the access token carries.
func (s *userService) GetProfile(ctx context.Context, id uint) (*ProfileResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Newf(apperr.UserNotFound, "User not found with ID: %d", id)
	}
	return &ProfileResponse{
		UserResponse: *userToResponse(user),
		Permissions:  PermissionClaimsFor(user.Role),
	}, nil
}

// ListUsersForTeamSelection lists verified managers and developers for the
// add-member picker, ordered by name.
func (s *userService) ListUsersForTeamSelection(ctx context.Context, search string, page, limit int) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	users, total, err := s.userRepo.List(ctx, includedSelectionRoles, search, page, limit)
	if err != nil {
		return nil, 0, apperr.New(apperr.Internal, "Failed to retrieve users")
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *userToResponse(&users[i]))
	}
	return responses, total, nil
}
