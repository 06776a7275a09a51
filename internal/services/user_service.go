package services

import (
	"context"
	"errors"

	"messaging_backend/internal/auth"
	"messaging_backend/internal/logger"
	"messaging_backend/internal/models"
	"messaging_backend/internal/repositories"
	"messaging_backend/internal/services/dto"
	"messaging_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// UserService is super-admin user management.
type UserService interface {
	ListUsers(ctx context.Context, db *gorm.DB, page dto.PageRequest) (*dto.UserListResponse, error)
	ChangeRole(ctx context.Context, db *gorm.DB, userID string, role models.RoleName) error
	EnsureSuperAdmin(ctx context.Context, db *gorm.DB, username, email, password string) (bool, error)
}

type UserServiceImpl struct {
	userRepo repositories.UserRepository
	roleRepo repositories.RoleRepository
}

func NewUserService(userRepo repositories.UserRepository, roleRepo repositories.RoleRepository) *UserServiceImpl {
	return &UserServiceImpl{
		userRepo: userRepo,
		roleRepo: roleRepo,
	}
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, db *gorm.DB, page dto.PageRequest) (*dto.UserListResponse, error) {
	page = page.Normalize()

	users, total, err := s.userRepo.List(db, page.Limit, page.Offset())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.UserListItem, 0, len(users))
	for i := range users {
		u := &users[i]
		items = append(items, dto.UserListItem{
			ID:         u.ID,
			Username:   u.Username,
			Email:      u.Email,
			Role:       u.RoleName(),
			IsVerified: u.IsVerified,
			CreatedAt:  u.CreatedAt,
		})
	}

	return &dto.UserListResponse{
		Users: items,
		Pagination: dto.UserPagination{
			TotalUsers:  total,
			TotalPages:  dto.TotalPages(total, page.Limit),
			CurrentPage: page.Page,
			Limit:       page.Limit,
		},
	}, nil
}

// ChangeRole replaces the user's single role. It takes effect on the next login or refresh.
func (s *UserServiceImpl) ChangeRole(ctx context.Context, db *gorm.DB, userID string, roleName models.RoleName) error {
	role, err := s.roleRepo.FindByName(db, roleName)
	if err != nil {
		if errors.Is(err, repositories.ErrRoleNotFound) {
			return apperrors.ErrRoleNotFound
		}
		return apperrors.InternalError(err)
	}

	if err := s.roleRepo.ReplaceUserRole(db, userID, role.ID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user role changed", "target_user_id", userID, "role", roleName)
	return nil
}

// EnsureSuperAdmin creates a verified super admin when none exists yet.
// It reports whether a user was created.
func (s *UserServiceImpl) EnsureSuperAdmin(ctx context.Context, db *gorm.DB, username, email, password string) (bool, error) {
	count, err := s.roleRepo.CountUsersWithRole(db, models.RoleSuperAdmin)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	role, err := s.roleRepo.FindByName(db, models.RoleSuperAdmin)
	if err != nil {
		return false, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}

	admin := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsVerified:   true,
	}
	if err := s.userRepo.CreateWithRole(db, admin, role.ID); err != nil {
		return false, err
	}

	logger.CtxInfo(ctx, "super admin created", "user_id", admin.ID, "username", username)
	return true, nil
}
