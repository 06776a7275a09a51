package repositories

import (
	"errors"

	"messaging_backend/internal/models"

	"gorm.io/gorm"
)

var ErrRoleNotFound = errors.New("role not found")

// RoleRepository reads the seeded roles and moves users between them.
type RoleRepository interface {
	FindByName(db *gorm.DB, name models.RoleName) (*models.Role, error)

	// ReplaceUserRole points the user's single role row at roleID.
	ReplaceUserRole(db *gorm.DB, userID string, roleID uint) error

	CountUsersWithRole(db *gorm.DB, name models.RoleName) (int64, error)
}

type roleRepository struct{}

func NewRoleRepository() RoleRepository {
	return &roleRepository{}
}

func (r *roleRepository) FindByName(db *gorm.DB, name models.RoleName) (*models.Role, error) {
	var role models.Role
	if err := db.Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) ReplaceUserRole(db *gorm.DB, userID string, roleID uint) error {
	result := db.Model(&models.UserRole{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"role_id":     roleID,
			"assigned_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *roleRepository) CountUsersWithRole(db *gorm.DB, name models.RoleName) (int64, error) {
	var count int64
	err := db.Model(&models.UserRole{}).
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.name = ?", name).
		Count(&count).Error
	return count, err
}
