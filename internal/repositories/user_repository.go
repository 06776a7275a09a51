package repositories

import (
	"errors"
	"time"

	"messaging_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserRepository covers users and their single role assignment.
type UserRepository interface {
	// CreateWithRole inserts the user and its role row in one transaction.
	CreateWithRole(db *gorm.DB, user *models.User, roleID uint) error

	// ExistsByUsernameOrEmail reports whether either value is taken.
	ExistsByUsernameOrEmail(db *gorm.DB, username, email string) (bool, error)

	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByUsername(db *gorm.DB, username string) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	FindByVerificationToken(db *gorm.DB, token string) (*models.User, error)
	FindByResetToken(db *gorm.DB, token string) (*models.User, error)

	// MarkVerified sets is_verified and clears the verification token in one update.
	MarkVerified(db *gorm.DB, userID string) error

	SetResetToken(db *gorm.DB, userID, token string, expiresAt time.Time) error

	// UpdatePassword stores a new hash and clears any pending reset token.
	UpdatePassword(db *gorm.DB, userID, passwordHash string) error

	// List returns users with their role, newest first.
	List(db *gorm.DB, limit, offset int) ([]models.User, int64, error)
}

type userRepository struct{}

func NewUserRepository() UserRepository {
	return &userRepository{}
}

func withRole(db *gorm.DB) *gorm.DB {
	return db.Preload("UserRole.Role")
}

func (r *userRepository) CreateWithRole(db *gorm.DB, user *models.User, roleID uint) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		userRole := &models.UserRole{UserID: user.ID, RoleID: roleID}
		if err := tx.Create(userRole).Error; err != nil {
			return err
		}
		user.UserRole = userRole
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *userRepository) ExistsByUsernameOrEmail(db *gorm.DB, username, email string) (bool, error) {
	var count int64
	err := db.Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) findOne(db *gorm.DB, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := withRole(db).Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(db *gorm.DB, id string) (*models.User, error) {
	return r.findOne(db, "id = ?", id)
}

func (r *userRepository) FindByUsername(db *gorm.DB, username string) (*models.User, error) {
	return r.findOne(db, "username = ?", username)
}

func (r *userRepository) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	return r.findOne(db, "email = ?", email)
}

func (r *userRepository) FindByVerificationToken(db *gorm.DB, token string) (*models.User, error) {
	return r.findOne(db, "verification_token = ?", token)
}

func (r *userRepository) FindByResetToken(db *gorm.DB, token string) (*models.User, error) {
	return r.findOne(db, "reset_token = ?", token)
}

func (r *userRepository) MarkVerified(db *gorm.DB, userID string) error {
	result := db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"is_verified":        true,
			"verification_token": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetResetToken(db *gorm.DB, userID, token string, expiresAt time.Time) error {
	return db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"reset_token":            token,
			"reset_token_expires_at": expiresAt,
		}).Error
}

func (r *userRepository) UpdatePassword(db *gorm.DB, userID, passwordHash string) error {
	result := db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password_hash":          passwordHash,
			"reset_token":            nil,
			"reset_token_expires_at": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) List(db *gorm.DB, limit, offset int) ([]models.User, int64, error) {
	var (
		users []models.User
		total int64
	)

	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := withRole(db).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	return users, total, err
}
