package repositories

import (
	"errors"
	"time"

	"messaging_backend/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrRefreshTokenNotFound is returned when no unexpired row matches the token.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
)

// RefreshTokenRepository stores login sessions.
type RefreshTokenRepository interface {
	Create(db *gorm.DB, token *models.RefreshToken) error

	// FindValid returns the row for tokenString only if it expires after now.
	FindValid(db *gorm.DB, tokenString string, now time.Time) (*models.RefreshToken, error)

	// DeleteByToken removes the row; a missing row is not an error.
	DeleteByToken(db *gorm.DB, tokenString string) error

	// DeleteByUserID removes every session of the user.
	DeleteByUserID(db *gorm.DB, userID string) error
}

type refreshTokenRepository struct{}

func NewRefreshTokenRepository() RefreshTokenRepository {
	return &refreshTokenRepository{}
}

func (r *refreshTokenRepository) Create(db *gorm.DB, token *models.RefreshToken) error {
	return db.Create(token).Error
}

func (r *refreshTokenRepository) FindValid(db *gorm.DB, tokenString string, now time.Time) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := db.Where("token = ? AND expires_at > ?", tokenString, now).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (r *refreshTokenRepository) DeleteByToken(db *gorm.DB, tokenString string) error {
	return db.Where("token = ?", tokenString).Delete(&models.RefreshToken{}).Error
}

func (r *refreshTokenRepository) DeleteByUserID(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
}
