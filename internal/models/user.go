package models

import "time"

// User starts unverified and becomes verified once, when its verification token is presented.
type User struct {
	BaseModel
	Username            string  `gorm:"uniqueIndex;size:20;not null"`
	Email               string  `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash        string  `gorm:"not null"`
	VerificationToken   *string `gorm:"size:64"`
	IsVerified          bool    `gorm:"not null;default:false"`
	ResetToken          *string `gorm:"size:64"`
	ResetTokenExpiresAt *time.Time

	// Relations
	UserRole      *UserRole      `gorm:"foreignKey:UserID"`
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID"`
}

// RoleName returns the resolved role, or "" when the relation was not loaded.
func (u *User) RoleName() RoleName {
	if u.UserRole == nil || u.UserRole.Role == nil {
		return ""
	}
	return u.UserRole.Role.Name
}
