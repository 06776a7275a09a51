package models

import "time"

type RoleName string

const (
	RoleSuperAdmin RoleName = "Super Admin"
	RoleAdmin      RoleName = "Admin"
	RoleNormalUser RoleName = "Normal User"
)

// Seeded role ids, fixed by the initial migration.
const (
	RoleIDSuperAdmin uint = 1
	RoleIDAdmin      uint = 2
	RoleIDNormalUser uint = 3
)

func (r RoleName) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleNormalUser:
		return true
	}
	return false
}

type Role struct {
	ID          uint     `gorm:"primaryKey"`
	Name        RoleName `gorm:"uniqueIndex;size:50;not null"`
	Description string
}

// UserRole assigns exactly one role to a user; user_id is unique.
type UserRole struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     string    `gorm:"type:uuid;uniqueIndex;not null"`
	RoleID     uint      `gorm:"not null"`
	AssignedAt time.Time `gorm:"not null;default:now()"`

	Role *Role `gorm:"foreignKey:RoleID"`
}
