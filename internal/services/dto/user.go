package dto

import (
	"time"

	"messaging_backend/internal/models"
)

type UserListItem struct {
	ID         string          `json:"id"`
	Username   string          `json:"username"`
	Email      string          `json:"email"`
	Role       models.RoleName `json:"role"`
	IsVerified bool            `json:"isVerified"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type UserPagination struct {
	TotalUsers  int64 `json:"totalUsers"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
}

type UserListResponse struct {
	Users      []UserListItem `json:"users"`
	Pagination UserPagination `json:"pagination"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

// PageRequest is bound from ?page=&limit=.
type PageRequest struct {
	Page  int `form:"page" validate:"omitempty,min=1"`
	Limit int `form:"limit" validate:"omitempty,min=1,max=100"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Normalize fills defaults.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	return p
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages rounds up.
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
