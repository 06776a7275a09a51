package handlers

import (
	"messaging_backend/internal/middleware"
	"messaging_backend/internal/models"
	"messaging_backend/internal/services"
	"messaging_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*BaseHandler
	userService services.UserService
}

func NewUserHandler(base *BaseHandler, userService services.UserService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
	}
}

// RegisterRoutes mounts the super admin user administration under /auth/users.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, gate *middleware.AuthGate) {
	users := rg.Group("/auth/users")
	users.Use(gate.Authenticate(), gate.RequireVerified(), gate.IsSuperAdmin())
	{
		users.GET("", h.ListUsers)
		users.PATCH("/:id/role", h.ChangeRole)
	}
}

// ListUsers godoc
// @Summary List users with their role
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page, default 1"
// @Param limit query int false "Page size, default 10, max 100"
// @Success 200 {object} response.Envelope{data=dto.UserListResponse}
// @Failure 403 {object} response.Envelope
// @Router /auth/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var page dto.PageRequest
	if !h.BindAndValidate_Query(c, &page) {
		return
	}

	resp, err := h.userService.ListUsers(c.Request.Context(), h.GetDB(c), page)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.OK(c, "", resp)
}

// ChangeRole godoc
// @Summary Replace a user's role
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body dto.UpdateRoleRequest true "New role"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "User or role not found"
// @Router /auth/users/{id}/role [patch]
func (h *UserHandler) ChangeRole(c *gin.Context) {
	userID, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.userService.ChangeRole(c.Request.Context(), h.GetDB(c), userID, models.RoleName(req.Role)); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.OK(c, "User role updated successfully", nil)
}
