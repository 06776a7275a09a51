package handlers

import (
	"messaging_backend/internal/logger"
	"messaging_backend/internal/middleware"
	"messaging_backend/internal/services"
	"messaging_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*BaseHandler
	authService services.AuthService
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
	}
}

// RegisterRoutes mounts /auth. Register, login and forgot-password share limiter.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, gate *middleware.AuthGate, limiter gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", limiter, h.Register)
		auth.GET("/verify-email", h.VerifyEmail)
		auth.POST("/login", limiter, h.Login)
		auth.POST("/refresh-token", h.RefreshToken)
		auth.POST("/logout", gate.Authenticate(), h.Logout)
		auth.POST("/forgot-password", limiter, h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)
	}
}

// Register godoc
// @Summary Register a new account
// @Description Creates an unverified Normal User and emails a verification link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Account data"
// @Success 201 {object} response.Envelope{data=dto.RegisterResponse}
// @Failure 400 {object} response.Envelope "Validation failed or username/email taken"
// @Failure 429 {object} response.Envelope
// @Failure 500 {object} response.Envelope "Verification email could not be sent"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	resp, err := h.authService.Register(c.Request.Context(), db, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.Created(c, "User registered successfully. Please check your email to verify your account.", resp)
}

// VerifyEmail godoc
// @Summary Confirm an email address
// @Tags auth
// @Produce json
// @Param token query string true "Verification token"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope "Invalid verification token"
// @Router /auth/verify-email [get]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	// A missing token is reported as an invalid one.
	_ = c.ShouldBindQuery(&req)

	if err := h.authService.VerifyEmail(c.Request.Context(), h.GetDB(c), req.Token); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.OK(c, "Email verified successfully", nil)
}

// Login godoc
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope{data=dto.LoginResponse}
// @Failure 401 {object} response.Envelope "Invalid credentials or email not verified"
// @Failure 429 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.OK(c, "Login successful", resp)
}

// RefreshToken godoc
// @Summary Exchange a refresh token for a new access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} response.Envelope{data=dto.RefreshTokenResponse}
// @Failure 401 {object} response.Envelope "Invalid or expired refresh token"
// @Router /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.Refresh(c.Request.Context(), h.GetDB(c), req.RefreshToken)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.OK(c, "Token refreshed successfully", resp)
}

// Logout godoc
// @Summary Revoke a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.LogoutRequest false "Refresh token"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.CtxDebug(c.Request.Context(), "logout without a readable body", "error", err)
	}

	if err := h.authService.Logout(c.Request.Context(), h.GetDB(c), req.RefreshToken); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.OK(c, "Logged out successfully", nil)
}

// ForgotPassword godoc
// @Summary Request a password reset link
// @Description Always answers 200 so that registered addresses cannot be probed
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Email"
// @Success 200 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), h.GetDB(c), req.Email); err != nil {
		logger.CtxWithError(c.Request.Context(), "password reset request failed", err)
	}

	h.OK(c, "If that email is registered, a password reset link has been sent", nil)
}

// ResetPassword godoc
// @Summary Set a new password with a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Token and new password"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope "Invalid or expired password reset token"
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), h.GetDB(c), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.OK(c, "Password has been reset successfully", nil)
}
