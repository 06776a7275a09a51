package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"messaging_backend/internal/auth"
	"messaging_backend/internal/email"
	"messaging_backend/internal/logger"
	"messaging_backend/internal/models"
	"messaging_backend/internal/repositories"
	"messaging_backend/internal/services/dto"
	"messaging_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const DefaultResetTokenTTL = time.Hour

// AuthService is the session lifecycle: registration, verification, login, refresh, logout and password reset.
type AuthService interface {
	Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	VerifyEmail(ctx context.Context, db *gorm.DB, token string) error
	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, db *gorm.DB, refreshToken string) (*dto.RefreshTokenResponse, error)
	Logout(ctx context.Context, db *gorm.DB, refreshToken string) error
	RequestPasswordReset(ctx context.Context, db *gorm.DB, email string) error
	ResetPassword(ctx context.Context, db *gorm.DB, req *dto.ResetPasswordRequest) error
}

type AuthServiceConfig struct {
	// APIURL is the public base url used to build links in emails.
	APIURL        string
	ResetTokenTTL time.Duration
}

type AuthServiceImpl struct {
	userRepo         repositories.UserRepository
	roleRepo         repositories.RoleRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	tokens           *auth.TokenIssuer
	emailProvider    email.Provider
	cfg              AuthServiceConfig
	now              func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepository,
	roleRepo repositories.RoleRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	tokens *auth.TokenIssuer,
	emailProvider email.Provider,
	cfg AuthServiceConfig,
) *AuthServiceImpl {
	if cfg.ResetTokenTTL == 0 {
		cfg.ResetTokenTTL = DefaultResetTokenTTL
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	return &AuthServiceImpl{
		userRepo:         userRepo,
		roleRepo:         roleRepo,
		refreshTokenRepo: refreshTokenRepo,
		tokens:           tokens,
		emailProvider:    emailProvider,
		cfg:              cfg,
		now:              time.Now,
	}
}

// Register creates an unverified Normal User and sends the verification link.
// The account survives a failed email; the failure is still returned.
func (s *AuthServiceImpl) Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	log := logger.FromContext(ctx)

	exists, err := s.userRepo.ExistsByUsernameOrEmail(db, req.Username, req.Email)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if exists {
		return nil, apperrors.ErrDuplicateIdentity
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	verificationToken, err := auth.GenerateSecureToken()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	role, err := s.roleRepo.FindByName(db, models.RoleNormalUser)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Username:          req.Username,
		Email:             req.Email,
		PasswordHash:      hash,
		VerificationToken: &verificationToken,
		IsVerified:        false,
	}

	if err := s.userRepo.CreateWithRole(db, user, role.ID); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrDuplicateIdentity
		}
		return nil, apperrors.InternalError(err)
	}

	log.Info("user registered", "user_id", user.ID, "username", user.Username)

	resp := &dto.RegisterResponse{UserID: user.ID}

	verifyURL := s.link("/api/auth/verify-email", verificationToken)
	if err := s.emailProvider.SendVerificationEmail(ctx, user.Email, user.Username, verifyURL); err != nil {
		return resp, apperrors.ErrVerificationEmailFailed.
			WithError(err).
			WithDetails(map[string]string{"userId": user.ID})
	}

	return resp, nil
}

// VerifyEmail consumes a verification token. A token works exactly once.
func (s *AuthServiceImpl) VerifyEmail(ctx context.Context, db *gorm.DB, token string) error {
	if token == "" {
		return apperrors.ErrInvalidVerificationToken
	}

	user, err := s.userRepo.FindByVerificationToken(db, token)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrInvalidVerificationToken
		}
		return apperrors.InternalError(err)
	}

	if err := s.userRepo.MarkVerified(db, user.ID); err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "email verified", "user_id", user.ID)
	return nil
}

// Login checks credentials and opens a session.
// Unknown user, unverified account and wrong password all answer 401 and issue nothing.
func (s *AuthServiceImpl) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(db, req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !user.IsVerified {
		return nil, apperrors.ErrEmailNotVerified
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.CtxWarn(ctx, "failed login attempt", "user_id", user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}

	role := user.RoleName()
	if role == "" {
		return nil, apperrors.InternalError(errors.New("user has no role assigned"))
	}

	accessToken, err := s.tokens.IssueAccessToken(auth.Claims{
		UserID:     user.ID,
		Username:   user.Username,
		Role:       role,
		IsVerified: user.IsVerified,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refresh, err := s.tokens.IssueRefreshToken()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.refreshTokenRepo.Create(db, &models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh.Token,
		ExpiresAt: refresh.ExpiresAt,
	}); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user logged in", "user_id", user.ID)

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refresh.Token,
		User: dto.UserSummary{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     role,
		},
	}, nil
}

// Refresh mints a new access token. The refresh token is not rotated and the role is read fresh.
func (s *AuthServiceImpl) Refresh(ctx context.Context, db *gorm.DB, refreshToken string) (*dto.RefreshTokenResponse, error) {
	stored, err := s.refreshTokenRepo.FindValid(db, refreshToken, s.now())
	if err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, apperrors.InternalError(err)
	}

	user, err := s.userRepo.FindByID(db, stored.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, apperrors.InternalError(err)
	}

	role := user.RoleName()
	if role == "" {
		return nil, apperrors.InternalError(errors.New("user has no role assigned"))
	}

	accessToken, err := s.tokens.IssueAccessToken(auth.Claims{
		UserID:     user.ID,
		Username:   user.Username,
		Role:       role,
		IsVerified: user.IsVerified,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxDebug(ctx, "access token refreshed", "user_id", user.ID)
	return &dto.RefreshTokenResponse{AccessToken: accessToken}, nil
}

// Logout deletes the session row. Unknown tokens are not an error.
// Access tokens already issued stay valid until they expire.
func (s *AuthServiceImpl) Logout(ctx context.Context, db *gorm.DB, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.refreshTokenRepo.DeleteByToken(db, refreshToken); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// RequestPasswordReset emails a reset link when the address is known.
// Unknown addresses succeed silently.
func (s *AuthServiceImpl) RequestPasswordReset(ctx context.Context, db *gorm.DB, emailAddr string) error {
	user, err := s.userRepo.FindByEmail(db, emailAddr)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			logger.CtxDebug(ctx, "password reset requested for unknown email")
			return nil
		}
		return apperrors.InternalError(err)
	}

	resetToken, err := auth.GenerateSecureToken()
	if err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.userRepo.SetResetToken(db, user.ID, resetToken, s.now().Add(s.cfg.ResetTokenTTL)); err != nil {
		return apperrors.InternalError(err)
	}

	resetURL := s.link("/api/auth/reset-password", resetToken)
	if err := s.emailProvider.SendPasswordResetEmail(ctx, user.Email, user.Username, resetURL); err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "password reset requested", "user_id", user.ID)
	return nil
}

// ResetPassword sets a new password and revokes every refresh token of the user.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, db *gorm.DB, req *dto.ResetPasswordRequest) error {
	user, err := s.userRepo.FindByResetToken(db, req.Token)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrInvalidResetToken
		}
		return apperrors.InternalError(err)
	}

	if user.ResetTokenExpiresAt == nil || !user.ResetTokenExpiresAt.After(s.now()) {
		return apperrors.ErrInvalidResetToken
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.userRepo.UpdatePassword(db, user.ID, hash); err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.refreshTokenRepo.DeleteByUserID(db, user.ID); err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "password reset", "user_id", user.ID)
	return nil
}

func (s *AuthServiceImpl) link(path, token string) string {
	return s.cfg.APIURL + path + "?token=" + url.QueryEscape(token)
}
