package middleware

import (
	"strings"

	"messaging_backend/internal/auth"
	"messaging_backend/internal/logger"
	"messaging_backend/pkg/apperrors"
	"messaging_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// TokenVerifier is the part of auth.TokenIssuer the gate needs.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

// AuthGate authenticates bearer tokens and enforces role and verification predicates.
type AuthGate struct {
	tokens TokenVerifier
}

func NewAuthGate(tokens TokenVerifier) *AuthGate {
	return &AuthGate{tokens: tokens}
}

// Authenticate resolves the bearer token into claims.
// A missing header or wrong scheme is 401 "Access token is required",
// a token that fails verification is 401 "Invalid or expired token".
func (g *AuthGate) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, bearerPrefix) {
			apperrors.AbortWithError(c, apperrors.ErrMissingToken)
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		if tokenStr == "" {
			apperrors.AbortWithError(c, apperrors.ErrMissingToken)
			return
		}

		claims, err := g.tokens.VerifyAccessToken(tokenStr)
		if err != nil {
			logger.CtxDebug(c.Request.Context(), "access token rejected", "error", err)
			apperrors.AbortWithError(c, apperrors.ErrInvalidAccessToken)
			return
		}

		c.Set(string(contextkeys.ClaimsContextKey), claims)
		ctx := logger.WithUserID(c.Request.Context(), claims.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireVerified rejects callers whose token says the email is unconfirmed.
func (g *AuthGate) RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			apperrors.AbortWithError(c, apperrors.ErrMissingToken)
			return
		}
		if !claims.IsVerified {
			apperrors.AbortWithError(c, apperrors.ErrEmailVerificationRequired)
			return
		}
		c.Next()
	}
}

// RequireRoles admits callers whose role is in allowed.
func (g *AuthGate) RequireRoles(allowed auth.RoleSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			apperrors.AbortWithError(c, apperrors.ErrMissingToken)
			return
		}
		if !allowed.Contains(claims.Role) {
			apperrors.AbortWithError(c, apperrors.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

func (g *AuthGate) IsUser() gin.HandlerFunc {
	return g.RequireRoles(auth.UserRoles)
}

func (g *AuthGate) IsAdmin() gin.HandlerFunc {
	return g.RequireRoles(auth.AdminRoles)
}

func (g *AuthGate) IsSuperAdmin() gin.HandlerFunc {
	return g.RequireRoles(auth.SuperAdminRoles)
}

// GetClaims returns the claims stored by Authenticate.
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	val, exists := c.Get(string(contextkeys.ClaimsContextKey))
	if !exists {
		return nil, false
	}
	claims, ok := val.(*auth.Claims)
	if !ok || claims == nil {
		return nil, false
	}
	return claims, true
}
