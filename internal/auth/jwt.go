package auth

import (
	"errors"
	"fmt"
	"time"

	"messaging_backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrEmptySecret  = errors.New("jwt secret must not be empty")
)

// Claims is the payload of an access token.
type Claims struct {
	UserID     string          `json:"userId"`
	Username   string          `json:"username"`
	Role       models.RoleName `json:"role"`
	IsVerified bool            `json:"isVerified"`
	jwt.RegisteredClaims
}

// RefreshToken is an opaque session identifier. It carries no claims and must be resolved against storage.
type RefreshToken struct {
	Token     string
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies access tokens and mints refresh tokens.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// IssueAccessToken signs claims with HS256, stamping issued-at and expiry.
func (i *TokenIssuer) IssueAccessToken(claims Claims) (string, error) {
	now := i.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken checks signature, structure and expiry. It never touches storage.
func (i *TokenIssuer) VerifyAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// IssueRefreshToken returns a random v4 UUID valid for the configured window.
func (i *TokenIssuer) IssueRefreshToken() (RefreshToken, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return RefreshToken{}, fmt.Errorf("generate refresh token: %w", err)
	}
	return RefreshToken{
		Token:     id.String(),
		ExpiresAt: i.now().Add(i.refreshTTL),
	}, nil
}
