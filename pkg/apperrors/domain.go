package apperrors

import (
	"net/http"
)

// =========================================================================
// Auth
// =========================================================================

// ErrDuplicateIdentity - username or email is already taken.
var ErrDuplicateIdentity = New(
	CodeDuplicateIdentity,
	"auth",
	"Username or email already exists",
	http.StatusBadRequest,
)

// ErrInvalidCredentials - unknown username or wrong password.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid credentials",
	http.StatusUnauthorized,
)

// ErrEmailNotVerified - login attempt before the email was confirmed.
// Same status as ErrInvalidCredentials; only the text differs.
var ErrEmailNotVerified = New(
	CodeInvalidCredentials,
	"auth",
	"Please verify your email before logging in",
	http.StatusUnauthorized,
)

var ErrInvalidVerificationToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid verification token",
	http.StatusBadRequest,
)

var ErrInvalidResetToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired password reset token",
	http.StatusBadRequest,
)

var ErrInvalidRefreshToken = New(
	CodeInvalidOrExpiredToken,
	"auth",
	"Invalid or expired refresh token",
	http.StatusUnauthorized,
)

var ErrMissingToken = New(
	CodeUnauthorized,
	"auth",
	"Access token is required",
	http.StatusUnauthorized,
)

var ErrInvalidAccessToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrEmailVerificationRequired = New(
	CodeForbidden,
	"auth",
	"Email verification required",
	http.StatusForbidden,
)

// ErrVerificationEmailFailed - the account exists but the mail relay refused the message.
var ErrVerificationEmailFailed = New(
	CodeInternalError,
	"email",
	"User registered but verification email could not be sent",
	http.StatusInternalServerError,
)

var ErrTooManyRequests = New(
	CodeRateLimited,
	"request",
	"Too many requests, please try again later",
	http.StatusTooManyRequests,
)

// =========================================================================
// Users
// =========================================================================

var ErrUserNotFound = New(
	CodeNotFound,
	"user",
	"User not found",
	http.StatusNotFound,
)

var ErrRoleNotFound = New(
	CodeNotFound,
	"user",
	"Role not found",
	http.StatusNotFound,
)

// =========================================================================
// Messages
// =========================================================================

var ErrRecipientNotFound = New(
	CodeNotFound,
	"message",
	"Recipient not found",
	http.StatusNotFound,
)

var ErrMessageNotFound = New(
	CodeNotFound,
	"message",
	"Message not found",
	http.StatusNotFound,
)

// ErrNotMessageRecipient - only the recipient or an admin may mark a message as read.
var ErrNotMessageRecipient = New(
	CodeForbidden,
	"message",
	"You can only mark your own messages as read",
	http.StatusForbidden,
)
