package apperrors

// ErrorCode is the machine-readable code sent to clients.
type ErrorCode string

const (
	// System
	CodeInternalError ErrorCode = "INTERNAL_ERROR"

	// Request and business rules
	CodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	CodeDuplicateIdentity ErrorCode = "DUPLICATE_IDENTITY"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeRateLimited       ErrorCode = "RATE_LIMITED"

	// Authentication and authorization
	CodeUnauthorized          ErrorCode = "UNAUTHORIZED"
	CodeForbidden             ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials    ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidToken          ErrorCode = "INVALID_TOKEN"
	CodeInvalidOrExpiredToken ErrorCode = "INVALID_OR_EXPIRED_TOKEN"
)
