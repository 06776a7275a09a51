package contextkeys

type contextKey string

// DBContextKey stores the request-scoped *gorm.DB in the gin context.
const DBContextKey = contextKey("db")

// ClaimsContextKey stores the verified access token claims in the gin context.
const ClaimsContextKey = contextKey("claims")
