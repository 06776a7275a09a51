package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"messaging_backend/internal/auth"
	"messaging_backend/internal/logger"
	"messaging_backend/internal/middleware"
	"messaging_backend/internal/validator"
	"messaging_backend/pkg/apperrors"
	"messaging_backend/pkg/contextkeys"
	"messaging_backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ============================================================================
// 1. Base handler
// ============================================================================

type BaseHandler struct {
	validator *validator.Validator
}

func NewBaseHandler(v *validator.Validator) *BaseHandler {
	return &BaseHandler{
		validator: v,
	}
}

// ============================================================================
// 2. DB
// ============================================================================

// GetDB returns the *gorm.DB (pool or transaction) placed by DBMiddleware.
func (h *BaseHandler) GetDB(c *gin.Context) *gorm.DB {
	dbKey := string(contextkeys.DBContextKey)

	val, ok := c.Get(dbKey)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db key not found in context", "key", dbKey)
		panic("critical error: DBMiddleware did not set the db key")
	}

	db, ok := val.(*gorm.DB)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db in context is not *gorm.DB", "key", dbKey, "type", fmt.Sprintf("%T", val))
		panic("critical error: db in context has incorrect type")
	}

	return db
}

// ============================================================================
// 3. Binding and validation
// ============================================================================

func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindJSON(obj); err != nil {
		logger.CtxWithError(ctx, "Failed to bind JSON body", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body"))
		return false
	}

	return h.validate(c, obj)
}

func (h *BaseHandler) BindAndValidate_Query(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindQuery(obj); err != nil {
		logger.CtxWithError(ctx, "Failed to bind query params", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid query parameters"))
		return false
	}

	return h.validate(c, obj)
}

func (h *BaseHandler) validate(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	err := h.validator.Validate(obj)
	if err == nil {
		return true
	}

	var vErr *validator.ValidationError
	if errors.As(err, &vErr) {
		logger.CtxWarn(ctx, "Validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
	} else {
		logger.CtxWithError(ctx, "Internal validator error", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.InternalError(err))
	}
	return false
}

// ============================================================================
// 4. Errors
// ============================================================================

// HandleServiceError renders AppErrors as they are and everything else as INTERNAL_ERROR.
func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		if appErr.HTTPCode >= http.StatusInternalServerError {
			logger.CtxWithError(ctx, "Service error", err, "path", c.Request.URL.Path)
		} else {
			logger.CtxWarn(ctx, "Service error",
				"error", appErr.Message,
				"details", appErr.Details,
				"path", c.Request.URL.Path,
			)
		}
		apperrors.HandleError(c, appErr)
	} else {
		logger.CtxWithError(ctx, "Internal server error", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.InternalError(err))
	}
}

// ============================================================================
// 5. Helpers
// ============================================================================

// GetClaims returns the caller's claims or writes 401.
func (h *BaseHandler) GetClaims(c *gin.Context) (*auth.Claims, bool) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		logger.CtxWarn(c.Request.Context(), "Unauthorized access: claims not found in context",
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
		)
		apperrors.HandleError(c, apperrors.ErrMissingToken)
		return nil, false
	}
	return claims, true
}

// ParseUUIDParam reads a path parameter that must be a uuid.
func ParseUUIDParam(c *gin.Context, key string) (string, bool) {
	value := c.Param(key)
	if _, err := uuid.Parse(value); err != nil {
		apperrors.HandleError(c, apperrors.ValidationError(map[string]string{
			key: "must be a valid UUID",
		}))
		return "", false
	}
	return value, true
}

func (h *BaseHandler) OK(c *gin.Context, message string, data interface{}) {
	response.OK(c, http.StatusOK, message, data)
}

func (h *BaseHandler) Created(c *gin.Context, message string, data interface{}) {
	response.OK(c, http.StatusCreated, message, data)
}
