package apperrors

import (
	"messaging_backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// errorBody is the "error" member of the response envelope.
type errorBody struct {
	Code    ErrorCode   `json:"code"`
	Domain  string      `json:"domain,omitempty"`
	Details interface{} `json:"details,omitempty"`
	Cause   string      `json:"cause,omitempty"`
}

// GinErrorHandler renders AppErrors into the response envelope.
// With Debug off, details and causes are stripped.
type GinErrorHandler struct {
	Debug bool
}

func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}

	body := &errorBody{Code: appErr.Code}
	if h.Debug {
		body.Domain = appErr.Domain
		body.Details = appErr.Details
		if appErr.Err != nil {
			body.Cause = appErr.Err.Error()
		}
	} else if appErr.Code == CodeValidationFailed {
		// Field errors describe the caller's own input.
		body.Details = appErr.Details
	}

	response.Fail(c, appErr.HTTPCode, appErr.Message, body)
}

var defaultHandler = &GinErrorHandler{Debug: true}

// SetDebug switches the package-level handler used by HandleError.
func SetDebug(debug bool) {
	defaultHandler = &GinErrorHandler{Debug: debug}
}

// HandleError writes err using the package-level handler.
func HandleError(c *gin.Context, err error) {
	defaultHandler.HandleGinError(c, err)
}

// AbortWithError writes err and stops the middleware chain.
func AbortWithError(c *gin.Context, err error) {
	HandleError(c, err)
	c.Abort()
}
