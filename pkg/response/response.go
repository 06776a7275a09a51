// Package response holds the JSON envelope every endpoint answers with.
package response

import (
	"github.com/gin-gonic/gin"
)

// Envelope is {success, message?, data?, error?}.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// OK writes a successful envelope.
func OK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Fail writes a failed envelope.
func Fail(c *gin.Context, status int, message string, errBody interface{}) {
	c.JSON(status, Envelope{
		Success: false,
		Message: message,
		Error:   errBody,
	})
}
