package handlers

import (
	"context"
	"net/http"
	"time"

	"messaging_backend/internal/database"
	"messaging_backend/internal/logger"
	"messaging_backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

type HealthHandler struct {
	*BaseHandler
}

func NewHealthHandler(base *BaseHandler) *HealthHandler {
	return &HealthHandler{BaseHandler: base}
}

// Health godoc
// @Summary Liveness and database reachability
// @Tags system
// @Produce json
// @Success 200 {object} response.Envelope{data=HealthResponse}
// @Failure 503 {object} response.Envelope{data=HealthResponse}
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	db := h.GetDB(c)
	if db == nil {
		response.OK(c, http.StatusOK, "", HealthResponse{Status: "ok", Database: "disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := database.Ping(ctx, db); err != nil {
		logger.CtxWithError(c.Request.Context(), "health check: database unreachable", err)
		c.JSON(http.StatusServiceUnavailable, response.Envelope{
			Success: false,
			Message: "Database unreachable",
			Data:    HealthResponse{Status: "degraded", Database: "down"},
		})
		return
	}

	response.OK(c, http.StatusOK, "", HealthResponse{Status: "ok", Database: "up"})
}
