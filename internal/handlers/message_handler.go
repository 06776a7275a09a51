package handlers

import (
	"messaging_backend/internal/middleware"
	"messaging_backend/internal/services"
	"messaging_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	*BaseHandler
	messageService services.MessageService
}

func NewMessageHandler(base *BaseHandler, messageService services.MessageService) *MessageHandler {
	return &MessageHandler{
		BaseHandler:    base,
		messageService: messageService,
	}
}

// RegisterRoutes mounts /messages. Every route needs a verified caller.
func (h *MessageHandler) RegisterRoutes(rg *gin.RouterGroup, gate *middleware.AuthGate) {
	messages := rg.Group("/messages")
	messages.Use(gate.Authenticate(), gate.RequireVerified(), gate.IsUser())
	{
		messages.POST("/send", h.Send)
		messages.GET("", h.List)
		messages.PATCH("/:id/read", h.MarkRead)
		messages.DELETE("/:id", gate.IsSuperAdmin(), h.Delete)
	}
}

// Send godoc
// @Summary Send a message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SendMessageRequest true "Recipient and content"
// @Success 201 {object} response.Envelope{data=dto.MessageResponse}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Recipient not found"
// @Router /messages/send [post]
func (h *MessageHandler) Send(c *gin.Context) {
	claims, ok := h.GetClaims(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.messageService.Send(c.Request.Context(), h.GetDB(c), claims, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.Created(c, "Message sent successfully", resp)
}

// List godoc
// @Summary List messages
// @Description Newest first. Admins see every message, other users the ones they sent or received.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page, default 1"
// @Param limit query int false "Page size, default 10, max 100"
// @Success 200 {object} response.Envelope{data=dto.MessageListResponse}
// @Router /messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	claims, ok := h.GetClaims(c)
	if !ok {
		return
	}

	var page dto.PageRequest
	if !h.BindAndValidate_Query(c, &page) {
		return
	}

	resp, err := h.messageService.List(c.Request.Context(), h.GetDB(c), claims, page)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.OK(c, "", resp)
}

// MarkRead godoc
// @Summary Mark a message as read
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Message ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /messages/{id}/read [patch]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	claims, ok := h.GetClaims(c)
	if !ok {
		return
	}
	messageID, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.messageService.MarkRead(c.Request.Context(), h.GetDB(c), claims, messageID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.OK(c, "Message marked as read", nil)
}

// Delete godoc
// @Summary Delete a message
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Message ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /messages/{id} [delete]
func (h *MessageHandler) Delete(c *gin.Context) {
	claims, ok := h.GetClaims(c)
	if !ok {
		return
	}
	messageID, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.messageService.Delete(c.Request.Context(), h.GetDB(c), claims, messageID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.OK(c, "Message deleted successfully", nil)
}
