package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"messaging_backend/internal/auth"
	"messaging_backend/internal/logger"
	"messaging_backend/internal/models"
	"messaging_backend/internal/repositories"
	"messaging_backend/internal/services/dto"
	"messaging_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// EventNewMessage is pushed to the recipient when a message is stored.
const EventNewMessage = "new_message"

// Notifier fans events out to a user's live connections. Delivery is best effort.
type Notifier interface {
	Notify(userID string, event string, payload interface{})
}

type MessageService interface {
	Send(ctx context.Context, db *gorm.DB, sender *auth.Claims, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	List(ctx context.Context, db *gorm.DB, caller *auth.Claims, page dto.PageRequest) (*dto.MessageListResponse, error)
	MarkRead(ctx context.Context, db *gorm.DB, caller *auth.Claims, messageID string) error
	Delete(ctx context.Context, db *gorm.DB, caller *auth.Claims, messageID string) error
}

type MessageServiceImpl struct {
	messageRepo repositories.MessageRepository
	userRepo    repositories.UserRepository
	notifier    Notifier
	now         func() time.Time
}

func NewMessageService(
	messageRepo repositories.MessageRepository,
	userRepo repositories.UserRepository,
	notifier Notifier,
) *MessageServiceImpl {
	return &MessageServiceImpl{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		now:         time.Now,
	}
}

func (s *MessageServiceImpl) Send(ctx context.Context, db *gorm.DB, sender *auth.Claims, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	if _, err := s.userRepo.FindByID(db, req.RecipientID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrRecipientNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	message := &models.Message{
		SenderID:    sender.UserID,
		RecipientID: req.RecipientID,
		Content:     strings.TrimSpace(req.Content),
		SentAt:      s.now(),
	}
	if err := s.messageRepo.Create(db, message); err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := toMessageResponse(message)
	if s.notifier != nil {
		s.notifier.Notify(message.RecipientID, EventNewMessage, resp)
	}

	logger.CtxInfo(ctx, "message sent", "message_id", message.ID, "recipient_id", message.RecipientID)
	return resp, nil
}

// List pages messages newest first. Admins see every message, other users only their own.
func (s *MessageServiceImpl) List(ctx context.Context, db *gorm.DB, caller *auth.Claims, page dto.PageRequest) (*dto.MessageListResponse, error) {
	page = page.Normalize()

	filter := repositories.MessageFilter{
		Limit:  page.Limit,
		Offset: page.Offset(),
	}
	if !auth.IsAdmin(caller) {
		filter.ParticipantID = caller.UserID
	}

	messages, total, err := s.messageRepo.List(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.MessageListItem, 0, len(messages))
	for i := range messages {
		items = append(items, toMessageListItem(&messages[i]))
	}

	return &dto.MessageListResponse{
		Messages: items,
		Pagination: dto.MessagePagination{
			TotalMessages: total,
			TotalPages:    dto.TotalPages(total, page.Limit),
			CurrentPage:   page.Page,
			Limit:         page.Limit,
		},
	}, nil
}

// MarkRead is allowed for the recipient and for admins.
func (s *MessageServiceImpl) MarkRead(ctx context.Context, db *gorm.DB, caller *auth.Claims, messageID string) error {
	message, err := s.messageRepo.FindByID(db, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return apperrors.ErrMessageNotFound
		}
		return apperrors.InternalError(err)
	}

	if message.RecipientID != caller.UserID && !auth.IsAdmin(caller) {
		return apperrors.ErrNotMessageRecipient
	}

	if err := s.messageRepo.MarkRead(db, messageID, s.now()); err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return apperrors.ErrMessageNotFound
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// Delete removes a message for good. Super admins only.
func (s *MessageServiceImpl) Delete(ctx context.Context, db *gorm.DB, caller *auth.Claims, messageID string) error {
	if !auth.IsSuperAdmin(caller) {
		return apperrors.ErrInsufficientPermissions
	}

	if err := s.messageRepo.Delete(db, messageID); err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return apperrors.ErrMessageNotFound
		}
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "message deleted", "message_id", messageID)
	return nil
}

func toMessageResponse(m *models.Message) *dto.MessageResponse {
	return &dto.MessageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		IsRead:      m.IsRead,
		SentAt:      m.SentAt,
	}
}

func toParticipant(id string, u *models.User) dto.Participant {
	p := dto.Participant{ID: id}
	if u != nil {
		p.Username = u.Username
	}
	return p
}

func toMessageListItem(m *models.Message) dto.MessageListItem {
	return dto.MessageListItem{
		ID:        m.ID,
		Content:   m.Content,
		IsRead:    m.IsRead,
		SentAt:    m.SentAt,
		ReadAt:    m.ReadAt,
		Sender:    toParticipant(m.SenderID, m.Sender),
		Recipient: toParticipant(m.RecipientID, m.Recipient),
	}
}
