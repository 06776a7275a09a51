package dto

import (
	"time"
)

type SendMessageRequest struct {
	Content     string `json:"content" validate:"message_content"`
	RecipientID string `json:"recipientId" validate:"required,uuid"`
}

// MessageResponse is returned by send and pushed to the recipient's sockets.
type MessageResponse struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"senderId"`
	RecipientID string    `json:"recipientId"`
	Content     string    `json:"content"`
	IsRead      bool      `json:"isRead"`
	SentAt      time.Time `json:"sentAt"`
}

type Participant struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type MessageListItem struct {
	ID        string      `json:"id"`
	Content   string      `json:"content"`
	IsRead    bool        `json:"isRead"`
	SentAt    time.Time   `json:"sentAt"`
	ReadAt    *time.Time  `json:"readAt"`
	Sender    Participant `json:"sender"`
	Recipient Participant `json:"recipient"`
}

type MessagePagination struct {
	TotalMessages int64 `json:"totalMessages"`
	TotalPages    int   `json:"totalPages"`
	CurrentPage   int   `json:"currentPage"`
	Limit         int   `json:"limit"`
}

type MessageListResponse struct {
	Messages   []MessageListItem `json:"messages"`
	Pagination MessagePagination `json:"pagination"`
}
