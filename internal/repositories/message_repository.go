package repositories

import (
	"errors"
	"time"

	"messaging_backend/internal/models"

	"gorm.io/gorm"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageFilter selects a page of messages. An empty ParticipantID means every message.
type MessageFilter struct {
	ParticipantID string
	Limit         int
	Offset        int
}

type MessageRepository interface {
	Create(db *gorm.DB, message *models.Message) error
	FindByID(db *gorm.DB, id string) (*models.Message, error)

	// List returns messages newest first with sender and recipient loaded.
	List(db *gorm.DB, filter MessageFilter) ([]models.Message, int64, error)

	// MarkRead sets is_read and read_at. read_at is only written the first time.
	MarkRead(db *gorm.DB, id string, readAt time.Time) error

	Delete(db *gorm.DB, id string) error
}

type messageRepository struct{}

func NewMessageRepository() MessageRepository {
	return &messageRepository{}
}

func (r *messageRepository) Create(db *gorm.DB, message *models.Message) error {
	return db.Create(message).Error
}

func (r *messageRepository) FindByID(db *gorm.DB, id string) (*models.Message, error) {
	var message models.Message
	if err := db.First(&message, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) List(db *gorm.DB, filter MessageFilter) ([]models.Message, int64, error) {
	var (
		messages []models.Message
		total    int64
	)

	query := db.Model(&models.Message{})
	if filter.ParticipantID != "" {
		query = query.Where("sender_id = ? OR recipient_id = ?", filter.ParticipantID, filter.ParticipantID)
	}
	query = query.Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Sender").
		Preload("Recipient").
		Order("sent_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&messages).Error
	return messages, total, err
}

func (r *messageRepository) MarkRead(db *gorm.DB, id string, readAt time.Time) error {
	result := db.Model(&models.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": gorm.Expr("COALESCE(read_at, ?)", readAt),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (r *messageRepository) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Message{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}
