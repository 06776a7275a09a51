package models

import "time"

type Message struct {
	ID          string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SenderID    string     `gorm:"type:uuid;not null;index"`
	RecipientID string     `gorm:"type:uuid;not null;index"`
	Content     string     `gorm:"type:text;not null"`
	IsRead      bool       `gorm:"not null;default:false"`
	SentAt      time.Time  `gorm:"not null;default:now()"`
	ReadAt      *time.Time

	Sender    *User `gorm:"foreignKey:SenderID"`
	Recipient *User `gorm:"foreignKey:RecipientID"`
}
