package models

import (
	"time"
)

// MaxMessageLength is the maximum number of characters in a single message.
const MaxMessageLength = 1000

// TimestampLayout is the wire format for message timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// Message is a directed message between two users. Rows are append-only:
// they are never updated or deleted once created.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	SenderID   uint      `gorm:"index;not null" json:"sender_id"`
	ReceiverID uint      `gorm:"index;not null" json:"receiver_id"`
	Timestamp  time.Time `gorm:"index" json:"timestamp"`
	CreatedAt  time.Time `json:"created_at"`
}

// WireTimestamp formats the message timestamp for API and socket payloads.
func (m *Message) WireTimestamp() string {
	return m.Timestamp.Format(TimestampLayout)
}
