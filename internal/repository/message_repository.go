package repository

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"thriftit/backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrEmptyContent   = errors.New("message content cannot be empty")
	ErrContentTooLong = errors.New("message too long (max 1000 characters)")
	ErrSelfMessage    = errors.New("cannot send message to yourself")
)

// MessageRepository is the durable log of directed messages. Writes are
// insert-only; no update or delete operations are exposed.
type MessageRepository interface {
	Append(senderID, receiverID uint, content string) (*models.Message, error)
	Between(userA, userB uint) ([]models.Message, error)
	LastBetween(userA, userB uint) (*models.Message, error)
	CountFrom(senderID, receiverID uint) (int64, error)
}

type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// ValidateSend checks a prospective message without touching the store.
func ValidateSend(senderID, receiverID uint, content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return ErrEmptyContent
	}
	if utf8.RuneCountInString(trimmed) > models.MaxMessageLength {
		return ErrContentTooLong
	}
	if senderID == receiverID {
		return ErrSelfMessage
	}
	return nil
}

// Append validates and persists a new message. Nothing is written when
// validation fails.
func (r *GormMessageRepository) Append(senderID, receiverID uint, content string) (*models.Message, error) {
	if err := ValidateSend(senderID, receiverID, content); err != nil {
		return nil, err
	}

	message := &models.Message{
		Content:    strings.TrimSpace(content),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Timestamp:  time.Now().UTC(),
	}

	if err := r.db.Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// Between returns every message exchanged between the two users, oldest
// first. Ties on timestamp fall back to insertion order. An unknown
// counterpart simply yields an empty history.
func (r *GormMessageRepository) Between(userA, userB uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.pairScope(userA, userB).
		Order("timestamp ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

// LastBetween returns the most recent message between the two users, or nil
// when they have never exchanged one.
func (r *GormMessageRepository) LastBetween(userA, userB uint) (*models.Message, error) {
	var message models.Message
	err := r.pairScope(userA, userB).
		Order("timestamp DESC, id DESC").
		First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

// CountFrom counts messages sent by senderID to receiverID.
func (r *GormMessageRepository) CountFrom(senderID, receiverID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
		Count(&count).Error
	return count, err
}

func (r *GormMessageRepository) pairScope(userA, userB uint) *gorm.DB {
	return r.db.Model(&models.Message{}).Where(
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		userA, userB, userB, userA,
	)
}
