package service

import (
	"errors"
	"sort"
	"time"

	"thriftit/backend/internal/models"
	"thriftit/backend/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrSenderNotFound   = errors.New("sender not found")
	ErrReceiverNotFound = errors.New("receiver not found")
	ErrSelfConversation = errors.New("cannot get conversation with yourself")
)

// ConversationSummary is the derived inbox entry for one counterpart. It is
// recomputed on every view and never stored.
type ConversationSummary struct {
	User        models.UserResponse `json:"user"`
	LastMessage *models.Message     `json:"last_message"`
	UnreadCount int64               `json:"unread_count"`
}

// ConversationMessage is one entry of a pairwise history as seen by a viewer.
type ConversationMessage struct {
	ID         uint   `json:"id"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
	IsSender   bool   `json:"is_sender"`
	SenderName string `json:"sender_name"`
}

// MessageService owns the send path, pairwise history and the inbox
// aggregation.
type MessageService struct {
	db       *gorm.DB
	messages repository.MessageRepository
}

// NewMessageService creates a new message service
func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{
		db:       db,
		messages: repository.NewGormMessageRepository(db),
	}
}

// Send validates the participants and appends the message to the store.
// Validation failures leave no row behind.
func (s *MessageService) Send(senderID, receiverID uint, content string) (*models.Message, error) {
	if err := repository.ValidateSend(senderID, receiverID, content); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", senderID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrSenderNotFound
	}
	if err := s.db.Model(&models.User{}).Where("id = ?", receiverID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrReceiverNotFound
	}

	return s.messages.Append(senderID, receiverID, content)
}

// History returns the full message history between the viewer and another
// user, oldest first, annotated with direction and sender display names.
// "No conversation yet" is a valid state and yields an empty slice.
func (s *MessageService) History(viewerID, otherID uint) ([]ConversationMessage, error) {
	if viewerID == otherID {
		return nil, ErrSelfConversation
	}

	messages, err := s.messages.Between(viewerID, otherID)
	if err != nil {
		return nil, err
	}

	names := map[uint]string{}
	resolve := func(id uint) string {
		if name, ok := names[id]; ok {
			return name
		}
		var user models.User
		if err := s.db.First(&user, id).Error; err != nil {
			names[id] = ""
			return ""
		}
		names[id] = user.DisplayName()
		return names[id]
	}

	history := make([]ConversationMessage, len(messages))
	for i, msg := range messages {
		history[i] = ConversationMessage{
			ID:         msg.ID,
			Content:    msg.Content,
			Timestamp:  msg.WireTimestamp(),
			IsSender:   msg.SenderID == viewerID,
			SenderName: resolve(msg.SenderID),
		}
	}
	return history, nil
}

// ListConversations derives one summary per counterpart for the viewer: the
// most recent pairwise message plus a tally of messages received from that
// counterpart. The tally never decrements; there is no mark-as-read
// operation. Results are sorted by recency, counterparts with no history
// last in their original order.
func (s *MessageService) ListConversations(viewerID uint) ([]ConversationSummary, error) {
	var candidates []models.User
	if err := s.db.Where("id <> ?", viewerID).Order("id ASC").Find(&candidates).Error; err != nil {
		return nil, err
	}

	conversations := make([]ConversationSummary, 0, len(candidates))
	for _, user := range candidates {
		last, err := s.messages.LastBetween(viewerID, user.ID)
		if err != nil {
			return nil, err
		}

		var unread int64
		if last != nil {
			unread, err = s.messages.CountFrom(user.ID, viewerID)
			if err != nil {
				return nil, err
			}
		}

		conversations = append(conversations, ConversationSummary{
			User:        user.ToResponse(),
			LastMessage: last,
			UnreadCount: unread,
		})
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return summaryTime(conversations[i]).After(summaryTime(conversations[j]))
	})

	return conversations, nil
}

// summaryTime treats a missing last message as an effectively-minimal
// timestamp so empty conversations sort to the end.
func summaryTime(c ConversationSummary) time.Time {
	if c.LastMessage == nil {
		return time.Time{}
	}
	return c.LastMessage.Timestamp
}
