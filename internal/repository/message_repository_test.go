package repository

import (
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"thriftit/backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Message{}))
	return db
}

func TestAppendStoresTrimmedContent(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))

	msg, err := repo.Append(1, 2, "  hello there  ")
	require.NoError(t, err)
	assert.Equal(t, "hello there", msg.Content)
	assert.Equal(t, uint(1), msg.SenderID)
	assert.Equal(t, uint(2), msg.ReceiverID)
	assert.NotZero(t, msg.ID)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestAppendRejectsInvalidMessages(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))

	tests := []struct {
		name       string
		senderID   uint
		receiverID uint
		content    string
		wantErr    error
	}{
		{"empty content", 1, 2, "", ErrEmptyContent},
		{"whitespace only", 1, 2, "   \t\n  ", ErrEmptyContent},
		{"too long", 1, 2, strings.Repeat("a", 1001), ErrContentTooLong},
		{"self message", 1, 1, "hello", ErrSelfMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Append(tt.senderID, tt.receiverID, tt.content)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// No failed attempt left a row behind
	count, err := repo.CountFrom(1, 2)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAppendAcceptsMaxLengthContent(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))

	msg, err := repo.Append(1, 2, strings.Repeat("a", 1000))
	require.NoError(t, err)
	assert.Len(t, msg.Content, 1000)
}

func TestAppendCountsRunesNotBytes(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))

	// 1000 multi-byte characters exceed 1000 bytes but stay within the limit
	_, err := repo.Append(1, 2, strings.Repeat("é", 1000))
	assert.NoError(t, err)

	_, err = repo.Append(1, 2, strings.Repeat("é", 1001))
	assert.ErrorIs(t, err, ErrContentTooLong)
}

func TestBetweenIsSymmetricAndChronological(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))

	_, err := repo.Append(1, 2, "first")
	require.NoError(t, err)
	_, err = repo.Append(2, 1, "second")
	require.NoError(t, err)
	_, err = repo.Append(1, 2, "third")
	require.NoError(t, err)
	// Traffic with a third user stays out of the pair
	_, err = repo.Append(1, 3, "other pair")
	require.NoError(t, err)

	forward, err := repo.Between(1, 2)
	require.NoError(t, err)
	backward, err := repo.Between(2, 1)
	require.NoError(t, err)

	require.Len(t, forward, 3)
	assert.Equal(t, forward, backward)

	assert.Equal(t, "first", forward[0].Content)
	assert.Equal(t, "second", forward[1].Content)
	assert.Equal(t, "third", forward[2].Content)
	for i := 1; i < len(forward); i++ {
		assert.False(t, forward[i].Timestamp.Before(forward[i-1].Timestamp))
	}
}

func TestBetweenUnknownCounterpartReturnsEmpty(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))

	messages, err := repo.Between(1, 999)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestLastBetween(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))

	last, err := repo.LastBetween(1, 2)
	require.NoError(t, err)
	assert.Nil(t, last)

	_, err = repo.Append(1, 2, "older")
	require.NoError(t, err)
	_, err = repo.Append(2, 1, "newer")
	require.NoError(t, err)

	last, err = repo.LastBetween(1, 2)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "newer", last.Content)
}

func TestCountFromIsDirectional(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))

	_, err := repo.Append(1, 2, "one")
	require.NoError(t, err)
	_, err = repo.Append(1, 2, "two")
	require.NoError(t, err)
	_, err = repo.Append(2, 1, "reply")
	require.NoError(t, err)

	fromOne, err := repo.CountFrom(1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fromOne)

	fromTwo, err := repo.CountFrom(2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fromTwo)
}
