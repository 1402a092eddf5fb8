package ws

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"thriftit/backend/pkg/logger"
)

var presenceCtx = context.Background()

// Presence records which users currently have a live subscription, backed
// by redis with a TTL so stale marks expire on their own. A nil Presence is
// valid and records nothing.
type Presence struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPresence connects to redis at addr. Returns nil when addr is empty,
// which disables presence tracking entirely.
func NewPresence(addr string, ttl time.Duration) *Presence {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // no password by default
		DB:       0,  // use default DB
	})
	return &Presence{client: client, ttl: ttl}
}

func presenceKey(userID uint) string {
	return fmt.Sprintf("presence:%d", userID)
}

func (p *Presence) MarkOnline(userID uint) {
	if p == nil {
		return
	}
	if err := p.client.Set(presenceCtx, presenceKey(userID), "1", p.ttl).Err(); err != nil {
		logger.GetGlobal().Debug("presence mark failed", "user_id", userID, "error", err.Error())
	}
}

func (p *Presence) MarkOffline(userID uint) {
	if p == nil {
		return
	}
	if err := p.client.Del(presenceCtx, presenceKey(userID)).Err(); err != nil {
		logger.GetGlobal().Debug("presence clear failed", "user_id", userID, "error", err.Error())
	}
}

// IsOnline reports whether the user currently has a presence mark. Returns
// false when presence tracking is disabled.
func (p *Presence) IsOnline(userID uint) bool {
	if p == nil {
		return false
	}
	n, err := p.client.Exists(presenceCtx, presenceKey(userID)).Result()
	if err != nil {
		return false
	}
	return n > 0
}
