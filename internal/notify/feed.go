package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cura-agent/roster-service/internal/domain"
)

const feedKeyPrefix = "notifications:"

// FeedSink keeps the most recent notices of each account in a Redis list so
// the admin panel can render them as toasts.
type FeedSink struct {
	client redis.Cmdable
	size   int64
	ttl    time.Duration
}

// NewFeedSink constructs a FeedSink. size bounds each account's list.
func NewFeedSink(client redis.Cmdable, size int, ttl time.Duration) *FeedSink {
	if size <= 0 {
		size = 20
	}
	return &FeedSink{client: client, size: int64(size), ttl: ttl}
}

// FeedKey returns the Redis key holding accountID's notices.
func FeedKey(accountID string) string {
	if accountID == "" {
		accountID = "anonymous"
	}
	return feedKeyPrefix + accountID
}

// Notify pushes n to the head of the recipient's feed and trims it.
func (s *FeedSink) Notify(ctx context.Context, n domain.Notification) error {
	if s.client == nil {
		return errors.New("redis client not configured")
	}
	accountID := recipient(ctx, n)
	n.AccountID = accountID
	raw, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	key := FeedKey(accountID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, raw)
		pipe.LTrim(ctx, key, 0, s.size-1)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("push notification: %w", err)
	}
	return nil
}

// Recent returns up to limit notices for accountID, newest first.
func (s *FeedSink) Recent(ctx context.Context, accountID string, limit int) ([]domain.Notification, error) {
	if s.client == nil {
		return nil, errors.New("redis client not configured")
	}
	if limit <= 0 || int64(limit) > s.size {
		limit = int(s.size)
	}
	raws, err := s.client.LRange(ctx, FeedKey(accountID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read notifications: %w", err)
	}
	return decodeFeed(raws), nil
}

// Clear drops accountID's feed.
func (s *FeedSink) Clear(ctx context.Context, accountID string) error {
	if s.client == nil {
		return errors.New("redis client not configured")
	}
	return s.client.Del(ctx, FeedKey(accountID)).Err()
}

// decodeFeed skips entries that are not valid notifications.
func decodeFeed(raws []string) []domain.Notification {
	out := make([]domain.Notification, 0, len(raws))
	for _, raw := range raws {
		var n domain.Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}
