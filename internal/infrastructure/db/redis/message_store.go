package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mergington/activity-board/internal/core/domain"
	"github.com/mergington/activity-board/internal/core/ports"
)

// MessageStore keeps one transient message per browser surface in Redis.
// Key format: board:message:<client_id>:<surface>
// Each key expires with its message, so a newer message carries its own TTL.
type MessageStore struct {
	client *redis.Client
	now    func() time.Time
}

var _ ports.MessageStore = (*MessageStore)(nil)

// NewMessageStore creates a MessageStore wrapping the given Redis client.
func NewMessageStore(client *redis.Client) *MessageStore {
	return &MessageStore{client: client, now: time.Now}
}

// Show replaces the surface's message. Already-expired messages are dropped.
func (s *MessageStore) Show(ctx context.Context, clientID string, msg domain.Message) error {
	ttl := msg.Remaining(s.now())
	if ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("message store: encode: %w", err)
	}
	if err := s.client.Set(ctx, s.key(clientID, msg.Surface), payload, ttl).Err(); err != nil {
		return fmt.Errorf("message store: set: %w", err)
	}
	return nil
}

// Current returns the surface's message, or nil when none is stored.
func (s *MessageStore) Current(ctx context.Context, clientID string, surface domain.Surface) (*domain.Message, error) {
	raw, err := s.client.Get(ctx, s.key(clientID, surface)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("message store: get: %w", err)
	}
	var msg domain.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("message store: decode: %w", err)
	}
	return &msg, nil
}

func (s *MessageStore) key(clientID string, surface domain.Surface) string {
	return fmt.Sprintf("board:message:%s:%s", clientID, surface)
}
