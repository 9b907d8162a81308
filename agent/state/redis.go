package state

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
)

var _ contractx.HistoryStore = (*RedisStore)(nil)

// RedisStore keeps history lists on a native Redis connection. Keys look
// like /<prefix>/history/<sessionID>.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "concierge"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisStore) key(sessionID string) (string, error) {
	sessionID, err := normalizeSessionID(sessionID)
	if err != nil {
		return "", err
	}
	return path.Join("/", s.prefix, "history", sessionID), nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) ([]contractx.Message, error) {
	key, err := s.key(sessionID)
	if err != nil {
		return nil, err
	}

	data, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load history from redis: %w", err)
	}
	return decodeMessages(data)
}

func (s *RedisStore) Append(ctx context.Context, sessionID string, msgs ...contractx.Message) error {
	key, err := s.key(sessionID)
	if err != nil {
		return err
	}
	if err := validateMessages(msgs); err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	encoded, err := encodeMessages(msgs)
	if err != nil {
		return err
	}
	values := make([]any, 0, len(encoded))
	for _, e := range encoded {
		values = append(values, e)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append history to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Reset(ctx context.Context, sessionID string) error {
	key, err := s.key(sessionID)
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("reset history in redis: %w", err)
	}
	return nil
}
