package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key names a consumed Kafka message.
func Key(topic string, partition int, offset int64) string {
	return fmt.Sprintf("idem:%s:%d:%d", topic, partition, offset)
}

// Store marks fully processed Kafka messages in Redis so redelivery is a
// no-op. A key is only claimed once the message's work has succeeded; a
// failed attempt leaves it unclaimed so the redelivered message is retried.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Seen reports whether key was already marked. It does not claim the key.
func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Mark claims the key after the message's work succeeded.
func (s *Store) Mark(ctx context.Context, key string) error {
	return s.rdb.SetNX(ctx, key, "1", s.ttl).Err()
}
