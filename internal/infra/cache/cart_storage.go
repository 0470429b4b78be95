package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lumiere/internal/cart"

	"github.com/redis/go-redis/v9"
)

// 最後に触ってから30日で消える
const DefaultCartTTL = 30 * 24 * time.Hour

// RedisCartStorage はセッションカートを Redis の文字列キーに保存する。
type RedisCartStorage struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartStorage(client *redis.Client, ttl time.Duration) *RedisCartStorage {
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	return &RedisCartStorage{client: client, ttl: ttl}
}

// 読むたびにTTLを延ばす
func (s *RedisCartStorage) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.GetEx(ctx, key, s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cart.ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (s *RedisCartStorage) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
