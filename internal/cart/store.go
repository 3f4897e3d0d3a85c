package cart

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/chocodelight/storefront/internal/redisx"
)

// Store holds the per-user product->quantity mapping. The Redis
// implementation keeps one hash per user; tests use an in-memory fake.
type Store interface {
	Items(ctx context.Context, userID string) (map[string]int, error)
	Incr(ctx context.Context, userID, productID string, delta int) error
	Set(ctx context.Context, userID, productID string, qty int) error
	Remove(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
}

type RedisStore struct{ RDB *redis.Client }

func key(userID string) string { return fmt.Sprintf(redisx.KeyCart, userID) }

func (s *RedisStore) Items(ctx context.Context, userID string) (map[string]int, error) {
	raw, err := s.RDB.HGetAll(ctx, key(userID)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(raw))
	for pid, v := range raw {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("corrupt cart entry %s=%q: %w", pid, v, err)
		}
		out[pid] = n
	}
	return out, nil
}

func (s *RedisStore) Incr(ctx context.Context, userID, productID string, delta int) error {
	return s.RDB.HIncrBy(ctx, key(userID), productID, int64(delta)).Err()
}

func (s *RedisStore) Set(ctx context.Context, userID, productID string, qty int) error {
	return s.RDB.HSet(ctx, key(userID), productID, qty).Err()
}

func (s *RedisStore) Remove(ctx context.Context, userID, productID string) error {
	return s.RDB.HDel(ctx, key(userID), productID).Err()
}

func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	return s.RDB.Del(ctx, key(userID)).Err()
}
