package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"Storefront/internal/cart"
)

const (
	redisPingTimeout = 1 * time.Second
	maxTxRetries     = 8
)

// RedisStore keeps each cart as a JSON document under cart:<session>. The
// key expires with the session, which is how abandoned carts go away.
type RedisStore struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

func NewRedisStore(rdb redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (cart.State, error) {
	return readCart(ctx, s.rdb, cartKey(sessionID))
}

// Update runs fn inside a WATCH/MULTI transaction and retries when another
// writer touched the same cart in between.
func (s *RedisStore) Update(ctx context.Context, sessionID string, fn func(cart.State) cart.State) (cart.State, error) {
	key := cartKey(sessionID)
	var next cart.State

	txf := func(tx *redis.Tx) error {
		cur, err := readCart(ctx, tx, key)
		if err != nil {
			return err
		}

		next = fn(cur)

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(next) == 0 {
				pipe.Del(ctx, key)
				return nil
			}
			raw, err := json.Marshal(next)
			if err != nil {
				return err
			}
			pipe.Set(ctx, key, raw, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if err == nil {
			if len(next) == 0 {
				return cart.Empty(), nil
			}
			return next, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrConflict
}

func readCart(ctx context.Context, c redis.Cmdable, key string) (cart.State, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.Empty(), nil
	}
	if err != nil {
		return nil, err
	}

	var st cart.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return st, nil
}
