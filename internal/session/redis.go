package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/appengine-ltd/command-it/internal/resolve"
)

const (
	redisKeyPrefix  = "commandit:pending:"
	redisMaxRetries = 8
)

// RedisStore keeps slots in Redis as JSON so several processes can serve the
// same sessions. Updates use WATCH/MULTI and retry when another writer wins.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(id string) string { return redisKeyPrefix + id }

func (s *RedisStore) Get(ctx context.Context, id string) (*resolve.Pending, error) {
	return s.read(ctx, s.client, redisKey(id))
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) read(ctx context.Context, c getter, key string) (*resolve.Pending, error) {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load pending clarification: %w", err)
	}
	p, err := resolve.UnmarshalPending(data)
	if err != nil {
		return nil, fmt.Errorf("decode pending clarification: %w", err)
	}
	return p, nil
}

func (s *RedisStore) Ask(ctx context.Context, id string, p *resolve.Pending) error {
	return s.Update(ctx, id, func(cur *resolve.Pending) (*resolve.Pending, error) {
		if cur != nil {
			return nil, ErrClarificationPending
		}
		return p, nil
	})
}

func (s *RedisStore) Clear(ctx context.Context, id string) error {
	return s.client.Del(ctx, redisKey(id)).Err()
}

func (s *RedisStore) Update(ctx context.Context, id string, fn UpdateFunc) error {
	key := redisKey(id)
	txf := func(tx *redis.Tx) error {
		cur, err := s.read(ctx, tx, key)
		if err != nil {
			return err
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		var data []byte
		if next != nil {
			if data, err = next.Marshal(); err != nil {
				return err
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if next == nil {
				pipe.Del(ctx, key)
				return nil
			}
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}
	for i := 0; i < redisMaxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update pending clarification %s: %w", id, redis.TxFailedErr)
}
