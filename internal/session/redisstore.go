package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voxaura-ai/voxaura/internal/fault"
)

// redisKeyPrefix namespaces VoxAura session keys in a shared Redis instance.
const redisKeyPrefix = "voxaura:session:"

// Compile-time assertion that RedisStore satisfies the Store interface.
var _ Store = (*RedisStore)(nil)

// RedisStore is a Redis-backed [Store]. It exists so a deployment running
// more than one VoxAura process can share session transcripts; it makes no
// durability promise beyond the configured TTL.
//
// Per-key atomicity is provided with WATCH/MULTI/EXEC transactions: an
// Append that races another writer on the same session retries until the
// transcript it read is the transcript it extends.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a [RedisStore] on top of client. A non-positive ttl
// defaults to 24 hours.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

// GetOrCreate implements [Store.GetOrCreate]. Creation uses SETNX so a
// concurrent creator for the same id wins exactly once and both callers see
// the same CreatedAt.
func (s *RedisStore) GetOrCreate(ctx context.Context, id string) (Session, error) {
	key := redisKeyPrefix + id

	fresh := Session{ID: id, CreatedAt: time.Now().UTC()}
	val, err := json.Marshal(fresh)
	if err != nil {
		return Session{}, fmt.Errorf("session: marshal: %w", err)
	}

	created, err := s.client.SetNX(ctx, key, val, s.ttl).Result()
	if err != nil {
		return Session{}, fmt.Errorf("session: redis setnx: %w", err)
	}
	if created {
		return fresh, nil
	}
	return s.Get(ctx, id)
}

// Append implements [Store.Append].
func (s *RedisStore) Append(ctx context.Context, id string, msg Message) error {
	key := redisKeyPrefix + id

	txn := func(tx *redis.Tx) error {
		sess, err := s.load(ctx, tx.Get(ctx, key))
		if errors.Is(err, fault.ErrNotFound) {
			sess = Session{ID: id, CreatedAt: time.Now().UTC()}
		} else if err != nil {
			return err
		}

		sess.Messages = append(sess.Messages, msg)
		val, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("session: marshal: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, val, s.ttl)
			return nil
		})
		return err
	}

	for {
		err := s.client.Watch(ctx, txn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			if err != nil {
				return fmt.Errorf("session: redis append: %w", err)
			}
			return nil
		}
		// Lost the race against another writer on this key; retry.
	}
}

// Get implements [Store.Get].
func (s *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	return s.load(ctx, s.client.Get(ctx, redisKeyPrefix+id))
}

// Clear implements [Store.Clear].
func (s *RedisStore) Clear(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}

// Ping reports whether the Redis backend is reachable. Used by readiness
// checks.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// load decodes a session from a GET result, mapping redis.Nil to
// [fault.ErrNotFound].
func (s *RedisStore) load(_ context.Context, cmd *redis.StringCmd) (Session, error) {
	val, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		return Session{}, fault.ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("session: redis get: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return Session{}, fmt.Errorf("session: unmarshal: %w", err)
	}
	return sess, nil
}
