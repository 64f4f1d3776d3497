package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"artemiz/internal/registration/models"
	id "artemiz/pkg/domain"
	"artemiz/pkg/platform/sentinel"
)

const maxTxRetries = 5

// RedisStore keeps wizards as JSON values with a sliding TTL. Update runs
// inside WATCH/MULTI so concurrent writers never interleave.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis-backed session store.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context, w *models.Wizard) error {
	payload, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal wizard: %w", err)
	}
	ok, err := s.client.SetNX(ctx, keyFor(w), payload, s.ttl).Result()
	if err != nil {
		return unavailable("create", err)
	}
	if !ok {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID id.SessionID) (*models.Wizard, error) {
	raw, err := s.client.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get", err)
	}
	return decode(raw)
}

func (s *RedisStore) Update(ctx context.Context, sessionID id.SessionID, fn UpdateFunc) (*models.Wizard, error) {
	k := key(sessionID)
	var updated *models.Wizard

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return unavailable("get", err)
		}
		w, err := decode(raw)
		if err != nil {
			return err
		}
		if err := fn(w); err != nil {
			return err
		}
		payload, err := json.Marshal(w)
		if err != nil {
			return fmt.Errorf("marshal wizard: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, payload, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = w
		return nil
	}

	for range maxTxRetries {
		err := s.client.Watch(ctx, txf, k)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, sentinel.ErrConflict
}

func (s *RedisStore) Delete(ctx context.Context, sessionID id.SessionID) error {
	n, err := s.client.Del(ctx, key(sessionID)).Result()
	if err != nil {
		return unavailable("delete", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func key(sessionID id.SessionID) string {
	return keyPrefix + sessionID.String()
}

func decode(raw []byte) (*models.Wizard, error) {
	var w models.Wizard
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode wizard: %w", err)
	}
	if w.Errors == nil {
		w.Errors = models.FieldErrors{}
	}
	return &w, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("redis %s: %w", op, errors.Join(sentinel.ErrUnavailable, err))
}
