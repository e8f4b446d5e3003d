// Package redis provides a poll store backed by a Redis instance. Poll
// records are stored as JSON values keyed by poll id.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vncsmyrnk/chatpoll/internal/core/domain"
	"github.com/vncsmyrnk/chatpoll/internal/core/ports"
)

type pollRepository struct {
	rdb        *redis.Client
	prefix     string
	maxRetries int
}

type Option func(*pollRepository)

func WithPrefix(prefix string) Option {
	return func(r *pollRepository) { r.prefix = prefix }
}

func WithMaxRetries(n int) Option {
	return func(r *pollRepository) { r.maxRetries = n }
}

func NewPollRepository(rdb *redis.Client, opts ...Option) ports.PollStore {
	r := &pollRepository{
		rdb:        rdb,
		prefix:     "poll",
		maxRetries: 10,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *pollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	record, err := json.Marshal(poll)
	if err != nil {
		return fmt.Errorf("failed to marshal poll: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key(poll.ID), record, 0).Err(); err != nil {
		return fmt.Errorf("failed to save poll: %w", err)
	}
	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id string) (*domain.Poll, error) {
	record, err := r.rdb.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	var poll domain.Poll
	if err := json.Unmarshal(record, &poll); err != nil {
		return nil, fmt.Errorf("failed to unmarshal poll: %w", err)
	}
	return &poll, nil
}

// Update performs an optimistic read-modify-write: the key is WATCHed,
// the transform re-runs from a fresh read on every conflict, and the
// write commits only if no concurrent writer touched the key.
func (r *pollRepository) Update(ctx context.Context, id string, fn func(*domain.Poll) error) (*domain.Poll, error) {
	key := r.key(id)
	var result *domain.Poll

	txn := func(tx *redis.Tx) error {
		record, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return domain.ErrPollNotFound
			}
			return fmt.Errorf("failed to get poll: %w", err)
		}

		var poll domain.Poll
		if err := json.Unmarshal(record, &poll); err != nil {
			return fmt.Errorf("failed to unmarshal poll: %w", err)
		}

		if err := fn(&poll); err != nil {
			return err
		}

		updated, err := json.Marshal(&poll)
		if err != nil {
			return fmt.Errorf("failed to marshal poll: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		if err != nil {
			return err
		}

		result = &poll
		return nil
	}

	for i := 0; i < r.maxRetries; i++ {
		err := r.rdb.Watch(ctx, txn, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("failed to update poll %s: too many conflicting writes", id)
}

func (r *pollRepository) key(id string) string {
	return r.prefix + ":" + id
}
