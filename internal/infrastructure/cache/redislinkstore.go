package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agendapay/agendapay/internal/domain/paymentlink"
)

const (
	// paymentLinkPrefix is the prefix for payment link keys
	paymentLinkPrefix = "paymentlink:"
	// DefaultLinkRetention keeps expired links around long enough to be
	// reported as expired rather than unknown.
	DefaultLinkRetention = 24 * time.Hour
	// maxTxRetries bounds optimistic transaction retries under contention
	maxTxRetries  = 10
	scanBatchSize = 100
)

// RedisLinkStore stores payment links as JSON values shared by every
// instance. Keys outlive the link by the retention window; logical expiry is
// always decided from ExpiresAt.
type RedisLinkStore struct {
	client    *redis.Client
	retention time.Duration
}

var _ paymentlink.Repository = (*RedisLinkStore)(nil)

func NewRedisLinkStore(client *redis.Client, retention time.Duration) *RedisLinkStore {
	if retention <= 0 {
		retention = DefaultLinkRetention
	}
	return &RedisLinkStore{client: client, retention: retention}
}

func (s *RedisLinkStore) key(id string) string {
	return paymentLinkPrefix + id
}

func (s *RedisLinkStore) Insert(ctx context.Context, link *paymentlink.Link) (bool, error) {
	data, err := json.Marshal(link)
	if err != nil {
		return false, fmt.Errorf("failed to marshal payment link: %w", err)
	}

	ttl := link.ExpiresAt.Sub(link.CreatedAt) + s.retention
	// SetNX is atomic: an existing id is never overwritten
	inserted, err := s.client.SetNX(ctx, s.key(link.ID), data, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to store payment link: %w", err)
	}
	return inserted, nil
}

func (s *RedisLinkStore) Get(ctx context.Context, id string) (*paymentlink.Link, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, paymentlink.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment link: %w", err)
	}
	return decodeLink(data)
}

func (s *RedisLinkStore) MarkUsed(ctx context.Context, id string, at time.Time) error {
	return s.update(ctx, id, func(link *paymentlink.Link) error {
		link.MarkUsed(at)
		return nil
	})
}

func (s *RedisLinkStore) Consume(ctx context.Context, id string, now time.Time) (*paymentlink.Link, error) {
	var consumed *paymentlink.Link
	err := s.update(ctx, id, func(link *paymentlink.Link) error {
		if err := link.CheckReadable(now); err != nil {
			return err
		}
		link.MarkUsed(now)
		consumed = link
		return nil
	})
	if err != nil {
		return nil, err
	}
	return consumed, nil
}

// update applies fn under WATCH so concurrent writers never both succeed.
func (s *RedisLinkStore) update(ctx context.Context, id string, fn func(link *paymentlink.Link) error) error {
	key := s.key(id)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return paymentlink.ErrNotFound
		}
		if err != nil {
			return err
		}
		link, err := decodeLink(data)
		if err != nil {
			return err
		}
		if err := fn(link); err != nil {
			return err
		}
		updated, err := json.Marshal(link)
		if err != nil {
			return fmt.Errorf("failed to marshal payment link: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, updated, redis.SetArgs{KeepTTL: true})
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("payment link %s: too much contention", id)
}

func (s *RedisLinkStore) Delete(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete payment link: %w", err)
	}
	return n > 0, nil
}

func (s *RedisLinkStore) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	removed := 0
	err := s.scan(ctx, func(key string, link *paymentlink.Link) error {
		if !link.IsExpired(now) {
			return nil
		}
		n, err := s.client.Del(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("failed to delete expired payment link: %w", err)
		}
		removed += int(n)
		return nil
	})
	return removed, err
}

func (s *RedisLinkStore) Stats(ctx context.Context, now time.Time) (paymentlink.Stats, error) {
	var stats paymentlink.Stats
	err := s.scan(ctx, func(_ string, link *paymentlink.Link) error {
		stats.Tally(link, now)
		return nil
	})
	return stats, err
}

func (s *RedisLinkStore) scan(ctx context.Context, fn func(key string, link *paymentlink.Link) error) error {
	iter := s.client.Scan(ctx, 0, paymentLinkPrefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := s.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read payment link: %w", err)
		}
		link, err := decodeLink(data)
		if err != nil {
			return err
		}
		if err := fn(key, link); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan payment links: %w", err)
	}
	return nil
}

func decodeLink(data []byte) (*paymentlink.Link, error) {
	var link paymentlink.Link
	if err := json.Unmarshal(data, &link); err != nil {
		return nil, fmt.Errorf("failed to decode payment link: %w", err)
	}
	return &link, nil
}
