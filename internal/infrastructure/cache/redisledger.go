package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agendapay/agendapay/internal/domain/ledger"
)

// ledgerKeyPrefix is the prefix for confirmation ledger keys.
// Ledger keys never expire: they are the proof a payment was settled.
const ledgerKeyPrefix = "ledger:entry:"

// RedisLedger is a ledger.Repository shared by every instance through Redis.
type RedisLedger struct {
	client *redis.Client
}

var _ ledger.Repository = (*RedisLedger)(nil)

func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

func (l *RedisLedger) key(token string) string {
	return ledgerKeyPrefix + token
}

func (l *RedisLedger) Claim(ctx context.Context, entry *ledger.Entry) (*ledger.Entry, bool, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal ledger entry: %w", err)
	}

	claimed, err := l.client.SetNX(ctx, l.key(entry.Token), data, 0).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to claim ledger entry: %w", err)
	}
	if claimed {
		return nil, true, nil
	}

	existing, err := l.Get(ctx, entry.Token)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (l *RedisLedger) Complete(ctx context.Context, token string, result ledger.Result, at time.Time) error {
	key := l.key(token)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ledger.ErrEntryNotFound
		}
		if err != nil {
			return err
		}
		entry, err := decodeEntry(data)
		if err != nil {
			return err
		}
		if err := entry.Complete(result, at); err != nil {
			return err
		}
		updated, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal ledger entry: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetXX(ctx, key, updated, redis.KeepTTL)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := l.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("ledger entry %s: too much contention", token)
}

func (l *RedisLedger) Get(ctx context.Context, token string) (*ledger.Entry, error) {
	data, err := l.client.Get(ctx, l.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ledger.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return decodeEntry(data)
}

func decodeEntry(data []byte) (*ledger.Entry, error) {
	var entry ledger.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode ledger entry: %w", err)
	}
	return &entry, nil
}
