// Package cache wraps Redis for the two places the dashboard wants one:
// idempotent payment creation and short-lived dashboard stats. Every method
// tolerates a nil receiver, so the server runs without Redis configured.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/MepCity/payment-dashboard/internal/models"
)

const (
	idempotencyTTL = 24 * time.Hour
	statsTTL       = 30 * time.Second
)

type Cache struct {
	client *redis.Client
}

// New creates a Redis-backed cache. An empty addr returns nil, which every
// method treats as a cache miss.
func New(addr string) *Cache {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	return &Cache{client: client}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// GetIdempotentPayment returns the payment previously created under the
// given idempotency key, or nil on a miss.
func (c *Cache) GetIdempotentPayment(ctx context.Context, key string) (*models.Payment, error) {
	if c == nil || key == "" {
		return nil, nil
	}
	data, err := c.client.Get(ctx, idempotencyKey(key)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var payment models.Payment
	if err := json.Unmarshal([]byte(data), &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *Cache) SetIdempotentPayment(ctx context.Context, key string, payment *models.Payment) error {
	if c == nil || key == "" {
		return nil
	}
	data, err := json.Marshal(payment)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, idempotencyKey(key), data, idempotencyTTL).Err()
}

// RevokeToken blacklists a session token until it would have expired anyway.
func (c *Cache) RevokeToken(ctx context.Context, token string, ttl time.Duration) error {
	if c == nil || ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, revokedKey(token), "1", ttl).Err()
}

func (c *Cache) IsTokenRevoked(ctx context.Context, token string) bool {
	if c == nil {
		return false
	}
	n, err := c.client.Exists(ctx, revokedKey(token)).Result()
	return err == nil && n > 0
}

func (c *Cache) GetStats(ctx context.Context, merchantID string) (*models.PaymentStats, error) {
	if c == nil {
		return nil, nil
	}
	data, err := c.client.Get(ctx, statsKey(merchantID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var stats models.PaymentStats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Cache) SetStats(ctx context.Context, merchantID string, stats *models.PaymentStats) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statsKey(merchantID), data, statsTTL).Err()
}

// InvalidateStats drops the cached stats after any write to the payment set.
func (c *Cache) InvalidateStats(ctx context.Context, merchantID string) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, statsKey(merchantID)).Err()
}

func idempotencyKey(key string) string  { return fmt.Sprintf("idempotency:%s", key) }
func revokedKey(token string) string    { return fmt.Sprintf("revoked:%s", token) }
func statsKey(merchantID string) string { return fmt.Sprintf("stats:%s", merchantID) }
