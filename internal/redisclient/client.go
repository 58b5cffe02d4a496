package redisclient

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"pickpack-service/internal/models"
)

//go:embed scripts/release_lock.lua
var releaseLockScript string

type Client struct {
	rdb           *redis.Client
	releaseScript *redis.Script
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:           rdb,
		releaseScript: redis.NewScript(releaseLockScript),
	}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// AcquireSessionLock claims the per-picker session slot. Exactly one active
// session per picker: a second start while the lock is held is rejected.
// The token must be presented again to release the lock.
func (c *Client) AcquireSessionLock(ctx context.Context, picker, token string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, sessionLockKey(picker), token, ttl).Result()
}

// ReleaseSessionLock releases the picker's session slot if the token still
// owns it, so an expired-and-reacquired lock is never deleted by the old
// session.
func (c *Client) ReleaseSessionLock(ctx context.Context, picker, token string) error {
	_, err := c.releaseScript.Run(ctx, c.rdb, []string{sessionLockKey(picker)}, token).Result()
	if err != nil {
		return fmt.Errorf("release lock script failed: %w", err)
	}
	return nil
}

// RefreshSessionLock extends the lock TTL while a session is still active
func (c *Client) RefreshSessionLock(ctx context.Context, picker string, ttl time.Duration) error {
	return c.rdb.Expire(ctx, sessionLockKey(picker), ttl).Err()
}

// CacheProduct stores product display metadata with a TTL
func (c *Client) CacheProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}
	return c.rdb.Set(ctx, productKey(product.ID), data, ttl).Err()
}

// GetCachedProduct retrieves cached product metadata; a cache miss returns
// nil without error.
func (c *Client) GetCachedProduct(ctx context.Context, productID int64) (*models.Product, error) {
	data, err := c.rdb.Get(ctx, productKey(productID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached product: %w", err)
	}
	return &product, nil
}

func sessionLockKey(picker string) string {
	return fmt.Sprintf("picksession:lock:%s", picker)
}

func productKey(productID int64) string {
	return fmt.Sprintf("product:%d", productID)
}
