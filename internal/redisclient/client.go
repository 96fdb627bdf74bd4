package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// pendingClaim marks an idempotency key whose order is still being written.
const pendingClaim = "pending"

// ErrClaimPending is returned when a request repeats a key whose first order has
// not been committed yet.
var ErrClaimPending = errors.New("idempotency key is still being processed")

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client and checks the connection
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

	return &Client{rdb: rdb}, nil
}

// New wraps an existing redis client.
func New(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Ping checks the connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// IdempotencyScope is a client-supplied key together with who used it and where.
// The same key from another caller, property or order kind is a different claim.
type IdempotencyScope struct {
	UserID     string
	PropertyID string
	Kind       string
	Key        string
}

func (s IdempotencyScope) redisKey() string {
	return fmt.Sprintf("idempotency:%s:%s:%s:%s", s.UserID, s.PropertyID, s.Kind, s.Key)
}

// ClaimIdempotencyKey reserves the scoped key. When the key was already
// claimed it returns claimed=false and the order id stored by the first request,
// or ErrClaimPending when that request has not finished.
func (c *Client) ClaimIdempotencyKey(ctx context.Context, scope IdempotencyScope, ttl time.Duration) (bool, string, error) {
	ok, err := c.rdb.SetNX(ctx, scope.redisKey(), pendingClaim, ttl).Result()
	if err != nil {
		return false, "", fmt.Errorf("claim idempotency key: %w", err)
	}
	if ok {
		return true, "", nil
	}

	existing, err := c.rdb.Get(ctx, scope.redisKey()).Result()
	if errors.Is(err, redis.Nil) {
		// expired between the two calls; try once more
		ok, err = c.rdb.SetNX(ctx, scope.redisKey(), pendingClaim, ttl).Result()
		if err != nil {
			return false, "", fmt.Errorf("claim idempotency key: %w", err)
		}
		if ok {
			return true, "", nil
		}
		return false, "", ErrClaimPending
	}
	if err != nil {
		return false, "", fmt.Errorf("read idempotency key: %w", err)
	}
	if existing == pendingClaim {
		return false, "", ErrClaimPending
	}
	return false, existing, nil
}

// SetIdempotencyKey stores the order id produced under the scoped key
func (c *Client) SetIdempotencyKey(ctx context.Context, scope IdempotencyScope, orderID string, ttl time.Duration) error {
	return c.rdb.Set(ctx, scope.redisKey(), orderID, ttl).Err()
}

// ReleaseIdempotencyKey drops a claim whose order could not be written
func (c *Client) ReleaseIdempotencyKey(ctx context.Context, scope IdempotencyScope) error {
	return c.rdb.Del(ctx, scope.redisKey()).Err()
}

// MarkLowStock records that an inventory item is below its threshold. It returns
// true only for the first mark since the item was last restocked.
func (c *Client) MarkLowStock(ctx context.Context, itemID string) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lowstock:%s", itemID), "1", 0).Result()
}

// ClearLowStock forgets the low-stock mark of a restocked or deleted item
func (c *Client) ClearLowStock(ctx context.Context, itemID string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lowstock:%s", itemID)).Err()
}

// CacheJSON stores v under key for ttl
func (c *Client) CacheJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	return c.rdb.Set(ctx, fmt.Sprintf("cache:%s", key), data, ttl).Err()
}

// CachedJSON loads key into v. It reports false on a miss.
func (c *Client) CachedJSON(ctx context.Context, key string, v any) (bool, error) {
	data, err := c.rdb.Get(ctx, fmt.Sprintf("cache:%s", key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("unmarshal cache entry: %w", err)
	}
	return true, nil
}

// Invalidate removes a cached entry
func (c *Client) Invalidate(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("cache:%s", key)).Err()
}
