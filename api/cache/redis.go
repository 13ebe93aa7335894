/* redis.go
 * Contains the Redis backed cache. Entries are stored as JSON with the configured TTL
 * Authors: Zachary Bower
 */

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "tournament-importer:import:"

// RedisCache handles caching of finished imports
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache creates a new Redis cache connection
// Preconditions: Receives a redis:// URL and the TTL of entries (zero keeps them forever)
// Postconditions: Returns the cache once the server answered a ping, or an error
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedisCacheFromClient(client, ttl), nil
}

// NewRedisCacheFromClient wraps an existing client
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Get retrieves the entry of digest. A missing key is a miss, not an error
func (rc *RedisCache) Get(ctx context.Context, digest string) (Entry, bool, error) {
	data, err := rc.client.Get(ctx, keyPrefix+digest).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return entry, true, nil
}

// Set stores an entry with the cache's TTL
func (rc *RedisCache) Set(ctx context.Context, digest string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := rc.client.Set(ctx, keyPrefix+digest, data, rc.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Delete removes an entry
func (rc *RedisCache) Delete(ctx context.Context, digest string) error {
	return rc.client.Del(ctx, keyPrefix+digest).Err()
}
