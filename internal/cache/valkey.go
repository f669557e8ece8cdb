package cache

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"eventgate/internal/config"
)

const (
	usersHashKey    = "users:auth"
	eventsKeyPrefix = "events:list:"
	eventsListTTL   = 30 * time.Second
)

// ValkeyClient caches admin credentials and rendered event-list pages. The
// cache is optional; every caller must work with a nil client.
type ValkeyClient struct {
	client *redis.Client
}

func NewValkeyClient(cfg config.ValkeyConfig) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{client: rdb}, nil
}

// GetUserIDByAuth looks up a pre-warmed credentials entry. The hash field is
// base64(email:sha256hex) so raw credentials never appear as cache keys.
func (v *ValkeyClient) GetUserIDByAuth(ctx context.Context, email, passwordHash string) (int64, error) {
	authString := fmt.Sprintf("%s:%s", email, passwordHash)
	cacheKey := base64.StdEncoding.EncodeToString([]byte(authString))

	userIDStr, err := v.client.HGet(ctx, usersHashKey, cacheKey).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, fmt.Errorf("user not found in cache")
		}
		return 0, fmt.Errorf("cache lookup error: %w", err)
	}

	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID in cache: %w", err)
	}

	return userID, nil
}

// SetUserAuth warms the credentials hash for an admin user.
func (v *ValkeyClient) SetUserAuth(ctx context.Context, email, passwordHash string, userID int64) error {
	authString := fmt.Sprintf("%s:%s", email, passwordHash)
	cacheKey := base64.StdEncoding.EncodeToString([]byte(authString))
	return v.client.HSet(ctx, usersHashKey, cacheKey, strconv.FormatInt(userID, 10)).Err()
}

// GetEventsListRaw returns a cached pre-serialized event-list page, or nil on
// a miss.
func (v *ValkeyClient) GetEventsListRaw(ctx context.Context, key string) ([]byte, error) {
	data, err := v.client.Get(ctx, eventsKeyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}
	return data, nil
}

// SetEventsListRaw stores a serialized event-list page. The TTL is short so
// admin edits surface quickly without explicit invalidation.
func (v *ValkeyClient) SetEventsListRaw(ctx context.Context, key string, data []byte) error {
	return v.client.Set(ctx, eventsKeyPrefix+key, data, eventsListTTL).Err()
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
