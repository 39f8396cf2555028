package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/embeddables/domain"
	"github.com/fastygo/embeddables/repository"
)

const directoryKey = "embeddables:directory"

type directoryCache struct {
	client redislib.Cmdable
	key    string
	ttl    time.Duration
}

// NewDirectoryCache creates a Redis-backed directory cache. The key is namespaced by prefix
// so several demo deployments can share one Redis.
func NewDirectoryCache(client redislib.Cmdable, prefix string, ttl time.Duration) repository.DirectoryCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	key := directoryKey
	if prefix != "" {
		key = prefix + ":" + directoryKey
	}
	return &directoryCache{client: client, key: key, ttl: ttl}
}

func (c *directoryCache) Get(ctx context.Context) (*domain.Directory, error) {
	result, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var dir domain.Directory
	if err := json.Unmarshal(result, &dir); err != nil {
		return nil, err
	}
	return &dir, nil
}

func (c *directoryCache) Set(ctx context.Context, dir *domain.Directory) error {
	if dir == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(dir)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, payload, c.ttl).Err()
}
