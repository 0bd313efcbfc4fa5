package routecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores snapshots in Redis, optionally under a key prefix and with
// an expiry.
type Redis struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// Option configures a Redis store.
type Option func(*Redis)

// WithPrefix sets a key prefix for all operations. Keys become
// "prefix:key".
func WithPrefix(prefix string) Option {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// WithTTL sets the expiry of stored snapshots. Zero means no expiry.
func WithTTL(ttl time.Duration) Option {
	return func(r *Redis) {
		r.ttl = ttl
	}
}

// NewRedis returns a store backed by client.
func NewRedis(client redis.Cmdable, opts ...Option) *Redis {
	r := &Redis{client: client}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

// Get returns the blob stored under key, or ErrMiss.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	blob, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("routecache: get %q: %w", key, err)
	}
	return blob, nil
}

// Put stores blob under key.
func (r *Redis) Put(ctx context.Context, key string, blob []byte) error {
	if err := r.client.Set(ctx, r.key(key), blob, r.ttl).Err(); err != nil {
		return fmt.Errorf("routecache: put %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("routecache: delete %q: %w", key, err)
	}
	return nil
}
