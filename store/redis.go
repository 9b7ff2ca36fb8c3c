package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is returned by RedisPersister when Redis cannot be reached.
var ErrRedisUnavailable = errors.New("redis unavailable")

// DefaultRedisPrefix namespaces jar snapshots in Redis.
const DefaultRedisPrefix = "authclient:jar"

// RedisPersister stores jar snapshots as one JSON string per profile.
//
// The key expires with the longest-lived cookie. A snapshot holding any session
// cookie (no expiry) is stored without a TTL.
type RedisPersister struct {
	redis redis.UniversalClient
	key   string
}

// NewRedisPersister returns a persister writing to "<prefix>:<profile>".
func NewRedisPersister(client redis.UniversalClient, prefix, profile string) *RedisPersister {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if profile == "" {
		profile = "default"
	}
	return &RedisPersister{
		redis: client,
		key:   prefix + ":" + profile,
	}
}

// Key returns the Redis key holding the snapshot.
func (p *RedisPersister) Key() string {
	return p.key
}

func (p *RedisPersister) Load(ctx context.Context) ([]PersistedCookie, error) {
	data, err := p.redis.Get(ctx, p.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return decodeSnapshot(data)
}

func (p *RedisPersister) Save(ctx context.Context, cookies []PersistedCookie) error {
	now := time.Now()
	live := liveCookies(cookies, now)
	if len(live) == 0 {
		if err := p.redis.Del(ctx, p.key).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		return nil
	}

	data, err := encodeSnapshot(live)
	if err != nil {
		return err
	}

	if err := p.redis.Set(ctx, p.key, data, snapshotTTL(live, now)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func snapshotTTL(cookies []PersistedCookie, now time.Time) time.Duration {
	var latest time.Time
	for _, c := range cookies {
		if c.Expires.IsZero() {
			return 0
		}
		if c.Expires.After(latest) {
			latest = c.Expires
		}
	}
	ttl := latest.Sub(now)
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}
