package enable

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisSource reads flags stored as "1"/"0" under <prefix><type>.
type RedisSource struct {
	client redis.Cmdable
	prefix string
}

const DefaultRedisPrefix = "qtype:enabled:"

func NewRedisSource(client redis.Cmdable, prefix string) *RedisSource {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisSource{client: client, prefix: prefix}
}

func (s *RedisSource) key(k string) string { return s.prefix + k }

func (s *RedisSource) Lookup(ctx context.Context, key string) (bool, bool, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	on, ok := parseFlag(raw)
	if !ok {
		return false, false, fmt.Errorf("redis flag %s: bad value %q", key, raw)
	}
	return on, true, nil
}

func (s *RedisSource) Set(ctx context.Context, key string, enabled bool) error {
	v := "0"
	if enabled {
		v = "1"
	}
	return s.client.Set(ctx, s.key(key), v, 0).Err()
}
