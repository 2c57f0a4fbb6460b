package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// Redis stores entries with a TTL; counters from Incr have none.
type Redis struct {
	redisdb *redis.Client
	ttl     time.Duration
	prefix  string
}

var _ Store = (*Redis)(nil)

func NewRedis(cfg RedisConfig) *Redis {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return newRedis(redisdb, cfg.TTL, cfg.Prefix)
}

func newRedis(client *redis.Client, ttl time.Duration, prefix string) *Redis {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if prefix == "" {
		prefix = "learnhub:"
	}
	return &Redis{redisdb: client, ttl: ttl, prefix: prefix}
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.redisdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *Redis) Set(ctx context.Context, key string, val []byte) error {
	return c.redisdb.Set(ctx, c.prefix+key, val, c.ttl).Err()
}

func (c *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	return c.redisdb.Del(ctx, full...).Err()
}

// DeletePrefix walks matching keys with SCAN and unlinks them in batches.
func (c *Redis) DeletePrefix(ctx context.Context, prefix string) error {
	const batchSize = 200

	iter := c.redisdb.Scan(ctx, 0, c.prefix+prefix+"*", batchSize).Iterator()
	batch := make([]string, 0, batchSize)

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == batchSize {
			if err := c.redisdb.Unlink(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(batch) > 0 {
		return c.redisdb.Unlink(ctx, batch...).Err()
	}
	return nil
}

func (c *Redis) Incr(ctx context.Context, key string) (int64, error) {
	return c.redisdb.Incr(ctx, c.prefix+key).Result()
}

// this ping function checks redis connectivity
func (c *Redis) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	return c.redisdb.Close()
}
