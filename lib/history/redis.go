package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis"
)

type RedisConfig struct {
	Host      string
	Port      int
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

func NewRedisClient(conf RedisConfig) *RedisClient {
	prefix := conf.KeyPrefix
	if prefix == "" {
		prefix = "replied:"
	}
	return &RedisClient{
		Client: redis.NewClient(&redis.Options{
			Addr: fmt.Sprintf("%s:%d", conf.Host, conf.Port)}),
		prefix: prefix,
		ttl:    conf.TTL,
	}
}

type RedisClient struct {
	*redis.Client
	prefix string
	ttl    time.Duration
}

func (r *RedisClient) Ready() bool {
	return r.Ping().Err() == nil
}

func (r *RedisClient) Seen(ctx context.Context, threadID string) (bool, error) {
	n, err := r.WithContext(ctx).Exists(r.prefix + threadID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisClient) Record(ctx context.Context, entry Entry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return r.WithContext(ctx).Set(r.prefix+entry.ThreadID, b, r.ttl).Err()
}
