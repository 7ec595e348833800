package checkpoint

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// saveScript 仅当新值更大时才写入，返回写入后的值
var saveScript = redis.NewScript(`
local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
local ms = tonumber(ARGV[1])
if ms > cur then
	redis.call('SET', KEYS[1], ARGV[1])
	return ms
end
return cur
`)

// RedisStore 基于Redis的高水位存储
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	logger *zap.Logger
}

// NewRedisStore 使用已有客户端创建存储
func NewRedisStore(client redis.UniversalClient, prefix string, logger *zap.Logger) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, prefix: prefix, logger: logger}
}

// OpenRedis 连接Redis并检查可用性
func OpenRedis(ctx context.Context, cfg Config, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("checkpoint: redis ping %s: %w", cfg.Addr, err)
	}
	return NewRedisStore(client, cfg.KeyPrefix, logger), nil
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

// Load 读取高水位
func (s *RedisStore) Load(ctx context.Context, name string) (int64, error) {
	ms, err := s.client.Get(ctx, s.key(name)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("checkpoint: redis load %s: %w", name, err)
	}
	return ms, nil
}

// Save 写入高水位（Lua脚本保证单调）
func (s *RedisStore) Save(ctx context.Context, name string, ms int64) error {
	stored, err := saveScript.Run(ctx, s.client, []string{s.key(name)}, ms).Int64()
	if err != nil {
		return fmt.Errorf("checkpoint: redis save %s: %w", name, err)
	}
	if stored > ms {
		s.logger.Debug("checkpoint already ahead",
			zap.String("generator", name),
			zap.Int64("stored", stored),
			zap.Int64("offered", ms),
		)
	}
	return nil
}

// Close 关闭客户端
func (s *RedisStore) Close() error {
	return s.client.Close()
}
