package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	DriverNone     = "none"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	// defaultKeyPrefix Redis键前缀
	defaultKeyPrefix = "uidgen:checkpoint:"

	// defaultInterval 默认保存间隔
	defaultInterval = time.Second
)

// ErrUnknownDriver 不支持的存储驱动
var ErrUnknownDriver = errors.New("unknown checkpoint driver")

// Store 时钟高水位存储
// 说明：
//   - 保存每个生成器最后一次使用的毫秒时间戳
//   - 进程重启后据此判断时钟是否回拨到上次运行之前
type Store interface {
	// Load 读取高水位，不存在时返回0
	Load(ctx context.Context, name string) (int64, error)

	// Save 写入高水位，只会增大不会减小
	Save(ctx context.Context, name string, ms int64) error

	// Close 释放底层连接
	Close() error
}

// Config 存储配置
type Config struct {
	// Driver 存储驱动：none、redis、sqlite、mysql、postgres
	Driver string `mapstructure:"driver" json:"driver" validate:"omitempty,oneof=none redis sqlite mysql postgres"`

	// DSN 数据库连接串（sqlite为文件路径）
	DSN string `mapstructure:"dsn" json:"dsn"`

	// Addr Redis地址
	Addr string `mapstructure:"addr" json:"addr" validate:"required_if=Driver redis"`

	// Password Redis密码
	Password string `mapstructure:"password" json:"-"`

	// DB Redis库编号
	DB int `mapstructure:"db" json:"db" validate:"gte=0"`

	// KeyPrefix Redis键前缀
	KeyPrefix string `mapstructure:"key_prefix" json:"key_prefix"`

	// Interval 定期保存间隔
	Interval time.Duration `mapstructure:"interval" json:"interval"`
}

// Open 按驱动打开存储，none或空驱动返回nil
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Driver {
	case "", DriverNone:
		return nil, nil
	case DriverRedis:
		return OpenRedis(ctx, cfg, logger)
	case DriverSQLite, DriverMySQL, DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("checkpoint driver %s requires a dsn", cfg.Driver)
		}
		return OpenSQL(ctx, cfg.Driver, cfg.DSN, logger)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}
}
