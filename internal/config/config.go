package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"katydid-common-uid/internal/checkpoint"
	"katydid-common-uid/internal/logger"
)

// envPrefix 环境变量前缀，例如 UIDGEN_SERVER_ADDR
const envPrefix = "UIDGEN"

// Config 服务配置
type Config struct {
	Server     ServerConfig      `mapstructure:"server" json:"server"`
	Log        logger.Config     `mapstructure:"log" json:"log"`
	Checkpoint checkpoint.Config `mapstructure:"checkpoint" json:"checkpoint"`

	// Generators 生成器列表，名称唯一
	Generators []GeneratorConfig `mapstructure:"generators" json:"generators" validate:"required,min=1,unique=Name,dive"`
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	// Addr 监听地址
	Addr string `mapstructure:"addr" json:"addr" validate:"required"`

	// JWTSecret HS256签名密钥，为空时不校验令牌
	JWTSecret string `mapstructure:"jwt_secret" json:"-" validate:"omitempty,min=16"`

	// ReadTimeout 读取请求超时
	ReadTimeout time.Duration `mapstructure:"read_timeout" json:"read_timeout"`

	// ShutdownTimeout 优雅关闭等待时间
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout"`

	// MaxBatch 单次请求最多生成的ID数量
	MaxBatch int `mapstructure:"max_batch" json:"max_batch" validate:"gte=1,lte=100000"`
}

// GeneratorConfig 单个生成器配置
type GeneratorConfig struct {
	Name          string `mapstructure:"name" json:"name" validate:"required,max=128"`
	Type          string `mapstructure:"type" json:"type" validate:"omitempty,oneof=snowflake"`
	WorkerID      int64  `mapstructure:"worker_id" json:"worker_id" validate:"gte=0,lte=31"`
	DatacenterID  int64  `mapstructure:"datacenter_id" json:"datacenter_id" validate:"gte=0,lte=31"`
	EnableMetrics bool   `mapstructure:"enable_metrics" json:"enable_metrics"`
}

// ErrDuplicateIdentity 两个生成器使用了相同的(worker, datacenter)
var ErrDuplicateIdentity = errors.New("duplicate generator identity")

var validate = validator.New()

// Load 读取配置
// 说明：
//   - path为空时只使用默认值与环境变量
//   - 环境变量优先于文件，键中的点替换为下划线
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验字段取值与生成器身份唯一性
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	seen := make(map[[2]int64]string, len(c.Generators))
	for _, g := range c.Generators {
		identity := [2]int64{g.WorkerID, g.DatacenterID}
		if other, ok := seen[identity]; ok {
			return fmt.Errorf("config: %w: %s and %s both use worker %d datacenter %d",
				ErrDuplicateIdentity, other, g.Name, g.WorkerID, g.DatacenterID)
		}
		seen[identity] = g.Name
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_batch", 1000)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("log.compress", false)

	v.SetDefault("checkpoint.driver", checkpoint.DriverNone)
	v.SetDefault("checkpoint.dsn", "")
	v.SetDefault("checkpoint.addr", "")
	v.SetDefault("checkpoint.password", "")
	v.SetDefault("checkpoint.db", 0)
	v.SetDefault("checkpoint.key_prefix", "uidgen:checkpoint:")
	v.SetDefault("checkpoint.interval", time.Second)

	v.SetDefault("generators", []map[string]any{
		{"name": "default", "type": "snowflake", "worker_id": 0, "datacenter_id": 0},
	})
}
