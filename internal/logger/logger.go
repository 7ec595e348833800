package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config 日志配置
type Config struct {
	// Level 日志级别：debug、info、warn、error
	Level string `mapstructure:"level" json:"level" validate:"omitempty,oneof=debug info warn error"`

	// Format 输出格式：json 或 console
	Format string `mapstructure:"format" json:"format" validate:"omitempty,oneof=json console"`

	// File 日志文件路径，为空时输出到标准错误
	File string `mapstructure:"file" json:"file"`

	// MaxSizeMB 单个日志文件最大大小（MB），超过后轮转
	MaxSizeMB int `mapstructure:"max_size_mb" json:"max_size_mb" validate:"gte=0"`

	// MaxBackups 保留的旧日志文件数量
	MaxBackups int `mapstructure:"max_backups" json:"max_backups" validate:"gte=0"`

	// MaxAgeDays 旧日志文件保留天数
	MaxAgeDays int `mapstructure:"max_age_days" json:"max_age_days" validate:"gte=0"`

	// Compress 是否压缩轮转后的日志
	Compress bool `mapstructure:"compress" json:"compress"`
}

// New 根据配置创建zap日志器
func New(cfg Config) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	case "console":
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	core := zapcore.NewCore(encoder, writeSyncer(cfg), level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// ParseLevel 解析日志级别，空字符串视为info
func ParseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return level, fmt.Errorf("unknown log level %q: %w", s, err)
	}
	return level, nil
}

func writeSyncer(cfg Config) zapcore.WriteSyncer {
	if cfg.File == "" {
		return zapcore.Lock(os.Stderr)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	})
}
