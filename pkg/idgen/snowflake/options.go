package snowflake

import (
	"time"

	"go.uber.org/zap"
)

// Clock 时钟函数，返回Unix毫秒时间戳
type Clock func() int64

// SystemClock 系统墙上时钟
func SystemClock() int64 {
	return time.Now().UnixMilli()
}

// Option 生成器可选项
type Option func(*Generator)

// WithClock 替换时钟来源（测试或自定义时间源）
func WithClock(clock Clock) Option {
	return func(g *Generator) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// WithLogger 注入日志器，默认不输出
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMetrics 开启性能监控（等同于 Config.EnableMetrics）
func WithMetrics() Option {
	return func(g *Generator) {
		if g.metrics == nil {
			g.metrics = NewMetrics()
		}
	}
}

// WithLastTimestamp 用持久化的高水位时间戳初始化生成器
// 说明：
//   - 进程重启后，早于该时间戳的时钟会被判定为回拨
//   - 同一毫秒内的首次调用会直接等待下一毫秒，避免与重启前的序列号重叠
func WithLastTimestamp(ms int64) Option {
	return func(g *Generator) {
		if ms > g.lastTimestamp {
			g.lastTimestamp = ms
			g.sequence = MaxSequence
		}
	}
}
