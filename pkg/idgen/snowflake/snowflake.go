package snowflake

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"katydid-common-uid/pkg/idgen/core"
)

var _ core.Generator = (*Generator)(nil)

// Generator Snowflake算法的ID生成器实现
//
// ID结构（高位到低位）：符号位(1) | 时间戳(41) | 数据中心ID(5) | 工作机器ID(5) | 序列号(12)
type Generator struct {
	// ========== 核心状态 ==========
	lastTimestamp int64 // 上次生成ID的时间戳（毫秒），-1表示尚未生成过
	datacenterID  int64 // 数据中心ID（0-31）
	workerID      int64 // 工作机器ID（0-31）
	sequence      int64 // 当前毫秒内的序列号（0-4095）

	// 预计算的ID部分（datacenterID和workerID），避免重复计算
	precomputedPart int64

	// ========== 依赖 ==========
	clock     Clock
	logger    *zap.Logger
	metrics   *Metrics // 性能监控指标（可选，nil时不收集）
	validator *Validator
	parser    *Parser

	// ========== 并发控制 ==========
	mu sync.Mutex // 保护以上全部可变状态
}

// New 创建一个新的Snowflake ID生成器
func New(workerID, datacenterID int64, opts ...Option) (*Generator, error) {
	return NewWithConfig(&Config{
		WorkerID:     workerID,
		DatacenterID: datacenterID,
	}, opts...)
}

// NewWithConfig 使用配置创建Snowflake ID生成器
func NewWithConfig(config *Config, opts ...Option) (*Generator, error) {
	if config == nil {
		return nil, core.ErrNilConfig
	}

	// 步骤1：验证配置
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// 步骤2：创建生成器实例
	g := &Generator{
		lastTimestamp: -1,
		clock:         SystemClock,
		logger:        zap.NewNop(),
		parser:        NewParser(),
	}
	g.applyIdentity(config.WorkerID, config.DatacenterID)
	if config.EnableMetrics {
		g.metrics = NewMetrics()
	}

	// 步骤3：应用可选项（时钟、日志、高水位等）
	for _, opt := range opts {
		opt(g)
	}
	g.validator = NewValidatorWithClock(g.clock)

	g.logger.Info("Snowflake生成器创建成功",
		zap.Int64("worker_id", g.workerID),
		zap.Int64("datacenter_id", g.datacenterID),
		zap.Int64("last_timestamp", g.lastTimestamp),
		zap.Bool("metrics_enabled", g.metrics != nil))

	return g, nil
}

// Configure 同时设置工作机器ID和数据中心ID
// 说明：先全部校验再修改，任一越界则保持原配置
func (g *Generator) Configure(workerID, datacenterID int64) error {
	if err := checkWorkerID(workerID); err != nil {
		return err
	}
	if err := checkDatacenterID(datacenterID); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.applyIdentity(workerID, datacenterID)
	return nil
}

// SetWorkerID 设置工作机器ID
// 注意：应在开始生成ID之前调用，运行中修改身份可能导致与其他实例冲突
func (g *Generator) SetWorkerID(workerID int64) error {
	if err := checkWorkerID(workerID); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.applyIdentity(workerID, g.datacenterID)
	return nil
}

// SetDatacenterID 设置数据中心ID
// 注意：同 SetWorkerID
func (g *Generator) SetDatacenterID(datacenterID int64) error {
	if err := checkDatacenterID(datacenterID); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.applyIdentity(g.workerID, datacenterID)
	return nil
}

// NextID 生成下一个唯一ID（线程安全）
func (g *Generator) NextID() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.nextIDUnsafe()
}

// NextIDBatch 批量生成ID（线程安全）
// 说明：整批只加一次锁；中途遇到时钟回拨时返回已生成的ID和错误
func (g *Generator) NextIDBatch(n int) ([]int64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d",
			core.ErrInvalidBatchSize, n)
	}
	if n > maxBatchSize {
		return nil, fmt.Errorf("%w: batch size too large (max %d), got %d",
			core.ErrInvalidBatchSize, maxBatchSize, n)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	ids := make([]int64, 0, n)
	for len(ids) < n {
		id, err := g.nextIDUnsafe()
		if err != nil {
			return ids, fmt.Errorf("%w (generated %d/%d IDs)", err, len(ids), n)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// GetWorkerID 获取工作机器ID
func (g *Generator) GetWorkerID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.workerID
}

// GetDatacenterID 获取数据中心ID
func (g *Generator) GetDatacenterID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.datacenterID
}

// LastTimestamp 上次生成ID使用的时间戳（毫秒），从未生成时为-1
func (g *Generator) LastTimestamp() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastTimestamp
}

// GetMetrics 获取性能监控指标
func (g *Generator) GetMetrics() map[string]uint64 {
	return g.metrics.ToMap()
}

// ResetMetrics 重置性能监控指标
func (g *Generator) ResetMetrics() {
	g.metrics.Reset()
}

// GetIDCount 获取已生成的ID总数
func (g *Generator) GetIDCount() uint64 {
	if g.metrics == nil {
		return 0
	}
	return g.metrics.IDCount.Load()
}

// ParseID 解析ID（不访问生成器状态，无需加锁）
func (g *Generator) ParseID(id int64) *core.IDInfo {
	return g.parser.Parse(id)
}

// ValidateID 验证ID
func (g *Generator) ValidateID(id int64) error {
	return g.validator.Validate(id)
}

// applyIdentity 调用者必须已持有锁（或处于构造阶段）
func (g *Generator) applyIdentity(workerID, datacenterID int64) {
	g.workerID = workerID
	g.datacenterID = datacenterID
	g.precomputedPart = (datacenterID << DatacenterIDShift) | (workerID << WorkerIDShift)
}

// nextIDUnsafe 内部使用的不加锁版本的ID生成方法
// 说明：调用者必须已持有锁；任何错误路径都不修改状态
func (g *Generator) nextIDUnsafe() (int64, error) {
	// 步骤1：获取当前时间戳（毫秒）
	timestamp := g.clock()

	// 步骤2：时钟回拨检测，直接拒绝，不做自动修正
	if timestamp < g.lastTimestamp {
		if g.metrics != nil {
			g.metrics.ClockBackward.Add(1)
		}
		err := &core.ClockRewindError{LastTimestamp: g.lastTimestamp, Timestamp: timestamp}
		g.logger.Warn("时钟回拨，ID生成失败",
			zap.Int64("last_timestamp", g.lastTimestamp),
			zap.Int64("current_timestamp", timestamp),
			zap.Int64("gap_ms", err.Gap()))
		return 0, err
	}

	// 步骤3：序列号管理
	var sequence int64
	if timestamp == g.lastTimestamp {
		sequence = (g.sequence + 1) & MaxSequence
		if sequence == 0 {
			// 本毫秒序列号耗尽（4096个），等待下一毫秒
			timestamp = g.waitNextMillis(g.lastTimestamp)
		}
	}

	// 步骤4：时间戳必须能用41位表示
	timeDiff := timestamp - Epoch
	if timeDiff < 0 || timeDiff > maxTimestampDiff {
		return 0, fmt.Errorf("%w: timestamp %d, epoch %d",
			core.ErrTimestampOverflow, timestamp, Epoch)
	}

	// 步骤5：提交状态
	g.sequence = sequence
	g.lastTimestamp = timestamp

	if g.metrics != nil {
		g.metrics.IDCount.Add(1)
	}

	// 步骤6：组装ID
	return (timeDiff << TimestampShift) | g.precomputedPart | sequence, nil
}

// waitNextMillis 自旋直到时钟越过lastTimestamp
// 说明：CPU忙等而非挂起，每轮让出调度避免独占P；实际等待不超过1毫秒
func (g *Generator) waitNextMillis(lastTimestamp int64) int64 {
	if g.metrics != nil {
		g.metrics.SequenceOverflow.Add(1)
		defer func(start time.Time) {
			g.metrics.SpinTimeNs.Add(uint64(time.Since(start).Nanoseconds()))
		}(time.Now())
	}

	timestamp := g.clock()
	for timestamp <= lastTimestamp {
		runtime.Gosched()
		timestamp = g.clock()
		if g.metrics != nil {
			g.metrics.SpinCount.Add(1)
		}
	}
	return timestamp
}
