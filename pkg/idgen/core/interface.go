package core

// IDGenerator ID生成器基础接口
type IDGenerator interface {
	// NextID 生成下一个唯一ID（线程安全）
	NextID() (int64, error)
}

// BatchGenerator 批量ID生成接口
type BatchGenerator interface {
	IDGenerator

	// NextIDBatch 批量生成指定数量的ID（线程安全）
	NextIDBatch(n int) ([]int64, error)
}

// IdentityReader 只读的身份与时间戳信息
type IdentityReader interface {
	// GetWorkerID 获取工作机器ID（0-31）
	GetWorkerID() int64

	// GetDatacenterID 获取数据中心ID（0-31）
	GetDatacenterID() int64

	// LastTimestamp 上次生成ID使用的时间戳，从未生成时为-1
	LastTimestamp() int64
}

// ConfigurableGenerator 可配置的生成器接口
type ConfigurableGenerator interface {
	IdentityReader

	// Configure 同时设置工作机器ID和数据中心ID，任一越界则都不修改
	Configure(workerID, datacenterID int64) error
}

// MonitorableGenerator 可监控的生成器接口
type MonitorableGenerator interface {
	GetMetrics() map[string]uint64
	ResetMetrics()
	GetIDCount() uint64
}

// ParseableGenerator 可解析+验证的生成器接口
type ParseableGenerator interface {
	// ParseID 解析ID，纯位运算，对任意int64都有结果
	ParseID(id int64) *IDInfo

	// ValidateID 验证ID的有效性
	ValidateID(id int64) error
}

// Generator 完整功能的生成器接口
type Generator interface {
	BatchGenerator
	ConfigurableGenerator
	MonitorableGenerator
	ParseableGenerator
}

// ManagedGenerator 注册表对外提供的生成器视图
// 说明：不包含修改身份的方法，身份变更只能经由注册表进行
type ManagedGenerator interface {
	BatchGenerator
	IdentityReader
	MonitorableGenerator
	ParseableGenerator
}

// IDParser ID解析器接口
type IDParser interface {
	Parse(id int64) *IDInfo
	ExtractTimestamp(id int64) int64
	ExtractDatacenterID(id int64) int64
	ExtractWorkerID(id int64) int64
	ExtractSequence(id int64) int64
}

// IDValidator ID验证器接口
type IDValidator interface {
	Validate(id int64) error
	ValidateBatch(ids []int64) error
}
