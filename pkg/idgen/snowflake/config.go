package snowflake

import (
	"fmt"

	"katydid-common-uid/pkg/idgen/core"
)

// Config Snowflake生成器配置
type Config struct {
	// WorkerID 工作机器ID
	// 范围：0-31（5位二进制）
	// 用途：标识同一数据中心内的不同机器，避免同数据中心内ID冲突
	WorkerID int64 `mapstructure:"worker_id" json:"worker_id"`

	// DatacenterID 数据中心ID
	// 范围：0-31（5位二进制）
	// 用途：标识不同的数据中心，避免跨数据中心ID冲突
	DatacenterID int64 `mapstructure:"datacenter_id" json:"datacenter_id"`

	// EnableMetrics 是否启用性能监控
	// 默认值：false
	EnableMetrics bool `mapstructure:"enable_metrics" json:"enable_metrics"`
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if err := checkWorkerID(c.WorkerID); err != nil {
		return err
	}
	return checkDatacenterID(c.DatacenterID)
}

// Clone 克隆配置对象
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

func checkWorkerID(workerID int64) error {
	if workerID < 0 || workerID > MaxWorkerID {
		return fmt.Errorf("%w: got %d, valid range [0, %d]",
			core.ErrInvalidWorkerID, workerID, MaxWorkerID)
	}
	return nil
}

func checkDatacenterID(datacenterID int64) error {
	if datacenterID < 0 || datacenterID > MaxDatacenterID {
		return fmt.Errorf("%w: got %d, valid range [0, %d]",
			core.ErrInvalidDatacenterID, datacenterID, MaxDatacenterID)
	}
	return nil
}
