package core

import "time"

// GeneratorType 生成器类型枚举
// 说明：工厂在编译期按类型分派，不做运行时反射
type GeneratorType string

const (
	// GeneratorTypeSnowflake Snowflake算法生成器
	GeneratorTypeSnowflake GeneratorType = "snowflake"
)

// String 实现Stringer接口
func (t GeneratorType) String() string {
	return string(t)
}

// IsValid 验证生成器类型是否有效
func (t GeneratorType) IsValid() bool {
	switch t {
	case GeneratorTypeSnowflake:
		return true
	default:
		return false
	}
}

// IDInfo ID解析结果
type IDInfo struct {
	ID           int64 `json:"uid,string"`   // 原始ID值
	Timestamp    int64 `json:"timestamp"`    // 时间戳（Unix毫秒）
	DatacenterID int64 `json:"datacenterId"` // 数据中心ID（0-31）
	WorkerID     int64 `json:"workerId"`     // 工作机器ID（0-31）
	Sequence     int64 `json:"sequence"`     // 序列号（0-4095）
}

// Time 将时间戳转换为time.Time（UTC）
func (i *IDInfo) Time() time.Time {
	return time.UnixMilli(i.Timestamp).UTC()
}
