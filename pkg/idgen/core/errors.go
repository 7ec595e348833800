package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig 生成器配置无效（所有配置类错误的根错误）
	ErrInvalidConfig = errors.New("invalid generator config")

	// ErrInvalidWorkerID 工作机器ID超出有效范围
	ErrInvalidWorkerID = fmt.Errorf("%w: worker id must be between 0 and 31", ErrInvalidConfig)

	// ErrInvalidDatacenterID 数据中心ID超出有效范围
	ErrInvalidDatacenterID = fmt.Errorf("%w: datacenter id must be between 0 and 31", ErrInvalidConfig)

	// ErrNilConfig 配置为nil
	ErrNilConfig = fmt.Errorf("%w: config cannot be nil", ErrInvalidConfig)

	// ErrClockMovedBackwards 检测到时钟回拨
	ErrClockMovedBackwards = errors.New("clock moved backwards: refusing to generate id")

	// ErrTimestampOverflow 时间戳超出41位可表示范围（或早于Epoch）
	ErrTimestampOverflow = errors.New("timestamp out of range: cannot be encoded in 41 bits")

	// ErrInvalidSnowflakeID 无效的Snowflake ID
	ErrInvalidSnowflakeID = errors.New("invalid snowflake id")

	// ErrInvalidBatchSize 批量生成数量无效
	ErrInvalidBatchSize = errors.New("invalid batch size")

	// ErrGeneratorNotFound 生成器未找到
	ErrGeneratorNotFound = errors.New("generator not found")

	// ErrGeneratorAlreadyExists 生成器已存在
	ErrGeneratorAlreadyExists = errors.New("generator already exists")

	// ErrInvalidGeneratorType 无效的生成器类型
	ErrInvalidGeneratorType = errors.New("invalid generator type")

	// ErrInvalidKey 无效的键
	ErrInvalidKey = errors.New("invalid key")

	// ErrMaxGeneratorsReached 达到最大生成器数量
	ErrMaxGeneratorsReached = errors.New("maximum number of generators reached")

	// ErrIdentityInUse 同一进程内已有生成器占用了相同的(workerID, datacenterID)
	ErrIdentityInUse = errors.New("worker/datacenter identity already in use")
)

// ClockRewindError 时钟回拨错误
// 说明：当前时钟早于上次生成ID的时间戳时返回，本次调用失败，生成器状态不变
type ClockRewindError struct {
	LastTimestamp int64 // 上次生成ID使用的时间戳（毫秒）
	Timestamp     int64 // 本次读取到的时间戳（毫秒）
}

// Gap 回拨的毫秒数
func (e *ClockRewindError) Gap() int64 {
	return e.LastTimestamp - e.Timestamp
}

func (e *ClockRewindError) Error() string {
	return fmt.Sprintf("clock moved backwards: refusing to generate id for %d milliseconds", e.Gap())
}

// Unwrap 使 errors.Is(err, ErrClockMovedBackwards) 成立
func (e *ClockRewindError) Unwrap() error {
	return ErrClockMovedBackwards
}
