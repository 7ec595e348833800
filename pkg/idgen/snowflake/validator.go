package snowflake

import (
	"fmt"

	"katydid-common-uid/pkg/idgen/core"
)

var _ core.IDValidator = (*Validator)(nil)

// Validator Snowflake ID验证器
type Validator struct {
	clock Clock
}

// ValidateID 全局验证函数（使用系统时钟）
func ValidateID(id int64) error {
	return NewValidator().Validate(id)
}

// NewValidator 创建使用系统时钟的验证器
func NewValidator() *Validator {
	return NewValidatorWithClock(SystemClock)
}

// NewValidatorWithClock 创建使用指定时钟的验证器
func NewValidatorWithClock(clock Clock) *Validator {
	if clock == nil {
		clock = SystemClock
	}
	return &Validator{clock: clock}
}

// Validate 验证Snowflake ID的有效性
func (v *Validator) Validate(id int64) error {
	// 验证1：ID必须为正整数（符号位为0且不为零）
	if id <= 0 {
		return fmt.Errorf("%w: id must be positive, got %d",
			core.ErrInvalidSnowflakeID, id)
	}

	// 验证2：时间戳不能太超前
	// 说明：容忍 maxFutureTimeTolerance 以内的时钟偏差，防止伪造未来的ID
	timestamp := Epoch + (id >> TimestampShift)
	now := v.clock()
	if timestamp > now+maxFutureTimeTolerance {
		return fmt.Errorf("%w: timestamp %d is too far in the future (current: %d, max tolerance: %d ms)",
			core.ErrInvalidSnowflakeID, timestamp, now, maxFutureTimeTolerance)
	}

	return nil
}

// ValidateBatch 批量验证ID，遇到第一个错误立即返回
func (v *Validator) ValidateBatch(ids []int64) error {
	if ids == nil {
		return fmt.Errorf("%w: ids slice cannot be nil", core.ErrInvalidSnowflakeID)
	}

	for i, id := range ids {
		if err := v.Validate(id); err != nil {
			return fmt.Errorf("invalid ID at index %d: %w", i, err)
		}
	}
	return nil
}
