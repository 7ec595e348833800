package registry

import (
	"fmt"

	"katydid-common-uid/pkg/idgen/core"
	"katydid-common-uid/pkg/idgen/snowflake"
)

// NewGenerator 按生成器类型创建实例
// 说明：类型在编译期分派，新增算法时在此处增加分支
func NewGenerator(generatorType core.GeneratorType, config any, opts ...snowflake.Option) (core.Generator, error) {
	switch generatorType {
	case core.GeneratorTypeSnowflake:
		sfConfig, ok := config.(*snowflake.Config)
		if !ok {
			return nil, fmt.Errorf("%w: expected *snowflake.Config, got %T",
				core.ErrInvalidConfig, config)
		}
		return snowflake.NewWithConfig(sfConfig, opts...)
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidGeneratorType, generatorType)
	}
}
