package registry

import (
	"fmt"
	"regexp"
	"sort"
	"sync"

	"go.uber.org/zap"

	"katydid-common-uid/pkg/idgen/core"
	"katydid-common-uid/pkg/idgen/snowflake"
)

const (
	// defaultMaxGenerators 默认最大生成器数量
	defaultMaxGenerators = 100

	// absoluteMaxGenerators 绝对最大生成器数量（硬性上限）
	// 说明：即使通过SetMaxGenerators也不能超过此限制
	// 注意：5位数据中心 × 5位机器 最多也只有1024种身份
	absoluteMaxGenerators = 1024

	// maxKeyLength 键的最大长度
	maxKeyLength = 256
)

// keyFormatRegex 键的合法字符：字母、数字、下划线、连字符、点
var keyFormatRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)

// Registry 生成器注册表
// 说明：
//   - 按名称持有多个生成器，并保证同一进程内不会有两个生成器使用相同的(workerID, datacenterID)
//   - 对外只返回 core.ManagedGenerator 视图，修改身份需调用 Reconfigure
type Registry struct {
	generators    map[string]core.Generator // 生成器映射表
	maxGenerators int                       // 最大生成器数量限制
	logger        *zap.Logger
	mu            sync.RWMutex // 读写锁，保护并发访问
}

// Option 注册表可选项
type Option func(*Registry)

// WithLogger 注入日志器
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

var (
	// globalRegistry 全局生成器注册表实例（单例）
	globalRegistry *Registry

	// registryOnce 确保注册表只初始化一次
	registryOnce sync.Once
)

// GetRegistry 获取全局生成器注册表
func GetRegistry() *Registry {
	registryOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// NewRegistry 创建独立的生成器注册表
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		generators:    make(map[string]core.Generator),
		maxGenerators: defaultMaxGenerators,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create 创建并注册一个新的生成器
func (r *Registry) Create(key string, generatorType core.GeneratorType, config any, opts ...snowflake.Option) (core.ManagedGenerator, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.generators[key]; exists {
		return nil, fmt.Errorf("%w: key '%s'", core.ErrGeneratorAlreadyExists, key)
	}

	return r.createLocked(key, generatorType, config, opts...)
}

// Get 获取已注册的生成器
func (r *Registry) Get(key string) (core.ManagedGenerator, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	generator, exists := r.generators[key]
	if !exists {
		return nil, fmt.Errorf("%w: key '%s'", core.ErrGeneratorNotFound, key)
	}
	return managed{generator}, nil
}

// GetOrCreate 获取生成器，如果不存在则创建
func (r *Registry) GetOrCreate(key string, generatorType core.GeneratorType, config any, opts ...snowflake.Option) (core.ManagedGenerator, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if generator, exists := r.generators[key]; exists {
		return managed{generator}, nil
	}

	return r.createLocked(key, generatorType, config, opts...)
}

// Has 检查生成器是否存在
func (r *Registry) Has(key string) bool {
	if err := validateKey(key); err != nil {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.generators[key]
	return exists
}

// Remove 移除生成器
func (r *Registry) Remove(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.generators[key]; !exists {
		return fmt.Errorf("%w: key '%s'", core.ErrGeneratorNotFound, key)
	}
	delete(r.generators, key)

	r.logger.Info("生成器已移除", zap.String("key", key))
	return nil
}

// Clear 清空所有生成器
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.generators = make(map[string]core.Generator)
}

// Count 获取生成器数量
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.generators)
}

// ListKeys 列出所有生成器的键（已排序）
func (r *Registry) ListKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.generators))
	for key := range r.generators {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// SetMaxGenerators 设置最大生成器数量
func (r *Registry) SetMaxGenerators(max int) error {
	if max <= 0 {
		return fmt.Errorf("max generators must be positive, got %d", max)
	}
	if max > absoluteMaxGenerators {
		return fmt.Errorf("max generators cannot exceed absolute limit %d, got %d",
			absoluteMaxGenerators, max)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.generators) > max {
		return fmt.Errorf("current generator count %d exceeds new max %d",
			len(r.generators), max)
	}
	r.maxGenerators = max
	return nil
}

// GetMaxGenerators 获取最大生成器数量
func (r *Registry) GetMaxGenerators() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.maxGenerators
}

// createLocked 调用者必须已持有写锁
func (r *Registry) createLocked(key string, generatorType core.GeneratorType, config any, opts ...snowflake.Option) (core.ManagedGenerator, error) {
	if len(r.generators) >= r.maxGenerators {
		return nil, fmt.Errorf("%w: current %d, max %d",
			core.ErrMaxGeneratorsReached, len(r.generators), r.maxGenerators)
	}

	generator, err := NewGenerator(generatorType, config, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	workerID, datacenterID := generator.GetWorkerID(), generator.GetDatacenterID()
	if err := r.checkIdentityLocked(key, workerID, datacenterID); err != nil {
		return nil, err
	}

	r.generators[key] = generator

	r.logger.Info("生成器创建成功",
		zap.String("key", key),
		zap.Stringer("type", generatorType),
		zap.Int64("worker_id", workerID),
		zap.Int64("datacenter_id", datacenterID))

	return managed{generator}, nil
}

// Reconfigure 修改已注册生成器的身份
// 说明：与其他键持有的身份冲突时返回 ErrIdentityInUse，生成器保持原身份
func (r *Registry) Reconfigure(key string, workerID, datacenterID int64) error {
	if err := validateKey(key); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	generator, exists := r.generators[key]
	if !exists {
		return fmt.Errorf("%w: key '%s'", core.ErrGeneratorNotFound, key)
	}
	if err := r.checkIdentityLocked(key, workerID, datacenterID); err != nil {
		return err
	}
	if err := generator.Configure(workerID, datacenterID); err != nil {
		return err
	}

	r.logger.Info("生成器身份已修改",
		zap.String("key", key),
		zap.Int64("worker_id", workerID),
		zap.Int64("datacenter_id", datacenterID))
	return nil
}

// checkIdentityLocked 调用者必须已持有锁；self 自身的身份不算冲突
func (r *Registry) checkIdentityLocked(self string, workerID, datacenterID int64) error {
	for otherKey, other := range r.generators {
		if otherKey == self {
			continue
		}
		if other.GetWorkerID() == workerID && other.GetDatacenterID() == datacenterID {
			return fmt.Errorf("%w: worker %d, datacenter %d held by '%s'",
				core.ErrIdentityInUse, workerID, datacenterID, otherKey)
		}
	}
	return nil
}

// managed 隐藏底层生成器的身份修改方法
type managed struct {
	core.ManagedGenerator
}

// validateKey 验证键的有效性
func validateKey(key string) error {
	if len(key) == 0 {
		return fmt.Errorf("%w: key cannot be empty", core.ErrInvalidKey)
	}
	if len(key) > maxKeyLength {
		return fmt.Errorf("%w: key too long (max %d), got %d",
			core.ErrInvalidKey, maxKeyLength, len(key))
	}
	if !keyFormatRegex.MatchString(key) {
		return fmt.Errorf("%w: key '%s' contains invalid characters",
			core.ErrInvalidKey, key)
	}
	return nil
}
