package checkpoint

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TimestampSource 可以报告最后使用时间戳的对象（生成器）
type TimestampSource interface {
	LastTimestamp() int64
}

// Keeper 定期把生成器的高水位写入存储
type Keeper struct {
	store    Store
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	sources map[string]TimestampSource
	saved   map[string]int64
}

// NewKeeper 创建Keeper，interval<=0时使用默认间隔
func NewKeeper(store Store, interval time.Duration, logger *zap.Logger) *Keeper {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Keeper{
		store:    store,
		interval: interval,
		logger:   logger,
		sources:  make(map[string]TimestampSource),
		saved:    make(map[string]int64),
	}
}

// Seed 读取名称对应的高水位，供创建生成器时使用
func (k *Keeper) Seed(ctx context.Context, name string) (int64, error) {
	ms, err := k.store.Load(ctx, name)
	if err != nil {
		return 0, err
	}

	k.mu.Lock()
	k.saved[name] = ms
	k.mu.Unlock()
	return ms, nil
}

// Track 登记需要保存的生成器
func (k *Keeper) Track(name string, src TimestampSource) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.sources[name] = src
}

// Flush 保存所有变化过的高水位
func (k *Keeper) Flush(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	names := make([]string, 0, len(k.sources))
	for name := range k.sources {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		ms := k.sources[name].LastTimestamp()
		if ms <= k.saved[name] {
			continue
		}
		if err := k.store.Save(ctx, name, ms); err != nil {
			errs = append(errs, err)
			continue
		}
		k.saved[name] = ms
	}
	return errors.Join(errs...)
}

// Run 按间隔保存，直到ctx取消；退出前再保存一次
func (k *Keeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err := k.Flush(flushCtx)
			if err != nil {
				k.logger.Error("final checkpoint flush failed", zap.Error(err))
			}
			return err
		case <-ticker.C:
			if err := k.Flush(ctx); err != nil {
				k.logger.Warn("checkpoint flush failed", zap.Error(err))
			}
		}
	}
}
