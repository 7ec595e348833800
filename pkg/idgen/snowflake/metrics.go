package snowflake

import "sync/atomic"

// Metrics 生成器计数器，全部为原子操作，可在锁外读取
type Metrics struct {
	IDCount          atomic.Uint64 // 成功生成的ID数
	SequenceOverflow atomic.Uint64 // 单毫秒序列号耗尽、需要等待下一毫秒的次数
	SpinCount        atomic.Uint64 // 等待期间重新读取时钟的次数
	ClockBackward    atomic.Uint64 // 因时钟回拨被拒绝的次数
	SpinTimeNs       atomic.Uint64 // 等待下一毫秒累计耗时（纳秒）
}

// NewMetrics 创建计数器
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Reset 清零；未开启监控（nil）时什么都不做
func (m *Metrics) Reset() {
	if m == nil {
		return
	}
	for _, c := range m.counters() {
		c.Store(0)
	}
}

func (m *Metrics) counters() []*atomic.Uint64 {
	return []*atomic.Uint64{&m.IDCount, &m.SequenceOverflow, &m.SpinCount, &m.ClockBackward, &m.SpinTimeNs}
}

// ToMap 导出为map，avg_spin_time_ns 按溢出次数平均
func (m *Metrics) ToMap() map[string]uint64 {
	if m == nil {
		return map[string]uint64{"metrics_enabled": 0}
	}

	overflow := m.SequenceOverflow.Load()
	var avgSpin uint64
	if overflow > 0 {
		avgSpin = m.SpinTimeNs.Load() / overflow
	}

	return map[string]uint64{
		"metrics_enabled":   1,
		"id_count":          m.IDCount.Load(),
		"sequence_overflow": overflow,
		"spin_count":        m.SpinCount.Load(),
		"clock_backward":    m.ClockBackward.Load(),
		"avg_spin_time_ns":  avgSpin,
	}
}
