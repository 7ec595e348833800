package snowflake

import "sync"

// scriptedClock 按脚本返回时间戳：依次消费队列，最后一个值保持不变
type scriptedClock struct {
	mu     sync.Mutex
	values []int64
	reads  int
}

func newScriptedClock(values ...int64) *scriptedClock {
	return &scriptedClock{values: values}
}

func (c *scriptedClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reads++
	v := c.values[0]
	if len(c.values) > 1 {
		c.values = c.values[1:]
	}
	return v
}

// Set 固定时钟为单个值
func (c *scriptedClock) Set(v int64) {
	c.Queue(v)
}

// Queue 替换后续读取的脚本
func (c *scriptedClock) Queue(values ...int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = values
}

func (c *scriptedClock) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}
