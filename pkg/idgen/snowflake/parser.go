package snowflake

import (
	"time"

	"katydid-common-uid/pkg/idgen/core"
)

var _ core.IDParser = (*Parser)(nil)

// Parser Snowflake ID解析器
// 说明：无状态，纯位运算；对任意int64输入都给出结果，不做有效性校验
type Parser struct{}

// NewParser 创建新的解析器实例
func NewParser() *Parser {
	return &Parser{}
}

// Parse 解析Snowflake ID，提取完整的元信息
func (p *Parser) Parse(id int64) *core.IDInfo {
	return &core.IDInfo{
		ID:           id,
		Timestamp:    p.ExtractTimestamp(id),
		DatacenterID: p.ExtractDatacenterID(id),
		WorkerID:     p.ExtractWorkerID(id),
		Sequence:     p.ExtractSequence(id),
	}
}

// ExtractTimestamp 提取时间戳（Unix毫秒）
// 说明：逻辑右移，负数输入同样按位解码；先移位再加Epoch
func (p *Parser) ExtractTimestamp(id int64) int64 {
	return Epoch + int64(uint64(id)>>TimestampShift)
}

// ExtractTimestampAsTime 提取时间戳并转换为time.Time（UTC）
func (p *Parser) ExtractTimestampAsTime(id int64) time.Time {
	return time.UnixMilli(p.ExtractTimestamp(id)).UTC()
}

// ExtractDatacenterID 提取数据中心ID（右移17位，取低5位）
func (p *Parser) ExtractDatacenterID(id int64) int64 {
	return (id >> DatacenterIDShift) & MaxDatacenterID
}

// ExtractWorkerID 提取工作机器ID（右移12位，取低5位）
func (p *Parser) ExtractWorkerID(id int64) int64 {
	return (id >> WorkerIDShift) & MaxWorkerID
}

// ExtractSequence 提取序列号（取低12位）
func (p *Parser) ExtractSequence(id int64) int64 {
	return id & MaxSequence
}

var defaultParser = NewParser()

// ParseID 全局解析函数
func ParseID(id int64) *core.IDInfo {
	return defaultParser.Parse(id)
}

// GetTimestamp 全局时间戳提取函数
func GetTimestamp(id int64) time.Time {
	return defaultParser.ExtractTimestampAsTime(id)
}
