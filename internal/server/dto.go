package server

import "katydid-common-uid/pkg/idgen/domain"

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status string `json:"status"`
}

// NextIDsResponse 生成ID响应，ID以字符串输出
type NextIDsResponse struct {
	Generator string         `json:"generator"`
	IDs       domain.IDSlice `json:"ids"`
}

// GeneratorResponse 生成器状态
type GeneratorResponse struct {
	Name          string            `json:"name"`
	WorkerID      int64             `json:"worker_id"`
	DatacenterID  int64             `json:"datacenter_id"`
	LastTimestamp int64             `json:"last_timestamp"`
	Metrics       map[string]uint64 `json:"metrics"`
}

// ErrorResponse 错误响应，时钟回拨时附带回拨毫秒数
type ErrorResponse struct {
	Error string `json:"error"`
	GapMs int64  `json:"gap_ms,omitempty"`
}
