package taskqueue

import (
	"encoding/json"
	"time"
)

// TaskType 任务类型
type TaskType string

const (
	// TaskSearchLog 写入搜索记录任务
	TaskSearchLog TaskType = "search:log"
)

// Task 任务基础结构，序列化后作为asynq任务的载荷
type Task struct {
	ID        string          `json:"id"`         // 任务唯一标识符
	Type      TaskType        `json:"type"`       // 任务类型
	Payload   json.RawMessage `json:"payload"`    // 任务载荷数据，不同任务类型对应不同结构
	CreatedAt time.Time       `json:"created_at"` // 创建时间
}

// SearchLogPayload 搜索记录任务载荷
type SearchLogPayload struct {
	Query       string            `json:"query"`                  // 查询词
	Mode        string            `json:"mode"`                   // 搜索模式
	EntityType  string            `json:"entity_type,omitempty"`  // 实体类别过滤
	ResultCount int               `json:"result_count"`           // 结果数量
	CacheHit    bool              `json:"cache_hit"`              // 是否命中缓存
	TraceID     string            `json:"trace_id,omitempty"`     // 请求追踪ID
	Metadata    map[string]string `json:"metadata,omitempty"`     // 附加信息
	SearchedAt  time.Time         `json:"searched_at"`            // 搜索时间
}
