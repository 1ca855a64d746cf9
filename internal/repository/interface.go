package repository

import (
	"context"

	"github.com/fyerfyer/tale-search/internal/models"
)

// SearchLogRepository 搜索记录仓储接口
type SearchLogRepository interface {
	// Create 创建搜索记录
	Create(log *models.SearchLog) error

	// Recent 获取最近的搜索记录，按时间倒序
	Recent(limit int) ([]*models.SearchLog, error)

	// TopQueries 返回出现次数最多的查询词
	TopQueries(limit int) ([]QueryCount, error)

	// WithContext 创建带有上下文的仓储
	WithContext(ctx context.Context) SearchLogRepository
}

// QueryCount 查询词及其出现次数
type QueryCount struct {
	Query string `json:"query"`
	Mode  string `json:"mode"`
	Count int64  `json:"count"`
}
