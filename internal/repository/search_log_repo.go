package repository

import (
	"context"
	"fmt"

	"github.com/fyerfyer/tale-search/internal/database"
	"github.com/fyerfyer/tale-search/internal/models"
	"gorm.io/gorm"
)

// 默认和最大的查询条数
const (
	defaultLimit = 10
	maxLimit     = 100
)

// searchLogRepo 搜索记录仓储实现
type searchLogRepo struct {
	db *gorm.DB // 数据库连接
}

// NewSearchLogRepository 使用全局数据库连接创建仓储实例
func NewSearchLogRepository() SearchLogRepository {
	return &searchLogRepo{
		db: database.MustDB(),
	}
}

// NewSearchLogRepositoryWithDB 使用指定的数据库连接创建仓储实例
func NewSearchLogRepositoryWithDB(db *gorm.DB) SearchLogRepository {
	if db == nil {
		db = database.MustDB()
	}
	return &searchLogRepo{
		db: db,
	}
}

// WithContext 创建带有上下文的仓储
func (r *searchLogRepo) WithContext(ctx context.Context) SearchLogRepository {
	return &searchLogRepo{
		db: r.db.WithContext(ctx),
	}
}

// Create 创建搜索记录
func (r *searchLogRepo) Create(log *models.SearchLog) error {
	if log == nil || log.Query == "" {
		return fmt.Errorf("%w: query cannot be empty", models.ErrInvalidSearchLog)
	}
	return r.db.Create(log).Error
}

// Recent 获取最近的搜索记录
func (r *searchLogRepo) Recent(limit int) ([]*models.SearchLog, error) {
	var logs []*models.SearchLog

	err := r.db.Order("created_at DESC").
		Order("id DESC").
		Limit(clampLimit(limit)).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}

	return logs, nil
}

// TopQueries 返回出现次数最多的查询词
func (r *searchLogRepo) TopQueries(limit int) ([]QueryCount, error) {
	var rows []QueryCount

	err := r.db.Model(&models.SearchLog{}).
		Select("query, mode, COUNT(*) AS count").
		Group("query, mode").
		Order("count DESC").
		Order("query ASC").
		Limit(clampLimit(limit)).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// clampLimit 将查询条数限制在合理范围内
func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
