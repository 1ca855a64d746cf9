package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 定长列的最大字符数
const (
	MaxModeLength       = 20
	MaxEntityTypeLength = 20
)

// SearchLog 搜索记录模型
// 只记录用户的查询，不涉及语料库本身
type SearchLog struct {
	ID          uint           `gorm:"primaryKey;autoIncrement"`  // 主键ID
	Query       string         `gorm:"not null;index"`            // 查询词
	Mode        string         `gorm:"not null;type:varchar(20)"` // 搜索模式
	EntityType  string         `gorm:"type:varchar(20)"`          // 实体类别过滤
	ResultCount int            `gorm:"not null;default:0"`        // 结果数量
	CacheHit    bool           `gorm:"not null;default:false"`    // 是否命中缓存
	TraceID     string         `gorm:"size:64"`                   // 请求追踪ID
	CreatedAt   time.Time      `gorm:"not null;index"`            // 创建时间
	Metadata    datatypes.JSON `gorm:"type:json"`                 // 附加信息，如首条结果的文档
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (l *SearchLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	return nil
}

// TableName 明确指定表名
func (SearchLog) TableName() string {
	return "search_logs"
}
