package model

import (
	"strconv"
	"strings"
)

// TaleListRequest 故事列表请求
// 页码无法解析时按第1页处理
type TaleListRequest struct {
	Page string `form:"page"` // 当前页码，从1开始
}

// GetPage 获取页码，缺失或无法解析时为1
// 小于1或超出范围的页码原样返回，由索引返回空列表
func (r *TaleListRequest) GetPage() int {
	page, err := strconv.Atoi(strings.TrimSpace(r.Page))
	if err != nil {
		return 1
	}
	return page
}

// SearchRequest 搜索请求
type SearchRequest struct {
	Query      string `form:"q"`        // 查询词
	Mode       string `form:"mode"`     // 搜索模式：lemma、entity，无法识别时返回空结果
	EntityType string `form:"ent_type"` // 实体类别过滤：person、location，无法识别时不匹配任何实体
}

// LimitRequest 限定条数的列表请求
type LimitRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"` // 返回条数
}

// GetLimit 获取条数，默认为10
func (r *LimitRequest) GetLimit() int {
	if r.Limit <= 0 {
		return 10
	}
	return r.Limit
}
