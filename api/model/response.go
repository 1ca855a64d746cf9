package model

import (
	"time"

	"github.com/fyerfyer/tale-search/internal/corpus"
	"github.com/fyerfyer/tale-search/internal/models"
	"github.com/fyerfyer/tale-search/internal/search"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`               // 响应状态码，0表示成功
	Message string      `json:"message"`            // 响应消息
	Error   string      `json:"error,omitempty"`    // 错误类型，仅错误响应包含
	Data    interface{} `json:"data,omitempty"`     // 响应数据，可能为空
	TraceID string      `json:"trace_id,omitempty"` // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// TaleSummary 故事列表中的一项
type TaleSummary struct {
	ID            string  `json:"id"`                   // 故事ID
	Title         string  `json:"title"`                // 标题
	Collector     *string `json:"collector,omitempty"`  // 讲述者/收集者
	Translator    *string `json:"translator,omitempty"` // 译者
	SentenceCount int     `json:"sentence_count"`       // 句子数量
}

// TaleListResponse 故事列表响应
type TaleListResponse struct {
	Tales    []TaleSummary `json:"tales"`     // 当前页的故事
	Page     int           `json:"page"`      // 当前页码
	PageSize int           `json:"page_size"` // 每页大小
	Pages    int           `json:"pages"`     // 总页数
	Total    int           `json:"total"`     // 故事总数
}

// TaleResponse 故事详情响应
type TaleResponse struct {
	corpus.Document
	Entities []corpus.Entity `json:"entities"` // 归一化后的实体
}

// SearchResponse 搜索响应
type SearchResponse struct {
	Query         string          `json:"query"`           // 去除空白后的查询词
	Mode          string          `json:"mode"`            // 搜索模式
	EntTypeFilter string          `json:"ent_type_filter"` // 小写化后的实体类别过滤
	Total         int             `json:"total"`           // 结果数量
	Cached        bool            `json:"cached"`          // 是否命中缓存
	Results       []search.Result `json:"results"`         // 结果列表
}

// SearchLogInfo 搜索记录
type SearchLogInfo struct {
	Query       string    `json:"query"`                 // 查询词
	Mode        string    `json:"mode"`                  // 搜索模式
	EntityType  string    `json:"entity_type,omitempty"` // 实体类别过滤
	ResultCount int       `json:"result_count"`          // 结果数量
	CreatedAt   time.Time `json:"created_at"`            // 搜索时间
}

// SearchLogListResponse 最近搜索响应
type SearchLogListResponse struct {
	Searches []SearchLogInfo `json:"searches"`
}

// PopularQuery 热门查询
type PopularQuery struct {
	Query string `json:"query"`
	Mode  string `json:"mode"`
	Count int64  `json:"count"`
}

// PopularQueryResponse 热门查询响应
type PopularQueryResponse struct {
	Queries []PopularQuery `json:"queries"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status string `json:"status"`
	Tales  int    `json:"tales"`
}

// ConvertToTaleSummaries 将文档转换为列表项
func ConvertToTaleSummaries(docs []corpus.Document) []TaleSummary {
	summaries := make([]TaleSummary, len(docs))
	for i, doc := range docs {
		summaries[i] = TaleSummary{
			ID:            doc.ID,
			Title:         doc.Title(),
			Collector:     doc.Metadata.Collector,
			Translator:    doc.Metadata.Translator,
			SentenceCount: len(doc.Sentences),
		}
	}
	return summaries
}

// ConvertToSearchLogInfos 将搜索记录转换为响应结构
func ConvertToSearchLogInfos(logs []*models.SearchLog) []SearchLogInfo {
	infos := make([]SearchLogInfo, len(logs))
	for i, l := range logs {
		infos[i] = SearchLogInfo{
			Query:       l.Query,
			Mode:        l.Mode,
			EntityType:  l.EntityType,
			ResultCount: l.ResultCount,
			CreatedAt:   l.CreatedAt,
		}
	}
	return infos
}
