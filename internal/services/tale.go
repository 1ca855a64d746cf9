package services

import (
	"github.com/fyerfyer/tale-search/internal/corpus"
)

// TaleService 故事浏览服务
// 只读访问加载完成的语料库索引
type TaleService struct {
	index    *corpus.Index // 语料库索引
	pageSize int           // 每页数量
}

// TaleOption 故事服务配置选项
type TaleOption func(*TaleService)

// WithPageSize 设置每页数量
func WithPageSize(size int) TaleOption {
	return func(s *TaleService) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// NewTaleService 创建故事服务实例
func NewTaleService(index *corpus.Index, opts ...TaleOption) *TaleService {
	srv := &TaleService{
		index:    index,
		pageSize: corpus.DefaultPageSize,
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

// TalePage 一页故事列表
type TalePage struct {
	Tales    []corpus.Document // 当前页的文档
	Page     int               // 当前页码
	PageSize int               // 每页数量
	Total    int               // 文档总数
	Pages    int               // 总页数
}

// List 返回指定页的故事，页码小于1或超出范围时返回空列表
func (s *TaleService) List(page int) TalePage {
	return TalePage{
		Tales:    s.index.Page(page, s.pageSize),
		Page:     page,
		PageSize: s.pageSize,
		Total:    s.index.Len(),
		Pages:    s.index.PageCount(s.pageSize),
	}
}

// Get 获取单个故事及其实体
func (s *TaleService) Get(id string) (corpus.Document, []corpus.Entity, error) {
	doc, err := s.index.Document(id)
	if err != nil {
		return corpus.Document{}, nil, err
	}
	return doc, s.index.Entities(id), nil
}

// Count 返回语料库中的故事数量
func (s *TaleService) Count() int {
	return s.index.Len()
}
