package search

import "github.com/fyerfyer/tale-search/internal/corpus"

// Result 一条搜索结果
// 每次请求重新构造，不会被持久化
type Result struct {
	DocumentID string       `json:"tale_id"`               // 文档标识
	Title      string       `json:"title"`                 // 文档标题
	Context    string       `json:"context"`               // 代表句子原文
	Query      string       `json:"query,omitempty"`       // 原始查询词（词元搜索）
	EntityType corpus.Class `json:"entity_type,omitempty"` // 匹配实体的类别（实体搜索）
	EntityText string       `json:"entity_text,omitempty"` // 匹配实体的原文（实体搜索）
}

// seenSet 已输出过的句子原文集合，作用域为一次搜索调用
type seenSet map[string]struct{}

// add 加入句子，已存在时返回false
func (s seenSet) add(text string) bool {
	if _, ok := s[text]; ok {
		return false
	}
	s[text] = struct{}{}
	return true
}
