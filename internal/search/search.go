package search

import (
	"strings"

	"github.com/fyerfyer/tale-search/internal/corpus"
)

// Mode 搜索模式
type Mode string

const (
	// ModeLemma 词元精确搜索
	ModeLemma Mode = "lemma"
	// ModeEntity 命名实体子串搜索
	ModeEntity Mode = "entity"
)

// ParseMode 解析搜索模式，忽略大小写，空值默认为词元搜索
// 无法识别的值原样返回，搜索时得到空结果
func ParseMode(raw string) Mode {
	mode := Mode(strings.ToLower(strings.TrimSpace(raw)))
	if mode == "" {
		return ModeLemma
	}
	return mode
}

// Request 搜索请求
type Request struct {
	Query      string // 查询词
	Mode       Mode   // 搜索模式
	EntityType Filter // 实体类别过滤（仅实体搜索）
}

// Engine 基于只读语料库索引的搜索引擎
type Engine struct {
	index *corpus.Index
}

// NewEngine 创建搜索引擎
func NewEngine(index *corpus.Index) *Engine {
	return &Engine{index: index}
}

// Index 返回引擎使用的索引
func (e *Engine) Index() *corpus.Index {
	return e.index
}

// Search 根据请求模式执行搜索
func (e *Engine) Search(req Request) []Result {
	switch req.Mode {
	case ModeLemma:
		return Lemma(e.index, req.Query)
	case ModeEntity:
		return Entity(e.index, req.Query, req.EntityType)
	default:
		return []Result{}
	}
}
