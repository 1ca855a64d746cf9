package search

import (
	"strings"

	"github.com/fyerfyer/tale-search/internal/corpus"
)

// Filter 实体类别过滤条件
type Filter struct {
	class   corpus.Class
	enabled bool // 是否启用过滤
	invalid bool // 过滤值无法识别，不匹配任何实体
}

// NoFilter 不限制实体类别
var NoFilter = Filter{}

// ClassFilter 只匹配指定类别
func ClassFilter(class corpus.Class) Filter {
	return Filter{class: class, enabled: true}
}

// ParseFilter 解析用户输入的过滤值，忽略大小写
// 空字符串表示不过滤；person/location 以及原始标签（PER、LOC等）都可识别；
// 其他值得到一个不匹配任何实体的过滤条件
func ParseFilter(raw string) Filter {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch raw {
	case "":
		return NoFilter
	case string(corpus.ClassPerson):
		return ClassFilter(corpus.ClassPerson)
	case string(corpus.ClassLocation):
		return ClassFilter(corpus.ClassLocation)
	}
	if class, ok := corpus.ParseClass(raw); ok {
		return ClassFilter(class)
	}
	return Filter{enabled: true, invalid: true}
}

// Match 检查实体类别是否满足过滤条件
func (f Filter) Match(class corpus.Class) bool {
	if !f.enabled {
		return true
	}
	return !f.invalid && f.class == class
}

// String 返回过滤条件的规范名称，用于缓存键
func (f Filter) String() string {
	switch {
	case !f.enabled:
		return ""
	case f.invalid:
		return "!invalid"
	default:
		return string(f.class)
	}
}

// Entity 按实体子串搜索
// 查询与实体文本的匹配忽略大小写，实体文本在句子中的定位区分大小写
func Entity(idx *corpus.Index, query string, filter Filter) []Result {
	results := []Result{}
	if query == "" {
		return results
	}

	folded := strings.ToLower(query)
	seen := seenSet{}

	for _, doc := range idx.Documents() {
		matched := matchEntities(idx.Entities(doc.ID), folded, filter)
		if len(matched) == 0 {
			continue
		}

		for _, sent := range doc.Sentences {
			ent, ok := firstContained(sent.Text, matched)
			if !ok || !seen.add(sent.Text) {
				continue
			}
			results = append(results, Result{
				DocumentID: doc.ID,
				Title:      doc.Title(),
				Context:    sent.Text,
				EntityType: ent.Class,
				EntityText: ent.Text,
			})
		}
	}

	return results
}

// matchEntities 收集文本包含查询且类别满足过滤条件的实体，保持原有顺序
func matchEntities(entities []corpus.Entity, folded string, filter Filter) []corpus.Entity {
	var matched []corpus.Entity
	for _, ent := range entities {
		if !strings.Contains(strings.ToLower(ent.Text), folded) {
			continue
		}
		if !filter.Match(ent.Class) {
			continue
		}
		matched = append(matched, ent)
	}
	return matched
}

// firstContained 返回第一个原文出现在句子中的实体
func firstContained(text string, entities []corpus.Entity) (corpus.Entity, bool) {
	for _, ent := range entities {
		if strings.Contains(text, ent.Text) {
			return ent, true
		}
	}
	return corpus.Entity{}, false
}
