package corpus

import (
	"encoding/json"
	"strings"
)

// Class 实体类别
type Class string

const (
	// ClassPerson 人物
	ClassPerson Class = "person"
	// ClassLocation 地点
	ClassLocation Class = "location"
)

// rawTagClasses 原始NER标签到实体类别的映射，键为大写
var rawTagClasses = map[string]Class{
	"PER":    ClassPerson,
	"PERSON": ClassPerson,
	"LOC":    ClassLocation,
	"GPE":    ClassLocation,
}

// Entity 归一化后的命名实体
type Entity struct {
	Text  string `json:"text"`  // 实体原文，保留大小写
	Class Class  `json:"class"` // 实体类别
}

// ParseClass 将原始标签解析为实体类别，忽略大小写
// 不在映射表中的标签（ORG、MISC等）返回false
func ParseClass(raw string) (Class, bool) {
	class, ok := rawTagClasses[strings.ToUpper(strings.TrimSpace(raw))]
	return class, ok
}

// NormalizeEntity 将一条 [text, tag] 原始记录转换为实体
// 结构不合法、文本为空或标签无法识别时返回false
func NormalizeEntity(raw json.RawMessage) (Entity, bool) {
	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
		return Entity{}, false
	}

	var text, tag string
	if err := json.Unmarshal(pair[0], &text); err != nil || text == "" {
		return Entity{}, false
	}
	if err := json.Unmarshal(pair[1], &tag); err != nil {
		return Entity{}, false
	}

	class, ok := ParseClass(tag)
	if !ok {
		return Entity{}, false
	}
	return Entity{Text: text, Class: class}, true
}

// NormalizeEntities 归一化一组原始实体记录，丢弃无法识别的记录
// 结果可能为空，但不会为nil
func NormalizeEntities(raw []json.RawMessage) []Entity {
	entities := make([]Entity, 0, len(raw))
	for _, r := range raw {
		if ent, ok := NormalizeEntity(r); ok {
			entities = append(entities, ent)
		}
	}
	return entities
}
