package corpus

import (
	"fmt"
	"strings"
)

// DefaultPageSize 默认每页文档数量
const DefaultPageSize = 10

// Index 内存中的语料库索引
// 构建完成后只读，可被任意数量的请求并发读取
type Index struct {
	order    []string            // 文档标识，按源集合中首次出现的顺序
	docs     map[string]Document // 文档标识 -> 文档
	entities map[string][]Entity // 文档标识 -> 归一化实体
	orphans  int                 // 找不到对应文档的实体组数量
}

// NewIndex 根据文档集合和实体组构建索引
// 两个集合只通过去除空白后的标识关联
func NewIndex(docs []Document, groups []EntityGroup) *Index {
	idx := &Index{
		order:    make([]string, 0, len(docs)),
		docs:     make(map[string]Document, len(docs)),
		entities: make(map[string][]Entity, len(groups)),
	}

	for _, doc := range docs {
		doc.ID = strings.TrimSpace(doc.ID)
		// 重复标识：保留首次出现的位置，内容以后出现的为准
		if _, exists := idx.docs[doc.ID]; !exists {
			idx.order = append(idx.order, doc.ID)
		}
		idx.docs[doc.ID] = doc
	}

	for _, group := range groups {
		id := strings.TrimSpace(group.ID)
		entities := group.Entities
		if entities == nil {
			entities = []Entity{}
		}
		idx.entities[id] = entities
	}

	for id := range idx.entities {
		if _, ok := idx.docs[id]; !ok {
			idx.orphans++
		}
	}

	return idx
}

// Len 返回文档总数
func (idx *Index) Len() int {
	return len(idx.order)
}

// IDs 返回按稳定顺序排列的文档标识
func (idx *Index) IDs() []string {
	ids := make([]string, len(idx.order))
	copy(ids, idx.order)
	return ids
}

// Documents 返回按稳定顺序排列的全部文档
func (idx *Index) Documents() []Document {
	docs := make([]Document, len(idx.order))
	for i, id := range idx.order {
		docs[i] = idx.docs[id]
	}
	return docs
}

// Document 根据标识获取文档，标识会先去除首尾空白
func (idx *Index) Document(id string) (Document, error) {
	doc, ok := idx.docs[strings.TrimSpace(id)]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	return doc, nil
}

// Entities 返回文档的归一化实体，没有时返回空切片
func (idx *Index) Entities(id string) []Entity {
	entities, ok := idx.entities[strings.TrimSpace(id)]
	if !ok {
		return []Entity{}
	}
	return entities
}

// EntityGroups 返回实体组数量（包括无对应文档的实体组）
func (idx *Index) EntityGroups() int {
	return len(idx.entities)
}

// OrphanEntityGroups 返回找不到对应文档的实体组数量
func (idx *Index) OrphanEntityGroups() int {
	return idx.orphans
}

// Page 返回第page页（从1开始）的文档
// 超出范围的页码返回空切片
func (idx *Index) Page(page, size int) []Document {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 || page > idx.PageCount(size) {
		return []Document{}
	}

	start := (page - 1) * size
	end := start + size
	if end > len(idx.order) {
		end = len(idx.order)
	}

	docs := make([]Document, 0, end-start)
	for _, id := range idx.order[start:end] {
		docs = append(docs, idx.docs[id])
	}
	return docs
}

// PageCount 返回总页数，即 ceil(Len/size)
func (idx *Index) PageCount(size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	return (len(idx.order) + size - 1) / size
}
