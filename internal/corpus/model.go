package corpus

import "errors"

var (
	// ErrDocumentNotFound 文档不存在错误
	ErrDocumentNotFound = errors.New("document not found")
)

// Metadata 童话的元数据
type Metadata struct {
	Title      string  `json:"title"`                // 标题
	Collector  *string `json:"collector,omitempty"`  // 讲述者/收集者，可选
	Translator *string `json:"translator,omitempty"` // 译者，可选
}

// Token 句子中的一个词
type Token struct {
	Form  string `json:"form"`  // 原始词形
	Lemma string `json:"lemma"` // 词元（已转小写）
	POS   string `json:"pos"`   // 词性标记
}

// Sentence 文档中的一个句子
type Sentence struct {
	Text   string  `json:"text"`   // 句子原文
	Tokens []Token `json:"tokens"` // 有序的词序列
}

// Document 语料库中的一篇童话
// 加载完成后不再修改
type Document struct {
	ID        string     `json:"id"`        // 文档标识，已去除首尾空白
	Metadata  Metadata   `json:"metadata"`  // 元数据
	Sentences []Sentence `json:"sentences"` // 有序的句子序列
}

// Title 返回文档标题
func (d Document) Title() string {
	return d.Metadata.Title
}

// EntityGroup 实体标注文件中的一组原始实体
type EntityGroup struct {
	Key      string   // 标注文件中的分组键
	ID       string   // 关联的文档标识
	Entities []Entity // 归一化后的实体
}
