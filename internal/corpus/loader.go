package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fyerfyer/tale-search/pkg/storage"
	"github.com/sirupsen/logrus"
)

// rawEntityGroup 实体标注文件中一个分组的原始结构
type rawEntityGroup struct {
	URL      string          `json:"url"`      // 文档标识
	Entities json.RawMessage `json:"entities"` // [[text, tag], ...]
}

// DecodeDocuments 解码文档集合（JSON数组）
func DecodeDocuments(r io.Reader) ([]Document, error) {
	var docs []Document
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	return docs, nil
}

// DecodeEntityGroups 解码实体标注集合（JSON对象）
// 逐个token解析以保留分组在文件中的顺序
func DecodeEntityGroups(r io.Reader) ([]EntityGroup, error) {
	dec := json.NewDecoder(r)

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var groups []EntityGroup
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read entity group key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected entity group key: %v", tok)
		}

		var raw rawEntityGroup
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode entity group %q: %w", key, err)
		}

		// entities不是数组时视为没有实体
		var records []json.RawMessage
		if len(raw.Entities) > 0 {
			_ = json.Unmarshal(raw.Entities, &records)
		}

		groups = append(groups, EntityGroup{
			Key:      key,
			ID:       strings.TrimSpace(raw.URL),
			Entities: NormalizeEntities(records),
		})
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return groups, nil
}

// expectDelim 读取下一个token并检查是否为指定分隔符
func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to decode entity groups: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return fmt.Errorf("failed to decode entity groups: expected %q, got %v", want, tok)
	}
	return nil
}

// Load 从文件来源读取文档集合和实体标注并构建索引
// 任何读取或解析错误都会返回，调用方应视为致命错误
func Load(ctx context.Context, src storage.Source, documentsFile, entitiesFile string, logger *logrus.Logger) (*Index, error) {
	for _, name := range []string{documentsFile, entitiesFile} {
		if err := requireFile(ctx, src, name); err != nil {
			return nil, err
		}
	}

	docs, err := loadDocuments(ctx, src, documentsFile)
	if err != nil {
		return nil, err
	}

	groups, err := loadEntityGroups(ctx, src, entitiesFile)
	if err != nil {
		return nil, err
	}

	idx := NewIndex(docs, groups)

	entityCount := 0
	for _, g := range groups {
		entityCount += len(g.Entities)
	}

	if logger != nil {
		logger.WithFields(logrus.Fields{
			"documents_file": documentsFile,
			"entities_file":  entitiesFile,
			"records":        len(docs),
			"documents":      idx.Len(),
			"entity_groups":  idx.EntityGroups(),
			"entities":       entityCount,
		}).Info("Corpus index built")

		if orphans := idx.OrphanEntityGroups(); orphans > 0 {
			logger.WithField("orphan_groups", orphans).Warn("Entity groups reference unknown documents")
		}
	}

	return idx, nil
}

// requireFile 确认文件存在，不存在时在错误中列出来源里已有的文件
func requireFile(ctx context.Context, src storage.Source, name string) error {
	ok, err := src.Exists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check corpus file %s: %w", name, err)
	}
	if ok {
		return nil
	}

	files, err := src.List(ctx)
	if err != nil {
		return fmt.Errorf("corpus file %s: %w", name, storage.ErrFileNotFound)
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return fmt.Errorf("corpus file %s: %w (available: %s)", name, storage.ErrFileNotFound, strings.Join(names, ", "))
}

// loadDocuments 打开并解码文档集合文件
func loadDocuments(ctx context.Context, src storage.Source, name string) ([]Document, error) {
	r, err := src.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open documents file %s: %w", name, err)
	}
	defer r.Close()

	docs, err := DecodeDocuments(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return docs, nil
}

// loadEntityGroups 打开并解码实体标注文件
func loadEntityGroups(ctx context.Context, src storage.Source, name string) ([]EntityGroup, error) {
	r, err := src.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open entities file %s: %w", name, err)
	}
	defer r.Close()

	groups, err := DecodeEntityGroups(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return groups, nil
}
