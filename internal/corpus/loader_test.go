package corpus

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fyerfyer/tale-search/pkg/storage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocuments = `[
  {
    "id": " https://skazki.example/kot-bayun \n",
    "metadata": {"title": "Кот Баюн", "collector": "Иванов", "translator": null},
    "sentences": [
      {"text": "Пришёл Кот Баюн в лес.", "tokens": [
        {"form": "Пришёл", "lemma": "прийти", "pos": "VERB"},
        {"form": "Кот", "lemma": "кот", "pos": "NOUN"}
      ]}
    ],
    "named_entities": [{"text": "Кот Баюн", "type": "per"}]
  },
  {
    "id": "t2",
    "metadata": {"title": "Вторая"},
    "sentences": []
  }
]`

const testEntities = `{
  "Кот Баюн": {"url": "https://skazki.example/kot-bayun ", "entities": [["Кот Баюн", "PER"], ["лес", "ORG"]]},
  "Без текста": {"url": "https://skazki.example/missing", "entities": [["Кощей", "PER"]]},
  "Вторая": {"url": "t2", "entities": "oops"}
}`

func TestDecodeDocuments(t *testing.T) {
	docs, err := DecodeDocuments(strings.NewReader(testDocuments))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	doc := docs[0]
	assert.Equal(t, "Кот Баюн", doc.Metadata.Title)
	require.NotNil(t, doc.Metadata.Collector)
	assert.Equal(t, "Иванов", *doc.Metadata.Collector)
	assert.Nil(t, doc.Metadata.Translator)
	require.Len(t, doc.Sentences, 1)
	assert.Equal(t, Token{Form: "Кот", Lemma: "кот", POS: "NOUN"}, doc.Sentences[0].Tokens[1])

	_, err = DecodeDocuments(strings.NewReader(`{"id": 1`))
	assert.Error(t, err)
}

func TestDecodeEntityGroups(t *testing.T) {
	groups, err := DecodeEntityGroups(strings.NewReader(testEntities))
	require.NoError(t, err)
	require.Len(t, groups, 3)

	// 保留文件中的分组顺序
	assert.Equal(t, "Кот Баюн", groups[0].Key)
	assert.Equal(t, "Без текста", groups[1].Key)
	assert.Equal(t, "Вторая", groups[2].Key)

	assert.Equal(t, "https://skazki.example/kot-bayun", groups[0].ID)
	assert.Equal(t, []Entity{{Text: "Кот Баюн", Class: ClassPerson}}, groups[0].Entities)
	assert.Empty(t, groups[2].Entities)
}

func TestDecodeEntityGroups_Invalid(t *testing.T) {
	for _, input := range []string{
		``,
		`[]`,
		`{"a": {"url": "t1", "entities": []}`,
		`{"a": 42}`,
	} {
		_, err := DecodeEntityGroups(strings.NewReader(input))
		assert.Error(t, err, "input %q", input)
	}
}

// writeCorpus 将测试语料写入临时目录并返回文件来源
func writeCorpus(t *testing.T, files map[string]string) storage.Source {
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	src, err := storage.NewLocalStorage(storage.LocalConfig{Path: dir})
	require.NoError(t, err)
	return src
}

func TestLoad(t *testing.T) {
	src := writeCorpus(t, map[string]string{
		"tales.json":    testDocuments,
		"entities.json": testEntities,
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	idx, err := Load(context.Background(), src, "tales.json", "entities.json", logger)
	require.NoError(t, err)

	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, []string{"https://skazki.example/kot-bayun", "t2"}, idx.IDs())
	assert.Equal(t, []Entity{{Text: "Кот Баюн", Class: ClassPerson}}, idx.Entities("https://skazki.example/kot-bayun"))
	assert.Equal(t, 1, idx.OrphanEntityGroups())
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()

	src := writeCorpus(t, map[string]string{"tales.json": testDocuments})
	_, err := Load(ctx, src, "tales.json", "entities.json", nil)
	assert.True(t, errors.Is(err, storage.ErrFileNotFound))
	assert.Contains(t, err.Error(), "entities.json")
	assert.Contains(t, err.Error(), "available: tales.json")

	src = writeCorpus(t, map[string]string{
		"tales.json":    `not json`,
		"entities.json": testEntities,
	})
	_, err = Load(ctx, src, "tales.json", "entities.json", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "tales.json")
}
