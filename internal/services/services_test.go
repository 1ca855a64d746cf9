package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fyerfyer/tale-search/internal/cache"
	"github.com/fyerfyer/tale-search/internal/corpus"
	"github.com/fyerfyer/tale-search/internal/database"
	"github.com/fyerfyer/tale-search/internal/models"
	"github.com/fyerfyer/tale-search/internal/repository"
	"github.com/fyerfyer/tale-search/pkg/taskqueue"
)

// quietLogger 测试中使用的静默日志
func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// newTestIndex 构造测试用的语料库
func newTestIndex() *corpus.Index {
	collector := "Афанасьев"
	docs := []corpus.Document{
		{
			ID:       "t1",
			Metadata: corpus.Metadata{Title: "Кот Баюн", Collector: &collector},
			Sentences: []corpus.Sentence{
				{Text: "Кот бежал.", Tokens: []corpus.Token{{Form: "Кот", Lemma: "кот"}, {Form: "бежал", Lemma: "бежать"}}},
				{Text: "Пришёл Кот Баюн в лес.", Tokens: []corpus.Token{{Form: "Кот", Lemma: "кот"}, {Form: "лес", Lemma: "лес"}}},
			},
		},
		{
			ID:       "t2",
			Metadata: corpus.Metadata{Title: "Иван-царевич"},
			Sentences: []corpus.Sentence{
				{Text: "Иван поехал в лес.", Tokens: []corpus.Token{{Form: "Иван", Lemma: "иван"}, {Form: "лес", Lemma: "лес"}}},
			},
		},
	}
	groups := []corpus.EntityGroup{
		{ID: "t1", Entities: []corpus.Entity{
			{Text: "Кот Баюн", Class: corpus.ClassPerson},
			{Text: "лес", Class: corpus.ClassLocation},
		}},
		{ID: "t2", Entities: []corpus.Entity{
			{Text: "Иван", Class: corpus.ClassPerson},
		}},
	}
	return corpus.NewIndex(docs, groups)
}

// setupTestDB 创建内存数据库
func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:services_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// MockSearchLogRepository 模拟搜索记录仓储
type MockSearchLogRepository struct {
	mock.Mock
}

func (m *MockSearchLogRepository) Create(log *models.SearchLog) error {
	args := m.Called(log)
	return args.Error(0)
}

func (m *MockSearchLogRepository) Recent(limit int) ([]*models.SearchLog, error) {
	args := m.Called(limit)
	if logs := args.Get(0); logs != nil {
		return logs.([]*models.SearchLog), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSearchLogRepository) TopQueries(limit int) ([]repository.QueryCount, error) {
	args := m.Called(limit)
	if counts := args.Get(0); counts != nil {
		return counts.([]repository.QueryCount), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSearchLogRepository) WithContext(ctx context.Context) repository.SearchLogRepository {
	return m
}

// MockQueue 模拟任务队列
type MockQueue struct {
	mock.Mock
}

func (m *MockQueue) Enqueue(ctx context.Context, taskType taskqueue.TaskType, payload interface{}) (string, error) {
	args := m.Called(ctx, taskType, payload)
	return args.String(0), args.Error(1)
}

func (m *MockQueue) Close() error {
	return m.Called().Error(0)
}

// MockCache 模拟出错的缓存
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(key string) (string, bool, error) {
	args := m.Called(key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockCache) Set(key string, value string, ttl time.Duration) error {
	return m.Called(key, value, ttl).Error(0)
}

func (m *MockCache) Delete(key string) error {
	return m.Called(key).Error(0)
}

func (m *MockCache) Clear() error {
	return m.Called().Error(0)
}

var (
	_ repository.SearchLogRepository = (*MockSearchLogRepository)(nil)
	_ taskqueue.Queue                = (*MockQueue)(nil)
	_ cache.Cache                    = (*MockCache)(nil)
	_ taskqueue.Handler              = (*SearchLogHandler)(nil)
	errBoom                          = errors.New("boom")
)
