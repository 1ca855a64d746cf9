package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/fyerfyer/tale-search/internal/cache"
	"github.com/fyerfyer/tale-search/internal/models"
	"github.com/fyerfyer/tale-search/internal/repository"
	"github.com/fyerfyer/tale-search/internal/search"
	"github.com/fyerfyer/tale-search/pkg/taskqueue"
)

// SearchService 搜索服务
// 负责调用搜索引擎、缓存结果并记录查询
type SearchService struct {
	engine   *search.Engine                 // 搜索引擎
	cache    cache.Cache                    // 结果缓存
	cacheTTL time.Duration                  // 缓存有效期
	repo     repository.SearchLogRepository // 搜索记录仓储
	queue    taskqueue.Queue                // 任务队列，为空时同步写入记录
	logger   *logrus.Logger                 // 日志记录器
}

// SearchOption 搜索服务配置选项
type SearchOption func(*SearchService)

// WithCacheTTL 设置缓存时间
func WithCacheTTL(ttl time.Duration) SearchOption {
	return func(s *SearchService) {
		s.cacheTTL = ttl
	}
}

// WithSearchLogQueue 通过任务队列异步写入搜索记录
func WithSearchLogQueue(q taskqueue.Queue) SearchOption {
	return func(s *SearchService) {
		s.queue = q
	}
}

// WithSearchLogger 设置日志记录器
func WithSearchLogger(logger *logrus.Logger) SearchOption {
	return func(s *SearchService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSearchService 创建搜索服务实例
// cache和repo都可以为空，分别表示不缓存和不记录
func NewSearchService(
	engine *search.Engine,
	cache cache.Cache,
	repo repository.SearchLogRepository,
	opts ...SearchOption,
) *SearchService {
	srv := &SearchService{
		engine:   engine,
		cache:    cache,
		cacheTTL: time.Hour,
		repo:     repo,
		logger:   logrus.New(),
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

// SearchQuery 一次搜索请求
type SearchQuery struct {
	Query      string // 查询词
	Mode       string // 搜索模式，空值表示按词元搜索
	EntityType string // 实体类别过滤，空值表示不过滤
	TraceID    string // 请求追踪ID
}

// SearchOutcome 搜索结果
type SearchOutcome struct {
	Query    string          // 去除首尾空白后的查询词
	Mode     search.Mode     // 实际使用的搜索模式
	Filter   search.Filter   // 实际使用的实体过滤
	Results  []search.Result // 结果列表
	CacheHit bool            // 是否命中缓存
}

// Search 执行搜索，缓存和记录失败都不影响结果
func (s *SearchService) Search(ctx context.Context, q SearchQuery) *SearchOutcome {
	req := search.Request{
		Query:      strings.TrimSpace(q.Query),
		Mode:       search.ParseMode(q.Mode),
		EntityType: search.ParseFilter(q.EntityType),
	}
	if req.Mode != search.ModeEntity {
		req.EntityType = search.NoFilter
	}

	out := &SearchOutcome{
		Query:  req.Query,
		Mode:   req.Mode,
		Filter: req.EntityType,
	}
	if req.Query == "" {
		out.Results = []search.Result{}
		return out
	}

	cacheKey := cache.GenerateCacheKey("search", string(req.Mode), req.EntityType.String(), req.Query)
	if results, ok := s.fromCache(cacheKey); ok {
		out.Results = results
		out.CacheHit = true
	} else {
		out.Results = s.engine.Search(req)
		s.toCache(cacheKey, out.Results)
	}

	s.record(ctx, out, q)
	return out
}

// Recent 返回最近的搜索记录
func (s *SearchService) Recent(ctx context.Context, limit int) ([]*models.SearchLog, error) {
	if s.repo == nil {
		return []*models.SearchLog{}, nil
	}
	logs, err := s.repo.WithContext(ctx).Recent(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent searches: %w", err)
	}
	return logs, nil
}

// Popular 返回出现次数最多的查询
func (s *SearchService) Popular(ctx context.Context, limit int) ([]repository.QueryCount, error) {
	if s.repo == nil {
		return []repository.QueryCount{}, nil
	}
	counts, err := s.repo.WithContext(ctx).TopQueries(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load popular searches: %w", err)
	}
	return counts, nil
}

// fromCache 从缓存读取结果
func (s *SearchService) fromCache(key string) ([]search.Result, bool) {
	if s.cache == nil {
		return nil, false
	}
	value, found, err := s.cache.Get(key)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to read search cache")
		return nil, false
	}
	if !found {
		return nil, false
	}

	var results []search.Result
	if err := json.Unmarshal([]byte(value), &results); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to decode cached search results")
		return nil, false
	}
	if results == nil {
		results = []search.Result{}
	}
	return results, true
}

// toCache 写入缓存
func (s *SearchService) toCache(key string, results []search.Result) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := s.cache.Set(key, string(data), s.cacheTTL); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to write search cache")
	}
}

// record 记录一次搜索
func (s *SearchService) record(ctx context.Context, out *SearchOutcome, q SearchQuery) {
	if s.repo == nil && s.queue == nil {
		return
	}

	// 记录用户输入的过滤值，无法识别的值也原样保留
	entityType := ""
	if out.Mode == search.ModeEntity {
		entityType = strings.ToLower(strings.TrimSpace(q.EntityType))
	}

	payload := taskqueue.SearchLogPayload{
		Query:       out.Query,
		Mode:        string(out.Mode),
		EntityType:  entityType,
		ResultCount: len(out.Results),
		CacheHit:    out.CacheHit,
		TraceID:     q.TraceID,
		SearchedAt:  time.Now(),
	}
	if len(out.Results) > 0 {
		payload.Metadata = map[string]string{"first_tale_id": out.Results[0].DocumentID}
	}

	if s.queue != nil {
		_, err := s.queue.Enqueue(ctx, taskqueue.TaskSearchLog, payload)
		if err == nil {
			return
		}
		s.logger.WithError(err).Warn("Failed to enqueue search log, writing directly")
	}

	if s.repo == nil {
		return
	}
	if err := s.repo.WithContext(ctx).Create(newSearchLog(payload)); err != nil {
		s.logger.WithError(err).WithField("query", out.Query).Warn("Failed to save search log")
	}
}

// newSearchLog 将任务载荷转换为数据库记录
func newSearchLog(p taskqueue.SearchLogPayload) *models.SearchLog {
	log := &models.SearchLog{
		Query:       p.Query,
		Mode:        truncate(p.Mode, models.MaxModeLength),
		EntityType:  truncate(p.EntityType, models.MaxEntityTypeLength),
		ResultCount: p.ResultCount,
		CacheHit:    p.CacheHit,
		TraceID:     p.TraceID,
		CreatedAt:   p.SearchedAt,
	}
	if len(p.Metadata) > 0 {
		if data, err := json.Marshal(p.Metadata); err == nil {
			log.Metadata = datatypes.JSON(data)
		}
	}
	return log
}

// truncate 按字符截断，保证写入定长列
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
