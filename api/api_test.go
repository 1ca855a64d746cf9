package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fyerfyer/tale-search/api/handler"
	"github.com/fyerfyer/tale-search/api/middleware"
	"github.com/fyerfyer/tale-search/api/model"
	"github.com/fyerfyer/tale-search/internal/cache"
	"github.com/fyerfyer/tale-search/internal/corpus"
	"github.com/fyerfyer/tale-search/internal/database"
	"github.com/fyerfyer/tale-search/internal/repository"
	"github.com/fyerfyer/tale-search/internal/search"
	"github.com/fyerfyer/tale-search/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const nestedID = "skazki/kot-bayun"

// newTestIndex 构造测试用的语料库，包含一个带斜杠的ID
func newTestIndex() *corpus.Index {
	translator := "Н. Перевод"
	var docs []corpus.Document
	docs = append(docs, corpus.Document{
		ID:       nestedID,
		Metadata: corpus.Metadata{Title: "Кот Баюн", Translator: &translator},
		Sentences: []corpus.Sentence{
			{Text: "Кот Баюн пел песни.", Tokens: []corpus.Token{{Form: "Кот", Lemma: "кот"}, {Form: "пел", Lemma: "петь"}}},
		},
	})
	// 再加入11篇，使列表共两页
	for i := 1; i <= 11; i++ {
		docs = append(docs, corpus.Document{
			ID:       fmt.Sprintf("t%02d", i),
			Metadata: corpus.Metadata{Title: fmt.Sprintf("Сказка %d", i)},
			Sentences: []corpus.Sentence{
				{Text: fmt.Sprintf("Иван пошёл %d.", i), Tokens: []corpus.Token{{Form: "Иван", Lemma: "иван"}}},
			},
		})
	}
	groups := []corpus.EntityGroup{
		{ID: nestedID, Entities: []corpus.Entity{{Text: "Кот Баюн", Class: corpus.ClassPerson}}},
		{ID: "t01", Entities: []corpus.Entity{{Text: "Иван", Class: corpus.ClassPerson}}},
	}
	return corpus.NewIndex(docs, groups)
}

// setupTestRouter 创建测试路由
func setupTestRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.GetLogger().SetLevel(logrus.PanicLevel)

	dsn := fmt.Sprintf("file:api_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	c, err := cache.NewMemoryCache(cache.DefaultConfig())
	require.NoError(t, err)

	index := newTestIndex()
	taleService := services.NewTaleService(index)
	searchService := services.NewSearchService(
		search.NewEngine(index),
		c,
		repository.NewSearchLogRepositoryWithDB(db),
		services.WithSearchLogger(middleware.GetLogger()),
	)

	return SetupRouter(handler.NewTaleHandler(taleService), handler.NewSearchHandler(searchService))
}

// doGet 发送GET请求
func doGet(router *gin.Engine, url string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeData 解析统一响应并把data解码到out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) model.Response {
	var envelope struct {
		model.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	if out != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
	return envelope.Response
}

func TestListTales(t *testing.T) {
	router := setupTestRouter(t)

	w := doGet(router, "/api/tales")
	require.Equal(t, http.StatusOK, w.Code)

	var list model.TaleListResponse
	resp := decodeData(t, w, &list)
	assert.Equal(t, 0, resp.Code)
	assert.NotEmpty(t, resp.TraceID)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 2, list.Pages)
	assert.Equal(t, 12, list.Total)
	require.Len(t, list.Tales, 10)
	assert.Equal(t, nestedID, list.Tales[0].ID)
	assert.Equal(t, 1, list.Tales[0].SentenceCount)
	require.NotNil(t, list.Tales[0].Translator)
	assert.Nil(t, list.Tales[0].Collector)

	t.Run("second page", func(t *testing.T) {
		var list model.TaleListResponse
		decodeData(t, doGet(router, "/api/tales?page=2"), &list)
		assert.Len(t, list.Tales, 2)
		assert.Equal(t, 2, list.Page)
	})

	t.Run("past the end", func(t *testing.T) {
		var list model.TaleListResponse
		decodeData(t, doGet(router, "/api/tales?page=9"), &list)
		assert.Empty(t, list.Tales)
		assert.Equal(t, 12, list.Total)
	})

	t.Run("non positive page", func(t *testing.T) {
		for _, page := range []string{"0", "-1"} {
			w := doGet(router, "/api/tales?page="+page)
			require.Equal(t, http.StatusOK, w.Code)

			var list model.TaleListResponse
			decodeData(t, w, &list)
			assert.Empty(t, list.Tales, "page=%s", page)
			assert.NotNil(t, list.Tales)
			assert.Equal(t, 12, list.Total)
		}
	})

	t.Run("unparsable page", func(t *testing.T) {
		var list model.TaleListResponse
		decodeData(t, doGet(router, "/api/tales?page=abc"), &list)
		assert.Equal(t, 1, list.Page)
		assert.Len(t, list.Tales, 10)
	})
}

func TestGetTale(t *testing.T) {
	router := setupTestRouter(t)

	w := doGet(router, "/api/tales/"+nestedID)
	require.Equal(t, http.StatusOK, w.Code)

	var tale model.TaleResponse
	decodeData(t, w, &tale)
	assert.Equal(t, nestedID, tale.ID)
	assert.Equal(t, "Кот Баюн", tale.Title())
	require.Len(t, tale.Entities, 1)
	assert.Equal(t, corpus.ClassPerson, tale.Entities[0].Class)

	t.Run("no entities", func(t *testing.T) {
		var tale model.TaleResponse
		decodeData(t, doGet(router, "/api/tales/t05"), &tale)
		assert.NotNil(t, tale.Entities)
		assert.Empty(t, tale.Entities)
	})

	t.Run("not found", func(t *testing.T) {
		w := doGet(router, "/api/tales/missing")
		assert.Equal(t, http.StatusNotFound, w.Code)

		resp := decodeData(t, w, nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, middleware.ErrorTypeNotFound, resp.Error)
	})

	t.Run("empty id", func(t *testing.T) {
		w := doGet(router, "/api/tales/")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSearch(t *testing.T) {
	router := setupTestRouter(t)

	t.Run("lemma", func(t *testing.T) {
		var out model.SearchResponse
		decodeData(t, doGet(router, "/api/search?q=%20%D0%9A%D0%BE%D1%82%20"), &out) // " Кот "
		assert.Equal(t, "Кот", out.Query)
		assert.Equal(t, "lemma", out.Mode)
		assert.Equal(t, "", out.EntTypeFilter)
		require.Equal(t, 1, out.Total)
		assert.Equal(t, nestedID, out.Results[0].DocumentID)
		assert.Equal(t, "Кот", out.Results[0].Query)
		assert.False(t, out.Cached)
	})

	t.Run("cached", func(t *testing.T) {
		var out model.SearchResponse
		decodeData(t, doGet(router, "/api/search?q=%D0%9A%D0%BE%D1%82"), &out)
		assert.True(t, out.Cached)
		assert.Equal(t, 1, out.Total)
	})

	t.Run("entity with filter", func(t *testing.T) {
		var out model.SearchResponse
		decodeData(t, doGet(router, "/api/search?q=%D0%B8%D0%B2%D0%B0%D0%BD&mode=entity&ent_type=PERSON"), &out) // "иван"
		assert.Equal(t, "entity", out.Mode)
		assert.Equal(t, "person", out.EntTypeFilter)
		require.Equal(t, 1, out.Total)
		assert.Equal(t, "t01", out.Results[0].DocumentID)
		assert.Equal(t, "Иван", out.Results[0].EntityText)
		assert.Equal(t, corpus.ClassPerson, out.Results[0].EntityType)
	})

	t.Run("entity with other class", func(t *testing.T) {
		var out model.SearchResponse
		decodeData(t, doGet(router, "/api/search?q=%D0%B8%D0%B2%D0%B0%D0%BD&mode=entity&ent_type=location"), &out)
		assert.Equal(t, 0, out.Total)
		assert.NotNil(t, out.Results)
	})

	t.Run("unknown or long mode", func(t *testing.T) {
		for _, mode := range []string{"fuzzy", strings.Repeat("x", 21)} {
			w := doGet(router, "/api/search?q=%D0%BA%D0%BE%D1%82&mode="+mode)
			require.Equal(t, http.StatusOK, w.Code, "mode=%s", mode)

			var out model.SearchResponse
			decodeData(t, w, &out)
			assert.Equal(t, mode, out.Mode)
			assert.Equal(t, 0, out.Total)
			assert.NotNil(t, out.Results)
		}
	})

	t.Run("long entity filter", func(t *testing.T) {
		filter := strings.Repeat("y", 21)
		w := doGet(router, "/api/search?q=%D0%B8%D0%B2%D0%B0%D0%BD&mode=entity&ent_type="+filter)
		require.Equal(t, http.StatusOK, w.Code)

		var out model.SearchResponse
		decodeData(t, w, &out)
		assert.Equal(t, filter, out.EntTypeFilter)
		assert.Equal(t, 0, out.Total)
	})

	t.Run("empty query", func(t *testing.T) {
		w := doGet(router, "/api/search?q=")
		require.Equal(t, http.StatusOK, w.Code)
		var out model.SearchResponse
		decodeData(t, w, &out)
		assert.Equal(t, 0, out.Total)
		assert.NotNil(t, out.Results)
	})
}

func TestRecentAndPopularSearches(t *testing.T) {
	router := setupTestRouter(t)

	doGet(router, "/api/search?q=%D0%BA%D0%BE%D1%82")
	doGet(router, "/api/search?q=%D0%BA%D0%BE%D1%82")
	doGet(router, "/api/search?q=%D0%B8%D0%B2%D0%B0%D0%BD")

	var recent model.SearchLogListResponse
	decodeData(t, doGet(router, "/api/search/recent?limit=2"), &recent)
	require.Len(t, recent.Searches, 2)
	assert.Equal(t, "иван", recent.Searches[0].Query)
	assert.Equal(t, 11, recent.Searches[0].ResultCount)

	var popular model.PopularQueryResponse
	decodeData(t, doGet(router, "/api/search/popular"), &popular)
	require.NotEmpty(t, popular.Queries)
	assert.Equal(t, "кот", popular.Queries[0].Query)
	assert.Equal(t, int64(2), popular.Queries[0].Count)

	t.Run("invalid limit", func(t *testing.T) {
		w := doGet(router, "/api/search/recent?limit=1000")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeData(t, w, nil)
		assert.Equal(t, middleware.ErrorTypeValidation, resp.Error)
	})
}

func TestHealthAndTraceID(t *testing.T) {
	router := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(middleware.TraceIDHeader, "trace-abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "trace-abc", w.Header().Get(middleware.TraceIDHeader))

	var health model.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 12, health.Tales)

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/search", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}
