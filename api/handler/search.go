package handler

import (
	"net/http"
	"strings"

	"github.com/fyerfyer/tale-search/api/middleware"
	"github.com/fyerfyer/tale-search/api/model"
	"github.com/fyerfyer/tale-search/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SearchHandler 处理搜索相关的API请求
type SearchHandler struct {
	searchService *services.SearchService // 搜索服务
	logger        *logrus.Logger          // 日志记录器
}

// NewSearchHandler 创建新的搜索处理器
func NewSearchHandler(searchService *services.SearchService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		logger:        middleware.GetLogger(),
	}
}

// Search 执行搜索
// GET /api/search?q=&mode=&ent_type=
func (h *SearchHandler) Search(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("无效的搜索参数", err.Error()))
		return
	}

	traceID := middleware.GetTraceID(c)
	out := h.searchService.Search(c.Request.Context(), services.SearchQuery{
		Query:      req.Query,
		Mode:       req.Mode,
		EntityType: req.EntityType,
		TraceID:    traceID,
	})

	h.logger.WithFields(logrus.Fields{
		middleware.FieldTraceID: traceID,
		"query":                 out.Query,
		"mode":                  out.Mode,
		"results":               len(out.Results),
		"cached":                out.CacheHit,
	}).Info("Search completed")

	resp := model.NewSuccessResponse(model.SearchResponse{
		Query:         out.Query,
		Mode:          string(out.Mode),
		EntTypeFilter: strings.ToLower(req.EntityType),
		Total:         len(out.Results),
		Cached:        out.CacheHit,
		Results:       out.Results,
	})
	resp.TraceID = traceID
	c.JSON(http.StatusOK, resp)
}

// RecentSearches 获取最近的搜索记录
// GET /api/search/recent?limit=N
func (h *SearchHandler) RecentSearches(c *gin.Context) {
	var req model.LimitRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("无效的请求参数", err.Error()))
		return
	}

	logs, err := h.searchService.Recent(c.Request.Context(), req.GetLimit())
	if err != nil {
		middleware.HandleError(c, middleware.NewInternalError("获取搜索记录失败", err.Error()))
		return
	}

	resp := model.NewSuccessResponse(model.SearchLogListResponse{
		Searches: model.ConvertToSearchLogInfos(logs),
	})
	resp.TraceID = middleware.GetTraceID(c)
	c.JSON(http.StatusOK, resp)
}

// PopularSearches 获取热门查询
// GET /api/search/popular?limit=N
func (h *SearchHandler) PopularSearches(c *gin.Context) {
	var req model.LimitRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("无效的请求参数", err.Error()))
		return
	}

	counts, err := h.searchService.Popular(c.Request.Context(), req.GetLimit())
	if err != nil {
		middleware.HandleError(c, middleware.NewInternalError("获取热门查询失败", err.Error()))
		return
	}

	queries := make([]model.PopularQuery, len(counts))
	for i, qc := range counts {
		queries[i] = model.PopularQuery{Query: qc.Query, Mode: qc.Mode, Count: qc.Count}
	}

	resp := model.NewSuccessResponse(model.PopularQueryResponse{Queries: queries})
	resp.TraceID = middleware.GetTraceID(c)
	c.JSON(http.StatusOK, resp)
}
