package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fyerfyer/tale-search/api/middleware"
	"github.com/fyerfyer/tale-search/api/model"
	"github.com/fyerfyer/tale-search/internal/corpus"
	"github.com/fyerfyer/tale-search/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TaleHandler 处理故事浏览相关的API请求
type TaleHandler struct {
	taleService *services.TaleService // 故事服务
	logger      *logrus.Logger        // 日志记录器
}

// NewTaleHandler 创建新的故事处理器
func NewTaleHandler(taleService *services.TaleService) *TaleHandler {
	return &TaleHandler{
		taleService: taleService,
		logger:      middleware.GetLogger(),
	}
}

// ListTales 获取故事列表
// GET /api/tales?page=N
func (h *TaleHandler) ListTales(c *gin.Context) {
	var req model.TaleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("无效的请求参数", err.Error()))
		return
	}

	page := h.taleService.List(req.GetPage())

	resp := model.NewSuccessResponse(model.TaleListResponse{
		Tales:    model.ConvertToTaleSummaries(page.Tales),
		Page:     page.Page,
		PageSize: page.PageSize,
		Pages:    page.Pages,
		Total:    page.Total,
	})
	resp.TraceID = middleware.GetTraceID(c)
	c.JSON(http.StatusOK, resp)
}

// GetTale 获取故事详情及其实体
// GET /api/tales/*id
func (h *TaleHandler) GetTale(c *gin.Context) {
	// 故事ID通常是URL，可能包含斜杠
	id := strings.TrimPrefix(c.Param("id"), "/")

	doc, entities, err := h.taleService.Get(id)
	if err != nil {
		if errors.Is(err, corpus.ErrDocumentNotFound) {
			middleware.HandleError(c, middleware.NewNotFoundError("未找到故事"))
			return
		}
		middleware.HandleError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"tale_id":  doc.ID,
		"entities": len(entities),
	}).Debug("Tale loaded")

	resp := model.NewSuccessResponse(model.TaleResponse{
		Document: doc,
		Entities: entities,
	})
	resp.TraceID = middleware.GetTraceID(c)
	c.JSON(http.StatusOK, resp)
}

// Health 健康检查
// GET /api/health
func (h *TaleHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, model.HealthResponse{
		Status: "ok",
		Tales:  h.taleService.Count(),
	})
}
