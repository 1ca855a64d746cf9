package api

import (
	"github.com/fyerfyer/tale-search/api/handler"
	"github.com/fyerfyer/tale-search/api/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRouter 设置API路由
// 配置所有的API端点并应用中间件
func SetupRouter(
	taleHandler *handler.TaleHandler,
	searchHandler *handler.SearchHandler,
) *gin.Engine {
	router := gin.New()

	// 应用全局中间件，追踪ID需要最先设置
	router.Use(middleware.SetTraceID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(Cors())

	// 在调试模式下记录请求体和响应体
	if gin.Mode() == gin.DebugMode {
		router.Use(middleware.RequestLogger())
	}

	api := router.Group("/api")
	{
		// 故事浏览API
		taleGroup := api.Group("/tales")
		{
			// 故事列表 - GET /api/tales?page=N
			taleGroup.GET("", taleHandler.ListTales)

			// 故事详情 - GET /api/tales/*id，ID可以是包含斜杠的URL
			taleGroup.GET("/*id", taleHandler.GetTale)
		}

		// 搜索API
		searchGroup := api.Group("/search")
		{
			// 搜索 - GET /api/search?q=&mode=&ent_type=
			searchGroup.GET("", searchHandler.Search)

			// 最近搜索 - GET /api/search/recent
			searchGroup.GET("/recent", searchHandler.RecentSearches)

			// 热门查询 - GET /api/search/popular
			searchGroup.GET("/popular", searchHandler.PopularSearches)
		}

		// 健康检查API
		api.GET("/health", taleHandler.Health)
	}

	return router
}

// Cors 跨域资源共享中间件
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control, X-Requested-With, X-Trace-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
