package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the /v1 endpoints with the given router group.
//
// Endpoints:
//
//	POST /v1/analyze        - Analyze a snippet
//	POST /v1/review         - Analyze and review a snippet
//	GET  /v1/history        - List stored analyses, newest first
//	GET  /v1/history/stats  - Aggregate history statistics
//	GET  /v1/history/:id    - One stored analysis
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.POST("/analyze", h.HandleAnalyze)
	rg.POST("/review", h.HandleReview)

	history := rg.Group("/history")
	{
		history.GET("", h.HandleListHistory)
		history.GET("/stats", h.HandleHistoryStats)
		history.GET("/:id", h.HandleGetHistory)
	}
}

// NewRouter builds the complete engine: health, the legacy metrics route,
// the /v1 group and the Prometheus endpoint when m is non-nil.
func NewRouter(h *Handlers, m *Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", h.HandleHealth)
	router.POST("/metrics/", h.HandleAnalyze)
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	RegisterRoutes(router.Group("/v1"), h)
	return router
}
