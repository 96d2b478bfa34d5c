package router

import (
	"net/http"
	"time"

	"bacgate/internal/admin/api"
	"bacgate/internal/object"
	"bacgate/internal/pkg"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter 配置 Gin 路由
func SetupRouter(store *object.Store, metrics *pkg.Metrics, version string, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), accessLog(logger))

	// 配置 CORS, 接口只读
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowMethods = []string{"GET", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	r.Use(cors.New(config))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	objects := api.NewObjectHandler(store, version)
	apiV1 := r.Group("/api/v1")
	{
		apiV1.GET("/device", objects.GetDevice)       // GET /api/v1/device
		apiV1.GET("/objects", objects.ListObjects)    // GET /api/v1/objects
		apiV1.GET("/objects/:key", objects.GetObject) // GET /api/v1/objects/:key
		apiV1.GET("/snapshot", objects.GetSnapshot)   // GET /api/v1/snapshot
	}
	return r
}

// accessLog 用 zap 记录每个请求
func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("admin request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
