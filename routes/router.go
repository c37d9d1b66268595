package routes

import (
	"net/http"

	"ecolibres-backend/middleware"
	"ecolibres-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterConfig adalah pengaturan engine gin.
type RouterConfig struct {
	AllowedOrigins []string
	BodyLimitBytes int64
	UploadsDir     string
}

// NewRouter menyusun engine gin: middleware, semua handler, /metrics, static uploads, 404.
func NewRouter(cfg RouterConfig, log *zap.Logger, users *UserHandler, contact *ContactHandler, system *SystemHandler) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(log),
		middleware.Metrics(),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			log.Error("panic recovered",
				zap.Any("panic", recovered),
				zap.String("request_id", middleware.GetRequestID(c)),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, utils.BuildResponseFailed("Error interno del servidor", nil))
		}),
		middleware.CORS(cfg.AllowedOrigins),
	)
	if cfg.BodyLimitBytes > 0 {
		r.Use(middleware.BodyLimit(cfg.BodyLimitBytes))
	}

	users.SetupUserRoutes(r)
	contact.SetupContactRoutes(r)
	system.SetupSystemRoutes(r)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.UploadsDir != "" {
		r.Static("/api/uploads", cfg.UploadsDir)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, utils.BuildResponseFailed("Ruta no encontrada: "+c.Request.Method+" "+c.Request.URL.Path, nil))
	})

	return r
}
