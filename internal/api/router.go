package api

import (
	"time"

	"github.com/ChaseRain/lessonslides/internal/infra/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	AllowOrigins []string
	// FilesDir is served under /files; exported bundles land there.
	FilesDir string
}

func NewRouter(deps Deps, cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(deps.Logger))
	r.Use(corsMiddleware(cfg.AllowOrigins))
	r.SetHTMLTemplate(pageTemplates())

	handler := NewHandler(deps)

	r.GET("/health", handler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.FilesDir != "" {
		r.Static("/files", cfg.FilesDir)
	}

	r.GET("/", handler.FormPage)
	r.POST("/", handler.SubmitForm)
	r.GET("/presentation", handler.PresentationPage)
	r.GET("/presentation/slides", handler.SlideList)

	v1 := r.Group("/v1")
	{
		v1.GET("/templates", handler.Templates)

		p := v1.Group("/presentations")
		p.POST("", handler.CreatePresentation)
		p.GET("/:id", handler.GetPresentation)
		p.DELETE("/:id", handler.DeletePresentation)
		p.GET("/:id/events", handler.Events)
		p.POST("/:id/export", handler.Export)
		p.PUT("/:id/slides/:index", handler.UpdateSlide)
		p.DELETE("/:id/slides/:index", handler.DeleteSlide)
		p.POST("/:id/slides/:index/promote", handler.PromoteQuestion)
		p.GET("/:id/slides/:index/render", handler.RenderSlide)
		p.GET("/:id/slides/:index/image.png", handler.SlideImage)
	}

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Accept", "X-Requested-With"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
		)
	}
}
