package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jengzang/incidentmap/internal/config"
	"github.com/jengzang/incidentmap/internal/dataset"
	"github.com/jengzang/incidentmap/internal/handler"
	"github.com/jengzang/incidentmap/internal/middleware"
	"github.com/jengzang/incidentmap/internal/service"
)

// SetupRouter wires the HTTP adapter. ctx bounds background work started by
// middleware.
func SetupRouter(ctx context.Context, cfg *config.Config, session *service.Session, boundary *dataset.Boundary, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(log))

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Incident map is running",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	explorer := handler.NewExplorerHandler(session, boundary)
	stream := handler.NewStreamHandler(session, log)

	api := r.Group("/api/v1")
	if cfg.Server.RateLimit > 0 && cfg.Server.RateWindow > 0 {
		api.Use(middleware.RateLimit(middleware.NewRateLimiter(ctx, cfg.Server.RateLimit, cfg.Server.RateWindow)))
	}
	if cfg.Server.JWTSecret != "" {
		api.Use(middleware.Auth(cfg.Server.JWTSecret))
	}
	{
		api.GET("/state", explorer.GetState)
		api.GET("/ranges", explorer.GetRanges)
		api.GET("/snapshot", explorer.GetSnapshot)
		api.GET("/boundary", explorer.GetBoundary)
		api.GET("/stream", stream.Stream)

		records := api.Group("/records")
		{
			records.GET("", explorer.GetVisible)
			records.GET("/:case", explorer.GetRecord)
		}

		filters := api.Group("/filters")
		{
			filters.POST("/quantitative", explorer.UpdateQuantitativeFilter)
			filters.POST("/nominal", explorer.UpdateNominalFilter)
			filters.POST("/reset", explorer.ResetFilters)
		}

		api.POST("/color", explorer.SelectColorAttribute)

		view := api.Group("/view")
		{
			view.POST("/transform", explorer.ApplyTransform)
			view.POST("/gesture", explorer.Gesture)
		}

		api.POST("/hover", explorer.HoverIn)
		api.DELETE("/hover", explorer.HoverOut)
	}

	return r
}
