package handler

import (
	"log/slog"
	"net/http"
	"time"

	mfs "github.com/CageChen/cspellio/internal/fs"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the API routes for backend onto a new gin engine.
func NewRouter(backend mfs.CSpellIO, log *slog.Logger) *gin.Engine {
	if log == nil {
		log = slog.Default()
	}
	fileHandler := NewFileHandler(backend, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(corsMiddleware())

	api := r.Group("/api")
	{
		api.GET("/files/*path", fileHandler.GetFile)
		api.PUT("/files/*path", fileHandler.PutFile)
		api.GET("/stat/*path", fileHandler.GetStat)
		api.GET("/url/*path", fileHandler.GetURL)
		api.GET("/text/*path", fileHandler.GetText)
		api.POST("/compare", fileHandler.Compare)
	}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
