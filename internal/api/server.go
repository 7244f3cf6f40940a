package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates the JSON API engine. Every route lives under /api so
// the engine can be mounted on the site mux as is.
func NewServer(handler *Handler) *gin.Engine {
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	api := r.Group("/api")
	{
		api.GET("/health", handler.GetHealth)
		api.GET("/posts", handler.ListPosts)

		api.POST("/join", handler.Join)
		api.POST("/sendEmail", handler.SendEmail)

		api.GET("/copy", handler.GetCopy)
		api.POST("/copy", handler.PostCopy)

		api.POST("/webhooks", handler.PostWebhook)
	}
}
