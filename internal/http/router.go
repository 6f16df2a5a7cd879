package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(h *Handler, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), loopbackOnly())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     normalizeOrigins(allowedOrigins),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Cache-Control"},
		AllowCredentials: true,
		MaxAge:           10 * time.Minute,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.POST("/messages", h.PostMessage)
		api.GET("/events", h.Events)
	}

	return r
}
