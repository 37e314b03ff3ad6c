package transport

import (
	"net/http"

	"github.com/ds124wfegd/dynimage/internal/pkg/stage"
	"github.com/ds124wfegd/dynimage/internal/transport/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func InitRoutes(h *Handler) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery())
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	for _, p := range []stage.Profile{stage.ImageProfile, stage.ButtonProfile, stage.CaptchaProfile} {
		router.GET("/"+p.Name, h.RenderImage(p.Name))
	}

	captcha := router.Group("/captcha")
	{
		captcha.POST("/challenge", h.NewChallenge)
		captcha.POST("/verify", h.VerifyCaptcha)
	}

	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "dynimage",
		})
	})
	return router
}
