package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danmuck/linkctl/internal/auth"
)

func (e *Endpoint) RegisterRoutes() {
	e.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"uptime":   time.Since(e.Appeared).String(),
			"endpoint": e.Name,
			"version":  "0.0.1",
		})
	})

	e.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	e.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":    true,
			"uptime":   time.Since(e.Appeared).String(),
			"endpoint": e.Name,
			"version":  "0.0.1",
		})
	})

	e.router.GET("/stats", auth.RequireToken(auth.FuncValidator(e.validateToken)), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"endpoint": e.Name,
			"stats":    e.Stats(),
		})
	})
}
