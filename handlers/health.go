package handlers

import (
	"context"
	"net/http"
	"time"

	"staybook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

type HealthHandler struct {
	RedisClients []*redis.Client
	PingStore    func(context.Context) error
}

// HealthCheckHandler serves GET /health with a fresh dependency check.
func (h *HealthHandler) HealthCheckHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := utils.CheckHealth(ctx, h.RedisClients, h.PingStore)
	code := http.StatusOK
	state := "ok"
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "checks": status})
}
