package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

var startTime = time.Now()

const version = "1.0.0"

// ClientCounter reports connected socket clients.
type ClientCounter interface {
	ClientCount() int
}

// HealthCheck returns server health status plus host load. Host figures are
// omitted when the platform cannot report them.
func HealthCheck(clients ClientCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"status":  "ok",
			"service": "swimpace-api",
			"version": version,
			"uptime":  time.Since(startTime).String(),
		}
		if clients != nil {
			body["ws_clients"] = clients.ClientCount()
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
			body["mem_used_percent"] = vm.UsedPercent
		}
		if pct, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pct) > 0 {
			body["cpu_percent"] = pct[0]
		}

		c.JSON(http.StatusOK, body)
	}
}
