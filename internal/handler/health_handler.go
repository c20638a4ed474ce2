package handler

import (
    "context"
    "time"

    "github.com/gin-gonic/gin"

    "github.com/GTDGit/fleetdesk_api/internal/utils"
)

var startTime = time.Now()

// Pinger is a dependency whose reachability the health check reports.
type Pinger func(ctx context.Context) error

// HealthHandler provides health endpoint.
type HealthHandler struct {
    database Pinger
    redis    Pinger
    sseCount func() int
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(database, redis Pinger, sseCount func() int) *HealthHandler {
    return &HealthHandler{database: database, redis: redis, sseCount: sseCount}
}

// GetHealth responds with service, Postgres and Redis status. A dependency
// being down turns the response into 503.
func (h *HealthHandler) GetHealth(c *gin.Context) {
    ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
    defer cancel()

    dbStatus := status(ctx, h.database)
    redisStatus := status(ctx, h.redis)

    overall, code := "healthy", 200
    if dbStatus == "disconnected" || redisStatus == "disconnected" {
        overall, code = "degraded", 503
    }

    sseClients := 0
    if h.sseCount != nil {
        sseClients = h.sseCount()
    }

    utils.Success(c, code, "Service is "+overall, gin.H{
        "status":     overall,
        "version":    "1.0.0",
        "uptime":     int(time.Since(startTime).Seconds()),
        "database":   dbStatus,
        "redis":      redisStatus,
        "sseClients": sseClients,
    })
}

func status(ctx context.Context, ping Pinger) string {
    if ping == nil {
        return "disabled"
    }
    if err := ping(ctx); err != nil {
        return "disconnected"
    }
    return "connected"
}
