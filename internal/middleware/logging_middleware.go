package middleware

import (
    "time"

    "github.com/gin-gonic/gin"
    "github.com/google/uuid"
    "github.com/rs/zerolog/log"
)

const requestIDHeader = "X-Request-Id"

// LoggingMiddleware logs basic request/response details and injects a request_id into context.
// An incoming X-Request-Id is reused so dashboard and API logs line up.
func LoggingMiddleware() gin.HandlerFunc {
    return func(c *gin.Context) {
        start := time.Now()
        path := c.Request.URL.Path

        requestID := c.GetHeader(requestIDHeader)
        if requestID == "" || len(requestID) > 64 {
            requestID = uuid.New().String()[:8]
        }
        c.Set("request_id", requestID)
        c.Header(requestIDHeader, requestID)

        c.Next()

        latency := time.Since(start)
        status := c.Writer.Status()

        event := log.Info()
        if status >= 500 {
            event = log.Error()
        }
        if len(c.Errors) > 0 {
            event = event.Str("errors", c.Errors.String())
        }
        event.
            Str("request_id", requestID).
            Str("method", c.Request.Method).
            Str("path", path).
            Int("status", status).
            Dur("latency", latency).
            Str("ip", c.ClientIP()).
            Str("user_id", UserID(c)).
            Msg("HTTP Request")
    }
}
