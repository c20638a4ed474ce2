package middleware

import (
    "context"
    "sync"
    "time"

    "github.com/gin-gonic/gin"

    "github.com/GTDGit/fleetdesk_api/internal/utils"
)

const (
    defaultAuthAttempts = 5
    defaultAuthWindow   = time.Minute
)

// Rate limiter ONLY for failed login attempts
type InvalidAuthRateLimiter struct {
    mu       sync.Mutex
    attempts map[string]*attemptInfo
    limit    int
    window   time.Duration
    now      func() time.Time
}

type attemptInfo struct {
    count   int
    firstAt time.Time
}

// NewInvalidAuthRateLimiter allows 5 failed attempts per IP per minute.
func NewInvalidAuthRateLimiter() *InvalidAuthRateLimiter {
    return newInvalidAuthRateLimiter(defaultAuthAttempts, defaultAuthWindow, time.Now)
}

func newInvalidAuthRateLimiter(limit int, window time.Duration, now func() time.Time) *InvalidAuthRateLimiter {
    return &InvalidAuthRateLimiter{
        attempts: make(map[string]*attemptInfo),
        limit:    limit,
        window:   window,
        now:      now,
    }
}

// Blocked reports whether ip used up its failed attempts in the current window.
func (r *InvalidAuthRateLimiter) Blocked(ip string) bool {
    r.mu.Lock()
    defer r.mu.Unlock()

    info, exists := r.attempts[ip]
    if !exists {
        return false
    }
    if r.now().Sub(info.firstAt) > r.window {
        delete(r.attempts, ip)
        return false
    }
    return info.count >= r.limit
}

// Fail counts one failed attempt for ip.
func (r *InvalidAuthRateLimiter) Fail(ip string) {
    r.mu.Lock()
    defer r.mu.Unlock()

    now := r.now()
    info, exists := r.attempts[ip]
    // Reset if window expired
    if !exists || now.Sub(info.firstAt) > r.window {
        r.attempts[ip] = &attemptInfo{count: 1, firstAt: now}
        return
    }
    info.count++
}

// Reset forgets ip after a successful login.
func (r *InvalidAuthRateLimiter) Reset(ip string) {
    r.mu.Lock()
    delete(r.attempts, ip)
    r.mu.Unlock()
}

// Handle rejects blocked IPs with 429 and counts every 401 response as a
// failed attempt.
func (r *InvalidAuthRateLimiter) Handle() gin.HandlerFunc {
    return func(c *gin.Context) {
        ip := c.ClientIP()
        if r.Blocked(ip) {
            utils.Error(c, 429, "TOO_MANY_REQUESTS", "Too many invalid authentication attempts")
            c.Abort()
            return
        }

        c.Next()

        switch status := c.Writer.Status(); {
        case status == 401:
            r.Fail(ip)
        case status >= 200 && status < 300:
            r.Reset(ip)
        }
    }
}

// Start evicts expired entries every five minutes until ctx is done.
func (r *InvalidAuthRateLimiter) Start(ctx context.Context) {
    ticker := time.NewTicker(5 * time.Minute)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            r.cleanup()
        }
    }
}

func (r *InvalidAuthRateLimiter) cleanup() {
    r.mu.Lock()
    defer r.mu.Unlock()
    now := r.now()
    for ip, info := range r.attempts {
        if now.Sub(info.firstAt) > r.window {
            delete(r.attempts, ip)
        }
    }
}
