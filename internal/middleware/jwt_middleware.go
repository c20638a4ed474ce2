package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/fleetdesk_api/internal/utils"
)

const (
	ctxUserID = "user_id"
	ctxEmail  = "email"
)

type JWTMiddleware struct{}

func NewJWTMiddleware() *JWTMiddleware {
	return &JWTMiddleware{}
}

func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(c, 401, "UNAUTHORIZED", "Missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.Error(c, 401, "UNAUTHORIZED", "Invalid authorization header")
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(parts[1])
		if err != nil {
			utils.Error(c, 401, "INVALID_TOKEN", "Invalid or expired token")
			c.Abort()
			return
		}

		SetUser(c, claims)
		c.Next()
	}
}

// SetUser stores the authenticated admin on the request context.
func SetUser(c *gin.Context, claims *utils.Claims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxEmail, claims.Email)
}

// UserID returns the authenticated admin id in the string form used by
// activity records and quote stores. It is empty for anonymous requests.
func UserID(c *gin.Context) string {
	id := c.GetInt(ctxUserID)
	if id == 0 {
		return ""
	}
	return strconv.Itoa(id)
}

// UserEmail returns the authenticated admin email.
func UserEmail(c *gin.Context) string {
	return c.GetString(ctxEmail)
}
