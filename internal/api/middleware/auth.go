package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/restaurant-pos/internal/service"
	"github.com/d60-Lab/restaurant-pos/pkg/response"
)

const (
	ctxUserID = "auth_user_id"
	ctxRole   = "auth_role"
)

// Auth 解析 Bearer token 并注入用户上下文
func Auth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}
		claims, err := auth.ParseToken(token)
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// AdminOnly 只放行 admin 角色，须挂在 Auth 之后
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Role(c) != "admin" {
			response.Forbidden(c, "not authorized")
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserID 读取当前登录用户 id
func UserID(c *gin.Context) uint {
	if v, ok := c.Get(ctxUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// Role 读取当前登录用户角色
func Role(c *gin.Context) string {
	if v, ok := c.Get(ctxRole); ok {
		if r, ok := v.(string); ok {
			return r
		}
	}
	return ""
}
