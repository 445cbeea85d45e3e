package middleware

import (
	"golang.org/x/time/rate"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/restaurant-pos/pkg/response"
)

// RateLimit 全局令牌桶限流，挂在可被匿名刷的端点上（优惠码试探）
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(429, response.Response{Code: 429, Message: "too many requests"})
			return
		}
		c.Next()
	}
}
