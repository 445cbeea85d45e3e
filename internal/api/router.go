package api

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/restaurant-pos/internal/api/handler"
	"github.com/d60-Lab/restaurant-pos/internal/api/middleware"
	"github.com/d60-Lab/restaurant-pos/internal/service"
)

// NewRouter 组装路由
func NewRouter(h *handler.Handler, auth *service.AuthService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// 实时通道与网关回调不走 JWT：前者是屏幕设备，后者靠签名鉴权
	r.GET("/ws/:client_id", h.WebSocket)

	v1 := r.Group("/api/v1")

	v1.POST("/auth/login", h.Login)
	v1.POST("/payments/gateway/webhook", h.GatewayWebhook)
	v1.POST("/coupons/validate", middleware.RateLimit(10, 20), h.ValidateCoupon)

	authed := v1.Group("", middleware.Auth(auth))
	{
		authed.GET("/menu", h.ListMenu)
		authed.GET("/tables", h.ListTables)
		authed.PUT("/tables/:id", h.UpdateTable)

		authed.GET("/orders", h.ListOrders)
		authed.POST("/orders", h.CreateOrder)
		authed.GET("/orders/:id", h.GetOrder)
		authed.PUT("/orders/:id", h.UpdateOrder)

		authed.POST("/payments", h.RecordPayment)
		authed.GET("/payments/:id", h.GetPayment)
		authed.POST("/payments/online/intents", h.CreateIntent)
		authed.POST("/payments/online/intents/:id/confirm", h.ConfirmIntent)

		authed.POST("/loyalty/enroll", h.EnrollLoyalty)
		authed.GET("/loyalty/:phone", h.GetLoyalty)

		authed.GET("/settings/delivery", h.GetDeliverySettings)
	}

	admin := authed.Group("", middleware.AdminOnly())
	{
		admin.POST("/users", h.CreateUser)

		admin.POST("/menu", h.CreateMenuItem)
		admin.PUT("/menu/:id", h.UpdateMenuItem)
		admin.DELETE("/menu/:id", h.DeleteMenuItem)

		admin.POST("/tables", h.CreateTable)

		admin.GET("/orders/stats", h.OrderStats)
		admin.DELETE("/orders/:id", h.DeleteOrder)

		admin.POST("/coupons", h.CreateCoupon)
		admin.GET("/coupons", h.ListCoupons)
		admin.GET("/coupons/:id", h.GetCoupon)
		admin.PUT("/coupons/:id", h.UpdateCoupon)
		admin.DELETE("/coupons/:id", h.DeleteCoupon)

		admin.PUT("/settings/delivery", h.UpdateDeliverySettings)
	}

	return r
}
