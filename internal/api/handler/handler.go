package handler

import (
	"github.com/d60-Lab/restaurant-pos/internal/service"
	"github.com/d60-Lab/restaurant-pos/internal/ws"
)

// Handler 聚合所有 HTTP 处理器依赖
type Handler struct {
	auth     *service.AuthService
	orders   *service.OrderService
	payments *service.PaymentService
	coupons  *service.CouponService
	loyalty  *service.LoyaltyService
	catalog  *service.CatalogService
	hub      *ws.Hub
}

func New(
	auth *service.AuthService,
	orders *service.OrderService,
	payments *service.PaymentService,
	coupons *service.CouponService,
	loyalty *service.LoyaltyService,
	catalog *service.CatalogService,
	hub *ws.Hub,
) *Handler {
	return &Handler{
		auth:     auth,
		orders:   orders,
		payments: payments,
		coupons:  coupons,
		loyalty:  loyalty,
		catalog:  catalog,
		hub:      hub,
	}
}
