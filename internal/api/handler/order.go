package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/restaurant-pos/internal/api/middleware"
	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
	"github.com/d60-Lab/restaurant-pos/internal/service"
	"github.com/d60-Lab/restaurant-pos/pkg/response"
)

type createOrderRequest struct {
	OrderType       string              `json:"order_type" binding:"required,oneof=dine_in takeout delivery"`
	TableID         *uint               `json:"table_id"`
	Items           []service.OrderLine `json:"items" binding:"required,min=1,dive"`
	CouponCode      string              `json:"coupon_code"`
	RedeemPoints    int                 `json:"redeem_points" binding:"omitempty,gte=0"`
	Notes           string              `json:"notes"`
	CustomerName    string              `json:"customer_name"`
	CustomerPhone   string              `json:"customer_phone"`
	DeliveryAddress string              `json:"delivery_address"`
}

// CreateOrder 下单
func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	order, err := h.orders.Create(c.Request.Context(), service.CreateOrderInput{
		OrderType:       model.OrderType(req.OrderType),
		TableID:         req.TableID,
		CreatedBy:       middleware.UserID(c),
		Lines:           req.Items,
		CouponCode:      req.CouponCode,
		RedeemPoints:    req.RedeemPoints,
		Notes:           req.Notes,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponExhausted), errors.Is(err, service.ErrInsufficientPoints):
			response.Conflict(c, err.Error())
		case isValidationErr(err):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, order)
}

type updateOrderRequest struct {
	TableID       *uint               `json:"table_id"`
	Items         []service.OrderLine `json:"items" binding:"omitempty,min=1,dive"`
	Status        *string             `json:"status"`
	PaymentStatus *string             `json:"payment_status"`
	PaymentMethod *string             `json:"payment_method"`
	Notes         *string             `json:"notes"`
}

// UpdateOrder staff 更新订单；任一字段非法则整体失败
func (h *Handler) UpdateOrder(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	order, err := h.orders.Update(c.Request.Context(), id, service.UpdateOrderInput{
		TableID:       req.TableID,
		Lines:         req.Items,
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrInvalidTransition), isValidationErr(err):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Success(c, order)
}

// GetOrder 查询单个订单
func (h *Handler) GetOrder(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, order)
}

// ListOrders 订单列表，支持状态与餐桌过滤
func (h *Handler) ListOrders(c *gin.Context) {
	f := repository.OrderFilter{}
	if s := c.Query("status"); s != "" {
		st, err := model.ParseOrderStatus(s)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		f.Status = st
	}
	if t := c.Query("table_id"); t != "" {
		v, err := strconv.ParseUint(t, 10, 32)
		if err != nil {
			response.BadRequest(c, "invalid table_id")
			return
		}
		id := uint(v)
		f.TableID = &id
	}
	f.Offset, _ = strconv.Atoi(c.DefaultQuery("skip", "0"))
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))

	orders, err := h.orders.List(c.Request.Context(), f)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, orders)
}

// DeleteOrder 删除订单（admin）
func (h *Handler) DeleteOrder(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	if err := h.orders.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

// OrderStats 订单统计（admin）
func (h *Handler) OrderStats(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	stats, err := h.orders.Stats(c.Request.Context(), days)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, stats)
}

func parseID(c *gin.Context) (uint, error) {
	v, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(v), err
}

// isValidationErr 归类为 400 的业务校验错误
func isValidationErr(err error) bool {
	for _, target := range []error{
		service.ErrEmptyOrder,
		service.ErrItemNotFound,
		service.ErrItemUnavailable,
		service.ErrBelowDeliveryMinimum,
		service.ErrCouponNotFound,
		service.ErrCouponInactive,
		service.ErrCouponNotYetActive,
		service.ErrCouponExpired,
		service.ErrBelowMinimumOrder,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
