package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/service"
	"github.com/d60-Lab/restaurant-pos/pkg/response"
)

type createCouponRequest struct {
	Code              string     `json:"code" binding:"required"`
	Description       string     `json:"description"`
	DiscountType      string     `json:"discount_type" binding:"required,oneof=percentage fixed free_item"`
	DiscountValue     float64    `json:"discount_value" binding:"required,gt=0"`
	MinOrderAmount    float64    `json:"min_order_amount" binding:"omitempty,gte=0"`
	MaxDiscountAmount *float64   `json:"max_discount_amount"`
	UsageLimit        *int       `json:"usage_limit"`
	ValidFrom         *time.Time `json:"valid_from"`
	ValidUntil        *time.Time `json:"valid_until"`
	IsActive          *bool      `json:"is_active"`
	FreeItemID        *uint      `json:"free_item_id"`
}

// CreateCoupon 建券（admin）
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req createCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	coupon, err := h.coupons.Create(c.Request.Context(), service.CreateCouponInput{
		Code:              req.Code,
		Description:       req.Description,
		DiscountType:      model.DiscountType(req.DiscountType),
		DiscountValue:     req.DiscountValue,
		MinOrderAmount:    req.MinOrderAmount,
		MaxDiscountAmount: req.MaxDiscountAmount,
		UsageLimit:        req.UsageLimit,
		ValidFrom:         req.ValidFrom,
		ValidUntil:        req.ValidUntil,
		IsActive:          active,
		FreeItemID:        req.FreeItemID,
	})
	if err != nil {
		if errors.Is(err, service.ErrCouponCodeTaken) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, coupon)
}

// ListCoupons 券列表（admin）
func (h *Handler) ListCoupons(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"
	offset, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	coupons, err := h.coupons.List(c.Request.Context(), activeOnly, offset, limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, coupons)
}

// GetCoupon 券详情（admin）
func (h *Handler) GetCoupon(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "invalid coupon id")
		return
	}
	coupon, err := h.coupons.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCouponIDNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, coupon)
}

type updateCouponRequest struct {
	Description       *string    `json:"description"`
	DiscountType      *string    `json:"discount_type" binding:"omitempty,oneof=percentage fixed free_item"`
	DiscountValue     *float64   `json:"discount_value" binding:"omitempty,gt=0"`
	MinOrderAmount    *float64   `json:"min_order_amount" binding:"omitempty,gte=0"`
	MaxDiscountAmount *float64   `json:"max_discount_amount"`
	UsageLimit        *int       `json:"usage_limit"`
	ValidFrom         *time.Time `json:"valid_from"`
	ValidUntil        *time.Time `json:"valid_until"`
	IsActive          *bool      `json:"is_active"`
	FreeItemID        *uint      `json:"free_item_id"`
}

// UpdateCoupon 改券（admin）
func (h *Handler) UpdateCoupon(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "invalid coupon id")
		return
	}
	var req updateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	var dt *model.DiscountType
	if req.DiscountType != nil {
		v := model.DiscountType(*req.DiscountType)
		dt = &v
	}
	coupon, err := h.coupons.Update(c.Request.Context(), id, service.UpdateCouponInput{
		Description:       req.Description,
		DiscountType:      dt,
		DiscountValue:     req.DiscountValue,
		MinOrderAmount:    req.MinOrderAmount,
		MaxDiscountAmount: req.MaxDiscountAmount,
		UsageLimit:        req.UsageLimit,
		ValidFrom:         req.ValidFrom,
		ValidUntil:        req.ValidUntil,
		IsActive:          req.IsActive,
		FreeItemID:        req.FreeItemID,
	})
	if err != nil {
		if errors.Is(err, service.ErrCouponIDNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, coupon)
}

// DeleteCoupon 删券（admin）
func (h *Handler) DeleteCoupon(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "invalid coupon id")
		return
	}
	if err := h.coupons.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrCouponIDNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

type validateCouponRequest struct {
	Code       string           `json:"code" binding:"required"`
	OrderTotal float64          `json:"order_total" binding:"required,gt=0"`
	Items      model.OrderItems `json:"items"`
}

type validateCouponResponse struct {
	Valid          bool    `json:"valid"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalTotal     float64 `json:"final_total"`
	Message        string  `json:"message,omitempty"`
}

// ValidateCoupon 纯预览：只算折扣，不占用额度，可重复调用
func (h *Handler) ValidateCoupon(c *gin.Context) {
	var req validateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	quote, err := h.coupons.Validate(c.Request.Context(), req.Code, req.OrderTotal, req.Items)
	if err != nil {
		if isCouponRejection(err) {
			// 校验失败是业务结果而不是错误响应
			response.Success(c, validateCouponResponse{Valid: false, Message: err.Error()})
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, validateCouponResponse{
		Valid:          true,
		DiscountAmount: quote.DiscountAmount,
		FinalTotal:     quote.FinalTotal,
		Message:        "coupon applied",
	})
}

func isCouponRejection(err error) bool {
	for _, target := range []error{
		service.ErrCouponNotFound,
		service.ErrCouponInactive,
		service.ErrCouponNotYetActive,
		service.ErrCouponExpired,
		service.ErrCouponExhausted,
		service.ErrBelowMinimumOrder,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
