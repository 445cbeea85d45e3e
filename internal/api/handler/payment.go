package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/restaurant-pos/internal/service"
	"github.com/d60-Lab/restaurant-pos/internal/webhook"
	"github.com/d60-Lab/restaurant-pos/pkg/response"
)

// SignatureHeader 网关签名请求头
const SignatureHeader = "X-Gateway-Signature"

type recordPaymentRequest struct {
	OrderID       uint    `json:"order_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	PaymentMethod string  `json:"payment_method" binding:"required,oneof=cash card stripe paypal"`
	TransactionID *string `json:"transaction_id"`
}

// RecordPayment 柜台直接入账
func (h *Handler) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	payment, err := h.payments.Record(c.Request.Context(), req.OrderID, req.Amount, req.PaymentMethod, req.TransactionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrPaymentExists):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, payment)
}

// GetPayment 查询支付记录
func (h *Handler) GetPayment(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "invalid payment id")
		return
	}
	payment, err := h.payments.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, payment)
}

// GatewayWebhook 卡网关回调。签名失败 400；签名通过后的一切结果
// （包括订单不存在、重复投递）都回 200，否则网关会无限重试。
func (h *Handler) GatewayWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "cannot read body")
		return
	}
	err = h.payments.HandleWebhook(c.Request.Context(), body, c.GetHeader(SignatureHeader))
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			// 不泄露校验细节
			c.JSON(http.StatusBadRequest, gin.H{"status": "rejected"})
			return
		}
		response.InternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

type createIntentRequest struct {
	OrderID  uint   `json:"order_id" binding:"required"`
	Provider string `json:"provider" binding:"required,oneof=stripe paypal"`
}

// CreateIntent 跳转式在线支付：建意向单
func (h *Handler) CreateIntent(c *gin.Context) {
	var req createIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	intent, err := h.payments.CreateIntent(c.Request.Context(), req.OrderID, req.Provider)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, intent)
}

// ConfirmIntent 意向确认；重复确认幂等返回成功
func (h *Handler) ConfirmIntent(c *gin.Context) {
	intent, err := h.payments.ConfirmIntent(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIntentNotFound), errors.Is(err, service.ErrOrderNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrIntentCancelled):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Success(c, intent)
}
