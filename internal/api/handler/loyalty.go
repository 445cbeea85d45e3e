package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/restaurant-pos/internal/service"
	"github.com/d60-Lab/restaurant-pos/pkg/response"
)

type enrollRequest struct {
	Phone string `json:"phone" binding:"required"`
	Name  string `json:"name"`
}

// EnrollLoyalty 会员注册；重复注册返回现有账户
func (h *Handler) EnrollLoyalty(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	acc, err := h.loyalty.Enroll(c.Request.Context(), req.Phone, req.Name)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, acc)
}

// GetLoyalty 查询会员账户
func (h *Handler) GetLoyalty(c *gin.Context) {
	acc, err := h.loyalty.Get(c.Request.Context(), c.Param("phone"))
	if err != nil {
		if errors.Is(err, service.ErrLoyaltyAccountNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, acc)
}
