package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/service"
	"github.com/d60-Lab/restaurant-pos/pkg/response"
)

// ListMenu 菜单列表，可按分类过滤
func (h *Handler) ListMenu(c *gin.Context) {
	items, err := h.catalog.ListMenu(c.Request.Context(), c.Query("category"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, items)
}

type menuItemRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	IsAvailable *bool   `json:"is_available"`
}

// CreateMenuItem 新增菜品（admin）
func (h *Handler) CreateMenuItem(c *gin.Context) {
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	item := &model.MenuItem{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		IsAvailable: req.IsAvailable == nil || *req.IsAvailable,
	}
	if err := h.catalog.CreateMenuItem(c.Request.Context(), item); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, item)
}

// UpdateMenuItem 改菜品（admin）
func (h *Handler) UpdateMenuItem(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "invalid item id")
		return
	}
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	item, err := h.catalog.GetMenuItem(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrMenuItemNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	item.Name = req.Name
	item.Description = req.Description
	item.Category = req.Category
	item.Price = req.Price
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	if err := h.catalog.SaveMenuItem(c.Request.Context(), item); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, item)
}

// DeleteMenuItem 删菜品（admin）
func (h *Handler) DeleteMenuItem(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "invalid item id")
		return
	}
	if err := h.catalog.DeleteMenuItem(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrMenuItemNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

// ListTables 餐桌列表
func (h *Handler) ListTables(c *gin.Context) {
	tables, err := h.catalog.ListTables(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, tables)
}

type tableRequest struct {
	Number int    `json:"number" binding:"required,gt=0"`
	Seats  int    `json:"seats" binding:"omitempty,gt=0"`
	Status string `json:"status" binding:"omitempty,oneof=free occupied reserved"`
}

// CreateTable 新增餐桌（admin）
func (h *Handler) CreateTable(c *gin.Context) {
	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	table := &model.Table{Number: req.Number, Seats: req.Seats, Status: req.Status}
	if table.Seats == 0 {
		table.Seats = 4
	}
	if table.Status == "" {
		table.Status = "free"
	}
	if err := h.catalog.CreateTable(c.Request.Context(), table); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, table)
}

// UpdateTable 改餐桌状态
func (h *Handler) UpdateTable(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "invalid table id")
		return
	}
	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	table := &model.Table{ID: id, Number: req.Number, Seats: req.Seats, Status: req.Status}
	if err := h.catalog.SaveTable(c.Request.Context(), table); err != nil {
		if errors.Is(err, service.ErrTableNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, table)
}

// GetDeliverySettings 外送配置快照
func (h *Handler) GetDeliverySettings(c *gin.Context) {
	cfg, err := h.catalog.GetDeliverySettings(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, cfg)
}

type deliverySettingsRequest struct {
	DeliveryEnabled       *bool    `json:"delivery_enabled" binding:"required"`
	DeliveryFee           *float64 `json:"delivery_fee" binding:"required,gte=0"`
	FreeDeliveryThreshold *float64 `json:"free_delivery_threshold" binding:"required,gte=0"`
	MinOrderAmount        *float64 `json:"min_order_amount" binding:"required,gte=0"`
}

// UpdateDeliverySettings 改外送配置（admin），更新即失效缓存
func (h *Handler) UpdateDeliverySettings(c *gin.Context) {
	var req deliverySettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	cfg, err := h.catalog.GetDeliverySettings(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	cfg.DeliveryEnabled = *req.DeliveryEnabled
	cfg.DeliveryFee = *req.DeliveryFee
	cfg.FreeDeliveryThreshold = *req.FreeDeliveryThreshold
	cfg.MinOrderAmount = *req.MinOrderAmount
	if err := h.catalog.SaveDeliverySettings(c.Request.Context(), cfg); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, cfg)
}
