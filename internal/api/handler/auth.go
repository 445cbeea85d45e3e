package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/restaurant-pos/internal/service"
	"github.com/d60-Lab/restaurant-pos/pkg/response"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 员工登录，签发 JWT
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, user, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrUserInactive) {
			response.Unauthorized(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"token": token, "user": user})
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name"`
	Role     string `json:"role" binding:"required,oneof=staff admin"`
}

// CreateUser 建员工账号（admin）
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.auth.CreateUser(c.Request.Context(), req.Username, req.Password, req.FullName, req.Role)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Created(c, user)
}
