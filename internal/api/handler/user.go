package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/verifake/verifake_server/internal/api/middleware"
	"github.com/verifake/verifake_server/internal/model/dto"
	"github.com/verifake/verifake_server/internal/pkg/response"
	"github.com/verifake/verifake_server/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Get 获取当前用户信息
// GET /api/user
func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	profile, err := h.userService.GetProfile(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, profile)
}

// Update 更新当前用户信息
// PUT /api/user
func (h *UserHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	profile, err := h.userService.Update(userID, &req)
	if err != nil {
		switch err {
		case service.ErrEmailExists:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, profile)
}
