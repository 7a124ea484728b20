package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/verifake/verifake_server/config"
	"github.com/verifake/verifake_server/internal/api/middleware"
	"github.com/verifake/verifake_server/internal/model/dto"
	"github.com/verifake/verifake_server/internal/pkg/response"
	"github.com/verifake/verifake_server/internal/service"
)

type AdminHandler struct {
	adminService *service.AdminService
	authService  *service.AuthService
	cfg          *config.Config
}

func NewAdminHandler(adminService *service.AdminService, authService *service.AuthService, cfg *config.Config) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		authService:  authService,
		cfg:          cfg,
	}
}

// Login 管理后台登录，会话写入 HttpOnly Cookie
// POST /admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	sessionToken, user, err := h.authService.AdminLogin(&req)
	if err != nil {
		switch err {
		case service.ErrInvalidCredentials:
			response.AuthError(c, err.Error())
		case service.ErrNotAdmin:
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	maxAge := h.cfg.JWT.ExpireHours * 3600
	c.SetCookie(middleware.AdminSessionCookie, sessionToken, maxAge, "/", "", false, true)

	response.Success(c, user)
}

// Logout 管理后台登出
// POST /admin/logout
func (h *AdminHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.AdminSessionCookie, "", -1, "/", "", false, true)
	response.SuccessWithMessage(c, "已退出登录", nil)
}

// Dashboard 仪表盘：使用量统计 + 最近的分析记录
// GET /admin
func (h *AdminHandler) Dashboard(c *gin.Context) {
	page, pageSize := pagination(c)

	data, err := h.adminService.Dashboard(c.Request.Context(), page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, data)
}

// ListUsers 用户列表
// GET /admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, pageSize := pagination(c)

	items, total, err := h.adminService.ListUsers(page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// UpdateLimit 调整用户配额上限
// POST /admin/users/:id/limit
func (h *AdminHandler) UpdateLimit(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的用户ID")
		return
	}

	var req dto.UpdateLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.adminService.UpdateLimit(userID, req.APILimit); err != nil {
		switch err {
		case service.ErrUserNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrInvalidLimit:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "更新成功", nil)
}

// DeleteUser 删除用户（级联删除其分析记录和文件）
// DELETE /admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的用户ID")
		return
	}

	if err := h.adminService.DeleteUser(c.Request.Context(), userID); err != nil {
		switch err {
		case service.ErrUserNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrProtectedUser:
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// ListUserAnalyses 某用户的全部分析记录
// GET /admin/users/:id/analyses
func (h *AdminHandler) ListUserAnalyses(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的用户ID")
		return
	}

	items, err := h.adminService.ListUserAnalyses(userID)
	if err != nil {
		switch err {
		case service.ErrUserNotFound:
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, items)
}

// GetAnalysis 分析详情
// GET /admin/analysis/:id
func (h *AdminHandler) GetAnalysis(c *gin.Context) {
	analysisID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的分析ID")
		return
	}

	detail, err := h.adminService.GetAnalysis(analysisID)
	if err != nil {
		switch err {
		case service.ErrAnalysisNotFound:
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, detail)
}

// DeleteAnalysis 删除单条分析记录
// DELETE /admin/analysis/:id
func (h *AdminHandler) DeleteAnalysis(c *gin.Context) {
	analysisID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的分析ID")
		return
	}

	if err := h.adminService.DeleteAnalysis(c.Request.Context(), analysisID); err != nil {
		switch err {
		case service.ErrAnalysisNotFound:
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return page, pageSize
}
