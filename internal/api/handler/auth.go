package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/verifake/verifake_server/internal/model/dto"
	"github.com/verifake/verifake_server/internal/pkg/oauth"
	"github.com/verifake/verifake_server/internal/pkg/response"
	"github.com/verifake/verifake_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	stateStore  *oauth.StateStore
}

func NewAuthHandler(authService *service.AuthService, stateStore *oauth.StateStore) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		stateStore:  stateStore,
	}
}

// Register 用户注册
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		switch err {
		case service.ErrEmailExists:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Created(c, resp)
}

// Login 用户登录
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		switch err {
		case service.ErrInvalidCredentials:
			response.AuthError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// GithubAuth 跳转 GitHub 授权页
// GET /api/auth/github
func (h *AuthHandler) GithubAuth(c *gin.Context) {
	redirectURI := c.Query("redirect_uri")

	state, err := h.stateStore.GenerateState(c.Request.Context(), redirectURI)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	c.Redirect(302, h.authService.GetGithubAuthURL(state))
}

// GithubCallback GitHub OAuth 回调
// GET /api/auth/github/callback
func (h *AuthHandler) GithubCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" {
		response.ParamError(c, "缺少授权码")
		return
	}

	if _, err := h.stateStore.ValidateState(c.Request.Context(), state); err != nil {
		response.AuthError(c, "state 校验失败")
		return
	}

	resp, err := h.authService.GithubCallback(c.Request.Context(), code)
	if err != nil {
		response.ServerError(c, "GitHub 登录失败")
		return
	}

	response.Success(c, resp)
}
