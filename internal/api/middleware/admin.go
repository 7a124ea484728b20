package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/verifake/verifake_server/internal/pkg/jwt"
	"github.com/verifake/verifake_server/internal/pkg/response"
	"github.com/verifake/verifake_server/internal/repository"
)

const (
	// AdminSessionCookie 管理后台会话 Cookie 名称
	AdminSessionCookie = "admin_session"
)

// AdminAuth 管理后台会话中间件。
// 会话 JWT 存放在 HttpOnly Cookie 中，校验通过后还会确认
// 用户当前仍是管理员，任何修改操作之前都会先经过这里。
func AdminAuth(jwtSecret string, userRepo *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(AdminSessionCookie)
		if err != nil || cookie == "" {
			response.AuthError(c, "请先登录管理后台")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(cookie, jwtSecret)
		if err != nil {
			response.AuthError(c, "会话已过期，请重新登录")
			c.Abort()
			return
		}

		user, err := userRepo.GetByID(claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.AuthError(c, "会话已失效")
			} else {
				response.ServerError(c, "")
			}
			c.Abort()
			return
		}

		if !user.IsAdmin {
			response.PermissionError(c, "")
			c.Abort()
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Next()
	}
}
