package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/verifake/verifake_server/internal/pkg/response"
	"github.com/verifake/verifake_server/internal/repository"
)

const (
	UserIDKey = "userID"
)

// Auth API Token 认证中间件，校验 Authorization: Bearer <api_token>
func Auth(userRepo *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AuthError(c, "请提供认证信息")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			response.AuthError(c, "认证格式错误")
			c.Abort()
			return
		}

		user, err := userRepo.GetByAPIToken(tokenString)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.AuthError(c, "认证失败")
			} else {
				response.ServerError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Next()
	}
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}
