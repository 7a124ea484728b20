package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"github.com/verifake/verifake_server/internal/model"
)

var seq int64

func nextSeq() int64 {
	return atomic.AddInt64(&seq, 1)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := nextSeq()
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Name:         fmt.Sprintf("testuser_%d", n),
		Email:        fmt.Sprintf("test_%d@example.com", n),
		PasswordHash: &passwordHash,
		APIToken:     fmt.Sprintf("%064d", n),
		APILimit:     1000,
		APIUsage:     0,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithAPIToken 设置 API Token
func WithAPIToken(token string) func(*model.User) {
	return func(u *model.User) {
		u.APIToken = token
	}
}

// WithAdmin 设置为管理员
func WithAdmin() func(*model.User) {
	return func(u *model.User) {
		u.IsAdmin = true
	}
}

// WithLimit 设置配额上限
func WithLimit(limit int) func(*model.User) {
	return func(u *model.User) {
		u.APILimit = limit
	}
}

// WithUsage 设置已使用配额
func WithUsage(usage int) func(*model.User) {
	return func(u *model.User) {
		u.APIUsage = usage
	}
}

// WithPasswordHash 设置密码哈希
func WithPasswordHash(hash string) func(*model.User) {
	return func(u *model.User) {
		u.PasswordHash = &hash
	}
}

// TestAnalysis 创建测试分析记录
func TestAnalysis(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Analysis)) *model.Analysis {
	t.Helper()

	analysis := &model.Analysis{
		UserID:   userID,
		FilePath: fmt.Sprintf("analyses/test-%d.jpg", nextSeq()),
		Service:  model.ServiceDeepfake,
		Result: model.JSONMap{
			"status": "success",
			"type": map[string]interface{}{
				"deepfake": 0.12,
			},
		},
	}

	for _, opt := range opts {
		opt(analysis)
	}

	if err := db.Create(analysis).Error; err != nil {
		t.Fatalf("Failed to create test analysis: %v", err)
	}

	return analysis
}

// WithService 设置检测服务
func WithService(service string) func(*model.Analysis) {
	return func(a *model.Analysis) {
		a.Service = service
	}
}

// WithResult 设置检测结果
func WithResult(result model.JSONMap) func(*model.Analysis) {
	return func(a *model.Analysis) {
		a.Result = result
	}
}

// WithFilePath 设置文件路径
func WithFilePath(path string) func(*model.Analysis) {
	return func(a *model.Analysis) {
		a.FilePath = path
	}
}
