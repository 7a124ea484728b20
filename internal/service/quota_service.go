package service

import (
	"errors"

	"github.com/verifake/verifake_server/internal/repository"
)

var (
	ErrQuotaExceeded = errors.New("API 调用次数已达上限")
	ErrInvalidLimit  = errors.New("配额上限必须在 1-10000 之间")
)

const (
	minAPILimit = 1
	maxAPILimit = 10000
)

type QuotaService struct {
	userRepo *repository.UserRepository
}

func NewQuotaService(userRepo *repository.UserRepository) *QuotaService {
	return &QuotaService{userRepo: userRepo}
}

// CheckQuota 检查用户是否还有剩余配额
func (s *QuotaService) CheckQuota(userID int64) (bool, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return false, err
	}
	return user.APIUsage < user.APILimit, nil
}

// UseQuota 使用一次配额，仅在检测成功持久化之后调用。
// 使用量只增不减，没有退还操作。
func (s *QuotaService) UseQuota(userID int64) error {
	return s.userRepo.IncrementUsage(userID)
}

// SetLimit 管理员调整用户配额上限
func (s *QuotaService) SetLimit(userID int64, limit int) error {
	if limit < minAPILimit || limit > maxAPILimit {
		return ErrInvalidLimit
	}
	return s.userRepo.UpdateFields(userID, map[string]interface{}{"api_limit": limit})
}
