package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/verifake/verifake_server/internal/model/dto"
	"github.com/verifake/verifake_server/internal/repository"
)

type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile 获取当前用户信息
func (s *UserService) GetProfile(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return buildUserInfo(user), nil
}

// Update 更新用户信息，email 需保持唯一
func (s *UserService) Update(userID int64, req *dto.UpdateUserRequest) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		existing, err := s.userRepo.GetByEmail(*req.Email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != userID {
			return nil, ErrEmailExists
		}
		user.Email = *req.Email
	}
	if req.Password != nil && *req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		passwordStr := string(hashed)
		user.PasswordHash = &passwordStr
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	return buildUserInfo(user), nil
}
