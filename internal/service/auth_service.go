package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/verifake/verifake_server/config"
	"github.com/verifake/verifake_server/internal/model"
	"github.com/verifake/verifake_server/internal/model/dto"
	"github.com/verifake/verifake_server/internal/pkg/jwt"
	"github.com/verifake/verifake_server/internal/pkg/oauth"
	"github.com/verifake/verifake_server/internal/pkg/token"
	"github.com/verifake/verifake_server/internal/repository"
)

var (
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrNotAdmin           = errors.New("该账号没有管理权限")
)

// Mailer 欢迎邮件发送，失败不影响注册
type Mailer interface {
	SendWelcome(to, name string) error
}

type AuthService struct {
	userRepo    *repository.UserRepository
	cfg         *config.Config
	githubOAuth *oauth.GithubOAuth
	mailer      Mailer
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config, mailer Mailer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
		mailer:   mailer,
		githubOAuth: oauth.NewGithubOAuth(
			cfg.OAuth.Github.ClientID,
			cfg.OAuth.Github.ClientSecret,
			cfg.OAuth.Github.RedirectURI,
		),
	}
}

// Register 用户注册，返回长期 API Token
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	apiToken, err := token.NewAPIToken()
	if err != nil {
		return nil, err
	}

	passwordStr := string(hashedPassword)
	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: &passwordStr,
		APIToken:     apiToken,
		APILimit:     s.cfg.Quota.DefaultLimit,
		APIUsage:     0,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	if s.mailer != nil {
		if err := s.mailer.SendWelcome(user.Email, user.Name); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", user.Email, err)
		}
	}

	return &dto.AuthResponse{
		Token: user.APIToken,
		User:  buildUserInfo(user),
	}, nil
}

// Login 用户登录
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 老数据可能没有 token，登录时补发
	if user.APIToken == "" {
		apiToken, err := token.NewAPIToken()
		if err != nil {
			return nil, err
		}
		user.APIToken = apiToken
		if err := s.userRepo.Update(user); err != nil {
			return nil, err
		}
	}

	return &dto.AuthResponse{
		Token: user.APIToken,
		User:  buildUserInfo(user),
	}, nil
}

// AdminLogin 管理后台登录，返回会话 JWT
func (s *AuthService) AdminLogin(req *dto.AdminLoginRequest) (string, *dto.UserInfo, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if user.PasswordHash == nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if !user.IsAdmin {
		return "", nil, ErrNotAdmin
	}

	sessionToken, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return "", nil, err
	}

	return sessionToken, buildUserInfo(user), nil
}

// GetGithubAuthURL 获取 GitHub 授权 URL
func (s *AuthService) GetGithubAuthURL(state string) string {
	return s.githubOAuth.GetAuthURL(state)
}

// GithubCallback 处理 GitHub OAuth 回调，不存在的用户自动注册
func (s *AuthService) GithubCallback(ctx context.Context, code string) (*dto.AuthResponse, error) {
	oauthToken, err := s.githubOAuth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	githubUser, err := s.githubOAuth.GetUser(ctx, oauthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to get github user: %w", err)
	}

	githubIDStr := fmt.Sprintf("%d", githubUser.ID)

	user, err := s.userRepo.GetByGithubID(githubIDStr)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if user == nil {
		apiToken, err := token.NewAPIToken()
		if err != nil {
			return nil, err
		}

		name := githubUser.Name
		if name == "" {
			name = githubUser.Login
		}
		email := githubUser.Email
		if email == "" {
			email = fmt.Sprintf("%d+%s@users.noreply.github.com", githubUser.ID, githubUser.Login)
		}

		user = &model.User{
			Name:      name,
			Email:     email,
			GithubID:  &githubIDStr,
			AvatarURL: githubUser.AvatarURL,
			APIToken:  apiToken,
			APILimit:  s.cfg.Quota.DefaultLimit,
		}

		if err := s.userRepo.Create(user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	return &dto.AuthResponse{
		Token: user.APIToken,
		User:  buildUserInfo(user),
	}, nil
}

func buildUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
		IsAdmin:   user.IsAdmin,
		APILimit:  user.APILimit,
		APIUsage:  user.APIUsage,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}
