package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/verifake/verifake_server/internal/model"
	"github.com/verifake/verifake_server/internal/model/dto"
	"github.com/verifake/verifake_server/internal/pkg/verdict"
	"github.com/verifake/verifake_server/internal/repository"
)

var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrAnalysisNotFound = errors.New("分析记录不存在")
	ErrProtectedUser    = errors.New("不能删除管理员账号")
)

const (
	usageStatsKey = "admin:usage_stats"
	usageStatsTTL = 60 * time.Second
)

type AdminService struct {
	userRepo     *repository.UserRepository
	analysisRepo *repository.AnalysisRepository
	quotaService *QuotaService
	blobStore    BlobStore
	rdb          *redis.Client
}

func NewAdminService(
	userRepo *repository.UserRepository,
	analysisRepo *repository.AnalysisRepository,
	quotaService *QuotaService,
	blobStore BlobStore,
	rdb *redis.Client,
) *AdminService {
	return &AdminService{
		userRepo:     userRepo,
		analysisRepo: analysisRepo,
		quotaService: quotaService,
		blobStore:    blobStore,
		rdb:          rdb,
	}
}

// Dashboard 仪表盘数据：各服务使用量 + 最近的分析记录
func (s *AdminService) Dashboard(ctx context.Context, page, pageSize int) (*dto.DashboardData, error) {
	usage, err := s.usageStats(ctx)
	if err != nil {
		return nil, err
	}

	userCount, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}

	analyses, total, err := s.analysisRepo.ListAll(page, pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.AnalysisDetail, len(analyses))
	for i, a := range analyses {
		items[i] = s.buildDetail(a)
	}

	return &dto.DashboardData{
		Usage:     usage,
		UserCount: userCount,
		Recent: &dto.PageData{
			Total:    total,
			Page:     page,
			PageSize: pageSize,
			Items:    items,
		},
	}, nil
}

// usageStats 各服务使用量，Redis 缓存 60 秒
func (s *AdminService) usageStats(ctx context.Context) (map[string]int64, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, usageStatsKey).Result()
		if err == nil {
			var usage map[string]int64
			if err := json.Unmarshal([]byte(cached), &usage); err == nil {
				return usage, nil
			}
		}
	}

	usage, err := s.analysisRepo.CountByService()
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(usage); err == nil {
			if err := s.rdb.Set(ctx, usageStatsKey, data, usageStatsTTL).Err(); err != nil {
				log.Printf("Failed to cache usage stats: %v", err)
			}
		}
	}

	return usage, nil
}

func (s *AdminService) invalidateUsageStats(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, usageStatsKey).Err(); err != nil {
		log.Printf("Failed to invalidate usage stats: %v", err)
	}
}

// ListUsers 用户列表（带分析数量）
func (s *AdminService) ListUsers(page, pageSize int) ([]*dto.AdminUserItem, int64, error) {
	users, total, err := s.userRepo.ListWithAnalysisCount(page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.AdminUserItem, len(users))
	for i, u := range users {
		items[i] = &dto.AdminUserItem{
			ID:            u.ID,
			Name:          u.Name,
			Email:         u.Email,
			IsAdmin:       u.IsAdmin,
			APILimit:      u.APILimit,
			APIUsage:      u.APIUsage,
			AnalysesCount: u.AnalysesCount,
			CreatedAt:     u.CreatedAt.Format(time.RFC3339),
		}
	}

	return items, total, nil
}

// UpdateLimit 调整用户配额上限
func (s *AdminService) UpdateLimit(userID int64, limit int) error {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return s.quotaService.SetLimit(userID, limit)
}

// DeleteUser 删除用户并级联删除其全部分析记录和存储文件。
// 管理员账号受保护，不允许删除。
func (s *AdminService) DeleteUser(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if user.IsAdmin {
		return ErrProtectedUser
	}

	// 先取出文件路径，记录删除提交后再清理文件；
	// 文件清理失败只记警告，不回滚已删除的记录
	paths, err := s.analysisRepo.FilePathsByUserID(userID)
	if err != nil {
		return err
	}

	if err := s.userRepo.DeleteWithAnalyses(userID); err != nil {
		return err
	}

	for _, path := range paths {
		if err := s.blobStore.Delete(path); err != nil {
			log.Printf("Failed to delete blob %s: %v", path, err)
		}
	}

	s.invalidateUsageStats(ctx)
	return nil
}

// ListUserAnalyses 某用户的全部分析记录
func (s *AdminService) ListUserAnalyses(userID int64) ([]*dto.AnalysisItem, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	analyses, err := s.analysisRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.AnalysisItem, len(analyses))
	for i, a := range analyses {
		items[i] = s.buildItem(a)
	}
	return items, nil
}

// GetAnalysis 分析详情（含归属用户）
func (s *AdminService) GetAnalysis(analysisID int64) (*dto.AnalysisDetail, error) {
	analysis, err := s.analysisRepo.GetByIDWithUser(analysisID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, err
	}
	return s.buildDetail(analysis), nil
}

// DeleteAnalysis 删除单条分析记录及其存储文件
func (s *AdminService) DeleteAnalysis(ctx context.Context, analysisID int64) error {
	analysis, err := s.analysisRepo.GetByID(analysisID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAnalysisNotFound
		}
		return err
	}

	if err := s.analysisRepo.Delete(analysisID); err != nil {
		return err
	}

	if analysis.FilePath != "" {
		if err := s.blobStore.Delete(analysis.FilePath); err != nil {
			log.Printf("Failed to delete blob %s: %v", analysis.FilePath, err)
		}
	}

	s.invalidateUsageStats(ctx)
	return nil
}

func (s *AdminService) buildItem(a *model.Analysis) *dto.AnalysisItem {
	item := &dto.AnalysisItem{
		ID:        a.ID,
		UserID:    a.UserID,
		FilePath:  a.FilePath,
		Service:   a.Service,
		Result:    a.Result,
		Verdict:   verdict.Summarize(a.Service, a.Result),
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
	if a.FilePath != "" {
		item.FileURL = s.blobStore.GetURL(a.FilePath)
	}
	return item
}

func (s *AdminService) buildDetail(a *model.Analysis) *dto.AnalysisDetail {
	detail := &dto.AnalysisDetail{AnalysisItem: *s.buildItem(a)}
	if a.User != nil {
		detail.UserName = a.User.Name
		detail.UserEmail = a.User.Email
	}
	return detail
}
