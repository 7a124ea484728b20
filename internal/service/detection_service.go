package service

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/verifake/verifake_server/internal/model"
	"github.com/verifake/verifake_server/internal/model/dto"
	"github.com/verifake/verifake_server/internal/pkg/oss"
	"github.com/verifake/verifake_server/internal/pkg/sightengine"
	"github.com/verifake/verifake_server/internal/pkg/token"
	"github.com/verifake/verifake_server/internal/pkg/verdict"
	"github.com/verifake/verifake_server/internal/pkg/ws"
	"github.com/verifake/verifake_server/internal/repository"
)

var (
	ErrEmptyFile      = errors.New("请上传文件")
	ErrAnalysisFailed = errors.New("分析失败")
)

// BlobStore 上传图片的对象存储
type BlobStore interface {
	UploadFile(objectKey string, data []byte, contentType string) (string, error)
	Delete(objectKey string) error
	GetURL(objectKey string) string
}

// VendorClient 检测 API 客户端
type VendorClient interface {
	Check(ctx context.Context, image []byte, filename, model string) (map[string]interface{}, error)
}

type DetectionService struct {
	analysisRepo *repository.AnalysisRepository
	quotaService *QuotaService
	blobStore    BlobStore
	vendor       VendorClient
	hub          *ws.Hub
}

func NewDetectionService(
	analysisRepo *repository.AnalysisRepository,
	quotaService *QuotaService,
	blobStore BlobStore,
	vendor VendorClient,
	hub *ws.Hub,
) *DetectionService {
	return &DetectionService{
		analysisRepo: analysisRepo,
		quotaService: quotaService,
		blobStore:    blobStore,
		vendor:       vendor,
		hub:          hub,
	}
}

// Analyze 执行一次检测：
// 配额检查 → 存储图片 → 调用检测 API → 落库 → 扣减配额。
// 配额不足时直接失败，不产生任何副作用；
// 检测 API 失败时删除已存储的图片，不落库也不扣配额。
func (s *DetectionService) Analyze(ctx context.Context, userID int64, filename string, data []byte, service string) (*dto.AnalysisItem, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	hasQuota, err := s.quotaService.CheckQuota(userID)
	if err != nil {
		return nil, err
	}
	if !hasQuota {
		return nil, ErrQuotaExceeded
	}

	// service 留空时默认 deepfake；未识别的值照原样存储，
	// 只是厂商模型回退到 deepfake，不拒绝请求
	if service == "" {
		service = model.ServiceDeepfake
	}
	vendorModel := sightengine.ModelForService(service)

	ext := strings.ToLower(filepath.Ext(filename))
	objectKey := token.NewObjectKey("analyses", ext)

	if _, err := s.blobStore.UploadFile(objectKey, data, oss.ContentTypeForExt(ext)); err != nil {
		return nil, err
	}

	result, err := s.vendor.Check(ctx, data, filename, vendorModel)
	if err != nil {
		log.Printf("Vendor check failed for user %d: %v", userID, err)
		if derr := s.blobStore.Delete(objectKey); derr != nil {
			log.Printf("Failed to clean up blob %s: %v", objectKey, derr)
		}
		return nil, ErrAnalysisFailed
	}

	analysis := &model.Analysis{
		UserID:   userID,
		FilePath: objectKey,
		Service:  service,
		Result:   result,
	}

	if err := s.analysisRepo.Create(analysis); err != nil {
		if derr := s.blobStore.Delete(objectKey); derr != nil {
			log.Printf("Failed to clean up blob %s: %v", objectKey, derr)
		}
		return nil, err
	}

	// 扣减配额放在落库之后，成功一次只加一
	if err := s.quotaService.UseQuota(userID); err != nil {
		log.Printf("Failed to increment usage for user %d: %v", userID, err)
	}

	if s.hub != nil {
		s.hub.NotifyAnalysisCreated(&ws.AnalysisCreatedEvent{
			AnalysisID: analysis.ID,
			UserID:     analysis.UserID,
			Service:    analysis.Service,
			Verdict:    verdict.Summarize(analysis.Service, analysis.Result),
		})
	}

	return s.buildItem(analysis), nil
}

// List 当前用户的全部分析记录，最新的在前
func (s *DetectionService) List(userID int64) ([]*dto.AnalysisItem, error) {
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

func (s *DetectionService) buildItem(a *model.Analysis) *dto.AnalysisItem {
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
