package handler

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/verifake/verifake_server/config"
	"github.com/verifake/verifake_server/internal/api/middleware"
	"github.com/verifake/verifake_server/internal/pkg/response"
	"github.com/verifake/verifake_server/internal/service"
)

type DetectionHandler struct {
	detectionService *service.DetectionService
	cfg              *config.Config
}

func NewDetectionHandler(detectionService *service.DetectionService, cfg *config.Config) *DetectionHandler {
	return &DetectionHandler{
		detectionService: detectionService,
		cfg:              cfg,
	}
}

// Detect 提交图片检测
// POST /api/detect (multipart: file, service?)
func (h *DetectionHandler) Detect(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.ParamError(c, "请上传文件")
		return
	}

	if h.cfg.Upload.MaxSize > 0 && fileHeader.Size > h.cfg.Upload.MaxSize {
		response.ParamError(c, "文件过大")
		return
	}

	if !h.allowedExtension(fileHeader.Filename) {
		response.ParamError(c, "不支持的文件类型")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	serviceName := c.PostForm("service")

	item, err := h.detectionService.Analyze(c.Request.Context(), userID, fileHeader.Filename, data, serviceName)
	if err != nil {
		switch err {
		case service.ErrQuotaExceeded:
			response.QuotaError(c, err.Error())
		case service.ErrAnalysisFailed:
			response.VendorError(c, err.Error())
		case service.ErrEmptyFile:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Created(c, item)
}

func (h *DetectionHandler) allowedExtension(filename string) bool {
	if len(h.cfg.Upload.AllowedExtensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range h.cfg.Upload.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// List 当前用户的分析记录列表
// GET /api/analyses
func (h *DetectionHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	items, err := h.detectionService.List(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, items)
}
