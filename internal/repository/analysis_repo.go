package repository

import (
	"gorm.io/gorm"

	"github.com/verifake/verifake_server/internal/model"
)

type AnalysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) Create(analysis *model.Analysis) error {
	return r.db.Create(analysis).Error
}

func (r *AnalysisRepository) GetByID(id int64) (*model.Analysis, error) {
	var analysis model.Analysis
	err := r.db.Where("id = ?", id).First(&analysis).Error
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (r *AnalysisRepository) GetByIDWithUser(id int64) (*model.Analysis, error) {
	var analysis model.Analysis
	err := r.db.Preload("User").Where("id = ?", id).First(&analysis).Error
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (r *AnalysisRepository) Delete(id int64) error {
	return r.db.Delete(&model.Analysis{}, id).Error
}

// ListByUserID 获取某用户的全部分析记录，最新的在前
func (r *AnalysisRepository) ListByUserID(userID int64) ([]*model.Analysis, error) {
	var analyses []*model.Analysis
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&analyses).Error
	if err != nil {
		return nil, err
	}
	return analyses, nil
}

// ListAll 管理端分页列表（带归属用户），最新的在前
func (r *AnalysisRepository) ListAll(page, pageSize int) ([]*model.Analysis, int64, error) {
	var analyses []*model.Analysis
	var total int64

	if err := r.db.Model(&model.Analysis{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.Preload("User").
		Order("created_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&analyses).Error
	if err != nil {
		return nil, 0, err
	}

	return analyses, total, nil
}

// CountByService 各检测服务的使用量统计
func (r *AnalysisRepository) CountByService() (map[string]int64, error) {
	type row struct {
		Service string
		Count   int64
	}
	var rows []row
	err := r.db.Model(&model.Analysis{}).
		Select("service, COUNT(*) AS count").
		Group("service").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Service] = r.Count
	}
	return counts, nil
}

// FilePathsByUserID 某用户全部分析的存储路径，用于级联清理
func (r *AnalysisRepository) FilePathsByUserID(userID int64) ([]string, error) {
	var paths []string
	err := r.db.Model(&model.Analysis{}).
		Where("user_id = ? AND file_path <> ''", userID).
		Pluck("file_path", &paths).Error
	if err != nil {
		return nil, err
	}
	return paths, nil
}
