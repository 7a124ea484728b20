package repository

import (
	"gorm.io/gorm"

	"github.com/verifake/verifake_server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByAPIToken(token string) (*model.User, error) {
	var user model.User
	err := r.db.Where("api_token = ?", token).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByGithubID(githubID string) (*model.User, error) {
	var user model.User
	err := r.db.Where("github_id = ?", githubID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *UserRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

// IncrementUsage 原子递增 api_usage，只有成功的检测才会调用
func (r *UserRepository) IncrementUsage(id int64) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).
		Update("api_usage", gorm.Expr("api_usage + 1")).Error
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.User{}).Count(&count).Error
	return count, err
}

// UserWithCount 用户及其分析数量
type UserWithCount struct {
	model.User
	AnalysesCount int64 `gorm:"column:analyses_count"`
}

// ListWithAnalysisCount 用户列表（带分析数量），新用户在前
func (r *UserRepository) ListWithAnalysisCount(page, pageSize int) ([]*UserWithCount, int64, error) {
	var users []*UserWithCount
	var total int64

	if err := r.db.Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.Model(&model.User{}).
		Select("users.*, (?) AS analyses_count",
			r.db.Model(&model.Analysis{}).Select("COUNT(*)").Where("analyses.user_id = users.id")).
		Order("users.created_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// DeleteWithAnalyses 在同一事务内删除用户及其全部分析记录
func (r *UserRepository) DeleteWithAnalyses(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.Analysis{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.User{}, id).Error
	})
}
