package repository

import (
	"context"
	"errors"

	"github.com/DocXtract/docxtract/internal/form/entity"
	"gorm.io/gorm"
)

// ResponseRepository 提交快照仓库
type ResponseRepository struct {
	db *gorm.DB
}

// NewResponseRepository 创建提交快照仓库
func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// Create 创建提交快照，只写一次，之后不再更新
func (r *ResponseRepository) Create(ctx context.Context, response *entity.FormResponse) error {
	return r.db.WithContext(ctx).Create(response).Error
}

// FindByID 按ID查找提交快照
func (r *ResponseRepository) FindByID(ctx context.Context, id string) (*entity.FormResponse, error) {
	var response entity.FormResponse
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&response).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &response, nil
}

// ListByForm 按提交顺序列出某表单的全部提交
func (r *ResponseRepository) ListByForm(ctx context.Context, formID string) ([]entity.FormResponse, error) {
	var responses []entity.FormResponse
	err := r.db.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("submitted_at ASC, id ASC").
		Find(&responses).Error
	return responses, err
}

// ListByFormAndUser 列出某用户对某表单的提交
func (r *ResponseRepository) ListByFormAndUser(ctx context.Context, formID, userID string) ([]entity.FormResponse, error) {
	var responses []entity.FormResponse
	err := r.db.WithContext(ctx).
		Where("form_id = ? AND user_id = ?", formID, userID).
		Order("submitted_at ASC, id ASC").
		Find(&responses).Error
	return responses, err
}

// CountByForm 统计某表单的提交数
func (r *ResponseRepository) CountByForm(ctx context.Context, formID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.FormResponse{}).
		Where("form_id = ?", formID).
		Count(&count).Error
	return count, err
}
