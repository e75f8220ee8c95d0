package repository

import (
	"context"
	"errors"
	"time"

	"github.com/DocXtract/docxtract/internal/form/entity"
	"gorm.io/gorm"
)

// RequestRepository 表单授权仓库
type RequestRepository struct {
	db *gorm.DB
}

// NewRequestRepository 创建表单授权仓库
func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create 创建授权记录
// (user_id, form_id) 唯一索引下的并发重复插入返回 gorm.ErrDuplicatedKey，
// 由调用方按"已存在即成功"处理。
func (r *RequestRepository) Create(ctx context.Context, request *entity.FormRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// FindByID 按ID查找授权
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*entity.FormRequest, error) {
	var request entity.FormRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

// FindByUserAndForm 查找某用户对某表单的有效授权
func (r *RequestRepository) FindByUserAndForm(ctx context.Context, userID, formID string) (*entity.FormRequest, error) {
	var request entity.FormRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND form_id = ?", userID, formID).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

// ListByUser 列出某用户的全部有效授权
func (r *RequestRepository) ListByUser(ctx context.Context, userID string) ([]entity.FormRequest, error) {
	var requests []entity.FormRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&requests).Error
	return requests, err
}

// ListByForm 列出某表单的全部有效授权
func (r *RequestRepository) ListByForm(ctx context.Context, formID string) ([]entity.FormRequest, error) {
	var requests []entity.FormRequest
	err := r.db.WithContext(ctx).
		Where("form_id = ?", formID).
		Find(&requests).Error
	return requests, err
}

// DecrementCAS 按最后读到的剩余次数做条件递减
// WHERE 带上旧值构成比较并交换，返回是否命中；未命中说明并发修改，
// 调用方重读后重试。
func (r *RequestRepository) DecrementCAS(ctx context.Context, id string, lastRemaining int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.FormRequest{}).
		Where("id = ? AND submissions_remaining = ?", id, lastRemaining).
		Updates(map[string]interface{}{
			"submissions_remaining": lastRemaining - 1,
			"updated_at":            time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeleteIfExhausted 剩余1次时原子删除（最后一次提交与吊销同一动作）
// 返回是否由本次调用删除成功；并发下恰好一个调用方返回true。
func (r *RequestRepository) DeleteIfExhausted(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND submissions_remaining = 1", id).
		Delete(&entity.FormRequest{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeleteByUserAndForm 吊销某用户对某表单的全部授权，不存在时为空操作
func (r *RequestRepository) DeleteByUserAndForm(ctx context.Context, userID, formID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND form_id = ?", userID, formID).
		Delete(&entity.FormRequest{}).Error
}
