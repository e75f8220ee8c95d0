package repository

import (
	"context"
	"errors"

	"github.com/DocXtract/docxtract/internal/form/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TemplateRepository 表单模板仓库
type TemplateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository 创建表单模板仓库
func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Create 创建模板记录
func (r *TemplateRepository) Create(ctx context.Context, template *entity.FormTemplate) error {
	return r.db.WithContext(ctx).Create(template).Error
}

// FindByID 按ID查找模板
func (r *TemplateRepository) FindByID(ctx context.Context, id string) (*entity.FormTemplate, error) {
	var template entity.FormTemplate
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// ListAll 列出全部模板
func (r *TemplateRepository) ListAll(ctx context.Context) ([]entity.FormTemplate, error) {
	var templates []entity.FormTemplate
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&templates).Error
	return templates, err
}

// AddRecipient 幂等地将用户加入模板接收人集合
func (r *TemplateRepository) AddRecipient(ctx context.Context, formID, userID string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.FormRecipient{FormID: formID, UserID: userID}).Error
}

// ListRecipients 列出模板的接收人ID
func (r *TemplateRepository) ListRecipients(ctx context.Context, formID string) ([]string, error) {
	var userIDs []string
	err := r.db.WithContext(ctx).
		Model(&entity.FormRecipient{}).
		Where("form_id = ?", formID).
		Order("created_at ASC").
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}

// DeleteCascade 级联删除模板及其全部从属记录
// 先删依赖方（授权、接收人、响应）再删模板本体，整体在一个事务内，
// 中途失败全部回滚，不会留下指向已删模板的孤儿记录。
func (r *TemplateRepository) DeleteCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("form_id = ?", id).Delete(&entity.FormRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("form_id = ?", id).Delete(&entity.FormRecipient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("form_id = ?", id).Delete(&entity.FormResponse{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&entity.FormTemplate{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
