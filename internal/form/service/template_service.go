package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/DocXtract/docxtract/internal/form/codec"
	"github.com/DocXtract/docxtract/internal/form/entity"
	"github.com/DocXtract/docxtract/internal/form/repository"
	"github.com/DocXtract/docxtract/internal/form/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// templateCacheTTL 模板读缓存的过期时间
const templateCacheTTL = 5 * time.Minute

// TemplateService 表单模板服务
type TemplateService struct {
	templateRepo *repository.TemplateRepository
	store        storage.ObjectStore
	codec        codec.Codec
	rdb          *redis.Client
}

// NewTemplateService 创建表单模板服务
func NewTemplateService(
	templateRepo *repository.TemplateRepository,
	store storage.ObjectStore,
	docCodec codec.Codec,
	rdb *redis.Client,
) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		store:        store,
		codec:        docCodec,
		rdb:          rdb,
	}
}

// CreateTemplateInput 模板创建参数
// Document 与 Layout 二选一：上传源文档，或按布局说明合成空白文档。
type CreateTemplateInput struct {
	Title       string
	Description string
	Quota       int
	DueDate     *time.Time
	Document    []byte
	Layout      *codec.LayoutSpec
}

// Create 创建模板
// 源文档先解析出字段模式，制品先于数据库记录落盘；
// 记录写入失败时回收已写制品，保证不会出现指向缺失制品的记录。
func (s *TemplateService) Create(ctx context.Context, userID string, input *CreateTemplateInput) (*entity.FormTemplate, error) {
	if (input.Document == nil) == (input.Layout == nil) {
		return nil, ErrSourceRequired
	}

	document := input.Document
	if document == nil {
		generated, err := s.codec.Generate(input.Layout)
		if err != nil {
			return nil, fmt.Errorf("generate document: %w", err)
		}
		document = generated
	}

	fields, err := s.codec.Extract(document)
	if err != nil {
		return nil, fmt.Errorf("extract fields: %w", err)
	}

	printable, err := s.codec.Blank(document)
	if err != nil {
		return nil, fmt.Errorf("build printable: %w", err)
	}

	id := uuid.New().String()[:32]

	if err := s.store.Put(ctx, storage.OriginalKey(id), bytes.NewReader(document),
		int64(len(document)), storage.DocumentContentType); err != nil {
		return nil, fmt.Errorf("store original: %w", err)
	}
	if err := s.store.Put(ctx, storage.PrintKey(id), bytes.NewReader(printable),
		int64(len(printable)), storage.DocumentContentType); err != nil {
		s.store.RemoveAll(ctx, storage.FormPrefix(id))
		return nil, fmt.Errorf("store printable: %w", err)
	}

	now := time.Now()
	template := &entity.FormTemplate{
		ID:          id,
		Title:       input.Title,
		Description: input.Description,
		Quota:       input.Quota,
		DueDate:     input.DueDate,
		Fields:      fields,
		PageCount:   fields.PageCount(),
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.templateRepo.Create(ctx, template); err != nil {
		// 记录落库失败，回收制品
		s.store.RemoveAll(ctx, storage.FormPrefix(id))
		return nil, fmt.Errorf("create template: %w", err)
	}

	return template, nil
}

// Get 获取模板，经由Redis读缓存
func (s *TemplateService) Get(ctx context.Context, id string) (*entity.FormTemplate, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, templateCacheKey(id)).Bytes()
		if err == nil {
			var template entity.FormTemplate
			if err := json.Unmarshal(cached, &template); err == nil {
				return &template, nil
			}
		}
	}

	template, err := s.templateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(template); err == nil {
			s.rdb.Set(ctx, templateCacheKey(id), data, templateCacheTTL)
		}
	}
	return template, nil
}

// List 列出全部模板
func (s *TemplateService) List(ctx context.Context) ([]entity.FormTemplate, error) {
	return s.templateRepo.ListAll(ctx)
}

// Delete 级联删除模板
// 数据库行在一个事务里删除，提交后再清理对象存储；
// 清理中断最多留下孤儿制品，不会留下指向已删模板的记录。
func (s *TemplateService) Delete(ctx context.Context, id string) error {
	if err := s.templateRepo.DeleteCascade(ctx, id); err != nil {
		return err
	}
	if s.rdb != nil {
		s.rdb.Del(ctx, templateCacheKey(id))
	}
	if err := s.store.RemoveAll(ctx, storage.FormPrefix(id)); err != nil {
		return fmt.Errorf("remove artifacts: %w", err)
	}
	return nil
}

// Original 读取模板源文档制品
func (s *TemplateService) Original(ctx context.Context, id string) (io.ReadCloser, error) {
	if _, err := s.templateRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, storage.OriginalKey(id))
}

// Printable 读取空白可打印版制品
func (s *TemplateService) Printable(ctx context.Context, id string) (io.ReadCloser, error) {
	if _, err := s.templateRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, storage.PrintKey(id))
}

func templateCacheKey(id string) string {
	return "form_template:" + id
}
