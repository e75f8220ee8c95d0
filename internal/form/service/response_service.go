package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/DocXtract/docxtract/internal/form/codec"
	"github.com/DocXtract/docxtract/internal/form/entity"
	"github.com/DocXtract/docxtract/internal/form/repository"
	"github.com/DocXtract/docxtract/internal/form/storage"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// 导出表固定列
var exportFixedHeaders = []string{"用户", "提交时间"}

// ResponseService 提交收集与表格导出
type ResponseService struct {
	responseRepo *repository.ResponseRepository
	requestRepo  *repository.RequestRepository
	templateRepo *repository.TemplateRepository
	distribution *DistributionService
	store        storage.ObjectStore
	codec        codec.Codec
}

// NewResponseService 创建提交收集服务
func NewResponseService(
	responseRepo *repository.ResponseRepository,
	requestRepo *repository.RequestRepository,
	templateRepo *repository.TemplateRepository,
	distribution *DistributionService,
	store storage.ObjectStore,
	docCodec codec.Codec,
) *ResponseService {
	return &ResponseService{
		responseRepo: responseRepo,
		requestRepo:  requestRepo,
		templateRepo: templateRepo,
		distribution: distribution,
		store:        store,
		codec:        docCodec,
	}
}

// SubmitInput 提交参数
// Document 与 Fields 二选一：上传已填文档（扫描件），
// 或只传字段值、由服务端渲染出文档制品。
type SubmitInput struct {
	RequestID string
	Document  []byte
	Fields    entity.FieldList
}

// Submit 受理一次提交
// 顺序：校验授权与截止时间 -> 消耗配额 -> 解析或渲染文档 ->
// 制品落盘 -> 写入快照 -> 重建导出表。配额消耗在快照写入之前，
// 与原始语义一致。
func (s *ResponseService) Submit(ctx context.Context, userID string, input *SubmitInput) (*entity.FormResponse, error) {
	request, err := s.requestRepo.FindByID(ctx, input.RequestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if request.UserID != userID {
		return nil, ErrUnauthorized
	}

	template, err := s.templateRepo.FindByID(ctx, request.FormID)
	if err != nil {
		return nil, err
	}
	if template.PastDue(time.Now()) {
		return nil, fmt.Errorf("%w: past due date", ErrUnauthorized)
	}

	if err := s.distribution.ConsumeAttempt(ctx, request.ID); err != nil {
		return nil, err
	}

	var document []byte
	var fields entity.FieldList
	if input.Document != nil {
		fields, err = s.codec.Extract(input.Document)
		if err != nil {
			return nil, fmt.Errorf("extract submitted document: %w", err)
		}
		document = input.Document
	} else {
		original, err := s.readArtifact(ctx, storage.OriginalKey(template.ID))
		if err != nil {
			return nil, fmt.Errorf("read template artifact: %w", err)
		}
		document, err = s.codec.Render(original, input.Fields)
		if err != nil {
			return nil, fmt.Errorf("render submission: %w", err)
		}
		// 快照取自渲染结果，带上完整的字段名与几何信息
		fields, err = s.codec.Extract(document)
		if err != nil {
			return nil, fmt.Errorf("extract rendered document: %w", err)
		}
	}

	responseID := uuid.New().String()[:32]
	if err := s.store.Put(ctx, storage.ResponseKey(template.ID, responseID),
		bytes.NewReader(document), int64(len(document)), storage.DocumentContentType); err != nil {
		return nil, fmt.Errorf("store response artifact: %w", err)
	}

	response := &entity.FormResponse{
		ID:          responseID,
		FormID:      template.ID,
		UserID:      userID,
		Fields:      fields.Clone(),
		SubmittedAt: time.Now(),
	}
	if err := s.responseRepo.Create(ctx, response); err != nil {
		return nil, fmt.Errorf("create response: %w", err)
	}

	// 每次受理后全量重建导出表，行数受配额×接收人数约束
	if err := s.rebuildExport(ctx, template); err != nil {
		return nil, fmt.Errorf("rebuild export: %w", err)
	}

	return response, nil
}

// UserResponses 某个用户对某表单的提交视图
type UserResponses struct {
	UserID    string                `json:"user_id"`
	Responses []entity.FormResponse `json:"responses"`
}

// ListByForm 按用户分组列出某表单的提交
// userIDs 为空时返回全部用户的提交。
func (s *ResponseService) ListByForm(ctx context.Context, formID string, userIDs []string) ([]UserResponses, error) {
	if _, err := s.templateRepo.FindByID(ctx, formID); err != nil {
		return nil, err
	}

	responses, err := s.responseRepo.ListByForm(ctx, formID)
	if err != nil {
		return nil, err
	}

	var filter map[string]bool
	if len(userIDs) > 0 {
		filter = make(map[string]bool, len(userIDs))
		for _, id := range userIDs {
			filter[id] = true
		}
	}

	grouped := map[string]int{}
	var out []UserResponses
	for _, response := range responses {
		if filter != nil && !filter[response.UserID] {
			continue
		}
		idx, ok := grouped[response.UserID]
		if !ok {
			idx = len(out)
			grouped[response.UserID] = idx
			out = append(out, UserResponses{UserID: response.UserID})
		}
		out[idx].Responses = append(out[idx].Responses, response)
	}
	return out, nil
}

// BuildExport 重绘表格导出
// 每个提交一行，按提交顺序；列为模板当前字段名加固定列。
// 快照与当前模式漂移时容错：缺失字段留空，多余字段忽略。
func (s *ResponseService) BuildExport(ctx context.Context, formID string) (*excelize.File, error) {
	template, err := s.templateRepo.FindByID(ctx, formID)
	if err != nil {
		return nil, err
	}
	responses, err := s.responseRepo.ListByForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	return buildExportFile(template, responses)
}

// Export 读取已落盘的导出表制品
func (s *ResponseService) Export(ctx context.Context, formID string) (io.ReadCloser, error) {
	if _, err := s.templateRepo.FindByID(ctx, formID); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, storage.ExportKey(formID))
}

// ResponseDocument 读取单次提交的文档制品
func (s *ResponseService) ResponseDocument(ctx context.Context, responseID string) (io.ReadCloser, *entity.FormResponse, error) {
	response, err := s.responseRepo.FindByID(ctx, responseID)
	if err != nil {
		return nil, nil, err
	}
	reader, err := s.store.Get(ctx, storage.ResponseKey(response.FormID, response.ID))
	if err != nil {
		return nil, nil, err
	}
	return reader, response, nil
}

// rebuildExport 重建并落盘导出表
func (s *ResponseService) rebuildExport(ctx context.Context, template *entity.FormTemplate) error {
	responses, err := s.responseRepo.ListByForm(ctx, template.ID)
	if err != nil {
		return err
	}
	file, err := buildExportFile(template, responses)
	if err != nil {
		return err
	}
	buf, err := file.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return s.store.Put(ctx, storage.ExportKey(template.ID), buf,
		int64(buf.Len()), storage.ExportContentType)
}

// buildExportFile 由模板当前模式和提交快照生成xlsx
func buildExportFile(template *entity.FormTemplate, responses []entity.FormResponse) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Responses"
	f.SetSheetName("Sheet1", sheet)

	// 表头样式: 加粗
	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	headers := make([]string, 0, len(template.Fields)+len(exportFixedHeaders))
	headers = append(headers, exportFixedHeaders...)
	columnNames := make([]string, 0, len(template.Fields))
	for i := 0; i < len(template.Fields); i++ {
		field, err := template.Fields.ByIndex(i)
		if err != nil {
			return nil, err
		}
		columnNames = append(columnNames, field.Name)
		headers = append(headers, field.Name)
	}

	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	for rowIdx, response := range responses {
		row := rowIdx + 2

		byName := make(map[string]entity.Field, len(response.Fields))
		for _, field := range response.Fields {
			if _, ok := byName[field.Name]; !ok {
				byName[field.Name] = field
			}
		}

		colA, _ := excelize.ColumnNumberToName(1)
		colB, _ := excelize.ColumnNumberToName(2)
		f.SetCellValue(sheet, fmt.Sprintf("%s%d", colA, row), response.UserID)
		f.SetCellValue(sheet, fmt.Sprintf("%s%d", colB, row), response.SubmittedAt.Format("2006-01-02 15:04:05"))

		for i, name := range columnNames {
			col, _ := excelize.ColumnNumberToName(i + 1 + len(exportFixedHeaders))
			if field, ok := byName[name]; ok {
				f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, row), field.StringValue())
			}
			// 快照里没有的字段留空
		}
	}

	return f, nil
}

// readArtifact 整段读入制品
func (s *ResponseService) readArtifact(ctx context.Context, key string) ([]byte, error) {
	reader, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}
