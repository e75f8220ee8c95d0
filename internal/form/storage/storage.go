package storage

import (
	"context"
	"fmt"
	"io"
)

// 制品内容类型
const (
	DocumentContentType = "application/json"
	ExportContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// OriginalKey 模板源文档
func OriginalKey(formID string) string {
	return fmt.Sprintf("forms/%s/original.json", formID)
}

// PrintKey 空白可打印版
func PrintKey(formID string) string {
	return fmt.Sprintf("forms/%s/print.json", formID)
}

// ResponseKey 单次提交的文档制品，按响应ID只写一次
func ResponseKey(formID, responseID string) string {
	return fmt.Sprintf("forms/%s/responses/%s.json", formID, responseID)
}

// ExportKey 表格导出制品
func ExportKey(formID string) string {
	return fmt.Sprintf("forms/%s/export.xlsx", formID)
}

// FormPrefix 表单全部制品的公共前缀，用于级联清理
func FormPrefix(formID string) string {
	return fmt.Sprintf("forms/%s/", formID)
}

// ObjectStore 制品存储边界，只要求按键的读写删语义
type ObjectStore interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
	RemoveAll(ctx context.Context, prefix string) error
}
