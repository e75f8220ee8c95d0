package codec

import (
	"encoding/json"
	"fmt"

	"github.com/DocXtract/docxtract/internal/form/entity"
)

// documentVersion 文档封包格式版本号
const documentVersion = 1

// Document 渲染文档的结构化封包
// 字形绘制由外部渲染端负责，本格式只承载结构、几何与字段值。
type Document struct {
	Version int    `json:"version"`
	Title   string `json:"title,omitempty"`
	Pages   []Page `json:"pages"`
}

// Page 文档的一页
type Page struct {
	Width   float64  `json:"width"`
	Height  float64  `json:"height"`
	Widgets []Widget `json:"widgets"`
}

// Widget 页面上的一个输入控件，顺序即阅读顺序
type Widget struct {
	Name                string           `json:"name"`
	Type                entity.FieldType `json:"type"`
	Rect                entity.Rect      `json:"rect"`
	Value               any              `json:"value,omitempty"`
	SingleSelectionOnly bool             `json:"single_selection_only,omitempty"`
	GroupName           string           `json:"group_name,omitempty"`
	ChoiceName          string           `json:"choice_name,omitempty"`
}

// decodeDocument 解析文档字节并做基本结构检查
func decodeDocument(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedDocument)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if doc.Version != documentVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedDocument, doc.Version)
	}
	for i, page := range doc.Pages {
		if page.Width <= 0 || page.Height <= 0 {
			return nil, fmt.Errorf("%w: page %d has invalid dimensions", ErrMalformedDocument, i)
		}
	}
	return &doc, nil
}

// encodeDocument 序列化文档
func encodeDocument(doc *Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}
