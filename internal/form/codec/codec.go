package codec

import (
	"errors"

	"github.com/DocXtract/docxtract/internal/form/entity"
)

// 错误定义
var (
	// ErrMalformedDocument 文档字节无法解析
	ErrMalformedDocument = errors.New("malformed document")
	// ErrFieldNotInTemplate 渲染时引用了模板中不存在的字段
	ErrFieldNotInTemplate = errors.New("field not in template")
)

// Codec 文档与字段列表之间的转换边界
// Extract 按文档阅读顺序为字段分配稠密Index；
// Render 将字段值覆盖到模板文档对应页面的矩形区域；
// Generate 按布局说明合成一份空白文档；
// Blank 清空文档中的已填值，用于生成可打印版本。
type Codec interface {
	Extract(document []byte) (entity.FieldList, error)
	Render(template []byte, fields entity.FieldList) ([]byte, error)
	Generate(spec *LayoutSpec) ([]byte, error)
	Blank(document []byte) ([]byte, error)
}

// LayoutSpec 空白文档的布局说明
// 未上传源文档时在模板创建阶段使用。
type LayoutSpec struct {
	Title  string        `json:"title"`
	Fields []LayoutField `json:"fields"`
}

// LayoutField 布局说明中的一个字段条目
// radio 类型按 Choices 展开为一组互斥控件。
type LayoutField struct {
	Name    string           `json:"name"`
	Type    entity.FieldType `json:"type"`
	Choices []string         `json:"choices,omitempty"`
}
