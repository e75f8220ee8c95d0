package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrValidation 字段模式校验失败
var ErrValidation = errors.New("field validation failed")

// FieldType 字段类型
type FieldType string

const (
	FieldText      FieldType = "text"
	FieldCheckbox  FieldType = "checkbox"
	FieldRadio     FieldType = "radio"
	FieldSignature FieldType = "signature"
	FieldDate      FieldType = "date"
)

// Rect 字段在页面上的矩形区域（原点在页面左上角，单位pt）
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains 判断r是否完整包含other
func (r Rect) Contains(other Rect) bool {
	return other.X >= r.X && other.Y >= r.Y &&
		other.X+other.Width <= r.X+r.Width &&
		other.Y+other.Height <= r.Y+r.Height
}

// Field 文档上的一个输入元素
// Index 在同一模式内稠密且唯一（0..N-1），与文档阅读顺序一致。
// Value 随类型变化：text/date/signature 为字符串，checkbox/radio 为布尔。
type Field struct {
	Index               int       `json:"index"`
	Name                string    `json:"name"`
	Type                FieldType `json:"type"`
	Value               any       `json:"value"`
	Rect                Rect      `json:"rect"`
	PageIndex           int       `json:"page_index"`
	PageWidth           float64   `json:"page_width"`
	PageHeight          float64   `json:"page_height"`
	SingleSelectionOnly bool      `json:"single_selection_only"`
	GroupName           string    `json:"group_name,omitempty"`
	ChoiceName          string    `json:"choice_name,omitempty"`
}

// StringValue 将Value转为字符串表示，用于展示和导出
func (f Field) StringValue() string {
	switch v := f.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "是"
		}
		return "否"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FieldList 一个模式的有序字段集合，按Index升序存放
type FieldList []Field

// Validate 校验字段模式不变量：
//   - Index 恰好覆盖 {0..N-1}，无缺口无重复
//   - PageIndex 随 Index 递增保持非降（文档顺序）
//   - Rect 完整落在所属页面范围内
//   - 同组且 SingleSelectionOnly 的 radio 字段互斥（至多一个为真）
func (fl FieldList) Validate() error {
	seen := make([]bool, len(fl))
	for _, f := range fl {
		if f.Index < 0 || f.Index >= len(fl) {
			return fmt.Errorf("%w: index %d out of range [0,%d)", ErrValidation, f.Index, len(fl))
		}
		if seen[f.Index] {
			return fmt.Errorf("%w: duplicate index %d", ErrValidation, f.Index)
		}
		seen[f.Index] = true

		page := Rect{Width: f.PageWidth, Height: f.PageHeight}
		if !page.Contains(f.Rect) {
			return fmt.Errorf("%w: field %q rect outside page %d bounds", ErrValidation, f.Name, f.PageIndex)
		}
	}

	lastPage := 0
	groupSelected := map[string]bool{}
	for i := 0; i < len(fl); i++ {
		f, err := fl.ByIndex(i)
		if err != nil {
			return err
		}
		if f.PageIndex < lastPage {
			return fmt.Errorf("%w: page index decreases at field index %d", ErrValidation, i)
		}
		lastPage = f.PageIndex

		if f.GroupName != "" && f.SingleSelectionOnly {
			if on, _ := f.Value.(bool); on {
				if groupSelected[f.GroupName] {
					return fmt.Errorf("%w: group %q has multiple selections", ErrValidation, f.GroupName)
				}
				groupSelected[f.GroupName] = true
			}
		}
	}
	return nil
}

// ByIndex 按Index取字段
func (fl FieldList) ByIndex(index int) (Field, error) {
	for _, f := range fl {
		if f.Index == index {
			return f, nil
		}
	}
	return Field{}, fmt.Errorf("%w: missing index %d", ErrValidation, index)
}

// PageCount 由最大PageIndex推算页数
func (fl FieldList) PageCount() int {
	max := -1
	for _, f := range fl {
		if f.PageIndex > max {
			max = f.PageIndex
		}
	}
	return max + 1
}

// Clone 深拷贝，保证快照与后续模式变更隔离
func (fl FieldList) Clone() FieldList {
	out := make(FieldList, len(fl))
	copy(out, fl)
	return out
}

func (fl FieldList) Value() (driver.Value, error) {
	if fl == nil {
		return json.Marshal(FieldList{})
	}
	return json.Marshal(fl)
}

func (fl *FieldList) Scan(value interface{}) error {
	if value == nil {
		*fl = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan FieldList: %v", value)
	}
	return json.Unmarshal(bytes, fl)
}
