package codec

import (
	"fmt"

	"github.com/DocXtract/docxtract/internal/form/entity"
)

// 页面布局常量（Letter纵向，单位pt）
const (
	pageWidth  = 612.0
	pageHeight = 792.0
	pageMargin = 72.0

	inputHeight  = 28.0
	optionSize   = 16.0
	optionRowGap = 6.0
	rowGap       = 14.0
)

// DocumentCodec 基于结构化文档封包的Codec实现
type DocumentCodec struct{}

// NewDocumentCodec 创建Codec
func NewDocumentCodec() *DocumentCodec {
	return &DocumentCodec{}
}

// Extract 按阅读顺序展开所有控件并分配稠密Index
func (c *DocumentCodec) Extract(document []byte) (entity.FieldList, error) {
	doc, err := decodeDocument(document)
	if err != nil {
		return nil, err
	}

	fields := entity.FieldList{}
	index := 0
	for pageIdx, page := range doc.Pages {
		for _, w := range page.Widgets {
			fields = append(fields, entity.Field{
				Index:               index,
				Name:                w.Name,
				Type:                w.Type,
				Value:               w.Value,
				Rect:                w.Rect,
				PageIndex:           pageIdx,
				PageWidth:           page.Width,
				PageHeight:          page.Height,
				SingleSelectionOnly: w.SingleSelectionOnly,
				GroupName:           w.GroupName,
				ChoiceName:          w.ChoiceName,
			})
			index++
		}
	}

	if err := fields.Validate(); err != nil {
		return nil, err
	}
	return fields, nil
}

// Render 将字段值写回模板文档
// 字段按Index定位到模板控件；Index越界或控件矩形超出页面范围时报错。
func (c *DocumentCodec) Render(template []byte, fields entity.FieldList) ([]byte, error) {
	doc, err := decodeDocument(template)
	if err != nil {
		return nil, err
	}

	// 与Extract相同的阅读顺序展开
	type slot struct {
		widget  *Widget
		pageIdx int
	}
	var slots []slot
	for pageIdx := range doc.Pages {
		page := &doc.Pages[pageIdx]
		for i := range page.Widgets {
			slots = append(slots, slot{widget: &page.Widgets[i], pageIdx: pageIdx})
		}
	}

	for _, f := range fields {
		if f.Index < 0 || f.Index >= len(slots) {
			return nil, fmt.Errorf("%w: index %d", ErrFieldNotInTemplate, f.Index)
		}
		s := slots[f.Index]
		page := doc.Pages[s.pageIdx]
		bounds := entity.Rect{Width: page.Width, Height: page.Height}
		if !bounds.Contains(s.widget.Rect) {
			return nil, fmt.Errorf("%w: field %q rect outside page %d bounds",
				entity.ErrValidation, s.widget.Name, s.pageIdx)
		}

		s.widget.Value = f.Value

		// 互斥组内选中一个即清除其余选项
		if on, _ := f.Value.(bool); on && s.widget.SingleSelectionOnly && s.widget.GroupName != "" {
			for _, other := range slots {
				if other.widget != s.widget && other.widget.GroupName == s.widget.GroupName {
					other.widget.Value = false
				}
			}
		}
	}

	return encodeDocument(doc)
}

// Blank 清空文档中的全部已填值，生成可打印空白版
func (c *DocumentCodec) Blank(document []byte) ([]byte, error) {
	doc, err := decodeDocument(document)
	if err != nil {
		return nil, err
	}
	for pageIdx := range doc.Pages {
		for i := range doc.Pages[pageIdx].Widgets {
			doc.Pages[pageIdx].Widgets[i].Value = nil
		}
	}
	return encodeDocument(doc)
}

// Generate 按布局说明合成空白文档
// 字段自上而下排布，放不下时换页；radio 按选项展开为互斥控件组。
func (c *DocumentCodec) Generate(spec *LayoutSpec) ([]byte, error) {
	if spec == nil || len(spec.Fields) == 0 {
		return nil, fmt.Errorf("%w: empty layout spec", entity.ErrValidation)
	}

	doc := &Document{
		Version: documentVersion,
		Title:   spec.Title,
		Pages:   []Page{{Width: pageWidth, Height: pageHeight}},
	}
	y := pageMargin

	place := func(w Widget, height float64) {
		if y+height > pageHeight-pageMargin {
			doc.Pages = append(doc.Pages, Page{Width: pageWidth, Height: pageHeight})
			y = pageMargin
		}
		w.Rect.Y = y
		last := len(doc.Pages) - 1
		doc.Pages[last].Widgets = append(doc.Pages[last].Widgets, w)
		y += height
	}

	for _, lf := range spec.Fields {
		if lf.Name == "" {
			return nil, fmt.Errorf("%w: layout field without name", entity.ErrValidation)
		}

		switch lf.Type {
		case entity.FieldText, entity.FieldDate, entity.FieldSignature:
			place(Widget{
				Name: lf.Name,
				Type: lf.Type,
				Rect: entity.Rect{X: pageMargin, Width: pageWidth - 2*pageMargin, Height: inputHeight},
			}, inputHeight+rowGap)

		case entity.FieldCheckbox:
			place(Widget{
				Name: lf.Name,
				Type: lf.Type,
				Rect: entity.Rect{X: pageMargin, Width: optionSize, Height: optionSize},
			}, optionSize+rowGap)

		case entity.FieldRadio:
			if len(lf.Choices) == 0 {
				return nil, fmt.Errorf("%w: radio field %q without choices", entity.ErrValidation, lf.Name)
			}
			for _, choice := range lf.Choices {
				place(Widget{
					Name:                lf.Name + "." + choice,
					Type:                entity.FieldRadio,
					Rect:                entity.Rect{X: pageMargin, Width: optionSize, Height: optionSize},
					SingleSelectionOnly: true,
					GroupName:           lf.Name,
					ChoiceName:          choice,
				}, optionSize+optionRowGap)
			}
			y += rowGap - optionRowGap

		default:
			return nil, fmt.Errorf("%w: unknown field type %q", entity.ErrValidation, lf.Type)
		}
	}

	return encodeDocument(doc)
}
