package codec

import (
	"errors"
	"testing"

	"github.com/DocXtract/docxtract/internal/form/entity"
)

func testLayout() *LayoutSpec {
	return &LayoutSpec{
		Title: "入职登记表",
		Fields: []LayoutField{
			{Name: "name", Type: entity.FieldText},
			{Name: "start_date", Type: entity.FieldDate},
			{Name: "remote", Type: entity.FieldCheckbox},
			{Name: "office", Type: entity.FieldRadio, Choices: []string{"北京", "上海", "深圳"}},
			{Name: "signature", Type: entity.FieldSignature},
		},
	}
}

func TestGenerateExtractRoundTrip(t *testing.T) {
	c := NewDocumentCodec()
	document, err := c.Generate(testLayout())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	fields, err := c.Extract(document)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	// text + date + checkbox + 3个radio选项 + signature
	if len(fields) != 7 {
		t.Fatalf("expected 7 fields, got %d", len(fields))
	}
	for i, f := range fields {
		if f.Index != i {
			t.Errorf("field %d has index %d, want dense ordering", i, f.Index)
		}
		if f.PageWidth <= 0 || f.PageHeight <= 0 {
			t.Errorf("field %q missing page dimensions", f.Name)
		}
	}

	radio, err := fields.ByIndex(3)
	if err != nil {
		t.Fatalf("ByIndex(3): %v", err)
	}
	if radio.Name != "office.北京" {
		t.Errorf("radio widget name = %q, want choice-expanded name", radio.Name)
	}
	if radio.GroupName != "office" || radio.ChoiceName != "北京" || !radio.SingleSelectionOnly {
		t.Errorf("radio widget group metadata wrong: %+v", radio)
	}
}

func TestGeneratePageBreak(t *testing.T) {
	spec := &LayoutSpec{Title: "长表单"}
	for i := 0; i < 40; i++ {
		spec.Fields = append(spec.Fields, LayoutField{Name: "q" + string(rune('a'+i%26)) + string(rune('0'+i/26)), Type: entity.FieldText})
	}

	c := NewDocumentCodec()
	document, err := c.Generate(spec)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	fields, err := c.Extract(document)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if fields.PageCount() < 2 {
		t.Errorf("40 text fields should spill onto multiple pages, got %d", fields.PageCount())
	}
	if err := fields.Validate(); err != nil {
		t.Errorf("generated fields fail validation: %v", err)
	}
}

func TestGenerateRejectsBadSpec(t *testing.T) {
	c := NewDocumentCodec()
	cases := []*LayoutSpec{
		nil,
		{},
		{Fields: []LayoutField{{Name: "", Type: entity.FieldText}}},
		{Fields: []LayoutField{{Name: "office", Type: entity.FieldRadio}}},
		{Fields: []LayoutField{{Name: "x", Type: "video"}}},
	}
	for i, spec := range cases {
		if _, err := c.Generate(spec); !errors.Is(err, entity.ErrValidation) {
			t.Errorf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
}

func TestExtractRejectsMalformed(t *testing.T) {
	c := NewDocumentCodec()
	cases := [][]byte{
		nil,
		[]byte("not json"),
		[]byte(`{"version":99,"pages":[]}`),
		[]byte(`{"version":1,"pages":[{"width":0,"height":792,"widgets":[]}]}`),
	}
	for i, data := range cases {
		if _, err := c.Extract(data); !errors.Is(err, ErrMalformedDocument) {
			t.Errorf("case %d: expected ErrMalformedDocument, got %v", i, err)
		}
	}
}

func TestRenderWritesValues(t *testing.T) {
	c := NewDocumentCodec()
	document, err := c.Generate(testLayout())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	rendered, err := c.Render(document, entity.FieldList{
		{Index: 0, Value: "王小明"},
		{Index: 2, Value: true},
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	fields, err := c.Extract(rendered)
	if err != nil {
		t.Fatalf("Extract after render: %v", err)
	}
	name, _ := fields.ByIndex(0)
	if name.Value != "王小明" {
		t.Errorf("text value = %v, want 王小明", name.Value)
	}
	remote, _ := fields.ByIndex(2)
	if on, _ := remote.Value.(bool); !on {
		t.Errorf("checkbox value = %v, want true", remote.Value)
	}
}

func TestRenderExclusiveGroup(t *testing.T) {
	c := NewDocumentCodec()
	document, err := c.Generate(testLayout())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// 先选北京，再选上海：北京应被清除
	first, err := c.Render(document, entity.FieldList{{Index: 3, Value: true}})
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	second, err := c.Render(first, entity.FieldList{{Index: 4, Value: true}})
	if err != nil {
		t.Fatalf("second render: %v", err)
	}

	fields, err := c.Extract(second)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	beijing, _ := fields.ByIndex(3)
	if on, _ := beijing.Value.(bool); on {
		t.Error("selecting another choice should clear the first")
	}
	shanghai, _ := fields.ByIndex(4)
	if on, _ := shanghai.Value.(bool); !on {
		t.Error("second choice should be selected")
	}
	if err := fields.Validate(); err != nil {
		t.Errorf("rendered fields violate exclusivity: %v", err)
	}
}

func TestRenderRejectsUnknownIndex(t *testing.T) {
	c := NewDocumentCodec()
	document, err := c.Generate(testLayout())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	_, err = c.Render(document, entity.FieldList{{Index: 42, Value: "x"}})
	if !errors.Is(err, ErrFieldNotInTemplate) {
		t.Fatalf("expected ErrFieldNotInTemplate, got %v", err)
	}
}

func TestBlankClearsValues(t *testing.T) {
	c := NewDocumentCodec()
	document, err := c.Generate(testLayout())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	filled, err := c.Render(document, entity.FieldList{
		{Index: 0, Value: "王小明"},
		{Index: 2, Value: true},
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	blank, err := c.Blank(filled)
	if err != nil {
		t.Fatalf("Blank failed: %v", err)
	}
	fields, err := c.Extract(blank)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for _, f := range fields {
		if f.Value != nil {
			t.Errorf("field %q still carries value %v after blanking", f.Name, f.Value)
		}
	}
}
