package entity

import (
	"errors"
	"testing"
)

func validFields() FieldList {
	return FieldList{
		{Index: 0, Name: "name", Type: FieldText, Rect: Rect{X: 72, Y: 72, Width: 468, Height: 28}, PageIndex: 0, PageWidth: 612, PageHeight: 792},
		{Index: 1, Name: "agree", Type: FieldCheckbox, Rect: Rect{X: 72, Y: 120, Width: 16, Height: 16}, PageIndex: 0, PageWidth: 612, PageHeight: 792},
		{Index: 2, Name: "sign", Type: FieldSignature, Rect: Rect{X: 72, Y: 72, Width: 468, Height: 28}, PageIndex: 1, PageWidth: 612, PageHeight: 792},
	}
}

func TestFieldListValidate(t *testing.T) {
	if err := validFields().Validate(); err != nil {
		t.Fatalf("valid fields should pass, got %v", err)
	}
}

func TestFieldListValidateDuplicateIndex(t *testing.T) {
	fields := validFields()
	fields[1].Index = 0
	err := fields.Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for duplicate index, got %v", err)
	}
}

func TestFieldListValidateIndexGap(t *testing.T) {
	fields := validFields()
	fields[2].Index = 5
	err := fields.Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for index gap, got %v", err)
	}
}

func TestFieldListValidatePageOrder(t *testing.T) {
	fields := validFields()
	fields[0].PageIndex = 1
	fields[2].PageIndex = 0
	err := fields.Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for decreasing page index, got %v", err)
	}
}

func TestFieldListValidateRectOutOfBounds(t *testing.T) {
	fields := validFields()
	fields[0].Rect = Rect{X: 600, Y: 72, Width: 100, Height: 28}
	err := fields.Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for out-of-bounds rect, got %v", err)
	}
}

func TestFieldListValidateExclusiveGroup(t *testing.T) {
	fields := FieldList{
		{Index: 0, Name: "color.red", Type: FieldRadio, Value: true, Rect: Rect{X: 72, Y: 72, Width: 16, Height: 16}, PageWidth: 612, PageHeight: 792, SingleSelectionOnly: true, GroupName: "color", ChoiceName: "red"},
		{Index: 1, Name: "color.blue", Type: FieldRadio, Value: true, Rect: Rect{X: 72, Y: 94, Width: 16, Height: 16}, PageWidth: 612, PageHeight: 792, SingleSelectionOnly: true, GroupName: "color", ChoiceName: "blue"},
	}
	err := fields.Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for double selection, got %v", err)
	}

	fields[1].Value = false
	if err := fields.Validate(); err != nil {
		t.Fatalf("single selection should pass, got %v", err)
	}
}

func TestFieldListPageCount(t *testing.T) {
	if got := validFields().PageCount(); got != 2 {
		t.Errorf("PageCount = %d, want 2", got)
	}
	if got := (FieldList{}).PageCount(); got != 0 {
		t.Errorf("empty PageCount = %d, want 0", got)
	}
}

func TestFieldStringValue(t *testing.T) {
	cases := []struct {
		value any
		want  string
	}{
		{nil, ""},
		{"张三", "张三"},
		{true, "是"},
		{false, "否"},
	}
	for _, c := range cases {
		f := Field{Value: c.value}
		if got := f.StringValue(); got != c.want {
			t.Errorf("StringValue(%v) = %q, want %q", c.value, got, c.want)
		}
	}
}

func TestFieldListClone(t *testing.T) {
	fields := validFields()
	clone := fields.Clone()
	clone[0].Value = "changed"
	if fields[0].Value == "changed" {
		t.Fatal("clone should not share backing array with original")
	}
}
