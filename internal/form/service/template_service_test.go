package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DocXtract/docxtract/internal/form/codec"
	"github.com/DocXtract/docxtract/internal/form/entity"
	"github.com/DocXtract/docxtract/internal/form/repository"
)

func TestCreateTemplateFromLayout(t *testing.T) {
	env := setupServices(t)
	template := createTestTemplate(t, env, 3, nil)

	if template.ID == "" || len(template.ID) != 32 {
		t.Errorf("template ID = %q, want 32-char id", template.ID)
	}
	if len(template.Fields) != 3 {
		t.Errorf("fields = %d, want 3", len(template.Fields))
	}
	if err := template.Fields.Validate(); err != nil {
		t.Errorf("extracted fields invalid: %v", err)
	}
	if template.PageCount != 1 {
		t.Errorf("page count = %d, want 1", template.PageCount)
	}

	// 源文档与空白可打印版两份制品
	if env.store.Len() != 2 {
		t.Errorf("artifacts = %d, want original + printable", env.store.Len())
	}
	if _, err := env.svc.Template.Original(context.Background(), template.ID); err != nil {
		t.Errorf("original artifact: %v", err)
	}
	if _, err := env.svc.Template.Printable(context.Background(), template.ID); err != nil {
		t.Errorf("printable artifact: %v", err)
	}
}

func TestCreateTemplateFromDocument(t *testing.T) {
	env := setupServices(t)
	document, err := codec.NewDocumentCodec().Generate(&codec.LayoutSpec{
		Title:  "请假单",
		Fields: []codec.LayoutField{{Name: "reason", Type: entity.FieldText}},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	template, err := env.svc.Template.Create(context.Background(), "creator-001", &CreateTemplateInput{
		Title:    "请假单",
		Document: document,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(template.Fields) != 1 || template.Fields[0].Name != "reason" {
		t.Errorf("unexpected fields: %+v", template.Fields)
	}
}

func TestCreateTemplateSourceExclusive(t *testing.T) {
	env := setupServices(t)
	layout := &codec.LayoutSpec{Fields: []codec.LayoutField{{Name: "x", Type: entity.FieldText}}}
	document, _ := codec.NewDocumentCodec().Generate(layout)

	cases := []*CreateTemplateInput{
		{Title: "both missing"},
		{Title: "both set", Document: document, Layout: layout},
	}
	for i, input := range cases {
		if _, err := env.svc.Template.Create(context.Background(), "creator-001", input); !errors.Is(err, ErrSourceRequired) {
			t.Errorf("case %d: expected ErrSourceRequired, got %v", i, err)
		}
	}
}

func TestCreateTemplateRejectsMalformedDocument(t *testing.T) {
	env := setupServices(t)
	_, err := env.svc.Template.Create(context.Background(), "creator-001", &CreateTemplateInput{
		Title:    "bad",
		Document: []byte("garbage"),
	})
	if !errors.Is(err, codec.ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
	if env.store.Len() != 0 {
		t.Errorf("failed create should leave no artifacts, got %d", env.store.Len())
	}
}

func TestGetTemplate(t *testing.T) {
	env := setupServices(t)
	template := createTestTemplate(t, env, 1, nil)

	got, err := env.svc.Template.Get(context.Background(), template.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != template.Title {
		t.Errorf("title = %q, want %q", got.Title, template.Title)
	}

	if _, err := env.svc.Template.Get(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListTemplates(t *testing.T) {
	env := setupServices(t)
	createTestTemplate(t, env, 1, nil)
	createTestTemplate(t, env, 2, nil)

	templates, err := env.svc.Template.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(templates) != 2 {
		t.Errorf("templates = %d, want 2", len(templates))
	}
}

func TestDeleteTemplateCascades(t *testing.T) {
	env := setupServices(t)
	template := createTestTemplate(t, env, 2, nil)
	seedUsers(t, env, "u1")
	request := distributeTo(t, env, template.ID, "u1")

	if _, err := env.svc.Response.Submit(context.Background(), "u1", &SubmitInput{
		RequestID: request.ID,
		Fields:    entity.FieldList{{Index: 0, Value: "出差"}},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := env.svc.Template.Delete(context.Background(), template.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := env.svc.Template.Get(context.Background(), template.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("template should be gone, got %v", err)
	}
	if _, err := env.repos.Request.FindByUserAndForm(context.Background(), "u1", template.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("request should be gone, got %v", err)
	}
	count, err := env.repos.Response.CountByForm(context.Background(), template.ID)
	if err != nil {
		t.Fatalf("count responses: %v", err)
	}
	if count != 0 {
		t.Errorf("responses remaining = %d, want 0", count)
	}
	recipients, err := env.repos.Template.ListRecipients(context.Background(), template.ID)
	if err != nil {
		t.Fatalf("list recipients: %v", err)
	}
	if len(recipients) != 0 {
		t.Errorf("recipients remaining = %d, want 0", len(recipients))
	}
	if env.store.Len() != 0 {
		t.Errorf("artifacts remaining = %d, want 0", env.store.Len())
	}
}

func TestDeleteTemplateNotFound(t *testing.T) {
	env := setupServices(t)
	if err := env.svc.Template.Delete(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
