package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DocXtract/docxtract/internal/form/entity"
	"github.com/DocXtract/docxtract/internal/form/storage"
)

func TestSubmitRenderPath(t *testing.T) {
	env := setupServices(t)
	template := createTestTemplate(t, env, 2, nil)
	seedUsers(t, env, "u1")
	request := distributeTo(t, env, template.ID, "u1")

	response, err := env.svc.Response.Submit(context.Background(), "u1", &SubmitInput{
		RequestID: request.ID,
		Fields: entity.FieldList{
			{Index: 0, Value: "高铁出差"},
			{Index: 2, Value: true},
		},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	saved, err := env.repos.Response.FindByID(context.Background(), response.ID)
	if err != nil {
		t.Fatalf("find response: %v", err)
	}
	reason, err := saved.Fields.ByIndex(0)
	if err != nil {
		t.Fatalf("snapshot missing field: %v", err)
	}
	if reason.Value != "高铁出差" {
		t.Errorf("snapshot value = %v, want 高铁出差", reason.Value)
	}

	// 文档制品与导出表都已落盘
	if _, err := env.store.Get(context.Background(), storage.ResponseKey(template.ID, response.ID)); err != nil {
		t.Errorf("response artifact missing: %v", err)
	}
	if _, err := env.svc.Response.Export(context.Background(), template.ID); err != nil {
		t.Errorf("export artifact missing: %v", err)
	}

	// 配额扣减一次
	after, err := env.repos.Request.FindByID(context.Background(), request.ID)
	if err != nil {
		t.Fatalf("find request: %v", err)
	}
	if after.SubmissionsRemaining != 1 {
		t.Errorf("remaining = %d, want 1", after.SubmissionsRemaining)
	}
}

func TestSubmitDocumentPath(t *testing.T) {
	env := setupServices(t)
	template := createTestTemplate(t, env, 1, nil)
	seedUsers(t, env, "u1")
	request := distributeTo(t, env, template.ID, "u1")

	// 读取原始文档，在客户端填好后整份上传
	original, err := env.svc.Template.Original(context.Background(), template.ID)
	if err != nil {
		t.Fatalf("read original: %v", err)
	}
	defer original.Close()
	document, err := io.ReadAll(original)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}

	filled, err := env.svc.Response.Submit(context.Background(), "u1", &SubmitInput{
		RequestID: request.ID,
		Document:  document,
	})
	if err != nil {
		t.Fatalf("submit document: %v", err)
	}
	if filled.FormID != template.ID || filled.UserID != "u1" {
		t.Errorf("unexpected response: %+v", filled)
	}
}

func TestSubmitWrongUser(t *testing.T) {
	env := setupServices(t)
	template := createTestTemplate(t, env, 1, nil)
	seedUsers(t, env, "u1", "u2")
	request := distributeTo(t, env, template.ID, "u1")

	_, err := env.svc.Response.Submit(context.Background(), "u2", &SubmitInput{
		RequestID: request.ID,
		Fields:    entity.FieldList{{Index: 0, Value: "x"}},
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for mismatched user, got %v", err)
	}
}

func TestSubmitWithoutRequest(t *testing.T) {
	env := setupServices(t)
	createTestTemplate(t, env, 1, nil)

	_, err := env.svc.Response.Submit(context.Background(), "u1", &SubmitInput{
		RequestID: "missing",
		Fields:    entity.FieldList{{Index: 0, Value: "x"}},
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSubmitPastDue(t *testing.T) {
	env := setupServices(t)
	due := time.Now().Add(-time.Hour)
	template := createTestTemplate(t, env, 1, &due)
	seedUsers(t, env, "u1")
	request := distributeTo(t, env, template.ID, "u1")

	_, err := env.svc.Response.Submit(context.Background(), "u1", &SubmitInput{
		RequestID: request.ID,
		Fields:    entity.FieldList{{Index: 0, Value: "late"}},
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized past due date, got %v", err)
	}
}

func TestListByFormGroupsResponses(t *testing.T) {
	env := setupServices(t)
	template := createTestTemplate(t, env, 0, nil)
	seedUsers(t, env, "u1", "u2")
	r1 := distributeTo(t, env, template.ID, "u1")
	r2 := distributeTo(t, env, template.ID, "u2")

	for i, req := range []*entity.FormRequest{r1, r2, r1} {
		if _, err := env.svc.Response.Submit(context.Background(), req.UserID, &SubmitInput{
			RequestID: req.ID,
			Fields:    entity.FieldList{{Index: 0, Value: "第" + string(rune('1'+i)) + "次"}},
		}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	grouped, err := env.svc.Response.ListByForm(context.Background(), template.ID, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(grouped) != 2 {
		t.Fatalf("groups = %d, want 2", len(grouped))
	}
	total := 0
	for _, g := range grouped {
		total += len(g.Responses)
		if g.UserID == "u1" && len(g.Responses) != 2 {
			t.Errorf("u1 responses = %d, want 2", len(g.Responses))
		}
	}
	if total != 3 {
		t.Errorf("total responses = %d, want 3", total)
	}

	// 用户过滤
	only, err := env.svc.Response.ListByForm(context.Background(), template.ID, []string{"u2"})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(only) != 1 || only[0].UserID != "u2" {
		t.Errorf("filter result = %+v, want only u2", only)
	}
}

func TestBuildExportHeaderOnly(t *testing.T) {
	env := setupServices(t)
	template := createTestTemplate(t, env, 1, nil)

	file, err := env.svc.Response.BuildExport(context.Background(), template.ID)
	if err != nil {
		t.Fatalf("build export: %v", err)
	}

	a1, _ := file.GetCellValue("Responses", "A1")
	b1, _ := file.GetCellValue("Responses", "B1")
	c1, _ := file.GetCellValue("Responses", "C1")
	if a1 != "用户" || b1 != "提交时间" {
		t.Errorf("fixed headers = %q/%q, want 用户/提交时间", a1, b1)
	}
	if c1 != "reason" {
		t.Errorf("first field header = %q, want reason", c1)
	}
	a2, _ := file.GetCellValue("Responses", "A2")
	if a2 != "" {
		t.Errorf("no submissions yet, row 2 should be empty, got %q", a2)
	}
}

func TestBuildExportToleratesSchemaDrift(t *testing.T) {
	env := setupServices(t)
	template := createTestTemplate(t, env, 0, nil)
	seedUsers(t, env, "u1")
	request := distributeTo(t, env, template.ID, "u1")

	if _, err := env.svc.Response.Submit(context.Background(), "u1", &SubmitInput{
		RequestID: request.ID,
		Fields:    entity.FieldList{{Index: 0, Value: "打车"}},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// 快照里不存在的列：直接改库里的模板字段名模拟漂移
	drifted, err := env.repos.Template.FindByID(context.Background(), template.ID)
	if err != nil {
		t.Fatalf("find template: %v", err)
	}
	drifted.Fields[0].Name = "renamed_reason"
	if err := env.db.Model(&entity.FormTemplate{}).
		Where("id = ?", template.ID).
		Update("fields", drifted.Fields).Error; err != nil {
		t.Fatalf("update fields: %v", err)
	}

	file, err := env.svc.Response.BuildExport(context.Background(), template.ID)
	if err != nil {
		t.Fatalf("build export after drift: %v", err)
	}
	c1, _ := file.GetCellValue("Responses", "C1")
	if c1 != "renamed_reason" {
		t.Errorf("header = %q, want renamed_reason", c1)
	}
	c2, _ := file.GetCellValue("Responses", "C2")
	if c2 != "" {
		t.Errorf("missing snapshot field should render empty, got %q", c2)
	}
	a2, _ := file.GetCellValue("Responses", "A2")
	if a2 != "u1" {
		t.Errorf("row user = %q, want u1", a2)
	}
}
