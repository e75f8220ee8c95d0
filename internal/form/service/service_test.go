package service

import (
	"context"
	"testing"
	"time"

	"github.com/DocXtract/docxtract/internal/form/codec"
	"github.com/DocXtract/docxtract/internal/form/entity"
	"github.com/DocXtract/docxtract/internal/form/repository"
	"github.com/DocXtract/docxtract/internal/form/testutil"
	"github.com/DocXtract/docxtract/internal/notify"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db    *gorm.DB
	svc   *Services
	repos *repository.Repositories
	store *testutil.MemStore
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	store := testutil.NewMemStore()
	svc := NewServices(repos, store, codec.NewDocumentCodec(), nil, notify.NewWebhook(""), zap.NewNop())
	return &testEnv{db: db, svc: svc, repos: repos, store: store}
}

// createTestTemplate 按布局合成一个模板
func createTestTemplate(t *testing.T, env *testEnv, quota int, dueDate *time.Time) *entity.FormTemplate {
	t.Helper()
	template, err := env.svc.Template.Create(context.Background(), "creator-001", &CreateTemplateInput{
		Title:   "差旅报销单",
		Quota:   quota,
		DueDate: dueDate,
		Layout: &codec.LayoutSpec{
			Title: "差旅报销单",
			Fields: []codec.LayoutField{
				{Name: "reason", Type: entity.FieldText},
				{Name: "date", Type: entity.FieldDate},
				{Name: "approved", Type: entity.FieldCheckbox},
			},
		},
	})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	return template
}

func seedUsers(t *testing.T, env *testEnv, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if err := env.repos.User.Create(context.Background(), &entity.User{
			ID:     id,
			Name:   "用户" + id,
			Email:  id + "@test.com",
			Status: "active",
		}); err != nil {
			t.Fatalf("seed user %s: %v", id, err)
		}
	}
}

// distributeTo 分发并返回授权记录
func distributeTo(t *testing.T, env *testEnv, formID, userID string) *entity.FormRequest {
	t.Helper()
	if _, err := env.svc.Distribution.Distribute(context.Background(), formID, []string{userID}, false); err != nil {
		t.Fatalf("distribute: %v", err)
	}
	request, err := env.repos.Request.FindByUserAndForm(context.Background(), userID, formID)
	if err != nil {
		t.Fatalf("find request: %v", err)
	}
	return request
}
