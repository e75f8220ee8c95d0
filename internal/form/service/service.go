package service

import (
	"errors"

	"github.com/DocXtract/docxtract/internal/form/codec"
	"github.com/DocXtract/docxtract/internal/form/repository"
	"github.com/DocXtract/docxtract/internal/form/storage"
	"github.com/DocXtract/docxtract/internal/notify"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 错误定义
var (
	// ErrUnauthorized 无有效授权或配额已耗尽
	ErrUnauthorized = errors.New("no active request or quota exhausted")
	// ErrRecipientsRequired 未指定接收人且未显式要求全员分发
	ErrRecipientsRequired = errors.New("recipient list required unless all is set")
	// ErrSourceRequired 模板创建时源文档与布局说明必须二选一
	ErrSourceRequired = errors.New("exactly one of document or layout spec required")
)

// Services 服务集合
type Services struct {
	Template     *TemplateService
	Distribution *DistributionService
	Response     *ResponseService
}

// NewServices 创建服务集合
func NewServices(
	repos *repository.Repositories,
	store storage.ObjectStore,
	docCodec codec.Codec,
	rdb *redis.Client,
	webhook *notify.Webhook,
	logger *zap.Logger,
) *Services {
	template := NewTemplateService(repos.Template, store, docCodec, rdb)
	distribution := NewDistributionService(repos.Request, repos.Template, repos.User, webhook, logger)
	response := NewResponseService(repos.Response, repos.Request, repos.Template, distribution, store, docCodec)

	return &Services{
		Template:     template,
		Distribution: distribution,
		Response:     response,
	}
}
