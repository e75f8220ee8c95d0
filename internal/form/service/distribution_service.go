package service

import (
	"context"
	"errors"
	"time"

	"github.com/DocXtract/docxtract/internal/form/entity"
	"github.com/DocXtract/docxtract/internal/form/repository"
	"github.com/DocXtract/docxtract/internal/notify"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// consumeRetryLimit 配额递减CAS的重试上限，超出后拒绝提交
const consumeRetryLimit = 3

// DistributionService 分发与配额引擎
// 每个 (user, form) 对的状态机：无授权 -> 有效(剩余N次) -> 已吊销。
// 已吊销不落库，以授权记录的缺失表示。
type DistributionService struct {
	requestRepo  *repository.RequestRepository
	templateRepo *repository.TemplateRepository
	userRepo     *repository.UserRepository
	webhook      *notify.Webhook
	logger       *zap.Logger
}

// NewDistributionService 创建分发与配额引擎
func NewDistributionService(
	requestRepo *repository.RequestRepository,
	templateRepo *repository.TemplateRepository,
	userRepo *repository.UserRepository,
	webhook *notify.Webhook,
	logger *zap.Logger,
) *DistributionService {
	return &DistributionService{
		requestRepo:  requestRepo,
		templateRepo: templateRepo,
		userRepo:     userRepo,
		webhook:      webhook,
		logger:       logger,
	}
}

// Distribute 将表单分发给接收人
// userIDs 为空时必须显式传 all=true 才会广播给全部用户。
// 已持有有效授权的接收人跳过（非错误）；吊销后再次分发时
// 剩余次数重置为模板当前配额，不继承历史消耗。
// 返回新建授权数。
func (s *DistributionService) Distribute(ctx context.Context, formID string, userIDs []string, all bool) (int, error) {
	template, err := s.templateRepo.FindByID(ctx, formID)
	if err != nil {
		return 0, err
	}

	targets, err := s.resolveTargets(ctx, userIDs, all)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, userID := range targets {
		if _, err := s.requestRepo.FindByUserAndForm(ctx, userID, formID); err == nil {
			continue // 已有有效授权，跳过
		} else if !errors.Is(err, repository.ErrNotFound) {
			return created, err
		}

		now := time.Now()
		request := &entity.FormRequest{
			ID:                   uuid.New().String()[:32],
			UserID:               userID,
			FormID:               formID,
			SubmissionsRemaining: template.Quota,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if err := s.requestRepo.Create(ctx, request); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue // 并发分发撞到唯一索引，视为已成功
			}
			return created, err
		}

		if err := s.templateRepo.AddRecipient(ctx, formID, userID); err != nil {
			return created, err
		}
		created++

		if err := s.webhook.FormDistributed(ctx, formID, template.Title, userID, template.DueDate); err != nil {
			s.logger.Warn("distribution notification failed",
				zap.String("form_id", formID),
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}
	return created, nil
}

// Revoke 吊销接收人对表单的有效授权，不存在时为空操作
func (s *DistributionService) Revoke(ctx context.Context, formID string, userIDs []string, all bool) error {
	targets, err := s.resolveTargets(ctx, userIDs, all)
	if err != nil {
		return err
	}
	for _, userID := range targets {
		if err := s.requestRepo.DeleteByUserAndForm(ctx, userID, formID); err != nil {
			return err
		}
	}
	return nil
}

// ConsumeAttempt 消耗一次提交配额，每次被接受的提交恰好调用一次
// 剩余1次时吊销与消耗是同一个原子删除；剩余大于1次时按读到的旧值
// 做CAS递减，未命中重读重试；重试耗尽按无授权拒绝，宁可拒绝不可多收。
// 不限次数的授权（哨兵0）从不递减。
func (s *DistributionService) ConsumeAttempt(ctx context.Context, requestID string) error {
	for attempt := 0; attempt < consumeRetryLimit; attempt++ {
		request, err := s.requestRepo.FindByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUnauthorized
			}
			return err
		}

		switch {
		case request.Unlimited():
			return nil

		case request.SubmissionsRemaining == 1:
			deleted, err := s.requestRepo.DeleteIfExhausted(ctx, requestID)
			if err != nil {
				return err
			}
			if deleted {
				return nil
			}
			// 并发方抢先消耗，重读再试

		case request.SubmissionsRemaining > 1:
			updated, err := s.requestRepo.DecrementCAS(ctx, requestID, request.SubmissionsRemaining)
			if err != nil {
				return err
			}
			if updated {
				return nil
			}

		default:
			// 剩余次数为负不应出现，按无授权处理
			return ErrUnauthorized
		}
	}
	return ErrUnauthorized
}

// UserForm 接收人视角的一条有效授权
type UserForm struct {
	FormID               string     `json:"form_id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	DueDate              *time.Time `json:"due_date"`
	SubmissionsRemaining int        `json:"submissions_remaining"`
}

// FormsForUser 列出某用户当前可填写的表单
func (s *DistributionService) FormsForUser(ctx context.Context, userID string) ([]UserForm, error) {
	requests, err := s.requestRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	forms := make([]UserForm, 0, len(requests))
	for _, request := range requests {
		template, err := s.templateRepo.FindByID(ctx, request.FormID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue // 模板已删但级联未及，跳过
			}
			return nil, err
		}
		forms = append(forms, UserForm{
			FormID:               template.ID,
			Title:                template.Title,
			Description:          template.Description,
			DueDate:              template.DueDate,
			SubmissionsRemaining: request.SubmissionsRemaining,
		})
	}
	return forms, nil
}

// resolveTargets 解析目标用户集
func (s *DistributionService) resolveTargets(ctx context.Context, userIDs []string, all bool) ([]string, error) {
	if len(userIDs) > 0 {
		return userIDs, nil
	}
	if !all {
		return nil, ErrRecipientsRequired
	}
	return s.userRepo.ListIDs(ctx)
}
