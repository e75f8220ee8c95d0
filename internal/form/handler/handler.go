package handler

import (
	"errors"

	"github.com/DocXtract/docxtract/internal/form/codec"
	"github.com/DocXtract/docxtract/internal/form/entity"
	"github.com/DocXtract/docxtract/internal/form/repository"
	"github.com/DocXtract/docxtract/internal/form/service"
	"github.com/gin-gonic/gin"
)

// Handlers 处理器集合
type Handlers struct {
	Template     *TemplateHandler
	Distribution *DistributionHandler
	Response     *ResponseHandler
	User         *UserHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, repos *repository.Repositories) *Handlers {
	return &Handlers{
		Template:     NewTemplateHandler(svc.Template),
		Distribution: NewDistributionHandler(svc.Distribution),
		Response:     NewResponseHandler(svc.Response),
		User:         NewUserHandler(repos.User),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Forbidden 禁止访问响应
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// FailWith 将领域错误映射为HTTP响应
func FailWith(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		Forbidden(c, err.Error())
	case errors.Is(err, service.ErrRecipientsRequired),
		errors.Is(err, service.ErrSourceRequired),
		errors.Is(err, entity.ErrValidation),
		errors.Is(err, codec.ErrMalformedDocument),
		errors.Is(err, codec.ErrFieldNotInTemplate):
		BadRequest(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// ============================================================
// User Handler
// ============================================================

type UserHandler struct {
	repo *repository.UserRepository
}

func NewUserHandler(repo *repository.UserRepository) *UserHandler {
	return &UserHandler{repo: repo}
}

// List 获取用户列表
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.repo.ListAll(c.Request.Context())
	if err != nil {
		InternalError(c, "获取用户列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": users})
}
