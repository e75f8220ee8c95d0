package handler

import (
	"github.com/DocXtract/docxtract/internal/form/service"
	"github.com/gin-gonic/gin"
)

// DistributionHandler 分发处理器
type DistributionHandler struct {
	svc *service.DistributionService
}

// NewDistributionHandler 创建分发处理器
func NewDistributionHandler(svc *service.DistributionService) *DistributionHandler {
	return &DistributionHandler{svc: svc}
}

// distributeRequest 分发/吊销请求体
// 广播全员必须显式传 all=true，不再默认。
type distributeRequest struct {
	UserIDs []string `json:"user_ids"`
	All     bool     `json:"all"`
}

// Distribute 将表单分发给接收人
// POST /api/v1/forms/:id/distribute
func (h *DistributionHandler) Distribute(c *gin.Context) {
	var req distributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求体解析失败: "+err.Error())
		return
	}

	created, err := h.svc.Distribute(c.Request.Context(), c.Param("id"), req.UserIDs, req.All)
	if err != nil {
		FailWith(c, err)
		return
	}
	Success(c, gin.H{"created": created})
}

// Revoke 吊销接收人的有效授权
// POST /api/v1/forms/:id/revoke
func (h *DistributionHandler) Revoke(c *gin.Context) {
	var req distributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求体解析失败: "+err.Error())
		return
	}

	if err := h.svc.Revoke(c.Request.Context(), c.Param("id"), req.UserIDs, req.All); err != nil {
		FailWith(c, err)
		return
	}
	Success(c, gin.H{"message": "revoked"})
}

// FormsForUser 列出某用户当前可填写的表单
// GET /api/v1/users/:id/forms
func (h *DistributionHandler) FormsForUser(c *gin.Context) {
	forms, err := h.svc.FormsForUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		FailWith(c, err)
		return
	}
	Success(c, gin.H{"items": forms})
}
