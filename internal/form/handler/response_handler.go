package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/DocXtract/docxtract/internal/form/entity"
	"github.com/DocXtract/docxtract/internal/form/service"
	"github.com/DocXtract/docxtract/internal/form/storage"
	"github.com/gin-gonic/gin"
)

// ResponseHandler 提交处理器
type ResponseHandler struct {
	svc *service.ResponseService
}

// NewResponseHandler 创建提交处理器
func NewResponseHandler(svc *service.ResponseService) *ResponseHandler {
	return &ResponseHandler{svc: svc}
}

// submitFieldsRequest JSON 提交请求体
type submitFieldsRequest struct {
	RequestID string           `json:"request_id" binding:"required"`
	Fields    entity.FieldList `json:"fields" binding:"required"`
}

// Submit 受理一次提交
// POST /api/v1/responses
// 两种形态：multipart 上传已填文档（字段 request_id + 文件 document），
// 或 JSON 只传字段值、由服务端渲染。
func (h *ResponseHandler) Submit(c *gin.Context) {
	userID := GetUserID(c)
	if userID == "" {
		Forbidden(c, "未识别的用户")
		return
	}

	var input *service.SubmitInput
	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		requestID := c.PostForm("request_id")
		if requestID == "" {
			BadRequest(c, "缺少 request_id")
			return
		}
		file, err := c.FormFile("document")
		if err != nil {
			BadRequest(c, "缺少文档文件: "+err.Error())
			return
		}
		src, err := file.Open()
		if err != nil {
			BadRequest(c, "文档文件打开失败: "+err.Error())
			return
		}
		defer src.Close()
		document, err := io.ReadAll(src)
		if err != nil {
			BadRequest(c, "文档文件读取失败: "+err.Error())
			return
		}
		input = &service.SubmitInput{RequestID: requestID, Document: document}
	} else {
		var req submitFieldsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "请求体解析失败: "+err.Error())
			return
		}
		input = &service.SubmitInput{RequestID: req.RequestID, Fields: req.Fields}
	}

	response, err := h.svc.Submit(c.Request.Context(), userID, input)
	if err != nil {
		FailWith(c, err)
		return
	}
	Created(c, response)
}

// ListByForm 按用户分组列出某表单的提交
// GET /api/v1/forms/:id/responses?user_ids=a,b
func (h *ResponseHandler) ListByForm(c *gin.Context) {
	var userIDs []string
	if raw := c.Query("user_ids"); raw != "" {
		userIDs = strings.Split(raw, ",")
	}

	grouped, err := h.svc.ListByForm(c.Request.Context(), c.Param("id"), userIDs)
	if err != nil {
		FailWith(c, err)
		return
	}
	Success(c, gin.H{"items": grouped})
}

// Export 下载某表单的汇总导出表
// GET /api/v1/forms/:id/export
func (h *ResponseHandler) Export(c *gin.Context) {
	formID := c.Param("id")
	reader, err := h.svc.Export(c.Request.Context(), formID)
	if err != nil {
		FailWith(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="export.xlsx"`)
	c.Header("Content-Type", storage.ExportContentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		_ = c.Error(err)
	}
}

// Document 下载某次提交的文档制品
// GET /api/v1/responses/:id/document
func (h *ResponseHandler) Document(c *gin.Context) {
	reader, response, err := h.svc.ResponseDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		FailWith(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+response.ID+`.json"`)
	c.Header("Content-Type", storage.DocumentContentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		_ = c.Error(err)
	}
}
