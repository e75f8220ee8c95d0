package handler

import (
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/DocXtract/docxtract/internal/form/codec"
	"github.com/DocXtract/docxtract/internal/form/service"
	"github.com/gin-gonic/gin"
)

// TemplateHandler 表单模板处理器
type TemplateHandler struct {
	svc *service.TemplateService
}

// NewTemplateHandler 创建表单模板处理器
func NewTemplateHandler(svc *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

// Create 创建模板
// POST /api/v1/forms (multipart)
// 字段: title, description, quota, due_date(RFC3339)；
// 文件 document 与表单字段 layout(JSON) 二选一。
func (h *TemplateHandler) Create(c *gin.Context) {
	title := c.PostForm("title")
	if title == "" {
		BadRequest(c, "标题不能为空")
		return
	}

	input := &service.CreateTemplateInput{
		Title:       title,
		Description: c.PostForm("description"),
	}

	if q := c.PostForm("quota"); q != "" {
		quota, err := strconv.Atoi(q)
		if err != nil || quota < 0 {
			BadRequest(c, "quota 必须为非负整数")
			return
		}
		input.Quota = quota
	}

	if d := c.PostForm("due_date"); d != "" {
		due, err := time.Parse(time.RFC3339, d)
		if err != nil {
			BadRequest(c, "due_date 必须为RFC3339格式")
			return
		}
		input.DueDate = &due
	}

	if file, err := c.FormFile("document"); err == nil {
		f, err := file.Open()
		if err != nil {
			BadRequest(c, "读取上传文档失败: "+err.Error())
			return
		}
		defer f.Close()
		document, err := io.ReadAll(f)
		if err != nil {
			BadRequest(c, "读取上传文档失败: "+err.Error())
			return
		}
		input.Document = document
	}

	if l := c.PostForm("layout"); l != "" {
		var layout codec.LayoutSpec
		if err := json.Unmarshal([]byte(l), &layout); err != nil {
			BadRequest(c, "layout 解析失败: "+err.Error())
			return
		}
		input.Layout = &layout
	}

	template, err := h.svc.Create(c.Request.Context(), GetUserID(c), input)
	if err != nil {
		FailWith(c, err)
		return
	}
	Created(c, template)
}

// List 列出全部模板
// GET /api/v1/forms
func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.svc.List(c.Request.Context())
	if err != nil {
		FailWith(c, err)
		return
	}
	Success(c, gin.H{"items": templates})
}

// Get 获取模板详情
// GET /api/v1/forms/:id
func (h *TemplateHandler) Get(c *gin.Context) {
	template, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		FailWith(c, err)
		return
	}
	Success(c, template)
}

// Delete 级联删除模板
// DELETE /api/v1/forms/:id
func (h *TemplateHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		FailWith(c, err)
		return
	}
	Success(c, gin.H{"message": "deleted"})
}

// Printable 下载空白可打印版
// GET /api/v1/forms/:id/printable
func (h *TemplateHandler) Printable(c *gin.Context) {
	reader, err := h.svc.Printable(c.Request.Context(), c.Param("id"))
	if err != nil {
		FailWith(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="print.json"`)
	c.Header("Content-Type", "application/json")
	io.Copy(c.Writer, reader)
}
