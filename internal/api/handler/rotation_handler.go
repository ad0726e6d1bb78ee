package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ziyi127/TimeNest-sub000/internal/dto"
	"github.com/ziyi127/TimeNest-sub000/internal/service"
	pkgerrors "github.com/ziyi127/TimeNest-sub000/pkg/errors"
	"github.com/ziyi127/TimeNest-sub000/pkg/response"
)

// RotationHandler 轮换模板模块 HTTP 处理器
type RotationHandler struct {
	rotationSvc service.RotationService
}

// NewRotationHandler 创建 RotationHandler
func NewRotationHandler(rotationSvc service.RotationService) *RotationHandler {
	return &RotationHandler{rotationSvc: rotationSvc}
}

// ListRotationTemplates 获取轮换模板列表
// GET /api/v1/rotations
func (h *RotationHandler) ListRotationTemplates(c *gin.Context) {
	templates, err := h.rotationSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": templates})
}

// GetRotationTemplate 获取轮换模板详情
// GET /api/v1/rotations/:id
func (h *RotationHandler) GetRotationTemplate(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "模板ID不能为空")
		return
	}

	template, err := h.rotationSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleRotationError(c, err)
		return
	}

	response.OK(c, template)
}

// CreateRotationTemplate 创建轮换模板
// POST /api/v1/rotations
func (h *RotationHandler) CreateRotationTemplate(c *gin.Context) {
	var req dto.CreateRotationTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	template, err := h.rotationSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleRotationError(c, err)
		return
	}

	response.Created(c, template)
}

// UpdateRotationTemplate 更新轮换模板
// PUT /api/v1/rotations/:id
func (h *RotationHandler) UpdateRotationTemplate(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "模板ID不能为空")
		return
	}

	var req dto.UpdateRotationTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	template, err := h.rotationSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleRotationError(c, err)
		return
	}

	response.OK(c, template)
}

// DeleteRotationTemplate 删除轮换模板
// DELETE /api/v1/rotations/:id
func (h *RotationHandler) DeleteRotationTemplate(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "模板ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.rotationSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleRotationError(c, err)
		return
	}

	response.OK(c, nil)
}

// MaterializeRotation 投影轮换模板在指定日期的槽位
// GET /api/v1/rotations/:id/materialize?date=2025-09-02
func (h *RotationHandler) MaterializeRotation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "模板ID不能为空")
		return
	}

	dateStr := c.Query("date")
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		response.BadRequest(c, 10001, "date 参数无效，应为 YYYY-MM-DD")
		return
	}

	result, err := h.rotationSvc.Materialize(c.Request.Context(), id, date)
	if err != nil {
		h.handleRotationError(c, err)
		return
	}

	response.OK(c, result)
}

// handleRotationError 统一处理轮换模板模块业务错误
func (h *RotationHandler) handleRotationError(c *gin.Context, err error) {
	var validationErr *pkgerrors.ValidationError

	switch {
	case errors.Is(err, service.ErrTemplateNotFound):
		response.NotFound(c, 15001, "轮换模板不存在")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 12001, "课程不存在")
	case errors.Is(err, service.ErrTemplateDateInvalid):
		response.BadRequest(c, 15002, "轮换模板日期格式无效")
	case errors.As(err, &validationErr):
		response.ErrorWithDetails(c, 400, 15003, "轮换模板字段校验失败", strings.Join(validationErr.Problems, "；"))
	default:
		response.InternalError(c)
	}
}
