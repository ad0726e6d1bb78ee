package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ziyi127/TimeNest-sub000/internal/dto"
	"github.com/ziyi127/TimeNest-sub000/internal/service"
	pkgerrors "github.com/ziyi127/TimeNest-sub000/pkg/errors"
	"github.com/ziyi127/TimeNest-sub000/pkg/response"
)

// OverrideHandler 调课模块 HTTP 处理器
type OverrideHandler struct {
	overrideSvc service.OverrideService
}

// NewOverrideHandler 创建 OverrideHandler
func NewOverrideHandler(overrideSvc service.OverrideService) *OverrideHandler {
	return &OverrideHandler{overrideSvc: overrideSvc}
}

// ListOverrides 获取调课列表
// GET /api/v1/overrides?placement_id=xxx
func (h *OverrideHandler) ListOverrides(c *gin.Context) {
	var (
		overrides []dto.OverrideResponse
		err       error
	)
	if placementID := c.Query("placement_id"); placementID != "" {
		overrides, err = h.overrideSvc.ListByPlacement(c.Request.Context(), placementID)
	} else {
		overrides, err = h.overrideSvc.List(c.Request.Context())
	}
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": overrides})
}

// GetOverride 获取调课详情
// GET /api/v1/overrides/:id
func (h *OverrideHandler) GetOverride(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "调课ID不能为空")
		return
	}

	override, err := h.overrideSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleOverrideError(c, err)
		return
	}

	response.OK(c, override)
}

// CreateOverride 创建调课
// POST /api/v1/overrides
func (h *OverrideHandler) CreateOverride(c *gin.Context) {
	var req dto.CreateOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	override, err := h.overrideSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleOverrideError(c, err)
		return
	}

	response.Created(c, override)
}

// UpdateOverride 更新调课
// PUT /api/v1/overrides/:id
func (h *OverrideHandler) UpdateOverride(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "调课ID不能为空")
		return
	}

	var req dto.UpdateOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	override, err := h.overrideSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleOverrideError(c, err)
		return
	}

	response.OK(c, override)
}

// DeleteOverride 删除调课
// DELETE /api/v1/overrides/:id
func (h *OverrideHandler) DeleteOverride(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "调课ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.overrideSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleOverrideError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleOverrideError 统一处理调课模块业务错误
func (h *OverrideHandler) handleOverrideError(c *gin.Context, err error) {
	var validationErr *pkgerrors.ValidationError

	switch {
	case errors.Is(err, service.ErrOverrideNotFound):
		response.NotFound(c, 14001, "调课记录不存在")
	case errors.Is(err, service.ErrPlacementNotFound):
		response.NotFound(c, 13001, "排课不存在")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 12001, "课程不存在")
	case errors.Is(err, service.ErrOverrideDateInvalid):
		response.BadRequest(c, 14002, "调课日期格式无效")
	case errors.As(err, &validationErr):
		response.ErrorWithDetails(c, 400, 14003, "调课字段校验失败", strings.Join(validationErr.Problems, "；"))
	default:
		response.InternalError(c)
	}
}
