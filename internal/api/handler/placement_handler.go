package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ziyi127/TimeNest-sub000/internal/dto"
	"github.com/ziyi127/TimeNest-sub000/internal/service"
	pkgerrors "github.com/ziyi127/TimeNest-sub000/pkg/errors"
	"github.com/ziyi127/TimeNest-sub000/pkg/response"
)

// PlacementHandler 排课模块 HTTP 处理器
type PlacementHandler struct {
	placementSvc service.PlacementService
}

// NewPlacementHandler 创建 PlacementHandler
func NewPlacementHandler(placementSvc service.PlacementService) *PlacementHandler {
	return &PlacementHandler{placementSvc: placementSvc}
}

// ListPlacements 获取排课列表
// GET /api/v1/placements?course_id=xxx
func (h *PlacementHandler) ListPlacements(c *gin.Context) {
	var (
		placements []dto.PlacementResponse
		err        error
	)
	if courseID := c.Query("course_id"); courseID != "" {
		placements, err = h.placementSvc.ListByCourse(c.Request.Context(), courseID)
	} else {
		placements, err = h.placementSvc.List(c.Request.Context())
	}
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": placements})
}

// GetPlacement 获取排课详情
// GET /api/v1/placements/:id
func (h *PlacementHandler) GetPlacement(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "排课ID不能为空")
		return
	}

	placement, err := h.placementSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handlePlacementError(c, err)
		return
	}

	response.OK(c, placement)
}

// CreatePlacement 创建排课
// POST /api/v1/placements
func (h *PlacementHandler) CreatePlacement(c *gin.Context) {
	var req dto.CreatePlacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	placement, err := h.placementSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handlePlacementError(c, err)
		return
	}

	response.Created(c, placement)
}

// UpdatePlacement 更新排课
// PUT /api/v1/placements/:id
func (h *PlacementHandler) UpdatePlacement(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "排课ID不能为空")
		return
	}

	var req dto.UpdatePlacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	placement, err := h.placementSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handlePlacementError(c, err)
		return
	}

	response.OK(c, placement)
}

// DeletePlacement 删除排课
// DELETE /api/v1/placements/:id
func (h *PlacementHandler) DeletePlacement(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "排课ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.placementSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handlePlacementError(c, err)
		return
	}

	response.OK(c, nil)
}

// handlePlacementError 统一处理排课模块业务错误
func (h *PlacementHandler) handlePlacementError(c *gin.Context, err error) {
	var validationErr *pkgerrors.ValidationError
	var conflictErr *pkgerrors.ConflictError
	var referentialErr *pkgerrors.ReferentialError

	switch {
	case errors.Is(err, service.ErrPlacementNotFound):
		response.NotFound(c, 13001, "排课不存在")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 12001, "课程不存在")
	case errors.Is(err, service.ErrPlacementDateInvalid):
		response.BadRequest(c, 13002, "排课日期格式无效")
	case errors.As(err, &validationErr):
		response.ErrorWithDetails(c, 400, 13003, "排课字段校验失败", strings.Join(validationErr.Problems, "；"))
	case errors.As(err, &conflictErr):
		response.ConflictWithDetails(c, 13004, "排课与已有排课冲突",
			fmt.Sprintf("conflict_with=%s resource=%s", conflictErr.OtherID, conflictErr.Resource))
	case errors.As(err, &referentialErr):
		response.ConflictWithDetails(c, 13005, "排课仍被调课引用，无法删除", strings.Join(referentialErr.Dependents, ","))
	default:
		response.InternalError(c)
	}
}
