package handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ziyi127/TimeNest-sub000/internal/dto"
	"github.com/ziyi127/TimeNest-sub000/internal/service"
	pkgerrors "github.com/ziyi127/TimeNest-sub000/pkg/errors"
	"github.com/ziyi127/TimeNest-sub000/pkg/response"
)

// ScheduleHandler 课表解析模块 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// CreateCourseWithPlacement 一步创建课程并排课
// POST /api/v1/schedule/course-with-placement
func (h *ScheduleHandler) CreateCourseWithPlacement(c *gin.Context) {
	var req dto.CreateCourseWithPlacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	placement, err := h.scheduleSvc.CreateCourseWithPlacement(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.Created(c, placement)
}

// ResolveDay 解析单日课表（消费命中的一次性调课）
// GET /api/v1/schedule/resolve?date=2025-09-08
func (h *ScheduleHandler) ResolveDay(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	day, err := h.scheduleSvc.ResolveSchedule(c.Request.Context(), date)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, day)
}

// ResolveWeek 解析 date 所在周的课表
// GET /api/v1/schedule/resolve-week?date=2025-09-10
func (h *ScheduleHandler) ResolveWeek(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	week, err := h.scheduleSvc.ResolveWeek(c.Request.Context(), date)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, week)
}

// PreviewRange 只读预览日期区间的课表（不消费调课）
// GET /api/v1/schedule/preview?start=2025-09-08&end=2025-09-14
func (h *ScheduleHandler) PreviewRange(c *gin.Context) {
	start, ok := parseDateQuery(c, "start")
	if !ok {
		return
	}
	end, ok := parseDateQuery(c, "end")
	if !ok {
		return
	}

	days, err := h.scheduleSvc.ResolveRange(c.Request.Context(), start, end)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, gin.H{"days": days})
}

// parseDateQuery 解析查询参数中的日期；失败时写入 400 响应
func parseDateQuery(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		response.BadRequest(c, 10001, fmt.Sprintf("%s 参数无效，应为 YYYY-MM-DD", key))
		return time.Time{}, false
	}
	return date, true
}

// handleScheduleError 统一处理课表解析模块业务错误
func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	var validationErr *pkgerrors.ValidationError
	var conflictErr *pkgerrors.ConflictError

	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 12001, "课程不存在")
	case errors.Is(err, service.ErrPlacementNotFound):
		response.NotFound(c, 13001, "排课不存在")
	case errors.As(err, &validationErr):
		response.ErrorWithDetails(c, 400, 16001, "课表请求校验失败", strings.Join(validationErr.Problems, "；"))
	case errors.As(err, &conflictErr):
		response.ConflictWithDetails(c, 16002, "课表存在无法裁决的冲突",
			fmt.Sprintf("record=%s other=%s resource=%s", conflictErr.RecordID, conflictErr.OtherID, conflictErr.Resource))
	default:
		response.InternalError(c)
	}
}
