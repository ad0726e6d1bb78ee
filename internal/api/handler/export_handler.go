package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/ziyi127/TimeNest-sub000/internal/service"
	pkgerrors "github.com/ziyi127/TimeNest-sub000/pkg/errors"
	"github.com/ziyi127/TimeNest-sub000/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportICS 导出日期区间课表为 iCalendar 文件
// GET /api/v1/export/ics?start=2025-09-08&end=2025-09-14
func (h *ExportHandler) ExportICS(c *gin.Context) {
	start, ok := parseDateQuery(c, "start")
	if !ok {
		return
	}
	end, ok := parseDateQuery(c, "end")
	if !ok {
		return
	}

	ics, err := h.exportSvc.ExportICS(c.Request.Context(), start, end)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	filename := fmt.Sprintf("timenest_%s_%s.ics", start.Format("2006-01-02"), end.Format("2006-01-02"))
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	var validationErr *pkgerrors.ValidationError
	var conflictErr *pkgerrors.ConflictError

	switch {
	case errors.As(err, &validationErr):
		response.BadRequest(c, 17001, "导出区间无效")
	case errors.As(err, &conflictErr):
		response.ConflictWithDetails(c, 17002, "课表存在无法裁决的冲突，无法导出",
			fmt.Sprintf("record=%s other=%s resource=%s", conflictErr.RecordID, conflictErr.OtherID, conflictErr.Resource))
	default:
		response.InternalError(c)
	}
}
