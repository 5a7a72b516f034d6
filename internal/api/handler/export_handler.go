package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"field-ops/backend/internal/dto"
	"field-ops/backend/internal/service"
	"field-ops/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportOperations 导出作业台账 Excel
// GET /api/v1/export/operations
func (h *ExportHandler) ExportOperations(c *gin.Context) {
	var q dto.OperationListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportOperations(c.Request.Context(), &q)
	if err != nil {
		if errors.Is(err, service.ErrExportNoOperations) {
			response.NotFound(c, 17001, "筛选条件下没有可导出的作业")
			return
		}
		response.InternalError(c)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportCalendar 导出作业排期 iCalendar
// GET /api/v1/export/calendar?start_date=2026-03-01&end_date=2026-03-31&team_id=&worker_id=
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	start, err := time.Parse("2006-01-02", c.Query("start_date"))
	if err != nil {
		response.BadRequest(c, 10001, "start_date 格式无效")
		return
	}
	end, err := time.Parse("2006-01-02", c.Query("end_date"))
	if err != nil {
		response.BadRequest(c, 10001, "end_date 格式无效")
		return
	}
	if !end.After(start) {
		response.BadRequest(c, 10001, "end_date 必须晚于 start_date")
		return
	}

	ics, err := h.exportSvc.OperationsCalendar(c.Request.Context(), start, end, c.Query("team_id"), c.Query("worker_id"))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape("作业排期.ics"))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}
