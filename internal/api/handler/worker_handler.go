package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"field-ops/backend/internal/dto"
	"field-ops/backend/internal/service"
	"field-ops/backend/pkg/response"
)

// WorkerHandler 工人模块 HTTP 处理器
type WorkerHandler struct {
	workerSvc service.WorkerService
}

// NewWorkerHandler 创建 WorkerHandler
func NewWorkerHandler(workerSvc service.WorkerService) *WorkerHandler {
	return &WorkerHandler{workerSvc: workerSvc}
}

// timeQuery 解析可选时间查询参数，支持日期与 RFC3339 两种格式
func timeQuery(c *gin.Context, key string) *time.Time {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	return nil
}

// ListWorkers 获取工人列表
// GET /api/v1/workers
func (h *WorkerHandler) ListWorkers(c *gin.Context) {
	workers, err := h.workerSvc.List(c.Request.Context(),
		c.Query("worker_type"), boolQuery(c, "available"), boolQuery(c, "active"))
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, workers)
}

// ListWorkerLocations 获取有定位的工人（地图视角）
// GET /api/v1/workers/locations
func (h *WorkerHandler) ListWorkerLocations(c *gin.Context) {
	locations, err := h.workerSvc.ListWithLocation(c.Request.Context())
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, locations)
}

// GetWorker 获取工人详情
// GET /api/v1/workers/:id
func (h *WorkerHandler) GetWorker(c *gin.Context) {
	worker, err := h.workerSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, worker)
}

// CreateWorker 创建工人档案
// POST /api/v1/workers
func (h *WorkerHandler) CreateWorker(c *gin.Context) {
	var req dto.CreateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	worker, err := h.workerSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.Created(c, worker)
}

// UpdateWorker 更新工人档案
// PUT /api/v1/workers/:id
func (h *WorkerHandler) UpdateWorker(c *gin.Context) {
	var req dto.UpdateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	worker, err := h.workerSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, worker)
}

// DeleteWorker 删除工人（有在办作业时拒绝）
// DELETE /api/v1/workers/:id
func (h *WorkerHandler) DeleteWorker(c *gin.Context) {
	if err := h.workerSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, nil)
}

// UpdateWorkerLocation 上报工人实时位置
// POST /api/v1/workers/:id/location
func (h *WorkerHandler) UpdateWorkerLocation(c *gin.Context) {
	var req dto.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	log, err := h.workerSvc.UpdateLocation(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, log)
}

// ListWorkerLocationLogs 获取工人位置轨迹
// GET /api/v1/workers/:id/locations
func (h *WorkerHandler) ListWorkerLocationLogs(c *gin.Context) {
	logs, err := h.workerSvc.ListLocationLogs(c.Request.Context(), c.Param("id"),
		timeQuery(c, "start_time"), timeQuery(c, "end_time"))
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, logs)
}

// CalculateWorkerPerformance 计算并落库指定周期的绩效
// POST /api/v1/workers/:id/performance
func (h *WorkerHandler) CalculateWorkerPerformance(c *gin.Context) {
	var req dto.CalculatePerformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	perf, err := h.workerSvc.CalculatePerformance(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.Created(c, perf)
}

// ListWorkerPerformance 获取工人历史绩效
// GET /api/v1/workers/:id/performance
func (h *WorkerHandler) ListWorkerPerformance(c *gin.Context) {
	records, err := h.workerSvc.ListPerformance(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, records)
}
