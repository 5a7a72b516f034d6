package handler

import (
	"github.com/gin-gonic/gin"

	"field-ops/backend/internal/dto"
	"field-ops/backend/internal/service"
	"field-ops/backend/pkg/response"
)

// OperationHandler 作业模块 HTTP 处理器
type OperationHandler struct {
	operationSvc service.OperationService
}

// NewOperationHandler 创建 OperationHandler
func NewOperationHandler(operationSvc service.OperationService) *OperationHandler {
	return &OperationHandler{operationSvc: operationSvc}
}

// ListOperations 获取作业列表
// GET /api/v1/operations
func (h *OperationHandler) ListOperations(c *gin.Context) {
	var q dto.OperationListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ops, total, err := h.operationSvc.List(c.Request.Context(), &q)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OKPage(c, ops, total, q.Page, q.PageSize)
}

// GetOperationStatistics 获取作业统计
// GET /api/v1/operations/statistics
func (h *OperationHandler) GetOperationStatistics(c *gin.Context) {
	stats, err := h.operationSvc.Statistics(c.Request.Context())
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, stats)
}

// GetOperation 获取作业详情（含状态日志）
// GET /api/v1/operations/:id
func (h *OperationHandler) GetOperation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "作业ID不能为空")
		return
	}

	op, err := h.operationSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, op)
}

// CreateOperation 创建作业
// POST /api/v1/operations
func (h *OperationHandler) CreateOperation(c *gin.Context) {
	var req dto.CreateOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	op, err := h.operationSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.Created(c, op)
}

// UpdateOperation 更新作业基础信息
// PUT /api/v1/operations/:id
func (h *OperationHandler) UpdateOperation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "作业ID不能为空")
		return
	}

	var req dto.UpdateOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	op, err := h.operationSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, op)
}

// UpdateOperationStatus 作业状态转换
// PUT /api/v1/operations/:id/status
func (h *OperationHandler) UpdateOperationStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "作业ID不能为空")
		return
	}

	var req dto.UpdateOperationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	op, err := h.operationSvc.UpdateStatus(c.Request.Context(), id, &req, callerID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, op)
}

// AssignOperation 指派作业
// PUT /api/v1/operations/:id/assign
func (h *OperationHandler) AssignOperation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "作业ID不能为空")
		return
	}

	var req dto.AssignOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	op, err := h.operationSvc.Assign(c.Request.Context(), id, &req, callerID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, op)
}

// DeleteOperation 删除作业（软删除）
// DELETE /api/v1/operations/:id
func (h *OperationHandler) DeleteOperation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "作业ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.operationSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, nil)
}
