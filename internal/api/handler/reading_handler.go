package handler

import (
	"github.com/gin-gonic/gin"

	"field-ops/backend/internal/dto"
	"field-ops/backend/internal/service"
	"field-ops/backend/pkg/response"
)

// ReadingHandler 抄表模块 HTTP 处理器
type ReadingHandler struct {
	readingSvc service.ReadingService
}

// NewReadingHandler 创建 ReadingHandler
func NewReadingHandler(readingSvc service.ReadingService) *ReadingHandler {
	return &ReadingHandler{readingSvc: readingSvc}
}

// ListReadingTemplates 获取抄表计划模板列表
// GET /api/v1/reading-templates
func (h *ReadingHandler) ListReadingTemplates(c *gin.Context) {
	templates, err := h.readingSvc.ListTemplates(c.Request.Context(), c.Query("frequency"), boolQuery(c, "active"))
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, templates)
}

// GetReadingTemplate 获取模板详情（含表位清单）
// GET /api/v1/reading-templates/:id
func (h *ReadingHandler) GetReadingTemplate(c *gin.Context) {
	tpl, err := h.readingSvc.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, tpl)
}

// CreateReadingTemplate 创建抄表计划模板
// POST /api/v1/reading-templates
func (h *ReadingHandler) CreateReadingTemplate(c *gin.Context) {
	var req dto.CreateReadingTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	tpl, err := h.readingSvc.CreateTemplate(c.Request.Context(), &req, callerID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.Created(c, tpl)
}

// UpdateReadingTemplate 更新模板基础信息
// PUT /api/v1/reading-templates/:id
func (h *ReadingHandler) UpdateReadingTemplate(c *gin.Context) {
	var req dto.UpdateReadingTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	tpl, err := h.readingSvc.UpdateTemplate(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, tpl)
}

// DeleteReadingTemplate 删除模板（已有轮次引用时拒绝）
// DELETE /api/v1/reading-templates/:id
func (h *ReadingHandler) DeleteReadingTemplate(c *gin.Context) {
	if err := h.readingSvc.DeleteTemplate(c.Request.Context(), c.Param("id")); err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, nil)
}

// ListReadingRounds 获取抄表轮次列表
// GET /api/v1/reading-rounds
func (h *ReadingHandler) ListReadingRounds(c *gin.Context) {
	page, pageSize := pageParams(c)
	rounds, total, err := h.readingSvc.ListRounds(c.Request.Context(),
		c.Query("status"), c.Query("assigned_to"), page, pageSize)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OKPage(c, rounds, total, page, pageSize)
}

// GetReadingRound 获取轮次详情
// GET /api/v1/reading-rounds/:id
func (h *ReadingHandler) GetReadingRound(c *gin.Context) {
	round, err := h.readingSvc.GetRound(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, round)
}

// CreateReadingRound 基于模板派生抄表轮次
// POST /api/v1/reading-rounds
func (h *ReadingHandler) CreateReadingRound(c *gin.Context) {
	var req dto.CreateReadingRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	round, err := h.readingSvc.CreateRound(c.Request.Context(), &req, callerID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.Created(c, round)
}

// StartReadingRound 轮次开抄
// PUT /api/v1/reading-rounds/:id/start
func (h *ReadingHandler) StartReadingRound(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	round, err := h.readingSvc.StartRound(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, round)
}

// CompleteReadingRound 轮次收口
// PUT /api/v1/reading-rounds/:id/complete
func (h *ReadingHandler) CompleteReadingRound(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	round, err := h.readingSvc.CompleteRound(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, round)
}

// RecordMeterReading 录入一条抄表读数
// POST /api/v1/reading-rounds/:id/readings
func (h *ReadingHandler) RecordMeterReading(c *gin.Context) {
	var req dto.RecordReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	reading, err := h.readingSvc.RecordReading(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.Created(c, reading)
}

// ListMeterReadings 获取轮次下的全部读数
// GET /api/v1/reading-rounds/:id/readings
func (h *ReadingHandler) ListMeterReadings(c *gin.Context) {
	readings, err := h.readingSvc.ListReadings(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, readings)
}
