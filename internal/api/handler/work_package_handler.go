package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"field-ops/backend/internal/dto"
	"field-ops/backend/internal/service"
	"field-ops/backend/pkg/response"
)

// WorkPackageHandler 工作包模块 HTTP 处理器
type WorkPackageHandler struct {
	packageSvc service.WorkPackageService
}

// NewWorkPackageHandler 创建 WorkPackageHandler
func NewWorkPackageHandler(packageSvc service.WorkPackageService) *WorkPackageHandler {
	return &WorkPackageHandler{packageSvc: packageSvc}
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return page, pageSize
}

// ListWorkPackages 获取工作包列表
// GET /api/v1/work-packages
func (h *WorkPackageHandler) ListWorkPackages(c *gin.Context) {
	page, pageSize := pageParams(c)
	pkgs, total, err := h.packageSvc.List(c.Request.Context(), c.Query("status"), c.Query("team_id"), page, pageSize)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OKPage(c, pkgs, total, page, pageSize)
}

// GetWorkPackage 获取工作包详情（含条目）
// GET /api/v1/work-packages/:id
func (h *WorkPackageHandler) GetWorkPackage(c *gin.Context) {
	pkg, err := h.packageSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, pkg)
}

// CreateWorkPackage 创建工作包
// POST /api/v1/work-packages
func (h *WorkPackageHandler) CreateWorkPackage(c *gin.Context) {
	var req dto.CreateWorkPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	pkg, err := h.packageSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.Created(c, pkg)
}

// UpdateWorkPackage 更新工作包基础信息
// PUT /api/v1/work-packages/:id
func (h *WorkPackageHandler) UpdateWorkPackage(c *gin.Context) {
	var req dto.UpdateWorkPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	pkg, err := h.packageSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, pkg)
}

// AssignWorkPackage 指派工作包给班组
// PUT /api/v1/work-packages/:id/assign
func (h *WorkPackageHandler) AssignWorkPackage(c *gin.Context) {
	var req dto.AssignPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	pkg, err := h.packageSvc.Assign(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, pkg)
}

// StartWorkPackage 工作包开工
// PUT /api/v1/work-packages/:id/start
func (h *WorkPackageHandler) StartWorkPackage(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	pkg, err := h.packageSvc.Start(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, pkg)
}

// CompleteWorkPackage 班组报完工
// PUT /api/v1/work-packages/:id/complete
func (h *WorkPackageHandler) CompleteWorkPackage(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	pkg, err := h.packageSvc.Complete(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, pkg)
}

// SubmitWorkPackageInspection 提交验收
// PUT /api/v1/work-packages/:id/submit-inspection
func (h *WorkPackageHandler) SubmitWorkPackageInspection(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	pkg, err := h.packageSvc.SubmitForInspection(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, pkg)
}

// InspectWorkPackage 出具验收结果
// PUT /api/v1/work-packages/:id/inspect
func (h *WorkPackageHandler) InspectWorkPackage(c *gin.Context) {
	var req dto.InspectPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	pkg, err := h.packageSvc.Inspect(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, pkg)
}

// DeleteWorkPackage 删除工作包（仅 new 状态）
// DELETE /api/v1/work-packages/:id
func (h *WorkPackageHandler) DeleteWorkPackage(c *gin.Context) {
	if err := h.packageSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, nil)
}

// AddWorkPackageItem 追加条目
// POST /api/v1/work-packages/:id/items
func (h *WorkPackageHandler) AddWorkPackageItem(c *gin.Context) {
	var req dto.AddPackageItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	item, err := h.packageSvc.AddItem(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.Created(c, item)
}

// RemoveWorkPackageItem 移除条目
// DELETE /api/v1/work-packages/:id/items/:itemId
func (h *WorkPackageHandler) RemoveWorkPackageItem(c *gin.Context) {
	if err := h.packageSvc.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("itemId")); err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, nil)
}
