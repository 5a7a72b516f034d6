package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"field-ops/backend/internal/dto"
	"field-ops/backend/internal/service"
	"field-ops/backend/pkg/response"
)

// TeamHandler 班组模块 HTTP 处理器
type TeamHandler struct {
	teamSvc service.TeamService
}

// NewTeamHandler 创建 TeamHandler
func NewTeamHandler(teamSvc service.TeamService) *TeamHandler {
	return &TeamHandler{teamSvc: teamSvc}
}

// boolQuery 解析可选布尔查询参数，未传或非法时返回 nil
func boolQuery(c *gin.Context, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// ListTeams 获取班组列表
// GET /api/v1/teams
func (h *TeamHandler) ListTeams(c *gin.Context) {
	teams, err := h.teamSvc.List(c.Request.Context(), c.Query("team_type"), boolQuery(c, "active"))
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, teams)
}

// GetTeam 获取班组详情（含在岗成员）
// GET /api/v1/teams/:id
func (h *TeamHandler) GetTeam(c *gin.Context) {
	team, err := h.teamSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, team)
}

// CreateTeam 创建班组
// POST /api/v1/teams
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	var req dto.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	team, err := h.teamSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.Created(c, team)
}

// UpdateTeam 更新班组信息
// PUT /api/v1/teams/:id
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	var req dto.UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	team, err := h.teamSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, team)
}

// DeleteTeam 删除班组（有在办作业时拒绝）
// DELETE /api/v1/teams/:id
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	if err := h.teamSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, nil)
}

// ListTeamMembers 获取班组在岗成员
// GET /api/v1/teams/:id/members
func (h *TeamHandler) ListTeamMembers(c *gin.Context) {
	members, err := h.teamSvc.ListMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, members)
}

// AddTeamMember 添加班组成员
// POST /api/v1/teams/:id/members
func (h *TeamHandler) AddTeamMember(c *gin.Context) {
	var req dto.AddTeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	member, err := h.teamSvc.AddMember(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.Created(c, member)
}

// RemoveTeamMember 移除班组成员（软移除，保留历史）
// DELETE /api/v1/teams/:id/members/:workerId
func (h *TeamHandler) RemoveTeamMember(c *gin.Context) {
	if err := h.teamSvc.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("workerId")); err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, nil)
}
