package dto

// ── 班组模块 DTO ──

// CreateTeamRequest 创建班组请求
type CreateTeamRequest struct {
	TeamCode     string  `json:"team_code"     binding:"required,max=20"`
	TeamName     string  `json:"team_name"     binding:"required,max=100"`
	TeamType     string  `json:"team_type"     binding:"required,oneof=installation maintenance reading"`
	StationID    *string `json:"station_id"    binding:"omitempty,uuid"`
	SupervisorID *string `json:"supervisor_id" binding:"omitempty,uuid"`
}

// UpdateTeamRequest 更新班组请求
type UpdateTeamRequest struct {
	TeamName     *string `json:"team_name"     binding:"omitempty,max=100"`
	TeamType     *string `json:"team_type"     binding:"omitempty,oneof=installation maintenance reading"`
	StationID    *string `json:"station_id"    binding:"omitempty,uuid"`
	SupervisorID *string `json:"supervisor_id" binding:"omitempty,uuid"`
	IsActive     *bool   `json:"is_active"`
}

// AddTeamMemberRequest 添加班组成员请求
type AddTeamMemberRequest struct {
	WorkerID string `json:"worker_id" binding:"required,uuid"`
	Role     string `json:"role"      binding:"required,oneof=leader member"`
}
