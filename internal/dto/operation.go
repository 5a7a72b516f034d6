package dto

// ── 作业模块 DTO ──

// CreateOperationRequest 创建作业请求
type CreateOperationRequest struct {
	OperationType    string   `json:"operation_type"     binding:"required,oneof=installation maintenance inspection disconnection reconnection meter_reading collection migration replacement"`
	Title            string   `json:"title"              binding:"required,max=200"`
	Description      string   `json:"description"`
	Priority         *int     `json:"priority"           binding:"omitempty,min=1,max=3"`
	CustomerID       *string  `json:"customer_id"        binding:"omitempty,uuid"`
	MeterID          *string  `json:"meter_id"           binding:"omitempty,uuid"`
	AssetID          *string  `json:"asset_id"           binding:"omitempty,uuid"`
	StationID        *string  `json:"station_id"         binding:"omitempty,uuid"`
	Address          string   `json:"address"            binding:"omitempty,max=500"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	AssignedTeamID   *string  `json:"assigned_team_id"   binding:"omitempty,uuid"`
	AssignedWorkerID *string  `json:"assigned_worker_id" binding:"omitempty,uuid"`
	ScheduledDate    *string  `json:"scheduled_date"`    // "2026-03-01" 或 RFC3339
	EstimatedCost    *float64 `json:"estimated_cost"`
	Notes            string   `json:"notes"`
}

// UpdateOperationRequest 更新作业请求（全部可选）
type UpdateOperationRequest struct {
	Title            *string  `json:"title"              binding:"omitempty,max=200"`
	Description      *string  `json:"description"`
	Priority         *int     `json:"priority"           binding:"omitempty,min=1,max=3"`
	CustomerID       *string  `json:"customer_id"        binding:"omitempty,uuid"`
	MeterID          *string  `json:"meter_id"           binding:"omitempty,uuid"`
	AssetID          *string  `json:"asset_id"           binding:"omitempty,uuid"`
	StationID        *string  `json:"station_id"         binding:"omitempty,uuid"`
	Address          *string  `json:"address"            binding:"omitempty,max=500"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	AssignedTeamID   *string  `json:"assigned_team_id"   binding:"omitempty,uuid"`
	AssignedWorkerID *string  `json:"assigned_worker_id" binding:"omitempty,uuid"`
	ScheduledDate    *string  `json:"scheduled_date"`
	EstimatedCost    *float64 `json:"estimated_cost"`
	Notes            *string  `json:"notes"`
}

// UpdateOperationStatusRequest 作业状态转换请求
type UpdateOperationStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// AssignOperationRequest 作业指派请求（班组/工人均可选）
type AssignOperationRequest struct {
	TeamID   *string `json:"team_id"   binding:"omitempty,uuid"`
	WorkerID *string `json:"worker_id" binding:"omitempty,uuid"`
}

// OperationListQuery 作业列表查询参数
type OperationListQuery struct {
	OperationType string `form:"operation_type"`
	Status        string `form:"status"`
	TeamID        string `form:"team_id"`
	WorkerID      string `form:"worker_id"`
	CustomerID    string `form:"customer_id"`
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
	Search        string `form:"search"`
	Page          int    `form:"page,default=1"      binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size,default=10" binding:"omitempty,min=1,max=100"`
}

// OperationStatistics 作业统计响应
type OperationStatistics struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
	ByType   map[string]int64 `json:"by_type"`
}
