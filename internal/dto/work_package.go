package dto

// ── 工作包模块 DTO ──

// CreateWorkPackageRequest 创建工作包请求
type CreateWorkPackageRequest struct {
	PackageName      string   `json:"package_name"      binding:"required,max=200"`
	Description      string   `json:"description"`
	StationID        *string  `json:"station_id"        binding:"omitempty,uuid"`
	AssignedTeamID   *string  `json:"assigned_team_id"  binding:"omitempty,uuid"`
	ContractorName   string   `json:"contractor_name"   binding:"omitempty,max=100"`
	SupervisorID     *string  `json:"supervisor_id"     binding:"omitempty,uuid"`
	InspectorID      *string  `json:"inspector_id"      binding:"omitempty,uuid"`
	ExpectedDuration *int     `json:"expected_duration"`
	AgreedAmount     *float64 `json:"agreed_amount"`
	OperationIDs     []string `json:"operation_ids"     binding:"omitempty,dive,uuid"`
}

// UpdateWorkPackageRequest 更新工作包请求
type UpdateWorkPackageRequest struct {
	PackageName      *string  `json:"package_name"      binding:"omitempty,max=200"`
	Description      *string  `json:"description"`
	ContractorName   *string  `json:"contractor_name"   binding:"omitempty,max=100"`
	SupervisorID     *string  `json:"supervisor_id"     binding:"omitempty,uuid"`
	InspectorID      *string  `json:"inspector_id"      binding:"omitempty,uuid"`
	ExpectedDuration *int     `json:"expected_duration"`
	AgreedAmount     *float64 `json:"agreed_amount"`
}

// AssignPackageRequest 工作包指派请求
type AssignPackageRequest struct {
	TeamID string `json:"team_id" binding:"required,uuid"`
}

// InspectPackageRequest 工作包验收请求
type InspectPackageRequest struct {
	Result          string `json:"result"           binding:"required,oneof=approved rejected"`
	Notes           string `json:"notes"`
	RejectionReason string `json:"rejection_reason" binding:"omitempty,max=500"`
}

// AddPackageItemRequest 追加工作包条目请求
type AddPackageItemRequest struct {
	OperationID string `json:"operation_id" binding:"required,uuid"`
}
