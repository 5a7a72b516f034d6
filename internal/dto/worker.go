package dto

// ── 工人模块 DTO ──

// CreateWorkerRequest 创建工人请求
type CreateWorkerRequest struct {
	WorkerCode     string  `json:"worker_code"    binding:"required,max=20"`
	FullName       string  `json:"full_name"      binding:"required,max=100"`
	Phone          string  `json:"phone"          binding:"omitempty,max=20"`
	Email          string  `json:"email"          binding:"omitempty,email"`
	WorkerType     string  `json:"worker_type"    binding:"required,oneof=technician reader collector"`
	Specialization string  `json:"specialization" binding:"omitempty,max=50"`
	EmployeeID     *string `json:"employee_id"    binding:"omitempty,uuid"`
	UserID         *string `json:"user_id"        binding:"omitempty,uuid"`
}

// UpdateWorkerRequest 更新工人请求
type UpdateWorkerRequest struct {
	FullName       *string `json:"full_name"      binding:"omitempty,max=100"`
	Phone          *string `json:"phone"          binding:"omitempty,max=20"`
	Email          *string `json:"email"          binding:"omitempty,email"`
	WorkerType     *string `json:"worker_type"    binding:"omitempty,oneof=technician reader collector"`
	Specialization *string `json:"specialization" binding:"omitempty,max=50"`
	IsAvailable    *bool   `json:"is_available"`
	IsActive       *bool   `json:"is_active"`
}

// UpdateLocationRequest 工人位置上报请求
type UpdateLocationRequest struct {
	Latitude     float64  `json:"latitude"      binding:"required"`
	Longitude    float64  `json:"longitude"     binding:"required"`
	Accuracy     *float64 `json:"accuracy"`
	Speed        *float64 `json:"speed"`
	BatteryLevel *int     `json:"battery_level" binding:"omitempty,min=0,max=100"`
}

// WorkerLocation 工人当前位置响应（地图展示）
type WorkerLocation struct {
	WorkerID       string   `json:"worker_id"`
	WorkerCode     string   `json:"worker_code"`
	FullName       string   `json:"full_name"`
	WorkerType     string   `json:"worker_type"`
	LastLatitude   *float64 `json:"last_latitude"`
	LastLongitude  *float64 `json:"last_longitude"`
	LastLocationAt *string  `json:"last_location_at,omitempty"`
	IsAvailable    bool     `json:"is_available"`
}

// CalculatePerformanceRequest 绩效核算请求
type CalculatePerformanceRequest struct {
	PeriodStart string `json:"period_start" binding:"required"` // "2026-02-01"
	PeriodEnd   string `json:"period_end"   binding:"required"` // "2026-02-29"
}
