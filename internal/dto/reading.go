package dto

// ── 抄表模块 DTO ──

// CreateReadingTemplateRequest 创建抄表模板请求
type CreateReadingTemplateRequest struct {
	TemplateCode  string   `json:"template_code"  binding:"required,max=30"`
	TemplateName  string   `json:"template_name"  binding:"required,max=200"`
	Frequency     string   `json:"frequency"      binding:"required,oneof=daily weekly monthly"`
	StationID     *string  `json:"station_id"     binding:"omitempty,uuid"`
	AreaID        *string  `json:"area_id"        binding:"omitempty,uuid"`
	EstimatedTime *int     `json:"estimated_time"`
	MeterIDs      []string `json:"meter_ids"      binding:"omitempty,dive,uuid"`
}

// UpdateReadingTemplateRequest 更新抄表模板请求
type UpdateReadingTemplateRequest struct {
	TemplateName  *string `json:"template_name"  binding:"omitempty,max=200"`
	Frequency     *string `json:"frequency"      binding:"omitempty,oneof=daily weekly monthly"`
	StationID     *string `json:"station_id"     binding:"omitempty,uuid"`
	AreaID        *string `json:"area_id"        binding:"omitempty,uuid"`
	EstimatedTime *int    `json:"estimated_time"`
	IsActive      *bool   `json:"is_active"`
}

// CreateReadingRoundRequest 创建抄表轮次请求
type CreateReadingRoundRequest struct {
	TemplateID    string  `json:"template_id"    binding:"required,uuid"`
	ScheduledDate string  `json:"scheduled_date" binding:"required"` // "2026-03-01"
	AssignedTo    *string `json:"assigned_to"    binding:"omitempty,uuid"`
}

// RecordReadingRequest 抄表记录请求
type RecordReadingRequest struct {
	MeterID       string   `json:"meter_id"       binding:"required,uuid"`
	ReadingValue  float64  `json:"reading_value"  binding:"required"`
	PhotoPath     string   `json:"photo_path"     binding:"omitempty,max=500"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	IsAnomaly     bool     `json:"is_anomaly"`
	AnomalyReason string   `json:"anomaly_reason" binding:"omitempty,max=500"`
}
