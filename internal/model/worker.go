package model

import "time"

// Worker 现场工人表 — 对应 field_workers
// last_* 三个字段是位置的读优化冗余，历史轨迹以 WorkerLocationLog 为准
type Worker struct {
	WorkerID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"worker_id"`
	WorkerCode     string     `gorm:"type:varchar(20);not null;uniqueIndex"          json:"worker_code"`
	FullName       string     `gorm:"type:varchar(100);not null"                     json:"full_name"`
	Phone          string     `gorm:"type:varchar(20)"                               json:"phone,omitempty"`
	Email          string     `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	WorkerType     string     `gorm:"type:varchar(20);not null"                      json:"worker_type"` // technician | reader | collector
	Specialization string     `gorm:"type:varchar(50)"                               json:"specialization,omitempty"`
	EmployeeID     *string    `gorm:"type:uuid"                                      json:"employee_id,omitempty"`
	UserID         *string    `gorm:"type:uuid"                                      json:"user_id,omitempty"`
	IsAvailable    bool       `gorm:"not null;default:true"                          json:"is_available"`
	IsActive       bool       `gorm:"not null;default:true"                          json:"is_active"`
	LastLatitude   *float64   `gorm:"type:decimal(10,7)"                             json:"last_latitude,omitempty"`
	LastLongitude  *float64   `gorm:"type:decimal(10,7)"                             json:"last_longitude,omitempty"`
	LastLocationAt *time.Time `json:"last_location_at,omitempty"`
	BaseModel

	// 关联
	TeamMemberships []TeamMember `gorm:"foreignKey:WorkerID" json:"team_memberships,omitempty"`
}

// TableName 指定表名
func (Worker) TableName() string { return "field_workers" }

// WorkerLocationLog 工人位置日志表 — 对应 field_worker_location_log（仅追加）
type WorkerLocationLog struct {
	LogID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"log_id"`
	WorkerID     string    `gorm:"type:uuid;not null"                             json:"worker_id"`
	Latitude     float64   `gorm:"type:decimal(10,7);not null"                    json:"latitude"`
	Longitude    float64   `gorm:"type:decimal(10,7);not null"                    json:"longitude"`
	Accuracy     *float64  `gorm:"type:decimal(8,2)"                              json:"accuracy,omitempty"`
	Speed        *float64  `gorm:"type:decimal(8,2)"                              json:"speed,omitempty"`
	BatteryLevel *int      `json:"battery_level,omitempty"`
	RecordedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"recorded_at"`
}

// TableName 指定表名
func (WorkerLocationLog) TableName() string { return "field_worker_location_log" }

// WorkerPerformance 工人绩效表 — 对应 field_worker_performance
type WorkerPerformance struct {
	PerformanceID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"performance_id"`
	WorkerID        string    `gorm:"type:uuid;not null"                             json:"worker_id"`
	PeriodStart     time.Time `gorm:"type:date;not null"                             json:"period_start"`
	PeriodEnd       time.Time `gorm:"type:date;not null"                             json:"period_end"`
	TotalOperations int       `gorm:"not null;default:0"                             json:"total_operations"`
	CompletedOnTime int       `gorm:"not null;default:0"                             json:"completed_on_time"`
	QualityScore    *float64  `gorm:"type:decimal(5,2)"                              json:"quality_score,omitempty"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (WorkerPerformance) TableName() string { return "field_worker_performance" }
