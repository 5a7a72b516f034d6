package model

import "time"

// ── 抄表轮次状态机 ──

// RoundStatus 抄表轮次状态枚举
type RoundStatus string

const (
	RoundStatusScheduled  RoundStatus = "scheduled"
	RoundStatusInProgress RoundStatus = "in_progress"
	RoundStatusCompleted  RoundStatus = "completed"
)

// ── 模型 ──

// ReadingTemplate 抄表模板表 — 对应 field_reading_templates
// 周期性抄表轮次的可复用定义
type ReadingTemplate struct {
	TemplateID    string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"template_id"`
	TemplateCode  string  `gorm:"type:varchar(30);not null;uniqueIndex"          json:"template_code"`
	TemplateName  string  `gorm:"type:varchar(200);not null"                     json:"template_name"`
	Frequency     string  `gorm:"type:varchar(10);not null"                      json:"frequency"` // daily | weekly | monthly
	StationID     *string `gorm:"type:uuid"                                      json:"station_id,omitempty"`
	AreaID        *string `gorm:"type:uuid"                                      json:"area_id,omitempty"`
	EstimatedTime *int    `json:"estimated_time,omitempty"` // 预计耗时（分钟）
	IsActive      bool    `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	Items []ReadingTemplateItem `gorm:"foreignKey:TemplateID" json:"items,omitempty"`
}

// TableName 指定表名
func (ReadingTemplate) TableName() string { return "field_reading_templates" }

// ReadingTemplateItem 抄表模板条目表 — 对应 field_reading_template_items
type ReadingTemplateItem struct {
	ItemID        string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"item_id"`
	TemplateID    string `gorm:"type:uuid;not null"                             json:"template_id"`
	MeterID       string `gorm:"type:uuid;not null"                             json:"meter_id"`
	SequenceOrder int    `gorm:"not null"                                       json:"sequence_order"`
}

// TableName 指定表名
func (ReadingTemplateItem) TableName() string { return "field_reading_template_items" }

// ReadingRound 抄表轮次表 — 对应 field_reading_rounds
// total_meters 为创建时模板条目数的快照，仅供展示，不限制实际抄表数；
// read_meters 为已抄数量计数器，由 SQL 原子自增维护
type ReadingRound struct {
	RoundID       string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"round_id"`
	RoundNumber   string      `gorm:"type:varchar(30);not null;uniqueIndex"          json:"round_number"`
	TemplateID    string      `gorm:"type:uuid;not null"                             json:"template_id"`
	ScheduledDate time.Time   `gorm:"type:date;not null"                             json:"scheduled_date"`
	Status        RoundStatus `gorm:"type:varchar(20);not null;default:'scheduled'"  json:"status"`
	AssignedTo    *string     `gorm:"type:uuid"                                      json:"assigned_to,omitempty"`
	TotalMeters   int         `gorm:"not null;default:0"                             json:"total_meters"`
	ReadMeters    int         `gorm:"not null;default:0"                             json:"read_meters"`
	StartedAt     *time.Time  `json:"started_at,omitempty"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty"`
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`

	// 关联
	Template *ReadingTemplate `gorm:"foreignKey:TemplateID;references:TemplateID" json:"template,omitempty"`
	Readings []MeterReading   `gorm:"foreignKey:RoundID"                          json:"readings,omitempty"`
}

// TableName 指定表名
func (ReadingRound) TableName() string { return "field_reading_rounds" }

// MeterReading 抄表记录表 — 对应 field_meter_readings
// (round_id, meter_id) 唯一约束保证同一轮次同一电表至多一条
type MeterReading struct {
	ReadingID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"    json:"reading_id"`
	RoundID       string    `gorm:"type:uuid;not null;uniqueIndex:uq_round_meter"     json:"round_id"`
	MeterID       string    `gorm:"type:uuid;not null;uniqueIndex:uq_round_meter"     json:"meter_id"`
	ReadingValue  float64   `gorm:"type:decimal(12,3);not null"                       json:"reading_value"`
	PhotoPath     string    `gorm:"type:varchar(500)"                                 json:"photo_path,omitempty"`
	Latitude      *float64  `gorm:"type:decimal(10,7)"                                json:"latitude,omitempty"`
	Longitude     *float64  `gorm:"type:decimal(10,7)"                                json:"longitude,omitempty"`
	IsAnomaly     bool      `gorm:"not null;default:false"                            json:"is_anomaly"`
	AnomalyReason string    `gorm:"type:varchar(500)"                                 json:"anomaly_reason,omitempty"`
	ReadBy        *string   `gorm:"type:uuid"                                         json:"read_by,omitempty"`
	ReadingDate   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                json:"reading_date"`
}

// TableName 指定表名
func (MeterReading) TableName() string { return "field_meter_readings" }
