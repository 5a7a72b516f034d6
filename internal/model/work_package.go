package model

import "time"

// ── 工作包状态机 ──

// PackageStatus 工作包状态枚举
type PackageStatus string

const (
	PkgStatusNew             PackageStatus = "new"
	PkgStatusAssigned        PackageStatus = "assigned"
	PkgStatusInProgress      PackageStatus = "in_progress"
	PkgStatusCompletedByTeam PackageStatus = "completed_by_team"
	PkgStatusUnderInspection PackageStatus = "under_inspection"
	PkgStatusApproved        PackageStatus = "approved"
	PkgStatusRejected        PackageStatus = "rejected"
)

// 工作包状态机与作业状态机相互独立：
// 这里的 rejected 是终态（验收不通过即结束），而作业的 rejected 允许返工。
// 每个动作要求固定的前置状态，由 Service 层逐动作校验。

// InspectResult 验收结果
type InspectResult string

const (
	InspectApproved InspectResult = "approved"
	InspectRejected InspectResult = "rejected"
)

// ── 模型 ──

// WorkPackage 工作包表 — 对应 field_work_packages
// 将多个作业打包为一次班组/承包商委托
type WorkPackage struct {
	PackageID        string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"package_id"`
	PackageNumber    string        `gorm:"type:varchar(30);not null;uniqueIndex"          json:"package_number"`
	PackageName      string        `gorm:"type:varchar(200);not null"                     json:"package_name"`
	Description      string        `gorm:"type:text"                                      json:"description,omitempty"`
	Status           PackageStatus `gorm:"type:varchar(30);not null;default:'new'"        json:"status"`
	StationID        *string       `gorm:"type:uuid"                                      json:"station_id,omitempty"`
	AssignedTeamID   *string       `gorm:"type:uuid"                                      json:"assigned_team_id,omitempty"`
	ContractorName   string        `gorm:"type:varchar(100)"                              json:"contractor_name,omitempty"`
	SupervisorID     *string       `gorm:"type:uuid"                                      json:"supervisor_id,omitempty"`
	InspectorID      *string       `gorm:"type:uuid"                                      json:"inspector_id,omitempty"`
	ExpectedDuration *int          `json:"expected_duration,omitempty"` // 预计工期（天）
	AgreedAmount     *float64      `gorm:"type:decimal(12,2)"                             json:"agreed_amount,omitempty"`
	AssignedAt       *time.Time    `json:"assigned_at,omitempty"`
	StartedAt        *time.Time    `json:"started_at,omitempty"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
	InspectedAt      *time.Time    `json:"inspected_at,omitempty"`
	ApprovedAt       *time.Time    `json:"approved_at,omitempty"`
	InspectionNotes  string        `gorm:"type:text"                                      json:"inspection_notes,omitempty"`
	RejectionReason  string        `gorm:"type:varchar(500)"                              json:"rejection_reason,omitempty"`
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`

	// 关联
	Team  *Team             `gorm:"foreignKey:AssignedTeamID;references:TeamID" json:"team,omitempty"`
	Items []WorkPackageItem `gorm:"foreignKey:PackageID"                        json:"items,omitempty"`
}

// TableName 指定表名
func (WorkPackage) TableName() string { return "field_work_packages" }

// WorkPackageItem 工作包条目表 — 对应 field_work_package_items
// sequence_order 表示执行顺序，新增取 max+1；移除后允许留空洞（顺序只是提示）
type WorkPackageItem struct {
	ItemID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"item_id"`
	PackageID     string    `gorm:"type:uuid;not null"                             json:"package_id"`
	OperationID   string    `gorm:"type:uuid;not null"                             json:"operation_id"`
	SequenceOrder int       `gorm:"not null"                                       json:"sequence_order"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Operation *Operation `gorm:"foreignKey:OperationID;references:OperationID" json:"operation,omitempty"`
}

// TableName 指定表名
func (WorkPackageItem) TableName() string { return "field_work_package_items" }
