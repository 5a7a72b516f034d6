package model

import "time"

// ── 作业类型 ──

// OperationType 作业类型枚举
type OperationType string

const (
	OpTypeInstallation  OperationType = "installation"
	OpTypeMaintenance   OperationType = "maintenance"
	OpTypeInspection    OperationType = "inspection"
	OpTypeDisconnection OperationType = "disconnection"
	OpTypeReconnection  OperationType = "reconnection"
	OpTypeMeterReading  OperationType = "meter_reading"
	OpTypeCollection    OperationType = "collection"
	OpTypeMigration     OperationType = "migration"
	OpTypeReplacement   OperationType = "replacement"
)

// OperationTypes 全部合法作业类型（边界校验使用）
var OperationTypes = []OperationType{
	OpTypeInstallation, OpTypeMaintenance, OpTypeInspection,
	OpTypeDisconnection, OpTypeReconnection, OpTypeMeterReading,
	OpTypeCollection, OpTypeMigration, OpTypeReplacement,
}

// ── 作业状态机 ──

// OperationStatus 作业状态枚举
type OperationStatus string

const (
	OpStatusDraft                OperationStatus = "draft"
	OpStatusScheduled            OperationStatus = "scheduled"
	OpStatusAssigned             OperationStatus = "assigned"
	OpStatusInProgress           OperationStatus = "in_progress"
	OpStatusCompleted            OperationStatus = "completed"
	OpStatusCancelled            OperationStatus = "cancelled"
	OpStatusOnHold               OperationStatus = "on_hold"
	OpStatusRejected             OperationStatus = "rejected"
	OpStatusWaitingCustomerCable OperationStatus = "waiting_customer_cable"
	OpStatusPendingInspection    OperationStatus = "pending_inspection"
	OpStatusApproved             OperationStatus = "approved"
)

// operationTransitions 作业状态转换邻接表
// cancelled 与 approved 为终态（无出边）。
// rejected → in_progress 允许返工，此时 started_at 不重置（首次进入为准）。
// 注意：工作包状态机中的 rejected 是终态，两张表语义不同，不得合并。
var operationTransitions = map[OperationStatus][]OperationStatus{
	OpStatusDraft:                {OpStatusScheduled, OpStatusCancelled},
	OpStatusScheduled:            {OpStatusAssigned, OpStatusCancelled, OpStatusOnHold},
	OpStatusAssigned:             {OpStatusInProgress, OpStatusCancelled, OpStatusOnHold},
	OpStatusInProgress:           {OpStatusCompleted, OpStatusOnHold, OpStatusWaitingCustomerCable},
	OpStatusCompleted:            {OpStatusPendingInspection},
	OpStatusPendingInspection:    {OpStatusApproved, OpStatusRejected},
	OpStatusRejected:             {OpStatusInProgress},
	OpStatusOnHold:               {OpStatusScheduled, OpStatusAssigned, OpStatusInProgress},
	OpStatusWaitingCustomerCable: {OpStatusInProgress, OpStatusCancelled},
	OpStatusCancelled:            {},
	OpStatusApproved:             {},
}

// CanTransitionOperation 校验作业状态转换是否合法（纯函数，与存储无关）
func CanTransitionOperation(from, to OperationStatus) bool {
	for _, allowed := range operationTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// OperationStatuses 全部合法作业状态
func OperationStatuses() []OperationStatus {
	statuses := make([]OperationStatus, 0, len(operationTransitions))
	for s := range operationTransitions {
		statuses = append(statuses, s)
	}
	return statuses
}

// ── 模型 ──

// Operation 现场作业表 — 对应 field_operations
type Operation struct {
	OperationID      string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"operation_id"`
	OperationNumber  string          `gorm:"type:varchar(30);not null;uniqueIndex"          json:"operation_number"`
	OperationType    OperationType   `gorm:"type:varchar(30);not null"                      json:"operation_type"`
	Title            string          `gorm:"type:varchar(200);not null"                     json:"title"`
	Description      string          `gorm:"type:text"                                      json:"description,omitempty"`
	Priority         int             `gorm:"not null;default:2"                             json:"priority"` // 1=紧急 2=普通 3=低
	Status           OperationStatus `gorm:"type:varchar(30);not null;default:'draft'"      json:"status"`
	CustomerID       *string         `gorm:"type:uuid"                                      json:"customer_id,omitempty"`
	MeterID          *string         `gorm:"type:uuid"                                      json:"meter_id,omitempty"`
	AssetID          *string         `gorm:"type:uuid"                                      json:"asset_id,omitempty"`
	StationID        *string         `gorm:"type:uuid"                                      json:"station_id,omitempty"`
	Address          string          `gorm:"type:varchar(500)"                              json:"address,omitempty"`
	Latitude         *float64        `gorm:"type:decimal(10,7)"                             json:"latitude,omitempty"`
	Longitude        *float64        `gorm:"type:decimal(10,7)"                             json:"longitude,omitempty"`
	AssignedTeamID   *string         `gorm:"type:uuid"                                      json:"assigned_team_id,omitempty"`
	AssignedWorkerID *string         `gorm:"type:uuid"                                      json:"assigned_worker_id,omitempty"`
	ScheduledDate    *time.Time      `json:"scheduled_date,omitempty"`
	StartedAt        *time.Time      `json:"started_at,omitempty"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
	EstimatedCost    *float64        `gorm:"type:decimal(12,2)"                             json:"estimated_cost,omitempty"`
	Notes            string          `gorm:"type:text"                                      json:"notes,omitempty"`
	VersionedModel

	// 关联
	Team       *Team                `gorm:"foreignKey:AssignedTeamID;references:TeamID"     json:"team,omitempty"`
	Worker     *Worker              `gorm:"foreignKey:AssignedWorkerID;references:WorkerID" json:"worker,omitempty"`
	StatusLogs []OperationStatusLog `gorm:"foreignKey:OperationID"                          json:"status_logs,omitempty"`
}

// TableName 指定表名
func (Operation) TableName() string { return "field_operations" }

// OperationStatusLog 作业状态审计日志 — 对应 field_operation_status_log
// 仅追加：每次状态转换恰好写入一条，创建时写入 old_status 为空的首条记录。
// 不提供任何更新或删除入口。
type OperationStatusLog struct {
	LogID        string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"log_id"`
	OperationID  string           `gorm:"type:uuid;not null"                             json:"operation_id"`
	OldStatus    *OperationStatus `gorm:"type:varchar(30)"                               json:"old_status,omitempty"`
	NewStatus    OperationStatus  `gorm:"type:varchar(30);not null"                      json:"new_status"`
	ChangedBy    *string          `gorm:"type:uuid"                                      json:"changed_by,omitempty"`
	ChangeReason string           `gorm:"type:varchar(500)"                              json:"change_reason,omitempty"`
	CreatedAt    time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (OperationStatusLog) TableName() string { return "field_operation_status_log" }
