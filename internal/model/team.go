package model

import "time"

// Team 班组表 — 对应 field_teams
type Team struct {
	TeamID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"team_id"`
	TeamCode     string  `gorm:"type:varchar(20);not null;uniqueIndex"          json:"team_code"`
	TeamName     string  `gorm:"type:varchar(100);not null"                     json:"team_name"`
	TeamType     string  `gorm:"type:varchar(20);not null"                      json:"team_type"` // installation | maintenance | reading
	StationID    *string `gorm:"type:uuid"                                      json:"station_id,omitempty"`
	SupervisorID *string `gorm:"type:uuid"                                      json:"supervisor_id,omitempty"`
	IsActive     bool    `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

// TableName 指定表名
func (Team) TableName() string { return "field_teams" }

// TeamMember 班组成员关系表 — 对应 field_team_members
// 成员退出为软移除（is_active=false + left_at），保留历史指派记录
type TeamMember struct {
	MemberID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"   json:"member_id"`
	TeamID   string     `gorm:"type:uuid;not null;uniqueIndex:uq_team_worker"    json:"team_id"`
	WorkerID string     `gorm:"type:uuid;not null;uniqueIndex:uq_team_worker"    json:"worker_id"`
	Role     string     `gorm:"type:varchar(10);not null;default:'member'"       json:"role"` // leader | member
	JoinedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"               json:"joined_at"`
	LeftAt   *time.Time `json:"left_at,omitempty"`
	IsActive bool       `gorm:"not null;default:true"                            json:"is_active"`

	// 关联
	Worker *Worker `gorm:"foreignKey:WorkerID;references:WorkerID" json:"worker,omitempty"`
}

// TableName 指定表名
func (TeamMember) TableName() string { return "field_team_members" }
