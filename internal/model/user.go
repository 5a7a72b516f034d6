package model

import "time"

// User 后台用户表 — 对应 users
// 调度、稽查等后台账号；现场工人通过 Worker.UserID 关联
type User struct {
	UserID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string    `gorm:"type:varchar(50);not null;uniqueIndex"          json:"username"`
	FullName     string    `gorm:"type:varchar(100);not null"                     json:"full_name"`
	PasswordHash string    `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string    `gorm:"type:varchar(20);not null;default:'dispatcher'" json:"role"` // admin | dispatcher | inspector | field
	IsActive     bool      `gorm:"not null;default:true"                          json:"is_active"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }
