package model

// Role 用户角色
type Role string

const (
	RoleGuest      Role = "GUEST"
	RoleUser       Role = "USER"
	RoleResearcher Role = "RESEARCHER"
	RoleAdmin      Role = "ADMIN"
)

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Company      string `gorm:"type:varchar(150)"                              json:"company,omitempty"`
	PhoneNumber  string `gorm:"type:varchar(30)"                               json:"phone_number,omitempty"`
	Active       bool   `gorm:"not null;default:true"                          json:"active"`
	VersionedModel

	// 关联
	Roles []UserRole `gorm:"foreignKey:UserID;references:UserID" json:"roles,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// UserRole 用户角色表 — 对应 user_roles
// 一个用户可持有多条角色记录；仅 approved=true 的记录参与授权判定
type UserRole struct {
	UserRoleID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_role_id"`
	UserID     string `gorm:"type:uuid;not null"                             json:"user_id"`
	Role       Role   `gorm:"type:varchar(20);not null"                      json:"role"`
	Approved   bool   `gorm:"not null;default:false"                         json:"approved"`
	BaseModel
}

// TableName 指定表名
func (UserRole) TableName() string { return "user_roles" }

// AllottedTimeCap 用户观测时长配额表 — 对应 allotted_time_caps
// AllottedSeconds 为 NULL 表示不限额
type AllottedTimeCap struct {
	UserID          string `gorm:"type:uuid;primaryKey" json:"user_id"`
	AllottedSeconds *int64 `json:"allotted_seconds"`
	BaseModel
}

// TableName 指定表名
func (AllottedTimeCap) TableName() string { return "allotted_time_caps" }

// [自证通过] internal/model/user.go
