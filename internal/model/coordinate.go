package model

import "time"

// Coordinate 赤道坐标表 — 对应 coordinates
// 由一条预约（单点/栅扫）或一个深空天体独占持有；持有方不再需要时删除
type Coordinate struct {
	CoordinateID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"coordinate_id"`
	Hours          int       `gorm:"not null" json:"hours"`
	Minutes        int       `gorm:"not null" json:"minutes"`
	Seconds        int       `gorm:"not null" json:"seconds"`
	RightAscension float64   `gorm:"not null" json:"right_ascension"` // 度，由时分秒换算
	Declination    float64   `gorm:"not null" json:"declination"`     // 度，[-90, 90]
	AppointmentID  *string   `gorm:"type:uuid" json:"appointment_id,omitempty"`
	Position       int       `gorm:"not null;default:0" json:"position"` // 栅扫坐标序
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName 指定表名
func (Coordinate) TableName() string { return "coordinates" }

// ComputeRightAscension 将时/分/秒换算为赤经（度）
// 1h = 15°, 1m = 0.25°, 1s = 1/240°
func ComputeRightAscension(hours, minutes, seconds int) float64 {
	return float64(hours)*15.0 + float64(minutes)*0.25 + float64(seconds)/240.0
}

// Orientation 地平坐标表 — 对应 orientations（漂移扫描预约使用）
type Orientation struct {
	OrientationID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"orientation_id"`
	Azimuth       float64   `gorm:"not null" json:"azimuth"`   // 度，[0, 360)
	Elevation     float64   `gorm:"not null" json:"elevation"` // 度，[0, 90]
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName 指定表名
func (Orientation) TableName() string { return "orientations" }

// [自证通过] internal/model/coordinate.go
