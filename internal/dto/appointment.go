package dto

import (
	"time"

	"github.com/cspath1/RT-Contracts-sub001/internal/model"
)

// CoordinatePayload 赤道坐标负载（POINT / RASTER_SCAN）
type CoordinatePayload struct {
	Hours       int     `json:"hours"`
	Minutes     int     `json:"minutes"`
	Seconds     int     `json:"seconds"`
	Declination float64 `json:"declination"`
}

// OrientationPayload 地平坐标负载（DRIFT_SCAN）
type OrientationPayload struct {
	Azimuth   float64 `json:"azimuth"`
	Elevation float64 `json:"elevation"`
}

// CreateAppointmentRequest 创建预约请求
// 按 Type 使用互斥的负载字段：
//   POINT          -> Coordinate
//   CELESTIAL_BODY -> CelestialBodyID
//   DRIFT_SCAN     -> Orientation
//   RASTER_SCAN    -> Coordinates（至少一条）
//   FREE_CONTROL   -> 无负载，命令在开始后追加
type CreateAppointmentRequest struct {
	TelescopeID string                    `json:"telescope_id" binding:"required,uuid"`
	StartTime   time.Time                 `json:"start_time" binding:"required"`
	EndTime     time.Time                 `json:"end_time" binding:"required"`
	Type        model.AppointmentType     `json:"type" binding:"required"`
	Priority    model.AppointmentPriority `json:"priority" binding:"omitempty"`
	IsPublic    *bool                     `json:"is_public"`

	Coordinate      *CoordinatePayload  `json:"coordinate,omitempty"`
	CelestialBodyID *string             `json:"celestial_body_id,omitempty"`
	Orientation     *OrientationPayload `json:"orientation,omitempty"`
	Coordinates     []CoordinatePayload `json:"coordinates,omitempty"`
}

// GetIsPublic 默认公开
func (r *CreateAppointmentRequest) GetIsPublic() bool {
	if r.IsPublic == nil {
		return true
	}
	return *r.IsPublic
}

// GetPriority 默认 PRIMARY
func (r *CreateAppointmentRequest) GetPriority() model.AppointmentPriority {
	if r.Priority == "" {
		return model.PriorityPrimary
	}
	return r.Priority
}

// UpdateAppointmentRequest 更新预约请求
// 类型不可变；负载字段按原类型解释，缺省则保留原负载
type UpdateAppointmentRequest struct {
	TelescopeID string                    `json:"telescope_id" binding:"required,uuid"`
	StartTime   time.Time                 `json:"start_time" binding:"required"`
	EndTime     time.Time                 `json:"end_time" binding:"required"`
	Priority    model.AppointmentPriority `json:"priority" binding:"omitempty"`

	Coordinate      *CoordinatePayload  `json:"coordinate,omitempty"`
	CelestialBodyID *string             `json:"celestial_body_id,omitempty"`
	Orientation     *OrientationPayload `json:"orientation,omitempty"`
	Coordinates     []CoordinatePayload `json:"coordinates,omitempty"`
}

// ApproveDenyRequest 审批请求
type ApproveDenyRequest struct {
	IsApprove *bool `json:"is_approve" binding:"required"`
}

// ListAppointmentsRequest 列表请求（future/past 二选一）
type ListAppointmentsRequest struct {
	PaginationRequest
	Scope string `form:"scope" binding:"omitempty,oneof=future past"`
}

// TelescopeWindowRequest 按望远镜和时间窗口查询
type TelescopeWindowRequest struct {
	StartTime time.Time `form:"start_time" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime   time.Time `form:"end_time" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

// SearchAppointmentsRequest 多条件搜索请求
// Search 形如 "field=value;field2=value2"，可组合字段：
// user_full_name（不可与其他字段组合）、user_company、telescope_id、status、type
type SearchAppointmentsRequest struct {
	PaginationRequest
	Search string `form:"search" binding:"required"`
}

// AppointmentResponse 预约详情
type AppointmentResponse struct {
	AppointmentID string                    `json:"appointment_id"`
	UserID        string                    `json:"user_id"`
	TelescopeID   string                    `json:"telescope_id"`
	StartTime     time.Time                 `json:"start_time"`
	EndTime       time.Time                 `json:"end_time"`
	Status        model.AppointmentStatus   `json:"status"`
	Type          model.AppointmentType     `json:"type"`
	Priority      model.AppointmentPriority `json:"priority"`
	IsPublic      bool                      `json:"is_public"`
	Version       int                       `json:"version"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`

	Coordinate    *CoordinateResponse    `json:"coordinate,omitempty"`
	Coordinates   []CoordinateResponse   `json:"coordinates,omitempty"`
	Orientation   *OrientationPayload    `json:"orientation,omitempty"`
	CelestialBody *CelestialBodyResponse `json:"celestial_body,omitempty"`
	User          *UserResponse          `json:"user,omitempty"`
}

// CoordinateResponse 赤道坐标详情（含换算后的赤经）
type CoordinateResponse struct {
	Hours          int     `json:"hours"`
	Minutes        int     `json:"minutes"`
	Seconds        int     `json:"seconds"`
	RightAscension float64 `json:"right_ascension"`
	Declination    float64 `json:"declination"`
}

// NewCoordinateResponse 由模型构造坐标响应
func NewCoordinateResponse(c *model.Coordinate) *CoordinateResponse {
	return &CoordinateResponse{
		Hours:          c.Hours,
		Minutes:        c.Minutes,
		Seconds:        c.Seconds,
		RightAscension: c.RightAscension,
		Declination:    c.Declination,
	}
}

// NewAppointmentResponse 由模型构造预约响应，按类型装配负载
func NewAppointmentResponse(a *model.Appointment) *AppointmentResponse {
	resp := &AppointmentResponse{
		AppointmentID: a.AppointmentID,
		UserID:        a.UserID,
		TelescopeID:   a.TelescopeID,
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		Status:        a.Status,
		Type:          a.Type,
		Priority:      a.Priority,
		IsPublic:      a.IsPublic,
		Version:       a.Version,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
	switch a.Type {
	case model.TypePoint:
		if len(a.Coordinates) > 0 {
			resp.Coordinate = NewCoordinateResponse(&a.Coordinates[0])
		}
	case model.TypeRasterScan:
		for i := range a.Coordinates {
			resp.Coordinates = append(resp.Coordinates, *NewCoordinateResponse(&a.Coordinates[i]))
		}
	case model.TypeDriftScan:
		if a.Orientation != nil {
			resp.Orientation = &OrientationPayload{
				Azimuth:   a.Orientation.Azimuth,
				Elevation: a.Orientation.Elevation,
			}
		}
	case model.TypeCelestialBody:
		if a.CelestialBody != nil {
			resp.CelestialBody = NewCelestialBodyResponse(a.CelestialBody)
		}
	}
	if a.User != nil {
		resp.User = NewUserResponse(a.User, nil)
	}
	return resp
}

// NewAppointmentResponses 批量构造
func NewAppointmentResponses(items []model.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(items))
	for i := range items {
		out = append(out, *NewAppointmentResponse(&items[i]))
	}
	return out
}

// [自证通过] internal/dto/appointment.go
