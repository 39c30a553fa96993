package dto

import (
	"time"

	"github.com/cspath1/RT-Contracts-sub001/internal/model"
)

// AddCommandRequest 追加手控指向命令请求
// 命令把望远镜指向给定赤道坐标并保持 Duration 秒
type AddCommandRequest struct {
	Hours       int     `json:"hours"`
	Minutes     int     `json:"minutes"`
	Seconds     int     `json:"seconds"`
	Declination float64 `json:"declination"`
	Duration    int     `json:"duration" binding:"required,min=1"`
}

// FreeControlCommandResponse 手控命令详情
type FreeControlCommandResponse struct {
	CommandID     string                       `json:"command_id"`
	AppointmentID string                       `json:"appointment_id"`
	Seq           int                          `json:"seq"`
	CommandType   model.FreeControlCommandType `json:"command_type"`
	Hours         *int                         `json:"hours,omitempty"`
	Minutes       *int                         `json:"minutes,omitempty"`
	Seconds       *int                         `json:"seconds,omitempty"`
	Declination   *float64                     `json:"declination,omitempty"`
	DurationSecs  *int                         `json:"duration_secs,omitempty"`
	CreatedAt     time.Time                    `json:"created_at"`
}

// NewFreeControlCommandResponse 由模型构造手控命令响应
func NewFreeControlCommandResponse(c *model.FreeControlCommand) *FreeControlCommandResponse {
	return &FreeControlCommandResponse{
		CommandID:     c.CommandID,
		AppointmentID: c.AppointmentID,
		Seq:           c.Seq,
		CommandType:   c.CommandType,
		Hours:         c.Hours,
		Minutes:       c.Minutes,
		Seconds:       c.Seconds,
		Declination:   c.Declination,
		DurationSecs:  c.DurationSecs,
		CreatedAt:     c.CreatedAt,
	}
}

// [自证通过] internal/dto/freecontrol.go
