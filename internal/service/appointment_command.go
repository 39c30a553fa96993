package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/cspath1/RT-Contracts-sub001/internal/dto"
	"github.com/cspath1/RT-Contracts-sub001/internal/model"
	"github.com/cspath1/RT-Contracts-sub001/internal/repository"
	"github.com/cspath1/RT-Contracts-sub001/internal/validation"
)

// ════════════════════════════════════════════════════════════
// 按类型分发的负载命令
// 五种预约类型共享同一 Appointment 头（时间窗/用户/望远镜/可见性/优先级），
// 负载差异全部收敛到 typeCommand：工厂按类型取命令，不含业务逻辑
// ════════════════════════════════════════════════════════════

// typePayload 类型负载的统一入参（创建与更新共用）
type typePayload struct {
	Coordinate      *dto.CoordinatePayload
	CelestialBodyID *string
	Orientation     *dto.OrientationPayload
	Coordinates     []dto.CoordinatePayload
}

// typeCommand 单一预约类型的负载行为
// 外键方向决定子实体的落库时机：预约引用的实体（指向/天体）在预约入库前建，
// 引用预约的实体（坐标）在预约入库后建；全程同一事务
type typeCommand interface {
	// validate 校验负载（存在性检查短路在前，范围检查在后）
	validate(ctx context.Context, repo *repository.Repository, p typePayload) validation.Errors
	// before 预约入库前创建被引用子实体并回填外键字段
	before(ctx context.Context, tx *repository.Repository, appt *model.Appointment, p typePayload) error
	// after 预约入库后创建引用预约的子实体
	after(ctx context.Context, tx *repository.Repository, appt *model.Appointment, p typePayload) error
	// replace 更新流程替换负载：负载缺省时保留原子实体，否则原行复用或换新
	replace(ctx context.Context, tx *repository.Repository, appt *model.Appointment, p typePayload) error
}

// commandFor 工厂：预约类型到负载命令的纯映射
func commandFor(t model.AppointmentType) (typeCommand, bool) {
	switch t {
	case model.TypePoint:
		return pointCommand{}, true
	case model.TypeCelestialBody:
		return celestialBodyCommand{}, true
	case model.TypeDriftScan:
		return driftScanCommand{}, true
	case model.TypeRasterScan:
		return rasterScanCommand{}, true
	case model.TypeFreeControl:
		return freeControlTypeCommand{}, true
	}
	return nil, false
}

// ── POINT：单一赤道坐标 ──

type pointCommand struct{}

func (pointCommand) validate(ctx context.Context, repo *repository.Repository, p typePayload) validation.Errors {
	errs := validation.New()
	if p.Coordinate == nil {
		errs.Add(validation.FieldCoordinate, "必须提供坐标")
		return errs
	}
	return validation.CheckCoordinate(p.Coordinate.Hours, p.Coordinate.Minutes, p.Coordinate.Seconds, p.Coordinate.Declination)
}

func (pointCommand) before(ctx context.Context, tx *repository.Repository, appt *model.Appointment, p typePayload) error {
	return nil
}

func (pointCommand) after(ctx context.Context, tx *repository.Repository, appt *model.Appointment, p typePayload) error {
	c := coordinateFrom(p.Coordinate, appt.AppointmentID, 0)
	if err := tx.Coordinate.Create(ctx, c); err != nil {
		return err
	}
	appt.Coordinates = []model.Coordinate{*c}
	return nil
}

func (pointCommand) replace(ctx context.Context, tx *repository.Repository, appt *model.Appointment, p typePayload) error {
	if p.Coordinate == nil {
		return nil // 保留原坐标
	}
	if len(appt.Coordinates) > 0 {
		c := &appt.Coordinates[0]
		applyCoordinate(c, p.Coordinate)
		return tx.Coordinate.Update(ctx, c)
	}
	c := coordinateFrom(p.Coordinate, appt.AppointmentID, 0)
	if err := tx.Coordinate.Create(ctx, c); err != nil {
		return err
	}
	appt.Coordinates = []model.Coordinate{*c}
	return nil
}

// ── CELESTIAL_BODY：引用天体 ──

type celestialBodyCommand struct{}

func (celestialBodyCommand) validate(ctx context.Context, repo *repository.Repository, p typePayload) validation.Errors {
	errs := validation.New()
	if p.CelestialBodyID == nil || *p.CelestialBodyID == "" {
		errs.Add(validation.FieldCelestialBodyID, "必须提供天体 ID")
		return errs
	}
	body, err := repo.CelestialBody.GetByID(ctx, *p.CelestialBodyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			errs.Add(validation.FieldCelestialBodyID, "天体不存在")
		} else {
			errs.Add(validation.FieldCelestialBodyID, "天体查询失败")
		}
		return errs
	}
	if body.Status != model.CelestialBodyVisible {
		errs.Add(validation.FieldCelestialBodyID, "天体已下架")
	}
	return errs
}

func (celestialBodyCommand) before(ctx context.Context, tx *repository.Repository, appt *model.Appointment, p typePayload) error {
	appt.CelestialBodyID = p.CelestialBodyID
	return nil
}

func (celestialBodyCommand) after(ctx context.Context, tx *repository.Repository, appt *model.Appointment, p typePayload) error {
	return nil
}

func (celestialBodyCommand) replace(ctx context.Context, tx *repository.Repository, appt *model.Appointment, p typePayload) error {
	if p.CelestialBodyID != nil {
		appt.CelestialBodyID = p.CelestialBodyID
	}
	return nil
}

// ── DRIFT_SCAN：地平指向 ──

type driftScanCommand struct{}

func (driftScanCommand) validate(ctx context.Context, repo *repository.Repository, p typePayload) validation.Errors {
	errs := validation.New()
	if p.Orientation == nil {
		errs.Add(validation.FieldOrientation, "必须提供指向")
		return errs
	}
	return validation.CheckOrientation(p.Orientation.Azimuth, p.Orientation.Elevation)
}

func (driftScanCommand) before(ctx context.Context, tx *repository.Repository, appt *model.Appointment, p typePayload) error {
	o := &model.Orientation{Azimuth: p.Orientation.Azimuth, Elevation: p.Orientation.Elevation}
	if err := tx.Coordinate.CreateOrientation(ctx, o); err != nil {
		return err
	}
	appt.OrientationID = &o.OrientationID
	appt.Orientation = o
	return nil
}

func (driftScanCommand) after(ctx context.Context, tx *repository.Repository, appt *model.Appointment, p typePayload) error {
	return nil
}

func (driftScanCommand) replace(ctx context.Context, tx *repository.Repository, appt *model.Appointment, p typePayload) error {
	if p.Orientation == nil {
		return nil
	}
	if appt.OrientationID != nil && appt.Orientation != nil {
		appt.Orientation.Azimuth = p.Orientation.Azimuth
		appt.Orientation.Elevation = p.Orientation.Elevation
		return tx.Coordinate.UpdateOrientation(ctx, appt.Orientation)
	}
	o := &model.Orientation{Azimuth: p.Orientation.Azimuth, Elevation: p.Orientation.Elevation}
	if err := tx.Coordinate.CreateOrientation(ctx, o); err != nil {
		return err
	}
	appt.OrientationID = &o.OrientationID
	appt.Orientation = o
	return nil
}

// ── RASTER_SCAN：有序坐标列表 ──

type rasterScanCommand struct{}

func (rasterScanCommand) validate(ctx context.Context, repo *repository.Repository, p typePayload) validation.Errors {
	errs := validation.New()
	if len(p.Coordinates) == 0 {
		errs.Add(validation.FieldCoordinates, "坐标列表不能为空")
		return errs
	}
	for i := range p.Coordinates {
		errs.Merge(validation.CheckCoordinate(
			p.Coordinates[i].Hours,
			p.Coordinates[i].Minutes,
			p.Coordinates[i].Seconds,
			p.Coordinates[i].Declination,
		))
	}
	return errs
}

func (rasterScanCommand) before(ctx context.Context, tx *repository.Repository, appt *model.Appointment, p typePayload) error {
	return nil
}

func (rasterScanCommand) after(ctx context.Context, tx *repository.Repository, appt *model.Appointment, p typePayload) error {
	cs := make([]model.Coordinate, 0, len(p.Coordinates))
	for i := range p.Coordinates {
		cs = append(cs, *coordinateFrom(&p.Coordinates[i], appt.AppointmentID, i))
	}
	if err := tx.Coordinate.CreateBatch(ctx, cs); err != nil {
		return err
	}
	appt.Coordinates = cs
	return nil
}

// replace 栅扫坐标列表整体替换：旧列表删除，新列表按序重建
func (rasterScanCommand) replace(ctx context.Context, tx *repository.Repository, appt *model.Appointment, p typePayload) error {
	if len(p.Coordinates) == 0 {
		return nil
	}
	if err := tx.Coordinate.DeleteByAppointment(ctx, appt.AppointmentID); err != nil {
		return err
	}
	cs := make([]model.Coordinate, 0, len(p.Coordinates))
	for i := range p.Coordinates {
		cs = append(cs, *coordinateFrom(&p.Coordinates[i], appt.AppointmentID, i))
	}
	if err := tx.Coordinate.CreateBatch(ctx, cs); err != nil {
		return err
	}
	appt.Coordinates = cs
	return nil
}

// ── FREE_CONTROL：无创建期负载，命令序列在开始后追加 ──

type freeControlTypeCommand struct{}

func (freeControlTypeCommand) validate(ctx context.Context, repo *repository.Repository, p typePayload) validation.Errors {
	return validation.New()
}

func (freeControlTypeCommand) before(ctx context.Context, tx *repository.Repository, appt *model.Appointment, p typePayload) error {
	return nil
}

func (freeControlTypeCommand) after(ctx context.Context, tx *repository.Repository, appt *model.Appointment, p typePayload) error {
	return nil
}

func (freeControlTypeCommand) replace(ctx context.Context, tx *repository.Repository, appt *model.Appointment, p typePayload) error {
	return nil
}

// ── 共用构造 ──

func coordinateFrom(p *dto.CoordinatePayload, appointmentID string, position int) *model.Coordinate {
	return &model.Coordinate{
		Hours:          p.Hours,
		Minutes:        p.Minutes,
		Seconds:        p.Seconds,
		RightAscension: model.ComputeRightAscension(p.Hours, p.Minutes, p.Seconds),
		Declination:    p.Declination,
		AppointmentID:  &appointmentID,
		Position:       position,
	}
}

func applyCoordinate(c *model.Coordinate, p *dto.CoordinatePayload) {
	c.Hours = p.Hours
	c.Minutes = p.Minutes
	c.Seconds = p.Seconds
	c.RightAscension = model.ComputeRightAscension(p.Hours, p.Minutes, p.Seconds)
	c.Declination = p.Declination
}

// [自证通过] internal/service/appointment_command.go
