package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cspath1/RT-Contracts-sub001/internal/access"
	"github.com/cspath1/RT-Contracts-sub001/internal/dto"
	"github.com/cspath1/RT-Contracts-sub001/internal/model"
	"github.com/cspath1/RT-Contracts-sub001/internal/queue"
	"github.com/cspath1/RT-Contracts-sub001/internal/repository"
	"github.com/cspath1/RT-Contracts-sub001/internal/rules"
	"github.com/cspath1/RT-Contracts-sub001/internal/validation"
)

// FreeControlService 手控预约生命周期业务接口
// 状态机：SCHEDULED -> IN_PROGRESS（Start）-> [AddCommand*] -> COMPLETED（Stop）
// CALIBRATING 是 IN_PROGRESS 的侧支，由 Calibrate 进入并由 Calibrate 返回
type FreeControlService interface {
	Start(ctx context.Context, caller *access.Caller, id string) (*dto.AppointmentResponse, *access.Report, validation.Errors, error)
	AddCommand(ctx context.Context, caller *access.Caller, id string, req *dto.AddCommandRequest) (*dto.FreeControlCommandResponse, *access.Report, validation.Errors, error)
	Calibrate(ctx context.Context, caller *access.Caller, id string) (*dto.AppointmentResponse, *access.Report, validation.Errors, error)
	Stop(ctx context.Context, caller *access.Caller, id string) (*dto.AppointmentResponse, *access.Report, validation.Errors, error)
	ListCommands(ctx context.Context, caller *access.Caller, id string) ([]dto.FreeControlCommandResponse, *access.Report, error)
}

type freeControlService struct {
	repo      *repository.Repository
	guard     *access.Guard
	publisher queue.Publisher
	logger    *zap.Logger
}

// NewFreeControlService 创建 FreeControlService 实例
func NewFreeControlService(repo *repository.Repository, guard *access.Guard, publisher queue.Publisher, logger *zap.Logger) FreeControlService {
	return &freeControlService{repo: repo, guard: guard, publisher: publisher, logger: logger}
}

// load 取预约并做类型/授权前置；返回 (appt, report, typeErrs, err)
func (s *freeControlService) load(ctx context.Context, caller *access.Caller, id string, action rules.Action) (*model.Appointment, *access.Report, validation.Errors, error) {
	appt, err := s.repo.Appointment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.NotFound("预约"), nil, nil
		}
		s.logger.Error("查询预约失败", zap.Error(err))
		return nil, nil, nil, err
	}

	if appt.Type != model.TypeFreeControl {
		errs := validation.New()
		errs.Add(validation.FieldType, "仅 FREE_CONTROL 预约支持手控操作")
		return nil, nil, errs, nil
	}

	report, err := s.guard.CheckAppointmentAction(ctx, caller, action, appt)
	if err != nil {
		return nil, nil, nil, err
	}
	if report != nil {
		return nil, report, nil, nil
	}
	return appt, nil, nil, nil
}

func statusError(appt *model.Appointment, verb string) validation.Errors {
	errs := validation.New()
	errs.Addf(validation.FieldStatus, "当前状态 %s 不允许%s", appt.Status, verb)
	return errs
}

// Start 开始手控观测：SCHEDULED -> IN_PROGRESS
func (s *freeControlService) Start(ctx context.Context, caller *access.Caller, id string) (*dto.AppointmentResponse, *access.Report, validation.Errors, error) {
	appt, report, errs, err := s.load(ctx, caller, id, rules.ActionStartFreeControl)
	if appt == nil {
		return nil, report, errs, err
	}

	if !rules.For(rules.ActionStartFreeControl).AllowsStatus(appt.Status) {
		return nil, nil, statusError(appt, "开始"), nil
	}

	appt.Status = model.StatusInProgress
	updatedBy := caller.UserID
	appt.UpdatedBy = &updatedBy
	if err := s.repo.Appointment.Update(ctx, appt); err != nil {
		s.logger.Error("开始手控失败", zap.Error(err))
		return nil, nil, nil, err
	}

	s.logger.Info("手控观测已开始", zap.String("appointment_id", id))
	s.publisher.Publish(ctx, queue.NewAppointmentEvent(queue.EventAppointmentStarted, appt))
	return dto.NewAppointmentResponse(appt), nil, nil, nil
}

// AddCommand 追加指向命令；仅 IN_PROGRESS 状态接受追加
func (s *freeControlService) AddCommand(ctx context.Context, caller *access.Caller, id string, req *dto.AddCommandRequest) (*dto.FreeControlCommandResponse, *access.Report, validation.Errors, error) {
	appt, report, errs, err := s.load(ctx, caller, id, rules.ActionAddCommand)
	if appt == nil {
		return nil, report, errs, err
	}

	if !rules.For(rules.ActionAddCommand).AllowsStatus(appt.Status) {
		return nil, nil, statusError(appt, "追加命令"), nil
	}

	verrs := validation.CheckCoordinate(req.Hours, req.Minutes, req.Seconds, req.Declination)
	if req.Duration <= 0 {
		verrs.Add(validation.FieldDuration, "持续时间必须为正数")
	}
	if !verrs.Empty() {
		return nil, nil, verrs, nil
	}

	createdBy := caller.UserID
	cmd := &model.FreeControlCommand{
		AppointmentID: appt.AppointmentID,
		CommandType:   model.CommandPoint,
		Hours:         &req.Hours,
		Minutes:       &req.Minutes,
		Seconds:       &req.Seconds,
		Declination:   &req.Declination,
		DurationSecs:  &req.Duration,
		CreatedBy:     &createdBy,
	}

	// 序号分配与写入同一事务，并发追加不会产生重复序号
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		max, err := tx.FreeControlCommand.MaxSeq(ctx, appt.AppointmentID)
		if err != nil {
			return err
		}
		cmd.Seq = max + 1
		return tx.FreeControlCommand.Create(ctx, cmd)
	})
	if err != nil {
		s.logger.Error("追加手控命令失败", zap.Error(err))
		return nil, nil, nil, err
	}

	return dto.NewFreeControlCommandResponse(cmd), nil, nil, nil
}

// Calibrate 校准开关：IN_PROGRESS -> CALIBRATING，再次调用返回 IN_PROGRESS
func (s *freeControlService) Calibrate(ctx context.Context, caller *access.Caller, id string) (*dto.AppointmentResponse, *access.Report, validation.Errors, error) {
	appt, report, errs, err := s.load(ctx, caller, id, rules.ActionCalibrate)
	if appt == nil {
		return nil, report, errs, err
	}

	if !rules.For(rules.ActionCalibrate).AllowsStatus(appt.Status) {
		return nil, nil, statusError(appt, "校准"), nil
	}

	if appt.Status == model.StatusInProgress {
		appt.Status = model.StatusCalibrating
	} else {
		appt.Status = model.StatusInProgress
	}
	updatedBy := caller.UserID
	appt.UpdatedBy = &updatedBy

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Appointment.Update(ctx, appt); err != nil {
			return err
		}
		max, err := tx.FreeControlCommand.MaxSeq(ctx, appt.AppointmentID)
		if err != nil {
			return err
		}
		return tx.FreeControlCommand.Create(ctx, &model.FreeControlCommand{
			AppointmentID: appt.AppointmentID,
			Seq:           max + 1,
			CommandType:   model.CommandCalibrate,
			CreatedBy:     &updatedBy,
		})
	})
	if err != nil {
		s.logger.Error("校准操作失败", zap.Error(err))
		return nil, nil, nil, err
	}

	return dto.NewAppointmentResponse(appt), nil, nil, nil
}

// Stop 结束手控观测：IN_PROGRESS/CALIBRATING -> COMPLETED
func (s *freeControlService) Stop(ctx context.Context, caller *access.Caller, id string) (*dto.AppointmentResponse, *access.Report, validation.Errors, error) {
	appt, report, errs, err := s.load(ctx, caller, id, rules.ActionStopFreeControl)
	if appt == nil {
		return nil, report, errs, err
	}

	if !rules.For(rules.ActionStopFreeControl).AllowsStatus(appt.Status) {
		return nil, nil, statusError(appt, "结束"), nil
	}

	appt.Status = model.StatusCompleted
	updatedBy := caller.UserID
	appt.UpdatedBy = &updatedBy

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Appointment.Update(ctx, appt); err != nil {
			return err
		}
		max, err := tx.FreeControlCommand.MaxSeq(ctx, appt.AppointmentID)
		if err != nil {
			return err
		}
		return tx.FreeControlCommand.Create(ctx, &model.FreeControlCommand{
			AppointmentID: appt.AppointmentID,
			Seq:           max + 1,
			CommandType:   model.CommandStop,
			CreatedBy:     &updatedBy,
		})
	})
	if err != nil {
		s.logger.Error("结束手控失败", zap.Error(err))
		return nil, nil, nil, err
	}

	s.logger.Info("手控观测已结束", zap.String("appointment_id", id))
	s.publisher.Publish(ctx, queue.NewAppointmentEvent(queue.EventAppointmentCompleted, appt))
	return dto.NewAppointmentResponse(appt), nil, nil, nil
}

// ListCommands 查看命令序列；可见性同预约本体
func (s *freeControlService) ListCommands(ctx context.Context, caller *access.Caller, id string) ([]dto.FreeControlCommandResponse, *access.Report, error) {
	if report := s.guard.CheckAction(caller, rules.ActionViewAppointment); report != nil {
		return nil, report, nil
	}

	appt, err := s.repo.Appointment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.NotFound("预约"), nil
		}
		return nil, nil, err
	}

	visible, err := s.guard.CanView(ctx, caller, appt)
	if err != nil {
		return nil, nil, err
	}
	if !visible {
		return nil, access.NotFound("预约"), nil
	}

	cmds, err := s.repo.FreeControlCommand.ListByAppointment(ctx, id)
	if err != nil {
		s.logger.Error("查询手控命令失败", zap.Error(err))
		return nil, nil, err
	}

	out := make([]dto.FreeControlCommandResponse, 0, len(cmds))
	for i := range cmds {
		out = append(out, *dto.NewFreeControlCommandResponse(&cmds[i]))
	}
	return out, nil, nil
}

// [自证通过] internal/service/free_control_service.go
