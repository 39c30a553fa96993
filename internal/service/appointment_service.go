package service

import (
	"context"
	"errors"
	"strings"
	"time"

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

var (
	ErrAppointmentNotFound = errors.New("预约不存在")
	ErrUnknownType         = errors.New("未知的预约类型")
)

// errValidationAbort 事务内校验失败的回滚信号，不对外暴露
var errValidationAbort = errors.New("validation abort")

// AppointmentService 预约业务接口
// 返回值约定：*access.Report 非 nil 表示授权拒绝（403/404），
// validation.Errors 非空表示业务校验失败（400），error 仅承载基础设施故障
type AppointmentService interface {
	Request(ctx context.Context, caller *access.Caller, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, *access.Report, validation.Errors, error)
	Create(ctx context.Context, caller *access.Caller, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, *access.Report, validation.Errors, error)
	Get(ctx context.Context, caller *access.Caller, id string) (*dto.AppointmentResponse, *access.Report, error)
	Update(ctx context.Context, caller *access.Caller, id string, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, *access.Report, validation.Errors, error)
	Cancel(ctx context.Context, caller *access.Caller, id string) (*dto.AppointmentResponse, *access.Report, validation.Errors, error)
	Delete(ctx context.Context, caller *access.Caller, id string) (*access.Report, error)
	ApproveDeny(ctx context.Context, caller *access.Caller, id string, req *dto.ApproveDenyRequest) (*dto.AppointmentResponse, *access.Report, validation.Errors, error)
	MakePublic(ctx context.Context, caller *access.Caller, id string) (*dto.AppointmentResponse, *access.Report, validation.Errors, error)
	ListOwn(ctx context.Context, caller *access.Caller, req *dto.ListAppointmentsRequest) (*dto.PageResult, *access.Report, error)
	ListByUser(ctx context.Context, caller *access.Caller, userID string, req *dto.ListAppointmentsRequest) (*dto.PageResult, *access.Report, error)
	ListRequested(ctx context.Context, caller *access.Caller, page *dto.PaginationRequest) (*dto.PageResult, *access.Report, error)
	ListByTelescope(ctx context.Context, caller *access.Caller, telescopeID string, req *dto.TelescopeWindowRequest) ([]dto.AppointmentResponse, *access.Report, validation.Errors, error)
	Search(ctx context.Context, caller *access.Caller, req *dto.SearchAppointmentsRequest) (*dto.PageResult, *access.Report, validation.Errors, error)
}

type appointmentService struct {
	repo      *repository.Repository
	guard     *access.Guard
	publisher queue.Publisher
	logger    *zap.Logger
	now       func() time.Time // 测试可替换
}

// NewAppointmentService 创建 AppointmentService 实例
func NewAppointmentService(repo *repository.Repository, guard *access.Guard, publisher queue.Publisher, logger *zap.Logger) AppointmentService {
	return &appointmentService{
		repo:      repo,
		guard:     guard,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// ════════════════════════════════════════════════════════════
// Request / Create — 创建流
// ════════════════════════════════════════════════════════════

// Request 普通用户提交预约，落库为 REQUESTED，待管理员审批
func (s *appointmentService) Request(ctx context.Context, caller *access.Caller, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, *access.Report, validation.Errors, error) {
	if report := s.guard.CheckAction(caller, rules.ActionRequestAppointment); report != nil {
		return nil, report, nil, nil
	}
	return s.create(ctx, caller, req, model.StatusRequested, queue.EventAppointmentRequested)
}

// Create 管理员直排，落库即为 SCHEDULED
func (s *appointmentService) Create(ctx context.Context, caller *access.Caller, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, *access.Report, validation.Errors, error) {
	if report := s.guard.CheckAction(caller, rules.ActionCreateAppointment); report != nil {
		return nil, report, nil, nil
	}
	return s.create(ctx, caller, req, model.StatusScheduled, queue.EventAppointmentScheduled)
}

func (s *appointmentService) create(ctx context.Context, caller *access.Caller, req *dto.CreateAppointmentRequest, status model.AppointmentStatus, eventType queue.EventType) (*dto.AppointmentResponse, *access.Report, validation.Errors, error) {
	// 附加角色前置：私有预约、SECONDARY 优先级
	if report := s.guard.CheckCreate(caller, req.GetIsPublic(), req.GetPriority()); report != nil {
		return nil, report, nil, nil
	}

	// 1. 存在性检查（短路）
	if _, err := s.repo.Telescope.GetByID(ctx, req.TelescopeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			errs := validation.New()
			errs.Add(validation.FieldTelescopeID, "望远镜不存在")
			return nil, nil, errs, nil
		}
		s.logger.Error("查询望远镜失败", zap.Error(err))
		return nil, nil, nil, err
	}

	// 2. 时间窗口 + 3. 类型负载范围
	errs := validation.CheckTimeWindow(req.StartTime, req.EndTime, s.now(), true)
	cmd, ok := commandFor(req.Type)
	if !ok {
		errs.Add(validation.FieldType, "未知的预约类型")
		return nil, nil, errs, nil
	}
	errs.Merge(cmd.validate(ctx, s.repo, payloadOfCreate(req)))
	if !errs.Empty() {
		return nil, nil, errs, nil
	}

	createdBy := caller.UserID
	appt := &model.Appointment{
		UserID:      caller.UserID,
		TelescopeID: req.TelescopeID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      status,
		Type:        req.Type,
		Priority:    req.GetPriority(),
		IsPublic:    req.GetIsPublic(),
	}
	appt.CreatedBy = &createdBy

	// 4. 配额检查与写入同一事务，关闭先读后写竞态
	quotaErrs := validation.New()
	duration := int64(req.EndTime.Sub(req.StartTime).Seconds())
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if qe, err := s.checkQuota(ctx, tx, caller.UserID, duration, ""); err != nil {
			return err
		} else if !qe.Empty() {
			quotaErrs = qe
			return errValidationAbort
		}
		p := payloadOfCreate(req)
		if err := cmd.before(ctx, tx, appt, p); err != nil {
			return err
		}
		if err := tx.Appointment.Create(ctx, appt); err != nil {
			return err
		}
		return cmd.after(ctx, tx, appt, p)
	})
	if err != nil {
		if errors.Is(err, errValidationAbort) {
			return nil, nil, quotaErrs, nil
		}
		s.logger.Error("创建预约失败", zap.Error(err))
		return nil, nil, nil, err
	}

	s.logger.Info("预约已创建",
		zap.String("appointment_id", appt.AppointmentID),
		zap.String("user_id", caller.UserID),
		zap.String("type", string(req.Type)),
		zap.String("status", string(status)))

	s.publisher.Publish(ctx, queue.NewAppointmentEvent(eventType, appt))
	return dto.NewAppointmentResponse(appt), nil, nil, nil
}

// checkQuota 校验 已占用 + 新增 ≤ 生效配额
func (s *appointmentService) checkQuota(ctx context.Context, tx *repository.Repository, userID string, addSeconds int64, excludeID string) (validation.Errors, error) {
	errs := validation.New()

	var stored *model.AllottedTimeCap
	cap, err := tx.TimeCap.GetByUserID(ctx, userID)
	if err == nil {
		stored = cap
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	roles, err := tx.UserRole.ListApprovedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	capSeconds, unlimited := resolveCapSeconds(stored, roles)
	if unlimited {
		return errs, nil
	}

	used, err := tx.Appointment.SumScheduledSeconds(ctx, userID, excludeID)
	if err != nil {
		return nil, err
	}

	if used+addSeconds > capSeconds {
		errs.Addf(validation.FieldAllottedTime,
			"超出观测配额：已占用 %d 秒，本次 %d 秒，配额 %d 秒", used, addSeconds, capSeconds)
	}
	return errs, nil
}

func payloadOfCreate(req *dto.CreateAppointmentRequest) typePayload {
	return typePayload{
		Coordinate:      req.Coordinate,
		CelestialBodyID: req.CelestialBodyID,
		Orientation:     req.Orientation,
		Coordinates:     req.Coordinates,
	}
}

// ════════════════════════════════════════════════════════════
// Get / Update / Cancel / Delete
// ════════════════════════════════════════════════════════════

func (s *appointmentService) Get(ctx context.Context, caller *access.Caller, id string) (*dto.AppointmentResponse, *access.Report, error) {
	if report := s.guard.CheckAction(caller, rules.ActionViewAppointment); report != nil {
		return nil, report, nil
	}

	appt, err := s.repo.Appointment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.NotFound("预约"), nil
		}
		s.logger.Error("查询预约失败", zap.Error(err))
		return nil, nil, err
	}

	visible, err := s.guard.CanView(ctx, caller, appt)
	if err != nil {
		return nil, nil, err
	}
	if !visible {
		// 私有预约对无权用户按不存在处理
		return nil, access.NotFound("预约"), nil
	}
	return dto.NewAppointmentResponse(appt), nil, nil
}

// Update 更新预约：类型不可变，时间窗与负载按 4.1 规则 #2-#4 重新校验，
// 自身不计入配额占用
func (s *appointmentService) Update(ctx context.Context, caller *access.Caller, id string, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, *access.Report, validation.Errors, error) {
	appt, err := s.repo.Appointment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.NotFound("预约"), nil, nil
		}
		s.logger.Error("查询预约失败", zap.Error(err))
		return nil, nil, nil, err
	}

	report, err := s.guard.CheckAppointmentAction(ctx, caller, rules.ActionUpdateAppointment, appt)
	if err != nil {
		return nil, nil, nil, err
	}
	if report != nil {
		return nil, report, nil, nil
	}

	newPriority := appt.Priority
	if req.Priority != "" {
		newPriority = req.Priority
	}
	if newPriority == model.PrioritySecondary && appt.Priority != model.PrioritySecondary && !caller.IsAdmin() {
		return nil, access.MissingRole([]model.Role{model.RoleAdmin}), nil, nil
	}

	// 状态前置：终态预约不可再更新
	if !rules.For(rules.ActionUpdateAppointment).AllowsStatus(appt.Status) {
		errs := validation.New()
		errs.Addf(validation.FieldStatus, "当前状态 %s 不允许更新", appt.Status)
		return nil, nil, errs, nil
	}

	// 望远镜变更时检查存在性（短路）
	if req.TelescopeID != appt.TelescopeID {
		if _, err := s.repo.Telescope.GetByID(ctx, req.TelescopeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				errs := validation.New()
				errs.Add(validation.FieldTelescopeID, "望远镜不存在")
				return nil, nil, errs, nil
			}
			return nil, nil, nil, err
		}
	}

	errs := validation.CheckUpdatedTimeWindow(req.StartTime, req.EndTime, s.now())

	cmd, ok := commandFor(appt.Type)
	if !ok {
		return nil, nil, nil, ErrUnknownType
	}
	p := typePayload{
		Coordinate:      req.Coordinate,
		CelestialBodyID: req.CelestialBodyID,
		Orientation:     req.Orientation,
		Coordinates:     req.Coordinates,
	}
	// 负载缺省表示保留原子实体，仅对提交的负载做范围校验
	if hasPayload(p) {
		errs.Merge(cmd.validate(ctx, s.repo, p))
	}
	if !errs.Empty() {
		return nil, nil, errs, nil
	}

	updatedBy := caller.UserID
	duration := int64(req.EndTime.Sub(req.StartTime).Seconds())
	quotaErrs := validation.New()
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if qe, err := s.checkQuota(ctx, tx, appt.UserID, duration, appt.AppointmentID); err != nil {
			return err
		} else if !qe.Empty() {
			quotaErrs = qe
			return errValidationAbort
		}
		if hasPayload(p) {
			if err := cmd.replace(ctx, tx, appt, p); err != nil {
				return err
			}
		}
		appt.TelescopeID = req.TelescopeID
		appt.StartTime = req.StartTime
		appt.EndTime = req.EndTime
		appt.Priority = newPriority
		appt.UpdatedBy = &updatedBy
		return tx.Appointment.Update(ctx, appt)
	})
	if err != nil {
		if errors.Is(err, errValidationAbort) {
			return nil, nil, quotaErrs, nil
		}
		s.logger.Error("更新预约失败", zap.Error(err))
		return nil, nil, nil, err
	}

	s.publisher.Publish(ctx, queue.NewAppointmentEvent(queue.EventAppointmentUpdated, appt))
	return dto.NewAppointmentResponse(appt), nil, nil, nil
}

func hasPayload(p typePayload) bool {
	return p.Coordinate != nil || p.CelestialBodyID != nil || p.Orientation != nil || len(p.Coordinates) > 0
}

// Cancel 取消预约；重复取消是 STATUS 校验错误，而非静默成功
func (s *appointmentService) Cancel(ctx context.Context, caller *access.Caller, id string) (*dto.AppointmentResponse, *access.Report, validation.Errors, error) {
	appt, err := s.repo.Appointment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.NotFound("预约"), nil, nil
		}
		return nil, nil, nil, err
	}

	report, err := s.guard.CheckAppointmentAction(ctx, caller, rules.ActionCancelAppointment, appt)
	if err != nil {
		return nil, nil, nil, err
	}
	if report != nil {
		return nil, report, nil, nil
	}

	if !rules.For(rules.ActionCancelAppointment).AllowsStatus(appt.Status) {
		errs := validation.New()
		errs.Addf(validation.FieldStatus, "当前状态 %s 不允许取消", appt.Status)
		return nil, nil, errs, nil
	}

	appt.Status = model.StatusCanceled
	updatedBy := caller.UserID
	appt.UpdatedBy = &updatedBy
	if err := s.repo.Appointment.Update(ctx, appt); err != nil {
		s.logger.Error("取消预约失败", zap.Error(err))
		return nil, nil, nil, err
	}

	s.logger.Info("预约已取消",
		zap.String("appointment_id", id),
		zap.String("by", caller.UserID))
	s.publisher.Publish(ctx, queue.NewAppointmentEvent(queue.EventAppointmentCanceled, appt))
	return dto.NewAppointmentResponse(appt), nil, nil, nil
}

// Delete 管理员硬删除（软删标记），区别于 Cancel 的状态流转
func (s *appointmentService) Delete(ctx context.Context, caller *access.Caller, id string) (*access.Report, error) {
	if report := s.guard.CheckAction(caller, rules.ActionDeleteAppointment); report != nil {
		return report, nil
	}

	if _, err := s.repo.Appointment.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.NotFound("预约"), nil
		}
		return nil, err
	}

	if err := s.repo.Appointment.Delete(ctx, id, caller.UserID); err != nil {
		s.logger.Error("删除预约失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("预约已删除",
		zap.String("appointment_id", id),
		zap.String("admin_id", caller.UserID))
	return nil, nil
}

// ════════════════════════════════════════════════════════════
// ApproveDeny / MakePublic
// ════════════════════════════════════════════════════════════

// ApproveDeny 审批：approve -> SCHEDULED，deny -> CANCELED
// 仅 REQUESTED 状态可审批，其余状态返回 STATUS 校验错误且不做任何变更
func (s *appointmentService) ApproveDeny(ctx context.Context, caller *access.Caller, id string, req *dto.ApproveDenyRequest) (*dto.AppointmentResponse, *access.Report, validation.Errors, error) {
	if report := s.guard.CheckAction(caller, rules.ActionApproveDeny); report != nil {
		return nil, report, nil, nil
	}

	appt, err := s.repo.Appointment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.NotFound("预约"), nil, nil
		}
		return nil, nil, nil, err
	}

	if !rules.For(rules.ActionApproveDeny).AllowsStatus(appt.Status) {
		errs := validation.New()
		errs.Addf(validation.FieldStatus, "仅 REQUESTED 状态可审批，当前 %s", appt.Status)
		return nil, nil, errs, nil
	}

	eventType := queue.EventAppointmentScheduled
	if *req.IsApprove {
		appt.Status = model.StatusScheduled
	} else {
		appt.Status = model.StatusCanceled
		eventType = queue.EventAppointmentDenied
	}
	updatedBy := caller.UserID
	appt.UpdatedBy = &updatedBy

	if err := s.repo.Appointment.Update(ctx, appt); err != nil {
		s.logger.Error("审批预约失败", zap.Error(err))
		return nil, nil, nil, err
	}

	s.logger.Info("预约审批完成",
		zap.String("appointment_id", id),
		zap.Bool("approved", *req.IsApprove),
		zap.String("admin_id", caller.UserID))
	s.publisher.Publish(ctx, queue.NewAppointmentEvent(eventType, appt))
	return dto.NewAppointmentResponse(appt), nil, nil, nil
}

// MakePublic 单向转公开；已公开预约返回 PUBLIC 校验错误
// 转公开后既有观看授权一并清理
func (s *appointmentService) MakePublic(ctx context.Context, caller *access.Caller, id string) (*dto.AppointmentResponse, *access.Report, validation.Errors, error) {
	appt, err := s.repo.Appointment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.NotFound("预约"), nil, nil
		}
		return nil, nil, nil, err
	}

	report, err := s.guard.CheckAppointmentAction(ctx, caller, rules.ActionMakePublic, appt)
	if err != nil {
		return nil, nil, nil, err
	}
	if report != nil {
		return nil, report, nil, nil
	}

	if appt.IsPublic {
		errs := validation.New()
		errs.Add(validation.FieldPublic, "预约已是公开状态")
		return nil, nil, errs, nil
	}

	updatedBy := caller.UserID
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		appt.IsPublic = true
		appt.UpdatedBy = &updatedBy
		if err := tx.Appointment.Update(ctx, appt); err != nil {
			return err
		}
		return tx.Viewer.DeleteByAppointment(ctx, appt.AppointmentID)
	})
	if err != nil {
		s.logger.Error("转公开失败", zap.Error(err))
		return nil, nil, nil, err
	}

	return dto.NewAppointmentResponse(appt), nil, nil, nil
}

// ════════════════════════════════════════════════════════════
// 列表与搜索
// ════════════════════════════════════════════════════════════

func (s *appointmentService) ListOwn(ctx context.Context, caller *access.Caller, req *dto.ListAppointmentsRequest) (*dto.PageResult, *access.Report, error) {
	if report := s.guard.CheckAction(caller, rules.ActionListOwn); report != nil {
		return nil, report, nil
	}

	future := req.Scope != "past"
	items, total, err := s.repo.Appointment.ListByUser(ctx, caller.UserID, future, s.now(), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询预约列表失败", zap.Error(err))
		return nil, nil, err
	}
	return &dto.PageResult{
		Total:    total,
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
		Items:    dto.NewAppointmentResponses(items),
	}, nil, nil
}

// ListByUser 查看他人预约列表；本人等价于 ListOwn，他人需管理员
func (s *appointmentService) ListByUser(ctx context.Context, caller *access.Caller, userID string, req *dto.ListAppointmentsRequest) (*dto.PageResult, *access.Report, error) {
	if userID != caller.UserID {
		if report := s.guard.CheckAction(caller, rules.ActionListUser); report != nil {
			return nil, report, nil
		}
	}

	future := req.Scope != "past"
	items, total, err := s.repo.Appointment.ListByUser(ctx, userID, future, s.now(), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询预约列表失败", zap.Error(err))
		return nil, nil, err
	}
	return &dto.PageResult{
		Total:    total,
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
		Items:    dto.NewAppointmentResponses(items),
	}, nil, nil
}

func (s *appointmentService) ListRequested(ctx context.Context, caller *access.Caller, page *dto.PaginationRequest) (*dto.PageResult, *access.Report, error) {
	if report := s.guard.CheckAction(caller, rules.ActionListRequested); report != nil {
		return nil, report, nil
	}

	items, total, err := s.repo.Appointment.ListByStatus(ctx, model.StatusRequested, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询待审批预约失败", zap.Error(err))
		return nil, nil, err
	}
	return &dto.PageResult{
		Total:    total,
		Page:     page.GetPage(),
		PageSize: page.GetPageSize(),
		Items:    dto.NewAppointmentResponses(items),
	}, nil, nil
}

// ListByTelescope 望远镜排期视图；私有预约仅对属主与管理员露出
func (s *appointmentService) ListByTelescope(ctx context.Context, caller *access.Caller, telescopeID string, req *dto.TelescopeWindowRequest) ([]dto.AppointmentResponse, *access.Report, validation.Errors, error) {
	if report := s.guard.CheckAction(caller, rules.ActionListTelescope); report != nil {
		return nil, report, nil, nil
	}

	errs := validation.New()
	if !req.EndTime.After(req.StartTime) {
		errs.Add(validation.FieldEndTime, "结束时间必须晚于开始时间")
		return nil, nil, errs, nil
	}

	items, err := s.repo.Appointment.ListByTelescopeBetween(ctx, telescopeID, req.StartTime, req.EndTime)
	if err != nil {
		s.logger.Error("查询望远镜排期失败", zap.Error(err))
		return nil, nil, nil, err
	}

	out := make([]dto.AppointmentResponse, 0, len(items))
	for i := range items {
		a := &items[i]
		if !a.IsPublic && a.UserID != caller.UserID && !caller.IsAdmin() {
			continue
		}
		out = append(out, *dto.NewAppointmentResponse(a))
	}
	return out, nil, nil, nil
}

// Search 多条件搜索（条件合取）
// user_full_name 不支持与其他条件组合，组合时返回 SEARCH 错误且不落查询
func (s *appointmentService) Search(ctx context.Context, caller *access.Caller, req *dto.SearchAppointmentsRequest) (*dto.PageResult, *access.Report, validation.Errors, error) {
	if report := s.guard.CheckAction(caller, rules.ActionSearch); report != nil {
		return nil, report, nil, nil
	}

	criteria, errs := parseSearch(req.Search)
	if !errs.Empty() {
		return nil, nil, errs, nil
	}

	items, total, err := s.repo.Appointment.Search(ctx, criteria, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("搜索预约失败", zap.Error(err))
		return nil, nil, nil, err
	}
	return &dto.PageResult{
		Total:    total,
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
		Items:    dto.NewAppointmentResponses(items),
	}, nil, nil, nil
}

// parseSearch 解析 "field=value;field2=value2" 形式的搜索串
func parseSearch(raw string) ([]repository.SearchCriterion, validation.Errors) {
	errs := validation.New()
	parts := strings.Split(raw, ";")
	criteria := make([]repository.SearchCriterion, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 || strings.TrimSpace(kv[1]) == "" {
			errs.Addf(validation.FieldSearch, "无效的搜索条件: %s", part)
			continue
		}
		field := strings.TrimSpace(kv[0])
		switch field {
		case repository.SearchFieldUserFullName,
			repository.SearchFieldUserCompany,
			repository.SearchFieldTelescopeID,
			repository.SearchFieldStatus,
			repository.SearchFieldType:
			criteria = append(criteria, repository.SearchCriterion{Field: field, Value: strings.TrimSpace(kv[1])})
		default:
			errs.Addf(validation.FieldSearch, "不支持的搜索字段: %s", field)
		}
	}

	if len(criteria) == 0 && errs.Empty() {
		errs.Add(validation.FieldSearch, "搜索条件不能为空")
	}

	// user_full_name 不可与其他条件组合
	if len(criteria) > 1 {
		for _, c := range criteria {
			if c.Field == repository.SearchFieldUserFullName {
				errs.Add(validation.FieldSearch, "user_full_name 不支持与其他条件组合")
				break
			}
		}
	}

	if !errs.Empty() {
		return nil, errs
	}
	return criteria, errs
}

// [自证通过] internal/service/appointment_service.go
