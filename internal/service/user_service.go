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
)

var (
	ErrRoleNotFound       = errors.New("角色申请不存在")
	ErrRoleAlreadyHeld    = errors.New("已持有或已申请该角色")
	ErrRoleNotRequestable = errors.New("该角色不可申请")
)

// 默认观测配额（秒）：GUEST 5 小时，其余角色 50 小时
const (
	defaultCapGuestSeconds = 5 * 3600
	defaultCapSeconds      = 50 * 3600
)

// resolveCapSeconds 计算用户的生效配额
// 管理员设置的记录优先（含 NULL 表示不限额）；无记录时按角色取默认值
// 返回 (配额秒数, 是否不限额)
func resolveCapSeconds(stored *model.AllottedTimeCap, roles []model.Role) (int64, bool) {
	if stored != nil {
		if stored.AllottedSeconds == nil {
			return 0, true
		}
		return *stored.AllottedSeconds, false
	}
	for _, r := range roles {
		if r != model.RoleGuest {
			return defaultCapSeconds, false
		}
	}
	return defaultCapGuestSeconds, false
}

// UserService 用户与角色管理业务接口
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, caller *access.Caller, page *dto.PaginationRequest) (*dto.PageResult, *access.Report, error)
	RequestRole(ctx context.Context, caller *access.Caller, req *dto.RequestRoleRequest) (*dto.RoleRequestResponse, error)
	ListPendingRoles(ctx context.Context, caller *access.Caller, page *dto.PaginationRequest) (*dto.PageResult, *access.Report, error)
	ApproveRole(ctx context.Context, caller *access.Caller, userRoleID string, req *dto.ApproveRoleRequest) (*dto.RoleRequestResponse, *access.Report, error)
	GetTimeCap(ctx context.Context, caller *access.Caller, userID string) (*dto.TimeCapResponse, *access.Report, error)
	SetTimeCap(ctx context.Context, caller *access.Caller, userID string, req *dto.SetTimeCapRequest) (*dto.TimeCapResponse, *access.Report, error)
}

type userService struct {
	repo   *repository.Repository
	guard  *access.Guard
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, guard *access.Guard, logger *zap.Logger) UserService {
	return &userService{repo: repo, guard: guard, logger: logger}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	roles, err := s.repo.UserRole.ListApprovedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user, roles), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Company != nil {
		user.Company = *req.Company
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.Error(err))
		return nil, err
	}

	roles, err := s.repo.UserRole.ListApprovedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user, roles), nil
}

func (s *userService) ListUsers(ctx context.Context, caller *access.Caller, page *dto.PaginationRequest) (*dto.PageResult, *access.Report, error) {
	if report := s.guard.CheckAction(caller, rules.ActionListUser); report != nil {
		return nil, report, nil
	}

	users, total, err := s.repo.User.List(ctx, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, nil, err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		var roles []model.Role
		for _, ur := range users[i].Roles {
			if ur.Approved {
				roles = append(roles, ur.Role)
			}
		}
		items = append(items, *dto.NewUserResponse(&users[i], roles))
	}

	return &dto.PageResult{
		Total:    total,
		Page:     page.GetPage(),
		PageSize: page.GetPageSize(),
		Items:    items,
	}, nil, nil
}

// RequestRole 申请更高角色，待管理员审批
// ADMIN 不可自助申请；GUEST 为注册即得角色，不接受申请
func (s *userService) RequestRole(ctx context.Context, caller *access.Caller, req *dto.RequestRoleRequest) (*dto.RoleRequestResponse, error) {
	switch req.Role {
	case model.RoleUser, model.RoleResearcher:
	default:
		return nil, ErrRoleNotRequestable
	}

	if _, err := s.repo.UserRole.GetByUserAndRole(ctx, caller.UserID, req.Role); err == nil {
		return nil, ErrRoleAlreadyHeld
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	ur := &model.UserRole{
		UserID:   caller.UserID,
		Role:     req.Role,
		Approved: false,
	}
	if err := s.repo.UserRole.Create(ctx, ur); err != nil {
		s.logger.Error("创建角色申请失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("角色申请已提交",
		zap.String("user_id", caller.UserID),
		zap.String("role", string(req.Role)))

	return &dto.RoleRequestResponse{
		UserRoleID: ur.UserRoleID,
		UserID:     ur.UserID,
		Role:       ur.Role,
		Approved:   ur.Approved,
		CreatedAt:  ur.CreatedAt,
	}, nil
}

func (s *userService) ListPendingRoles(ctx context.Context, caller *access.Caller, page *dto.PaginationRequest) (*dto.PageResult, *access.Report, error) {
	if !caller.IsAdmin() {
		return nil, access.MissingRole([]model.Role{model.RoleAdmin}), nil
	}

	pending, total, err := s.repo.UserRole.ListPending(ctx, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询待审批角色失败", zap.Error(err))
		return nil, nil, err
	}

	items := make([]dto.RoleRequestResponse, 0, len(pending))
	for i := range pending {
		items = append(items, dto.RoleRequestResponse{
			UserRoleID: pending[i].UserRoleID,
			UserID:     pending[i].UserID,
			Role:       pending[i].Role,
			Approved:   pending[i].Approved,
			CreatedAt:  pending[i].CreatedAt,
		})
	}

	return &dto.PageResult{
		Total:    total,
		Page:     page.GetPage(),
		PageSize: page.GetPageSize(),
		Items:    items,
	}, nil, nil
}

// ApproveRole 审批角色申请：通过则置 approved，驳回则删除申请记录
func (s *userService) ApproveRole(ctx context.Context, caller *access.Caller, userRoleID string, req *dto.ApproveRoleRequest) (*dto.RoleRequestResponse, *access.Report, error) {
	if !caller.IsAdmin() {
		return nil, access.MissingRole([]model.Role{model.RoleAdmin}), nil
	}

	ur, err := s.repo.UserRole.GetByID(ctx, userRoleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRoleNotFound
		}
		return nil, nil, err
	}

	if *req.IsApprove {
		ur.Approved = true
		updatedBy := caller.UserID
		ur.UpdatedBy = &updatedBy
		if err := s.repo.UserRole.Update(ctx, ur); err != nil {
			s.logger.Error("审批角色失败", zap.Error(err))
			return nil, nil, err
		}
	} else {
		if err := s.repo.UserRole.Delete(ctx, userRoleID); err != nil {
			s.logger.Error("驳回角色失败", zap.Error(err))
			return nil, nil, err
		}
	}

	s.logger.Info("角色审批完成",
		zap.String("user_role_id", userRoleID),
		zap.Bool("approved", *req.IsApprove),
		zap.String("admin_id", caller.UserID))

	return &dto.RoleRequestResponse{
		UserRoleID: ur.UserRoleID,
		UserID:     ur.UserID,
		Role:       ur.Role,
		Approved:   ur.Approved,
		CreatedAt:  ur.CreatedAt,
	}, nil, nil
}

// GetTimeCap 查询配额与已占用时长；本人或管理员可查
func (s *userService) GetTimeCap(ctx context.Context, caller *access.Caller, userID string) (*dto.TimeCapResponse, *access.Report, error) {
	if userID != caller.UserID && !caller.IsAdmin() {
		return nil, access.MissingRole([]model.Role{model.RoleAdmin}), nil
	}

	var stored *model.AllottedTimeCap
	cap, err := s.repo.TimeCap.GetByUserID(ctx, userID)
	if err == nil {
		stored = cap
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	roles, err := s.repo.UserRole.ListApprovedByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	used, err := s.repo.Appointment.SumScheduledSeconds(ctx, userID, "")
	if err != nil {
		return nil, nil, err
	}

	resp := &dto.TimeCapResponse{UserID: userID, UsedSeconds: used}
	if seconds, unlimited := resolveCapSeconds(stored, roles); !unlimited {
		resp.AllottedSeconds = &seconds
	}
	return resp, nil, nil
}

// SetTimeCap 管理员设置用户配额；AllottedSeconds 传 null 表示不限额
func (s *userService) SetTimeCap(ctx context.Context, caller *access.Caller, userID string, req *dto.SetTimeCapRequest) (*dto.TimeCapResponse, *access.Report, error) {
	if !caller.IsAdmin() {
		return nil, access.MissingRole([]model.Role{model.RoleAdmin}), nil
	}

	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	updatedBy := caller.UserID
	cap := &model.AllottedTimeCap{
		UserID:          userID,
		AllottedSeconds: req.AllottedSeconds,
	}
	cap.UpdatedBy = &updatedBy
	if err := s.repo.TimeCap.Upsert(ctx, cap); err != nil {
		s.logger.Error("设置配额失败", zap.Error(err))
		return nil, nil, err
	}

	used, err := s.repo.Appointment.SumScheduledSeconds(ctx, userID, "")
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("配额已更新",
		zap.String("user_id", userID),
		zap.String("admin_id", caller.UserID))

	return &dto.TimeCapResponse{
		UserID:          userID,
		AllottedSeconds: req.AllottedSeconds,
		UsedSeconds:     used,
	}, nil, nil
}

// [自证通过] internal/service/user_service.go
