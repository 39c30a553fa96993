package access

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cspath1/RT-Contracts-sub001/internal/model"
	"github.com/cspath1/RT-Contracts-sub001/internal/repository"
	"github.com/cspath1/RT-Contracts-sub001/internal/rules"
)

// ── 局部 mock：Guard 只触达 User / UserRole / Viewer 三个仓库 ──

type stubUserRepo struct {
	users map[string]*model.User
}

func (s *stubUserRepo) Create(_ context.Context, u *model.User) error { s.users[u.UserID] = u; return nil }
func (s *stubUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (s *stubUserRepo) GetByEmail(_ context.Context, _ string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubUserRepo) Update(_ context.Context, u *model.User) error { s.users[u.UserID] = u; return nil }
func (s *stubUserRepo) List(_ context.Context, _, _ int) ([]model.User, int64, error) {
	return nil, 0, nil
}

type stubUserRoleRepo struct {
	approved map[string][]model.Role
}

func (s *stubUserRoleRepo) Create(_ context.Context, _ *model.UserRole) error { return nil }
func (s *stubUserRoleRepo) GetByID(_ context.Context, _ string) (*model.UserRole, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubUserRoleRepo) GetByUserAndRole(_ context.Context, _ string, _ model.Role) (*model.UserRole, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubUserRoleRepo) ListApprovedByUser(_ context.Context, userID string) ([]model.Role, error) {
	return s.approved[userID], nil
}
func (s *stubUserRoleRepo) ListPending(_ context.Context, _, _ int) ([]model.UserRole, int64, error) {
	return nil, 0, nil
}
func (s *stubUserRoleRepo) Update(_ context.Context, _ *model.UserRole) error { return nil }
func (s *stubUserRoleRepo) Delete(_ context.Context, _ string) error          { return nil }

type stubViewerRepo struct {
	granted map[string]bool // appointmentID/userID
}

func (s *stubViewerRepo) Create(_ context.Context, _ *model.Viewer) error { return nil }
func (s *stubViewerRepo) Get(_ context.Context, _, _ string) (*model.Viewer, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubViewerRepo) Exists(_ context.Context, appointmentID, userID string) (bool, error) {
	return s.granted[appointmentID+"/"+userID], nil
}
func (s *stubViewerRepo) ListByAppointment(_ context.Context, _ string) ([]model.Viewer, error) {
	return nil, nil
}
func (s *stubViewerRepo) Delete(_ context.Context, _, _ string) error            { return nil }
func (s *stubViewerRepo) DeleteByAppointment(_ context.Context, _ string) error { return nil }

func setupGuard() (*Guard, *stubUserRepo, *stubUserRoleRepo, *stubViewerRepo) {
	users := &stubUserRepo{users: make(map[string]*model.User)}
	roles := &stubUserRoleRepo{approved: make(map[string][]model.Role)}
	viewers := &stubViewerRepo{granted: make(map[string]bool)}

	repo := repository.WithMocks()
	repo.User = users
	repo.UserRole = roles
	repo.Viewer = viewers
	return NewGuard(repo, zap.NewNop()), users, roles, viewers
}

func TestGuard_Resolve(t *testing.T) {
	guard, users, roles, _ := setupGuard()
	users.users["user-001"] = &model.User{UserID: "user-001", Active: true}
	roles.approved["user-001"] = []model.Role{model.RoleGuest, model.RoleResearcher}

	caller, err := guard.Resolve(context.Background(), "user-001")
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if len(caller.Roles) != 2 {
		t.Errorf("期望 2 个已批准角色，实际=%v", caller.Roles)
	}
	if !caller.Has(model.RoleResearcher) {
		t.Error("期望持有 RESEARCHER")
	}
}

func TestGuard_Resolve_DeletedUser(t *testing.T) {
	guard, _, _, _ := setupGuard()

	// 令牌有效但账号已被删除
	if _, err := guard.Resolve(context.Background(), "user-gone"); err == nil {
		t.Error("已删除用户 Resolve 应报错")
	}
}

func TestGuard_CheckAction(t *testing.T) {
	guard, _, _, _ := setupGuard()

	guest := &Caller{UserID: "u1", Roles: []model.Role{model.RoleGuest}}
	if report := guard.CheckAction(guest, rules.ActionRequestAppointment); report != nil {
		t.Errorf("GUEST 提交预约应放行，实际=%+v", report)
	}

	report := guard.CheckAction(guest, rules.ActionApproveDeny)
	if report == nil || report.Kind != ReportMissingRole {
		t.Fatalf("GUEST 审批预约期望 MissingRole，实际=%+v", report)
	}
	// 报告中列出管理员要求
	found := false
	for _, r := range report.RequiredRoles {
		if r == model.RoleAdmin {
			found = true
		}
	}
	if !found {
		t.Errorf("报告应包含 ADMIN 要求，实际=%v", report.RequiredRoles)
	}
}

func TestGuard_CheckAppointmentAction_Owner(t *testing.T) {
	guard, _, _, _ := setupGuard()
	owner := &Caller{UserID: "u1", Roles: []model.Role{model.RoleGuest}}
	appt := &model.Appointment{AppointmentID: "a1", UserID: "u1", IsPublic: true}

	report, err := guard.CheckAppointmentAction(context.Background(), owner, rules.ActionCancelAppointment, appt)
	if err != nil || report != nil {
		t.Errorf("属主取消自己的预约应放行: err=%v report=%+v", err, report)
	}
}

func TestGuard_CheckAppointmentAction_StrangerOnPublic(t *testing.T) {
	guard, _, _, _ := setupGuard()
	stranger := &Caller{UserID: "u2", Roles: []model.Role{model.RoleResearcher}}
	appt := &model.Appointment{AppointmentID: "a1", UserID: "u1", IsPublic: true}

	// 公开预约可见，但操作他人预约需要管理员
	report, err := guard.CheckAppointmentAction(context.Background(), stranger, rules.ActionCancelAppointment, appt)
	if err != nil {
		t.Fatalf("不应报错: %v", err)
	}
	if report == nil || report.Kind != ReportMissingRole {
		t.Errorf("期望 MissingRole，实际=%+v", report)
	}
}

func TestGuard_CheckAppointmentAction_StrangerOnPrivate(t *testing.T) {
	guard, _, _, _ := setupGuard()
	stranger := &Caller{UserID: "u2", Roles: []model.Role{model.RoleResearcher}}
	appt := &model.Appointment{AppointmentID: "a1", UserID: "u1", IsPublic: false}

	// 不可见的私有预约按不存在报告，不泄露存在性
	report, err := guard.CheckAppointmentAction(context.Background(), stranger, rules.ActionCancelAppointment, appt)
	if err != nil {
		t.Fatalf("不应报错: %v", err)
	}
	if report == nil || report.Kind != ReportNotFound {
		t.Errorf("期望 NotFound，实际=%+v", report)
	}
}

func TestGuard_CanView(t *testing.T) {
	guard, _, _, viewers := setupGuard()
	viewers.granted["a1/u3"] = true

	private := &model.Appointment{AppointmentID: "a1", UserID: "u1", IsPublic: false}

	tests := []struct {
		name   string
		caller *Caller
		want   bool
	}{
		{"属主可见", &Caller{UserID: "u1", Roles: []model.Role{model.RoleGuest}}, true},
		{"管理员可见", &Caller{UserID: "u9", Roles: []model.Role{model.RoleAdmin}}, true},
		{"被授权观看者可见", &Caller{UserID: "u3", Roles: []model.Role{model.RoleGuest}}, true},
		{"无关用户不可见", &Caller{UserID: "u2", Roles: []model.Role{model.RoleResearcher}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := guard.CanView(context.Background(), tt.caller, private)
			if err != nil {
				t.Fatalf("CanView 不应报错: %v", err)
			}
			if got != tt.want {
				t.Errorf("期望 %v，实际=%v", tt.want, got)
			}
		})
	}
}

func TestGuard_CheckCreate(t *testing.T) {
	guard, _, _, _ := setupGuard()

	guest := &Caller{UserID: "u1", Roles: []model.Role{model.RoleGuest}}
	researcher := &Caller{UserID: "u2", Roles: []model.Role{model.RoleResearcher}}
	admin := &Caller{UserID: "u3", Roles: []model.Role{model.RoleAdmin}}

	if report := guard.CheckCreate(guest, true, model.PriorityPrimary); report != nil {
		t.Errorf("GUEST 创建公开 PRIMARY 预约应放行，实际=%+v", report)
	}
	if report := guard.CheckCreate(guest, false, model.PriorityPrimary); report == nil {
		t.Error("GUEST 创建私有预约应拒绝")
	}
	if report := guard.CheckCreate(researcher, false, model.PriorityPrimary); report != nil {
		t.Errorf("RESEARCHER 创建私有预约应放行，实际=%+v", report)
	}
	if report := guard.CheckCreate(researcher, true, model.PrioritySecondary); report == nil {
		t.Error("非管理员使用 SECONDARY 优先级应拒绝")
	}
	if report := guard.CheckCreate(admin, false, model.PrioritySecondary); report != nil {
		t.Errorf("管理员不受附加前置约束，实际=%+v", report)
	}
}
