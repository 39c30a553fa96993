package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cspath1/RT-Contracts-sub001/internal/access"
	"github.com/cspath1/RT-Contracts-sub001/internal/dto"
	"github.com/cspath1/RT-Contracts-sub001/internal/model"
)

func setupUserTest() (UserService, *testMocks) {
	repo, mocks := newTestRepo()
	guard := access.NewGuard(repo, zap.NewNop())
	svc := NewUserService(repo, guard, zap.NewNop())
	return svc, mocks
}

// ── resolveCapSeconds ──

func TestResolveCapSeconds(t *testing.T) {
	oneHour := int64(3600)

	tests := []struct {
		name          string
		stored        *model.AllottedTimeCap
		roles         []model.Role
		wantSeconds   int64
		wantUnlimited bool
	}{
		{"仅GUEST默认5小时", nil, []model.Role{model.RoleGuest}, 5 * 3600, false},
		{"USER默认50小时", nil, []model.Role{model.RoleGuest, model.RoleUser}, 50 * 3600, false},
		{"RESEARCHER默认50小时", nil, []model.Role{model.RoleResearcher}, 50 * 3600, false},
		{"无角色按GUEST处理", nil, nil, 5 * 3600, false},
		{"存储值覆盖角色默认", &model.AllottedTimeCap{AllottedSeconds: &oneHour}, []model.Role{model.RoleResearcher}, 3600, false},
		{"存储NULL表示不限额", &model.AllottedTimeCap{AllottedSeconds: nil}, []model.Role{model.RoleGuest}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seconds, unlimited := resolveCapSeconds(tt.stored, tt.roles)
			if unlimited != tt.wantUnlimited {
				t.Fatalf("期望 unlimited=%v，实际=%v", tt.wantUnlimited, unlimited)
			}
			if !unlimited && seconds != tt.wantSeconds {
				t.Errorf("期望配额 %d 秒，实际=%d", tt.wantSeconds, seconds)
			}
		})
	}
}

// ── 角色申请与审批 ──

func TestUserService_RequestRole_Success(t *testing.T) {
	svc, mocks := setupUserTest()
	caller := guestCaller(mocks, "user-001")

	resp, err := svc.RequestRole(context.Background(), caller, &dto.RequestRoleRequest{Role: model.RoleResearcher})
	if err != nil {
		t.Fatalf("RequestRole 应成功: %v", err)
	}
	if resp.Approved {
		t.Error("新申请不应处于已批准状态")
	}

	roles, _ := mocks.userRoles.ListApprovedByUser(context.Background(), "user-001")
	for _, r := range roles {
		if r == model.RoleResearcher {
			t.Error("未审批的角色不应出现在已批准列表")
		}
	}
}

func TestUserService_RequestRole_AdminNotRequestable(t *testing.T) {
	svc, mocks := setupUserTest()
	caller := guestCaller(mocks, "user-001")

	if _, err := svc.RequestRole(context.Background(), caller, &dto.RequestRoleRequest{Role: model.RoleAdmin}); err != ErrRoleNotRequestable {
		t.Errorf("申请 ADMIN 期望 ErrRoleNotRequestable，实际=%v", err)
	}
	if _, err := svc.RequestRole(context.Background(), caller, &dto.RequestRoleRequest{Role: model.RoleGuest}); err != ErrRoleNotRequestable {
		t.Errorf("申请 GUEST 期望 ErrRoleNotRequestable，实际=%v", err)
	}
}

func TestUserService_RequestRole_Duplicate(t *testing.T) {
	svc, mocks := setupUserTest()
	caller := guestCaller(mocks, "user-001")

	if _, err := svc.RequestRole(context.Background(), caller, &dto.RequestRoleRequest{Role: model.RoleUser}); err != nil {
		t.Fatalf("首次申请应成功: %v", err)
	}
	if _, err := svc.RequestRole(context.Background(), caller, &dto.RequestRoleRequest{Role: model.RoleUser}); err != ErrRoleAlreadyHeld {
		t.Errorf("重复申请期望 ErrRoleAlreadyHeld，实际=%v", err)
	}
}

func TestUserService_ApproveRole_Approve(t *testing.T) {
	svc, mocks := setupUserTest()
	requester := guestCaller(mocks, "user-001")
	admin := adminCaller(mocks, "admin-001")

	req, err := svc.RequestRole(context.Background(), requester, &dto.RequestRoleRequest{Role: model.RoleResearcher})
	if err != nil {
		t.Fatalf("RequestRole 应成功: %v", err)
	}

	approve := true
	resp, report, err := svc.ApproveRole(context.Background(), admin, req.UserRoleID, &dto.ApproveRoleRequest{IsApprove: &approve})
	if err != nil || report != nil {
		t.Fatalf("审批应成功: err=%v report=%+v", err, report)
	}
	if !resp.Approved {
		t.Error("审批通过后应为已批准")
	}

	roles, _ := mocks.userRoles.ListApprovedByUser(context.Background(), "user-001")
	found := false
	for _, r := range roles {
		if r == model.RoleResearcher {
			found = true
		}
	}
	if !found {
		t.Error("审批通过后 RESEARCHER 应出现在已批准列表")
	}
}

func TestUserService_ApproveRole_DenyDeletesRequest(t *testing.T) {
	svc, mocks := setupUserTest()
	requester := guestCaller(mocks, "user-001")
	admin := adminCaller(mocks, "admin-001")

	req, _ := svc.RequestRole(context.Background(), requester, &dto.RequestRoleRequest{Role: model.RoleUser})

	approve := false
	_, report, err := svc.ApproveRole(context.Background(), admin, req.UserRoleID, &dto.ApproveRoleRequest{IsApprove: &approve})
	if err != nil || report != nil {
		t.Fatalf("驳回应成功: err=%v report=%+v", err, report)
	}

	if _, err := mocks.userRoles.GetByID(context.Background(), req.UserRoleID); err == nil {
		t.Error("驳回后申请记录应删除")
	}
}

func TestUserService_ApproveRole_NonAdminForbidden(t *testing.T) {
	svc, mocks := setupUserTest()
	caller := guestCaller(mocks, "user-001")

	approve := true
	_, report, err := svc.ApproveRole(context.Background(), caller, "role-001", &dto.ApproveRoleRequest{IsApprove: &approve})
	if err != nil {
		t.Fatalf("期望授权拒绝而非 err: %v", err)
	}
	if report == nil || report.Kind != access.ReportMissingRole {
		t.Errorf("期望 MissingRole 报告，实际=%+v", report)
	}
}

func TestUserService_ApproveRole_NotFound(t *testing.T) {
	svc, mocks := setupUserTest()
	admin := adminCaller(mocks, "admin-001")

	approve := true
	_, _, err := svc.ApproveRole(context.Background(), admin, "role-unknown", &dto.ApproveRoleRequest{IsApprove: &approve})
	if err != ErrRoleNotFound {
		t.Errorf("期望 ErrRoleNotFound，实际=%v", err)
	}
}

func TestUserService_ListPendingRoles(t *testing.T) {
	svc, mocks := setupUserTest()
	requester := guestCaller(mocks, "user-001")
	admin := adminCaller(mocks, "admin-001")

	if _, err := svc.RequestRole(context.Background(), requester, &dto.RequestRoleRequest{Role: model.RoleUser}); err != nil {
		t.Fatalf("RequestRole 应成功: %v", err)
	}

	result, report, err := svc.ListPendingRoles(context.Background(), admin, &dto.PaginationRequest{})
	if err != nil || report != nil {
		t.Fatalf("ListPendingRoles 应成功: err=%v report=%+v", err, report)
	}
	if result.Total != 1 {
		t.Errorf("期望 1 条待审批申请，实际=%d", result.Total)
	}
}

// ── 配额查询与设置 ──

func TestUserService_GetTimeCap_Self(t *testing.T) {
	svc, mocks := setupUserTest()
	caller := guestCaller(mocks, "user-001")

	start := time.Now().Add(24 * time.Hour)
	mocks.appointments.appointments["appt-001"] = &model.Appointment{
		AppointmentID: "appt-001", UserID: "user-001", TelescopeID: "tele-001",
		StartTime: start, EndTime: start.Add(2 * time.Hour),
		Status: model.StatusScheduled, Type: model.TypePoint,
	}

	resp, report, err := svc.GetTimeCap(context.Background(), caller, "user-001")
	if err != nil || report != nil {
		t.Fatalf("GetTimeCap 应成功: err=%v report=%+v", err, report)
	}
	if resp.AllottedSeconds == nil || *resp.AllottedSeconds != 5*3600 {
		t.Errorf("期望 GUEST 默认配额 18000 秒，实际=%v", resp.AllottedSeconds)
	}
	if resp.UsedSeconds != 2*3600 {
		t.Errorf("期望已占用 7200 秒，实际=%d", resp.UsedSeconds)
	}
}

func TestUserService_GetTimeCap_OthersNeedAdmin(t *testing.T) {
	svc, mocks := setupUserTest()
	caller := guestCaller(mocks, "user-002")

	_, report, err := svc.GetTimeCap(context.Background(), caller, "user-001")
	if err != nil {
		t.Fatalf("期望授权拒绝而非 err: %v", err)
	}
	if report == nil || report.Kind != access.ReportMissingRole {
		t.Errorf("期望 MissingRole 报告，实际=%+v", report)
	}
}

func TestUserService_SetTimeCap_Admin(t *testing.T) {
	svc, mocks := setupUserTest()
	guestCaller(mocks, "user-001")
	admin := adminCaller(mocks, "admin-001")

	tenHours := int64(36000)
	resp, report, err := svc.SetTimeCap(context.Background(), admin, "user-001", &dto.SetTimeCapRequest{AllottedSeconds: &tenHours})
	if err != nil || report != nil {
		t.Fatalf("SetTimeCap 应成功: err=%v report=%+v", err, report)
	}
	if resp.AllottedSeconds == nil || *resp.AllottedSeconds != 36000 {
		t.Errorf("期望配额 36000 秒，实际=%v", resp.AllottedSeconds)
	}

	stored := mocks.timeCaps.caps["user-001"]
	if stored == nil || stored.AllottedSeconds == nil || *stored.AllottedSeconds != 36000 {
		t.Errorf("配额未正确落库: %+v", stored)
	}
}

func TestUserService_SetTimeCap_UnknownUser(t *testing.T) {
	svc, mocks := setupUserTest()
	admin := adminCaller(mocks, "admin-001")

	_, _, err := svc.SetTimeCap(context.Background(), admin, "user-unknown", &dto.SetTimeCapRequest{})
	if err != ErrUserNotFound {
		t.Errorf("期望 ErrUserNotFound，实际=%v", err)
	}
}

func TestUserService_SetTimeCap_NonAdminForbidden(t *testing.T) {
	svc, mocks := setupUserTest()
	caller := guestCaller(mocks, "user-001")

	_, report, err := svc.SetTimeCap(context.Background(), caller, "user-001", &dto.SetTimeCapRequest{})
	if err != nil {
		t.Fatalf("期望授权拒绝而非 err: %v", err)
	}
	if report == nil || report.Kind != access.ReportMissingRole {
		t.Errorf("期望 MissingRole 报告，实际=%+v", report)
	}
}

// ── 个人资料 ──

func TestUserService_UpdateProfile(t *testing.T) {
	svc, mocks := setupUserTest()
	guestCaller(mocks, "user-001")

	newName := "新名字"
	newCompany := "国家天文台"
	resp, err := svc.UpdateProfile(context.Background(), "user-001", &dto.UpdateUserRequest{
		Name:    &newName,
		Company: &newCompany,
	})
	if err != nil {
		t.Fatalf("UpdateProfile 应成功: %v", err)
	}
	if resp.Name != "新名字" || resp.Company != "国家天文台" {
		t.Errorf("期望资料已更新，实际=%+v", resp)
	}

	// 缺省字段保持不变
	if mocks.users.users["user-001"].Email != "user-001@test.local" {
		t.Error("未提交的字段不应被修改")
	}
}

func TestUserService_GetProfile_NotFound(t *testing.T) {
	svc, _ := setupUserTest()

	if _, err := svc.GetProfile(context.Background(), "user-unknown"); err != ErrUserNotFound {
		t.Errorf("期望 ErrUserNotFound，实际=%v", err)
	}
}
