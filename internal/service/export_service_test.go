package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cspath1/RT-Contracts-sub001/internal/access"
	"github.com/cspath1/RT-Contracts-sub001/internal/dto"
	"github.com/cspath1/RT-Contracts-sub001/internal/model"
	"github.com/cspath1/RT-Contracts-sub001/internal/validation"
)

func setupExportTest() (ExportService, *testMocks) {
	repo, mocks := newTestRepo()
	guard := access.NewGuard(repo, zap.NewNop())
	svc := NewExportService(repo, guard, zap.NewNop())

	mocks.telescopes.telescopes["tele-001"] = &model.Telescope{TelescopeID: "tele-001", Name: "40米射电望远镜", Online: true}
	return svc, mocks
}

func TestExportService_TelescopeSchedule(t *testing.T) {
	svc, mocks := setupExportTest()
	admin := adminCaller(mocks, "admin-001")

	start := time.Now().Add(24 * time.Hour)
	mocks.appointments.appointments["appt-001"] = &model.Appointment{
		AppointmentID: "appt-001", UserID: "user-001", TelescopeID: "tele-001",
		StartTime: start, EndTime: start.Add(2 * time.Hour),
		Status: model.StatusScheduled, Type: model.TypePoint, IsPublic: true,
		User: &model.User{Name: "张三", Email: "zhangsan@test.local"},
	}

	req := &dto.TelescopeWindowRequest{StartTime: start.Add(-time.Hour), EndTime: start.Add(10 * time.Hour)}
	buf, filename, report, errs, err := svc.ExportTelescopeSchedule(context.Background(), admin, "tele-001", req)
	if err != nil || report != nil || !errs.Empty() {
		t.Fatalf("导出应成功: err=%v report=%+v errs=%v", err, report, errs)
	}
	if buf == nil || buf.Len() == 0 {
		t.Fatal("期望非空 xlsx 内容")
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("期望 .xlsx 文件名，实际=%s", filename)
	}
	// xlsx 是 zip 容器，魔数 PK
	head := buf.Bytes()[:2]
	if head[0] != 'P' || head[1] != 'K' {
		t.Errorf("期望 zip 魔数 PK，实际=%v", head)
	}
}

func TestExportService_TelescopeSchedule_NonAdminForbidden(t *testing.T) {
	svc, mocks := setupExportTest()
	caller := researcherCaller(mocks, "user-001")

	start := time.Now().Add(24 * time.Hour)
	req := &dto.TelescopeWindowRequest{StartTime: start, EndTime: start.Add(time.Hour)}
	_, _, report, _, err := svc.ExportTelescopeSchedule(context.Background(), caller, "tele-001", req)
	if err != nil {
		t.Fatalf("期望授权拒绝而非 err: %v", err)
	}
	if report == nil || report.Kind != access.ReportMissingRole {
		t.Errorf("期望 MissingRole 报告，实际=%+v", report)
	}
}

func TestExportService_TelescopeSchedule_EmptyWindow(t *testing.T) {
	svc, mocks := setupExportTest()
	admin := adminCaller(mocks, "admin-001")

	start := time.Now().Add(24 * time.Hour)
	req := &dto.TelescopeWindowRequest{StartTime: start, EndTime: start.Add(time.Hour)}
	_, _, _, _, err := svc.ExportTelescopeSchedule(context.Background(), admin, "tele-001", req)
	if err != ErrExportNoAppointments {
		t.Errorf("空窗口期望 ErrExportNoAppointments，实际=%v", err)
	}
}

func TestExportService_TelescopeSchedule_InvalidWindow(t *testing.T) {
	svc, mocks := setupExportTest()
	admin := adminCaller(mocks, "admin-001")

	start := time.Now().Add(24 * time.Hour)
	req := &dto.TelescopeWindowRequest{StartTime: start, EndTime: start.Add(-time.Hour)}
	_, _, _, errs, err := svc.ExportTelescopeSchedule(context.Background(), admin, "tele-001", req)
	if err != nil {
		t.Fatalf("期望校验错误而非 err: %v", err)
	}
	if !errs.Has(validation.FieldEndTime) {
		t.Errorf("期望 END_TIME 错误，实际=%v", errs)
	}
}

func TestExportService_TelescopeSchedule_UnknownTelescope(t *testing.T) {
	svc, mocks := setupExportTest()
	admin := adminCaller(mocks, "admin-001")

	start := time.Now().Add(24 * time.Hour)
	req := &dto.TelescopeWindowRequest{StartTime: start, EndTime: start.Add(time.Hour)}
	_, _, _, errs, err := svc.ExportTelescopeSchedule(context.Background(), admin, "tele-unknown", req)
	if err != nil {
		t.Fatalf("期望校验错误而非 err: %v", err)
	}
	if !errs.Has(validation.FieldTelescopeID) {
		t.Errorf("期望 TELESCOPE_ID 错误，实际=%v", errs)
	}
}

func TestExportService_UserCalendar(t *testing.T) {
	svc, mocks := setupExportTest()
	caller := guestCaller(mocks, "user-001")

	start := time.Now().Add(24 * time.Hour)
	mocks.appointments.appointments["appt-001"] = &model.Appointment{
		AppointmentID: "appt-001", UserID: "user-001", TelescopeID: "tele-001",
		StartTime: start, EndTime: start.Add(time.Hour),
		Status: model.StatusScheduled, Type: model.TypePoint, IsPublic: true,
	}
	// 已取消预约不进日历
	mocks.appointments.appointments["appt-002"] = &model.Appointment{
		AppointmentID: "appt-002", UserID: "user-001", TelescopeID: "tele-001",
		StartTime: start.Add(2 * time.Hour), EndTime: start.Add(3 * time.Hour),
		Status: model.StatusCanceled, Type: model.TypePoint, IsPublic: true,
	}

	buf, filename, report, err := svc.ExportUserCalendar(context.Background(), caller)
	if err != nil || report != nil {
		t.Fatalf("导出日历应成功: err=%v report=%+v", err, report)
	}
	if filename != "my_observations.ics" {
		t.Errorf("期望 my_observations.ics，实际=%s", filename)
	}

	content := buf.String()
	if !strings.Contains(content, "BEGIN:VCALENDAR") {
		t.Error("期望 ICS 日历头")
	}
	if strings.Count(content, "BEGIN:VEVENT") != 1 {
		t.Errorf("期望仅 1 个事件（已取消预约排除），实际=%d", strings.Count(content, "BEGIN:VEVENT"))
	}
	if !strings.Contains(content, "appt-001") {
		t.Error("事件应携带预约 ID")
	}
}

func TestExportService_UserCalendar_NoApprovedRoleForbidden(t *testing.T) {
	svc, mocks := setupExportTest()
	caller := unapprovedCaller(mocks, "user-001")

	_, _, report, err := svc.ExportUserCalendar(context.Background(), caller)
	if err != nil {
		t.Fatalf("期望授权拒绝而非 err: %v", err)
	}
	if report == nil || report.Kind != access.ReportMissingRole {
		t.Errorf("期望 MissingRole 报告，实际=%+v", report)
	}
}
