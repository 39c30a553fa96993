package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cspath1/RT-Contracts-sub001/internal/access"
	"github.com/cspath1/RT-Contracts-sub001/internal/dto"
	"github.com/cspath1/RT-Contracts-sub001/internal/model"
	"github.com/cspath1/RT-Contracts-sub001/internal/queue"
	"github.com/cspath1/RT-Contracts-sub001/internal/validation"
)

func setupFreeControlTest(status model.AppointmentStatus) (FreeControlService, *testMocks, *access.Caller) {
	repo, mocks := newTestRepo()
	guard := access.NewGuard(repo, zap.NewNop())
	svc := NewFreeControlService(repo, guard, queue.NopPublisher{}, zap.NewNop())

	mocks.telescopes.telescopes["tele-001"] = &model.Telescope{TelescopeID: "tele-001", Name: "40米射电望远镜", Online: true}
	caller := researcherCaller(mocks, "user-001")

	start := time.Now().Add(-time.Hour)
	mocks.appointments.appointments["appt-fc"] = &model.Appointment{
		AppointmentID: "appt-fc", UserID: "user-001", TelescopeID: "tele-001",
		StartTime: start, EndTime: start.Add(3 * time.Hour),
		Status: status, Type: model.TypeFreeControl, IsPublic: true,
	}
	return svc, mocks, caller
}

func pointCommandRequest() *dto.AddCommandRequest {
	return &dto.AddCommandRequest{Hours: 5, Minutes: 34, Seconds: 30, Declination: 22.0, Duration: 60}
}

func TestFreeControlService_Start_FromScheduled(t *testing.T) {
	svc, mocks, caller := setupFreeControlTest(model.StatusScheduled)

	resp, report, errs, err := svc.Start(context.Background(), caller, "appt-fc")
	if err != nil || report != nil || !errs.Empty() {
		t.Fatalf("Start 应成功: err=%v report=%+v errs=%v", err, report, errs)
	}
	if resp.Status != model.StatusInProgress {
		t.Errorf("期望 IN_PROGRESS，实际=%s", resp.Status)
	}
	if mocks.appointments.appointments["appt-fc"].Status != model.StatusInProgress {
		t.Error("状态变更未落库")
	}
}

func TestFreeControlService_Start_FromRequestedRejected(t *testing.T) {
	svc, _, caller := setupFreeControlTest(model.StatusRequested)

	_, _, errs, err := svc.Start(context.Background(), caller, "appt-fc")
	if err != nil {
		t.Fatalf("期望校验错误而非 err: %v", err)
	}
	if !errs.Has(validation.FieldStatus) {
		t.Errorf("未排期预约开始手控期望 STATUS 错误，实际=%v", errs)
	}
}

func TestFreeControlService_Start_NonFreeControlType(t *testing.T) {
	svc, mocks, caller := setupFreeControlTest(model.StatusScheduled)
	mocks.appointments.appointments["appt-fc"].Type = model.TypePoint

	_, _, errs, err := svc.Start(context.Background(), caller, "appt-fc")
	if err != nil {
		t.Fatalf("期望校验错误而非 err: %v", err)
	}
	if !errs.Has(validation.FieldType) {
		t.Errorf("非手控预约期望 TYPE 错误，实际=%v", errs)
	}
}

func TestFreeControlService_Start_OthersAppointmentForbidden(t *testing.T) {
	svc, mocks, _ := setupFreeControlTest(model.StatusScheduled)
	stranger := researcherCaller(mocks, "user-002")

	_, report, _, err := svc.Start(context.Background(), stranger, "appt-fc")
	if err != nil {
		t.Fatalf("期望授权拒绝而非 err: %v", err)
	}
	if report == nil || report.Kind != access.ReportMissingRole {
		t.Errorf("期望 MissingRole 报告，实际=%+v", report)
	}
}

func TestFreeControlService_AddCommand_SeqIncrements(t *testing.T) {
	svc, _, caller := setupFreeControlTest(model.StatusInProgress)

	first, _, errs, err := svc.AddCommand(context.Background(), caller, "appt-fc", pointCommandRequest())
	if err != nil || !errs.Empty() {
		t.Fatalf("首条命令应成功: err=%v errs=%v", err, errs)
	}
	if first.Seq != 1 {
		t.Errorf("期望首条 Seq=1，实际=%d", first.Seq)
	}

	second, _, _, err := svc.AddCommand(context.Background(), caller, "appt-fc", pointCommandRequest())
	if err != nil {
		t.Fatalf("第二条命令应成功: %v", err)
	}
	if second.Seq != 2 {
		t.Errorf("期望第二条 Seq=2，实际=%d", second.Seq)
	}
	if second.CommandType != model.CommandPoint {
		t.Errorf("期望 POINT 命令，实际=%s", second.CommandType)
	}
}

func TestFreeControlService_AddCommand_OnlyInProgress(t *testing.T) {
	svc, _, caller := setupFreeControlTest(model.StatusCalibrating)

	_, _, errs, err := svc.AddCommand(context.Background(), caller, "appt-fc", pointCommandRequest())
	if err != nil {
		t.Fatalf("期望校验错误而非 err: %v", err)
	}
	if !errs.Has(validation.FieldStatus) {
		t.Errorf("校准中追加命令期望 STATUS 错误，实际=%v", errs)
	}
}

func TestFreeControlService_AddCommand_InvalidPayload(t *testing.T) {
	svc, mocks, caller := setupFreeControlTest(model.StatusInProgress)

	req := &dto.AddCommandRequest{Hours: 30, Minutes: 0, Seconds: 0, Declination: 10, Duration: 0}
	_, _, errs, err := svc.AddCommand(context.Background(), caller, "appt-fc", req)
	if err != nil {
		t.Fatalf("期望校验错误而非 err: %v", err)
	}
	if !errs.Has(validation.FieldHours) || !errs.Has(validation.FieldDuration) {
		t.Errorf("期望 HOURS/DURATION 错误，实际=%v", errs)
	}
	if len(mocks.freeControl.commands) != 0 {
		t.Error("非法命令不应落库")
	}
}

func TestFreeControlService_Calibrate_Toggles(t *testing.T) {
	svc, mocks, caller := setupFreeControlTest(model.StatusInProgress)

	resp, _, errs, err := svc.Calibrate(context.Background(), caller, "appt-fc")
	if err != nil || !errs.Empty() {
		t.Fatalf("进入校准应成功: err=%v errs=%v", err, errs)
	}
	if resp.Status != model.StatusCalibrating {
		t.Errorf("期望 CALIBRATING，实际=%s", resp.Status)
	}

	resp, _, _, err = svc.Calibrate(context.Background(), caller, "appt-fc")
	if err != nil {
		t.Fatalf("退出校准应成功: %v", err)
	}
	if resp.Status != model.StatusInProgress {
		t.Errorf("期望回到 IN_PROGRESS，实际=%s", resp.Status)
	}

	// 两次校准各记录一条 CALIBRATE 命令
	cmds, _ := mocks.freeControl.ListByAppointment(context.Background(), "appt-fc")
	if len(cmds) != 2 {
		t.Fatalf("期望 2 条校准命令，实际=%d", len(cmds))
	}
	for i, c := range cmds {
		if c.CommandType != model.CommandCalibrate {
			t.Errorf("第 %d 条命令期望 CALIBRATE，实际=%s", i, c.CommandType)
		}
		if c.Seq != i+1 {
			t.Errorf("第 %d 条命令期望 Seq=%d，实际=%d", i, i+1, c.Seq)
		}
	}
}

func TestFreeControlService_Stop_FromCalibrating(t *testing.T) {
	svc, mocks, caller := setupFreeControlTest(model.StatusCalibrating)

	resp, _, errs, err := svc.Stop(context.Background(), caller, "appt-fc")
	if err != nil || !errs.Empty() {
		t.Fatalf("Stop 应成功: err=%v errs=%v", err, errs)
	}
	if resp.Status != model.StatusCompleted {
		t.Errorf("期望 COMPLETED，实际=%s", resp.Status)
	}

	cmds, _ := mocks.freeControl.ListByAppointment(context.Background(), "appt-fc")
	if len(cmds) != 1 || cmds[0].CommandType != model.CommandStop {
		t.Errorf("期望记录 1 条 STOP 命令，实际=%v", cmds)
	}
}

func TestFreeControlService_Stop_AlreadyCompleted(t *testing.T) {
	svc, _, caller := setupFreeControlTest(model.StatusCompleted)

	_, _, errs, err := svc.Stop(context.Background(), caller, "appt-fc")
	if err != nil {
		t.Fatalf("期望校验错误而非 err: %v", err)
	}
	if !errs.Has(validation.FieldStatus) {
		t.Errorf("重复结束期望 STATUS 错误，实际=%v", errs)
	}
}

func TestFreeControlService_ListCommands_FullSession(t *testing.T) {
	svc, _, caller := setupFreeControlTest(model.StatusScheduled)
	ctx := context.Background()

	if _, _, _, err := svc.Start(ctx, caller, "appt-fc"); err != nil {
		t.Fatalf("Start 应成功: %v", err)
	}
	if _, _, _, err := svc.AddCommand(ctx, caller, "appt-fc", pointCommandRequest()); err != nil {
		t.Fatalf("AddCommand 应成功: %v", err)
	}
	if _, _, _, err := svc.Calibrate(ctx, caller, "appt-fc"); err != nil {
		t.Fatalf("Calibrate 应成功: %v", err)
	}
	if _, _, _, err := svc.Calibrate(ctx, caller, "appt-fc"); err != nil {
		t.Fatalf("Calibrate 应成功: %v", err)
	}
	if _, _, _, err := svc.Stop(ctx, caller, "appt-fc"); err != nil {
		t.Fatalf("Stop 应成功: %v", err)
	}

	cmds, report, err := svc.ListCommands(ctx, caller, "appt-fc")
	if err != nil || report != nil {
		t.Fatalf("ListCommands 应成功: err=%v report=%+v", err, report)
	}
	want := []model.FreeControlCommandType{model.CommandPoint, model.CommandCalibrate, model.CommandCalibrate, model.CommandStop}
	if len(cmds) != len(want) {
		t.Fatalf("期望 %d 条命令，实际=%d", len(want), len(cmds))
	}
	for i, c := range cmds {
		if c.CommandType != want[i] {
			t.Errorf("第 %d 条命令期望 %s，实际=%s", i, want[i], c.CommandType)
		}
		if c.Seq != i+1 {
			t.Errorf("第 %d 条命令期望 Seq=%d，实际=%d", i, i+1, c.Seq)
		}
	}
}

func TestFreeControlService_ListCommands_PrivateMasked(t *testing.T) {
	svc, mocks, _ := setupFreeControlTest(model.StatusInProgress)
	mocks.appointments.appointments["appt-fc"].IsPublic = false
	stranger := guestCaller(mocks, "user-002")

	_, report, err := svc.ListCommands(context.Background(), stranger, "appt-fc")
	if err != nil {
		t.Fatalf("期望授权拒绝而非 err: %v", err)
	}
	if report == nil || report.Kind != access.ReportNotFound {
		t.Errorf("私有预约命令序列对无权用户应按不存在处理，实际=%+v", report)
	}
}

func TestFreeControlService_ListCommands_NoApprovedRoleForbidden(t *testing.T) {
	svc, mocks, _ := setupFreeControlTest(model.StatusInProgress)
	caller := unapprovedCaller(mocks, "user-003")

	_, report, err := svc.ListCommands(context.Background(), caller, "appt-fc")
	if err != nil {
		t.Fatalf("期望授权拒绝而非 err: %v", err)
	}
	if report == nil || report.Kind != access.ReportMissingRole {
		t.Errorf("期望 MissingRole 报告，实际=%+v", report)
	}
}
