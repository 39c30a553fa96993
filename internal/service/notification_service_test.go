package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/cspath1/RT-Contracts-sub001/internal/dto"
	"github.com/cspath1/RT-Contracts-sub001/internal/model"
)

func setupNotificationTest() (NotificationService, *testMocks) {
	repo, mocks := newTestRepo()
	svc := NewNotificationService(repo, zap.NewNop())

	mocks.notifications.notifications["notif-001"] = &model.Notification{
		NotificationID: "notif-001", UserID: "user-001",
		Type: "APPOINTMENT_SCHEDULED", Title: "预约已排期", Content: "您的预约已通过审批",
	}
	mocks.notifications.notifications["notif-002"] = &model.Notification{
		NotificationID: "notif-002", UserID: "user-001",
		Type: "APPOINTMENT_REMINDER", Title: "观测提醒", Content: "观测将在一小时后开始", IsRead: true,
	}
	mocks.notifications.notifications["notif-003"] = &model.Notification{
		NotificationID: "notif-003", UserID: "user-002",
		Type: "APPOINTMENT_CANCELED", Title: "预约已取消", Content: "您的预约已被取消",
	}
	return svc, mocks
}

func TestNotificationService_List(t *testing.T) {
	svc, _ := setupNotificationTest()

	result, err := svc.List(context.Background(), "user-001", false, &dto.PaginationRequest{})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("期望本人 2 条通知，实际=%d", result.Total)
	}
}

func TestNotificationService_List_UnreadOnly(t *testing.T) {
	svc, _ := setupNotificationTest()

	result, err := svc.List(context.Background(), "user-001", true, &dto.PaginationRequest{})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("期望 1 条未读，实际=%d", result.Total)
	}
}

func TestNotificationService_MarkRead(t *testing.T) {
	svc, mocks := setupNotificationTest()

	if err := svc.MarkRead(context.Background(), "user-001", "notif-001"); err != nil {
		t.Fatalf("MarkRead 应成功: %v", err)
	}
	if !mocks.notifications.notifications["notif-001"].IsRead {
		t.Error("通知应标记为已读")
	}
}

func TestNotificationService_MarkRead_OthersNotification(t *testing.T) {
	svc, mocks := setupNotificationTest()

	// 他人通知按不存在处理，不泄露存在性
	if err := svc.MarkRead(context.Background(), "user-001", "notif-003"); err != ErrNotificationNotFound {
		t.Errorf("期望 ErrNotificationNotFound，实际=%v", err)
	}
	if mocks.notifications.notifications["notif-003"].IsRead {
		t.Error("他人通知不应被标记")
	}
}

func TestNotificationService_MarkRead_NotFound(t *testing.T) {
	svc, _ := setupNotificationTest()

	if err := svc.MarkRead(context.Background(), "user-001", "notif-unknown"); err != ErrNotificationNotFound {
		t.Errorf("期望 ErrNotificationNotFound，实际=%v", err)
	}
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	svc, mocks := setupNotificationTest()

	if err := svc.MarkAllRead(context.Background(), "user-001"); err != nil {
		t.Fatalf("MarkAllRead 应成功: %v", err)
	}
	if !mocks.notifications.notifications["notif-001"].IsRead {
		t.Error("本人通知应全部已读")
	}
	if mocks.notifications.notifications["notif-003"].IsRead {
		t.Error("他人通知不应受影响")
	}
}
