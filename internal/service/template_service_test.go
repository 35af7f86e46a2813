package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/codebylorence/secureattend-2.0-sub001/internal/dto"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/events"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/model"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/repository"
)

func newTemplateTestService() (*testRepos, *repository.Repository, *mockPublisher, TemplateService) {
	repos, agg := newTestRepos()
	pub := &mockPublisher{}
	svc := NewTemplateService(agg, pub, time.UTC, zap.NewNop())
	return repos, agg, pub, svc
}

// seedLeader 造一个部门组长账号（含员工档案关联）
func seedLeader(repos *testRepos, department, employeeID string) *model.User {
	emp := &model.Employee{
		EmployeeID: employeeID,
		Name:       "组长" + employeeID,
		Department: department,
		Status:     model.StatusActive,
	}
	_ = repos.employees.Create(context.Background(), emp)

	empID := employeeID
	leader := &model.User{
		Username:   "leader-" + employeeID,
		Role:       model.RoleTeamLeader,
		EmployeeID: &empID,
		Employee:   emp,
	}
	_ = repos.users.Create(context.Background(), leader)
	return leader
}

func TestTemplateCreateAutoAssignsLeader(t *testing.T) {
	repos, _, pub, svc := newTemplateTestService()
	seedLeader(repos, "Zone A", "003")

	resp, err := svc.Create(context.Background(), &dto.CreateTemplateRequest{
		Department: "Zone A",
		ShiftName:  "早班",
		StartTime:  "08:00",
		EndTime:    "16:00",
		Days:       []string{"Wednesday", "Monday"},
	}, "admin-1")
	if err != nil {
		t.Fatalf("创建模板失败: %v", err)
	}

	if len(resp.AssignedEmployees) != 1 || resp.AssignedEmployees[0].EmployeeID != "003" {
		t.Errorf("期望自动分配组长 003，得到 %+v", resp.AssignedEmployees)
	}
	// days 按周一到周日规范排序
	if len(resp.Days) != 2 || resp.Days[0] != "Monday" || resp.Days[1] != "Wednesday" {
		t.Errorf("期望 days [Monday Wednesday]，得到 %v", resp.Days)
	}
	if resp.PublishStatus != model.PublishStatusDraft {
		t.Errorf("默认发布状态应为 draft，得到 %s", resp.PublishStatus)
	}
	if len(pub.events) != 1 || pub.events[0].Type != events.TemplateCreated {
		t.Errorf("期望 1 个 template:created 事件，得到 %+v", pub.events)
	}
}

func TestTemplateCreateWithoutLeader(t *testing.T) {
	_, _, _, svc := newTemplateTestService()

	// 部门没有组长时创建照常成功，只是没有自动分配
	resp, err := svc.Create(context.Background(), &dto.CreateTemplateRequest{
		Department: "Zone B",
		ShiftName:  "晚班",
		StartTime:  "16:00",
		EndTime:    "23:00",
		Days:       []string{"Friday"},
	}, "admin-1")
	if err != nil {
		t.Fatalf("创建模板失败: %v", err)
	}
	if len(resp.AssignedEmployees) != 0 {
		t.Errorf("无组长时不应有分配记录，得到 %+v", resp.AssignedEmployees)
	}
}

func TestTemplateCreateSpecificDateDerivesDays(t *testing.T) {
	_, _, _, svc := newTemplateTestService()

	// 2026-09-02 是星期三
	resp, err := svc.Create(context.Background(), &dto.CreateTemplateRequest{
		Department:   "Zone A",
		ShiftName:    "盘点班",
		StartTime:    "09:00",
		EndTime:      "17:00",
		SpecificDate: "2026-09-02",
	}, "admin-1")
	if err != nil {
		t.Fatalf("创建模板失败: %v", err)
	}
	if len(resp.Days) != 1 || resp.Days[0] != "Wednesday" {
		t.Errorf("期望从单日派生 days [Wednesday]，得到 %v", resp.Days)
	}
	if resp.SpecificDate != "2026-09-02" {
		t.Errorf("期望 specific_date 2026-09-02，得到 %s", resp.SpecificDate)
	}
}

func TestTemplateCreateValidation(t *testing.T) {
	_, _, _, svc := newTemplateTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, &dto.CreateTemplateRequest{
		Department: "Zone A", ShiftName: "x", StartTime: "25:00", EndTime: "16:00",
		Days: []string{"Monday"},
	}, "admin-1")
	if err != ErrTemplateInvalidTime {
		t.Errorf("非法时间应返回 ErrTemplateInvalidTime，得到 %v", err)
	}

	_, err = svc.Create(ctx, &dto.CreateTemplateRequest{
		Department: "Zone A", ShiftName: "x", StartTime: "08:00", EndTime: "16:00",
	}, "admin-1")
	if err != ErrTemplateDaysRequired {
		t.Errorf("days 与 specific_date 均缺失应返回 ErrTemplateDaysRequired，得到 %v", err)
	}

	_, err = svc.Create(ctx, &dto.CreateTemplateRequest{
		Department: "Zone A", ShiftName: "x", StartTime: "08:00", EndTime: "16:00",
		Days:      []string{"Monday"},
		DayLimits: map[string]int{"Funday": 3},
	}, "admin-1")
	if err != ErrTemplateDayLimitInvalid {
		t.Errorf("非法星期键应返回 ErrTemplateDayLimitInvalid，得到 %v", err)
	}
}

func TestAssignEmployeesDeduplicates(t *testing.T) {
	repos, _, _, svc := newTemplateTestService()
	seedLeader(repos, "Zone A", "003")

	created, err := svc.Create(context.Background(), &dto.CreateTemplateRequest{
		Department: "Zone A",
		ShiftName:  "早班",
		StartTime:  "08:00",
		EndTime:    "16:00",
		Days:       []string{"Monday"},
	}, "admin-1")
	if err != nil {
		t.Fatalf("创建模板失败: %v", err)
	}

	// 请求内重复 + 已分配的组长 003 都应静默跳过
	resp, err := svc.AssignEmployees(context.Background(), created.TemplateID, &dto.AssignEmployeesRequest{
		EmployeeIDs: []string{"001", "001", "003", "002"},
	}, "admin-1")
	if err != nil {
		t.Fatalf("分配员工失败: %v", err)
	}
	if len(resp.AssignedEmployees) != 3 {
		t.Fatalf("期望去重后共 3 条分配记录，得到 %d: %+v", len(resp.AssignedEmployees), resp.AssignedEmployees)
	}

	// 再次分配同一批员工应幂等
	resp, err = svc.AssignEmployees(context.Background(), created.TemplateID, &dto.AssignEmployeesRequest{
		EmployeeIDs: []string{"001", "002"},
	}, "admin-1")
	if err != nil {
		t.Fatalf("重复分配失败: %v", err)
	}
	if len(resp.AssignedEmployees) != 3 {
		t.Errorf("重复分配后仍应为 3 条记录，得到 %d", len(resp.AssignedEmployees))
	}
}

func TestRemoveEmployees(t *testing.T) {
	repos, _, _, svc := newTemplateTestService()
	seedLeader(repos, "Zone A", "003")

	created, _ := svc.Create(context.Background(), &dto.CreateTemplateRequest{
		Department: "Zone A", ShiftName: "早班", StartTime: "08:00", EndTime: "16:00",
		Days: []string{"Monday"},
	}, "admin-1")
	_, _ = svc.AssignEmployees(context.Background(), created.TemplateID, &dto.AssignEmployeesRequest{
		EmployeeIDs: []string{"001", "002"},
	}, "admin-1")

	resp, err := svc.RemoveEmployees(context.Background(), created.TemplateID, &dto.RemoveEmployeesRequest{
		EmployeeIDs: []string{"001", "003"},
	})
	if err != nil {
		t.Fatalf("移除员工失败: %v", err)
	}
	if len(resp.AssignedEmployees) != 1 || resp.AssignedEmployees[0].EmployeeID != "002" {
		t.Errorf("期望仅剩 002，得到 %+v", resp.AssignedEmployees)
	}
}

func TestTemplateDeleteMarksPendingDeletion(t *testing.T) {
	repos, _, pub, svc := newTemplateTestService()

	created, _ := svc.Create(context.Background(), &dto.CreateTemplateRequest{
		Department: "Zone A", ShiftName: "早班", StartTime: "08:00", EndTime: "16:00",
		Days: []string{"Monday"},
	}, "admin-1")

	if err := svc.Delete(context.Background(), created.TemplateID); err != nil {
		t.Fatalf("删除模板失败: %v", err)
	}

	stored := repos.templates.templates[created.TemplateID]
	if stored == nil || !stored.PendingDeletion {
		t.Fatal("删除应只标记 pending_deletion，而不是移除记录")
	}

	found := false
	for _, e := range pub.events {
		if e.Type == events.TemplateDeleted {
			found = true
		}
	}
	if !found {
		t.Error("期望广播 template:deleted 事件")
	}

	if err := svc.Delete(context.Background(), 9999); err != ErrTemplateNotFound {
		t.Errorf("不存在的模板应返回 ErrTemplateNotFound，得到 %v", err)
	}
}

func TestPublishNoChanges(t *testing.T) {
	_, _, pub, svc := newTemplateTestService()

	resp, err := svc.Publish(context.Background(), &dto.PublishRequest{PublishedBy: "admin-1"})
	if err != nil {
		t.Fatalf("空发布失败: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("无变更时 count 应为 0，得到 %d", resp.Count)
	}
	if len(pub.events) != 0 {
		t.Errorf("无变更时不应广播事件，得到 %+v", pub.events)
	}
}

func TestPublishReplacesOverlappingTemplate(t *testing.T) {
	repos, _, pub, svc := newTemplateTestService()
	leader := seedLeader(repos, "Zone A", "003")

	ctx := context.Background()
	now := time.Now().UTC()
	adminID := "admin-1"

	// 已发布的旧模板：周一、周二
	old := &model.ScheduleTemplate{
		Department:    "Zone A",
		ShiftName:     "旧早班",
		StartTime:     "08:00",
		EndTime:       "16:00",
		Days:          model.StringArray{"Monday", "Tuesday"},
		Status:        model.StatusActive,
		PublishStatus: model.PublishStatusPublished,
		PublishedAt:   &now,
		PublishedBy:   &adminID,
	}
	_ = repos.templates.Create(ctx, old)

	// 草稿：周二、周三 → 与旧模板在周二重叠
	draft := &model.ScheduleTemplate{
		Department:    "Zone A",
		ShiftName:     "新早班",
		StartTime:     "09:00",
		EndTime:       "17:00",
		Days:          model.StringArray{"Tuesday", "Wednesday"},
		Status:        model.StatusActive,
		PublishStatus: model.PublishStatusDraft,
	}
	_ = repos.templates.Create(ctx, draft)

	resp, err := svc.Publish(ctx, &dto.PublishRequest{PublishedBy: adminID})
	if err != nil {
		t.Fatalf("发布失败: %v", err)
	}

	if resp.Published != 1 || resp.Count != 1 {
		t.Errorf("期望发布 1 个模板，得到 published=%d count=%d", resp.Published, resp.Count)
	}
	if len(resp.Replacements) != 1 {
		t.Fatalf("期望 1 条替换记录，得到 %+v", resp.Replacements)
	}
	if len(resp.Replacements[0].Days) != 1 || resp.Replacements[0].Days[0] != "Tuesday" {
		t.Errorf("替换交集应为 [Tuesday]，得到 %v", resp.Replacements[0].Days)
	}

	// 旧模板被硬删除，草稿转为 published
	if _, ok := repos.templates.templates[old.TemplateID]; ok {
		t.Error("被替换的旧模板应被硬删除")
	}
	stored := repos.templates.templates[draft.TemplateID]
	if stored.PublishStatus != model.PublishStatusPublished {
		t.Errorf("草稿发布后状态应为 published，得到 %s", stored.PublishStatus)
	}
	if stored.PublishedBy == nil || *stored.PublishedBy != adminID {
		t.Error("发布人未盖章")
	}

	// 组长自动获得覆盖模板星期的滚动周排班
	scheds, _ := repos.schedules.ListActiveByEmployee(ctx, "003")
	if len(scheds) != 1 {
		t.Fatalf("期望组长有 1 条排班，得到 %d", len(scheds))
	}
	if scheds[0].TemplateID != draft.TemplateID {
		t.Errorf("组长排班应挂在新模板上，得到 template_id=%d", scheds[0].TemplateID)
	}
	dates := scheds[0].ScheduleDates.Data()
	if len(dates["Tuesday"])+len(dates["Wednesday"]) == 0 {
		t.Error("组长排班的滚动窗口应至少物化出一个日期")
	}

	// 组长排班与受影响星期有交集 → 收到发布通知
	published := repos.notifies.byType(model.NotifySchedulePublished)
	if len(published) != 1 || published[0].UserID != leader.UserID {
		t.Errorf("期望组长收到 1 条发布通知，得到 %+v", published)
	}

	if len(pub.events) != 1 || pub.events[0].Type != events.SchedulesPublished {
		t.Errorf("期望 1 个 schedules:published 事件，得到 %+v", pub.events)
	}
}

func TestPublishHardDeletesPendingTemplates(t *testing.T) {
	repos, _, _, svc := newTemplateTestService()
	leader := seedLeader(repos, "Zone A", "003")

	ctx := context.Background()

	tpl := &model.ScheduleTemplate{
		Department:    "Zone A",
		ShiftName:     "淘汰班",
		StartTime:     "08:00",
		EndTime:       "16:00",
		Days:          model.StringArray{"Monday"},
		Status:        model.StatusActive,
		PublishStatus: model.PublishStatusPublished,
		PendingDeletion: true,
	}
	_ = repos.templates.Create(ctx, tpl)
	_ = repos.assignments.AddMany(ctx, []model.TemplateAssignment{
		{TemplateID: tpl.TemplateID, EmployeeID: "007", AssignedDate: time.Now()},
	})
	_ = repos.schedules.Create(ctx, &model.EmployeeSchedule{
		EmployeeID: "007", TemplateID: tpl.TemplateID,
		Days: model.StringArray{"Monday"}, Status: model.StatusActive,
	})

	resp, err := svc.Publish(ctx, &dto.PublishRequest{PublishedBy: "admin-1"})
	if err != nil {
		t.Fatalf("发布失败: %v", err)
	}

	if resp.Deleted != 1 || resp.Count != 1 {
		t.Errorf("期望删除 1 个模板，得到 deleted=%d count=%d", resp.Deleted, resp.Count)
	}
	if _, ok := repos.templates.templates[tpl.TemplateID]; ok {
		t.Error("待删除模板应被硬删除")
	}
	rows, _ := repos.assignments.ListByTemplate(ctx, tpl.TemplateID)
	if len(rows) != 0 {
		t.Error("模板分配应随模板一并清除")
	}
	scheds, _ := repos.schedules.ListActiveByEmployee(ctx, "007")
	if len(scheds) != 0 {
		t.Error("模板排班应随模板一并清除")
	}
	if len(resp.Removed) != 1 || len(resp.Removed[0].EmployeeIDs) != 1 || resp.Removed[0].EmployeeIDs[0] != "007" {
		t.Errorf("删除摘要应记录删除前的分配名单，得到 %+v", resp.Removed)
	}

	// 删除类通知不看排班交集，总是发给组长
	deleted := repos.notifies.byType(model.NotifyScheduleDeleted)
	if len(deleted) != 1 || deleted[0].UserID != leader.UserID {
		t.Errorf("期望组长收到 1 条删除通知，得到 %+v", deleted)
	}
}

func TestGetEmployeeSchedulesFilters(t *testing.T) {
	repos, _, _, svc := newTemplateTestService()
	seedLeader(repos, "Zone A", "003")
	_ = repos.employees.Create(context.Background(), &model.Employee{
		EmployeeID: "001", Name: "张三", Department: "Zone A", Status: model.StatusActive,
	})

	created, _ := svc.Create(context.Background(), &dto.CreateTemplateRequest{
		Department: "Zone A", ShiftName: "早班", StartTime: "08:00", EndTime: "16:00",
		Days: []string{"Monday"},
	}, "admin-1")
	_, _ = svc.AssignEmployees(context.Background(), created.TemplateID, &dto.AssignEmployeesRequest{
		EmployeeIDs: []string{"001"},
	}, "admin-1")

	views, err := svc.GetEmployeeSchedules(context.Background(), "001", "")
	if err != nil {
		t.Fatalf("展开排班视图失败: %v", err)
	}
	if len(views) != 1 || views[0].EmployeeID != "001" || views[0].EmployeeName != "张三" {
		t.Errorf("期望 001/张三 的单条视图，得到 %+v", views)
	}

	views, _ = svc.GetEmployeeSchedules(context.Background(), "", "Zone B")
	if len(views) != 0 {
		t.Errorf("部门过滤应为空结果，得到 %+v", views)
	}
}

// [自证通过] internal/service/template_service_test.go
