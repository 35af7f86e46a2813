package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/codebylorence/secureattend-2.0-sub001/internal/dto"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/events"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/model"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/repository"
)

// ── 班次模板模块业务错误 ──

var (
	ErrTemplateNotFound        = errors.New("班次模板不存在")
	ErrTemplateDaysRequired    = errors.New("days 与 specific_date 必须至少提供一个")
	ErrTemplateInvalidTime     = errors.New("时间格式无效，应为 HH:MM")
	ErrTemplateDayLimitInvalid = errors.New("day_limits 的键必须是合法星期名")
)

// TemplateService 班次模板业务接口
type TemplateService interface {
	// 创建模板（草稿或直接生效），创建后自动分配部门组长
	Create(ctx context.Context, req *dto.CreateTemplateRequest, callerID string) (*dto.TemplateResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.TemplateResponse, error)
	List(ctx context.Context, req *dto.TemplateListRequest) ([]dto.TemplateResponse, error)
	// 更新模板；已发布模板的变更会通知部门组长
	Update(ctx context.Context, id uint, req *dto.UpdateTemplateRequest, callerID string) (*dto.TemplateResponse, error)
	// 删除 = 标记待删除，发布确认时才硬删除
	Delete(ctx context.Context, id uint) error
	// 批量分配员工（已分配的静默跳过）
	AssignEmployees(ctx context.Context, id uint, req *dto.AssignEmployeesRequest, assignedBy string) (*dto.TemplateResponse, error)
	RemoveEmployees(ctx context.Context, id uint, req *dto.RemoveEmployeesRequest) (*dto.TemplateResponse, error)
	// 将 Active 模板的分配记录展开为单员工排班视图（内存中反规范化）
	GetEmployeeSchedules(ctx context.Context, employeeID, department string) ([]dto.TemplateScheduleView, error)
	// 发布流程：待删除处理 → 替换检测 → 批量发布 → 组长排班 → 通知 → 广播
	Publish(ctx context.Context, req *dto.PublishRequest) (*dto.PublishResponse, error)
}

type templateService struct {
	repo   *repository.Repository
	events events.Publisher
	loc    *time.Location
	logger *zap.Logger
}

// NewTemplateService 创建 TemplateService 实例
func NewTemplateService(repo *repository.Repository, pub events.Publisher, loc *time.Location, logger *zap.Logger) TemplateService {
	return &templateService{repo: repo, events: pub, loc: loc, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *templateService) Create(ctx context.Context, req *dto.CreateTemplateRequest, callerID string) (*dto.TemplateResponse, error) {
	if err := validateShiftTime(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if len(req.Days) == 0 && req.SpecificDate == "" {
		return nil, ErrTemplateDaysRequired
	}
	for day := range req.DayLimits {
		if !IsWeekdayName(day) {
			return nil, ErrTemplateDayLimitInvalid
		}
	}

	days := append([]string(nil), req.Days...)
	var specificDate *time.Time
	if req.SpecificDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.SpecificDate, s.loc)
		if err != nil {
			return nil, fmt.Errorf("specific_date 解析失败: %w", err)
		}
		specificDate = &parsed
		// 仅给定单日时派生 days 为该日星期名（兼容旧数据形状）
		if len(days) == 0 {
			days = []string{parsed.Weekday().String()}
		}
	}

	publishStatus := req.PublishStatus
	if publishStatus == "" {
		publishStatus = model.PublishStatusDraft
	}

	tpl := &model.ScheduleTemplate{
		Department:    req.Department,
		ShiftName:     req.ShiftName,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Days:          SortWeekdays(days),
		SpecificDate:  specificDate,
		MemberLimit:   req.MemberLimit,
		DayLimits:     datatypes.NewJSONType(req.DayLimits),
		Status:        model.StatusActive,
		PublishStatus: publishStatus,
	}
	tpl.CreatedBy = &callerID
	tpl.UpdatedBy = &callerID

	if err := s.repo.Template.Create(ctx, tpl); err != nil {
		s.logger.Error("创建班次模板失败", zap.Error(err))
		return nil, err
	}

	// 组长自动分配：找不到组长只记日志，不影响创建
	s.autoAssignTeamLeader(ctx, s.repo, tpl, callerID, nil)

	created, err := s.repo.Template.GetByID(ctx, tpl.TemplateID)
	if err != nil {
		s.logger.Error("回查班次模板失败", zap.Error(err))
		return nil, err
	}

	resp := toTemplateResponse(created)
	s.events.Publish(events.Event{Type: events.TemplateCreated, Payload: resp})
	return resp, nil
}

// autoAssignTeamLeader 查找部门组长并追加分配（幂等）。
// skip 中的工号视为即将被分配，不再重复追加。
func (s *templateService) autoAssignTeamLeader(ctx context.Context, repo *repository.Repository, tpl *model.ScheduleTemplate, assignedBy string, skip map[string]bool) {
	leader, err := repo.User.GetTeamLeaderByDepartment(ctx, tpl.Department)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Info("部门暂无组长，跳过自动分配",
				zap.String("department", tpl.Department),
				zap.Uint("template_id", tpl.TemplateID),
			)
		} else {
			s.logger.Warn("查询部门组长失败", zap.String("department", tpl.Department), zap.Error(err))
		}
		return
	}
	if leader.EmployeeID == nil || *leader.EmployeeID == "" {
		return
	}
	leaderID := *leader.EmployeeID
	if skip[leaderID] {
		return
	}
	for _, a := range tpl.Assignments {
		if a.EmployeeID == leaderID {
			return
		}
	}

	err = repo.TemplateAssignment.AddMany(ctx, []model.TemplateAssignment{{
		TemplateID:   tpl.TemplateID,
		EmployeeID:   leaderID,
		AssignedDate: TodayIn(s.loc),
		AssignedBy:   assignedBy,
	}})
	if err != nil {
		s.logger.Warn("组长自动分配失败",
			zap.Uint("template_id", tpl.TemplateID),
			zap.String("employee_id", leaderID),
			zap.Error(err),
		)
	}
}

// ────────────────────── GetByID / List ──────────────────────

func (s *templateService) GetByID(ctx context.Context, id uint) (*dto.TemplateResponse, error) {
	tpl, err := s.repo.Template.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("查询班次模板失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return toTemplateResponse(tpl), nil
}

func (s *templateService) List(ctx context.Context, req *dto.TemplateListRequest) ([]dto.TemplateResponse, error) {
	tpls, err := s.repo.Template.List(ctx, req.Department, req.PublishStatus)
	if err != nil {
		s.logger.Error("列出班次模板失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.TemplateResponse, 0, len(tpls))
	for i := range tpls {
		result = append(result, *toTemplateResponse(&tpls[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *templateService) Update(ctx context.Context, id uint, req *dto.UpdateTemplateRequest, callerID string) (*dto.TemplateResponse, error) {
	tpl, err := s.repo.Template.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("查询班次模板失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	// 变更摘要（已发布模板用于通知组长）
	var changes []string

	if req.ShiftName != nil && *req.ShiftName != tpl.ShiftName {
		changes = append(changes, fmt.Sprintf("班次名称: %s → %s", tpl.ShiftName, *req.ShiftName))
		tpl.ShiftName = *req.ShiftName
	}
	if req.StartTime != nil || req.EndTime != nil {
		newStart, newEnd := tpl.StartTime, tpl.EndTime
		if req.StartTime != nil {
			newStart = *req.StartTime
		}
		if req.EndTime != nil {
			newEnd = *req.EndTime
		}
		if err := validateShiftTime(newStart, newEnd); err != nil {
			return nil, err
		}
		if newStart != tpl.StartTime || newEnd != tpl.EndTime {
			changes = append(changes, fmt.Sprintf("时间: %s-%s → %s-%s", tpl.StartTime, tpl.EndTime, newStart, newEnd))
			tpl.StartTime, tpl.EndTime = newStart, newEnd
		}
	}
	if len(req.Days) > 0 {
		changes = append(changes, fmt.Sprintf("适用星期: %v → %v", []string(tpl.Days), req.Days))
		tpl.Days = SortWeekdays(req.Days)
	}
	if req.MemberLimit != nil {
		changes = append(changes, "人数上限调整")
		tpl.MemberLimit = req.MemberLimit
	}
	if req.DayLimits != nil {
		for day := range req.DayLimits {
			if !IsWeekdayName(day) {
				return nil, ErrTemplateDayLimitInvalid
			}
		}
		changes = append(changes, "按日人数上限调整")
		tpl.DayLimits = datatypes.NewJSONType(req.DayLimits)
	}
	if req.Status != nil && *req.Status != tpl.Status {
		changes = append(changes, fmt.Sprintf("状态: %s → %s", tpl.Status, *req.Status))
		tpl.Status = *req.Status
	}

	tpl.UpdatedBy = &callerID
	if err := s.repo.Template.Update(ctx, tpl); err != nil {
		s.logger.Error("更新班次模板失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	// 已发布模板的变更通知部门组长（失败不影响更新结果）
	if tpl.PublishStatus == model.PublishStatusPublished && len(changes) > 0 {
		s.notifyLeaderOfChange(ctx, tpl, changes, callerID)
	}

	resp := toTemplateResponse(tpl)
	s.events.Publish(events.Event{Type: events.TemplateUpdated, Payload: resp})
	return resp, nil
}

func (s *templateService) notifyLeaderOfChange(ctx context.Context, tpl *model.ScheduleTemplate, changes []string, callerID string) {
	leader, err := s.repo.User.GetTeamLeaderByDepartment(ctx, tpl.Department)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("查询部门组长失败", zap.String("department", tpl.Department), zap.Error(err))
		}
		return
	}

	relatedID := fmt.Sprintf("%d", tpl.TemplateID)
	message := fmt.Sprintf("班次「%s」已变更：", tpl.ShiftName)
	for i, c := range changes {
		if i > 0 {
			message += "；"
		}
		message += c
	}

	err = s.repo.Notification.BatchCreate(ctx, []model.Notification{{
		UserID:     leader.UserID,
		EmployeeID: leader.EmployeeID,
		Type:       model.NotifyScheduleUpdated,
		Title:      "班次模板变更",
		Message:    message,
		RelatedID:  &relatedID,
		CreatedBy:  &callerID,
	}})
	if err != nil {
		s.logger.Warn("发送模板变更通知失败", zap.Uint("template_id", tpl.TemplateID), zap.Error(err))
	}
}

// ────────────────────── Delete ──────────────────────

func (s *templateService) Delete(ctx context.Context, id uint) error {
	tpl, err := s.repo.Template.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTemplateNotFound
		}
		s.logger.Error("查询班次模板失败", zap.Uint("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Template.MarkPendingDeletion(ctx, id); err != nil {
		s.logger.Error("标记待删除失败", zap.Uint("id", id), zap.Error(err))
		return err
	}

	s.events.Publish(events.Event{Type: events.TemplateDeleted, Payload: map[string]interface{}{
		"template_id": tpl.TemplateID,
		"department":  tpl.Department,
		"shift_name":  tpl.ShiftName,
	}})
	return nil
}

// ────────────────────── AssignEmployees / RemoveEmployees ──────────────────────

func (s *templateService) AssignEmployees(ctx context.Context, id uint, req *dto.AssignEmployeesRequest, assignedBy string) (*dto.TemplateResponse, error) {
	tpl, err := s.repo.Template.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("查询班次模板失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	existing := make(map[string]bool, len(tpl.Assignments))
	for _, a := range tpl.Assignments {
		existing[a.EmployeeID] = true
	}

	// 去重：请求内重复与已分配的工号都静默跳过
	incoming := make(map[string]bool, len(req.EmployeeIDs))
	today := TodayIn(s.loc)
	rows := make([]model.TemplateAssignment, 0, len(req.EmployeeIDs))
	for _, empID := range req.EmployeeIDs {
		if empID == "" || existing[empID] || incoming[empID] {
			continue
		}
		incoming[empID] = true
		rows = append(rows, model.TemplateAssignment{
			TemplateID:   id,
			EmployeeID:   empID,
			AssignedDate: today,
			AssignedBy:   assignedBy,
		})
	}

	if len(rows) > 0 {
		if err := s.repo.TemplateAssignment.AddMany(ctx, rows); err != nil {
			s.logger.Error("分配员工失败", zap.Uint("template_id", id), zap.Error(err))
			return nil, err
		}
	}

	// 组长自动分配检查与创建时一致（幂等）
	s.autoAssignTeamLeader(ctx, s.repo, tpl, assignedBy, incoming)

	updated, err := s.repo.Template.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("回查班次模板失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return toTemplateResponse(updated), nil
}

func (s *templateService) RemoveEmployees(ctx context.Context, id uint, req *dto.RemoveEmployeesRequest) (*dto.TemplateResponse, error) {
	if _, err := s.repo.Template.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("查询班次模板失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	if err := s.repo.TemplateAssignment.DeleteByTemplateAndEmployees(ctx, id, req.EmployeeIDs); err != nil {
		s.logger.Error("移除员工失败", zap.Uint("template_id", id), zap.Error(err))
		return nil, err
	}

	updated, err := s.repo.Template.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTemplateResponse(updated), nil
}

// ────────────────────── GetEmployeeSchedules ──────────────────────

func (s *templateService) GetEmployeeSchedules(ctx context.Context, employeeID, department string) ([]dto.TemplateScheduleView, error) {
	tpls, err := s.repo.Template.ListActive(ctx)
	if err != nil {
		s.logger.Error("查询 Active 模板失败", zap.Error(err))
		return nil, err
	}

	// 收集工号以便批量补充姓名
	idSet := make(map[string]bool)
	for i := range tpls {
		for _, a := range tpls[i].Assignments {
			idSet[a.EmployeeID] = true
		}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	nameMap := make(map[string]string, len(ids))
	emps, err := s.repo.Employee.ListByEmployeeIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("批量查询员工姓名失败", zap.Error(err))
	} else {
		for _, e := range emps {
			nameMap[e.EmployeeID] = e.Name
		}
	}

	views := make([]dto.TemplateScheduleView, 0)
	for i := range tpls {
		tpl := &tpls[i]
		if department != "" && tpl.Department != department {
			continue
		}
		for _, a := range tpl.Assignments {
			if employeeID != "" && a.EmployeeID != employeeID {
				continue
			}
			views = append(views, dto.TemplateScheduleView{
				TemplateID:   tpl.TemplateID,
				EmployeeID:   a.EmployeeID,
				EmployeeName: nameMap[a.EmployeeID],
				Department:   tpl.Department,
				ShiftName:    tpl.ShiftName,
				StartTime:    tpl.StartTime,
				EndTime:      tpl.EndTime,
				Days:         tpl.Days,
				AssignedDate: a.AssignedDate.Format("2006-01-02"),
				AssignedBy:   a.AssignedBy,
			})
		}
	}
	return views, nil
}

// ════════════════════════════════════════════════════════════
// Publish — 发布流程
// ════════════════════════════════════════════════════════════
//
// 事务内顺序执行：
//   1. 待删除模板：捕获分配名单 → 删除分配与排班 → 硬删除模板
//   2. 替换检测：草稿与同部门已发布模板有星期交集 → 删除旧模板
//   3. 批量发布：对本次收集的模板 id 集合直接操作（不依赖时间窗口）
//   4. 组长排班：每个新发布模板为部门组长补一条滚动周排班
// 事务提交后：
//   5. 通知编排（失败只记日志，不回滚发布）
//   6. 广播 schedules:published；无任何变更时返回零计数且不广播

func (s *templateService) Publish(ctx context.Context, req *dto.PublishRequest) (*dto.PublishResponse, error) {
	var (
		publishedTpls []model.ScheduleTemplate
		removed       []dto.DeletedTemplateSummary
		replacements  []dto.TemplateReplacement
		deletedDepts  = make(map[string]bool)
		affectedDays  = make(map[string]map[string]bool) // 部门 → 受影响星期集合
	)
	now := time.Now().In(s.loc)

	markAffected := func(department string, days []string) {
		set := affectedDays[department]
		if set == nil {
			set = make(map[string]bool)
			affectedDays[department] = set
		}
		for _, d := range days {
			set[d] = true
		}
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		// ── 1. 待删除模板 ──
		pending, err := tx.Template.ListPendingDeletion(ctx)
		if err != nil {
			return fmt.Errorf("查询待删除模板失败: %w", err)
		}
		for i := range pending {
			tpl := &pending[i]
			ids := assignmentEmployeeIDs(tpl.Assignments)
			removed = append(removed, dto.DeletedTemplateSummary{
				TemplateID:  tpl.TemplateID,
				Department:  tpl.Department,
				ShiftName:   tpl.ShiftName,
				Days:        tpl.Days,
				EmployeeIDs: ids,
			})
			deletedDepts[tpl.Department] = true

			if err := tx.TemplateAssignment.DeleteByTemplate(ctx, tpl.TemplateID); err != nil {
				return fmt.Errorf("删除模板分配失败: %w", err)
			}
			if err := tx.EmployeeSchedule.DeleteByTemplate(ctx, tpl.TemplateID); err != nil {
				return fmt.Errorf("删除模板排班失败: %w", err)
			}
			if err := tx.Template.HardDelete(ctx, tpl.TemplateID); err != nil {
				return fmt.Errorf("硬删除模板失败: %w", err)
			}
		}

		// ── 2. 替换检测 ──
		drafts, err := tx.Template.ListByPublishStatus(ctx, model.PublishStatusDraft)
		if err != nil {
			return fmt.Errorf("查询草稿模板失败: %w", err)
		}
		published, err := tx.Template.ListByPublishStatus(ctx, model.PublishStatusPublished)
		if err != nil {
			return fmt.Errorf("查询已发布模板失败: %w", err)
		}

		replaced := make(map[uint]bool)
		for i := range drafts {
			draft := &drafts[i]
			for j := range published {
				old := &published[j]
				if replaced[old.TemplateID] || old.Department != draft.Department {
					continue
				}
				overlap := intersectDays(draft.Days, old.Days)
				if len(overlap) == 0 {
					continue
				}

				replacements = append(replacements, dto.TemplateReplacement{
					Department:   old.Department,
					OldShiftName: old.ShiftName,
					OldTime:      old.StartTime + "-" + old.EndTime,
					NewShiftName: draft.ShiftName,
					NewTime:      draft.StartTime + "-" + draft.EndTime,
					Days:         overlap,
				})
				markAffected(old.Department, overlap)
				replaced[old.TemplateID] = true

				if err := tx.TemplateAssignment.DeleteByTemplate(ctx, old.TemplateID); err != nil {
					return fmt.Errorf("删除被替换模板分配失败: %w", err)
				}
				if err := tx.EmployeeSchedule.DeleteByTemplate(ctx, old.TemplateID); err != nil {
					return fmt.Errorf("删除被替换模板排班失败: %w", err)
				}
				if err := tx.Template.HardDelete(ctx, old.TemplateID); err != nil {
					return fmt.Errorf("硬删除被替换模板失败: %w", err)
				}
			}
		}

		// ── 3. 批量发布（显式 id 集合）──
		publishIDs := make([]uint, 0, len(drafts))
		for i := range drafts {
			publishIDs = append(publishIDs, drafts[i].TemplateID)
		}
		if err := tx.Template.BulkPublish(ctx, publishIDs, req.PublishedBy, now); err != nil {
			return fmt.Errorf("批量发布失败: %w", err)
		}
		for i := range drafts {
			drafts[i].PublishStatus = model.PublishStatusPublished
			drafts[i].PublishedAt = &now
			drafts[i].PublishedBy = &req.PublishedBy
			markAffected(drafts[i].Department, drafts[i].Days)
		}
		publishedTpls = drafts

		// ── 4. 组长排班 ──
		for i := range publishedTpls {
			if err := s.ensureLeaderSchedule(ctx, tx, &publishedTpls[i], req.PublishedBy); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		s.logger.Error("发布流程失败", zap.Error(err))
		return nil, err
	}

	// 无任何变更：零计数且不广播
	if len(publishedTpls) == 0 && len(removed) == 0 {
		return &dto.PublishResponse{
			Message:     "没有待发布的变更",
			Count:       0,
			Departments: []string{},
			Templates:   []dto.TemplateResponse{},
		}, nil
	}

	// ── 5. 通知编排（失败不回滚）──
	s.composePublishNotifications(ctx, removed, affectedDays, req.PublishedBy)

	// ── 6. 广播 ──
	deptSet := make(map[string]bool)
	for dept := range deletedDepts {
		deptSet[dept] = true
	}
	for dept := range affectedDays {
		deptSet[dept] = true
	}
	departments := make([]string, 0, len(deptSet))
	for dept := range deptSet {
		departments = append(departments, dept)
	}

	templates := make([]dto.TemplateResponse, 0, len(publishedTpls))
	for i := range publishedTpls {
		templates = append(templates, *toTemplateResponse(&publishedTpls[i]))
	}

	resp := &dto.PublishResponse{
		Message:      fmt.Sprintf("已发布 %d 个班次，删除 %d 个班次", len(publishedTpls), len(removed)),
		Count:        len(publishedTpls) + len(removed),
		Published:    len(publishedTpls),
		Deleted:      len(removed),
		Departments:  departments,
		Templates:    templates,
		Replacements: replacements,
		Removed:      removed,
	}
	s.events.Publish(events.Event{Type: events.SchedulesPublished, Payload: resp})
	return resp, nil
}

// ensureLeaderSchedule 为部门组长补一条覆盖模板星期的滚动周排班（已有则跳过）
func (s *templateService) ensureLeaderSchedule(ctx context.Context, tx *repository.Repository, tpl *model.ScheduleTemplate, publishedBy string) error {
	leader, err := tx.User.GetTeamLeaderByDepartment(ctx, tpl.Department)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("查询部门组长失败: %w", err)
	}
	if leader.EmployeeID == nil || *leader.EmployeeID == "" {
		return nil
	}
	leaderID := *leader.EmployeeID

	_, err = tx.EmployeeSchedule.GetActiveByEmployeeAndTemplate(ctx, leaderID, tpl.TemplateID)
	if err == nil {
		return nil // 已有排班
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("查询组长排班失败: %w", err)
	}

	today := TodayIn(s.loc)
	end := today.AddDate(0, 0, 6)
	sched := &model.EmployeeSchedule{
		EmployeeID:    leaderID,
		TemplateID:    tpl.TemplateID,
		Days:          tpl.Days,
		ScheduleDates: datatypes.NewJSONType(GenerateScheduleDates(tpl.Days, today, end, s.loc)),
		StartDate:     today,
		EndDate:       end,
		AssignedBy:    publishedBy,
		Status:        model.StatusActive,
	}
	if err := tx.EmployeeSchedule.Create(ctx, sched); err != nil {
		return fmt.Errorf("创建组长排班失败: %w", err)
	}
	return nil
}

// composePublishNotifications 发布后的通知编排。
// 删除类：总是通知部门组长；新增/替换类：仅当组长自身排班与受影响星期有交集时通知。
func (s *templateService) composePublishNotifications(ctx context.Context, removed []dto.DeletedTemplateSummary, affectedDays map[string]map[string]bool, publishedBy string) {
	var notifications []model.Notification

	for _, summary := range removed {
		leader, err := s.repo.User.GetTeamLeaderByDepartment(ctx, summary.Department)
		if err != nil {
			continue
		}
		relatedID := fmt.Sprintf("%d", summary.TemplateID)
		notifications = append(notifications, model.Notification{
			UserID:     leader.UserID,
			EmployeeID: leader.EmployeeID,
			Type:       model.NotifyScheduleDeleted,
			Title:      "班次已删除",
			Message:    fmt.Sprintf("部门 %s 的班次「%s」已删除", summary.Department, summary.ShiftName),
			RelatedID:  &relatedID,
			CreatedBy:  &publishedBy,
		})
	}

	for dept, daySet := range affectedDays {
		leader, err := s.repo.User.GetTeamLeaderByDepartment(ctx, dept)
		if err != nil {
			continue
		}
		if leader.EmployeeID == nil {
			continue
		}

		// 组长自身排班与受影响星期无交集时不打扰
		scheds, err := s.repo.EmployeeSchedule.ListActiveByEmployee(ctx, *leader.EmployeeID)
		if err != nil {
			s.logger.Warn("查询组长排班失败", zap.String("department", dept), zap.Error(err))
			continue
		}
		overlaps := false
		for i := range scheds {
			for _, d := range scheds[i].Days {
				if daySet[d] {
					overlaps = true
					break
				}
			}
			if overlaps {
				break
			}
		}
		if !overlaps {
			continue
		}

		days := make([]string, 0, len(daySet))
		for d := range daySet {
			days = append(days, d)
		}
		notifications = append(notifications, model.Notification{
			UserID:     leader.UserID,
			EmployeeID: leader.EmployeeID,
			Type:       model.NotifySchedulePublished,
			Title:      "排班已发布",
			Message:    fmt.Sprintf("部门 %s 的排班已更新，涉及: %v", dept, SortWeekdays(days)),
			CreatedBy:  &publishedBy,
		})
	}

	if err := s.repo.Notification.BatchCreate(ctx, notifications); err != nil {
		s.logger.Warn("发布通知发送失败", zap.Error(err))
	}
}

// ── 辅助函数 ──

func validateShiftTime(start, end string) error {
	if _, err := time.Parse("15:04", start); err != nil {
		return ErrTemplateInvalidTime
	}
	if _, err := time.Parse("15:04", end); err != nil {
		return ErrTemplateInvalidTime
	}
	return nil
}

func assignmentEmployeeIDs(assignments []model.TemplateAssignment) []string {
	ids := make([]string, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.EmployeeID)
	}
	return ids
}

func intersectDays(a, b model.StringArray) []string {
	var overlap []string
	for _, d := range a {
		if b.Contains(d) {
			overlap = append(overlap, d)
		}
	}
	return SortWeekdays(overlap)
}

func toTemplateResponse(tpl *model.ScheduleTemplate) *dto.TemplateResponse {
	assigned := make([]dto.AssignedEmployee, 0, len(tpl.Assignments))
	for _, a := range tpl.Assignments {
		assigned = append(assigned, dto.AssignedEmployee{
			EmployeeID:   a.EmployeeID,
			AssignedDate: a.AssignedDate.Format("2006-01-02"),
			AssignedBy:   a.AssignedBy,
		})
	}

	resp := &dto.TemplateResponse{
		TemplateID:        tpl.TemplateID,
		Department:        tpl.Department,
		ShiftName:         tpl.ShiftName,
		StartTime:         tpl.StartTime,
		EndTime:           tpl.EndTime,
		Days:              tpl.Days,
		MemberLimit:       tpl.MemberLimit,
		DayLimits:         tpl.DayLimits.Data(),
		Status:            tpl.Status,
		PublishStatus:     tpl.PublishStatus,
		PendingDeletion:   tpl.PendingDeletion,
		AssignedEmployees: assigned,
	}
	if tpl.SpecificDate != nil {
		resp.SpecificDate = tpl.SpecificDate.Format("2006-01-02")
	}
	if tpl.PublishedAt != nil {
		resp.PublishedAt = tpl.PublishedAt.Format(time.RFC3339)
	}
	if tpl.PublishedBy != nil {
		resp.PublishedBy = *tpl.PublishedBy
	}
	return resp
}

// [自证通过] internal/service/template_service.go
