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
	"github.com/codebylorence/secureattend-2.0-sub001/internal/model"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/repository"
)

// ── 员工排班模块业务错误 ──

var (
	ErrScheduleNotFound         = errors.New("排班记录不存在")
	ErrScheduleEmployeeRequired = errors.New("employee_id 不能为空")
	ErrScheduleTemplateRequired = errors.New("template_id 不能为空")
	ErrScheduleDaysRequired     = errors.New("days 不能为空")
	ErrScheduleDaysInvalid      = errors.New("days 含有非法星期名")
	ErrScheduleEndBeforeStart   = errors.New("end_date 不能早于 start_date")
	ErrScheduleWindowTooLong    = errors.New("日期窗口不能超过7天")
)

// EmployeeScheduleService 员工排班业务接口
type EmployeeScheduleService interface {
	// Assign 直接分配排班；同员工同模板已有 Active 记录时合并星期并重算日期
	Assign(ctx context.Context, req *dto.AssignScheduleRequest) (*dto.EmployeeScheduleResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.EmployeeScheduleResponse, error)
	List(ctx context.Context, req *dto.EmployeeScheduleListRequest) ([]dto.EmployeeScheduleResponse, error)
	// RemoveDays 从排班中移除指定星期；移除后为空则删除整条记录
	RemoveDays(ctx context.Context, id uint, req *dto.RemoveDaysRequest) (*dto.EmployeeScheduleResponse, error)
	Delete(ctx context.Context, id uint) error
	// RegenerateWeekly 对所有 Active 排班重算滚动7天窗口，返回更新条数
	RegenerateWeekly(ctx context.Context) (int, error)
	// TodaySchedules 今日值班视图，附考勤状态
	TodaySchedules(ctx context.Context, department string) ([]dto.TodayScheduleItem, error)
}

type employeeScheduleService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewEmployeeScheduleService 创建 EmployeeScheduleService 实例
func NewEmployeeScheduleService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) EmployeeScheduleService {
	return &employeeScheduleService{repo: repo, loc: loc, logger: logger}
}

// ────────────────────── Assign ──────────────────────

func (s *employeeScheduleService) Assign(ctx context.Context, req *dto.AssignScheduleRequest) (*dto.EmployeeScheduleResponse, error) {
	// 逐字段校验，保证错误信息指向具体字段
	if req.EmployeeID == "" {
		return nil, ErrScheduleEmployeeRequired
	}
	if req.TemplateID == 0 {
		return nil, ErrScheduleTemplateRequired
	}
	if len(req.Days) == 0 {
		return nil, ErrScheduleDaysRequired
	}
	for _, d := range req.Days {
		if !IsWeekdayName(d) {
			return nil, ErrScheduleDaysInvalid
		}
	}

	tpl, err := s.repo.Template.GetByID(ctx, req.TemplateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("查询班次模板失败", zap.Uint("template_id", req.TemplateID), zap.Error(err))
		return nil, err
	}

	today := TodayIn(s.loc)
	startDate := today
	if req.StartDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.StartDate, s.loc)
		if err != nil {
			return nil, fmt.Errorf("start_date 解析失败: %w", err)
		}
		// 过去的起始日静默钳制到今天
		if parsed.After(today) {
			startDate = parsed
		}
	}
	endDate := startDate.AddDate(0, 0, 6)
	if req.EndDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.EndDate, s.loc)
		if err != nil {
			return nil, fmt.Errorf("end_date 解析失败: %w", err)
		}
		if parsed.Before(startDate) {
			return nil, ErrScheduleEndBeforeStart
		}
		// 按日历天比较，夏令时切换日不会误判
		if parsed.After(startDate.AddDate(0, 0, 6)) {
			return nil, ErrScheduleWindowTooLong
		}
		endDate = parsed
	}

	// 同员工同模板已有 Active 记录 → 合并星期，窗口取新请求
	existing, err := s.repo.EmployeeSchedule.GetActiveByEmployeeAndTemplate(ctx, req.EmployeeID, req.TemplateID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询现有排班失败", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return nil, err
	}

	if existing != nil {
		merged := mergeDays(existing.Days, req.Days)
		existing.Days = merged
		existing.ScheduleDates = datatypes.NewJSONType(GenerateScheduleDates(merged, startDate, endDate, s.loc))
		existing.StartDate = startDate
		existing.EndDate = endDate
		existing.AssignedBy = req.AssignedBy
		if err := s.repo.EmployeeSchedule.Update(ctx, existing); err != nil {
			s.logger.Error("合并更新排班失败", zap.Uint("schedule_id", existing.ScheduleID), zap.Error(err))
			return nil, err
		}
		return s.toScheduleResponse(existing, tpl), nil
	}

	days := SortWeekdays(req.Days)
	sched := &model.EmployeeSchedule{
		EmployeeID:    req.EmployeeID,
		TemplateID:    req.TemplateID,
		Days:          days,
		ScheduleDates: datatypes.NewJSONType(GenerateScheduleDates(days, startDate, endDate, s.loc)),
		StartDate:     startDate,
		EndDate:       endDate,
		AssignedBy:    req.AssignedBy,
		Status:        model.StatusActive,
	}
	if err := s.repo.EmployeeSchedule.Create(ctx, sched); err != nil {
		s.logger.Error("创建排班失败", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return nil, err
	}

	// 被排班员工的账号存在时发通知（失败不影响分配）
	s.notifyAssigned(ctx, sched, tpl)

	return s.toScheduleResponse(sched, tpl), nil
}

func (s *employeeScheduleService) notifyAssigned(ctx context.Context, sched *model.EmployeeSchedule, tpl *model.ScheduleTemplate) {
	user, err := s.repo.User.GetByEmployeeID(ctx, sched.EmployeeID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("查询员工账号失败", zap.String("employee_id", sched.EmployeeID), zap.Error(err))
		}
		return
	}

	relatedID := fmt.Sprintf("%d", sched.ScheduleID)
	err = s.repo.Notification.BatchCreate(ctx, []model.Notification{{
		UserID:     user.UserID,
		EmployeeID: &sched.EmployeeID,
		Type:       model.NotifyScheduleAdded,
		Title:      "新排班分配",
		Message: fmt.Sprintf("你已被分配到班次「%s」（%s-%s），适用: %v",
			tpl.ShiftName, tpl.StartTime, tpl.EndTime, []string(sched.Days)),
		RelatedID: &relatedID,
		CreatedBy: &sched.AssignedBy,
	}})
	if err != nil {
		s.logger.Warn("排班分配通知发送失败", zap.Uint("schedule_id", sched.ScheduleID), zap.Error(err))
	}
}

// ────────────────────── GetByID / List ──────────────────────

func (s *employeeScheduleService) GetByID(ctx context.Context, id uint) (*dto.EmployeeScheduleResponse, error) {
	sched, err := s.repo.EmployeeSchedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询排班失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return s.toScheduleResponse(sched, sched.Template), nil
}

func (s *employeeScheduleService) List(ctx context.Context, req *dto.EmployeeScheduleListRequest) ([]dto.EmployeeScheduleResponse, error) {
	scheds, err := s.repo.EmployeeSchedule.List(ctx, req.EmployeeID, req.Department)
	if err != nil {
		s.logger.Error("列出排班失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.EmployeeScheduleResponse, 0, len(scheds))
	for i := range scheds {
		result = append(result, *s.toScheduleResponse(&scheds[i], scheds[i].Template))
	}
	return result, nil
}

// ────────────────────── RemoveDays / Delete ──────────────────────

func (s *employeeScheduleService) RemoveDays(ctx context.Context, id uint, req *dto.RemoveDaysRequest) (*dto.EmployeeScheduleResponse, error) {
	sched, err := s.repo.EmployeeSchedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询排班失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	removing := make(map[string]bool, len(req.Days))
	for _, d := range req.Days {
		if !IsWeekdayName(d) {
			return nil, ErrScheduleDaysInvalid
		}
		removing[d] = true
	}

	remaining := make(model.StringArray, 0, len(sched.Days))
	for _, d := range sched.Days {
		if !removing[d] {
			remaining = append(remaining, d)
		}
	}

	// 全部移除后整条记录删除，返回 nil 表示记录已不存在
	if len(remaining) == 0 {
		if err := s.repo.EmployeeSchedule.Delete(ctx, id); err != nil {
			s.logger.Error("删除排班失败", zap.Uint("id", id), zap.Error(err))
			return nil, err
		}
		return nil, nil
	}

	sched.Days = remaining
	sched.ScheduleDates = datatypes.NewJSONType(GenerateScheduleDates(remaining, sched.StartDate, sched.EndDate, s.loc))
	if err := s.repo.EmployeeSchedule.Update(ctx, sched); err != nil {
		s.logger.Error("更新排班失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return s.toScheduleResponse(sched, sched.Template), nil
}

func (s *employeeScheduleService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.EmployeeSchedule.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduleNotFound
		}
		return err
	}
	return s.repo.EmployeeSchedule.Delete(ctx, id)
}

// ────────────────────── RegenerateWeekly ──────────────────────

// RegenerateWeekly 将物化日期已全部过期的 Active 排班推进到 [今天, 今天+6]。
// 只要还剩一个今天或未来的日期就不动该行（未来起始的排班不会被拉回今天）。
// 后台任务周期触发；幂等，同一天内重复执行结果一致。
func (s *employeeScheduleService) RegenerateWeekly(ctx context.Context) (int, error) {
	scheds, err := s.repo.EmployeeSchedule.ListActive(ctx)
	if err != nil {
		s.logger.Error("查询 Active 排班失败", zap.Error(err))
		return 0, err
	}

	today := TodayIn(s.loc)
	end := today.AddDate(0, 0, 6)
	todayStr := today.Format("2006-01-02")
	count := 0
	for i := range scheds {
		sched := &scheds[i]
		if !allDatesLapsed(sched.ScheduleDates.Data(), todayStr) {
			continue
		}
		sched.StartDate = today
		sched.EndDate = end
		sched.ScheduleDates = datatypes.NewJSONType(GenerateScheduleDates(sched.Days, today, end, s.loc))
		if err := s.repo.EmployeeSchedule.Update(ctx, sched); err != nil {
			s.logger.Warn("排班窗口推进失败", zap.Uint("schedule_id", sched.ScheduleID), zap.Error(err))
			continue
		}
		count++
	}

	if count > 0 {
		s.logger.Info("排班窗口滚动完成", zap.Int("regenerated", count))
	}
	return count, nil
}

// ────────────────────── TodaySchedules ──────────────────────

func (s *employeeScheduleService) TodaySchedules(ctx context.Context, department string) ([]dto.TodayScheduleItem, error) {
	scheds, err := s.repo.EmployeeSchedule.List(ctx, "", department)
	if err != nil {
		s.logger.Error("查询排班失败", zap.Error(err))
		return nil, err
	}

	today := TodayIn(s.loc)
	todayStr := today.Format("2006-01-02")
	weekday := today.Weekday().String()

	items := make([]dto.TodayScheduleItem, 0)
	for i := range scheds {
		sched := &scheds[i]
		if sched.Status != model.StatusActive {
			continue
		}
		dates := sched.ScheduleDates.Data()[weekday]
		onDuty := false
		for _, d := range dates {
			if d == todayStr {
				onDuty = true
				break
			}
		}
		if !onDuty {
			continue
		}

		item := dto.TodayScheduleItem{
			EmployeeID: sched.EmployeeID,
			Attendance: "absent",
		}
		if sched.Template != nil {
			item.Department = sched.Template.Department
			item.ShiftName = sched.Template.ShiftName
			item.StartTime = sched.Template.StartTime
			item.EndTime = sched.Template.EndTime
		}
		if emp, err := s.repo.Employee.GetByEmployeeID(ctx, sched.EmployeeID); err == nil {
			item.EmployeeName = emp.Name
			if item.Department == "" {
				item.Department = emp.Department
			}
		}
		if rec, err := s.repo.Attendance.GetByEmployeeAndDate(ctx, sched.EmployeeID, today); err == nil {
			item.Attendance = rec.Status
			if rec.TimeIn != nil {
				item.TimeIn = rec.TimeIn.In(s.loc).Format("15:04")
			}
			if rec.TimeOut != nil {
				item.TimeOut = rec.TimeOut.In(s.loc).Format("15:04")
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// ── 辅助函数 ──

// allDatesLapsed 判断物化日期是否全部严格早于 todayStr。
// ISO 日期串（YYYY-MM-DD）可直接按字典序比较。
func allDatesLapsed(dates map[string][]string, todayStr string) bool {
	for _, list := range dates {
		for _, d := range list {
			if d >= todayStr {
				return false
			}
		}
	}
	return true
}

func mergeDays(existing model.StringArray, incoming []string) model.StringArray {
	seen := make(map[string]bool, len(existing)+len(incoming))
	merged := make([]string, 0, len(existing)+len(incoming))
	for _, d := range existing {
		if !seen[d] {
			seen[d] = true
			merged = append(merged, d)
		}
	}
	for _, d := range incoming {
		if !seen[d] {
			seen[d] = true
			merged = append(merged, d)
		}
	}
	return model.StringArray(SortWeekdays(merged))
}

func (s *employeeScheduleService) toScheduleResponse(sched *model.EmployeeSchedule, tpl *model.ScheduleTemplate) *dto.EmployeeScheduleResponse {
	resp := &dto.EmployeeScheduleResponse{
		ScheduleID:    sched.ScheduleID,
		EmployeeID:    sched.EmployeeID,
		TemplateID:    sched.TemplateID,
		Days:          sched.Days,
		ScheduleDates: sched.ScheduleDates.Data(),
		StartDate:     sched.StartDate.Format("2006-01-02"),
		EndDate:       sched.EndDate.Format("2006-01-02"),
		AssignedBy:    sched.AssignedBy,
		Status:        sched.Status,
	}
	if tpl != nil {
		resp.ShiftName = tpl.ShiftName
		resp.Department = tpl.Department
		resp.StartTime = tpl.StartTime
		resp.EndTime = tpl.EndTime
	}
	return resp
}

// [自证通过] internal/service/employee_schedule_service.go
