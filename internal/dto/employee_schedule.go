package dto

// ── 员工排班模块 DTO ──

// AssignScheduleRequest 直接分配排班请求
// StartDate/EndDate 可省略：默认今天起的滚动7天窗口
type AssignScheduleRequest struct {
	EmployeeID string   `json:"employee_id"`
	TemplateID uint     `json:"template_id"`
	Days       []string `json:"days"`
	AssignedBy string   `json:"assigned_by"`
	StartDate  string   `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate    string   `json:"end_date"   binding:"omitempty,datetime=2006-01-02"`
}

// RemoveDaysRequest 移除指定星期请求
type RemoveDaysRequest struct {
	Days []string `json:"days" binding:"required,min=1"`
}

// EmployeeScheduleListRequest 排班列表查询参数
type EmployeeScheduleListRequest struct {
	EmployeeID string `form:"employee_id"`
	Department string `form:"department"`
}

// EmployeeScheduleResponse 员工排班响应
type EmployeeScheduleResponse struct {
	ScheduleID    uint                `json:"schedule_id"`
	EmployeeID    string              `json:"employee_id"`
	TemplateID    uint                `json:"template_id"`
	ShiftName     string              `json:"shift_name,omitempty"`
	Department    string              `json:"department,omitempty"`
	StartTime     string              `json:"start_time,omitempty"`
	EndTime       string              `json:"end_time,omitempty"`
	Days          []string            `json:"days"`
	ScheduleDates map[string][]string `json:"schedule_dates"`
	StartDate     string              `json:"start_date"`
	EndDate       string              `json:"end_date"`
	AssignedBy    string              `json:"assigned_by,omitempty"`
	Status        string              `json:"status"`
}

// RegenerateResponse 滚动重生成结果
type RegenerateResponse struct {
	Regenerated int `json:"regenerated"`
}

// TodayScheduleItem 今日排班条目（含考勤状态）
type TodayScheduleItem struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	Department   string `json:"department,omitempty"`
	ShiftName    string `json:"shift_name"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	TimeIn       string `json:"time_in,omitempty"`
	TimeOut      string `json:"time_out,omitempty"`
	Attendance   string `json:"attendance"` // present | late | absent
}
