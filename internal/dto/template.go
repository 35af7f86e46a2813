package dto

// ── 班次模板模块 DTO ──

// CreateTemplateRequest 创建模板请求
// Days 与 SpecificDate 至少给一个；仅给 SpecificDate 时 Days 派生为该日星期名
type CreateTemplateRequest struct {
	Department    string         `json:"department"     binding:"required,max=100"`
	ShiftName     string         `json:"shift_name"     binding:"required,max=100"`
	StartTime     string         `json:"start_time"     binding:"required"`
	EndTime       string         `json:"end_time"       binding:"required"`
	Days          []string       `json:"days"           binding:"omitempty,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	SpecificDate  string         `json:"specific_date"  binding:"omitempty,datetime=2006-01-02"`
	MemberLimit   *int           `json:"member_limit"   binding:"omitempty,min=1"`
	DayLimits     map[string]int `json:"day_limits"     binding:"omitempty"`
	PublishStatus string         `json:"publish_status" binding:"omitempty,oneof=draft published"`
}

// UpdateTemplateRequest 更新模板请求
type UpdateTemplateRequest struct {
	ShiftName   *string        `json:"shift_name"   binding:"omitempty,max=100"`
	StartTime   *string        `json:"start_time"`
	EndTime     *string        `json:"end_time"`
	Days        []string       `json:"days"         binding:"omitempty,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	MemberLimit *int           `json:"member_limit" binding:"omitempty,min=1"`
	DayLimits   map[string]int `json:"day_limits"   binding:"omitempty"`
	Status      *string        `json:"status"       binding:"omitempty,oneof=Active Inactive"`
}

// TemplateListRequest 模板列表查询参数
type TemplateListRequest struct {
	Department    string `form:"department"`
	PublishStatus string `form:"publish_status" binding:"omitempty,oneof=draft published"`
}

// AssignEmployeesRequest 批量分配员工请求
type AssignEmployeesRequest struct {
	EmployeeIDs []string `json:"employee_ids" binding:"required,min=1"`
}

// RemoveEmployeesRequest 批量移除员工请求
type RemoveEmployeesRequest struct {
	EmployeeIDs []string `json:"employee_ids" binding:"required,min=1"`
}

// PublishRequest 发布请求
type PublishRequest struct {
	PublishedBy string `json:"published_by" binding:"required"`
}

// AssignedEmployee assigned_employees 元素（兼容前端既有形状）
type AssignedEmployee struct {
	EmployeeID   string `json:"employee_id"`
	AssignedDate string `json:"assigned_date"`
	AssignedBy   string `json:"assigned_by,omitempty"`
}

// TemplateResponse 模板详情响应
type TemplateResponse struct {
	TemplateID        uint               `json:"template_id"`
	Department        string             `json:"department"`
	ShiftName         string             `json:"shift_name"`
	StartTime         string             `json:"start_time"`
	EndTime           string             `json:"end_time"`
	Days              []string           `json:"days"`
	SpecificDate      string             `json:"specific_date,omitempty"`
	MemberLimit       *int               `json:"member_limit,omitempty"`
	DayLimits         map[string]int     `json:"day_limits,omitempty"`
	Status            string             `json:"status"`
	PublishStatus     string             `json:"publish_status"`
	PublishedAt       string             `json:"published_at,omitempty"`
	PublishedBy       string             `json:"published_by,omitempty"`
	PendingDeletion   bool               `json:"pending_deletion"`
	AssignedEmployees []AssignedEmployee `json:"assigned_employees"`
}

// TemplateScheduleView 模板展开出的单员工排班视图
type TemplateScheduleView struct {
	TemplateID   uint     `json:"template_id"`
	EmployeeID   string   `json:"employee_id"`
	EmployeeName string   `json:"employee_name,omitempty"`
	Department   string   `json:"department"`
	ShiftName    string   `json:"shift_name"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	Days         []string `json:"days"`
	AssignedDate string   `json:"assigned_date"`
	AssignedBy   string   `json:"assigned_by,omitempty"`
}

// TemplateReplacement 发布时被替换的模板摘要
type TemplateReplacement struct {
	Department   string   `json:"department"`
	OldShiftName string   `json:"old_shift_name"`
	OldTime      string   `json:"old_time"`
	NewShiftName string   `json:"new_shift_name"`
	NewTime      string   `json:"new_time"`
	Days         []string `json:"days"` // 交集的星期名
}

// DeletedTemplateSummary 发布时被删除的模板摘要
type DeletedTemplateSummary struct {
	TemplateID  uint     `json:"template_id"`
	Department  string   `json:"department"`
	ShiftName   string   `json:"shift_name"`
	Days        []string `json:"days"`
	EmployeeIDs []string `json:"employee_ids"` // 删除前的分配名单
}

// PublishResponse 发布结果摘要
type PublishResponse struct {
	Message      string                   `json:"message"`
	Count        int                      `json:"count"`
	Published    int                      `json:"published"`
	Deleted      int                      `json:"deleted"`
	Departments  []string                 `json:"departments"`
	Templates    []TemplateResponse       `json:"templates"`
	Replacements []TemplateReplacement    `json:"replacements,omitempty"`
	Removed      []DeletedTemplateSummary `json:"removed,omitempty"`
}
