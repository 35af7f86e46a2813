package dto

// ── 考勤模块 DTO ──

// PunchRequest 生物识别设备打卡上报
// Timestamp 省略时取服务端当前时间
type PunchRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,max=20"`
	DeviceID   string `json:"device_id"   binding:"required,max=50"`
	Timestamp  string `json:"timestamp"   binding:"omitempty"`
}

// PunchResponse 打卡结果
type PunchResponse struct {
	EmployeeID string `json:"employee_id"`
	RecordDate string `json:"record_date"`
	TimeIn     string `json:"time_in,omitempty"`
	TimeOut    string `json:"time_out,omitempty"`
	Status     string `json:"status"`
	Direction  string `json:"direction"` // in | out
}

// TodayAttendanceRequest 今日考勤查询参数
type TodayAttendanceRequest struct {
	Department string `form:"department"`
}
