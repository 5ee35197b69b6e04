package entity

import "time"

// Notification is a delivered fan-out record. The lifecycle engine only plans
// notifications; this entity is the sink side that stores and tracks them.
type Notification struct {
	ID            string `json:"id" gorm:"primaryKey;size:32"`
	RequisitionID string `json:"requisition_id" gorm:"size:20;not null;index"`

	ForUserID   string `json:"for_user_id" gorm:"size:32;not null;index"`
	CreatedByID string `json:"created_by_id" gorm:"size:32;not null"`
	CreatedBy   *User  `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`

	Message  string `json:"message" gorm:"size:500;not null"`
	Category string `json:"category" gorm:"size:30;not null"`
	Read     bool   `json:"read" gorm:"not null;default:false;index"`

	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// Notification categories
const (
	NotificationNew                = "NEW"
	NotificationValidationRequired = "VALIDATION_REQUIRED"
	NotificationStatusChange       = "STATUS_CHANGE"
	NotificationComment            = "COMMENT"
	NotificationTodo               = "TODO"
)
