package entity

import "time"

// Comment is free-text discussion attached to a requisition.
type Comment struct {
	ID            string `json:"id" gorm:"primaryKey;size:32"`
	RequisitionID string `json:"requisition_id" gorm:"size:20;not null;index"`

	UserID string `json:"user_id" gorm:"size:32;not null"`
	User   *User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Text   string `json:"text" gorm:"type:text;not null"`

	CreatedAt time.Time `json:"created_at"`
}

func (Comment) TableName() string {
	return "requisition_comments"
}

// Todo is a follow-up task attached to a requisition, optionally assigned.
type Todo struct {
	ID            string `json:"id" gorm:"primaryKey;size:32"`
	RequisitionID string `json:"requisition_id" gorm:"size:20;not null;index"`

	Text         string     `json:"text" gorm:"type:text;not null"`
	CreatedByID  string     `json:"created_by_id" gorm:"size:32;not null"`
	CreatedBy    *User      `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
	AssignedToID *string    `json:"assigned_to_id" gorm:"size:32"`
	AssignedTo   *User      `json:"assigned_to,omitempty" gorm:"foreignKey:AssignedToID"`
	DueDate      *time.Time `json:"due_date"`
	Completed    bool       `json:"completed" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Todo) TableName() string {
	return "requisition_todos"
}

// Attachment is a file stored in object storage and linked to a requisition.
type Attachment struct {
	ID            string `json:"id" gorm:"primaryKey;size:32"`
	RequisitionID string `json:"requisition_id" gorm:"size:20;not null;index"`

	FileName     string `json:"file_name" gorm:"size:300;not null"`
	ObjectKey    string `json:"object_key" gorm:"size:500;not null"`
	MimeType     string `json:"mime_type" gorm:"size:100"`
	Size         int64  `json:"size"`
	UploadedByID string `json:"uploaded_by_id" gorm:"size:32;not null"`

	CreatedAt time.Time `json:"created_at"`
}

func (Attachment) TableName() string {
	return "requisition_attachments"
}
